// Package ledger talks to the remote ledger service: a single HTTP endpoint
// that multiplexes actions over POSTed JSON envelopes. Reads go through a
// short-lived per-user cache; writes invalidate it.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/minhdn/jarbot/internal/cache"
	"github.com/minhdn/jarbot/internal/domain"
)

// Action names accepted by the remote endpoint.
const (
	actionPing           = "ping"
	actionGetCategories  = "getCategories"
	actionGetBalance     = "getBalance"
	actionGetRecent      = "getRecentEntries"
	actionAddTransaction = "addTransaction"
)

// request is the envelope every call POSTs.
type request struct {
	Action   string `json:"action"`
	LedgerID string `json:"ledgerId"`
	APIKey   string `json:"apiKey"`
	Data     any    `json:"data,omitempty"`
}

// Client implements Service over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	cache      *cache.Store
	log        zerolog.Logger
}

// NewClient builds a client for the given endpoint. callTimeout bounds every
// network call; cacheTTL bounds snapshot staleness (minutes, not hours — the
// ledger is externally editable).
func NewClient(endpoint string, callTimeout, cacheTTL time.Duration, log zerolog.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: callTimeout},
		timeout:    callTimeout,
		cache:      cache.NewStore(cacheTTL),
		log:        log,
	}
}

var _ Service = (*Client)(nil)

// Ping implements Service.
func (c *Client) Ping(ctx context.Context, id Identity) error {
	_, err := c.call(ctx, id, actionPing, nil)
	return err
}

// GetCategories implements Service. Results are cached per user under
// cache.ResourceCategories.
func (c *Client) GetCategories(ctx context.Context, id Identity) ([]domain.Category, error) {
	if v, ok := c.cache.Get(id.User, cache.ResourceCategories); ok {
		return v.([]domain.Category), nil
	}

	body, err := c.call(ctx, id, actionGetCategories, nil)
	if err != nil {
		return nil, fmt.Errorf("GetCategories: %w", err)
	}

	var cats []domain.Category
	body.Get("categories").ForEach(func(_, item gjson.Result) bool {
		cats = append(cats, domain.Category{
			ID:            item.Get("id").String(),
			Name:          item.Get("name").String(),
			Kind:          domain.Kind(item.Get("kind").String()),
			Icon:          item.Get("icon").String(),
			DefaultBucket: domain.Bucket(item.Get("defaultBucket").String()),
			AutoAllocate:  item.Get("autoAllocate").Bool(),
		})
		return true
	})

	c.cache.Put(id.User, cache.ResourceCategories, cats)
	return cats, nil
}

// GetBalance implements Service.
func (c *Client) GetBalance(ctx context.Context, id Identity, useCache bool) (domain.BalanceSnapshot, error) {
	if useCache {
		if v, ok := c.cache.Get(id.User, cache.ResourceBalance); ok {
			return v.(domain.BalanceSnapshot), nil
		}
	}

	body, err := c.call(ctx, id, actionGetBalance, nil)
	if err != nil {
		return domain.BalanceSnapshot{}, fmt.Errorf("GetBalance: %w", err)
	}

	snap := domain.BalanceSnapshot{
		Jars:      make(map[domain.Bucket]int64),
		Accounts:  make(map[string]int64),
		Total:     body.Get("total").Int(),
		FetchedAt: time.Now(),
	}
	body.Get("jars").ForEach(func(k, v gjson.Result) bool {
		snap.Jars[domain.Bucket(k.String())] = v.Int()
		return true
	})
	body.Get("accounts").ForEach(func(k, v gjson.Result) bool {
		snap.Accounts[k.String()] = v.Int()
		return true
	})

	c.cache.Put(id.User, cache.ResourceBalance, snap)
	return snap, nil
}

// GetRecentEntries implements Service. Cached under cache.ResourceRecent; the
// cached slice is reused regardless of limit, then truncated.
func (c *Client) GetRecentEntries(ctx context.Context, id Identity, limit int) ([]domain.CommittedEntry, error) {
	if v, ok := c.cache.Get(id.User, cache.ResourceRecent); ok {
		return truncateEntries(v.([]domain.CommittedEntry), limit), nil
	}

	body, err := c.call(ctx, id, actionGetRecent, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("GetRecentEntries: %w", err)
	}

	var entries []domain.CommittedEntry
	body.Get("entries").ForEach(func(_, item gjson.Result) bool {
		entries = append(entries, decodeEntry(item))
		return true
	})

	c.cache.Put(id.User, cache.ResourceRecent, entries)
	return truncateEntries(entries, limit), nil
}

// AddTransaction implements Service. On success every cached snapshot for
// the user is dropped before returning, so the next read is forced fresh.
func (c *Client) AddTransaction(ctx context.Context, id Identity, draft *domain.TransactionDraft) (domain.CommittedEntry, error) {
	if err := draft.ReadyToCommit(); err != nil {
		return domain.CommittedEntry{}, fmt.Errorf("AddTransaction: %w", err)
	}

	payload := map[string]any{
		"requestId":  uuid.NewString(),
		"type":       string(draft.Kind),
		"amount":     draft.Amount,
		"note":       draft.Note,
		"category":   draft.Category.Name,
		"categoryId": draft.Category.ID,
		"bucket":     string(draft.Bucket),
		"account":    string(draft.Account),
	}

	body, err := c.call(ctx, id, actionAddTransaction, payload)
	if err != nil {
		return domain.CommittedEntry{}, fmt.Errorf("AddTransaction: %w", err)
	}

	c.cache.Invalidate(id.User, cache.ResourceBalance, cache.ResourceRecent)

	entry := decodeEntry(body.Get("entry"))
	if entry.ID == "" {
		entry.ID = body.Get("id").String()
	}
	if entry.Amount == 0 {
		// Older ledger deployments echo nothing back; fall back to the draft.
		entry = domain.CommittedEntry{
			ID:       entry.ID,
			Kind:     draft.Kind,
			Amount:   draft.Amount,
			Note:     draft.Note,
			Category: draft.Category.Name,
			Bucket:   draft.Bucket,
			Account:  draft.Account,
		}
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	return entry, nil
}

// call POSTs one envelope and returns the parsed body after the shared
// success checks.
func (c *Client) call(ctx context.Context, id Identity, action string, data any) (gjson.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqBody, err := json.Marshal(request{
		Action:   action,
		LedgerID: id.LedgerID,
		APIKey:   id.APIKey,
		Data:     data,
	})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("marshal %s: %w", action, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("build %s request: %w", action, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		classified := classifyTransport(err)
		c.log.Warn().Err(err).Str("action", action).Msg("ledger call failed")
		return gjson.Result{}, classified
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	c.log.Debug().
		Str("action", action).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("ledger call")

	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("%w: status %d", ErrRemote, resp.StatusCode)
	}

	body := gjson.ParseBytes(raw)
	if !body.Get("success").Bool() {
		msg := body.Get("error").String()
		if msg == "" {
			msg = "unspecified remote error"
		}
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrRemote, msg)
	}
	return body, nil
}

func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

func decodeEntry(item gjson.Result) domain.CommittedEntry {
	entry := domain.CommittedEntry{
		ID:       item.Get("id").String(),
		Kind:     domain.Kind(item.Get("type").String()),
		Amount:   item.Get("amount").Int(),
		Note:     item.Get("note").String(),
		Category: item.Get("category").String(),
		Bucket:   domain.Bucket(item.Get("bucket").String()),
		Account:  domain.Account(item.Get("account").String()),
	}
	if ts := item.Get("timestamp").String(); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			entry.Timestamp = parsed
		}
	}
	return entry
}

func truncateEntries(entries []domain.CommittedEntry, limit int) []domain.CommittedEntry {
	if limit <= 0 || limit >= len(entries) {
		return entries
	}
	return entries[:limit]
}
