// Package dialog drives the confirmation state machine: it turns parsed
// messages into drafts, walks the user through category → jar → account →
// confirm, and commits the finished draft to the remote ledger. It produces
// Prompt values; rendering and delivery belong to the transport layer.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/minhdn/jarbot/internal/catalog"
	"github.com/minhdn/jarbot/internal/domain"
	"github.com/minhdn/jarbot/internal/ledger"
	"github.com/minhdn/jarbot/internal/lexer"
	"github.com/minhdn/jarbot/internal/matcher"
	"github.com/minhdn/jarbot/internal/session"
)

// ErrInvalidDraftState marks a controller bug: commit was reached with a
// required field missing. The draft is reset, never partially written.
var ErrInvalidDraftState = errors.New("dialog: draft reached commit incomplete")

// seedMenuSize caps how many categories the short selection menu shows
// before the "show all" escape hatch.
const seedMenuSize = 6

// recentWindow is how many committed entries feed the most-common-category
// ranking for the seeded menu.
const recentWindow = 30

// Controller is the per-process dialog state machine. It is safe for
// concurrent use across users; the transport guarantees per-user events
// arrive one at a time.
type Controller struct {
	matcher  *matcher.Matcher
	catalog  *catalog.Provider
	sessions *session.Store
	ledger   ledger.Service
	log      zerolog.Logger
}

// NewController wires the dialog over its collaborators.
func NewController(m *matcher.Matcher, cat *catalog.Provider, sessions *session.Store, svc ledger.Service, log zerolog.Logger) *Controller {
	return &Controller{
		matcher:  m,
		catalog:  cat,
		sessions: sessions,
		ledger:   svc,
		log:      log,
	}
}

// HandleMessage runs the lexer over an inbound message. handled is false
// when the text is not a transaction; the message then belongs to other
// interpretation paths and no state changes. Otherwise a fresh draft
// replaces any in-flight one and the first dialog prompt is returned.
func (c *Controller) HandleMessage(ctx context.Context, id ledger.Identity, msg domain.RawMessage) (Prompt, bool) {
	intent, ok := lexer.Parse(msg.Text)
	if !ok {
		return Prompt{}, false
	}

	draft := domain.TransactionDraft{
		ID:     uuid.NewString(),
		UserID: msg.UserID,
		Kind:   intent.Kind,
		Amount: intent.Amount,
		Note:   intent.Note,
	}

	cats, degraded := c.catalog.Categories(ctx, id)
	if degraded {
		c.log.Debug().Str("user", string(msg.UserID)).Msg("dialog on fallback catalog")
	}

	var prompt Prompt
	if matched, found := c.matcher.Match(intent.Note, intent.Kind, cats); found {
		cat := matched
		draft.Category = &cat
		prompt = c.afterCategoryChosen(&draft)
	} else {
		draft.Stage = domain.StageCategory
		prompt = categoryMenuPrompt(&draft, c.seedCategories(ctx, id, intent.Kind, cats), false)
	}

	if prev, replaced := c.sessions.Put(draft); replaced {
		c.log.Info().
			Str("user", string(msg.UserID)).
			Str("superseded", prev.ID).
			Str("draft", draft.ID).
			Msg("new message superseded in-flight draft")
	}
	return prompt, true
}

// HandleAction applies one decoded button press to the user's draft and
// returns the next prompt. Unknown or out-of-stage presses are no-ops with a
// logged warning.
func (c *Controller) HandleAction(ctx context.Context, id ledger.Identity, user domain.UserID, act domain.Action) Prompt {
	draft, err := c.sessions.Get(user)
	if err != nil {
		c.log.Warn().Str("user", string(user)).Str("action", act.Encode()).
			Msg("action without an in-flight draft")
		return Prompt{}
	}

	switch act.Type {
	case domain.ActionCancel:
		c.sessions.Delete(user)
		return cancelledPrompt()

	case domain.ActionPickCategory:
		return c.onPickCategory(ctx, id, &draft, act.CategoryID)

	case domain.ActionShowAll:
		if draft.Stage != domain.StageCategory && draft.Stage != domain.StageEditCategory {
			return c.ignore(&draft, act)
		}
		cats, _ := c.catalog.Categories(ctx, id)
		return categoryMenuPrompt(&draft, catalog.ForKind(cats, draft.Kind), true)

	case domain.ActionPickJar:
		if draft.Stage != domain.StageJar && draft.Stage != domain.StageEditJar {
			return c.ignore(&draft, act)
		}
		fromEdit := draft.Stage == domain.StageEditJar
		draft.Bucket = act.Bucket
		return c.advance(&draft, fromEdit, domain.StageAccount, accountMenuPrompt)

	case domain.ActionPickAccount:
		if draft.Stage != domain.StageAccount && draft.Stage != domain.StageEditAccount {
			return c.ignore(&draft, act)
		}
		draft.Account = act.Account
		draft.Stage = domain.StageConfirm
		c.sessions.Put(draft)
		return confirmPrompt(&draft)

	case domain.ActionConfirm, domain.ActionRetry:
		if draft.Stage != domain.StageConfirm {
			return c.ignore(&draft, act)
		}
		return c.commit(ctx, id, &draft)

	case domain.ActionEditCategory:
		if draft.Stage != domain.StageConfirm {
			return c.ignore(&draft, act)
		}
		draft.Stage = domain.StageEditCategory
		c.sessions.Put(draft)
		cats, _ := c.catalog.Categories(ctx, id)
		return categoryMenuPrompt(&draft, catalog.ForKind(cats, draft.Kind), true)

	case domain.ActionEditJar:
		if draft.Stage != domain.StageConfirm {
			return c.ignore(&draft, act)
		}
		draft.Stage = domain.StageEditJar
		c.sessions.Put(draft)
		return jarMenuPrompt(&draft)

	case domain.ActionEditAccount:
		if draft.Stage != domain.StageConfirm {
			return c.ignore(&draft, act)
		}
		draft.Stage = domain.StageEditAccount
		c.sessions.Put(draft)
		return accountMenuPrompt(&draft)

	case domain.ActionBack:
		return c.onBack(&draft)
	}

	return c.ignore(&draft, act)
}

// BalanceSummary renders the user's jar and account balances, served from
// the cache when fresh.
func (c *Controller) BalanceSummary(ctx context.Context, id ledger.Identity) (Prompt, error) {
	snap, err := c.ledger.GetBalance(ctx, id, true)
	if err != nil {
		return Prompt{}, fmt.Errorf("BalanceSummary: %w", err)
	}

	text := "📊 Số dư hiện tại\n"
	for _, b := range domain.Buckets() {
		if v, ok := snap.Jars[b]; ok {
			text += fmt.Sprintf("%s: %s\n", b.Name(), formatVND(v))
		}
	}
	for _, acc := range accountOrder(snap.Accounts) {
		text += fmt.Sprintf("%s: %s\n", acc, formatVND(snap.Accounts[acc]))
	}
	text += fmt.Sprintf("Tổng: %s", formatVND(snap.Total))
	return Prompt{Text: text}, nil
}

// afterCategoryChosen decides the next stage once a category is on the
// draft: auto-allocate or a default jar skips the jar menu entirely.
func (c *Controller) afterCategoryChosen(draft *domain.TransactionDraft) Prompt {
	cat := draft.Category
	switch {
	case cat.AutoAllocate:
		draft.Bucket = cat.DefaultBucket
		if draft.Bucket == "" {
			draft.Bucket = domain.BucketAuto
		}
		draft.Stage = domain.StageAccount
		return accountMenuPrompt(draft)
	case cat.DefaultBucket != "":
		draft.Bucket = cat.DefaultBucket
		draft.Stage = domain.StageAccount
		return accountMenuPrompt(draft)
	default:
		draft.Stage = domain.StageJar
		return jarMenuPrompt(draft)
	}
}

func (c *Controller) onPickCategory(ctx context.Context, id ledger.Identity, draft *domain.TransactionDraft, categoryID string) Prompt {
	if draft.Stage != domain.StageCategory && draft.Stage != domain.StageEditCategory {
		return c.ignore(draft, domain.Action{Type: domain.ActionPickCategory, CategoryID: categoryID})
	}

	cats, _ := c.catalog.Categories(ctx, id)
	cat, ok := catalog.FindByID(cats, categoryID)
	if !ok || !kindAllowed(cat.Kind, draft.Kind) {
		c.log.Warn().Str("user", string(draft.UserID)).Str("category", categoryID).
			Msg("picked category missing or wrong kind, re-rendering menu")
		return categoryMenuPrompt(draft, catalog.ForKind(cats, draft.Kind), true)
	}

	fromEdit := draft.Stage == domain.StageEditCategory
	draft.Category = &cat

	if fromEdit {
		draft.Stage = domain.StageConfirm
		c.sessions.Put(*draft)
		return confirmPrompt(draft)
	}
	prompt := c.afterCategoryChosen(draft)
	c.sessions.Put(*draft)
	return prompt
}

// advance moves a draft forward after a field pick: back to Confirming when
// the pick came from an edit detour, on to the next menu otherwise.
func (c *Controller) advance(draft *domain.TransactionDraft, fromEdit bool, next domain.Stage, render func(*domain.TransactionDraft) Prompt) Prompt {
	if fromEdit {
		draft.Stage = domain.StageConfirm
		c.sessions.Put(*draft)
		return confirmPrompt(draft)
	}
	draft.Stage = next
	c.sessions.Put(*draft)
	return render(draft)
}

// commit is the only path to a ledger write. The completeness invariant is
// re-checked here; violating it resets the draft instead of writing.
func (c *Controller) commit(ctx context.Context, id ledger.Identity, draft *domain.TransactionDraft) Prompt {
	if err := draft.ReadyToCommit(); err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidDraftState, err)
		c.log.Error().Err(err).Str("user", string(draft.UserID)).Str("draft", draft.ID).
			Msg("invalid draft state at commit, resetting")
		c.sessions.Delete(draft.UserID)
		return Prompt{Text: "⚠️ Giao dịch bị lỗi, vui lòng nhập lại từ đầu."}
	}

	entry, err := c.ledger.AddTransaction(ctx, id, draft)
	if err != nil {
		c.log.Warn().Err(err).Str("user", string(draft.UserID)).Str("draft", draft.ID).
			Msg("ledger write failed, draft preserved")
		// Draft stays in StageConfirm untouched so retry needs no re-entry.
		return commitFailedPrompt(err)
	}

	c.sessions.Delete(draft.UserID)
	c.log.Info().
		Str("user", string(draft.UserID)).
		Str("entry", entry.ID).
		Int64("amount", entry.Amount).
		Str("category", entry.Category).
		Msg("transaction committed")
	return committedPrompt(entry)
}

// onBack returns an edit detour to the confirmation screen and otherwise
// steps one menu backwards.
func (c *Controller) onBack(draft *domain.TransactionDraft) Prompt {
	switch draft.Stage {
	case domain.StageEditCategory, domain.StageEditJar, domain.StageEditAccount:
		draft.Stage = domain.StageConfirm
		c.sessions.Put(*draft)
		return confirmPrompt(draft)
	case domain.StageAccount:
		draft.Stage = domain.StageJar
		c.sessions.Put(*draft)
		return jarMenuPrompt(draft)
	case domain.StageConfirm:
		draft.Stage = domain.StageAccount
		c.sessions.Put(*draft)
		return accountMenuPrompt(draft)
	}
	return c.ignore(draft, domain.Action{Type: domain.ActionBack})
}

// ignore logs an out-of-stage press and renders nothing.
func (c *Controller) ignore(draft *domain.TransactionDraft, act domain.Action) Prompt {
	c.log.Warn().
		Str("user", string(draft.UserID)).
		Str("stage", string(draft.Stage)).
		Str("action", act.Encode()).
		Msg("action not valid in current stage, ignored")
	return Prompt{}
}

// seedCategories picks the short menu shown when auto-classification missed:
// the user's most-used categories for the kind over the recent window,
// padded with catalog order.
func (c *Controller) seedCategories(ctx context.Context, id ledger.Identity, kind domain.Kind, cats []domain.Category) []domain.Category {
	forKind := catalog.ForKind(cats, kind)
	if len(forKind) <= seedMenuSize {
		return forKind
	}

	counts := make(map[string]int)
	if recent, err := c.ledger.GetRecentEntries(ctx, id, recentWindow); err == nil {
		for _, e := range recent {
			counts[e.Category]++
		}
	}

	ranked := make([]domain.Category, len(forKind))
	copy(ranked, forKind)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i].Name] > counts[ranked[j].Name]
	})
	return ranked[:seedMenuSize]
}

// kindAllowed pairs a picked category's kind with the draft's. Investment
// drafts draw from expense-side categories.
func kindAllowed(catKind, draftKind domain.Kind) bool {
	if draftKind == domain.KindInvestment {
		return catKind == domain.KindExpense || catKind == domain.KindInvestment
	}
	return catKind == draftKind
}

func accountOrder(accounts map[string]int64) []string {
	names := make([]string, 0, len(accounts))
	for name := range accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
