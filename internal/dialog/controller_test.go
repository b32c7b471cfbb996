package dialog

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhdn/jarbot/internal/catalog"
	"github.com/minhdn/jarbot/internal/domain"
	"github.com/minhdn/jarbot/internal/ledger"
	"github.com/minhdn/jarbot/internal/matcher"
	"github.com/minhdn/jarbot/internal/session"
)

// mockLedger implements ledger.Service for controller tests.
type mockLedger struct {
	mu       sync.Mutex
	cats     []domain.Category
	catErr   error
	writeErr error
	writes   []domain.TransactionDraft
	recent   []domain.CommittedEntry
	balance  domain.BalanceSnapshot
}

func (m *mockLedger) Ping(ctx context.Context, id ledger.Identity) error { return nil }

func (m *mockLedger) GetCategories(ctx context.Context, id ledger.Identity) ([]domain.Category, error) {
	return m.cats, m.catErr
}

func (m *mockLedger) GetBalance(ctx context.Context, id ledger.Identity, useCache bool) (domain.BalanceSnapshot, error) {
	return m.balance, nil
}

func (m *mockLedger) GetRecentEntries(ctx context.Context, id ledger.Identity, limit int) ([]domain.CommittedEntry, error) {
	return m.recent, nil
}

func (m *mockLedger) AddTransaction(ctx context.Context, id ledger.Identity, draft *domain.TransactionDraft) (domain.CommittedEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := draft.ReadyToCommit(); err != nil {
		// The completeness invariant: a write must never see a partial draft.
		panic("AddTransaction received incomplete draft: " + err.Error())
	}
	if m.writeErr != nil {
		return domain.CommittedEntry{}, m.writeErr
	}
	m.writes = append(m.writes, *draft)
	return domain.CommittedEntry{
		ID:        "tx-1",
		Kind:      draft.Kind,
		Amount:    draft.Amount,
		Note:      draft.Note,
		Category:  draft.Category.Name,
		Bucket:    draft.Bucket,
		Account:   draft.Account,
		Timestamp: time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC),
	}, nil
}

func testCatalog() []domain.Category {
	return []domain.Category{
		{ID: "1", Name: "Ăn uống", Kind: domain.KindExpense, Icon: "🍜"},
		{ID: "2", Name: "Di chuyển", Kind: domain.KindExpense, Icon: "🚕"},
		{ID: "3", Name: "Giải trí", Kind: domain.KindExpense, Icon: "🎮", DefaultBucket: domain.BucketPLAY},
		{ID: "4", Name: "Đầu tư", Kind: domain.KindExpense, Icon: "📈", DefaultBucket: domain.BucketFFA, AutoAllocate: true},
		{ID: "5", Name: "Lương", Kind: domain.KindIncome, Icon: "💰", AutoAllocate: true},
		{ID: "6", Name: "Thưởng", Kind: domain.KindIncome, Icon: "🎁"},
		{ID: "7", Name: "Khác", Kind: domain.KindExpense, Icon: "📦"},
	}
}

func newTestController(svc ledger.Service) (*Controller, *session.Store) {
	sessions := session.NewStore(0)
	prov := catalog.NewProvider(svc, nil, zerolog.Nop())
	ctrl := NewController(matcher.New(nil), prov, sessions, svc, zerolog.Nop())
	return ctrl, sessions
}

var testIdentity = ledger.Identity{User: "u1", LedgerID: "sheet-1", APIKey: "k"}

func msg(text string) domain.RawMessage {
	return domain.RawMessage{UserID: "u1", Text: text, ReceivedAt: time.Now()}
}

func act(t *testing.T, wire string) domain.Action {
	t.Helper()
	a, err := domain.ParseAction(wire)
	require.NoError(t, err)
	return a
}

func hasChoice(p Prompt, data string) bool {
	for _, c := range p.Choices {
		if c.Data == data {
			return true
		}
	}
	return false
}

// Scenario A: "cà phê 35k" → matched category without a default jar → jar
// menu → account menu → confirm → write with all fields set.
func TestFullExpenseFlow(t *testing.T) {
	ml := &mockLedger{cats: testCatalog()}
	ctrl, sessions := newTestController(ml)
	ctx := context.Background()

	prompt, handled := ctrl.HandleMessage(ctx, testIdentity, msg("cà phê 35k"))
	require.True(t, handled)
	assert.Contains(t, prompt.Text, "chọn hũ")
	assert.True(t, hasChoice(prompt, "jar:NEC"))

	prompt = ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "jar:NEC"))
	assert.Contains(t, prompt.Text, "chọn tài khoản")
	assert.True(t, hasChoice(prompt, "account:cash"))

	prompt = ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "account:cash"))
	assert.Contains(t, prompt.Text, "Xác nhận")
	assert.Contains(t, prompt.Text, "35.000đ")
	assert.Contains(t, prompt.Text, "Ăn uống")

	prompt = ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "confirm"))
	assert.Contains(t, prompt.Text, "Đã ghi sổ")

	require.Len(t, ml.writes, 1)
	w := ml.writes[0]
	assert.Equal(t, domain.KindExpense, w.Kind)
	assert.Equal(t, int64(35000), w.Amount)
	assert.Equal(t, "Ăn uống", w.Category.Name)
	assert.Equal(t, domain.BucketNEC, w.Bucket)
	assert.Equal(t, domain.AccountCash, w.Account)

	_, err := sessions.Get("u1")
	assert.ErrorIs(t, err, session.ErrNoDraft, "draft must be cleared after commit")
}

// Scenario B: auto-allocating category skips the jar menu entirely.
func TestAutoAllocateSkipsJarMenu(t *testing.T) {
	ml := &mockLedger{cats: testCatalog()}
	ctrl, sessions := newTestController(ml)

	prompt, handled := ctrl.HandleMessage(context.Background(), testIdentity, msg("thu lương 5tr"))
	require.True(t, handled)
	assert.Contains(t, prompt.Text, "chọn tài khoản", "jar menu must be skipped")

	draft, err := sessions.Get("u1")
	require.NoError(t, err)
	assert.Equal(t, domain.KindIncome, draft.Kind)
	assert.Equal(t, int64(5_000_000), draft.Amount)
	assert.Equal(t, "Lương", draft.Category.Name)
	assert.Equal(t, domain.BucketAuto, draft.Bucket)
	assert.Equal(t, domain.StageAccount, draft.Stage)
}

// A category with a default jar (but no auto-allocate) also skips the menu.
func TestDefaultBucketSkipsJarMenu(t *testing.T) {
	ml := &mockLedger{cats: testCatalog()}
	ctrl, sessions := newTestController(ml)

	_, handled := ctrl.HandleMessage(context.Background(), testIdentity, msg("xem phim 150k"))
	require.True(t, handled)

	draft, err := sessions.Get("u1")
	require.NoError(t, err)
	assert.Equal(t, "Giải trí", draft.Category.Name)
	assert.Equal(t, domain.BucketPLAY, draft.Bucket)
	assert.Equal(t, domain.StageAccount, draft.Stage)
}

// No category match → manual selection menu with a show-all escape hatch,
// never a silent guess.
func TestNoMatchShowsCategoryMenu(t *testing.T) {
	ml := &mockLedger{cats: testCatalog()}
	ctrl, _ := newTestController(ml)
	ctx := context.Background()

	prompt, handled := ctrl.HandleMessage(ctx, testIdentity, msg("zzz bí ẩn 99k"))
	require.True(t, handled)
	assert.True(t, hasChoice(prompt, "show-all-categories"))

	prompt = ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "show-all-categories"))
	assert.True(t, hasChoice(prompt, "category:7"), "show-all must list every expense category")
	assert.False(t, hasChoice(prompt, "category:5"), "income categories stay hidden for an expense")

	prompt = ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "category:1"))
	assert.Contains(t, prompt.Text, "chọn hũ")
}

// A picked category of the wrong kind (stale or forged payload) is refused
// and the menu re-rendered.
func TestPickCategoryWrongKind(t *testing.T) {
	ml := &mockLedger{cats: testCatalog()}
	ctrl, sessions := newTestController(ml)
	ctx := context.Background()

	_, handled := ctrl.HandleMessage(ctx, testIdentity, msg("zzz bí ẩn 99k")) // expense, no match
	require.True(t, handled)

	prompt := ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "category:5")) // Lương is income
	assert.True(t, hasChoice(prompt, "category:1"), "menu should be re-rendered")

	draft, err := sessions.Get("u1")
	require.NoError(t, err)
	assert.Nil(t, draft.Category)
	assert.Equal(t, domain.StageCategory, draft.Stage)
}

// Non-transaction text is not claimed and changes nothing.
func TestNonTransactionMessage(t *testing.T) {
	ml := &mockLedger{cats: testCatalog()}
	ctrl, sessions := newTestController(ml)

	prompt, handled := ctrl.HandleMessage(context.Background(), testIdentity, msg("xin chào bot"))
	assert.False(t, handled)
	assert.True(t, prompt.IsZero())
	assert.Equal(t, 0, sessions.Len())
}

// A new parsed message discards the prior in-flight draft without asking.
func TestSuperseding(t *testing.T) {
	ml := &mockLedger{cats: testCatalog()}
	ctrl, sessions := newTestController(ml)
	ctx := context.Background()

	_, handled := ctrl.HandleMessage(ctx, testIdentity, msg("cà phê 35k"))
	require.True(t, handled)
	_, handled = ctrl.HandleMessage(ctx, testIdentity, msg("trà sữa 50k"))
	require.True(t, handled)

	draft, err := sessions.Get("u1")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), draft.Amount)
	assert.Equal(t, 1, sessions.Len())
}

// Edit detours return to Confirming after exactly one field update.
func TestEditFlows(t *testing.T) {
	ml := &mockLedger{cats: testCatalog()}
	ctrl, sessions := newTestController(ml)
	ctx := context.Background()

	ctrl.HandleMessage(ctx, testIdentity, msg("cà phê 35k"))
	ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "jar:NEC"))
	ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "account:cash"))

	prompt := ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "edit-jar"))
	assert.Contains(t, prompt.Text, "chọn hũ")

	prompt = ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "jar:PLAY"))
	assert.Contains(t, prompt.Text, "Xác nhận", "edit must return to Confirming")

	draft, err := sessions.Get("u1")
	require.NoError(t, err)
	assert.Equal(t, domain.BucketPLAY, draft.Bucket)
	assert.Equal(t, domain.AccountCash, draft.Account, "other fields untouched")

	prompt = ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "edit-account"))
	ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "account:bank"))
	prompt = ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "edit-category"))
	prompt = ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "category:2"))
	assert.Contains(t, prompt.Text, "Xác nhận")

	draft, err = sessions.Get("u1")
	require.NoError(t, err)
	assert.Equal(t, "Di chuyển", draft.Category.Name)
	assert.Equal(t, domain.AccountBank, draft.Account)
}

// Scenario D: a failed write preserves the draft and retry re-sends it
// without re-entry.
func TestCommitFailurePreservesDraft(t *testing.T) {
	ml := &mockLedger{cats: testCatalog(), writeErr: ledger.ErrTimeout}
	ctrl, sessions := newTestController(ml)
	ctx := context.Background()

	ctrl.HandleMessage(ctx, testIdentity, msg("cà phê 35k"))
	ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "jar:NEC"))
	ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "account:cash"))

	prompt := ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "confirm"))
	assert.Contains(t, prompt.Text, "Chưa ghi được")
	assert.True(t, hasChoice(prompt, "retry"))

	draft, err := sessions.Get("u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageConfirm, draft.Stage)
	assert.Equal(t, int64(35000), draft.Amount)

	ml.writeErr = nil
	prompt = ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "retry"))
	assert.Contains(t, prompt.Text, "Đã ghi sổ")
	require.Len(t, ml.writes, 1)
	assert.Equal(t, int64(35000), ml.writes[0].Amount)

	_, err = sessions.Get("u1")
	assert.ErrorIs(t, err, session.ErrNoDraft)
}

func TestCancelDiscardsDraft(t *testing.T) {
	ml := &mockLedger{cats: testCatalog()}
	ctrl, sessions := newTestController(ml)
	ctx := context.Background()

	ctrl.HandleMessage(ctx, testIdentity, msg("cà phê 35k"))
	prompt := ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "cancel"))
	assert.Contains(t, prompt.Text, "hủy")

	assert.Equal(t, 0, sessions.Len())
	assert.Empty(t, ml.writes, "cancel must not write")
}

// A button press with no in-flight draft is a logged no-op.
func TestStaleActionIsNoOp(t *testing.T) {
	ml := &mockLedger{cats: testCatalog()}
	ctrl, _ := newTestController(ml)

	prompt := ctrl.HandleAction(context.Background(), testIdentity, "u1", act(t, "confirm"))
	assert.True(t, prompt.IsZero())
	assert.Empty(t, ml.writes)
}

// Out-of-stage presses are ignored without corrupting the draft.
func TestOutOfStageActionIgnored(t *testing.T) {
	ml := &mockLedger{cats: testCatalog()}
	ctrl, sessions := newTestController(ml)
	ctx := context.Background()

	ctrl.HandleMessage(ctx, testIdentity, msg("cà phê 35k")) // waiting on jar
	prompt := ctrl.HandleAction(ctx, testIdentity, "u1", act(t, "confirm"))
	assert.True(t, prompt.IsZero())
	assert.Empty(t, ml.writes)

	draft, err := sessions.Get("u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageJar, draft.Stage)
}

// The catalog fetch failing never blocks the dialog: classification runs
// against the fallback catalog.
func TestDialogOnFallbackCatalog(t *testing.T) {
	ml := &mockLedger{catErr: ledger.ErrTransport}
	ctrl, sessions := newTestController(ml)

	prompt, handled := ctrl.HandleMessage(context.Background(), testIdentity, msg("cà phê 35k"))
	require.True(t, handled)
	assert.False(t, prompt.IsZero())

	draft, err := sessions.Get("u1")
	require.NoError(t, err)
	require.NotNil(t, draft.Category)
	assert.Equal(t, "Ăn uống", draft.Category.Name)
}

// Fuzz dialog action sequences: whatever order button presses arrive in, a
// ledger write only ever sees a complete draft (the mock panics otherwise).
func TestWriteRequiresCompleteDraft(t *testing.T) {
	wires := []string{
		"confirm", "cancel", "retry", "back",
		"category:1", "category:5", "category:999", "show-all-categories",
		"jar:NEC", "jar:PLAY", "jar:AUTO", "jar:NONE",
		"account:cash", "account:bank", "account:other",
		"edit-category", "edit-jar", "edit-account",
	}
	messages := []string{"cà phê 35k", "zzz 10k", "thu lương 5tr", "xem phim 150k"}

	rng := rand.New(rand.NewSource(42))
	ml := &mockLedger{cats: testCatalog()}
	ctrl, _ := newTestController(ml)
	ctx := context.Background()

	for i := 0; i < 2000; i++ {
		if rng.Intn(10) == 0 {
			ctrl.HandleMessage(ctx, testIdentity, msg(messages[rng.Intn(len(messages))]))
			continue
		}
		a, err := domain.ParseAction(wires[rng.Intn(len(wires))])
		require.NoError(t, err)
		ctrl.HandleAction(ctx, testIdentity, "u1", a)
	}

	for _, w := range ml.writes {
		assert.NoError(t, w.ReadyToCommit())
	}
}

func TestBalanceSummary(t *testing.T) {
	ml := &mockLedger{
		cats: testCatalog(),
		balance: domain.BalanceSnapshot{
			Jars:     map[domain.Bucket]int64{domain.BucketNEC: 2_750_000},
			Accounts: map[string]int64{"cash": 500_000},
			Total:    5_000_000,
		},
	}
	ctrl, _ := newTestController(ml)

	prompt, err := ctrl.BalanceSummary(context.Background(), testIdentity)
	require.NoError(t, err)
	assert.Contains(t, prompt.Text, "2.750.000đ")
	assert.Contains(t, prompt.Text, "Tổng: 5.000.000đ")
}
