package ledger

import (
	"context"

	"github.com/minhdn/jarbot/internal/domain"
)

// Identity names the remote ledger one user writes to. Which ledger a user
// owns is decided outside this library; callers pass it in per operation.
type Identity struct {
	User     domain.UserID
	LedgerID string
	APIKey   string
}

// Service is the remote-ledger surface the dialog controller consumes.
// This interface enables mocking in dialog and catalog tests.
type Service interface {
	// Ping checks remote liveness.
	Ping(ctx context.Context, id Identity) error

	// GetCategories returns the user's category catalog. Callers fall back
	// to the built-in catalog on error; the dialog is never blocked on it.
	GetCategories(ctx context.Context, id Identity) ([]domain.Category, error)

	// GetBalance returns jar/account balances. With useCache, a non-expired
	// snapshot is returned without a network call.
	GetBalance(ctx context.Context, id Identity, useCache bool) (domain.BalanceSnapshot, error)

	// GetRecentEntries returns up to limit most recent committed entries.
	GetRecentEntries(ctx context.Context, id Identity, limit int) ([]domain.CommittedEntry, error)

	// AddTransaction appends the draft to the ledger. On success the user's
	// cached snapshots are invalidated before returning.
	AddTransaction(ctx context.Context, id Identity, draft *domain.TransactionDraft) (domain.CommittedEntry, error)
}
