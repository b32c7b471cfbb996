package domain

import (
	"errors"
	"fmt"
	"time"
)

// Stage says which user input the confirmation dialog is currently waiting
// for. Terminal outcomes (committed, cancelled) have no stage: the draft is
// destroyed instead.
type Stage string

const (
	// StageCategory waits for a category pick from the category menu.
	StageCategory Stage = "category"
	// StageJar waits for a jar pick from the jar menu.
	StageJar Stage = "jar"
	// StageAccount waits for a funding-account pick.
	StageAccount Stage = "account"
	// StageConfirm waits for confirm / edit / cancel on the full draft.
	StageConfirm Stage = "confirm"
	// StageEditCategory..StageEditAccount are single-field edit detours
	// entered from StageConfirm; after one pick the draft returns to
	// StageConfirm.
	StageEditCategory Stage = "edit-category"
	StageEditJar      Stage = "edit-jar"
	StageEditAccount  Stage = "edit-account"
)

// ErrIncompleteDraft is returned by ReadyToCommit when a required field is
// still unset. Reaching commit with this error is a controller bug, never a
// user error.
var ErrIncompleteDraft = errors.New("draft is missing a required field")

// TransactionDraft is the single in-flight transaction a user is building
// through the confirmation dialog. Exactly one exists per user; parsing a new
// message replaces it wholesale.
//
// Category, Bucket and Account start unset and are filled by dialog steps.
// The zero Bucket/Account and nil Category mean "not chosen yet".
type TransactionDraft struct {
	ID        string
	UserID    UserID
	Kind      Kind
	Amount    int64
	Note      string
	Category  *Category
	Bucket    Bucket
	Account   Account
	Stage     Stage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReadyToCommit is the single validation gate before a ledger write. It
// returns nil only when every field the write needs is set and well-formed.
func (d *TransactionDraft) ReadyToCommit() error {
	if d.Amount <= 0 {
		return fmt.Errorf("amount %d: %w", d.Amount, ErrIncompleteDraft)
	}
	if d.Category == nil {
		return fmt.Errorf("category: %w", ErrIncompleteDraft)
	}
	if d.Bucket == "" || !d.Bucket.Valid() {
		return fmt.Errorf("bucket %q: %w", d.Bucket, ErrIncompleteDraft)
	}
	if d.Account == "" || !d.Account.Valid() {
		return fmt.Errorf("account %q: %w", d.Account, ErrIncompleteDraft)
	}
	return nil
}

// BalanceSnapshot is a cached read of the remote ledger's balances: per-jar
// totals, per-account totals and the grand total, all in VND. FetchedAt is
// set by the client when the snapshot is taken, not by the server.
type BalanceSnapshot struct {
	Jars      map[Bucket]int64
	Accounts  map[string]int64
	Total     int64
	FetchedAt time.Time
}
