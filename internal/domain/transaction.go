package domain

import (
	"time"
)

// UserID identifies the chat user a message, draft or cache entry belongs to.
// It is opaque to this library; the transport layer decides what goes in it.
type UserID string

// Kind is the transaction type detected by the lexer.
type Kind string

const (
	KindExpense    Kind = "expense"
	KindIncome     Kind = "income"
	KindInvestment Kind = "investment"
)

// Label returns the Vietnamese display label for the kind.
func (k Kind) Label() string {
	switch k {
	case KindIncome:
		return "Thu nhập"
	case KindInvestment:
		return "Đầu tư"
	default:
		return "Chi tiêu"
	}
}

// RawMessage is one inbound free-text message. It is never stored beyond the
// processing of the event that carried it.
type RawMessage struct {
	UserID     UserID
	Text       string
	ReceivedAt time.Time
}

// ParsedIntent is the lexer's output for one RawMessage.
// Amount is in VND minor units (1 đồng); it is always > 0 when a ParsedIntent
// is produced at all.
type ParsedIntent struct {
	Kind   Kind
	Amount int64
	Note   string
}

// Category is one entry of a user's category catalog. Owned by the remote
// ledger; cached locally with a TTL (see catalog.Provider).
type Category struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Kind          Kind   `json:"kind" yaml:"kind"`
	Icon          string `json:"icon" yaml:"icon"`
	DefaultBucket Bucket `json:"defaultBucket,omitempty" yaml:"defaultBucket,omitempty"`
	AutoAllocate  bool   `json:"autoAllocate,omitempty" yaml:"autoAllocate,omitempty"`
}

// CommittedEntry is the server's view of a transaction after a successful
// write, echoed back so the dialog can render the authoritative result.
type CommittedEntry struct {
	ID        string
	Kind      Kind
	Amount    int64
	Note      string
	Category  string
	Bucket    Bucket
	Account   Account
	Timestamp time.Time
}
