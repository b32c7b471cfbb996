package ledger

import (
	"errors"
)

var (
	// ErrTimeout means the remote ledger did not answer within the bounded
	// call timeout. The caller keeps any in-flight draft and offers a retry.
	ErrTimeout = errors.New("ledger: request timed out")

	// ErrTransport covers connection-level failures (DNS, refused, reset).
	ErrTransport = errors.New("ledger: transport error")

	// ErrRemote means the remote answered but refused the request: a non-200
	// status or a success:false body. Both are one failure class to callers.
	ErrRemote = errors.New("ledger: remote rejected request")
)

// IsRetryable reports whether the error is one a user-facing retry button
// makes sense for. Every ledger failure class qualifies; programming errors
// do not.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrTransport) || errors.Is(err, ErrRemote)
}
