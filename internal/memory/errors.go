// ABOUTME: Error types for the conversation memory service
// ABOUTME: Distinguishes invalid arguments and partial writes from backing-store failures
package memory

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks caller mistakes: non-positive limits, missing
// identifiers, empty queries. Reported synchronously, never retried.
var ErrInvalidArgument = errors.New("invalid argument")

// PartialWriteError reports a turn whose relational row was written but
// whose embedding upsert failed. The row is durable; the index entry is
// missing until a repair pass re-embeds it. Callers must treat this as a
// distinct condition, not full success.
type PartialWriteError struct {
	MessageID int64
	Err       error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("turn %d written without embedding: %v", e.MessageID, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

func invalidArgf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
