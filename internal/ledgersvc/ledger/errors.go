package ledger

import "fmt"

// Error kinds shared by every layer. A caller distinguishes them with
// errors.As; none of them is fatal and none is retried automatically,
// except that a ConflictError on an idempotent operation is safe to retry.

// ValidationError reports malformed input, e.g. a non-positive buy-in.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// StateError reports an operation that is illegal in the current
// lifecycle or seat state, e.g. a rebuy on a cashed-out seat.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string { return e.Reason }

// NotFoundError reports a passcode or identifier that does not resolve.
type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string { return e.Reason }

// ConflictError reports an atomic conditional write that lost a race.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func Invalidf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func Statef(format string, args ...any) error {
	return &StateError{Reason: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &NotFoundError{Reason: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}
