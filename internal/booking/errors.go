package booking

import "errors"

// Sentinel errors describing the domain failure kinds.  Callers wrap them
// with context via fmt.Errorf("%w: ...") and handlers match with errors.Is
// to select an HTTP status.  None of these are retryable; infrastructure
// failures (store unavailable, broker down) surface as ordinary errors
// outside this set.
var (
	// ErrNotFound means a referenced user, venue or reservation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means a malformed request: bad time or date range,
	// headcount over capacity, or a missing required field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict means an active reservation already occupies the requested
	// venue and span.
	ErrConflict = errors.New("conflicting reservation")

	// ErrInvalidState means a lifecycle guard rejected a transition, such as
	// confirming a reservation that is not pending.
	ErrInvalidState = errors.New("invalid state")

	// ErrUnauthorized means the caller is neither the owning user nor an
	// admin.  Ownership checks live in the handler layer; the domain only
	// exposes the owner's user ID.
	ErrUnauthorized = errors.New("unauthorized")
)
