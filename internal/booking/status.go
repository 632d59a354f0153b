package booking

import "fmt"

// Status is the lifecycle state of a reservation.  The value stored in the
// database is the upper-case string form; display labels belong to clients.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// ParseStatus validates a raw status string, accepting the canonical
// upper-case names only.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

// CanConfirm reports whether a confirm transition is allowed.  Only pending
// reservations may be confirmed.
func (s Status) CanConfirm() bool { return s == StatusPending }

// CanCancel reports whether a cancel transition is allowed.  Pending and
// confirmed reservations may be cancelled; CANCELLED and COMPLETED are
// terminal.
func (s Status) CanCancel() bool { return s == StatusPending || s == StatusConfirmed }

// Active reports whether the reservation counts toward conflict detection.
// Everything except CANCELLED blocks the slot, including COMPLETED.
func (s Status) Active() bool { return s != StatusCancelled }
