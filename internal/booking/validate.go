package booking

import "fmt"

// Venue is the read-only projection of a venue that the guards need.  The
// persistence model lives elsewhere; the core only consumes capacity,
// pricing and availability.
type Venue struct {
	ID           uint64
	Capacity     int
	DayRateCents int64
	Available    bool
}

// Request carries the caller-supplied fields of a reservation write.  The
// same guards run for create and for update; updates additionally exclude
// the reservation itself from conflict detection at the store level.
type Request struct {
	Span        Span
	Headcount   int
	EventType   string
	Description string
}

// Validate runs every precondition that does not require the store: venue
// availability, field presence, time and date range sanity and the capacity
// bound.  It returns the first violated guard, wrapped so callers can match
// the kind with errors.Is.  Conflict detection happens afterwards, inside
// the store transaction, so that check-then-act stays atomic.
func (r Request) Validate(v Venue) error {
	if !v.Available {
		return fmt.Errorf("%w: venue %d is not available for booking", ErrInvalidState, v.ID)
	}
	if r.EventType == "" {
		return fmt.Errorf("%w: event type is required", ErrInvalidInput)
	}
	if r.Span.DateStart.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidInput)
	}
	if r.Span.TimeEnd <= r.Span.TimeStart {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalidInput)
	}
	if r.Span.DateEnd != nil && r.Span.EndDate().Before(dateOnly(r.Span.DateStart)) {
		return fmt.Errorf("%w: end date must not be before start date", ErrInvalidInput)
	}
	if r.Headcount < 1 {
		return fmt.Errorf("%w: headcount must be at least 1", ErrInvalidInput)
	}
	if r.Headcount > v.Capacity {
		return fmt.Errorf("%w: headcount %d exceeds venue capacity %d", ErrInvalidInput, r.Headcount, v.Capacity)
	}
	return nil
}

// TotalPriceCents computes the reservation price: the venue day rate times
// the number of calendar days spanned, never fewer than one day.
func (r Request) TotalPriceCents(v Venue) int64 {
	return v.DayRateCents * int64(r.Span.Days())
}
