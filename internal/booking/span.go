// Package booking contains the reservation domain core: the span overlap
// predicate, the status state machine and the validation guards that run
// before any reservation is written.  The package is free of I/O so that
// every rule can be unit tested without a database.
package booking

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
// Reservations carry a start and end TimeOfDay independent of the date
// range they span.  The zero value is midnight.
type TimeOfDay int

// ParseTimeOfDay parses an "HH:MM" string into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// String renders the time back into "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Span is the period a reservation occupies: a calendar-day range combined
// with a time-of-day window that applies to every day in the range.  A nil
// DateEnd means a single-day reservation; EndDate() normalizes it.
type Span struct {
	DateStart time.Time  // first calendar day (time component ignored)
	DateEnd   *time.Time // last calendar day; nil means same as DateStart
	TimeStart TimeOfDay
	TimeEnd   TimeOfDay
}

// EndDate returns the effective last day of the span.  This is the single
// normalization point for the optional end date; both Overlaps and Days go
// through it so the "nil means single day" rule lives in one place.
func (s Span) EndDate() time.Time {
	if s.DateEnd == nil {
		return dateOnly(s.DateStart)
	}
	return dateOnly(*s.DateEnd)
}

// Days returns the number of calendar days the span covers, at least 1.
func (s Span) Days() int {
	d := int(s.EndDate().Sub(dateOnly(s.DateStart)).Hours()/24) + 1
	if d < 1 {
		d = 1
	}
	return d
}

// Overlaps reports whether two spans conflict.  Date ranges intersect
// inclusively; time-of-day windows intersect strictly, so a window ending
// exactly when another starts does not conflict.
func (s Span) Overlaps(other Span) bool {
	if dateOnly(s.DateStart).After(other.EndDate()) || dateOnly(other.DateStart).After(s.EndDate()) {
		return false
	}
	return s.TimeStart < other.TimeEnd && other.TimeStart < s.TimeEnd
}

// dateOnly truncates a timestamp to its UTC calendar day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
