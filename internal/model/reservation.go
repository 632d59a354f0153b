package model

import (
	"time"

	"github.com/iliyamo/hall-booking/internal/booking"
)

// Reservation records a user's booking of a venue for a span: a calendar
// day range plus a daily time-of-day window.  A nil DateEnd means a
// single-day reservation.  UserID and VenueID never change after
// creation; updates rewrite the span and descriptive fields and recompute
// the price.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who owns the reservation (immutable).
//  VenueID         – venue being reserved (immutable).
//  DateStart       – first calendar day of the reservation.
//  DateEnd         – last calendar day, nil for single-day bookings.
//  TimeStart       – daily start time.
//  TimeEnd         – daily end time, strictly after TimeStart.
//  EventType       – short label for the kind of event.
//  Description     – optional free-text description.
//  Headcount       – expected number of attendees.
//  TotalPriceCents – venue day rate times the number of days spanned.
//  Status          – lifecycle state, see booking.Status.
//  UserName        – owner display name, populated by list joins.
//  VenueName       – venue name, populated by list joins.
//  CreatedAt       – creation timestamp, set by the store.
//  UpdatedAt       – last update timestamp, set by the store.
type Reservation struct {
	ID              uint64            `json:"id"`
	UserID          uint64            `json:"user_id"`
	VenueID         uint64            `json:"venue_id"`
	DateStart       time.Time         `json:"-"`
	DateEnd         *time.Time        `json:"-"`
	TimeStart       booking.TimeOfDay `json:"-"`
	TimeEnd         booking.TimeOfDay `json:"-"`
	EventType       string            `json:"event_type"`
	Description     *string           `json:"description,omitempty"`
	Headcount       int               `json:"headcount"`
	TotalPriceCents int64             `json:"total_price_cents"`
	Status          booking.Status    `json:"status"`
	UserName        string            `json:"user_name,omitempty"`
	VenueName       string            `json:"venue_name,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Span assembles the reservation's occupancy period for overlap checks
// and day counting.
func (r Reservation) Span() booking.Span {
	return booking.Span{
		DateStart: r.DateStart,
		DateEnd:   r.DateEnd,
		TimeStart: r.TimeStart,
		TimeEnd:   r.TimeEnd,
	}
}
