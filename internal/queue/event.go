// Package queue defines the messages exchanged over RabbitMQ and the
// background consumer that processes them.
package queue

// ReservationConfirmedEvent is published when a reservation reaches the
// CONFIRMED state.  It carries enough context for downstream consumers to
// notify or log without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID   uint64 `json:"reservation_id"`
	UserID          uint64 `json:"user_id"`
	UserName        string `json:"user_name"`
	VenueID         uint64 `json:"venue_id"`
	VenueName       string `json:"venue_name"`
	DateStart       string `json:"date_start"`
	DateEnd         string `json:"date_end,omitempty"`
	TimeStart       string `json:"time_start"`
	TimeEnd         string `json:"time_end"`
	EventType       string `json:"event_type"`
	Headcount       int    `json:"headcount"`
	TotalPriceCents int64  `json:"total_price_cents"`
	ConfirmedAt     string `json:"confirmed_at"`
}
