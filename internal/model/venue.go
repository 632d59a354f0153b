package model

import "time"

// Venue represents a bookable hall as stored in the `venues` table.
// Reservations reference a venue and are validated against its capacity
// and availability flag.  Prices are kept in cents to avoid floating
// point drift.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – unique venue name.
//  Location     – street address or campus location.
//  Description  – optional free-text description.
//  Capacity     – maximum headcount the venue admits.
//  DayRateCents – rental price per calendar day, in cents.
//  ImageURL     – optional path of the uploaded venue photo.
//  Equipment    – optional comma-separated equipment list.
//  IsAvailable  – whether the venue currently accepts reservations.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Venue struct {
	ID           uint64    // venues.id
	Name         string    // venues.name
	Location     string    // venues.location
	Description  *string   // venues.description (nullable)
	Capacity     int       // venues.capacity
	DayRateCents int64     // venues.day_rate_cents
	ImageURL     *string   // venues.image_url (nullable)
	Equipment    *string   // venues.equipment (nullable)
	IsAvailable  bool      // venues.is_available
	CreatedAt    time.Time // venues.created_at
	UpdatedAt    time.Time // venues.updated_at
}
