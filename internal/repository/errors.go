// Package repository implements MySQL persistence for users, venues,
// refresh tokens and reservations.  Repositories return sql.ErrNoRows for
// missing rows and the booking package sentinels for domain failures
// detected inside store transactions, such as a conflicting reservation.
// Anything else is an infrastructure error and is passed through untouched
// for the caller to surface.
package repository

import "errors"

// ErrEmailExists is returned when registering a user with an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrNameExists is returned when creating or renaming a venue to a name
// that is already taken.
var ErrNameExists = errors.New("name already exists")

// ErrHasReservations is returned when deleting a venue that still has
// reservations.  Venue deletion is guarded, unlike reservation deletion.
var ErrHasReservations = errors.New("venue has reservations")
