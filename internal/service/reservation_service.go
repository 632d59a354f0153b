// Package service contains the reservation facade: the single entry point
// the HTTP layer talks to for booking operations.  It resolves users and
// venues, runs the booking guards, computes prices and delegates storage
// to the repositories behind small interfaces so the whole flow is
// testable with in-memory fakes.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/hall-booking/internal/booking"
	"github.com/iliyamo/hall-booking/internal/model"
)

// UserStore is the user lookup the facade consumes.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// VenueStore is the venue lookup the facade consumes.
type VenueStore interface {
	GetByID(ctx context.Context, id uint64) (model.Venue, error)
}

// ReservationStore is the reservation persistence contract.  Create and
// Update must be atomic with their conflict check: either the reservation
// is written and no active reservation overlaps it, or booking.ErrConflict
// comes back and nothing is written.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	Update(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	SetStatus(ctx context.Context, id uint64, from, to booking.Status) (model.Reservation, error)
	Delete(ctx context.Context, id uint64) error
	ListAll(ctx context.Context, limit, offset int) ([]model.Reservation, int64, error)
	ListByStatus(ctx context.Context, status booking.Status, limit, offset int) ([]model.Reservation, int64, error)
	ListByUser(ctx context.Context, userID uint64, status *booking.Status, limit, offset int) ([]model.Reservation, int64, error)
	ListFutureByUser(ctx context.Context, userID uint64, asOf time.Time, limit, offset int) ([]model.Reservation, int64, error)
	ListByVenue(ctx context.Context, venueID uint64) ([]model.Reservation, error)
	ListByVenueOnDate(ctx context.Context, venueID uint64, date time.Time) ([]model.Reservation, error)
}

// ReservationInput carries the caller-supplied fields for create and
// update.  VenueID is only honored on create; a reservation never moves to
// a different venue.
type ReservationInput struct {
	VenueID     uint64
	DateStart   time.Time
	DateEnd     *time.Time
	TimeStart   booking.TimeOfDay
	TimeEnd     booking.TimeOfDay
	EventType   string
	Description *string
	Headcount   int
}

// Pagination selects a page of results.  Page numbers start at 1.
type Pagination struct {
	Page int
	Size int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (p Pagination) limitOffset() (limit, offset int) {
	size := p.Size
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	return size, (page - 1) * size
}

// Page is a page of reservations together with the total match count.
type Page struct {
	Items []model.Reservation `json:"items"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Size  int                 `json:"size"`
}

func newPage(items []model.Reservation, total int64, p Pagination) Page {
	limit, offset := p.limitOffset()
	return Page{Items: items, Total: total, Page: offset/limit + 1, Size: limit}
}

// ReservationService orchestrates reservation reads and writes.  It does
// not enforce who may call an operation; handlers decide that from the
// owner ID exposed on every reservation.
type ReservationService struct {
	users        UserStore
	venues       VenueStore
	reservations ReservationStore
	now          func() time.Time
}

// NewReservationService wires the facade.  The now function may be nil, in
// which case the system clock is used; tests inject a fixed instant.
func NewReservationService(users UserStore, venues VenueStore, reservations ReservationStore, now func() time.Time) *ReservationService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ReservationService{users: users, venues: venues, reservations: reservations, now: now}
}

// Create validates a booking request and persists it in PENDING state.
// The price is the venue day rate times the number of days spanned.
func (s *ReservationService) Create(ctx context.Context, userID uint64, in ReservationInput) (model.Reservation, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.Reservation{}, notFound(err, "user %d", userID)
	}
	venue, err := s.venues.GetByID(ctx, in.VenueID)
	if err != nil {
		return model.Reservation{}, notFound(err, "venue %d", in.VenueID)
	}

	req := requestFrom(in)
	if err := req.Validate(venueView(venue)); err != nil {
		return model.Reservation{}, err
	}

	res := model.Reservation{
		UserID:          user.ID,
		VenueID:         venue.ID,
		DateStart:       in.DateStart,
		DateEnd:         in.DateEnd,
		TimeStart:       in.TimeStart,
		TimeEnd:         in.TimeEnd,
		EventType:       in.EventType,
		Description:     in.Description,
		Headcount:       in.Headcount,
		TotalPriceCents: req.TotalPriceCents(venueView(venue)),
		Status:          booking.StatusPending,
		UserName:        user.FullName,
		VenueName:       venue.Name,
	}
	if err := s.reservations.Create(ctx, &res); err != nil {
		return model.Reservation{}, err
	}
	return res, nil
}

// Update rewrites the span and descriptive fields of a reservation,
// re-running every guard with the reservation excluded from conflict
// detection, and recomputes the price.  The status is left untouched.
func (s *ReservationService) Update(ctx context.Context, id uint64, in ReservationInput) (model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return model.Reservation{}, notFound(err, "reservation %d", id)
	}
	if in.VenueID != 0 && in.VenueID != res.VenueID {
		return model.Reservation{}, fmt.Errorf("%w: reservation cannot move to another venue", booking.ErrInvalidInput)
	}
	venue, err := s.venues.GetByID(ctx, res.VenueID)
	if err != nil {
		return model.Reservation{}, notFound(err, "venue %d", res.VenueID)
	}

	req := requestFrom(in)
	if err := req.Validate(venueView(venue)); err != nil {
		return model.Reservation{}, err
	}

	res.DateStart = in.DateStart
	res.DateEnd = in.DateEnd
	res.TimeStart = in.TimeStart
	res.TimeEnd = in.TimeEnd
	res.EventType = in.EventType
	res.Description = in.Description
	res.Headcount = in.Headcount
	res.TotalPriceCents = req.TotalPriceCents(venueView(venue))
	if err := s.reservations.Update(ctx, &res); err != nil {
		return model.Reservation{}, err
	}
	return res, nil
}

// Confirm moves a pending reservation to CONFIRMED.
func (s *ReservationService) Confirm(ctx context.Context, id uint64) (model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return model.Reservation{}, notFound(err, "reservation %d", id)
	}
	if !res.Status.CanConfirm() {
		return model.Reservation{}, fmt.Errorf("%w: only pending reservations can be confirmed (current: %s)",
			booking.ErrInvalidState, res.Status)
	}
	return s.reservations.SetStatus(ctx, id, res.Status, booking.StatusConfirmed)
}

// Cancel moves a pending or confirmed reservation to CANCELLED.
// Cancelled slots immediately stop counting toward conflict detection.
func (s *ReservationService) Cancel(ctx context.Context, id uint64) (model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return model.Reservation{}, notFound(err, "reservation %d", id)
	}
	if !res.Status.CanCancel() {
		return model.Reservation{}, fmt.Errorf("%w: reservation in status %s cannot be cancelled",
			booking.ErrInvalidState, res.Status)
	}
	return s.reservations.SetStatus(ctx, id, res.Status, booking.StatusCancelled)
}

// Delete removes a reservation outright, whatever its status.  Handlers
// restrict it to admins.
func (s *ReservationService) Delete(ctx context.Context, id uint64) error {
	if err := s.reservations.Delete(ctx, id); err != nil {
		return notFound(err, "reservation %d", id)
	}
	return nil
}

// GetByID loads a single reservation.
func (s *ReservationService) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return model.Reservation{}, notFound(err, "reservation %d", id)
	}
	return res, nil
}

// ListAll returns a page over every reservation.
func (s *ReservationService) ListAll(ctx context.Context, p Pagination) (Page, error) {
	limit, offset := p.limitOffset()
	items, total, err := s.reservations.ListAll(ctx, limit, offset)
	if err != nil {
		return Page{}, err
	}
	return newPage(items, total, p), nil
}

// ListByStatus returns a page of reservations in one status.
func (s *ReservationService) ListByStatus(ctx context.Context, status booking.Status, p Pagination) (Page, error) {
	limit, offset := p.limitOffset()
	items, total, err := s.reservations.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return Page{}, err
	}
	return newPage(items, total, p), nil
}

// ListByUser returns a page of one user's reservations, optionally
// filtered by status.
func (s *ReservationService) ListByUser(ctx context.Context, userID uint64, status *booking.Status, p Pagination) (Page, error) {
	limit, offset := p.limitOffset()
	items, total, err := s.reservations.ListByUser(ctx, userID, status, limit, offset)
	if err != nil {
		return Page{}, err
	}
	return newPage(items, total, p), nil
}

// ListFutureByUser returns the user's upcoming reservations: everything
// whose effective end date has not passed yet.
func (s *ReservationService) ListFutureByUser(ctx context.Context, userID uint64, p Pagination) (Page, error) {
	limit, offset := p.limitOffset()
	items, total, err := s.reservations.ListFutureByUser(ctx, userID, s.now(), limit, offset)
	if err != nil {
		return Page{}, err
	}
	return newPage(items, total, p), nil
}

// ListForVenue returns every reservation of one venue.
func (s *ReservationService) ListForVenue(ctx context.Context, venueID uint64) ([]model.Reservation, error) {
	if _, err := s.venues.GetByID(ctx, venueID); err != nil {
		return nil, notFound(err, "venue %d", venueID)
	}
	return s.reservations.ListByVenue(ctx, venueID)
}

// ListForVenueOnDate returns the reservations occupying a venue on one
// calendar day.
func (s *ReservationService) ListForVenueOnDate(ctx context.Context, venueID uint64, date time.Time) ([]model.Reservation, error) {
	if _, err := s.venues.GetByID(ctx, venueID); err != nil {
		return nil, notFound(err, "venue %d", venueID)
	}
	return s.reservations.ListByVenueOnDate(ctx, venueID, date)
}

func requestFrom(in ReservationInput) booking.Request {
	desc := ""
	if in.Description != nil {
		desc = *in.Description
	}
	return booking.Request{
		Span: booking.Span{
			DateStart: in.DateStart,
			DateEnd:   in.DateEnd,
			TimeStart: in.TimeStart,
			TimeEnd:   in.TimeEnd,
		},
		Headcount:   in.Headcount,
		EventType:   in.EventType,
		Description: desc,
	}
}

func venueView(v model.Venue) booking.Venue {
	return booking.Venue{
		ID:           v.ID,
		Capacity:     v.Capacity,
		DayRateCents: v.DayRateCents,
		Available:    v.IsAvailable,
	}
}

// notFound translates a store miss into the domain NotFound kind, keeping
// infrastructure errors untouched.
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, booking.ErrNotFound) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: "+format, append([]interface{}{booking.ErrNotFound}, args...)...)
	}
	return err
}
