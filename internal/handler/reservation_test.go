package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hall-booking/internal/booking"
	"github.com/iliyamo/hall-booking/internal/model"
	"github.com/iliyamo/hall-booking/internal/service"
)

// The handler tests run the real service on top of in-memory stores, so
// request parsing, status mapping and the ownership rule are exercised
// end to end without a database.

type memUsers struct{ users map[uint64]model.User }

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

type memVenues struct{ venues map[uint64]model.Venue }

func (m *memVenues) GetByID(_ context.Context, id uint64) (model.Venue, error) {
	v, ok := m.venues[id]
	if !ok {
		return model.Venue{}, sql.ErrNoRows
	}
	return v, nil
}

type memReservations struct {
	nextID uint64
	rows   map[uint64]model.Reservation
}

func (m *memReservations) conflicts(res *model.Reservation) bool {
	for _, other := range m.rows {
		if other.ID == res.ID || other.VenueID != res.VenueID || !other.Status.Active() {
			continue
		}
		if res.Span().Overlaps(other.Span()) {
			return true
		}
	}
	return false
}

func (m *memReservations) Create(_ context.Context, res *model.Reservation) error {
	if m.conflicts(res) {
		return fmt.Errorf("%w: span already reserved", booking.ErrConflict)
	}
	m.nextID++
	res.ID = m.nextID
	res.CreatedAt = time.Now().UTC()
	res.UpdatedAt = res.CreatedAt
	m.rows[res.ID] = *res
	return nil
}

func (m *memReservations) Update(_ context.Context, res *model.Reservation) error {
	if _, ok := m.rows[res.ID]; !ok {
		return sql.ErrNoRows
	}
	if m.conflicts(res) {
		return fmt.Errorf("%w: span already reserved", booking.ErrConflict)
	}
	m.rows[res.ID] = *res
	return nil
}

func (m *memReservations) GetByID(_ context.Context, id uint64) (model.Reservation, error) {
	r, ok := m.rows[id]
	if !ok {
		return model.Reservation{}, sql.ErrNoRows
	}
	return r, nil
}

func (m *memReservations) SetStatus(_ context.Context, id uint64, from, to booking.Status) (model.Reservation, error) {
	r, ok := m.rows[id]
	if !ok {
		return model.Reservation{}, sql.ErrNoRows
	}
	if r.Status != from {
		return model.Reservation{}, fmt.Errorf("%w: status moved", booking.ErrInvalidState)
	}
	r.Status = to
	m.rows[id] = r
	return r, nil
}

func (m *memReservations) Delete(_ context.Context, id uint64) error {
	if _, ok := m.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

func (m *memReservations) list(keep func(model.Reservation) bool) []model.Reservation {
	out := make([]model.Reservation, 0)
	for id := uint64(1); id <= m.nextID; id++ {
		if r, ok := m.rows[id]; ok && keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *memReservations) ListAll(_ context.Context, limit, offset int) ([]model.Reservation, int64, error) {
	all := m.list(func(model.Reservation) bool { return true })
	return all, int64(len(all)), nil
}

func (m *memReservations) ListByStatus(_ context.Context, status booking.Status, limit, offset int) ([]model.Reservation, int64, error) {
	all := m.list(func(r model.Reservation) bool { return r.Status == status })
	return all, int64(len(all)), nil
}

func (m *memReservations) ListByUser(_ context.Context, userID uint64, status *booking.Status, limit, offset int) ([]model.Reservation, int64, error) {
	all := m.list(func(r model.Reservation) bool {
		return r.UserID == userID && (status == nil || r.Status == *status)
	})
	return all, int64(len(all)), nil
}

func (m *memReservations) ListFutureByUser(_ context.Context, userID uint64, asOf time.Time, limit, offset int) ([]model.Reservation, int64, error) {
	all := m.list(func(r model.Reservation) bool {
		return r.UserID == userID && !r.Span().EndDate().Before(asOf)
	})
	return all, int64(len(all)), nil
}

func (m *memReservations) ListByVenue(_ context.Context, venueID uint64) ([]model.Reservation, error) {
	return m.list(func(r model.Reservation) bool { return r.VenueID == venueID }), nil
}

func (m *memReservations) ListByVenueOnDate(_ context.Context, venueID uint64, date time.Time) ([]model.Reservation, error) {
	return m.list(func(r model.Reservation) bool {
		return r.VenueID == venueID && !r.DateStart.After(date) && !r.Span().EndDate().Before(date)
	}), nil
}

func newTestHandler(t *testing.T) *ReservationHandler {
	t.Helper()
	users := &memUsers{users: map[uint64]model.User{
		1: {ID: 1, FullName: "Ada Lovelace", Role: model.RoleUser, IsActive: true},
		2: {ID: 2, FullName: "Alan Turing", Role: model.RoleUser, IsActive: true},
	}}
	venues := &memVenues{venues: map[uint64]model.Venue{
		1: {ID: 1, Name: "Grand Hall", Capacity: 50, DayRateCents: 50_000, IsAvailable: true},
	}}
	store := &memReservations{rows: make(map[uint64]model.Reservation)}
	svc := service.NewReservationService(users, venues, store, nil)
	return NewReservationHandler(svc)
}

func doRequest(h echo.HandlerFunc, method, target, body string, userID uint64, role string, params map[string]string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	c.Set("role", role)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

const createBody = `{
	"venue_id": 1,
	"date_start": "2026-03-10",
	"date_end": "2026-03-11",
	"time_start": "10:00",
	"time_end": "12:00",
	"event_type": "conference",
	"headcount": 30
}`

func TestCreateReturnsCreated(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(h.Create, http.MethodPost, "/v1/reservations", createBody, 1, model.RoleUser, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "PENDING", resp["status"])
	assert.Equal(t, float64(100_000), resp["total_price_cents"])
	assert.Equal(t, "2026-03-10", resp["date_start"])
	assert.Equal(t, "10:00", resp["time_start"])
}

func TestCreateMapsConflictTo409(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(h.Create, http.MethodPost, "/v1/reservations", createBody, 1, model.RoleUser, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	overlapping := strings.Replace(createBody, `"10:00"`, `"11:00"`, 1)
	overlapping = strings.Replace(overlapping, `"12:00"`, `"13:00"`, 1)
	rec = doRequest(h.Create, http.MethodPost, "/v1/reservations", overlapping, 2, model.RoleUser, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestCreateRejectsBadTimeFormat(t *testing.T) {
	h := newTestHandler(t)

	bad := strings.Replace(createBody, `"10:00"`, `"10am"`, 1)
	rec := doRequest(h.Create, http.MethodPost, "/v1/reservations", bad, 1, model.RoleUser, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRejectsOverCapacity(t *testing.T) {
	h := newTestHandler(t)

	bad := strings.Replace(createBody, `"headcount": 30`, `"headcount": 60`, 1)
	rec := doRequest(h.Create, http.MethodPost, "/v1/reservations", bad, 1, model.RoleUser, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEnforcesOwnership(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(h.Create, http.MethodPost, "/v1/reservations", createBody, 1, model.RoleUser, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	params := map[string]string{"id": "1"}

	rec = doRequest(h.Get, http.MethodGet, "/v1/reservations/1", "", 1, model.RoleUser, params)
	assert.Equal(t, http.StatusOK, rec.Code, "owner sees the reservation")

	rec = doRequest(h.Get, http.MethodGet, "/v1/reservations/1", "", 2, model.RoleUser, params)
	assert.Equal(t, http.StatusForbidden, rec.Code, "another user is rejected")

	rec = doRequest(h.Get, http.MethodGet, "/v1/reservations/1", "", 2, model.RoleAdmin, params)
	assert.Equal(t, http.StatusOK, rec.Code, "admins see everything")
}

func TestCancelTwiceMapsTo409(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(h.Create, http.MethodPost, "/v1/reservations", createBody, 1, model.RoleUser, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	params := map[string]string{"id": "1"}
	rec = doRequest(h.Cancel, http.MethodPost, "/v1/reservations/1/cancel", "", 1, model.RoleUser, params)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(h.Cancel, http.MethodPost, "/v1/reservations/1/cancel", "", 1, model.RoleUser, params)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetUnknownReservationMapsTo404(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(h.Get, http.MethodGet, "/v1/reservations/42", "", 1, model.RoleUser, map[string]string{"id": "42"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
