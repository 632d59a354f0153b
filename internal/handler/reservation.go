package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hall-booking/internal/booking"
	"github.com/iliyamo/hall-booking/internal/model"
	"github.com/iliyamo/hall-booking/internal/queue"
	"github.com/iliyamo/hall-booking/internal/service"
)

// ReservationHandler exposes the booking lifecycle over HTTP.  It owns
// the wire format (dates as "YYYY-MM-DD", times as "HH:MM") and the
// owner-or-admin access rule; everything else is delegated to the
// reservation service.
type ReservationHandler struct {
	Svc *service.ReservationService
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Svc: svc}
}

type reservationReq struct {
	VenueID     uint64  `json:"venue_id"`
	DateStart   string  `json:"date_start"`
	DateEnd     *string `json:"date_end"`
	TimeStart   string  `json:"time_start"`
	TimeEnd     string  `json:"time_end"`
	EventType   string  `json:"event_type"`
	Description *string `json:"description"`
	Headcount   int     `json:"headcount"`
}

type reservationResp struct {
	ID              uint64  `json:"id"`
	UserID          uint64  `json:"user_id"`
	VenueID         uint64  `json:"venue_id"`
	DateStart       string  `json:"date_start"`
	DateEnd         *string `json:"date_end,omitempty"`
	TimeStart       string  `json:"time_start"`
	TimeEnd         string  `json:"time_end"`
	EventType       string  `json:"event_type"`
	Description     *string `json:"description,omitempty"`
	Headcount       int     `json:"headcount"`
	TotalPriceCents int64   `json:"total_price_cents"`
	Status          string  `json:"status"`
	UserName        string  `json:"user_name,omitempty"`
	VenueName       string  `json:"venue_name,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type reservationPage struct {
	Items []reservationResp `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Size  int               `json:"size"`
}

func toReservationResp(r model.Reservation) reservationResp {
	resp := reservationResp{
		ID:              r.ID,
		UserID:          r.UserID,
		VenueID:         r.VenueID,
		DateStart:       r.DateStart.Format("2006-01-02"),
		TimeStart:       r.TimeStart.String(),
		TimeEnd:         r.TimeEnd.String(),
		EventType:       r.EventType,
		Description:     r.Description,
		Headcount:       r.Headcount,
		TotalPriceCents: r.TotalPriceCents,
		Status:          string(r.Status),
		UserName:        r.UserName,
		VenueName:       r.VenueName,
		CreatedAt:       r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if r.DateEnd != nil {
		end := r.DateEnd.Format("2006-01-02")
		resp.DateEnd = &end
	}
	return resp
}

func toReservationPage(p service.Page) reservationPage {
	items := make([]reservationResp, 0, len(p.Items))
	for _, r := range p.Items {
		items = append(items, toReservationResp(r))
	}
	return reservationPage{Items: items, Total: p.Total, Page: p.Page, Size: p.Size}
}

// parseInput converts the wire representation of a booking request into
// the service input.  Field-level range checks stay in the domain; here
// only the formats are enforced.
func parseInput(req reservationReq) (service.ReservationInput, error) {
	start, err := parseDate(req.DateStart)
	if err != nil {
		return service.ReservationInput{}, echo.NewHTTPError(http.StatusBadRequest, "date_start must be YYYY-MM-DD")
	}
	var end *time.Time
	if req.DateEnd != nil && *req.DateEnd != "" {
		d, err := parseDate(*req.DateEnd)
		if err != nil {
			return service.ReservationInput{}, echo.NewHTTPError(http.StatusBadRequest, "date_end must be YYYY-MM-DD")
		}
		end = &d
	}
	ts, err := booking.ParseTimeOfDay(req.TimeStart)
	if err != nil {
		return service.ReservationInput{}, echo.NewHTTPError(http.StatusBadRequest, "time_start must be HH:MM")
	}
	te, err := booking.ParseTimeOfDay(req.TimeEnd)
	if err != nil {
		return service.ReservationInput{}, echo.NewHTTPError(http.StatusBadRequest, "time_end must be HH:MM")
	}
	return service.ReservationInput{
		VenueID:     req.VenueID,
		DateStart:   start,
		DateEnd:     end,
		TimeStart:   ts,
		TimeEnd:     te,
		EventType:   strings.TrimSpace(req.EventType),
		Description: req.Description,
		Headcount:   req.Headcount,
	}, nil
}

func pagination(c echo.Context) service.Pagination {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	return service.Pagination{Page: page, Size: size}
}

func reservationID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// loadOwned fetches a reservation and enforces the owner-or-admin rule.
func (h *ReservationHandler) loadOwned(c echo.Context, ctx context.Context, id uint64) (model.Reservation, bool) {
	res, err := h.Svc.GetByID(ctx, id)
	if err != nil {
		_ = respondDomainError(c, err)
		return model.Reservation{}, false
	}
	uid, err := getUserID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		return model.Reservation{}, false
	}
	if res.UserID != uid && !isAdmin(c) {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "not your reservation"})
		return model.Reservation{}, false
	}
	return res, true
}

// Create books a venue for the authenticated user.  The reservation
// starts out PENDING and is priced at the venue day rate times the days
// spanned.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in, err := parseInput(req)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Svc.Create(ctx, uid, in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, toReservationResp(res))
}

// Get returns one reservation, visible to its owner and to admins.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, ok := h.loadOwned(c, ctx, id)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

// Update rewrites the span and details of a reservation.  The venue and
// the owner never change; conflict detection reruns with the reservation
// itself excluded.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in, err := parseInput(req)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, ok := h.loadOwned(c, ctx, id); !ok {
		return nil
	}
	res, err := h.Svc.Update(ctx, id, in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

// Cancel releases a pending or confirmed reservation.  The freed span is
// immediately bookable again.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok := h.loadOwned(c, ctx, id); !ok {
		return nil
	}
	res, err := h.Svc.Cancel(ctx, id)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

// ListMine returns the caller's reservations, newest first, optionally
// filtered with ?status=.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var status *booking.Status
	if s := c.QueryParam("status"); s != "" {
		parsed, err := booking.ParseStatus(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
		status = &parsed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	page, err := h.Svc.ListByUser(ctx, uid, status, pagination(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationPage(page))
}

// ListMineFuture returns the caller's upcoming reservations, soonest
// first.
func (h *ReservationHandler) ListMineFuture(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	page, err := h.Svc.ListFutureByUser(ctx, uid, pagination(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationPage(page))
}

// ListAll returns every reservation, optionally filtered with ?status=.
// Admin only.
func (h *ReservationHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if s := c.QueryParam("status"); s != "" {
		status, err := booking.ParseStatus(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
		page, err := h.Svc.ListByStatus(ctx, status, pagination(c))
		if err != nil {
			return respondDomainError(c, err)
		}
		return c.JSON(http.StatusOK, toReservationPage(page))
	}
	page, err := h.Svc.ListAll(ctx, pagination(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationPage(page))
}

// ListForVenue returns a venue's reservations, either all of them or
// those touching one day with ?date=YYYY-MM-DD.  Admin only.
func (h *ReservationHandler) ListForVenue(c echo.Context) error {
	venueID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var items []model.Reservation
	if d := c.QueryParam("date"); d != "" {
		date, err := parseDate(d)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		items, err = h.Svc.ListForVenueOnDate(ctx, venueID, date)
		if err != nil {
			return respondDomainError(c, err)
		}
	} else {
		items, err = h.Svc.ListForVenue(ctx, venueID)
		if err != nil {
			return respondDomainError(c, err)
		}
	}
	resp := make([]reservationResp, 0, len(items))
	for _, r := range items {
		resp = append(resp, toReservationResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": resp, "total": len(resp)})
}

// Confirm approves a pending reservation and announces it on the message
// queue.  Admin only.
func (h *ReservationHandler) Confirm(c echo.Context) error {
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Svc.Confirm(ctx, id)
	if err != nil {
		return respondDomainError(c, err)
	}

	event := queue.ReservationConfirmedEvent{
		ReservationID:   res.ID,
		UserID:          res.UserID,
		UserName:        res.UserName,
		VenueID:         res.VenueID,
		VenueName:       res.VenueName,
		DateStart:       res.DateStart.Format("2006-01-02"),
		TimeStart:       res.TimeStart.String(),
		TimeEnd:         res.TimeEnd.String(),
		EventType:       res.EventType,
		Headcount:       res.Headcount,
		TotalPriceCents: res.TotalPriceCents,
		ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if res.DateEnd != nil {
		event.DateEnd = res.DateEnd.Format("2006-01-02")
	}
	// best effort, the confirmation stands even if the broker is down
	_ = queue.PublishReservationConfirmed(ctx, event)

	return c.JSON(http.StatusOK, toReservationResp(res))
}

// Delete removes a reservation outright, whatever its status.  Admin
// only.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.Delete(ctx, id); err != nil {
		return respondDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
