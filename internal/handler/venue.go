package handler

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hall-booking/internal/config"
	"github.com/iliyamo/hall-booking/internal/model"
	"github.com/iliyamo/hall-booking/internal/repository"
)

// VenueHandler exposes the venue catalogue.  Browsing is public; all
// mutating endpoints are admin-only and enforced at the router.
type VenueHandler struct {
	Cfg    config.Config
	Venues *repository.VenueRepo
}

// NewVenueHandler constructs a VenueHandler.
func NewVenueHandler(cfg config.Config, v *repository.VenueRepo) *VenueHandler {
	return &VenueHandler{Cfg: cfg, Venues: v}
}

type venueReq struct {
	Name         string  `json:"name"`
	Location     string  `json:"location"`
	Description  *string `json:"description"`
	Capacity     int     `json:"capacity"`
	DayRateCents int64   `json:"day_rate_cents"`
	Equipment    *string `json:"equipment"`
	IsAvailable  *bool   `json:"is_available"`
}

type venueResp struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"name"`
	Location     string  `json:"location"`
	Description  *string `json:"description,omitempty"`
	Capacity     int     `json:"capacity"`
	DayRateCents int64   `json:"day_rate_cents"`
	ImageURL     *string `json:"image_url,omitempty"`
	Equipment    *string `json:"equipment,omitempty"`
	IsAvailable  bool    `json:"is_available"`
}

func toVenueResp(v model.Venue) venueResp {
	return venueResp{
		ID:           v.ID,
		Name:         v.Name,
		Location:     v.Location,
		Description:  v.Description,
		Capacity:     v.Capacity,
		DayRateCents: v.DayRateCents,
		ImageURL:     v.ImageURL,
		Equipment:    v.Equipment,
		IsAvailable:  v.IsAvailable,
	}
}

// List returns venues, paginated.  Unauthenticated callers and plain
// users see only available venues; ?all=true is honoured for admins.
func (h *VenueHandler) List(c echo.Context) error {
	availableOnly := true
	if c.QueryParam("all") == "true" && isAdmin(c) {
		availableOnly = false
	}
	limit, offset := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	venues, total, err := h.Venues.List(ctx, availableOnly, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	items := make([]venueResp, 0, len(venues))
	for _, v := range venues {
		items = append(items, toVenueResp(v))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": total})
}

// Get returns one venue by ID.
func (h *VenueHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Venues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toVenueResp(v))
}

// Create registers a new venue.
func (h *VenueHandler) Create(c echo.Context) error {
	var req venueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	if req.Name == "" || req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/location required"})
	}
	if req.Capacity <= 0 || req.DayRateCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive and day_rate_cents non-negative"})
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	v := model.Venue{
		Name:         req.Name,
		Location:     req.Location,
		Description:  req.Description,
		Capacity:     req.Capacity,
		DayRateCents: req.DayRateCents,
		Equipment:    req.Equipment,
		IsAvailable:  available,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Venues.Create(ctx, &v); err != nil {
		if errors.Is(err, repository.ErrNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "venue name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toVenueResp(v))
}

// Update overwrites a venue's mutable fields.
func (h *VenueHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	var req venueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	if req.Name == "" || req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/location required"})
	}
	if req.Capacity <= 0 || req.DayRateCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive and day_rate_cents non-negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Venues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	v.Name = req.Name
	v.Location = req.Location
	v.Description = req.Description
	v.Capacity = req.Capacity
	v.DayRateCents = req.DayRateCents
	v.Equipment = req.Equipment
	if req.IsAvailable != nil {
		v.IsAvailable = *req.IsAvailable
	}
	if err := h.Venues.Update(ctx, &v); err != nil {
		if errors.Is(err, repository.ErrNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "venue name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toVenueResp(v))
}

// SetAvailability toggles whether a venue accepts new reservations.
func (h *VenueHandler) SetAvailability(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	var req struct {
		Available *bool `json:"available"`
	}
	if err := c.Bind(&req); err != nil || req.Available == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "available required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Venues.SetAvailability(ctx, id, *req.Available); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "available": *req.Available})
}

// UploadImage stores a venue photo from a multipart form under a random
// file name and records its public path.
func (h *VenueHandler) UploadImage(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file required"})
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported image type"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Venues.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload dir unavailable"})
	}
	name := uuid.NewString() + ext
	dst := filepath.Join(h.Cfg.UploadDir, name)

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "read upload failed"})
	}
	defer src.Close()
	out, err := os.Create(dst)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store upload failed"})
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store upload failed"})
	}

	url := "/uploads/" + name
	if err := h.Venues.SetImageURL(ctx, id, url); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "image_url": url})
}

// Delete removes a venue.  Venues with any reservation history are kept
// and the request is rejected with 409.
func (h *VenueHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Venues.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		case errors.Is(err, repository.ErrHasReservations):
			return c.JSON(http.StatusConflict, echo.Map{"error": "venue has reservations"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
