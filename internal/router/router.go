// Package router registers the HTTP routes and binds the middleware
// chain for each route group.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hall-booking/internal/handler"
	"github.com/iliyamo/hall-booking/internal/middleware"
	"github.com/iliyamo/hall-booking/internal/model"
)

// Deps carries everything route registration needs.
type Deps struct {
	Auth         *handler.AuthHandler
	Venues       *handler.VenueHandler
	Reservations *handler.ReservationHandler
	AdminUsers   *handler.AdminUserHandler

	JWTSecret string
	UploadDir string

	// Redis is optional; a nil client disables caching and rate limiting.
	Redis      *redis.Client
	CacheTTL   time.Duration
	RateMax    int
	RateWindow time.Duration
}

// Register wires every route of the service onto the Echo instance.
//
// Groups:
//   - public: health check and venue browsing, rate limited and cached
//   - /v1/auth: register, login, refresh, logout
//   - /v1: authenticated user endpoints (JWT required)
//   - /v1/admin: admin-only management endpoints
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// uploaded venue photos are served directly
	e.Static("/uploads", d.UploadDir)

	// public browsing, protected from abuse and cached
	public := e.Group("/v1", middleware.RateLimit(d.Redis, d.RateMax, d.RateWindow))
	public.GET("/venues", d.Venues.List, middleware.Cache(d.Redis, d.CacheTTL))
	public.GET("/venues/:id", d.Venues.Get, middleware.Cache(d.Redis, d.CacheTTL))

	auth := e.Group("/v1/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)

	// everything below requires a valid access token
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(d.JWTSecret))
	v1.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))

	v1.GET("/me", d.Auth.Me)

	v1.POST("/reservations", d.Reservations.Create)
	v1.GET("/reservations/:id", d.Reservations.Get)
	v1.PUT("/reservations/:id", d.Reservations.Update)
	v1.POST("/reservations/:id/cancel", d.Reservations.Cancel)
	v1.GET("/reservations", d.Reservations.ListMine)
	v1.GET("/reservations/upcoming", d.Reservations.ListMineFuture)

	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(d.JWTSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))

	admin.GET("/users", d.AdminUsers.List)
	admin.PATCH("/users/:id/active", d.AdminUsers.SetActive)

	admin.POST("/venues", d.Venues.Create)
	admin.PUT("/venues/:id", d.Venues.Update)
	admin.PATCH("/venues/:id/availability", d.Venues.SetAvailability)
	admin.POST("/venues/:id/image", d.Venues.UploadImage)
	admin.DELETE("/venues/:id", d.Venues.Delete)
	admin.GET("/venues/:id/reservations", d.Reservations.ListForVenue)

	admin.GET("/reservations", d.Reservations.ListAll)
	admin.POST("/reservations/:id/confirm", d.Reservations.Confirm)
	admin.DELETE("/reservations/:id", d.Reservations.Delete)
}
