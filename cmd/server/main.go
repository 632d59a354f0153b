package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/hall-booking/internal/config"
	"github.com/iliyamo/hall-booking/internal/database"
	"github.com/iliyamo/hall-booking/internal/handler"
	"github.com/iliyamo/hall-booking/internal/queue"
	"github.com/iliyamo/hall-booking/internal/repository"
	"github.com/iliyamo/hall-booking/internal/router"
	"github.com/iliyamo/hall-booking/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	venues := repository.NewVenueRepo(db)
	reservations := repository.NewReservationRepo(db)

	svc := service.NewReservationService(users, venues, reservations, nil)

	rdb := config.NewRedisClient()
	rateMax, rateWindow := config.RateLimit()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Deps{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Venues:       handler.NewVenueHandler(cfg, venues),
		Reservations: handler.NewReservationHandler(svc),
		AdminUsers:   handler.NewAdminUserHandler(users, tokens),
		JWTSecret:    cfg.JWTSecret,
		UploadDir:    cfg.UploadDir,
		Redis:        rdb,
		CacheTTL:     config.CacheTTL(),
		RateMax:      rateMax,
		RateWindow:   rateWindow,
	})

	// consume confirmation events in the background; reconnects on its own
	go func() {
		if err := queue.StartConfirmedConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	// sweep confirmed reservations whose span has passed into COMPLETED
	go completionSweep(reservations)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// completionSweep periodically marks past confirmed reservations as
// completed so history reflects reality without manual intervention.
func completionSweep(reservations *repository.ReservationRepo) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := reservations.CompletePast(ctx, time.Now().UTC())
		cancel()
		if err != nil {
			log.Printf("completion sweep failed: %v", err)
		} else if n > 0 {
			log.Printf("completion sweep: %d reservations completed", n)
		}
		<-ticker.C
	}
}
