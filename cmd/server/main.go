package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"roombook/internal/availability"
	"roombook/internal/booking"
	"roombook/internal/calendar"
	"roombook/internal/clock"
	"roombook/internal/config"
	"roombook/internal/database"
	"roombook/internal/handler"
	"roombook/internal/queue"
	"roombook/internal/repository"
	"roombook/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()
	loc := cfg.Location()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("database: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	clk := clock.NewSystem(loc)
	store := repository.NewStore(db)
	tokens := repository.NewTokenRepo(db)

	// Calendar sync only runs when the integration is configured.
	var cal booking.Calendar
	var creds booking.CredentialSource
	if cfg.CalendarBaseURL != "" {
		cal = calendar.NewClient(cfg.CalendarBaseURL)
		creds = calendar.NewCredentialService(cfg.CalendarTokenURL, cfg.CalendarClientID, cfg.CalendarClientSecret, store.Users, clk)
	} else {
		log.Println("calendar sync disabled (CALENDAR_API_BASE_URL not set)")
	}

	rules := booking.Rules{
		MinDuration:      time.Duration(cfg.MinBookingMin) * time.Minute,
		MaxDuration:      time.Duration(cfg.MaxBookingMin) * time.Minute,
		MaxAdvanceMonths: cfg.MaxAdvanceMonth,
	}
	engine := booking.NewEngine(store, clk, rules, cal, creds)
	calc := availability.NewCalculator(store, clk)

	// The consumer writes booked-reservation audit lines; it reconnects
	// forever on broker failures.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Cfg:          cfg,
		Rdb:          rdb,
		Auth:         handler.NewAuthHandler(cfg, store.Users, tokens),
		Rooms:        handler.NewRoomHandler(store.Rooms),
		Reservations: handler.NewReservationHandler(engine, clk),
		Availability: handler.NewAvailabilityHandler(calc, clk),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, tz=%s)", addr, cfg.Env, cfg.Timezone)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
