package router // wires HTTP routes to handlers and middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"roombook/internal/config"
	"roombook/internal/handler"
	"roombook/internal/middleware"
	"roombook/internal/model"
)

// Deps carries everything the route table needs. Rdb may be nil, in
// which case rate limiting and response caching degrade to no-ops.
type Deps struct {
	Cfg          config.Config
	Rdb          *redis.Client
	Auth         *handler.AuthHandler
	Rooms        *handler.RoomHandler
	Reservations *handler.ReservationHandler
	Availability *handler.AvailabilityHandler
}

// Register mounts the full route table on e.
//
// Public:    /healthz, room catalog, the availability matrix and the
//            auth endpoints.
// Protected: reservation operations for any authenticated role.
// Admin:     room mutations, on-behalf bookings and per-room listings.
func Register(e *echo.Echo, d Deps) {
	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), d.Rdb)

	e.GET("/healthz", handler.Health)

	// Unauthenticated reads. The availability matrix is the hottest
	// endpoint, so it sits behind the response cache.
	e.GET("/v1/rooms", d.Rooms.List, rateLimit, cache)
	e.GET("/v1/rooms/:id", d.Rooms.Get, rateLimit, cache)
	e.GET("/v1/availability", d.Availability.Daily, rateLimit, cache)

	// Auth endpoints issue and exchange tokens.
	a := e.Group("/v1/auth", rateLimit)
	a.POST("/register", d.Auth.Register)
	a.POST("/login", d.Auth.Login)
	a.POST("/refresh", d.Auth.Refresh)
	a.POST("/logout", d.Auth.Logout)

	// Any authenticated user (student or admin).
	v1 := e.Group(
		"/v1",
		rateLimit,
		middleware.JWTAuth(d.Cfg.JWTSecret),
		middleware.RequireRole(string(model.RoleStudent), string(model.RoleAdmin)),
	)
	v1.GET("/me", d.Auth.Me)
	v1.POST("/reservations", d.Reservations.Create)
	v1.GET("/reservations/:id", d.Reservations.Get)
	v1.DELETE("/reservations/:id", d.Reservations.Cancel)
	v1.GET("/my-reservations", d.Reservations.MyReservations)

	// Admin surface. The engine re-checks the role on data-level
	// operations, so a stale token cannot widen access.
	admin := e.Group(
		"/v1/admin",
		rateLimit,
		middleware.JWTAuth(d.Cfg.JWTSecret),
		middleware.RequireRole(string(model.RoleAdmin)),
	)
	admin.POST("/reservations", d.Reservations.CreateOnBehalf)
	admin.GET("/rooms/:id/reservations", d.Reservations.ByRoom)
	admin.POST("/rooms", d.Rooms.Create)
	admin.PUT("/rooms/:id", d.Rooms.Update)
	admin.DELETE("/rooms/:id", d.Rooms.Delete)
}
