package main

import (
	"log"
	"math/rand"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/frostair/ac-booking/internal/config"
	"github.com/frostair/ac-booking/internal/database"
	"github.com/frostair/ac-booking/internal/handler"
	appmw "github.com/frostair/ac-booking/internal/middleware"
	"github.com/frostair/ac-booking/internal/queue"
	"github.com/frostair/ac-booking/internal/repository"
	"github.com/frostair/ac-booking/internal/router"
	"github.com/frostair/ac-booking/internal/schedule"
)

func main() {
	// Load a local .env when present; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories over the shared connection pool.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	bookings := repository.NewBookingRepo(db)
	contacts := repository.NewContactRepo(db)

	// Scheduling core. The booking repo doubles as the claim store and
	// the user repo as the technician roster.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	availability := schedule.NewAvailability(users, bookings)
	allocator := schedule.NewAllocator(users, bookings, rng)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	userH := handler.NewUserHandler(users)
	bookingH := handler.NewBookingHandler(availability, allocator, bookings, users)
	contactH := handler.NewContactHandler(contacts)

	e := echo.New()

	// Redis backs both the token bucket rate limiter and the response
	// cache. The limiter applies to every route; the cache is attached
	// per route to the static catalogs only.
	rdb := config.NewRedisClient()
	e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cache := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, bookingH, userH, contactH, cache)
	router.RegisterUsers(e, userH, cfg.JWTSecret)
	router.RegisterStaff(e, bookingH, contactH, cfg.JWTSecret)

	// Consume booking.created events in the background; the consumer
	// reconnects on broker failures.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
