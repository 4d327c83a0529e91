package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movietime/ticket-booking/internal/booking"
	"github.com/movietime/ticket-booking/internal/cache"
	"github.com/movietime/ticket-booking/internal/config"
	"github.com/movietime/ticket-booking/internal/database"
	"github.com/movietime/ticket-booking/internal/handler"
	"github.com/movietime/ticket-booking/internal/middleware"
	"github.com/movietime/ticket-booking/internal/queue"
	"github.com/movietime/ticket-booking/internal/repository"
	"github.com/movietime/ticket-booking/internal/router"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	// Redis is optional: a nil client disables the seat cache and the
	// rate limiter falls through to allowing requests.
	rdb := config.NewRedisClient()

	ledgerRepo := repository.NewLedgerRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	reservations := repository.NewReservationStore(db, ledgerRepo, bookingRepo)
	showRepo := repository.NewShowRepo(db)
	movieRepo := repository.NewMovieRepo(db)
	userRepo := repository.NewUserRepo(db)

	pub := queue.NewPublisher(cfg.AMQPURL)
	seatCache := cache.NewSeats(rdb, cfg.SeatCacheTTL)
	sched := booking.NewScheduler(bookingRepo, cfg.ExpirySweepInterval, cfg.ExpiryLookahead)
	svc := booking.NewService(ledgerRepo, reservations, showRepo, pub, sched, seatCache, cfg.HoldTTL)
	reminder := booking.NewReminder(showRepo, ledgerRepo, userRepo, movieRepo, pub, cfg.ReminderInterval, cfg.ReminderLookahead)

	// Background workers: the durable expiry scheduler, the reminder
	// sweep and the event notifier.
	go sched.Run(ctx, svc.Expire)
	go reminder.Run(ctx)
	go func() {
		if err := queue.StartNotifier(cfg.AMQPURL); err != nil {
			log.Printf("notifier stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userRepo), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(movieRepo, showRepo, ledgerRepo, seatCache))
	router.RegisterCustomer(e, handler.NewBookingHandler(svc, bookingRepo), cfg.JWTSecret, limiter)
	router.RegisterPayments(e, handler.NewPaymentHandler(svc))
	router.RegisterAdmin(e, handler.NewAdminHandler(movieRepo, showRepo, pub), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := e.Start(addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
