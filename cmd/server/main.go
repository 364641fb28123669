package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/venuebook/venue-booking-api/internal/booking"
	"github.com/venuebook/venue-booking-api/internal/config"
	"github.com/venuebook/venue-booking-api/internal/database"
	"github.com/venuebook/venue-booking-api/internal/handler"
	"github.com/venuebook/venue-booking-api/internal/mailer"
	"github.com/venuebook/venue-booking-api/internal/middleware"
	"github.com/venuebook/venue-booking-api/internal/queue"
	"github.com/venuebook/venue-booking-api/internal/repository"
	"github.com/venuebook/venue-booking-api/internal/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Env == "dev" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stdout}).Level(zerolog.DebugLevel)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	venueRepo := repository.NewVenueRepo(db)
	serviceRepo := repository.NewServiceRepo(db)
	slotRepo := repository.NewTimeSlotRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	commentRepo := repository.NewCommentRepo(db)
	catalog := repository.NewCatalog(venueRepo, serviceRepo, slotRepo)

	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
	}, log)
	if !mail.Enabled() {
		log.Warn().Msg("SMTP_HOST not set, booking emails disabled")
	}

	var events booking.EventPublisher
	if cfg.AMQPURL != "" {
		events = queue.NewPublisher(cfg.AMQPURL, log)
		go func() {
			if err := queue.StartReservationConsumer(cfg.AMQPURL, log); err != nil {
				log.Error().Err(err).Msg("reservation consumer stopped")
			}
		}()
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, event stream disabled")
	}

	dispatcher := booking.NewSideEffectDispatcher(notificationRepo, mail, events, userRepo, log)
	orchestrator := booking.NewBookingOrchestrator(reservationRepo, catalog, userRepo, dispatcher, log)

	e := echo.New()
	e.HideBanner = true

	// Redis-backed rate limiting and response caching stay off when
	// no Redis server is reachable.
	if rdb := config.NewRedisClient(); rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	} else {
		log.Warn().Msg("redis unavailable, rate limiting and caching disabled")
	}

	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, userRepo, tokenRepo),
		Venue:        handler.NewVenueHandler(venueRepo),
		Service:      handler.NewServiceHandler(serviceRepo),
		TimeSlot:     handler.NewTimeSlotHandler(slotRepo),
		Reservation:  handler.NewReservationHandler(orchestrator, reservationRepo),
		Notification: handler.NewNotificationHandler(notificationRepo),
		Comment:      handler.NewCommentHandler(commentRepo),
		User:         handler.NewUserHandler(cfg, userRepo),
		Report:       handler.NewReportHandler(reservationRepo),
	}, cfg.JWTSecret)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil {
			log.Info().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	// Let in-flight side effects (emails, notifications, events)
	// finish before the process exits.
	dispatcher.Wait()
}
