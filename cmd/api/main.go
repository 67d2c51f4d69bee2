// @title Venue Booking API
// @version 1.0
// @description Venue registry, event review and registration service.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"venuebooking/config"
	_ "venuebooking/docs"
	"venuebooking/internal/adapters/auth"
	"venuebooking/internal/adapters/email"
	"venuebooking/internal/adapters/metrics"
	deliveryhttp "venuebooking/internal/delivery/http"
	"venuebooking/internal/delivery/http/controllers"
	"venuebooking/internal/delivery/http/middleware"
	"venuebooking/internal/repository/postgres"
	"venuebooking/internal/services"
	"venuebooking/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(startupCtx); err != nil {
		return err
	}
	if err := migrations.Apply(db); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bookingMetrics := metrics.NewPrometheusRecorder(registry)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return err
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	txManager := postgres.NewTxManager(db)
	venueRepo := postgres.NewVenueRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	userRepo := postgres.NewUserRepository(db)
	rosterRepo := postgres.NewRosterRepository(db)

	timeout := cfg.RequestTimeout
	venueService := services.NewVenueService(venueRepo, eventRepo, txManager, timeout)
	eventService := services.NewEventService(eventRepo, venueRepo, rosterRepo, userRepo,
		services.NewAvailabilityChecker(eventRepo), txManager, emailService, bookingMetrics, logger, timeout)
	registrationService := services.NewRegistrationService(eventRepo, venueRepo, rosterRepo, userRepo,
		txManager, bookingMetrics, timeout)
	authService := services.NewAuthService(userRepo, rosterRepo, eventRepo, txManager, auth.NewBcryptHasher(auth.DefaultBcryptCost),
		auth.NewJWTIssuer(cfg.JWTSecret), emailService, cfg.AdminEmails, cfg.JWTExpiry, logger, timeout)

	opts := deliveryhttp.RouterOptions{
		Health:  deliveryhttp.HealthHandler(db, logger),
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()
		if err := rdb.Ping(startupCtx).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiter will fail open", "err", err)
		}
		opts.Limiter = middleware.NewRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, logger)
	} else {
		logger.Info("REDIS_URL not set, rate limiting disabled")
	}

	mux := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Venue:        controllers.NewVenueController(logger, venueService),
		Event:        controllers.NewEventController(logger, eventService),
		Admin:        controllers.NewAdminController(logger, eventService),
		Registration: controllers.NewRegistrationController(logger, registrationService),
		User:         controllers.NewUserController(logger, authService),
	}, auth.NewJWTVerifier(cfg.JWTSecret), opts, logger)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSOrigins, mux))
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		logger.Info("api listening", "port", cfg.Port, "env", cfg.Environment)
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
