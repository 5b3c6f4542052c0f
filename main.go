package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetdesk/fleetdesk-backend/config"
	"github.com/fleetdesk/fleetdesk-backend/db"
	"github.com/fleetdesk/fleetdesk-backend/handlers"
	"github.com/fleetdesk/fleetdesk-backend/internal/events"
	"github.com/fleetdesk/fleetdesk-backend/internal/store/postgres"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/fleetdesk/fleetdesk-backend/middleware"
	deductionservice "github.com/fleetdesk/fleetdesk-backend/models/deduction/service"
	fleetservice "github.com/fleetdesk/fleetdesk-backend/models/fleet/service"
	incidentservice "github.com/fleetdesk/fleetdesk-backend/models/incident/service"
	payoutservice "github.com/fleetdesk/fleetdesk-backend/models/payout/service"
	tripservice "github.com/fleetdesk/fleetdesk-backend/models/trip/service"
	"github.com/fleetdesk/fleetdesk-backend/pkg/commission"
	"github.com/fleetdesk/fleetdesk-backend/router"
	"github.com/fleetdesk/fleetdesk-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisOptions := &redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if cfg.Redis.UseTLS || cfg.IsProduction() {
		redisOptions.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}
	redisClient := redis.NewClient(redisOptions)
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warnw("Error closing Redis client", "error", err)
		}
	}()

	publisher := events.NewRedisPublisher(redisClient)

	// Stores
	driverStore := postgres.NewDriverStore(pool)
	vehicleStore := postgres.NewVehicleStore(pool)
	assignmentStore := postgres.NewAssignmentStore(pool)
	tripStore := postgres.NewTripStore(pool)
	incidentStore := postgres.NewIncidentStore(pool)
	deductionStore := postgres.NewDeductionStore(pool)
	payoutStore := postgres.NewPayoutStore(pool)

	// Commission schedule and payout timezone
	schedule, err := buildSchedule(&cfg.Payout)
	if err != nil {
		log.Fatalf("Failed to build commission schedule: %v", err)
	}
	loc := time.Local
	if tz := cfg.Payout.Timezone; tz != "" && tz != "Local" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("Invalid payout timezone %q: %v", tz, err)
		}
	}

	// Services
	fleetService := fleetservice.NewFleetService(driverStore, vehicleStore, assignmentStore)
	tripService := tripservice.NewTripService(tripStore, driverStore)
	payoutService := payoutservice.NewPayoutService(payoutStore, driverStore, tripStore, publisher, schedule, loc)
	incidentService := incidentservice.NewIncidentService(incidentStore, deductionStore, publisher)
	deductionService := deductionservice.NewDeductionService(deductionStore, driverStore, publisher)
	healthService := services.NewHealthService(pool, redisClient, cfg.Server.Version)

	jwtValidator, err := middleware.NewJWTValidator(&cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize JWT validator: %v", err)
	}

	r := router.SetupRouter(router.Dependencies{
		Config:           cfg,
		JWTValidator:     jwtValidator,
		FleetHandler:     handlers.NewFleetHandler(fleetService),
		TripHandler:      handlers.NewTripHandler(tripService),
		PayoutHandler:    handlers.NewPayoutHandler(payoutService),
		IncidentHandler:  handlers.NewIncidentHandler(incidentService),
		DeductionHandler: handlers.NewDeductionHandler(deductionService),
		HealthHandler:    handlers.NewHealthHandler(healthService),
		Logger:           log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
	}
	if err := publisher.Shutdown(shutdownCtx); err != nil {
		log.Warnw("Event publisher shutdown failed", "error", err)
	}
	log.Info("Server stopped")
}

func buildSchedule(cfg *config.PayoutConfig) (commission.Schedule, error) {
	target, err := cfg.TargetAmountDecimal()
	if err != nil {
		return commission.Schedule{}, err
	}
	baseRate, err := cfg.BaseRateDecimal()
	if err != nil {
		return commission.Schedule{}, err
	}
	incentiveRate, err := cfg.IncentiveRateDecimal()
	if err != nil {
		return commission.Schedule{}, err
	}
	return commission.NewSchedule(target, baseRate, incentiveRate)
}
