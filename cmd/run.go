package cmd

import (
	"context"
	"fmt"
	"time"

	"luckyten/api"
	"luckyten/config"
	"luckyten/database"
	"luckyten/events"
	"luckyten/repository"
	"luckyten/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting luckyten engine...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	registrationService := service.NewRegistrationService(uowFactory)
	accountService := service.NewAccountService(uowFactory)
	depositService := service.NewDepositService(uowFactory)
	gameService := service.NewGameService(uowFactory)
	referralService := service.NewReferralService(uowFactory)
	payoutService := service.NewPayoutService(uowFactory)
	settlementService := service.NewSettlementService(uowFactory)
	log.Info("Services initialized")

	// Initialize HTTP server
	handler := api.NewHandler(
		registrationService,
		accountService,
		depositService,
		gameService,
		referralService,
		payoutService,
		settlementService,
	)
	server := api.NewServer(cfg, handler)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Optional internal settlement ticker; the admin endpoint remains the
	// authoritative trigger either way
	if cfg.SettlementIntervalMinutes > 0 {
		go runSettlementTicker(ctx, settlementService, time.Duration(cfg.SettlementIntervalMinutes)*time.Minute)
	}

	log.WithField("environment", cfg.Environment).Info("Engine is running")

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}

// runSettlementTicker drives the settlement sweep on a fixed interval.
// Sweeps are idempotent per record, so overlapping triggers are harmless.
func runSettlementTicker(ctx context.Context, settlement service.SettlementService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := settlement.SettleDue(ctx, time.Now().UTC()); err != nil {
				log.WithError(err).Error("Scheduled settlement sweep failed")
			}
		}
	}
}
