// @title Synathrozo API
// @version 1.0
// @description Event invitations, email dispatch and guest RSVPs.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"synathrozo/config"
	_ "synathrozo/docs"
	"synathrozo/internal/adapters/auth"
	"synathrozo/internal/adapters/delivery"
	deliveryhttp "synathrozo/internal/delivery/http"
	"synathrozo/internal/delivery/http/controllers"
	"synathrozo/internal/repository/postgres"
	"synathrozo/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	startCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()
	if err := db.PingContext(startCtx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	applied, err := postgres.Migrate(startCtx, db)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("migrations applied", "count", len(applied), "names", applied)

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	invRepo := postgres.NewInvitationRepository(db)

	// Collaborators
	deliveryClient := delivery.NewHTTPClient(http.DefaultClient, cfg.EmailFunctionURL, cfg.EmailFunctionKey)
	dispatcher := services.NewDispatcher(deliveryClient, invRepo, services.DispatcherConfig{
		PublicBaseURL: cfg.PublicBaseURL,
		Location:      cfg.DisplayLocation,
		Delay:         cfg.DispatchDelay,
	}, logger)
	aggregator := services.NewStatusAggregator(invRepo)

	// Services
	eventService := services.NewEventService(eventRepo, cfg.RequestTimeout)
	invitationService := services.NewInvitationService(eventRepo, invRepo, aggregator, dispatcher,
		services.InvitationServiceConfig{
			SendConfirmations: cfg.SendConfirmations,
			Timeout:           cfg.RequestTimeout,
		}, logger)

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty; every authenticated request will be rejected")
	}

	handler := deliveryhttp.NewRouter(deliveryhttp.RouterDeps{
		Logger:         logger,
		Verifier:       auth.NewJWTVerifier(cfg.JWTSecret),
		AllowedOrigins: cfg.AllowedOrigins,
		Events:         controllers.NewEventController(logger, eventService),
		Invitations:    controllers.NewInvitationController(logger, invitationService, dispatcher),
		RSVP:           controllers.NewRSVPController(logger, invitationService),
		Health:         controllers.NewHealthController(dispatcher),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := deliveryhttp.Serve(ctx, logger, ":"+cfg.Port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

