package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	discordclient "guildhub/clients/discord"
	"guildhub/config"
	"guildhub/db"
	"guildhub/handlers"
	"guildhub/middleware"
	"guildhub/services/events"
	"guildhub/services/guildlinks"
	"guildhub/services/organizations"
	"guildhub/services/retryscheduler"
	discordusecase "guildhub/usecases/discord"
	"guildhub/usecases/eventsync"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Initialize error alert middleware
	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.AlertConfig{
		WebhookURL:  cfg.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "guildhub",
	})

	// Initialize database connection
	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Initialize repositories with shared connection
	guildLinksRepo := db.NewPostgresGuildLinksRepository(dbConn, cfg.DatabaseSchema)
	organizationsRepo := db.NewPostgresOrganizationsRepository(dbConn, cfg.DatabaseSchema)
	eventsRepo := db.NewPostgresEventsRepository(dbConn, cfg.DatabaseSchema)

	guildLinksService := guildlinks.NewGuildLinksService(guildLinksRepo)
	organizationsService := organizations.NewOrganizationsService(organizationsRepo)
	eventsService := events.NewEventsService(eventsRepo)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	discordClient, err := discordclient.NewDiscordClient(httpClient, cfg.DiscordConfig.BotToken, cfg.DiscordConfig.AppID)
	if err != nil {
		return err
	}

	retryScheduler := retryscheduler.NewRetryScheduler(retryscheduler.NewRealClock())

	eventSyncUseCase := eventsync.NewEventSyncUseCase(discordClient, guildLinksService, eventsService, retryScheduler)
	discordUseCase := discordusecase.NewDiscordUseCase(discordClient, guildLinksService, organizationsService)

	verifier := handlers.NewInteractionVerifier(
		cfg.DiscordConfig.PublicKey,
		cfg.DiscordConfig.DisableSignatureChecks,
	)
	webhooksHandler := handlers.NewDiscordWebhooksHandler(verifier, discordUseCase)
	eventsHandler := handlers.NewEventsHandler(eventSyncUseCase, eventsService, organizationsService)

	// Register the slash command tree on startup; a failure here is alerting
	// material but not fatal, the webhook endpoint still serves existing
	// registrations
	go func() {
		_ = alertMiddleware.WrapBackgroundTask("RegisterSlashCommands", discordClient.RegisterSlashCommands)()
	}()

	// Create a new router
	router := mux.NewRouter()

	router.HandleFunc("/discord/interactions", webhooksHandler.HandleInteraction).Methods("POST")
	router.HandleFunc("/api/events/{id}/sync", eventsHandler.HandleSyncEvent).Methods("POST")
	router.HandleFunc("/api/events/{id}/announce", eventsHandler.HandleAnnounceEvent).Methods("POST")

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			log.Printf("❌ Failed to write health check response: %v", err)
		}
	}).Methods("GET")

	// Setup CORS middleware
	allowedOrigins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i, origin := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(origin)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Setup and handle graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(c.Handler(router)),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

func handleGracefulShutdown(server *http.Server) error {
	// Channel to listen for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		log.Printf("✅ Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-stop
	log.Printf("🛑 Shutdown signal received, cleaning up...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
		return err
	}

	log.Printf("✅ Server stopped gracefully")
	return nil
}
