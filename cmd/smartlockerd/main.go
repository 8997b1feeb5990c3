package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/guuisouza/smartlocker-backend-api/config"
	"github.com/guuisouza/smartlocker-backend-api/internal/analytics"
	"github.com/guuisouza/smartlocker-backend-api/internal/api"
	"github.com/guuisouza/smartlocker-backend-api/internal/auth"
	"github.com/guuisouza/smartlocker-backend-api/internal/db"
	"github.com/guuisouza/smartlocker-backend-api/internal/notification"
	"github.com/guuisouza/smartlocker-backend-api/internal/resolution"
	"github.com/guuisouza/smartlocker-backend-api/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "smartlocker ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Auth.JWTSecret == "" {
		logger.Fatalf("auth.jwt_secret must be configured")
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	authService := auth.NewService(gormDB, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	resolver := resolution.NewEngine(appStore)
	analyticsEngine := analytics.NewEngine(appStore, cfg.Analytics.Location)

	// Watch for overdue loans in the background.
	watcher := notification.NewWatcher(cfg, appStore)
	go watcher.Run(ctx)

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	handler := api.NewHandler(appStore, resolver, analyticsEngine, authService, &webpushOptions, cfg.Analytics.Location)
	router := api.NewRouter(handler, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
