package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quicky-client/internal/config"
	"quicky-client/internal/database"
	"quicky-client/internal/handlers"
	"quicky-client/internal/middleware"
	"quicky-client/internal/repository"
	"quicky-client/internal/router"
	"quicky-client/internal/services"
	"quicky-client/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Quicky Client...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	trackerRepo := repository.NewTrackerRepo(pool)
	quizConfigRepo := repository.NewQuizConfigRepo(pool)

	// ──── Initialize Services ────
	backendService := services.NewBackendService(cfg.BackendURL, time.Duration(cfg.BackendTimeoutSec)*time.Second)
	previewService := services.NewPreviewService(backendService, redisClients.Cache)
	libraryService := services.NewLibraryService(backendService, previewService, trackerRepo, quizConfigRepo)
	youtubeService := services.NewYouTubeService()
	fileExtractService := services.NewFileExtractService()
	uploadService := services.NewUploadService(backendService, youtubeService, fileExtractService, previewService)
	sessionService := services.NewSessionService(backendService)

	contentGenService, err := services.NewContentGenService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs, backendService)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer contentGenService.Close()
	if cfg.GeminiAPIKey != "" {
		log.Println("✓ Gemini Flash client initialized")
	} else {
		log.Println("✓ Content generation proxied to quiz backend (no Gemini key)")
	}

	// ──── Step 5: Start Backend Health Poller ────
	healthService := services.NewHealthService(
		backendService,
		redisClients.PubSub,
		time.Duration(cfg.HealthIntervalSec)*time.Second,
		time.Duration(cfg.HealthTimeoutSec)*time.Second,
		time.Duration(cfg.WakeTimeoutSec)*time.Second,
	)
	healthService.Start(context.Background())
	log.Println("✓ Backend health poller started")

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, healthService)
	wsHub.Run(context.Background())
	log.Println("✓ WebSocket hub started")

	// ──── Initialize Handlers ────
	sessionAuth := middleware.NewSessionAuth(cfg.SessionSecret)
	statusHandler := handlers.NewStatusHandler(healthService)
	uploadHandler := handlers.NewUploadHandler(uploadService, contentGenService)
	libraryHandler := handlers.NewLibraryHandler(libraryService, previewService, sessionService, sessionAuth)
	sessionHandler := handlers.NewSessionHandler(sessionService)

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		sessionAuth,
		statusHandler,
		uploadHandler,
		libraryHandler,
		sessionHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		// Wake probes can hold a response open for the full wake
		// timeout; the write timeout must outlast it.
		WriteTimeout: time.Duration(cfg.WakeTimeoutSec+30) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		healthService.Stop()
		wsHub.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Quicky Client ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
