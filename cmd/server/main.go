package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"flashdeck/internal/cache"
	"flashdeck/internal/client"
	"flashdeck/internal/config"
	"flashdeck/internal/database"
	"flashdeck/internal/handlers"
	"flashdeck/internal/logger"
	"flashdeck/internal/middleware"
	"flashdeck/internal/render"
	"flashdeck/internal/repository"
	"flashdeck/internal/router"
	"flashdeck/internal/services"
	"flashdeck/internal/viewer"
	"flashdeck/internal/websocket"
	"flashdeck/migrations"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log := logger.New(cfg.LogFile, cfg.IsProduction())
	defer log.Sync()

	log.Info("🚀 Starting flashdeck...")
	log.Info("✓ Environment variables loaded", zap.String("env", cfg.Env))

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("✗ PostgreSQL connection failed", zap.Error(err))
	}
	defer pool.Close()
	log.Info("✓ PostgreSQL connected")

	// ──── Step 3: Run Database Migrations ────
	if err := database.RunMigrations(pool, migrations.FS, log); err != nil {
		log.Fatal("✗ Database migration failed", zap.Error(err))
	}
	log.Info("✓ Database migrations applied")

	// ──── Step 4: Listing cache (Redis when configured) ────
	var listings cache.FlashcardCache
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatal("✗ Redis connection failed", zap.Error(err))
		}
		defer redisClient.Close()
		listings = cache.NewRedis(redisClient, cache.DefaultTTL, log)
		log.Info("✓ Redis connected")
	} else {
		listings = cache.NewMemory(cache.DefaultTTL)
		log.Info("✓ In-process listing cache (REDIS_URL not set)")
	}

	// ──── Step 5: Question generator ────
	var model services.TextModel
	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGeminiModel(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrency, log)
		if err != nil {
			log.Fatal("✗ Gemini client initialization failed", zap.Error(err))
		}
		defer gemini.Close()
		model = gemini
		log.Info("✓ Gemini client initialized", zap.String("model", cfg.GeminiModel))
	} else {
		log.Info("✓ Sentence-based question generator (GEMINI_API_KEY not set)")
	}

	// ──── Flashcard service ────
	flashcardRepo := repository.NewFlashcardRepo(pool)
	studySessionRepo := repository.NewStudySessionRepo(pool)
	flashcardService := services.NewFlashcardService(
		flashcardRepo,
		studySessionRepo,
		services.NewQuestionGenerator(model, log),
		listings,
		log,
	)
	flashcardHandler := handlers.NewFlashcardHandler(flashcardService, services.NewFileExtractService(), log)

	// ──── Step 6: Viewer sessions ────
	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		log.Fatal("✗ Template parsing failed", zap.Error(err))
	}
	viewerAuth := middleware.NewViewerAuth(cfg.SessionSecret, 24*time.Hour)
	wsHub := websocket.NewHub(viewerAuth, log)
	serviceToken, err := viewerAuth.IssueServiceToken()
	if err != nil {
		log.Fatal("✗ Service token signing failed", zap.Error(err))
	}
	serviceClient := client.New(cfg.ServiceURL, client.HTTPClientWithHeader(middleware.ServiceTokenHeader, serviceToken), log)
	sessions := viewer.NewManager(serviceClient, renderer, wsHub, wsHub, viewer.Options{
		IdleTimeout:          time.Duration(cfg.ViewerIdleMinutes) * time.Minute,
		NotificationDuration: time.Duration(cfg.NotificationMillis) * time.Millisecond,
		MaxSessions:          cfg.MaxViewerSessions,
	}, log)
	wsHub.OnConnect = sessions.Redraw
	viewerHandler := handlers.NewViewerHandler(sessions, viewerAuth, renderer, log)
	log.Info("✓ Viewer sessions ready", zap.String("service_url", cfg.ServiceURL))

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		viewerAuth,
		flashcardHandler,
		viewerHandler,
		wsHub,
		cfg.AllowedOrigins,
		cfg.GenerateRatePerMin,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down...")
		sessions.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Info(fmt.Sprintf("✓ flashdeck ready on http://localhost:%s", cfg.Port))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("Server error", zap.Error(err))
	}
}
