package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studyassistant/internal/api"
	"studyassistant/internal/blob"
	"studyassistant/internal/config"
	"studyassistant/internal/db"
	"studyassistant/internal/gemini"
	"studyassistant/internal/history"
	"studyassistant/internal/logging"
	"studyassistant/internal/notify"
	"studyassistant/internal/report"
	"studyassistant/internal/study"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// @title                       Study Assistant API
// @version                     1.0
// @description                 Key point extraction, question generation and study history for TNPSC aspirants.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(cfg.LogLevel)
	if err := cfg.Validate(true); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// closers run in reverse order on shutdown.
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	// Initialize Gemini client
	geminiClient, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:      cfg.GeminiAPIKey,
		Model:       cfg.GeminiModel,
		Temperature: cfg.GeminiTemperature,
		MaxAttempts: cfg.GeminiMaxAttempts,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Gemini client")
	}
	closers = append(closers, geminiClient.Close)

	files, closeFiles, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("failed to initialize file storage")
	}
	closers = append(closers, closeFiles)

	store, closeStore, err := openHistoryStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.HistoryBackend).Msg("failed to initialize study history store")
	}
	closers = append(closers, closeStore)

	studyService := study.NewService(geminiClient, study.Options{
		Workers:        cfg.AnalysisWorkers,
		MaxUploadBytes: cfg.MaxUploadBytes,
		DocumentTTL:    cfg.DocumentTTL,
	})
	handler := api.NewHandler(
		studyService,
		history.NewService(store, files),
		report.NewRenderer(report.Options{FontPath: cfg.ReportFontPath}),
		notify.NewDiscord(cfg.DiscordWebhookURL),
		cfg.MaxUploadBytes,
	)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), logging.RequestLogger())
	// Multipart bodies carry several files per request.
	router.MaxMultipartMemory = 4 * cfg.MaxUploadBytes
	api.SetupRoutes(router, handler, api.Options{
		AllowedOrigin:      cfg.FrontendURL,
		JWTSecret:          []byte(cfg.JWTSecret),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("history", cfg.HistoryBackend).Str("storage", cfg.StorageBackend).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	// Give server 5 seconds to shut down gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}
	log.Info().Msg("server exited properly")
}

func openStorage(ctx context.Context, cfg *config.Config) (blob.Storage, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageGCS:
		g, err := blob.NewGCS(ctx, cfg.FirebaseStorageBucket, cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return g, func() { _ = g.Close() }, nil
	case config.StorageR2:
		r, err := blob.NewR2(ctx, blob.R2Config{
			AccountID:       cfg.CloudflareAccountID,
			BucketName:      cfg.R2BucketName,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			PublicURL:       cfg.R2PublicURL,
		})
		if err != nil {
			return nil, nil, err
		}
		return r, func() {}, nil
	case config.StorageNone:
		log.Warn().Msg("file storage disabled, history uploads with files will be refused")
		return nil, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func openHistoryStore(ctx context.Context, cfg *config.Config) (history.Store, func(), error) {
	switch cfg.HistoryBackend {
	case config.BackendFirestore:
		s, err := history.NewFirestoreStore(ctx, cfg.FirebaseProjectID, cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.BackendPostgres:
		database, err := db.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return history.NewPostgresStore(database), database.Close, nil
	case config.BackendSQLite:
		s, err := history.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.BackendMemory:
		log.Warn().Msg("study history is kept in memory and lost on restart")
		return history.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.HistoryBackend)
	}
}
