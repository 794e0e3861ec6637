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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/wattwise/bill-ingest-service/api"
	"github.com/wattwise/bill-ingest-service/internal/ai"
	"github.com/wattwise/bill-ingest-service/internal/auth"
	"github.com/wattwise/bill-ingest-service/internal/config"
	"github.com/wattwise/bill-ingest-service/internal/db"
	"github.com/wattwise/bill-ingest-service/internal/dispatch"
	"github.com/wattwise/bill-ingest-service/internal/logging"
	"github.com/wattwise/bill-ingest-service/internal/storage"
)

func main() {
	// Load .env file if exists (for local development)
	envErr := godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, loaded, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, os.Stdout)
	if envErr != nil {
		logger.Debug().Msg("No .env file found, using environment variables")
	}
	if !loaded {
		logger.Warn().Str("path", configPath).Msg("config file not found, using defaults")
	}

	// Initialize JWT
	if err := auth.Init(os.Getenv("JWT_SECRET")); err != nil {
		logger.Warn().Err(err).Msg("JWT authentication disabled")
	} else {
		logger.Info().Msg("JWT authentication initialized")
	}

	// Initialize database connection pool; routing falls back to configured endpoints
	var source dispatch.EndpointSource
	if err := db.Init(cfg.Database.URL); err != nil {
		logger.Warn().Err(err).Msg("endpoint store not available, using configured endpoints")
	} else {
		defer db.Close()
		if err := db.Migrate(context.Background(), db.Pool); err != nil {
			logger.Error().Err(err).Msg("failed to migrate endpoint store")
		}
		source = db.NewEndpointStore(db.Pool)
		logger.Info().Msg("Database connection pool initialized")
	}

	// Initialize MinIO storage
	var (
		upload  api.UploadFunc
		presign api.PresignFunc
	)
	if err := storage.Init(cfg.Storage); err != nil {
		logger.Warn().Err(err).Msg("MinIO storage not available, documents will not be stored")
	} else {
		upload = storage.UploadBillDocument
		presign = storage.GetPresignedURL
		logger.Info().Str("bucket", storage.BucketName).Msg("MinIO storage initialized")
	}

	var extractor api.Extractor
	provider, err := ai.NewProvider(context.Background(), cfg.AI)
	if err != nil {
		logger.Error().Err(err).Msg("AI provider not available, bill processing disabled")
	} else {
		extractor = ai.NewExtractor(provider, time.Duration(cfg.AI.TimeoutSeconds)*time.Second, logger)
		if closer, ok := provider.(interface{ Close() error }); ok {
			defer closer.Close()
		}
	}

	client := dispatch.NewClient(
		cfg.Billing.Token,
		time.Duration(cfg.Billing.TimeoutSeconds)*time.Second,
		cfg.Billing.MaxBodyChars,
		logger,
	)
	resolver := dispatch.NewResolver(
		cfg.Billing.BaseURL,
		cfg.Billing.Endpoints,
		source,
		time.Duration(cfg.Billing.CacheTTLSeconds)*time.Second,
		logger,
	)
	// URL file refs are only followed to the MinIO host, e.g. presigned links
	fetcher := storage.NewFetcher(time.Duration(cfg.Billing.TimeoutSeconds)*time.Second, cfg.Storage.Endpoint)

	handler := api.NewHandler(cfg, api.Dependencies{
		Extractor:  extractor,
		Endpoints:  resolver,
		Dispatcher: dispatch.NewRouter(client, logger),
		Retrier:    dispatch.NewRetrier(client, fetcher, resolver, cfg.Retry, logger),
		Upload:     upload,
		Presign:    presign,
		Logger:     logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	srv := &http.Server{
		Addr:           addr,
		Handler:        handler.SetupRoutes(),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   3 * time.Minute, // extraction plus billing calls
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logEndpoints(logger, addr, cfg.AI.DefaultProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.Info().Msg("Server exited")
}

func logEndpoints(logger zerolog.Logger, addr, provider string) {
	logger.Info().
		Str("addr", addr).
		Str("version", api.Version).
		Str("ai_provider", provider).
		Bool("database", db.Pool != nil).
		Bool("storage", storage.Enabled()).
		Bool("auth", auth.Enabled()).
		Msg("Starting bill ingest service")
	logger.Info().Msgf("  POST http://%s/api/process-bill  - Extract, classify and route a bill", addr)
	logger.Info().Msgf("  POST http://%s/api/classify      - Classify an extraction document", addr)
	logger.Info().Msgf("  POST http://%s/api/retry-call    - Retry a failed billing call", addr)
	logger.Info().Msgf("  GET  http://%s/health            - Health check", addr)
}
