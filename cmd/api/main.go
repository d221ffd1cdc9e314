package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-cms/internal/config"
	"catalog-cms/internal/database"
	"catalog-cms/internal/handler"
	"catalog-cms/internal/media"
	"catalog-cms/internal/repository"
	"catalog-cms/internal/router"
	"catalog-cms/internal/service"
	"catalog-cms/internal/static"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine; real environment variables still apply
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().
		Str("public_dir", cfg.Catalog.PublicDir).
		Str("backend", cfg.Catalog.Backend).
		Msg("starting catalog server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize catalogue storage
	repo, closeRepo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	// Initialize image storage with optional S3 mirror
	imageWriter := media.NewFileWriter(cfg.Catalog.ImagesDir, logger)
	if cfg.S3.Enabled {
		s3Writer, err := media.NewS3Writer(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 writer, storing images locally only")
		} else {
			imageWriter = media.NewMirrorWriter(imageWriter, s3Writer, true, logger)
		}
	} else {
		logger.Info().Msg("storing images on the local file system only (S3 disabled)")
	}
	imageSaver := media.NewSaver(imageWriter, cfg.Catalog.ImagesURLPath(), logger)

	// Initialize services
	catalogService := service.NewCatalogService(repo, imageSaver, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(catalogService, cfg.Catalog.MaxBodyBytes, logger)
	authHandler := handler.NewAuthHandler(cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, logger)
	staticHandler, err := static.NewHandler(cfg.Catalog.PublicDir, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize static handler: %w", err)
	}

	if cfg.Auth.AdminPassword == "" {
		logger.Info().Msg("admin login disabled (ADMIN_PASSWORD not set)")
	}
	if cfg.Auth.APIKey == "" {
		logger.Warn().Msg("product API is open for writes (API_KEY not set)")
	}

	// Initialize router
	mux := router.New(productHandler, authHandler, staticHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newRepository opens the configured catalogue backend. The returned func
// releases its resources.
func newRepository(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.CatalogRepository, func(), error) {
	switch cfg.Catalog.Backend {
	case config.BackendPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewPostgresRepository(pool, cfg.Catalog.Name, logger), pool.Close, nil

	default:
		logger.Info().Str("file", cfg.Catalog.File).Msg("using JSON file catalog")
		return repository.NewFileRepository(cfg.Catalog.File, logger), func() {}, nil
	}
}
