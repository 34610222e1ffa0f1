package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DukeRupert/storyshelf/internal"
	"github.com/DukeRupert/storyshelf/internal/auth"
	"github.com/DukeRupert/storyshelf/internal/csrf"
	"github.com/DukeRupert/storyshelf/internal/handler"
	"github.com/DukeRupert/storyshelf/internal/media"
	"github.com/DukeRupert/storyshelf/internal/metrics"
	"github.com/DukeRupert/storyshelf/internal/middleware"
	"github.com/DukeRupert/storyshelf/internal/pagination"
	"github.com/DukeRupert/storyshelf/internal/session"
	"github.com/DukeRupert/storyshelf/internal/storage"
	"github.com/DukeRupert/storyshelf/internal/storyapi"
	"github.com/DukeRupert/storyshelf/internal/storylist"
	"github.com/DukeRupert/storyshelf/web"
)

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	if err := cfg.RequireStoryAPI(); err != nil {
		return err
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Story API client
	api, err := storyapi.New(storyapi.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.APIRateLimit,
		RateBurst: cfg.APIRateBurst,
	}, logger)
	if err != nil {
		return fmt.Errorf("story API client initialization failed: %w", err)
	}

	// Picture storage
	store, err := newStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	pictures := media.NewResolver(store, cfg.PictureURLTTL, logger)
	thumbs := media.NewThumbnailer(store, media.ThumbnailSize, logger)

	// Console sessions: one story list per admin browser
	limits := pagination.Limits{Top: cfg.PaginationLimitTop, End: cfg.PaginationLimitEnd}
	creds := auth.ContextCredentials{}
	sessions, err := session.NewStore(session.StoreConfig[*storylist.List]{
		Logger:      logger,
		TTL:         cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
		New: func() *storylist.List {
			return storylist.New(api, creds, limits, logger)
		},
	})
	if err != nil {
		return fmt.Errorf("session store initialization failed: %w", err)
	}
	sessions.Start(ctx)

	// Initialize template renderer
	renderer, err := handler.NewRenderer(handler.RendererConfig{
		FS:     templatesFS(cfg, logger),
		Logger: logger,
		IsDev:  cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}
	logger.Info("Templates loaded", "count", len(renderer.ListTemplates()))

	// Initialize middleware
	isSecure := !cfg.IsDevelopment()
	limiter := middleware.NewRateLimiter(cfg.RequestRateLimit, cfg.RequestRateBurst, 5*time.Minute, nil, logger)
	limiter.Start(ctx)
	console := middleware.NewConsoleMiddleware(sessions, isSecure, logger)

	// Initialize handlers
	storyHandler := handler.NewStoryHandler(renderer, pictures, logger)
	formHandler := handler.NewStoryFormHandler(api, creds, renderer, logger)
	mediaHandler := handler.NewMediaHandler(thumbs, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(web.Static())))
	if local, ok := store.(*storage.LocalStorage); ok {
		mux.Handle("GET /files/", http.StripPrefix("/files/", http.FileServer(http.Dir(local.BasePath()))))
	}

	// Health check and metrics
	mux.HandleFunc("GET /health", handler.Health)
	mux.Handle("GET /metrics", middleware.MetricsAuth(cfg.MetricsUsername, cfg.MetricsPassword)(promhttp.Handler()))

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/stories", http.StatusSeeOther)
	})

	storyHandler.RegisterRoutes(mux, console.Handler)
	formHandler.RegisterRoutes(mux)
	mediaHandler.RegisterRoutes(mux)

	// Outer stack: outermost first
	stack := middleware.Stack(
		middleware.RequestID,
		middleware.NewRequestLoggingMiddleware(logger).Handler,
		metrics.Middleware,
		middleware.NewSecurityHeadersMiddleware(isSecure).Handler,
		limiter.Limit,
		csrf.Protect(isSecure, logger),
		middleware.WithCredentials,
	)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           stack(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return serve(server, logger, cfg.Env)
}

// serve runs server until SIGINT or SIGTERM, then shuts it down gracefully.
func serve(server *http.Server, logger *slog.Logger, env string) error {
	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
	}

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func newStorage(cfg *internal.Config, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageProvider {
	case storage.ProviderR2:
		return storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
	default:
		return storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
	}
}

// templatesFS reads templates from disk in development so edits show up
// without a rebuild, and from the embedded copy otherwise.
func templatesFS(cfg *internal.Config, logger *slog.Logger) fs.FS {
	if cfg.IsDevelopment() {
		if info, err := os.Stat("web/templates"); err == nil && info.IsDir() {
			logger.Debug("reading templates from disk", "dir", "web/templates")
			return os.DirFS("web/templates")
		}
	}
	return web.Templates()
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
