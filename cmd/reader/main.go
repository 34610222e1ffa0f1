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

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DukeRupert/storyshelf/internal"
	"github.com/DukeRupert/storyshelf/internal/handler"
	"github.com/DukeRupert/storyshelf/internal/metrics"
	"github.com/DukeRupert/storyshelf/internal/middleware"
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

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize template renderer
	renderer, err := handler.NewRenderer(handler.RendererConfig{
		FS:     web.Templates(),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}
	logger.Info("Templates loaded", "count", len(renderer.ListTemplates()))

	isSecure := !cfg.IsDevelopment()
	limiter := middleware.NewRateLimiter(cfg.RequestRateLimit, cfg.RequestRateBurst, 5*time.Minute, nil, logger)
	limiter.Start(ctx)

	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(web.Static())))

	// Health check and metrics
	mux.HandleFunc("GET /health", handler.Health)
	mux.Handle("GET /metrics", middleware.MetricsAuth(cfg.MetricsUsername, cfg.MetricsPassword)(promhttp.Handler()))

	// Public pages
	handler.NewReaderHandler(renderer, logger).RegisterRoutes(mux)

	stack := middleware.Stack(
		middleware.RequestID,
		middleware.NewRequestLoggingMiddleware(logger).Handler,
		metrics.Middleware,
		middleware.NewSecurityHeadersMiddleware(isSecure).Handler,
		limiter.Limit,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ReaderPort),
		Handler:           stack(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Reader started", "address", server.Addr, "env", cfg.Env)
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
