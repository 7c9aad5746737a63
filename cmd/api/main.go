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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wolfman30/aly-chat/internal/api/router"
	"github.com/wolfman30/aly-chat/internal/catalog"
	"github.com/wolfman30/aly-chat/internal/chat"
	"github.com/wolfman30/aly-chat/internal/completion"
	appconfig "github.com/wolfman30/aly-chat/internal/config"
	"github.com/wolfman30/aly-chat/internal/observability/metrics"
	"github.com/wolfman30/aly-chat/internal/render"
	"github.com/wolfman30/aly-chat/internal/search"
	"github.com/wolfman30/aly-chat/internal/webchat"
	"github.com/wolfman30/aly-chat/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting aly-chat API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"default_model", cfg.DefaultModel,
	)
	if !cfg.CompletionConfigured() {
		logger.Warn("OPENROUTER_API_KEY is not set; chat requests will return 500")
	}
	if cfg.BraveSearchAPIKey == "" {
		logger.Warn("BRAVE_SEARCH_API_KEY is not set; search-backed answers will fall back to an apology")
	}

	metricsHandler, chatMetrics := setupChatMetrics()
	srv := newServer(cfg, buildRouter(cfg, logger, chatMetrics, metricsHandler))

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func setupChatMetrics() (http.Handler, *metrics.ChatMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewChatMetrics(reg)
}

func buildRouter(cfg *appconfig.Config, logger *logging.Logger, chatMetrics *metrics.ChatMetrics, metricsHandler http.Handler) http.Handler {
	completionClient := completion.NewClient(cfg.OpenRouterAPIKey,
		completion.WithBaseURL(cfg.OpenRouterBaseURL),
		completion.WithReferer(cfg.PublicAppURL),
		completion.WithTitle(cfg.AppTitle),
		completion.WithLogger(logger),
		completion.WithMetrics(chatMetrics),
	)
	searchClient := search.NewBraveClient(cfg.BraveSearchAPIKey,
		search.WithEndpoint(cfg.BraveSearchURL),
		search.WithLogger(logger),
	)
	chatService := chat.NewService(chat.Config{
		Completion:        completionClient,
		Search:            searchClient,
		DefaultModel:      cfg.DefaultModel,
		SearchResultCount: cfg.SearchResultCount,
		MaxStreamDuration: cfg.MaxStreamDuration,
		Logger:            logger,
		Metrics:           chatMetrics,
	})

	return router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        chat.NewHandler(chatService, logger, chatMetrics),
		WebChatHandler:     webchat.NewHandler(chatService, cfg.CORSAllowedOrigins, logger),
		CatalogHandler:     catalog.NewHandler(cfg.DefaultModel),
		RenderHandler:      render.NewHandler(logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
}

// newServer sizes WriteTimeout past the stream cap so long answers are not cut off.
func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.MaxStreamDuration + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
