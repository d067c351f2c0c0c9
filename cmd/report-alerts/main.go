package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-report-alerts/internal/alert"
	"github.com/mr1hm/go-report-alerts/internal/api"
	"github.com/mr1hm/go-report-alerts/internal/audience"
	"github.com/mr1hm/go-report-alerts/internal/config"
	"github.com/mr1hm/go-report-alerts/internal/directory"
	"github.com/mr1hm/go-report-alerts/internal/geocode"
	"github.com/mr1hm/go-report-alerts/internal/logging"
	"github.com/mr1hm/go-report-alerts/internal/media"
	"github.com/mr1hm/go-report-alerts/internal/notify"
	"github.com/mr1hm/go-report-alerts/internal/observability"
	"github.com/mr1hm/go-report-alerts/internal/verify"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	if cfg.Geocode.APIKey == "" {
		slog.Warn("GOOGLE_MAPS_API_KEY is not set; geocoding calls will fail")
	}
	if cfg.Verify.APIKey == "" {
		slog.Warn("GEMINI_API_KEY is not set; verification calls will fail")
	}
	if cfg.Messaging.AccountSID == "" || cfg.Messaging.AuthToken == "" {
		slog.Warn("Twilio credentials are not set; alert delivery will fail")
	}

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Geocoding, with a pincode cache shared across all pipeline runs.
	geoClient := geocode.NewClient(cfg.Geocode.APIKey, cfg.Geocode.Timeout)
	if cfg.Geocode.BaseURL != "" {
		geoClient = geoClient.WithBaseURL(cfg.Geocode.BaseURL)
	}
	resolver := geocode.NewCachedResolver(geoClient, cfg.Geocode.CacheSize, cfg.Geocode.CacheTTL, clock, metrics)

	// Verification.
	fetcher := media.NewFetcher(cfg.Verify.FetchTimeout, cfg.Verify.MaxMediaBytes)
	analyzer := verify.NewGenerativeClient(cfg.Verify.APIKey, cfg.Verify.Model, cfg.Verify.Timeout)
	if cfg.Verify.BaseURL != "" {
		analyzer = analyzer.WithBaseURL(cfg.Verify.BaseURL)
	}
	verifier := verify.NewVerifier(fetcher, analyzer, clock)

	// User directory.
	users, err := directory.NewSQLiteDirectory(cfg.Directory.Path)
	if err != nil {
		logging.Fatalf("Failed to open user directory: %v", err)
	}
	defer users.Close()

	// Audience selection and dispatch, each with its own bounded pool.
	selector := audience.NewSelector(resolver, users, cfg.Alert.ResolveWorkers, cfg.Geocode.Timeout, metrics)
	sender := notify.NewTwilioClient(cfg.Messaging.AccountSID, cfg.Messaging.AuthToken, cfg.Messaging.FromNumber, cfg.Messaging.Timeout)
	if cfg.Messaging.BaseURL != "" {
		sender = sender.WithBaseURL(cfg.Messaging.BaseURL)
	}
	dispatcher := notify.NewDispatcher(sender, cfg.Messaging.DefaultCountryCode, cfg.Alert.DispatchWorkers, cfg.Messaging.Timeout, metrics)

	orchestrator := alert.NewOrchestrator(resolver, verifier, selector, dispatcher, cfg.Alert.RadiusMeters, cfg.Alert.MaxConcurrentRuns, metrics)

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimit))

	handler := api.NewHandler(orchestrator)
	handler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
