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

	"github.com/gin-gonic/gin"

	"github.com/roomieradar/roomieradar/internal/cache"
	"github.com/roomieradar/roomieradar/internal/chat"
	"github.com/roomieradar/roomieradar/internal/config"
	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/httphandler"
	"github.com/roomieradar/roomieradar/internal/middleware"
	"github.com/roomieradar/roomieradar/internal/monitoring"
	"github.com/roomieradar/roomieradar/internal/repository"
	"github.com/roomieradar/roomieradar/internal/services"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

const rateLimitSweep = 10 * time.Minute

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := telemetry.InitGlobalLogger(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		telemetry.GetContextualLogger(ctx).WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	logger := telemetry.GetContextualLogger(ctx).WithField("service", "server")

	shutdownOtel, err := telemetry.InitializeOpenTelemetry(ctx, &cfg.Telemetry)
	if err != nil {
		return err
	}
	defer shutdownOtel()

	db, err := database.NewInstrumentedConnection(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	redisService, err := cache.Connect(ctx, cfg.Redis, cfg.Telemetry.Enabled)
	if err != nil {
		return err
	}
	defer redisService.Close()

	matchMetrics, err := monitoring.NewMatchInstrumentation(nil)
	if err != nil {
		return err
	}
	httpMetrics, err := monitoring.NewHTTPMetrics(nil)
	if err != nil {
		return err
	}

	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	prefs := repository.NewPreferencesRepository(db)

	userService := services.NewUserService(users, redisService, cfg.JWTSecret, cfg.JWTExpiry)
	profileService := services.NewProfileService(profiles, prefs)
	matchingService := services.NewMatchingService(
		profiles,
		prefs,
		repository.NewCandidateRepository(db),
		repository.NewSwipeRepository(db),
		services.WithRecorder(matchMetrics),
		services.WithPresence(redisService),
	)
	messagingService := services.NewMessagingService(repository.NewMessageRepository(db))

	hub := chat.NewHub(messagingService, redisService)

	health := monitoring.NewHealthChecker(cfg.Telemetry.ServiceName, cfg.Telemetry.ServiceVersion)
	health.Register("database", db, 200*time.Millisecond)
	health.Register("redis", monitoring.PingerFunc(redisService.HealthCheck), 100*time.Millisecond)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go sweepRateLimiter(ctx, limiter)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := httphandler.NewHandler(userService, profileService, matchingService, messagingService, hub, httphandler.Options{
		TokenTTL:      cfg.JWTExpiry,
		SecureCookies: !cfg.IsDevelopment(),
		Upgrader:      chat.NewUpgrader(cfg.ClientURL),
	})
	router := httphandler.NewRouter(handler, httphandler.RouterConfig{
		ServiceName:   cfg.Telemetry.ServiceName,
		ClientURL:     cfg.ClientURL,
		Authenticator: userService,
		RateLimiter:   limiter,
		Health:        health,
		HTTPMetrics:   httpMetrics,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.HTTPPort).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

func sweepRateLimiter(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(rateLimitSweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Cleanup(); n > 0 {
				telemetry.GetContextualLogger(ctx).WithField("removed", n).Debug("Swept idle rate limiters")
			}
		}
	}
}
