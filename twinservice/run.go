// Package twinservice hosts the gaming twin HTTP service lifecycle.
package twinservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gametwin/gaming-twin/server/internal/api"
	"github.com/gametwin/gaming-twin/server/internal/config"
	"github.com/gametwin/gaming-twin/server/internal/factory"
	"github.com/gametwin/gaming-twin/server/internal/health"
	"github.com/gametwin/gaming-twin/server/internal/logger"
	"github.com/gametwin/gaming-twin/server/internal/services"
	"github.com/gametwin/gaming-twin/server/internal/store"
	"github.com/gametwin/gaming-twin/server/internal/twin"
)

// Run starts the twin service HTTP server and blocks until shutdown or error.
func Run() error {
	return RunWithConfig(nil)
}

// RunWithConfig is Run with an optional pre-resolved configuration, used by
// the CLI flag override in cmd/twin-service.
func RunWithConfig(cfg *config.Config) error {
	log := logger.New("twin-service")

	if cfg == nil {
		var err error
		cfg, err = config.New()
		if err != nil {
			log.Error().Err(err).Msg("Failed to load configuration")
			return err
		}
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Twin service starting")

	// Cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := factory.NewStore(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}

	// Health checkers: component checker for the store, aggregated service flag.
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)

	// Services and router
	twinSvc := services.NewTwinService(st, twin.SystemClock{}, cfg.UpdateMaxRetries)
	thresholdSvc := services.NewThresholdService(st, cfg.UpdateMaxRetries)
	reportSvc := services.NewReportService(st)
	router := api.NewRouter(twinSvc, thresholdSvc, reportSvc, storeChecker.IsHealthy, log)

	// Block startup until the store reports healthy; fail fast otherwise.
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// startupHealthTimeout returns the startup health window in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func startupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := startupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: store not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
