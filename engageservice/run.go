// Package engageservice boots the engagement scoring service: storage,
// feed, leaderboard cache, HTTP transport and health monitoring.
package engageservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Abtechguru/veritusblogs-engagement/internal/api"
	"github.com/Abtechguru/veritusblogs-engagement/internal/config"
	"github.com/Abtechguru/veritusblogs-engagement/internal/events"
	"github.com/Abtechguru/veritusblogs-engagement/internal/feed"
	"github.com/Abtechguru/veritusblogs-engagement/internal/health"
	"github.com/Abtechguru/veritusblogs-engagement/internal/platform/logger"
	"github.com/Abtechguru/veritusblogs-engagement/internal/services"
	"github.com/Abtechguru/veritusblogs-engagement/internal/store"
	"github.com/Abtechguru/veritusblogs-engagement/internal/store/postgres"
	"github.com/Abtechguru/veritusblogs-engagement/internal/store/sqlite"
)

// busBuffer bounds the grant->feed channel; drops are tolerated because
// the feed re-warms from the ledger on restart.
const busBuffer = 256

// Run starts the engagement service HTTP server and blocks until
// shutdown or error. buildTarget overrides ENGAGEMENT_BUILD_TARGET when
// non-empty.
func Run(buildTarget string) error {
	log := logger.New("engagement-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	if buildTarget != "" {
		cfg.BuildTarget = buildTarget
		cfg.DBDriver = "auto"
		if err := cfg.ResolveDefaults(); err != nil {
			log.Error().Err(err).Msg("Invalid build-target override")
			return err
		}
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Engagement service starting")

	// Cancellable root context bound to SIGINT/SIGTERM.
	ctx, stop := newServerContext()
	defer stop()

	st, err := newStore(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Store adapter unavailable")
		return err
	}

	bus := events.NewBus(busBuffer)
	fd := feed.New(cfg.FeedCapacity)
	if err := warmFeed(ctx, st, fd); err != nil {
		// Non-fatal: the feed refills from live traffic.
		log.Warn().Err(err).Msg("activity feed warm-up failed")
	}
	go fd.Run(ctx, bus)

	award := services.NewAwardService(st, bus, log)
	boards := services.NewLeaderboardService(st, log, cfg.LeaderboardSize)
	boards.Start(ctx, time.Duration(cfg.LeaderboardRefreshSeconds)*time.Second)

	svcHealth, storeHealth := startHealthCheckers(ctx, cfg, log, st)

	// Block startup until the store reports healthy; fail fast otherwise.
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Err(err).Msg("startup health check failed")
		return err
	}

	router := api.NewRouter(api.Deps{
		Award:       award,
		Boards:      boards,
		Feed:        fd,
		Service:     svcHealth,
		StoreHealth: storeHealth,
	})

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// newStore selects the ledger store implementation from configuration.
func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return sqlite.New(cfg.SQLitePath)
	case "postgres":
		return postgres.New(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

// warmFeed seeds the in-memory activity window from the ledger.
func warmFeed(ctx context.Context, st store.Store, fd *feed.Feed) error {
	recent, err := st.Events().ListRecent(ctx, fd.Capacity())
	if err != nil {
		return err
	}
	fd.Warm(recent)
	return nil
}

// startHealthCheckers starts the store checker and the service-level
// aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) (*health.ServiceHealthChecker, *store.StoreHealthChecker) {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)
	return svcHealth, storeChecker
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// startupHealthTimeout is interval*2 with a 60 second floor, giving the
// first probe cycle room to complete.
func startupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health turns healthy or the
// startup window expires.
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
