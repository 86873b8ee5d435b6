package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jamwil123/pool-tracker/external/standings"
	"github.com/jamwil123/pool-tracker/internal/config"
	"github.com/jamwil123/pool-tracker/internal/infrastructure/account/introspect"
	"github.com/jamwil123/pool-tracker/internal/interfaces/httpapi"
	"github.com/jamwil123/pool-tracker/internal/observability"
	"github.com/jamwil123/pool-tracker/internal/platform/cache"
	idgen "github.com/jamwil123/pool-tracker/internal/platform/id"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
	"github.com/jamwil123/pool-tracker/internal/scheduler"
	"github.com/jamwil123/pool-tracker/internal/usecase"
)

// App is the assembled API process: the HTTP server, the background standings refresh and
// the storage they share.
type App struct {
	Server    *http.Server
	Scheduler *scheduler.Scheduler
	Metrics   *observability.Metrics
	storage   *Storage
	logger    *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	storage, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics(nil)

	matchSvc := usecase.NewMatchService(storage.Matches, idgen.NewUUIDGenerator("match"), cfg.SeasonResultCap, cfg.Location, logger)
	statsSvc := usecase.NewStatsService(storage.Stats, metrics, cfg.ReconcileMaxAttempts, logger)
	importSvc := usecase.NewImportService(storage.Matches, cfg.Location, cfg.ImportWorkers, logger)
	profileSvc := usecase.NewProfileService(
		storage.Profiles,
		storage.Roster,
		storage.Links,
		storage.Legacy,
		idgen.NewUUIDGenerator("roster"),
		logger,
	)
	playerStatsSvc := usecase.NewPlayerStatsService(storage.Matches, cfg.Location)

	standingsClient := standings.NewClient(standings.ClientConfig{
		URL:            cfg.StandingsURL,
		Timeout:        cfg.StandingsTimeout,
		MaxRetries:     cfg.StandingsMaxRetries,
		CircuitBreaker: cfg.StandingsCircuit,
		Logger:         logger,
	})
	metrics.TrackBreaker("standings", standingsClient.Breaker())
	standingsSvc := usecase.NewStandingsService(standingsClient, cache.NewStore(cfg.StandingsCacheTTL), logger)

	authClient := introspect.NewClient(introspect.ClientConfig{
		BaseURL:        cfg.AuthBaseURL,
		IntrospectPath: cfg.AuthIntrospectPath,
		AdminKey:       cfg.AuthAdminKey,
		Timeout:        cfg.AuthTimeout,
		CacheTTL:       cfg.AuthCacheTTL,
		CircuitBreaker: cfg.AuthCircuitBreaker,
		Logger:         logger,
	})
	metrics.TrackBreaker("auth", authClient.Breaker())

	sched, err := scheduler.New(scheduler.Config{
		StandingsCron:  cfg.StandingsCron,
		Location:       cfg.Location,
		RefreshTimeout: cfg.StandingsTimeout * 2,
		RefreshOnStart: true,
	}, standingsSvc, metrics, logger)
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("build scheduler: %w", err)
	}

	handler := httpapi.NewHandler(matchSvc, statsSvc, importSvc, profileSvc, playerStatsSvc, standingsSvc, logger)

	routerCfg := httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Recorder:           metrics,
	}
	if cfg.MetricsEnabled {
		routerCfg.MetricsHandler = metrics.Handler()
	}
	router := httpapi.NewRouter(handler, authClient, logger, routerCfg)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:    server,
		Scheduler: sched,
		Metrics:   metrics,
		storage:   storage,
		logger:    logger,
	}, nil
}

// Shutdown stops accepting requests, halts the scheduler and releases storage.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error
	if err := a.Server.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("shutdown http server: %w", err)
	}
	if err := a.Scheduler.Stop(); err != nil {
		a.logger.Warn("stop scheduler failed", "error", err)
	}
	if err := a.storage.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close storage: %w", err)
	}
	return firstErr
}
