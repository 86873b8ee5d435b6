package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jamwil123/pool-tracker/internal/config"
	"github.com/jamwil123/pool-tracker/internal/domain/legacyplayer"
	"github.com/jamwil123/pool-tracker/internal/domain/match"
	"github.com/jamwil123/pool-tracker/internal/domain/profile"
	"github.com/jamwil123/pool-tracker/internal/domain/roster"
	cachedrepo "github.com/jamwil123/pool-tracker/internal/infrastructure/repository/cache"
	"github.com/jamwil123/pool-tracker/internal/infrastructure/repository/memory"
	"github.com/jamwil123/pool-tracker/internal/infrastructure/repository/postgres"
	"github.com/jamwil123/pool-tracker/internal/platform/cache"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
)

// Storage holds the repositories for the configured driver.
type Storage struct {
	Matches  match.Repository
	Stats    match.StatsStore
	Profiles profile.Repository
	Roster   roster.Repository
	Links    roster.LinkStore
	Legacy   legacyplayer.Repository

	db *sqlx.DB
}

func OpenStorage(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Storage, error) {
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		return newMemoryStorage(memory.NewStore(memory.DefaultSeed())), nil
	case config.StoragePostgres, "":
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.AppEnv == config.EnvDev {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("bootstrap seed: %w", err)
			}
		}
		return newPostgresStorage(db, cache.NewStore(cfg.CacheTTL)), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func newMemoryStorage(store *memory.Store) *Storage {
	return &Storage{
		Matches:  memory.NewMatchRepository(store),
		Stats:    memory.NewStatsStore(store),
		Profiles: memory.NewProfileRepository(store),
		Roster:   memory.NewRosterRepository(store),
		Links:    memory.NewLinkStore(store),
		Legacy:   memory.NewLegacyPlayerRepository(store),
	}
}

func newPostgresStorage(db *sqlx.DB, shared *cache.Store) *Storage {
	return &Storage{
		Matches:  cachedrepo.NewMatchRepository(postgres.NewMatchRepository(db), shared),
		Stats:    postgres.NewStatsStore(db),
		Profiles: postgres.NewProfileRepository(db),
		Roster:   cachedrepo.NewRosterRepository(postgres.NewRosterRepository(db), shared),
		Links:    cachedrepo.NewLinkStore(postgres.NewLinkStore(db), shared),
		Legacy:   cachedrepo.NewLegacyPlayerRepository(postgres.NewLegacyPlayerRepository(db), shared),
		db:       db,
	}
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := NormalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
