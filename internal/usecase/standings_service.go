package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jamwil123/pool-tracker/internal/domain/standing"
	"github.com/jamwil123/pool-tracker/internal/platform/cache"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
)

const standingsCacheKey = "standings:division"

// StandingsService serves the division table from cache, falling back to the last good
// table when the scraper is unavailable.
type StandingsService struct {
	source standing.Source
	cache  *cache.Store
	logger *logging.Logger
}

func NewStandingsService(source standing.Source, store *cache.Store, logger *logging.Logger) *StandingsService {
	if logger == nil {
		logger = logging.Default()
	}

	return &StandingsService{
		source: source,
		cache:  store,
		logger: logger,
	}
}

func (s *StandingsService) Get(ctx context.Context) (standing.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Get")
	defer span.End()

	value, err := s.cache.GetOrLoad(ctx, standingsCacheKey, func(ctx context.Context) (any, error) {
		return s.source.FetchTable(ctx)
	})
	if err == nil {
		if table, ok := value.(standing.Table); ok {
			return table, nil
		}
		return standing.Table{}, fmt.Errorf("unexpected cached standings type %T", value)
	}

	if stale, ok := s.cache.Stale(ctx, standingsCacheKey); ok {
		if table, ok := stale.(standing.Table); ok {
			s.logger.WarnContext(ctx, "serving stale standings", "error", err)
			return table, nil
		}
	}
	return standing.Table{}, wrapDependencyErr("fetch standings", err)
}

// Refresh fetches a fresh table and replaces the cached one.
func (s *StandingsService) Refresh(ctx context.Context) (standing.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Refresh")
	defer span.End()

	table, err := s.source.FetchTable(ctx)
	if err != nil {
		return standing.Table{}, wrapDependencyErr("refresh standings", err)
	}
	s.cache.Set(ctx, standingsCacheKey, table)
	s.logger.InfoContext(ctx, "standings refreshed", "division", table.Division, "rows", len(table.Rows))
	return table, nil
}

// Proxy relays the upstream answer untouched.
func (s *StandingsService) Proxy(ctx context.Context) (standing.RawResponse, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Proxy")
	defer span.End()

	resp, err := s.source.FetchRaw(ctx)
	if err != nil {
		return standing.RawResponse{}, wrapDependencyErr("proxy standings", err)
	}
	return resp, nil
}

func wrapDependencyErr(op string, err error) error {
	if errors.Is(err, ErrDependencyUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrDependencyUnavailable, op, err)
}
