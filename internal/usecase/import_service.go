package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
)

const defaultImportWorkers = 4

// ImportGame is one fixture as it appears in an import file.
type ImportGame struct {
	Opponent    string          `json:"opponent"`
	Location    string          `json:"location"`
	HomeOrAway  string          `json:"homeOrAway"`
	MatchDate   string          `json:"matchDate"`
	Notes       *string         `json:"notes"`
	Result      string          `json:"result"`
	PlayerStats []ImportStatRow `json:"playerStats"`
}

type ImportStatRow struct {
	PlayerID      string  `json:"playerId"`
	DisplayName   string  `json:"displayName"`
	SinglesWins   float64 `json:"singlesWins"`
	SinglesLosses float64 `json:"singlesLosses"`
	DoublesWins   float64 `json:"doublesWins"`
	DoublesLosses float64 `json:"doublesLosses"`
	SubsPaid      bool    `json:"subsPaid"`
}

type ImportOptions struct {
	DryRun    bool
	Overwrite bool
}

// ImportSummary counts what an import did. StatsReplaced counts overwritten matches whose
// player rows changed; profile totals are not adjusted for those until recompute-totals runs.
type ImportSummary struct {
	Created       int
	Updated       int
	Skipped       int
	StatsReplaced int
	IDs           []string
}

type importOutcome int

const (
	importCreated importOutcome = iota
	importUpdated
	importSkipped
)

type importResult struct {
	outcome       importOutcome
	statsReplaced bool
}

type ImportService struct {
	repo     match.Repository
	location *time.Location
	workers  int
	logger   *logging.Logger
	now      func() time.Time
}

func NewImportService(repo match.Repository, location *time.Location, workers int, logger *logging.Logger) *ImportService {
	if logger == nil {
		logger = logging.Default()
	}
	if location == nil {
		location = time.UTC
	}
	if workers < 1 {
		workers = defaultImportWorkers
	}

	return &ImportService{
		repo:     repo,
		location: location,
		workers:  workers,
		logger:   logger,
		now:      time.Now,
	}
}

// NormalizeImportGame turns a raw import entry into a match with a stable id.
func (s *ImportService) NormalizeImportGame(game ImportGame) match.Match {
	opponent := strings.TrimSpace(game.Opponent)
	if opponent == "" {
		opponent = "TBC"
	}
	notes := trimmedOrNil(game.Notes)
	venue := match.ParseVenue(game.HomeOrAway)

	var matchDate *time.Time
	raw := strings.TrimSpace(game.MatchDate)
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		matchDate = &parsed
	} else if raw != "" {
		matchDate = match.ParseFixtureDate(raw, s.location)
	}
	if matchDate == nil && notes != nil {
		matchDate = match.ParseFixtureDate(*notes, s.location)
	}

	rows := make([]match.PlayerStatRow, 0, len(game.PlayerStats))
	for _, stat := range game.PlayerStats {
		playerID := strings.TrimSpace(stat.PlayerID)
		if playerID == "" {
			continue
		}
		sw, sl := match.ClampPair(stat.SinglesWins, stat.SinglesLosses, match.MaxSinglesPerPlayer)
		dw, dl := match.ClampPair(stat.DoublesWins, stat.DoublesLosses, match.MaxDoublesPerPlayer)
		rows = append(rows, match.PlayerStatRow{
			PlayerID:      playerID,
			DisplayName:   strings.TrimSpace(stat.DisplayName),
			SinglesWins:   sw,
			SinglesLosses: sl,
			DoublesWins:   dw,
			DoublesLosses: dl,
			SubsPaid:      stat.SubsPaid,
		})
	}

	now := s.now().UTC()
	return match.Match{
		ID:          match.StableID(notes, matchDate, venue, opponent),
		Opponent:    opponent,
		Location:    strings.TrimSpace(game.Location),
		HomeOrAway:  venue,
		MatchDate:   matchDate,
		Notes:       notes,
		Result:      match.ParseResult(game.Result),
		PlayerStats: rows,
		PlayerIDs:   match.Participants(rows),
		Players:     match.DisplayNames(rows),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Import writes games under their stable ids. Existing matches are left alone unless
// opts.Overwrite is set, and a repeated id within one batch is imported once.
func (s *ImportService) Import(ctx context.Context, games []ImportGame, opts ImportOptions) (ImportSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.Import")
	defer span.End()

	summary := ImportSummary{IDs: make([]string, 0, len(games))}
	seen := make(map[string]struct{}, len(games))
	pending := make([]match.Match, 0, len(games))
	for _, game := range games {
		m := s.NormalizeImportGame(game)
		if _, dup := seen[m.ID]; dup {
			summary.Skipped++
			continue
		}
		seen[m.ID] = struct{}{}
		summary.IDs = append(summary.IDs, m.ID)
		pending = append(pending, m)
	}

	p := pool.NewWithResults[importResult]().
		WithMaxGoroutines(s.workers).
		WithErrors().
		WithContext(ctx)
	for _, m := range pending {
		p.Go(func(ctx context.Context) (importResult, error) {
			return s.importOne(ctx, m, opts)
		})
	}

	results, err := p.Wait()
	if err != nil {
		return ImportSummary{}, err
	}
	for _, res := range results {
		if res.statsReplaced {
			summary.StatsReplaced++
		}
		switch res.outcome {
		case importCreated:
			summary.Created++
		case importUpdated:
			summary.Updated++
		default:
			summary.Skipped++
		}
	}

	s.logger.InfoContext(ctx, "fixtures imported",
		"created", summary.Created,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"dry_run", opts.DryRun,
	)
	if summary.StatsReplaced > 0 {
		s.logger.WarnContext(ctx, "overwritten matches replaced player rows, profile totals are stale until recompute-totals runs",
			"matches", summary.StatsReplaced,
			"dry_run", opts.DryRun,
		)
	}
	return summary, nil
}

func (s *ImportService) importOne(ctx context.Context, m match.Match, opts ImportOptions) (importResult, error) {
	current, exists, err := s.repo.GetByID(ctx, m.ID)
	if err != nil {
		return importResult{outcome: importSkipped}, fmt.Errorf("check match %s: %w", m.ID, err)
	}
	if exists && !opts.Overwrite {
		return importResult{outcome: importSkipped}, nil
	}

	res := importResult{outcome: importCreated}
	if exists {
		res = importResult{
			outcome:       importUpdated,
			statsReplaced: !slices.Equal(current.PlayerStats, m.PlayerStats),
		}
	}
	if opts.DryRun {
		return res, nil
	}

	if err := s.repo.Upsert(ctx, m); err != nil {
		return importResult{outcome: importSkipped}, fmt.Errorf("upsert match %s: %w", m.ID, err)
	}
	return res, nil
}
