package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
	"github.com/jamwil123/pool-tracker/internal/domain/profile"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
)

const defaultReconcileMaxAttempts = 5

// StatsRecorder receives reconciliation outcomes for metrics.
type StatsRecorder interface {
	ObserveReconcile(outcome string, duration time.Duration)
	IncReconcileRetry()
	AddProfileDelta(wins, losses int)
}

type nopStatsRecorder struct{}

func (nopStatsRecorder) ObserveReconcile(string, time.Duration) {}
func (nopStatsRecorder) IncReconcileRetry()                     {}
func (nopStatsRecorder) AddProfileDelta(int, int)               {}

// KnownPlayer is a profile that stats may be attributed to.
type KnownPlayer struct {
	ID          string
	DisplayName string
}

// ProposedStatRow carries counts as submitted; they are clamped before use.
type ProposedStatRow struct {
	PlayerID      string
	SinglesWins   float64
	SinglesLosses float64
	DoublesWins   float64
	DoublesLosses float64
	SubsPaid      bool
}

type ReconcileMatchStatsInput struct {
	CallerRole   profile.Role
	MatchID      string
	Rows         []ProposedStatRow
	KnownPlayers []KnownPlayer
}

type ReconcileResult struct {
	MatchID  string
	Rows     []match.PlayerStatRow
	Deltas   []match.Delta
	Attempts int
}

type StatsService struct {
	store       match.StatsStore
	logger      *logging.Logger
	recorder    StatsRecorder
	maxAttempts int
	now         func() time.Time
}

func NewStatsService(store match.StatsStore, recorder StatsRecorder, maxAttempts int, logger *logging.Logger) *StatsService {
	if logger == nil {
		logger = logging.Default()
	}
	if recorder == nil {
		recorder = nopStatsRecorder{}
	}
	if maxAttempts < 1 {
		maxAttempts = defaultReconcileMaxAttempts
	}

	return &StatsService{
		store:       store,
		logger:      logger,
		recorder:    recorder,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// ReconcileMatchStats replaces a match's stat rows and applies the resulting win/loss deltas
// to every affected profile in one transaction. A lost race re-runs the whole body against
// fresh state.
func (s *StatsService) ReconcileMatchStats(ctx context.Context, input ReconcileMatchStatsInput) (ReconcileResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.ReconcileMatchStats")
	defer span.End()

	started := time.Now()
	result, err := s.reconcile(ctx, input)
	s.recorder.ObserveReconcile(reconcileOutcome(err), time.Since(started))
	if err != nil {
		return ReconcileResult{}, err
	}

	for _, delta := range result.Deltas {
		s.recorder.AddProfileDelta(delta.Wins, delta.Losses)
	}
	s.logger.InfoContext(ctx, "match stats reconciled",
		"match_id", result.MatchID,
		"rows", len(result.Rows),
		"profiles_touched", len(result.Deltas),
		"attempts", result.Attempts,
	)
	return result, nil
}

func (s *StatsService) reconcile(ctx context.Context, input ReconcileMatchStatsInput) (ReconcileResult, error) {
	if !input.CallerRole.IsManager() {
		return ReconcileResult{}, fmt.Errorf("%w: only captains and vice-captains can edit player stats", ErrPermissionDenied)
	}

	matchID := strings.TrimSpace(input.MatchID)
	if matchID == "" {
		return ReconcileResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	rows, err := prepareStatRows(input.Rows, input.KnownPlayers)
	if err != nil {
		return ReconcileResult{}, err
	}

	for attempt := 1; ; attempt++ {
		result, err := s.reconcileOnce(ctx, matchID, rows)
		if err == nil {
			result.Attempts = attempt
			return result, nil
		}
		if !errors.Is(err, match.ErrTxConflict) {
			return ReconcileResult{}, err
		}
		if attempt >= s.maxAttempts {
			return ReconcileResult{}, fmt.Errorf("%w: match %s still contended after %d attempts", ErrTransactionConflict, matchID, attempt)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ReconcileResult{}, ctxErr
		}

		s.recorder.IncReconcileRetry()
		s.logger.WarnContext(ctx, "match stats transaction conflicted, retrying",
			"match_id", matchID,
			"attempt", attempt,
			"error", err,
		)
	}
}

func (s *StatsService) reconcileOnce(ctx context.Context, matchID string, rows []match.PlayerStatRow) (ReconcileResult, error) {
	var out ReconcileResult
	err := s.store.WithinStatsTx(ctx, func(ctx context.Context, tx match.StatsTx) error {
		current, exists, err := tx.GetForUpdate(ctx, matchID)
		if err != nil {
			return fmt.Errorf("load match: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: match %s", ErrNotFound, matchID)
		}

		deltas := match.ComputeDeltas(current.PlayerStats, rows)
		for _, delta := range deltas {
			found, err := tx.IncrementProfileTotals(ctx, delta.PlayerID, delta.Wins, delta.Losses)
			if err != nil {
				return fmt.Errorf("increment totals for player %s: %w", delta.PlayerID, err)
			}
			// Rows for a player without a profile would leave totals behind the match rows.
			if !found {
				return fmt.Errorf("%w: player %s has no profile", ErrInvalidInput, delta.PlayerID)
			}
		}

		update := match.StatsUpdate{
			MatchID:   matchID,
			Rows:      rows,
			PlayerIDs: match.Participants(rows),
			Players:   match.DisplayNames(rows),
			UpdatedAt: s.now().UTC(),
		}
		if err := tx.SaveStats(ctx, update); err != nil {
			return fmt.Errorf("save match stats: %w", err)
		}

		out = ReconcileResult{MatchID: matchID, Rows: rows, Deltas: deltas}
		return nil
	})
	if err != nil {
		return ReconcileResult{}, err
	}
	return out, nil
}

// prepareStatRows validates proposed rows against the roster and returns clamped rows.
// Nothing is written when it fails.
func prepareStatRows(proposed []ProposedStatRow, known []KnownPlayer) ([]match.PlayerStatRow, error) {
	if len(known) == 0 {
		return nil, fmt.Errorf("%w: no players available to attribute stats to", ErrInvalidInput)
	}

	names := make(map[string]string, len(known))
	for _, p := range known {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			continue
		}
		names[id] = strings.TrimSpace(p.DisplayName)
	}

	seen := make(map[string]struct{}, len(proposed))
	for i, row := range proposed {
		id := strings.TrimSpace(row.PlayerID)
		if id == "" {
			return nil, fmt.Errorf("%w: row %d has no player id", ErrInvalidInput, i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate player %s", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}

	out := make([]match.PlayerStatRow, 0, len(proposed))
	for _, row := range proposed {
		id := strings.TrimSpace(row.PlayerID)
		name, ok := names[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown player %s", ErrInvalidInput, id)
		}
		if name == "" {
			name = id
		}

		sw, sl := match.ClampPair(row.SinglesWins, row.SinglesLosses, match.MaxSinglesPerPlayer)
		dw, dl := match.ClampPair(row.DoublesWins, row.DoublesLosses, match.MaxDoublesPerPlayer)
		out = append(out, match.PlayerStatRow{
			PlayerID:      id,
			DisplayName:   name,
			SinglesWins:   sw,
			SinglesLosses: sl,
			DoublesWins:   dw,
			DoublesLosses: dl,
			SubsPaid:      row.SubsPaid,
		})
	}

	if err := match.ValidateTeamCapacity(out); err != nil {
		return nil, err
	}
	return out, nil
}

func reconcileOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrPermissionDenied):
		return "denied"
	case errors.Is(err, ErrInvalidInput), errors.Is(err, match.ErrCapacityExceeded):
		return "rejected"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTransactionConflict):
		return "conflict"
	default:
		return "error"
	}
}
