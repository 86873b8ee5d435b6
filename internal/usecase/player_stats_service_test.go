package usecase

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
	"github.com/jamwil123/pool-tracker/internal/infrastructure/repository/memory"
)

func newSeededPlayerStatsService() *PlayerStatsService {
	store := memory.NewStore(memory.DefaultSeed())
	service := NewPlayerStatsService(memory.NewMatchRepository(store), time.UTC)
	service.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	return service
}

func TestPlayerStatsService_UserTotals(t *testing.T) {
	t.Parallel()

	service := newSeededPlayerStatsService()
	totals, err := service.UserTotals(t.Context(), memory.SeedPlayerUID)
	if err != nil {
		t.Fatalf("user totals: %v", err)
	}
	if totals.Totals.Wins != 1 || totals.Totals.Losses != 1 {
		t.Fatalf("unexpected totals: %+v", totals.Totals)
	}
	if totals.GamesCount != 2 || totals.SubsDueCount != 1 {
		t.Fatalf("unexpected counts: games=%d subsDue=%d", totals.GamesCount, totals.SubsDueCount)
	}
	if totals.NextGame == nil || totals.NextGame.Opponent != "Cue Club" {
		t.Fatalf("unexpected next game: %+v", totals.NextGame)
	}
}

func TestPlayerStatsService_PlayerMetrics(t *testing.T) {
	t.Parallel()

	service := newSeededPlayerStatsService()
	metrics, err := service.PlayerMetrics(t.Context(), memory.SeedPlayerUID)
	if err != nil {
		t.Fatalf("player metrics: %v", err)
	}
	if metrics.FinishedMatches != 1 || metrics.MatchesPlayed != 1 {
		t.Fatalf("unexpected match counts: %+v", metrics)
	}
	if metrics.FrameWinRatePct != 50 || metrics.SelectionRatePct != 100 {
		t.Fatalf("unexpected rates: %+v", metrics)
	}
	if math.Abs(metrics.ContributionSharePct-100.0/3) > 1e-9 {
		t.Fatalf("unexpected contribution share: %f", metrics.ContributionSharePct)
	}
}

func TestPlayerStatsService_GameTotals(t *testing.T) {
	t.Parallel()

	service := newSeededPlayerStatsService()
	games, err := service.GameTotals(t.Context(), memory.SeedCaptainUID)
	if err != nil {
		t.Fatalf("game totals: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("expected one game with a row, got %d", len(games))
	}
	if games[0].Opponent != "The Red Lion" || games[0].Wins != 2 || games[0].Losses != 0 {
		t.Fatalf("unexpected game total: %+v", games[0])
	}
}

func TestPlayerStatsService_RequiresUID(t *testing.T) {
	t.Parallel()

	service := newSeededPlayerStatsService()
	if _, err := service.UserTotals(t.Context(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPlayerStatsService_UserTotals_NextGameUsesLeagueZone(t *testing.T) {
	t.Parallel()

	bst := time.FixedZone("BST", 60*60)
	matchDay := time.Date(2026, 7, 8, 0, 30, 0, 0, bst)
	store := memory.NewStore(memory.SeedData{Matches: []match.Match{
		{ID: "tonight", Opponent: "The Crown", Result: match.ResultPending, MatchDate: &matchDay},
	}})

	service := NewPlayerStatsService(memory.NewMatchRepository(store), bst)
	service.now = func() time.Time { return time.Date(2026, 7, 8, 9, 0, 0, 0, time.UTC) }

	totals, err := service.UserTotals(t.Context(), "u1")
	if err != nil {
		t.Fatalf("user totals: %v", err)
	}
	if totals.NextGame == nil || totals.NextGame.MatchID != "tonight" {
		t.Fatalf("expected the match day's fixture as next game, got %+v", totals.NextGame)
	}
}
