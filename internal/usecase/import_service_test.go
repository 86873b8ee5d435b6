package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
	"github.com/jamwil123/pool-tracker/internal/infrastructure/repository/memory"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
	matchmock "github.com/jamwil123/pool-tracker/internal/mocks/domain/match"
)

func fixtureBatch() []ImportGame {
	notes := "2026-02-01"
	return []ImportGame{
		{
			Opponent:   "The Crown",
			HomeOrAway: "away",
			MatchDate:  "2026-01-08",
			Result:     "WIN",
			PlayerStats: []ImportStatRow{
				{PlayerID: "u1", DisplayName: "Alex", SinglesWins: 3, DoublesWins: 1, DoublesLosses: 1},
				{PlayerID: "  ", DisplayName: "nobody"},
			},
		},
		{Opponent: "The Crown", HomeOrAway: "away", MatchDate: "2026-01-08"},
		{Notes: &notes},
	}
}

func TestImportService_NormalizeImportGame(t *testing.T) {
	t.Parallel()

	service := NewImportService(matchmock.NewRepository(t), time.UTC, 1, nil)
	games := fixtureBatch()

	first := service.NormalizeImportGame(games[0])
	if first.ID != "match-2026-01-08-away-the-crown" {
		t.Fatalf("unexpected id: %s", first.ID)
	}
	if first.MatchDate == nil || first.MatchDate.Hour() != 20 {
		t.Fatalf("expected fixture date pinned to 20:00, got %v", first.MatchDate)
	}
	if first.Result != match.ResultWin {
		t.Fatalf("unexpected result: %s", first.Result)
	}
	if len(first.PlayerStats) != 1 {
		t.Fatalf("expected blank player rows dropped, got %d rows", len(first.PlayerStats))
	}
	row := first.PlayerStats[0]
	if row.SinglesWins != 2 || row.DoublesWins != 1 || row.DoublesLosses != 0 {
		t.Fatalf("expected clamped row, got %+v", row)
	}
	if len(first.PlayerIDs) != 1 || first.PlayerIDs[0] != "u1" {
		t.Fatalf("unexpected player ids: %v", first.PlayerIDs)
	}

	third := service.NormalizeImportGame(games[2])
	if third.ID != "match-2026-02-01-home-tbc" || third.Opponent != "TBC" {
		t.Fatalf("unexpected notes-dated match: id=%s opponent=%s", third.ID, third.Opponent)
	}
	if third.MatchDate == nil || third.MatchDate.Day() != 1 || third.MatchDate.Month() != time.February {
		t.Fatalf("expected date read from notes, got %v", third.MatchDate)
	}
}

func TestImportService_Import_IsIdempotent(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(memory.SeedData{})
	repo := memory.NewMatchRepository(store)
	service := NewImportService(repo, time.UTC, 2, nil)

	summary, err := service.Import(t.Context(), fixtureBatch(), ImportOptions{})
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if summary.Created != 2 || summary.Updated != 0 || summary.Skipped != 1 {
		t.Fatalf("unexpected first summary: %+v", summary)
	}

	summary, err = service.Import(t.Context(), fixtureBatch(), ImportOptions{})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if summary.Created != 0 || summary.Skipped != 3 {
		t.Fatalf("expected re-import to skip everything, got %+v", summary)
	}

	summary, err = service.Import(t.Context(), fixtureBatch(), ImportOptions{Overwrite: true})
	if err != nil {
		t.Fatalf("overwrite import: %v", err)
	}
	if summary.Updated != 2 || summary.Skipped != 1 || summary.StatsReplaced != 0 {
		t.Fatalf("unexpected overwrite summary: %+v", summary)
	}

	items, err := repo.List(t.Context())
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected two stored matches, got %d", len(items))
	}
}

func TestImportService_Import_DryRunWritesNothing(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(memory.SeedData{})
	repo := memory.NewMatchRepository(store)
	service := NewImportService(repo, time.UTC, 2, nil)

	summary, err := service.Import(t.Context(), fixtureBatch(), ImportOptions{DryRun: true})
	if err != nil {
		t.Fatalf("dry-run import: %v", err)
	}
	if summary.Created != 2 {
		t.Fatalf("unexpected dry-run summary: %+v", summary)
	}

	items, err := repo.List(t.Context())
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("dry run wrote %d matches", len(items))
	}
}

func TestImportService_Import_PropagatesRepositoryErrorUsingMockery(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	boom := errors.New("storage offline")
	repo.
		On("GetByID", mock.Anything, "match-2026-02-01-home-tbc").
		Return(match.Match{}, false, boom).
		Once()

	notes := "2026-02-01"
	service := NewImportService(repo, time.UTC, 1, nil)
	_, err := service.Import(t.Context(), []ImportGame{{Notes: &notes}}, ImportOptions{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestImportService_Import_OverwriteReportsReplacedStats(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(memory.SeedData{})
	repo := memory.NewMatchRepository(store)
	core, logs := observer.New(zapcore.WarnLevel)
	service := NewImportService(repo, time.UTC, 2, logging.FromZap(zap.New(core)))

	if _, err := service.Import(t.Context(), fixtureBatch(), ImportOptions{}); err != nil {
		t.Fatalf("first import: %v", err)
	}

	edited := fixtureBatch()
	edited[0].PlayerStats[0].SinglesWins = 1
	summary, err := service.Import(t.Context(), edited, ImportOptions{Overwrite: true})
	if err != nil {
		t.Fatalf("overwrite import: %v", err)
	}
	if summary.Updated != 2 || summary.StatsReplaced != 1 {
		t.Fatalf("unexpected overwrite summary: %+v", summary)
	}

	stored, ok, err := repo.GetByID(t.Context(), "match-2026-01-08-away-the-crown")
	if err != nil || !ok {
		t.Fatalf("load overwritten match: ok=%v err=%v", ok, err)
	}
	if len(stored.PlayerStats) != 1 || stored.PlayerStats[0].SinglesWins != 1 {
		t.Fatalf("expected imported rows to replace stored rows, got %+v", stored.PlayerStats)
	}

	warnings := logs.FilterMessageSnippet("recompute-totals").All()
	if len(warnings) != 1 {
		t.Fatalf("expected one stale totals warning, got %d", len(warnings))
	}
	if got := warnings[0].ContextMap()["matches"]; got != int64(1) {
		t.Fatalf("unexpected warning matches field: %v", got)
	}
}
