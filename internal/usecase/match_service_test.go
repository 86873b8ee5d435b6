package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
	"github.com/jamwil123/pool-tracker/internal/domain/profile"
	"github.com/jamwil123/pool-tracker/internal/infrastructure/repository/memory"
	matchmock "github.com/jamwil123/pool-tracker/internal/mocks/domain/match"
)

type staticIDGenerator struct {
	id string
}

func (g staticIDGenerator) NewID() (string, error) {
	return g.id, nil
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func TestMatchService_Create_NormalizesInput(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(memory.SeedData{})
	service := NewMatchService(memory.NewMatchRepository(store), staticIDGenerator{id: "match-001"}, 0, nil, nil)
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	notes := "  bring cues  "
	created, err := service.Create(t.Context(), CreateMatchInput{
		CallerRole: profile.RoleCaptain,
		Opponent:   "  The Crown ",
		HomeOrAway: "AWAY",
		Notes:      &notes,
	})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	if created.ID != "match-001" || created.Opponent != "The Crown" {
		t.Fatalf("unexpected match: %+v", created)
	}
	if created.HomeOrAway != match.VenueAway || created.Result != match.ResultPending {
		t.Fatalf("unexpected venue/result: %s/%s", created.HomeOrAway, created.Result)
	}
	if created.Notes == nil || *created.Notes != "bring cues" {
		t.Fatalf("unexpected notes: %v", created.Notes)
	}

	got, err := service.Get(t.Context(), "match-001")
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected createdAt: %s", got.CreatedAt)
	}
}

func TestMatchService_Create_RejectsPlayersAndBlankOpponent(t *testing.T) {
	t.Parallel()

	service := NewMatchService(matchmock.NewRepository(t), staticIDGenerator{id: "x"}, 0, nil, nil)

	if _, err := service.Create(t.Context(), CreateMatchInput{CallerRole: profile.RolePlayer, Opponent: "A"}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if _, err := service.Create(t.Context(), CreateMatchInput{CallerRole: profile.RoleCaptain, Opponent: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMatchService_List_SplitsBoards(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := memory.NewStore(memory.SeedData{Matches: []match.Match{
		{ID: "past-pending", Result: match.ResultPending, MatchDate: ptrTime(now.AddDate(0, 0, -3))},
		{ID: "today-pending", Result: match.ResultPending, MatchDate: ptrTime(now.Add(-8 * time.Hour))},
		{ID: "future-win", Result: match.ResultWin, MatchDate: ptrTime(now.AddDate(0, 0, 5))},
		{ID: "undated", Result: match.ResultPending},
		{ID: "next-week", Result: match.ResultPending, MatchDate: ptrTime(now.AddDate(0, 0, 7))},
	}})
	service := NewMatchService(memory.NewMatchRepository(store), staticIDGenerator{}, 0, nil, nil)
	service.now = func() time.Time { return now }

	board, err := service.List(t.Context())
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}

	wantUpcoming := []string{"today-pending", "next-week", "undated"}
	wantPrevious := []string{"future-win", "past-pending"}
	assertMatchIDs(t, "upcoming", board.Upcoming, wantUpcoming)
	assertMatchIDs(t, "previous", board.Previous, wantPrevious)
}

func assertMatchIDs(t *testing.T, label string, items []match.Match, want []string) {
	t.Helper()
	if len(items) != len(want) {
		t.Fatalf("%s: unexpected count got=%d want=%d", label, len(items), len(want))
	}
	for i, m := range items {
		if m.ID != want[i] {
			t.Fatalf("%s[%d]: got=%s want=%s", label, i, m.ID, want[i])
		}
	}
}

func TestMatchService_UpdateResult_EnforcesSeasonCapUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), "trace_id", "trace-123")
	repo := matchmock.NewRepository(t)
	service := NewMatchService(repo, staticIDGenerator{}, 13, nil, nil)

	repo.
		On("GetByID", mock.Anything, "m14").
		Return(match.Match{ID: "m14", Result: match.ResultPending}, true, nil).
		Once()
	repo.
		On("CountDecided", mock.Anything).
		Return(13, nil).
		Once()

	_, err := service.UpdateResult(ctx, UpdateResultInput{CallerRole: profile.RoleCaptain, MatchID: "m14", Result: "win"})
	if !errors.Is(err, match.ErrCapacityExceeded) || !errors.Is(err, match.ErrSeasonCapReached) {
		t.Fatalf("expected season cap error, got %v", err)
	}
}

func TestMatchService_UpdateResult_RedecidingDoesNotCountUsingMockery(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	service := NewMatchService(repo, staticIDGenerator{}, 13, nil, nil)
	now := time.Date(2026, 2, 1, 22, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	repo.
		On("GetByID", mock.Anything, "m1").
		Return(match.Match{ID: "m1", Result: match.ResultWin}, true, nil).
		Once()
	repo.
		On("UpdateResult", mock.Anything, "m1", match.ResultLoss, now).
		Return(nil).
		Once()

	updated, err := service.UpdateResult(t.Context(), UpdateResultInput{CallerRole: profile.RoleViceCaptain, MatchID: "m1", Result: " LOSS "})
	if err != nil {
		t.Fatalf("update result: %v", err)
	}
	if updated.Result != match.ResultLoss {
		t.Fatalf("unexpected result: %s", updated.Result)
	}
}

func TestMatchService_UpdateResult_RejectsUnknownResult(t *testing.T) {
	t.Parallel()

	service := NewMatchService(matchmock.NewRepository(t), staticIDGenerator{}, 13, nil, nil)
	_, err := service.UpdateResult(t.Context(), UpdateResultInput{CallerRole: profile.RoleCaptain, MatchID: "m1", Result: "draw"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMatchService_Delete(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(memory.SeedData{Matches: []match.Match{{ID: "m1"}}})
	service := NewMatchService(memory.NewMatchRepository(store), staticIDGenerator{}, 0, nil, nil)

	if err := service.Delete(t.Context(), profile.RolePlayer, "m1"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if err := service.Delete(t.Context(), profile.RoleCaptain, "m1"); err != nil {
		t.Fatalf("delete match: %v", err)
	}
	if err := service.Delete(t.Context(), profile.RoleCaptain, "m1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMatchService_List_MatchDayStartsAtLocalMidnight(t *testing.T) {
	t.Parallel()

	bst := time.FixedZone("BST", 60*60)
	now := time.Date(2026, 7, 8, 10, 0, 0, 0, time.UTC)
	localMidnight := time.Date(2026, 7, 8, 0, 0, 0, 0, bst)

	store := memory.NewStore(memory.SeedData{Matches: []match.Match{
		{ID: "at-midnight", Result: match.ResultPending, MatchDate: ptrTime(localMidnight)},
		{ID: "just-before", Result: match.ResultPending, MatchDate: ptrTime(localMidnight.Add(-time.Nanosecond))},
	}})
	service := NewMatchService(memory.NewMatchRepository(store), staticIDGenerator{}, 0, bst, nil)
	service.now = func() time.Time { return now }

	board, err := service.List(t.Context())
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}

	assertMatchIDs(t, "upcoming", board.Upcoming, []string{"at-midnight"})
	assertMatchIDs(t, "previous", board.Previous, []string{"just-before"})
}
