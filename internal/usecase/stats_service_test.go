package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
	"github.com/jamwil123/pool-tracker/internal/domain/profile"
	"github.com/jamwil123/pool-tracker/internal/infrastructure/repository/memory"
)

var statsTestNow = time.Date(2026, 3, 4, 21, 30, 0, 0, time.UTC)

type statsFixture struct {
	service  *StatsService
	matches  *memory.MatchRepository
	profiles *memory.ProfileRepository
	known    []KnownPlayer
}

func newStatsFixture(t *testing.T, existing []match.PlayerStatRow, totals map[string]match.WinLoss) statsFixture {
	t.Helper()

	uids := []string{"u1", "u2", "u3", "u4", "u5", "u6"}
	profiles := make([]profile.Profile, 0, len(uids))
	known := make([]KnownPlayer, 0, len(uids))
	for _, uid := range uids {
		wl := totals[uid]
		profiles = append(profiles, profile.Profile{
			UID:         uid,
			DisplayName: "Player " + uid,
			Role:        profile.RolePlayer,
			TotalWins:   wl.Wins,
			TotalLosses: wl.Losses,
			SubsStatus:  profile.SubsDue,
		})
		known = append(known, KnownPlayer{ID: uid, DisplayName: "Player " + uid})
	}

	store := memory.NewStore(memory.SeedData{
		Profiles: profiles,
		Matches: []match.Match{{
			ID:          "m1",
			Opponent:    "The Crown",
			HomeOrAway:  match.VenueHome,
			Result:      match.ResultPending,
			PlayerStats: existing,
			PlayerIDs:   match.Participants(existing),
		}},
	})

	service := NewStatsService(memory.NewStatsStore(store), nil, 10, nil)
	service.now = func() time.Time { return statsTestNow }

	return statsFixture{
		service:  service,
		matches:  memory.NewMatchRepository(store),
		profiles: memory.NewProfileRepository(store),
		known:    known,
	}
}

func (f statsFixture) totalsOf(t *testing.T, uid string) match.WinLoss {
	t.Helper()
	p, ok, err := f.profiles.GetByUID(t.Context(), uid)
	if err != nil || !ok {
		t.Fatalf("load profile %s: ok=%v err=%v", uid, ok, err)
	}
	return match.WinLoss{Wins: p.TotalWins, Losses: p.TotalLosses}
}

func (f statsFixture) storedMatch(t *testing.T) match.Match {
	t.Helper()
	m, ok, err := f.matches.GetByID(t.Context(), "m1")
	if err != nil || !ok {
		t.Fatalf("load match: ok=%v err=%v", ok, err)
	}
	return m
}

func TestStatsService_ReconcileMatchStats_AppliesDeltasFromEmpty(t *testing.T) {
	t.Parallel()

	f := newStatsFixture(t, nil, nil)
	result, err := f.service.ReconcileMatchStats(t.Context(), ReconcileMatchStatsInput{
		CallerRole:   profile.RoleCaptain,
		MatchID:      "m1",
		KnownPlayers: f.known,
		Rows: []ProposedStatRow{
			{PlayerID: "u1", SinglesWins: 2, DoublesLosses: 1, SubsPaid: true},
			{PlayerID: "u2", SinglesWins: 1, SinglesLosses: 1},
		},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Attempts != 1 {
		t.Fatalf("unexpected attempts: got=%d want=1", result.Attempts)
	}

	if got := f.totalsOf(t, "u1"); got != (match.WinLoss{Wins: 2, Losses: 1}) {
		t.Fatalf("unexpected u1 totals: %+v", got)
	}
	if got := f.totalsOf(t, "u2"); got != (match.WinLoss{Wins: 1, Losses: 1}) {
		t.Fatalf("unexpected u2 totals: %+v", got)
	}

	stored := f.storedMatch(t)
	if len(stored.PlayerStats) != 2 || stored.PlayerStats[0].DisplayName != "Player u1" {
		t.Fatalf("unexpected stored rows: %+v", stored.PlayerStats)
	}
	if len(stored.PlayerIDs) != 2 || stored.PlayerIDs[0] != "u1" || stored.PlayerIDs[1] != "u2" {
		t.Fatalf("unexpected participants: %v", stored.PlayerIDs)
	}
	if !stored.UpdatedAt.Equal(statsTestNow) {
		t.Fatalf("unexpected updatedAt: %s", stored.UpdatedAt)
	}
}

func TestStatsService_ReconcileMatchStats_EditAppliesOnlyDifference(t *testing.T) {
	t.Parallel()

	existing := []match.PlayerStatRow{
		{PlayerID: "u1", DisplayName: "Player u1", SinglesWins: 2},
		{PlayerID: "u2", DisplayName: "Player u2", SinglesLosses: 2, DoublesWins: 1},
	}
	f := newStatsFixture(t, existing, map[string]match.WinLoss{
		"u1": {Wins: 10, Losses: 4},
		"u2": {Wins: 3, Losses: 7},
	})

	result, err := f.service.ReconcileMatchStats(t.Context(), ReconcileMatchStatsInput{
		CallerRole:   profile.RoleViceCaptain,
		MatchID:      "m1",
		KnownPlayers: f.known,
		Rows: []ProposedStatRow{
			{PlayerID: "u1", SinglesWins: 1, SinglesLosses: 1},
			{PlayerID: "u3", DoublesWins: 1},
		},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	// u1 lost a win and gained a loss, u2 was removed, u3 was added.
	if got := f.totalsOf(t, "u1"); got != (match.WinLoss{Wins: 9, Losses: 5}) {
		t.Fatalf("unexpected u1 totals: %+v", got)
	}
	if got := f.totalsOf(t, "u2"); got != (match.WinLoss{Wins: 2, Losses: 5}) {
		t.Fatalf("unexpected u2 totals: %+v", got)
	}
	if got := f.totalsOf(t, "u3"); got != (match.WinLoss{Wins: 1, Losses: 0}) {
		t.Fatalf("unexpected u3 totals: %+v", got)
	}
	if len(result.Deltas) != 3 {
		t.Fatalf("unexpected delta count: got=%d want=3", len(result.Deltas))
	}
}

func TestStatsService_ReconcileMatchStats_ResubmittingSameRowsIsNoop(t *testing.T) {
	t.Parallel()

	f := newStatsFixture(t, nil, nil)
	input := ReconcileMatchStatsInput{
		CallerRole:   profile.RoleCaptain,
		MatchID:      "m1",
		KnownPlayers: f.known,
		Rows: []ProposedStatRow{
			{PlayerID: "u1", SinglesWins: 1, SinglesLosses: 1},
		},
	}

	if _, err := f.service.ReconcileMatchStats(t.Context(), input); err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	second, err := f.service.ReconcileMatchStats(t.Context(), input)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if len(second.Deltas) != 0 {
		t.Fatalf("expected no deltas on resubmit, got %+v", second.Deltas)
	}
	if got := f.totalsOf(t, "u1"); got != (match.WinLoss{Wins: 1, Losses: 1}) {
		t.Fatalf("totals changed on resubmit: %+v", got)
	}
}

func TestStatsService_ReconcileMatchStats_ClampsCounts(t *testing.T) {
	t.Parallel()

	f := newStatsFixture(t, nil, nil)
	result, err := f.service.ReconcileMatchStats(t.Context(), ReconcileMatchStatsInput{
		CallerRole:   profile.RoleCaptain,
		MatchID:      "m1",
		KnownPlayers: f.known,
		Rows: []ProposedStatRow{
			{PlayerID: "u1", SinglesWins: 5, SinglesLosses: 3, DoublesWins: 1, DoublesLosses: 1},
			{PlayerID: "u2", SinglesWins: -1, SinglesLosses: math.NaN(), DoublesWins: math.Inf(1)},
			{PlayerID: "u3", SinglesWins: 1.7, SinglesLosses: 0.9},
		},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	want := []match.PlayerStatRow{
		{PlayerID: "u1", DisplayName: "Player u1", SinglesWins: 2, DoublesWins: 1},
		{PlayerID: "u2", DisplayName: "Player u2"},
		{PlayerID: "u3", DisplayName: "Player u3", SinglesWins: 1},
	}
	for i, row := range result.Rows {
		if row != want[i] {
			t.Fatalf("unexpected clamped row %d: got=%+v want=%+v", i, row, want[i])
		}
	}
}

func TestStatsService_ReconcileMatchStats_RejectsWithoutWriting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		role    profile.Role
		matchID string
		rows    []ProposedStatRow
		noKnown bool
		wantErr error
	}{
		{
			name:    "player role",
			role:    profile.RolePlayer,
			matchID: "m1",
			rows:    []ProposedStatRow{{PlayerID: "u1", SinglesWins: 1}},
			wantErr: ErrPermissionDenied,
		},
		{
			name:    "blank match id",
			role:    profile.RoleCaptain,
			matchID: "  ",
			rows:    []ProposedStatRow{{PlayerID: "u1", SinglesWins: 1}},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "no known players",
			role:    profile.RoleCaptain,
			matchID: "m1",
			rows:    []ProposedStatRow{{PlayerID: "u1", SinglesWins: 1}},
			noKnown: true,
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown player",
			role:    profile.RoleCaptain,
			matchID: "m1",
			rows:    []ProposedStatRow{{PlayerID: "stranger", SinglesWins: 1}},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "duplicate player",
			role:    profile.RoleCaptain,
			matchID: "m1",
			rows:    []ProposedStatRow{{PlayerID: "u1", SinglesWins: 1}, {PlayerID: "u1", SinglesLosses: 1}},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing player id",
			role:    profile.RoleCaptain,
			matchID: "m1",
			rows:    []ProposedStatRow{{PlayerID: "", SinglesWins: 1}},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "singles over team capacity",
			role:    profile.RoleCaptain,
			matchID: "m1",
			rows: []ProposedStatRow{
				{PlayerID: "u1", SinglesWins: 2},
				{PlayerID: "u2", SinglesWins: 2},
				{PlayerID: "u3", SinglesWins: 2},
				{PlayerID: "u4", SinglesWins: 2},
				{PlayerID: "u5", SinglesWins: 2},
				{PlayerID: "u6", SinglesLosses: 1},
			},
			wantErr: match.ErrCapacityExceeded,
		},
		{
			name:    "unknown match",
			role:    profile.RoleCaptain,
			matchID: "missing",
			rows:    []ProposedStatRow{{PlayerID: "u1", SinglesWins: 1}},
			wantErr: ErrNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			existing := []match.PlayerStatRow{{PlayerID: "u1", DisplayName: "Player u1", SinglesWins: 1}}
			f := newStatsFixture(t, existing, map[string]match.WinLoss{"u1": {Wins: 1}})
			known := f.known
			if tc.noKnown {
				known = nil
			}

			_, err := f.service.ReconcileMatchStats(t.Context(), ReconcileMatchStatsInput{
				CallerRole:   tc.role,
				MatchID:      tc.matchID,
				KnownPlayers: known,
				Rows:         tc.rows,
			})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}

			if got := f.totalsOf(t, "u1"); got != (match.WinLoss{Wins: 1}) {
				t.Fatalf("totals changed on rejected call: %+v", got)
			}
			stored := f.storedMatch(t)
			if len(stored.PlayerStats) != 1 || stored.PlayerStats[0] != existing[0] {
				t.Fatalf("match rows changed on rejected call: %+v", stored.PlayerStats)
			}
		})
	}
}

func TestStatsService_ReconcileMatchStats_DoublesCapacityCountsPerPlayer(t *testing.T) {
	t.Parallel()

	f := newStatsFixture(t, nil, nil)
	rows := make([]ProposedStatRow, 0, 6)
	for _, uid := range []string{"u1", "u2", "u3", "u4", "u5", "u6"} {
		rows = append(rows, ProposedStatRow{PlayerID: uid, DoublesWins: 1})
	}

	if _, err := f.service.ReconcileMatchStats(t.Context(), ReconcileMatchStatsInput{
		CallerRole:   profile.RoleCaptain,
		MatchID:      "m1",
		KnownPlayers: f.known,
		Rows:         rows,
	}); err != nil {
		t.Fatalf("six doubles credits should fit: %v", err)
	}
}

func TestStatsService_ReconcileMatchStats_MissingProfileRollsBack(t *testing.T) {
	t.Parallel()

	existing := []match.PlayerStatRow{{PlayerID: "u1", DisplayName: "Player u1", SinglesWins: 1}}
	f := newStatsFixture(t, existing, map[string]match.WinLoss{"u1": {Wins: 1}})
	known := append(append([]KnownPlayer(nil), f.known...), KnownPlayer{ID: "ghost", DisplayName: "Ghost"})

	_, err := f.service.ReconcileMatchStats(t.Context(), ReconcileMatchStatsInput{
		CallerRole:   profile.RoleCaptain,
		MatchID:      "m1",
		KnownPlayers: known,
		Rows: []ProposedStatRow{
			{PlayerID: "u1", SinglesWins: 2},
			{PlayerID: "ghost", SinglesWins: 2},
		},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	stored := f.storedMatch(t)
	if len(stored.PlayerStats) != 1 || stored.PlayerStats[0].PlayerID != "u1" || stored.PlayerStats[0].SinglesWins != 1 {
		t.Fatalf("match rows must be unchanged, got %+v", stored.PlayerStats)
	}
	if got := f.totalsOf(t, "u1"); got != (match.WinLoss{Wins: 1}) {
		t.Fatalf("u1 totals must be unchanged, got %+v", got)
	}
	if _, ok, _ := f.profiles.GetByUID(t.Context(), "ghost"); ok {
		t.Fatalf("no profile should be created for ghost")
	}

	// Once the profile exists the same edit goes through and totals track the rows.
	if err := f.profiles.Upsert(t.Context(), profile.Profile{UID: "ghost", DisplayName: "Ghost", Role: profile.RolePlayer}); err != nil {
		t.Fatalf("create ghost profile: %v", err)
	}
	for _, rows := range [][]ProposedStatRow{
		{{PlayerID: "ghost", SinglesWins: 2}},
		{},
	} {
		if _, err := f.service.ReconcileMatchStats(t.Context(), ReconcileMatchStatsInput{
			CallerRole:   profile.RoleCaptain,
			MatchID:      "m1",
			KnownPlayers: known,
			Rows:         rows,
		}); err != nil {
			t.Fatalf("reconcile %+v: %v", rows, err)
		}
	}
	if got := f.totalsOf(t, "ghost"); got != (match.WinLoss{}) {
		t.Fatalf("ghost totals should return to zero, got %+v", got)
	}
}

func TestStatsService_ReconcileMatchStats_ConcurrentEditsKeepTotalsConsistent(t *testing.T) {
	t.Parallel()

	f := newStatsFixture(t, nil, nil)
	submissions := [][]ProposedStatRow{
		{{PlayerID: "u1", SinglesWins: 2}, {PlayerID: "u2", SinglesLosses: 2}},
		{{PlayerID: "u1", SinglesLosses: 1}, {PlayerID: "u3", DoublesWins: 1}},
		{{PlayerID: "u2", SinglesWins: 1, SinglesLosses: 1}},
		{{PlayerID: "u4", SinglesWins: 2, DoublesLosses: 1}, {PlayerID: "u5", SinglesWins: 1}},
		{{PlayerID: "u6", DoublesWins: 1}, {PlayerID: "u1", DoublesWins: 1}},
		{{PlayerID: "u3", SinglesWins: 1}},
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(submissions))
	for _, rows := range submissions {
		wg.Add(1)
		go func(rows []ProposedStatRow) {
			defer wg.Done()
			_, err := f.service.ReconcileMatchStats(context.Background(), ReconcileMatchStatsInput{
				CallerRole:   profile.RoleCaptain,
				MatchID:      "m1",
				KnownPlayers: f.known,
				Rows:         rows,
			})
			errs <- err
		}(rows)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent reconcile: %v", err)
		}
	}

	final := match.SumPlayerTotals([]match.Match{f.storedMatch(t)})
	for _, known := range f.known {
		if got, want := f.totalsOf(t, known.ID), final[known.ID]; got != want {
			t.Fatalf("totals for %s drifted: got=%+v want=%+v", known.ID, got, want)
		}
	}
}

type conflictingStatsStore struct {
	inner     match.StatsStore
	conflicts int
	calls     int
}

func (s *conflictingStatsStore) WithinStatsTx(ctx context.Context, fn func(ctx context.Context, tx match.StatsTx) error) error {
	s.calls++
	if s.calls <= s.conflicts {
		return fmt.Errorf("%w: simulated", match.ErrTxConflict)
	}
	return s.inner.WithinStatsTx(ctx, fn)
}

type countingRecorder struct {
	retries  int
	outcomes []string
}

func (r *countingRecorder) ObserveReconcile(outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}
func (r *countingRecorder) IncReconcileRetry()       { r.retries++ }
func (r *countingRecorder) AddProfileDelta(int, int) {}

func TestStatsService_ReconcileMatchStats_RetriesConflicts(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(memory.SeedData{
		Profiles: []profile.Profile{{UID: "u1", DisplayName: "Player u1"}},
		Matches:  []match.Match{{ID: "m1", Result: match.ResultPending}},
	})
	conflicting := &conflictingStatsStore{inner: memory.NewStatsStore(store), conflicts: 2}
	recorder := &countingRecorder{}
	service := NewStatsService(conflicting, recorder, 3, nil)

	result, err := service.ReconcileMatchStats(t.Context(), ReconcileMatchStatsInput{
		CallerRole:   profile.RoleCaptain,
		MatchID:      "m1",
		KnownPlayers: []KnownPlayer{{ID: "u1", DisplayName: "Player u1"}},
		Rows:         []ProposedStatRow{{PlayerID: "u1", SinglesWins: 1}},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Attempts != 3 {
		t.Fatalf("unexpected attempts: got=%d want=3", result.Attempts)
	}
	if recorder.retries != 2 {
		t.Fatalf("unexpected retry count: got=%d want=2", recorder.retries)
	}
	if len(recorder.outcomes) != 1 || recorder.outcomes[0] != "ok" {
		t.Fatalf("unexpected outcomes: %v", recorder.outcomes)
	}
}

func TestStatsService_ReconcileMatchStats_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	conflicting := &conflictingStatsStore{conflicts: 100}
	service := NewStatsService(conflicting, nil, 4, nil)

	_, err := service.ReconcileMatchStats(t.Context(), ReconcileMatchStatsInput{
		CallerRole:   profile.RoleCaptain,
		MatchID:      "m1",
		KnownPlayers: []KnownPlayer{{ID: "u1"}},
		Rows:         []ProposedStatRow{{PlayerID: "u1", SinglesWins: 1}},
	})
	if !errors.Is(err, ErrTransactionConflict) {
		t.Fatalf("expected ErrTransactionConflict, got %v", err)
	}
	if conflicting.calls != 4 {
		t.Fatalf("unexpected attempts: got=%d want=4", conflicting.calls)
	}
}
