package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"github.com/jamwil123/pool-tracker/internal/domain/standing"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
)

type fakeRefresher struct {
	calls chan struct{}
	err   error
}

func (f *fakeRefresher) Refresh(context.Context) (standing.Table, error) {
	f.calls <- struct{}{}
	if f.err != nil {
		return standing.Table{}, f.err
	}
	return standing.Table{Rows: []standing.Row{{Team: "Cue Club"}}}, nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *fakeRecorder) ObserveStandingsRefresh(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func TestScheduler_RefreshOnStart(t *testing.T) {
	t.Parallel()

	refresher := &fakeRefresher{calls: make(chan struct{}, 4)}
	s, err := New(Config{StandingsCron: "*/30 * * * *", RefreshOnStart: true}, refresher, nil, logging.NewNop(),
		gocron.WithClock(clockwork.NewFakeClock()))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("start scheduler: %v", err)
	}
	defer func() { _ = s.Stop() }()

	select {
	case <-refresher.calls:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected immediate standings refresh")
	}
}

func TestScheduler_RejectsInvalidCron(t *testing.T) {
	t.Parallel()

	s, err := New(Config{StandingsCron: "every minute"}, &fakeRefresher{calls: make(chan struct{}, 1)}, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	defer func() { _ = s.Stop() }()

	if err := s.Start(); err == nil {
		t.Fatalf("expected invalid cron expression to fail")
	}
}

func TestScheduler_RefreshRecordsOutcome(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{}
	refresher := &fakeRefresher{calls: make(chan struct{}, 2)}
	s, err := New(Config{StandingsCron: "0 * * * *"}, refresher, recorder, logging.NewNop())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	defer func() { _ = s.Stop() }()

	s.refreshStandings()
	refresher.err = errors.New("scraper down")
	s.refreshStandings()

	if len(recorder.outcomes) != 2 || recorder.outcomes[0] != "ok" || recorder.outcomes[1] != "error" {
		t.Fatalf("unexpected outcomes: %v", recorder.outcomes)
	}
}
