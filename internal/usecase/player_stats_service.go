package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
)

// GameTotal is one player's frame record in one match.
type GameTotal struct {
	MatchID   string
	Opponent  string
	MatchDate *time.Time
	Result    match.Result
	Wins      int
	Losses    int
}

// PlayerStatsService derives a player's dashboard numbers from the season's matches.
type PlayerStatsService struct {
	matches  match.Repository
	location *time.Location
	now      func() time.Time
}

func NewPlayerStatsService(matches match.Repository, loc *time.Location) *PlayerStatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &PlayerStatsService{
		matches:  matches,
		location: loc,
		now:      time.Now,
	}
}

// today is the current instant in the league's zone, so match days roll over at local midnight.
func (s *PlayerStatsService) today() time.Time {
	return s.now().In(s.location)
}

func (s *PlayerStatsService) UserTotals(ctx context.Context, uid string) (match.UserTotals, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerStatsService.UserTotals")
	defer span.End()

	items, err := s.seasonFor(ctx, uid)
	if err != nil {
		return match.UserTotals{}, err
	}
	return match.ComputeUserTotals(items, strings.TrimSpace(uid), s.today()), nil
}

func (s *PlayerStatsService) PlayerMetrics(ctx context.Context, uid string) (match.PlayerMetrics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerStatsService.PlayerMetrics")
	defer span.End()

	items, err := s.seasonFor(ctx, uid)
	if err != nil {
		return match.PlayerMetrics{}, err
	}
	return match.ComputePlayerMetrics(items, strings.TrimSpace(uid), s.today()), nil
}

// GameTotals lists the player's record in every match they have a row in, newest first.
func (s *PlayerStatsService) GameTotals(ctx context.Context, uid string) ([]GameTotal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerStatsService.GameTotals")
	defer span.End()

	items, err := s.seasonFor(ctx, uid)
	if err != nil {
		return nil, err
	}
	uid = strings.TrimSpace(uid)

	out := make([]GameTotal, 0, len(items))
	for _, m := range match.SortPrevious(items) {
		if _, ok := m.RowFor(uid); !ok {
			continue
		}
		wl := match.ComputeGameTotals(m, uid)
		out = append(out, GameTotal{
			MatchID:   m.ID,
			Opponent:  m.Opponent,
			MatchDate: m.MatchDate,
			Result:    m.Result,
			Wins:      wl.Wins,
			Losses:    wl.Losses,
		})
	}
	return out, nil
}

func (s *PlayerStatsService) seasonFor(ctx context.Context, uid string) ([]match.Match, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrInvalidInput)
	}
	items, err := s.matches.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}
