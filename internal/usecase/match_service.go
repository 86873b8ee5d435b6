package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
	"github.com/jamwil123/pool-tracker/internal/domain/profile"
	"github.com/jamwil123/pool-tracker/internal/platform/id"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
)

type CreateMatchInput struct {
	CallerRole profile.Role
	Opponent   string
	Location   string
	HomeOrAway string
	MatchDate  *time.Time
	Notes      *string
}

type UpdateResultInput struct {
	CallerRole profile.Role
	MatchID    string
	Result     string
}

// MatchBoard is the season split into the two lists shown to players.
type MatchBoard struct {
	Upcoming []match.Match
	Previous []match.Match
}

type MatchService struct {
	repo      match.Repository
	idGen     id.Generator
	resultCap int
	location  *time.Location
	logger    *logging.Logger
	now       func() time.Time
}

// NewMatchService builds the match service. Match days start at midnight in loc, which
// defaults to UTC.
func NewMatchService(repo match.Repository, idGen id.Generator, resultCap int, loc *time.Location, logger *logging.Logger) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}
	if resultCap < 1 {
		resultCap = match.DefaultSeasonResultCap
	}
	if loc == nil {
		loc = time.UTC
	}

	return &MatchService{
		repo:      repo,
		idGen:     idGen,
		resultCap: resultCap,
		location:  loc,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *MatchService) Create(ctx context.Context, input CreateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Create")
	defer span.End()

	if !input.CallerRole.IsManager() {
		return match.Match{}, fmt.Errorf("%w: only captains and vice-captains can add fixtures", ErrPermissionDenied)
	}
	opponent := strings.TrimSpace(input.Opponent)
	if opponent == "" {
		return match.Match{}, fmt.Errorf("%w: opponent is required", ErrInvalidInput)
	}

	matchID, err := s.idGen.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}

	now := s.now().UTC()
	m := match.Match{
		ID:          matchID,
		Opponent:    opponent,
		Location:    strings.TrimSpace(input.Location),
		HomeOrAway:  match.ParseVenue(input.HomeOrAway),
		MatchDate:   input.MatchDate,
		Notes:       trimmedOrNil(input.Notes),
		Result:      match.ResultPending,
		PlayerStats: []match.PlayerStatRow{},
		PlayerIDs:   []string{},
		Players:     []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, match.ErrAlreadyExists) {
			return match.Match{}, fmt.Errorf("%w: match %s already exists", ErrConflict, matchID)
		}
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}

	s.logger.InfoContext(ctx, "match created", "match_id", m.ID, "opponent", m.Opponent)
	return m, nil
}

func (s *MatchService) Get(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Get")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	m, exists, err := s.repo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}
	return m, nil
}

func (s *MatchService) List(ctx context.Context) (MatchBoard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.List")
	defer span.End()

	items, err := s.repo.List(ctx)
	if err != nil {
		return MatchBoard{}, fmt.Errorf("list matches: %w", err)
	}

	upcoming, previous := match.Split(items, s.now().In(s.location))
	return MatchBoard{Upcoming: upcoming, Previous: previous}, nil
}

// UpdateResult records a win or loss, or reverts to pending. A season holds at most resultCap
// decided matches; re-deciding an already decided match does not count against it.
func (s *MatchService) UpdateResult(ctx context.Context, input UpdateResultInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.UpdateResult")
	defer span.End()

	if !input.CallerRole.IsManager() {
		return match.Match{}, fmt.Errorf("%w: only captains and vice-captains can record results", ErrPermissionDenied)
	}
	result := match.Result(strings.ToLower(strings.TrimSpace(input.Result)))
	if !result.Valid() {
		return match.Match{}, fmt.Errorf("%w: result must be pending, win or loss", ErrInvalidInput)
	}

	current, err := s.Get(ctx, input.MatchID)
	if err != nil {
		return match.Match{}, err
	}

	if result.Decided() && !current.Result.Decided() {
		decided, err := s.repo.CountDecided(ctx)
		if err != nil {
			return match.Match{}, fmt.Errorf("count decided matches: %w", err)
		}
		if decided >= s.resultCap {
			return match.Match{}, fmt.Errorf("%w: %w: %d results already recorded", match.ErrCapacityExceeded, match.ErrSeasonCapReached, decided)
		}
	}

	now := s.now().UTC()
	if err := s.repo.UpdateResult(ctx, current.ID, result, now); err != nil {
		return match.Match{}, fmt.Errorf("update match result: %w", err)
	}
	current.Result = result
	current.UpdatedAt = now

	s.logger.InfoContext(ctx, "match result updated", "match_id", current.ID, "result", result)
	return current, nil
}

func (s *MatchService) Delete(ctx context.Context, callerRole profile.Role, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Delete")
	defer span.End()

	if !callerRole.IsManager() {
		return fmt.Errorf("%w: only captains and vice-captains can remove fixtures", ErrPermissionDenied)
	}
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	deleted, err := s.repo.Delete(ctx, matchID)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}

	s.logger.InfoContext(ctx, "match deleted", "match_id", matchID)
	return nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
