package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/jamwil123/pool-tracker/internal/domain/legacyplayer"
	"github.com/jamwil123/pool-tracker/internal/domain/profile"
	"github.com/jamwil123/pool-tracker/internal/domain/roster"
	"github.com/jamwil123/pool-tracker/internal/platform/id"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
)

type SetupProfileInput struct {
	UID      string
	Email    string
	RosterID string
}

type AddRosterEntryInput struct {
	CallerRole  profile.Role
	DisplayName string
	Role        string
}

type ProfileService struct {
	profiles  profile.Repository
	roster    roster.Repository
	linkStore roster.LinkStore
	legacy    legacyplayer.Repository
	idGen     id.Generator
	logger    *logging.Logger
	now       func() time.Time
}

func NewProfileService(
	profiles profile.Repository,
	rosterRepo roster.Repository,
	linkStore roster.LinkStore,
	legacy legacyplayer.Repository,
	idGen id.Generator,
	logger *logging.Logger,
) *ProfileService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ProfileService{
		profiles:  profiles,
		roster:    rosterRepo,
		linkStore: linkStore,
		legacy:    legacy,
		idGen:     idGen,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *ProfileService) GetByUID(ctx context.Context, uid string) (profile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.GetByUID")
	defer span.End()

	uid = strings.TrimSpace(uid)
	if uid == "" {
		return profile.Profile{}, fmt.Errorf("%w: uid is required", ErrInvalidInput)
	}

	p, exists, err := s.profiles.GetByUID(ctx, uid)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if !exists {
		return profile.Profile{}, fmt.Errorf("%w: profile for %s", ErrNotFound, uid)
	}
	return p, nil
}

// RoleOf returns the caller's role, treating accounts without a profile as players.
func (s *ProfileService) RoleOf(ctx context.Context, uid string) (profile.Role, error) {
	p, exists, err := s.profiles.GetByUID(ctx, uid)
	if err != nil {
		return profile.RolePlayer, fmt.Errorf("get profile role: %w", err)
	}
	if !exists {
		return profile.RolePlayer, nil
	}
	return p.Role, nil
}

// ListKnownPlayers returns every profile that match stats may reference.
func (s *ProfileService) ListKnownPlayers(ctx context.Context) ([]KnownPlayer, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.ListKnownPlayers")
	defer span.End()

	items, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	out := make([]KnownPlayer, 0, len(items))
	for _, p := range items {
		name := strings.TrimSpace(p.DisplayName)
		if name == "" {
			name = p.UID
		}
		out = append(out, KnownPlayer{ID: p.UID, DisplayName: name})
	}
	return out, nil
}

// SetupProfile lets an account claim a roster entry. The claim and the profile write commit
// together; linking the matching legacy player record afterwards is best effort.
func (s *ProfileService) SetupProfile(ctx context.Context, input SetupProfileInput) (profile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.SetupProfile")
	defer span.End()

	uid := strings.TrimSpace(input.UID)
	rosterID := strings.TrimSpace(input.RosterID)
	if uid == "" || rosterID == "" {
		return profile.Profile{}, fmt.Errorf("%w: uid and roster id are required", ErrInvalidInput)
	}

	legacy := s.findLegacyPlayer(ctx, rosterID)

	var saved profile.Profile
	err := s.linkStore.WithinLinkTx(ctx, func(ctx context.Context, tx roster.LinkTx) error {
		entry, exists, err := tx.GetForUpdate(ctx, rosterID)
		if err != nil {
			return fmt.Errorf("load roster entry: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: roster entry %s", ErrNotFound, rosterID)
		}
		if entry.Assigned() && entry.AssignedUID != uid {
			return fmt.Errorf("%w: that player is already linked to another account", ErrConflict)
		}

		existing, found, err := s.profiles.GetByUID(ctx, uid)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}

		now := s.now().UTC()
		p := profile.Profile{
			UID:            uid,
			DisplayName:    strings.TrimSpace(entry.DisplayName),
			Role:           entry.Role,
			SubsStatus:     profile.SubsDue,
			LinkedRosterID: entry.ID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if found {
			p.TotalWins = existing.TotalWins
			p.TotalLosses = existing.TotalLosses
			p.SubsStatus = existing.SubsStatus
			p.CreatedAt = existing.CreatedAt
		}
		if legacy != nil {
			p.LinkedPlayerID = legacy.ID
		}

		if err := tx.UpsertProfile(ctx, p); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		if err := tx.SaveLink(ctx, entry.ID, roster.Link{UID: uid, Email: strings.TrimSpace(input.Email), At: now}); err != nil {
			return fmt.Errorf("save roster link: %w", err)
		}
		saved = p
		return nil
	})
	if err != nil {
		return profile.Profile{}, mapTxErr(err)
	}

	if legacy != nil {
		if err := s.legacy.LinkProfile(ctx, legacy.ID, uid); err != nil {
			s.logger.WarnContext(ctx, "link legacy player failed", "legacy_player_id", legacy.ID, "uid", uid, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "profile setup completed", "uid", uid, "roster_id", rosterID, "role", saved.Role)
	return saved, nil
}

// findLegacyPlayer matches a legacy record by roster id, then by display name.
func (s *ProfileService) findLegacyPlayer(ctx context.Context, rosterID string) *legacyplayer.Player {
	entry, exists, err := s.roster.GetByID(ctx, rosterID)
	if err != nil || !exists {
		return nil
	}
	players, err := s.legacy.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "list legacy players failed", "error", err)
		return nil
	}

	name := profile.NormalizeName(entry.DisplayName)
	var byName *legacyplayer.Player
	for i := range players {
		if players[i].ID == rosterID {
			return &players[i]
		}
		if byName == nil && name != "" && profile.NormalizeName(players[i].DisplayName) == name {
			byName = &players[i]
		}
	}
	return byName
}

func (s *ProfileService) AddRosterEntry(ctx context.Context, input AddRosterEntryInput) (roster.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.AddRosterEntry")
	defer span.End()

	if !input.CallerRole.IsManager() {
		return roster.Entry{}, fmt.Errorf("%w: only captains and vice-captains can add roster entries", ErrPermissionDenied)
	}
	name := strings.Join(strings.Fields(input.DisplayName), " ")
	if name == "" {
		return roster.Entry{}, fmt.Errorf("%w: display name is required", ErrInvalidInput)
	}

	entries, err := s.roster.List(ctx)
	if err != nil {
		return roster.Entry{}, fmt.Errorf("list roster: %w", err)
	}
	normalized := profile.NormalizeName(name)
	for _, e := range entries {
		if profile.NormalizeName(e.DisplayName) == normalized {
			return roster.Entry{}, fmt.Errorf("%w: a roster entry with that name already exists", ErrConflict)
		}
	}

	entryID, err := s.idGen.NewID()
	if err != nil {
		return roster.Entry{}, fmt.Errorf("generate roster id: %w", err)
	}
	entry := roster.Entry{
		ID:          entryID,
		DisplayName: name,
		Role:        profile.ParseRole(input.Role),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.roster.Create(ctx, entry); err != nil {
		return roster.Entry{}, fmt.Errorf("create roster entry: %w", err)
	}

	s.logger.InfoContext(ctx, "roster entry added", "roster_id", entry.ID, "display_name", entry.DisplayName)
	return entry, nil
}

// SearchRoster ranks roster entries by fuzzy closeness to query. An empty query lists them all.
func (s *ProfileService) SearchRoster(ctx context.Context, query string) ([]roster.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.SearchRoster")
	defer span.End()

	entries, err := s.roster.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return entries, nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.DisplayName)
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	out := make([]roster.Entry, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, entries[rank.OriginalIndex])
	}
	return out, nil
}

func (s *ProfileService) SetSubsStatus(ctx context.Context, callerRole profile.Role, uid, status string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.SetSubsStatus")
	defer span.End()

	if !callerRole.IsManager() {
		return fmt.Errorf("%w: only captains and vice-captains can update subs", ErrPermissionDenied)
	}
	subs := profile.SubsStatus(strings.ToLower(strings.TrimSpace(status)))
	if !subs.Valid() {
		return fmt.Errorf("%w: subs status must be paid or due", ErrInvalidInput)
	}

	updated, err := s.profiles.SetSubsStatus(ctx, strings.TrimSpace(uid), subs, s.now().UTC())
	if err != nil {
		return fmt.Errorf("set subs status: %w", err)
	}
	if !updated {
		return fmt.Errorf("%w: profile for %s", ErrNotFound, uid)
	}
	return nil
}
