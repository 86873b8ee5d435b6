package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/jamwil123/pool-tracker/internal/domain/legacyplayer"
	"github.com/jamwil123/pool-tracker/internal/domain/match"
	"github.com/jamwil123/pool-tracker/internal/domain/profile"
	"github.com/jamwil123/pool-tracker/internal/domain/roster"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
)

const defaultMaintenanceWorkers = 4

type SeedOptions struct {
	Overwrite         bool
	LinkUp            bool
	DryRun            bool
	IncludeUnassigned bool
}

type SeedSummary struct {
	Created int
	Updated int
	Skipped int
	Linked  int
}

// TotalsDrift is a profile whose stored totals disagree with its match rows.
type TotalsDrift struct {
	UID      string
	Stored   match.WinLoss
	Computed match.WinLoss
}

type MaintenanceService struct {
	matches  match.Repository
	profiles profile.Repository
	roster   roster.Repository
	legacy   legacyplayer.Repository
	workers  int
	logger   *logging.Logger
	now      func() time.Time
}

func NewMaintenanceService(
	matches match.Repository,
	profiles profile.Repository,
	rosterRepo roster.Repository,
	legacy legacyplayer.Repository,
	workers int,
	logger *logging.Logger,
) *MaintenanceService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers < 1 {
		workers = defaultMaintenanceWorkers
	}

	return &MaintenanceService{
		matches:  matches,
		profiles: profiles,
		roster:   rosterRepo,
		legacy:   legacy,
		workers:  workers,
		logger:   logger,
		now:      time.Now,
	}
}

type seedIndex struct {
	byUID    map[string]profile.Profile
	byName   map[string]profile.Profile
	legacyID map[string]legacyplayer.Player
	legacyNm map[string]legacyplayer.Player
}

// SeedProfiles creates a profile for each roster entry, taking initial totals from the
// legacy players table. Unassigned entries get a "roster:{id}" profile when opts.IncludeUnassigned.
func (s *MaintenanceService) SeedProfiles(ctx context.Context, opts SeedOptions) (SeedSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MaintenanceService.SeedProfiles")
	defer span.End()

	entries, err := s.roster.List(ctx)
	if err != nil {
		return SeedSummary{}, fmt.Errorf("list roster: %w", err)
	}
	index, err := s.loadSeedIndex(ctx)
	if err != nil {
		return SeedSummary{}, err
	}

	var created, updated, skipped, linked atomic.Int32
	var firstErr error
	var errOnce sync.Once

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return SeedSummary{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, entry := range entries {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			outcome, didLink, err := s.seedOne(ctx, entry, index, opts)
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			switch outcome {
			case importCreated:
				created.Add(1)
			case importUpdated:
				updated.Add(1)
			default:
				skipped.Add(1)
			}
			if didLink {
				linked.Add(1)
			}
		}); err != nil {
			workers.Done()
			return SeedSummary{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	if firstErr != nil {
		return SeedSummary{}, firstErr
	}

	summary := SeedSummary{
		Created: int(created.Load()),
		Updated: int(updated.Load()),
		Skipped: int(skipped.Load()),
		Linked:  int(linked.Load()),
	}
	s.logger.InfoContext(ctx, "profiles seeded",
		"created", summary.Created,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"linked", summary.Linked,
		"dry_run", opts.DryRun,
	)
	return summary, nil
}

func (s *MaintenanceService) loadSeedIndex(ctx context.Context) (seedIndex, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return seedIndex{}, fmt.Errorf("list profiles: %w", err)
	}
	players, err := s.legacy.List(ctx)
	if err != nil {
		return seedIndex{}, fmt.Errorf("list legacy players: %w", err)
	}

	index := seedIndex{
		byUID:    make(map[string]profile.Profile, len(profiles)),
		byName:   make(map[string]profile.Profile, len(profiles)),
		legacyID: make(map[string]legacyplayer.Player, len(players)),
		legacyNm: make(map[string]legacyplayer.Player, len(players)),
	}
	for _, p := range profiles {
		index.byUID[p.UID] = p
		if key := profile.NormalizeName(p.DisplayName); key != "" {
			if _, ok := index.byName[key]; !ok {
				index.byName[key] = p
			}
		}
	}
	for _, p := range players {
		index.legacyID[p.ID] = p
		if key := profile.NormalizeName(p.DisplayName); key != "" {
			if _, ok := index.legacyNm[key]; !ok {
				index.legacyNm[key] = p
			}
		}
	}
	return index, nil
}

func (s *MaintenanceService) seedOne(ctx context.Context, entry roster.Entry, index seedIndex, opts SeedOptions) (importOutcome, bool, error) {
	name := strings.TrimSpace(entry.DisplayName)
	if name == "" {
		name = entry.ID
	}
	key := profile.NormalizeName(name)

	uid := entry.AssignedUID
	var (
		existing profile.Profile
		found    bool
	)
	if uid != "" {
		existing, found = index.byUID[uid]
	}
	if !found {
		// A name match only counts when it does not belong to a different account.
		existing, found = index.byName[key]
		if found && uid != "" && existing.UID != uid {
			found = false
		}
	}
	if !entry.Assigned() && !found && !opts.IncludeUnassigned {
		return importSkipped, false, nil
	}

	switch {
	case uid != "":
	case found:
		uid = existing.UID
	default:
		uid = "roster:" + entry.ID
	}

	legacy, hasLegacy := index.legacyID[entry.ID]
	if !hasLegacy {
		legacy, hasLegacy = index.legacyNm[key]
	}

	now := s.now().UTC()
	var p profile.Profile
	if !found || opts.Overwrite {
		p = profile.Profile{
			UID:            uid,
			DisplayName:    name,
			Role:           entry.Role,
			SubsStatus:     profile.SubsDue,
			LinkedRosterID: entry.ID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if hasLegacy {
			p.TotalWins = legacy.Wins
			p.TotalLosses = legacy.Losses
			p.LinkedPlayerID = legacy.ID
			if legacy.SubsStatus == profile.SubsPaid {
				p.SubsStatus = profile.SubsPaid
			}
		}
	} else {
		p = existing
		p.LinkedRosterID = entry.ID
		p.UpdatedAt = now
		if hasLegacy {
			p.LinkedPlayerID = legacy.ID
		}
	}

	outcome := importCreated
	if found {
		outcome = importUpdated
	}
	if opts.DryRun {
		return outcome, false, nil
	}

	if err := s.profiles.Upsert(ctx, p); err != nil {
		return importSkipped, false, fmt.Errorf("upsert profile for roster %s: %w", entry.ID, err)
	}

	if !opts.LinkUp {
		return outcome, false, nil
	}
	if err := s.roster.SetLinkedProfile(ctx, entry.ID, uid); err != nil {
		return outcome, false, fmt.Errorf("link roster %s: %w", entry.ID, err)
	}
	if hasLegacy {
		if err := s.legacy.LinkProfile(ctx, legacy.ID, uid); err != nil {
			s.logger.WarnContext(ctx, "link legacy player failed", "legacy_player_id", legacy.ID, "uid", uid, "error", err)
		}
	}
	return outcome, true, nil
}

// BackfillPlayerIDs recomputes each match's participant ids from its stat rows and returns
// how many matches changed.
func (s *MaintenanceService) BackfillPlayerIDs(ctx context.Context, dryRun bool) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MaintenanceService.BackfillPlayerIDs")
	defer span.End()

	items, err := s.matches.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list matches: %w", err)
	}

	changed := 0
	now := s.now().UTC()
	for _, m := range items {
		ids := match.Participants(m.PlayerStats)
		if slices.Equal(ids, m.PlayerIDs) {
			continue
		}
		changed++
		if dryRun {
			continue
		}
		if err := s.matches.UpdatePlayerIDs(ctx, m.ID, ids, now); err != nil {
			return changed, fmt.Errorf("update player ids for %s: %w", m.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "player ids backfilled", "changed", changed, "dry_run", dryRun)
	return changed, nil
}

// RecomputeTotals rewrites profile totals from the sum of all match rows and reports every
// profile that had drifted.
func (s *MaintenanceService) RecomputeTotals(ctx context.Context, dryRun bool) ([]TotalsDrift, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MaintenanceService.RecomputeTotals")
	defer span.End()

	items, err := s.matches.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	computed := match.SumPlayerTotals(items)
	drift := make([]TotalsDrift, 0)
	now := s.now().UTC()
	for _, p := range profiles {
		stored := match.WinLoss{Wins: p.TotalWins, Losses: p.TotalLosses}
		want := computed[p.UID]
		if stored == want {
			continue
		}
		drift = append(drift, TotalsDrift{UID: p.UID, Stored: stored, Computed: want})
		if dryRun {
			continue
		}
		if err := s.profiles.SetTotals(ctx, p.UID, want.Wins, want.Losses, now); err != nil {
			return drift, fmt.Errorf("set totals for %s: %w", p.UID, err)
		}
	}

	s.logger.InfoContext(ctx, "profile totals recomputed", "drifted", len(drift), "dry_run", dryRun)
	return drift, nil
}
