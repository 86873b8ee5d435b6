package memory

import (
	"context"
	"fmt"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
)

// StatsStore runs stats transactions optimistically: reads record document versions and
// writes are staged, then applied under the write lock only if no read went stale.
type StatsStore struct {
	store *Store
}

func NewStatsStore(store *Store) *StatsStore {
	return &StatsStore{store: store}
}

func (s *StatsStore) WithinStatsTx(ctx context.Context, fn func(ctx context.Context, tx match.StatsTx) error) error {
	tx := &statsTx{
		store:    s.store,
		reads:    make(map[string]uint64),
		matches:  make(map[string]match.StatsUpdate),
		profiles: make(map[string]match.WinLoss),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

type statsTx struct {
	store    *Store
	reads    map[string]uint64
	matches  map[string]match.StatsUpdate
	profiles map[string]match.WinLoss
}

func (t *statsTx) GetForUpdate(_ context.Context, id string) (match.Match, bool, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	key := matchKey(id)
	if _, seen := t.reads[key]; !seen {
		t.reads[key] = t.store.versions[key]
	}

	m, ok := t.store.matches[id]
	if !ok {
		return match.Match{}, false, nil
	}
	m = cloneMatch(m)
	if staged, ok := t.matches[id]; ok {
		applyStatsUpdate(&m, staged)
	}
	return m, true, nil
}

func (t *statsTx) IncrementProfileTotals(_ context.Context, playerID string, wins, losses int) (bool, error) {
	t.store.mu.RLock()
	_, ok := t.store.profiles[playerID]
	t.store.mu.RUnlock()
	if !ok {
		return false, nil
	}

	current := t.profiles[playerID]
	current.Wins += wins
	current.Losses += losses
	t.profiles[playerID] = current
	return true, nil
}

func (t *statsTx) SaveStats(_ context.Context, update match.StatsUpdate) error {
	update.Rows = append([]match.PlayerStatRow(nil), update.Rows...)
	t.matches[update.MatchID] = update
	return nil
}

func (t *statsTx) commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for key, version := range t.reads {
		if t.store.versions[key] != version {
			return fmt.Errorf("%w: %s changed during transaction", match.ErrTxConflict, key)
		}
	}

	for uid := range t.profiles {
		if _, ok := t.store.profiles[uid]; !ok {
			return fmt.Errorf("%w: profile %s removed during transaction", match.ErrTxConflict, uid)
		}
	}

	for id, update := range t.matches {
		m, ok := t.store.matches[id]
		if !ok {
			return fmt.Errorf("%w: match %s removed during transaction", match.ErrTxConflict, id)
		}
		applyStatsUpdate(&m, update)
		t.store.matches[id] = m
		t.store.bump(matchKey(id))
	}
	for uid, delta := range t.profiles {
		p := t.store.profiles[uid]
		p.TotalWins += delta.Wins
		p.TotalLosses += delta.Losses
		t.store.profiles[uid] = p
		t.store.bump(profileKey(uid))
	}
	return nil
}

func applyStatsUpdate(m *match.Match, update match.StatsUpdate) {
	m.PlayerStats = append([]match.PlayerStatRow(nil), update.Rows...)
	m.PlayerIDs = append([]string(nil), update.PlayerIDs...)
	m.Players = append([]string(nil), update.Players...)
	m.UpdatedAt = update.UpdatedAt
}
