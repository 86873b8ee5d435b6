package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
)

type MatchRepository struct {
	store *Store
}

func NewMatchRepository(store *Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) GetByID(_ context.Context, id string) (match.Match, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.matches[id]
	if !ok {
		return match.Match{}, false, nil
	}
	return cloneMatch(m), true, nil
}

func (r *MatchRepository) List(_ context.Context) ([]match.Match, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]match.Match, 0, len(r.store.matches))
	for _, m := range r.store.matches {
		out = append(out, cloneMatch(m))
	}
	return out, nil
}

func (r *MatchRepository) Create(_ context.Context, m match.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.matches[m.ID]; exists {
		return fmt.Errorf("%w: %s", match.ErrAlreadyExists, m.ID)
	}
	r.store.matches[m.ID] = cloneMatch(m)
	r.store.bump(matchKey(m.ID))
	return nil
}

func (r *MatchRepository) Upsert(_ context.Context, m match.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if existing, ok := r.store.matches[m.ID]; ok {
		m.CreatedAt = existing.CreatedAt
	}
	r.store.matches[m.ID] = cloneMatch(m)
	r.store.bump(matchKey(m.ID))
	return nil
}

func (r *MatchRepository) UpdateResult(_ context.Context, id string, result match.Result, updatedAt time.Time) error {
	return r.update(id, func(m *match.Match) {
		m.Result = result
		m.UpdatedAt = updatedAt
	})
}

func (r *MatchRepository) UpdatePlayerIDs(_ context.Context, id string, playerIDs []string, updatedAt time.Time) error {
	return r.update(id, func(m *match.Match) {
		m.PlayerIDs = append([]string(nil), playerIDs...)
		m.UpdatedAt = updatedAt
	})
}

func (r *MatchRepository) Delete(_ context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.matches[id]; !ok {
		return false, nil
	}
	delete(r.store.matches, id)
	r.store.bump(matchKey(id))
	return true, nil
}

func (r *MatchRepository) CountDecided(_ context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, m := range r.store.matches {
		if m.Result.Decided() {
			count++
		}
	}
	return count, nil
}

func (r *MatchRepository) update(id string, fn func(m *match.Match)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m, ok := r.store.matches[id]
	if !ok {
		return fmt.Errorf("match %s not found", id)
	}
	fn(&m)
	r.store.matches[id] = m
	r.store.bump(matchKey(id))
	return nil
}
