package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jamwil123/pool-tracker/internal/domain/legacyplayer"
)

type LegacyPlayerRepository struct {
	store *Store
}

func NewLegacyPlayerRepository(store *Store) *LegacyPlayerRepository {
	return &LegacyPlayerRepository{store: store}
}

func (r *LegacyPlayerRepository) List(_ context.Context) ([]legacyplayer.Player, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]legacyplayer.Player, 0, len(r.store.legacy))
	for _, p := range r.store.legacy {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *LegacyPlayerRepository) LinkProfile(_ context.Context, id, uid string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.legacy[id]
	if !ok {
		return fmt.Errorf("legacy player %s not found", id)
	}
	p.LinkedProfileUID = uid
	r.store.legacy[id] = p
	return nil
}
