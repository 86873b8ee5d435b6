package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jamwil123/pool-tracker/internal/domain/profile"
)

type ProfileRepository struct {
	store *Store
}

func NewProfileRepository(store *Store) *ProfileRepository {
	return &ProfileRepository{store: store}
}

func (r *ProfileRepository) GetByUID(_ context.Context, uid string) (profile.Profile, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.profiles[uid]
	return p, ok, nil
}

func (r *ProfileRepository) List(_ context.Context) ([]profile.Profile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]profile.Profile, 0, len(r.store.profiles))
	for _, p := range r.store.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DisplayName < out[j].DisplayName
	})
	return out, nil
}

func (r *ProfileRepository) Upsert(_ context.Context, p profile.Profile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	upsertProfileLocked(r.store, p)
	return nil
}

func (r *ProfileRepository) SetTotals(_ context.Context, uid string, wins, losses int, updatedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.profiles[uid]
	if !ok {
		return fmt.Errorf("profile %s not found", uid)
	}
	p.TotalWins = wins
	p.TotalLosses = losses
	p.UpdatedAt = updatedAt
	r.store.profiles[uid] = p
	r.store.bump(profileKey(uid))
	return nil
}

func (r *ProfileRepository) SetSubsStatus(_ context.Context, uid string, status profile.SubsStatus, updatedAt time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.profiles[uid]
	if !ok {
		return false, nil
	}
	p.SubsStatus = status
	p.UpdatedAt = updatedAt
	r.store.profiles[uid] = p
	r.store.bump(profileKey(uid))
	return true, nil
}

// upsertProfileLocked keeps the original creation time. mu must be held for writing.
func upsertProfileLocked(s *Store, p profile.Profile) {
	if existing, ok := s.profiles[p.UID]; ok && !existing.CreatedAt.IsZero() {
		p.CreatedAt = existing.CreatedAt
	}
	s.profiles[p.UID] = p
	s.bump(profileKey(p.UID))
}
