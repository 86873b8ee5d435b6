package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jamwil123/pool-tracker/internal/domain/roster"
)

type RosterRepository struct {
	store *Store
}

func NewRosterRepository(store *Store) *RosterRepository {
	return &RosterRepository{store: store}
}

func (r *RosterRepository) GetByID(_ context.Context, id string) (roster.Entry, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.roster[id]
	return e, ok, nil
}

func (r *RosterRepository) List(_ context.Context) ([]roster.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]roster.Entry, 0, len(r.store.roster))
	for _, e := range r.store.roster {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DisplayName < out[j].DisplayName
	})
	return out, nil
}

func (r *RosterRepository) Create(_ context.Context, e roster.Entry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.roster[e.ID]; exists {
		return fmt.Errorf("roster entry %s already exists", e.ID)
	}
	r.store.roster[e.ID] = e
	r.store.bump(rosterKey(e.ID))
	return nil
}

func (r *RosterRepository) SaveLink(_ context.Context, id string, link roster.Link) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return saveLinkLocked(r.store, id, link)
}

func (r *RosterRepository) SetLinkedProfile(_ context.Context, id, uid string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.roster[id]
	if !ok {
		return fmt.Errorf("roster entry %s not found", id)
	}
	e.LinkedProfileUID = uid
	r.store.roster[id] = e
	r.store.bump(rosterKey(id))
	return nil
}

// saveLinkLocked requires mu held for writing.
func saveLinkLocked(s *Store, id string, link roster.Link) error {
	e, ok := s.roster[id]
	if !ok {
		return fmt.Errorf("roster entry %s not found", id)
	}
	at := link.At
	e.AssignedUID = link.UID
	e.AssignedEmail = link.Email
	e.AssignedAt = &at
	e.LinkedProfileUID = link.UID
	s.roster[id] = e
	s.bump(rosterKey(id))
	return nil
}
