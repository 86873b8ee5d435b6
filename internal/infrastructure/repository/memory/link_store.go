package memory

import (
	"context"
	"fmt"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
	"github.com/jamwil123/pool-tracker/internal/domain/profile"
	"github.com/jamwil123/pool-tracker/internal/domain/roster"
)

// LinkStore claims roster entries with the same optimistic scheme as StatsStore.
type LinkStore struct {
	store *Store
}

func NewLinkStore(store *Store) *LinkStore {
	return &LinkStore{store: store}
}

func (s *LinkStore) WithinLinkTx(ctx context.Context, fn func(ctx context.Context, tx roster.LinkTx) error) error {
	tx := &linkTx{
		store:    s.store,
		reads:    make(map[string]uint64),
		links:    make(map[string]roster.Link),
		profiles: make(map[string]profile.Profile),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

type linkTx struct {
	store    *Store
	reads    map[string]uint64
	links    map[string]roster.Link
	profiles map[string]profile.Profile
}

func (t *linkTx) GetForUpdate(_ context.Context, id string) (roster.Entry, bool, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	key := rosterKey(id)
	if _, seen := t.reads[key]; !seen {
		t.reads[key] = t.store.versions[key]
	}
	e, ok := t.store.roster[id]
	return e, ok, nil
}

func (t *linkTx) SaveLink(_ context.Context, id string, link roster.Link) error {
	t.links[id] = link
	return nil
}

func (t *linkTx) UpsertProfile(_ context.Context, p profile.Profile) error {
	t.profiles[p.UID] = p
	return nil
}

func (t *linkTx) commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for key, version := range t.reads {
		if t.store.versions[key] != version {
			return fmt.Errorf("%w: %s changed during transaction", match.ErrTxConflict, key)
		}
	}
	for id := range t.links {
		if _, ok := t.store.roster[id]; !ok {
			return fmt.Errorf("roster entry %s not found", id)
		}
	}

	for id, link := range t.links {
		if err := saveLinkLocked(t.store, id, link); err != nil {
			return err
		}
	}
	for _, p := range t.profiles {
		upsertProfileLocked(t.store, p)
	}
	return nil
}
