package cache

import (
	"context"
	"time"

	"github.com/jamwil123/pool-tracker/internal/domain/legacyplayer"
	"github.com/jamwil123/pool-tracker/internal/domain/match"
	"github.com/jamwil123/pool-tracker/internal/domain/roster"
	basecache "github.com/jamwil123/pool-tracker/internal/platform/cache"
)

const (
	rosterKeyPrefix   = "roster:"
	rosterListKey     = "roster:list"
	legacyListKey     = "legacy:list"
	matchDecidedCount = "match:decided:count"
)

type RosterRepository struct {
	next  roster.Repository
	cache *basecache.Store
}

func NewRosterRepository(next roster.Repository, cache *basecache.Store) *RosterRepository {
	return &RosterRepository{next: next, cache: cache}
}

func (r *RosterRepository) GetByID(ctx context.Context, id string) (roster.Entry, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, rosterKeyPrefix+"id:"+id, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedRosterByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return roster.Entry{}, false, err
	}

	cached, _ := v.(cachedRosterByID)
	return cached.value, cached.exists, nil
}

func (r *RosterRepository) List(ctx context.Context) ([]roster.Entry, error) {
	v, err := r.cache.GetOrLoad(ctx, rosterListKey, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]roster.Entry(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]roster.Entry)
	return append([]roster.Entry(nil), items...), nil
}

func (r *RosterRepository) Create(ctx context.Context, e roster.Entry) error {
	if err := r.next.Create(ctx, e); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, rosterKeyPrefix)
	return nil
}

func (r *RosterRepository) SaveLink(ctx context.Context, id string, link roster.Link) error {
	if err := r.next.SaveLink(ctx, id, link); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, rosterKeyPrefix)
	return nil
}

func (r *RosterRepository) SetLinkedProfile(ctx context.Context, id, uid string) error {
	if err := r.next.SetLinkedProfile(ctx, id, uid); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, rosterKeyPrefix)
	return nil
}

type cachedRosterByID struct {
	value  roster.Entry
	exists bool
}

// LinkStore drops cached roster entries once a claim commits.
type LinkStore struct {
	next  roster.LinkStore
	cache *basecache.Store
}

func NewLinkStore(next roster.LinkStore, cache *basecache.Store) *LinkStore {
	return &LinkStore{next: next, cache: cache}
}

func (s *LinkStore) WithinLinkTx(ctx context.Context, fn func(ctx context.Context, tx roster.LinkTx) error) error {
	if err := s.next.WithinLinkTx(ctx, fn); err != nil {
		return err
	}
	s.cache.DeletePrefix(ctx, rosterKeyPrefix)
	return nil
}

type LegacyPlayerRepository struct {
	next  legacyplayer.Repository
	cache *basecache.Store
}

func NewLegacyPlayerRepository(next legacyplayer.Repository, cache *basecache.Store) *LegacyPlayerRepository {
	return &LegacyPlayerRepository{next: next, cache: cache}
}

func (r *LegacyPlayerRepository) List(ctx context.Context) ([]legacyplayer.Player, error) {
	v, err := r.cache.GetOrLoad(ctx, legacyListKey, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]legacyplayer.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]legacyplayer.Player)
	return append([]legacyplayer.Player(nil), items...), nil
}

func (r *LegacyPlayerRepository) LinkProfile(ctx context.Context, id, uid string) error {
	if err := r.next.LinkProfile(ctx, id, uid); err != nil {
		return err
	}
	r.cache.Delete(ctx, legacyListKey)
	return nil
}

// MatchRepository caches the decided-result count read on every result update. Stats
// writes go through match.StatsStore and never change a result, so reads stay uncached.
type MatchRepository struct {
	match.Repository
	cache *basecache.Store
}

func NewMatchRepository(next match.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{Repository: next, cache: cache}
}

func (r *MatchRepository) CountDecided(ctx context.Context) (int, error) {
	v, err := r.cache.GetOrLoad(ctx, matchDecidedCount, func(ctx context.Context) (any, error) {
		return r.Repository.CountDecided(ctx)
	})
	if err != nil {
		return 0, err
	}

	count, _ := v.(int)
	return count, nil
}

func (r *MatchRepository) Create(ctx context.Context, m match.Match) error {
	return r.invalidate(ctx, r.Repository.Create(ctx, m))
}

func (r *MatchRepository) Upsert(ctx context.Context, m match.Match) error {
	return r.invalidate(ctx, r.Repository.Upsert(ctx, m))
}

func (r *MatchRepository) UpdateResult(ctx context.Context, id string, result match.Result, updatedAt time.Time) error {
	return r.invalidate(ctx, r.Repository.UpdateResult(ctx, id, result, updatedAt))
}

func (r *MatchRepository) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := r.Repository.Delete(ctx, id)
	return deleted, r.invalidate(ctx, err)
}

func (r *MatchRepository) invalidate(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	r.cache.Delete(ctx, matchDecidedCount)
	return nil
}
