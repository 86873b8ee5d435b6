package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jamwil123/pool-tracker/internal/domain/profile"
	"github.com/jamwil123/pool-tracker/internal/domain/roster"
)

// LinkStore claims roster entries inside a transaction that locks the entry row.
type LinkStore struct {
	db *sqlx.DB
}

func NewLinkStore(db *sqlx.DB) *LinkStore {
	return &LinkStore{db: db}
}

func (s *LinkStore) WithinLinkTx(ctx context.Context, fn func(ctx context.Context, tx roster.LinkTx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin link tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &linkTx{tx: tx}); err != nil {
		return wrapTxErr(err)
	}
	if err := tx.Commit(); err != nil {
		return wrapTxErr(fmt.Errorf("commit link tx: %w", err))
	}
	return nil
}

type linkTx struct {
	tx *sqlx.Tx
}

func (t *linkTx) GetForUpdate(ctx context.Context, id string) (roster.Entry, bool, error) {
	return getRosterEntry(ctx, t.tx, id, true)
}

func (t *linkTx) SaveLink(ctx context.Context, id string, link roster.Link) error {
	return saveRosterLink(ctx, t.tx, id, link)
}

func (t *linkTx) UpsertProfile(ctx context.Context, p profile.Profile) error {
	return upsertProfile(ctx, t.tx, p)
}
