package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
	qb "github.com/jamwil123/pool-tracker/internal/platform/querybuilder"
)

// StatsStore runs stats reconciliation in a database transaction. The match row is locked
// with SELECT ... FOR UPDATE and profile totals are incremented in place, so concurrent
// edits of one match serialize and deadlocks surface as match.ErrTxConflict.
type StatsStore struct {
	db *sqlx.DB
}

func NewStatsStore(db *sqlx.DB) *StatsStore {
	return &StatsStore{db: db}
}

func (s *StatsStore) WithinStatsTx(ctx context.Context, fn func(ctx context.Context, tx match.StatsTx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stats tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &statsTx{tx: tx}); err != nil {
		return wrapTxErr(err)
	}
	if err := tx.Commit(); err != nil {
		return wrapTxErr(fmt.Errorf("commit stats tx: %w", err))
	}
	return nil
}

type statsTx struct {
	tx *sqlx.Tx
}

func (t *statsTx) GetForUpdate(ctx context.Context, id string) (match.Match, bool, error) {
	return getMatch(ctx, t.tx, id, true)
}

func (t *statsTx) IncrementProfileTotals(ctx context.Context, playerID string, wins, losses int) (bool, error) {
	query, args, err := qb.Update("profiles").
		SetExpr("total_wins", "total_wins + ?", wins).
		SetExpr("total_losses", "total_losses + ?", losses).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("uid", playerID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build increment profile totals query: %w", err)
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("increment profile totals: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected increment profile totals: %w", err)
	}
	return affected > 0, nil
}

func (t *statsTx) SaveStats(ctx context.Context, update match.StatsUpdate) error {
	stats, err := encodeStatRows(update.Rows)
	if err != nil {
		return fmt.Errorf("encode player stats for match %s: %w", update.MatchID, err)
	}

	query, args, err := qb.Update("matches").
		Set("player_stats", stats).
		Set("player_ids", pq.StringArray(nonNilStrings(update.PlayerIDs))).
		Set("players", pq.StringArray(nonNilStrings(update.Players))).
		Set("updated_at", update.UpdatedAt).
		Where(qb.Eq("id", update.MatchID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build save match stats query: %w", err)
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save match stats: %w", err)
	}
	return expectAffected(res, "save match stats")
}
