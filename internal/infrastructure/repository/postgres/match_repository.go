package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
	qb "github.com/jamwil123/pool-tracker/internal/platform/querybuilder"
)

const upsertMatchSuffix = `ON CONFLICT (id) DO UPDATE SET
    opponent = EXCLUDED.opponent,
    location = EXCLUDED.location,
    home_or_away = EXCLUDED.home_or_away,
    match_date = EXCLUDED.match_date,
    notes = EXCLUDED.notes,
    result = EXCLUDED.result,
    player_stats = EXCLUDED.player_stats,
    player_ids = EXCLUDED.player_ids,
    players = EXCLUDED.players,
    updated_at = EXCLUDED.updated_at`

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (match.Match, bool, error) {
	return getMatch(ctx, r.db, id, false)
}

func (r *MatchRepository) List(ctx context.Context) ([]match.Match, error) {
	query, args, err := matchBaseSelectBuilder().
		OrderBy("match_date NULLS LAST", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		m, err := matchFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MatchRepository) Create(ctx context.Context, m match.Match) error {
	row, err := matchToRow(m)
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel("matches", row, "ON CONFLICT (id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected insert match: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", match.ErrAlreadyExists, m.ID)
	}
	return nil
}

func (r *MatchRepository) Upsert(ctx context.Context, m match.Match) error {
	row, err := matchToRow(m)
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel("matches", row, upsertMatchSuffix)
	if err != nil {
		return fmt.Errorf("build upsert match query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}
	return nil
}

func (r *MatchRepository) UpdateResult(ctx context.Context, id string, result match.Result, updatedAt time.Time) error {
	query, args, err := qb.Update("matches").
		Set("result", string(result)).
		Set("updated_at", updatedAt).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match result query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match result: %w", err)
	}
	return expectAffected(res, "update match result")
}

func (r *MatchRepository) UpdatePlayerIDs(ctx context.Context, id string, playerIDs []string, updatedAt time.Time) error {
	query, args, err := qb.Update("matches").
		Set("player_ids", pq.StringArray(nonNilStrings(playerIDs))).
		Set("updated_at", updatedAt).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match player ids query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match player ids: %w", err)
	}
	return expectAffected(res, "update match player ids")
}

func (r *MatchRepository) Delete(ctx context.Context, id string) (bool, error) {
	query, args, err := qb.DeleteFrom("matches").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete match query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete match: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected delete match: %w", err)
	}
	return affected > 0, nil
}

func (r *MatchRepository) CountDecided(ctx context.Context) (int, error) {
	query, args, err := qb.Select("COUNT(*)").
		From("matches").
		Where(qb.In("result", []any{string(match.ResultWin), string(match.ResultLoss)})).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count decided matches query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count decided matches: %w", err)
	}
	return count, nil
}

func getMatch(ctx context.Context, q sqlx.QueryerContext, id string, forUpdate bool) (match.Match, bool, error) {
	builder := matchBaseSelectBuilder().Where(qb.Eq("id", id))
	if forUpdate {
		builder = builder.ForUpdate()
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}

	m, err := matchFromRow(row)
	if err != nil {
		return match.Match{}, false, err
	}
	return m, true, nil
}
