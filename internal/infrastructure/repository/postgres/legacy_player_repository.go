package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jamwil123/pool-tracker/internal/domain/legacyplayer"
	qb "github.com/jamwil123/pool-tracker/internal/platform/querybuilder"
)

type LegacyPlayerRepository struct {
	db *sqlx.DB
}

func NewLegacyPlayerRepository(db *sqlx.DB) *LegacyPlayerRepository {
	return &LegacyPlayerRepository{db: db}
}

func (r *LegacyPlayerRepository) List(ctx context.Context) ([]legacyplayer.Player, error) {
	query, args, err := qb.Select("*").From("legacy_players").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list legacy players query: %w", err)
	}

	var rows []legacyPlayerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list legacy players: %w", err)
	}

	out := make([]legacyplayer.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, legacyPlayerFromRow(row))
	}
	return out, nil
}

func (r *LegacyPlayerRepository) LinkProfile(ctx context.Context, id, uid string) error {
	query, args, err := qb.Update("legacy_players").
		Set("linked_profile_uid", uid).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build link legacy player query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("link legacy player: %w", err)
	}
	return expectAffected(res, "link legacy player")
}
