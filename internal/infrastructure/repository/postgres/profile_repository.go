package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jamwil123/pool-tracker/internal/domain/profile"
	qb "github.com/jamwil123/pool-tracker/internal/platform/querybuilder"
)

const upsertProfileSuffix = `ON CONFLICT (uid) DO UPDATE SET
    display_name = EXCLUDED.display_name,
    role = EXCLUDED.role,
    total_wins = EXCLUDED.total_wins,
    total_losses = EXCLUDED.total_losses,
    subs_status = EXCLUDED.subs_status,
    linked_roster_id = EXCLUDED.linked_roster_id,
    linked_player_id = EXCLUDED.linked_player_id,
    updated_at = EXCLUDED.updated_at`

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByUID(ctx context.Context, uid string) (profile.Profile, bool, error) {
	query, args, err := qb.Select("*").From("profiles").
		Where(qb.Eq("uid", uid)).
		ToSQL()
	if err != nil {
		return profile.Profile{}, false, fmt.Errorf("build get profile query: %w", err)
	}

	var row profileTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return profile.Profile{}, false, nil
		}
		return profile.Profile{}, false, fmt.Errorf("get profile: %w", err)
	}
	return profileFromRow(row), true, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]profile.Profile, error) {
	query, args, err := qb.Select("*").From("profiles").
		OrderBy("display_name", "uid").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list profiles query: %w", err)
	}

	var rows []profileTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	out := make([]profile.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, profileFromRow(row))
	}
	return out, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, p profile.Profile) error {
	return upsertProfile(ctx, r.db, p)
}

func (r *ProfileRepository) SetTotals(ctx context.Context, uid string, wins, losses int, updatedAt time.Time) error {
	query, args, err := qb.Update("profiles").
		Set("total_wins", wins).
		Set("total_losses", losses).
		Set("updated_at", updatedAt).
		Where(qb.Eq("uid", uid)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set profile totals query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set profile totals: %w", err)
	}
	return expectAffected(res, "set profile totals")
}

func (r *ProfileRepository) SetSubsStatus(ctx context.Context, uid string, status profile.SubsStatus, updatedAt time.Time) (bool, error) {
	query, args, err := qb.Update("profiles").
		Set("subs_status", string(status)).
		Set("updated_at", updatedAt).
		Where(qb.Eq("uid", uid)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build set subs status query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("set subs status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected set subs status: %w", err)
	}
	return affected > 0, nil
}

// upsertProfile keeps the stored created_at when the profile already exists.
func upsertProfile(ctx context.Context, exec sqlx.ExecerContext, p profile.Profile) error {
	query, args, err := qb.InsertModel("profiles", profileToRow(p), upsertProfileSuffix)
	if err != nil {
		return fmt.Errorf("build upsert profile query: %w", err)
	}
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
