package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jamwil123/pool-tracker/internal/domain/roster"
	qb "github.com/jamwil123/pool-tracker/internal/platform/querybuilder"
)

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) GetByID(ctx context.Context, id string) (roster.Entry, bool, error) {
	return getRosterEntry(ctx, r.db, id, false)
}

func (r *RosterRepository) List(ctx context.Context) ([]roster.Entry, error) {
	query, args, err := qb.Select("*").From("roster_entries").
		OrderBy("display_name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list roster query: %w", err)
	}

	var rows []rosterTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}

	out := make([]roster.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, rosterFromRow(row))
	}
	return out, nil
}

func (r *RosterRepository) Create(ctx context.Context, e roster.Entry) error {
	query, args, err := qb.InsertInto("roster_entries").
		Columns("id", "display_name", "role", "created_at").
		Values(e.ID, e.DisplayName, string(e.Role), e.CreatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert roster entry query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("roster entry %s already exists: %w", e.ID, err)
		}
		return fmt.Errorf("insert roster entry: %w", err)
	}
	return nil
}

func (r *RosterRepository) SaveLink(ctx context.Context, id string, link roster.Link) error {
	return saveRosterLink(ctx, r.db, id, link)
}

func (r *RosterRepository) SetLinkedProfile(ctx context.Context, id, uid string) error {
	query, args, err := qb.Update("roster_entries").
		Set("linked_profile_uid", uid).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set linked profile query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set linked profile: %w", err)
	}
	return expectAffected(res, "set linked profile")
}

func getRosterEntry(ctx context.Context, q sqlx.QueryerContext, id string, forUpdate bool) (roster.Entry, bool, error) {
	builder := qb.Select("*").From("roster_entries").Where(qb.Eq("id", id))
	if forUpdate {
		builder = builder.ForUpdate()
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return roster.Entry{}, false, fmt.Errorf("build get roster entry query: %w", err)
	}

	var row rosterTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return roster.Entry{}, false, nil
		}
		return roster.Entry{}, false, fmt.Errorf("get roster entry: %w", err)
	}
	return rosterFromRow(row), true, nil
}

func saveRosterLink(ctx context.Context, exec sqlx.ExecerContext, id string, link roster.Link) error {
	query, args, err := qb.Update("roster_entries").
		Set("assigned_uid", link.UID).
		Set("assigned_email", link.Email).
		Set("assigned_at", link.At).
		Set("linked_profile_uid", link.UID).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build save roster link query: %w", err)
	}

	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save roster link: %w", err)
	}
	return expectAffected(res, "save roster link")
}
