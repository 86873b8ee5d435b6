package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jamwil123/pool-tracker/internal/infrastructure/repository/memory"
	qb "github.com/jamwil123/pool-tracker/internal/platform/querybuilder"
)

// BootstrapSeed loads the demo season into an empty database. It does nothing once any
// roster entry exists.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM roster_entries`); err != nil {
		return fmt.Errorf("count roster entries for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	seed := memory.DefaultSeed()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, e := range seed.Roster {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO roster_entries (id, display_name, role, assigned_uid, assigned_at, linked_profile_uid, created_at)
VALUES (:id, :display_name, :role, :assigned_uid, :assigned_at, :linked_profile_uid, :created_at)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":                 e.ID,
			"display_name":       e.DisplayName,
			"role":               string(e.Role),
			"assigned_uid":       e.AssignedUID,
			"assigned_at":        e.AssignedAt,
			"linked_profile_uid": e.LinkedProfileUID,
			"created_at":         e.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("bind seed roster entry %s query: %w", e.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed roster entry %s: %w", e.ID, err)
		}
	}

	for _, p := range seed.LegacyPlayers {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO legacy_players (id, display_name, wins, losses, subs_status)
VALUES (:id, :display_name, :wins, :losses, :subs_status)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":           p.ID,
			"display_name": p.DisplayName,
			"wins":         p.Wins,
			"losses":       p.Losses,
			"subs_status":  string(p.SubsStatus),
		})
		if err != nil {
			return fmt.Errorf("bind seed legacy player %s query: %w", p.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed legacy player %s: %w", p.ID, err)
		}
	}

	for _, p := range seed.Profiles {
		if err := upsertProfile(ctx, tx, p); err != nil {
			return fmt.Errorf("seed profile %s: %w", p.UID, err)
		}
	}

	for _, m := range seed.Matches {
		row, err := matchToRow(m)
		if err != nil {
			return err
		}
		sqlQuery, args, err := qb.InsertModel("matches", row, "ON CONFLICT (id) DO NOTHING")
		if err != nil {
			return fmt.Errorf("build seed match %s query: %w", m.ID, err)
		}
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed match %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
