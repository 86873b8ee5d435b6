package postgres

import (
	"database/sql"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/lib/pq"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
	qb "github.com/jamwil123/pool-tracker/internal/platform/querybuilder"
)

var matchColumns = []string{
	"id",
	"opponent",
	"location",
	"home_or_away",
	"match_date",
	"notes",
	"result",
	"player_stats",
	"player_ids",
	"players",
	"created_at",
	"updated_at",
}

type matchTableModel struct {
	ID          string         `db:"id"`
	Opponent    string         `db:"opponent"`
	Location    string         `db:"location"`
	HomeOrAway  string         `db:"home_or_away"`
	MatchDate   *time.Time     `db:"match_date"`
	Notes       sql.NullString `db:"notes"`
	Result      string         `db:"result"`
	PlayerStats string         `db:"player_stats"`
	PlayerIDs   pq.StringArray `db:"player_ids"`
	Players     pq.StringArray `db:"players"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func matchBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select(matchColumns...).From("matches")
}

func matchFromRow(row matchTableModel) (match.Match, error) {
	rows, err := decodeStatRows(row.PlayerStats)
	if err != nil {
		return match.Match{}, fmt.Errorf("decode player stats for match %s: %w", row.ID, err)
	}

	return match.Match{
		ID:          row.ID,
		Opponent:    row.Opponent,
		Location:    row.Location,
		HomeOrAway:  match.ParseVenue(row.HomeOrAway),
		MatchDate:   row.MatchDate,
		Notes:       stringPtr(row.Notes),
		Result:      match.ParseResult(row.Result),
		PlayerStats: rows,
		PlayerIDs:   []string(row.PlayerIDs),
		Players:     []string(row.Players),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func matchToRow(m match.Match) (matchTableModel, error) {
	stats, err := encodeStatRows(m.PlayerStats)
	if err != nil {
		return matchTableModel{}, fmt.Errorf("encode player stats for match %s: %w", m.ID, err)
	}

	return matchTableModel{
		ID:          m.ID,
		Opponent:    m.Opponent,
		Location:    m.Location,
		HomeOrAway:  string(m.HomeOrAway),
		MatchDate:   m.MatchDate,
		Notes:       nullString(m.Notes),
		Result:      string(m.Result),
		PlayerStats: stats,
		PlayerIDs:   pq.StringArray(nonNilStrings(m.PlayerIDs)),
		Players:     pq.StringArray(nonNilStrings(m.Players)),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

func decodeStatRows(raw string) ([]match.PlayerStatRow, error) {
	if raw == "" || raw == "null" {
		return []match.PlayerStatRow{}, nil
	}
	var rows []match.PlayerStatRow
	if err := sonic.UnmarshalString(raw, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []match.PlayerStatRow{}
	}
	return rows, nil
}

func encodeStatRows(rows []match.PlayerStatRow) (string, error) {
	if rows == nil {
		rows = []match.PlayerStatRow{}
	}
	return sonic.MarshalString(rows)
}

func nonNilStrings(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
