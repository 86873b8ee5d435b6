package postgres

import (
	"time"

	"github.com/jamwil123/pool-tracker/internal/domain/legacyplayer"
	"github.com/jamwil123/pool-tracker/internal/domain/profile"
	"github.com/jamwil123/pool-tracker/internal/domain/roster"
)

type profileTableModel struct {
	UID            string    `db:"uid"`
	DisplayName    string    `db:"display_name"`
	Role           string    `db:"role"`
	TotalWins      int       `db:"total_wins"`
	TotalLosses    int       `db:"total_losses"`
	SubsStatus     string    `db:"subs_status"`
	LinkedRosterID string    `db:"linked_roster_id"`
	LinkedPlayerID string    `db:"linked_player_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func profileFromRow(row profileTableModel) profile.Profile {
	return profile.Profile{
		UID:            row.UID,
		DisplayName:    row.DisplayName,
		Role:           profile.ParseRole(row.Role),
		TotalWins:      row.TotalWins,
		TotalLosses:    row.TotalLosses,
		SubsStatus:     profile.SubsStatus(row.SubsStatus),
		LinkedRosterID: row.LinkedRosterID,
		LinkedPlayerID: row.LinkedPlayerID,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

func profileToRow(p profile.Profile) profileTableModel {
	subs := p.SubsStatus
	if !subs.Valid() {
		subs = profile.SubsDue
	}
	return profileTableModel{
		UID:            p.UID,
		DisplayName:    p.DisplayName,
		Role:           string(p.Role),
		TotalWins:      p.TotalWins,
		TotalLosses:    p.TotalLosses,
		SubsStatus:     string(subs),
		LinkedRosterID: p.LinkedRosterID,
		LinkedPlayerID: p.LinkedPlayerID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type rosterTableModel struct {
	ID               string     `db:"id"`
	DisplayName      string     `db:"display_name"`
	Role             string     `db:"role"`
	AssignedUID      string     `db:"assigned_uid"`
	AssignedEmail    string     `db:"assigned_email"`
	AssignedAt       *time.Time `db:"assigned_at"`
	LinkedProfileUID string     `db:"linked_profile_uid"`
	CreatedAt        time.Time  `db:"created_at"`
}

func rosterFromRow(row rosterTableModel) roster.Entry {
	return roster.Entry{
		ID:               row.ID,
		DisplayName:      row.DisplayName,
		Role:             profile.ParseRole(row.Role),
		AssignedUID:      row.AssignedUID,
		AssignedEmail:    row.AssignedEmail,
		AssignedAt:       row.AssignedAt,
		LinkedProfileUID: row.LinkedProfileUID,
		CreatedAt:        row.CreatedAt,
	}
}

type legacyPlayerTableModel struct {
	ID               string `db:"id"`
	DisplayName      string `db:"display_name"`
	Wins             int    `db:"wins"`
	Losses           int    `db:"losses"`
	SubsStatus       string `db:"subs_status"`
	LinkedProfileUID string `db:"linked_profile_uid"`
}

func legacyPlayerFromRow(row legacyPlayerTableModel) legacyplayer.Player {
	return legacyplayer.Player{
		ID:               row.ID,
		DisplayName:      row.DisplayName,
		Wins:             row.Wins,
		Losses:           row.Losses,
		SubsStatus:       profile.SubsStatus(row.SubsStatus),
		LinkedProfileUID: row.LinkedProfileUID,
	}
}
