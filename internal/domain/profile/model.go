package profile

import (
	"strings"
	"time"
)

type Role string

const (
	RoleCaptain     Role = "captain"
	RoleViceCaptain Role = "viceCaptain"
	RolePlayer      Role = "player"
)

// ParseRole accepts the stored spelling case-insensitively and defaults to player.
func ParseRole(v string) Role {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "captain":
		return RoleCaptain
	case "vicecaptain", "vice_captain", "vice-captain":
		return RoleViceCaptain
	default:
		return RolePlayer
	}
}

// IsManager reports whether the role may edit fixtures, results and player stats.
func (r Role) IsManager() bool {
	return r == RoleCaptain || r == RoleViceCaptain
}

type SubsStatus string

const (
	SubsPaid SubsStatus = "paid"
	SubsDue  SubsStatus = "due"
)

func (s SubsStatus) Valid() bool {
	return s == SubsPaid || s == SubsDue
}

// Profile holds a player's season-long aggregates keyed by account uid.
type Profile struct {
	UID            string
	DisplayName    string
	Role           Role
	TotalWins      int
	TotalLosses    int
	SubsStatus     SubsStatus
	LinkedRosterID string
	LinkedPlayerID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NormalizeName folds a display name for matching across collections.
func NormalizeName(v string) string {
	return strings.Join(strings.Fields(strings.ToLower(v)), " ")
}
