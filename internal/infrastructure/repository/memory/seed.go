package memory

import (
	"time"

	"github.com/jamwil123/pool-tracker/internal/domain/legacyplayer"
	"github.com/jamwil123/pool-tracker/internal/domain/match"
	"github.com/jamwil123/pool-tracker/internal/domain/profile"
	"github.com/jamwil123/pool-tracker/internal/domain/roster"
)

const (
	SeedCaptainUID = "uid-captain-demo"
	SeedPlayerUID  = "uid-player-demo"
)

// DefaultSeed is a small season used by the in-memory driver for local runs.
func DefaultSeed() SeedData {
	created := time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC)

	return SeedData{
		Profiles: []profile.Profile{
			{UID: SeedCaptainUID, DisplayName: "Jamie Williams", Role: profile.RoleCaptain, SubsStatus: profile.SubsPaid, LinkedRosterID: "roster-jamie", CreatedAt: created, UpdatedAt: created, TotalWins: 2, TotalLosses: 0},
			{UID: SeedPlayerUID, DisplayName: "Sam Carter", Role: profile.RolePlayer, SubsStatus: profile.SubsDue, LinkedRosterID: "roster-sam", CreatedAt: created, UpdatedAt: created, TotalWins: 1, TotalLosses: 1},
		},
		Roster: []roster.Entry{
			seedRosterEntry("roster-jamie", "Jamie Williams", profile.RoleCaptain, SeedCaptainUID, created),
			seedRosterEntry("roster-sam", "Sam Carter", profile.RolePlayer, SeedPlayerUID, created),
			{ID: "roster-alex", DisplayName: "Alex Morgan", Role: profile.RoleViceCaptain, CreatedAt: created},
			{ID: "roster-chris", DisplayName: "Chris Doyle", Role: profile.RolePlayer, CreatedAt: created},
			{ID: "roster-lee", DisplayName: "Lee Patel", Role: profile.RolePlayer, CreatedAt: created},
		},
		LegacyPlayers: []legacyplayer.Player{
			{ID: "legacy-jamie", DisplayName: "Jamie Williams", Wins: 2, SubsStatus: profile.SubsPaid},
			{ID: "legacy-chris", DisplayName: "Chris Doyle", Wins: 3, Losses: 2, SubsStatus: profile.SubsDue},
		},
		Matches: []match.Match{
			{
				ID:         "match-2025-09-18-home-the-red-lion",
				Opponent:   "The Red Lion",
				Location:   "Home",
				HomeOrAway: match.VenueHome,
				MatchDate:  seedDate(2025, time.September, 18),
				Result:     match.ResultWin,
				PlayerStats: []match.PlayerStatRow{
					{PlayerID: SeedCaptainUID, DisplayName: "Jamie Williams", SinglesWins: 2, SubsPaid: true},
					{PlayerID: SeedPlayerUID, DisplayName: "Sam Carter", SinglesWins: 1, SinglesLosses: 1},
				},
				PlayerIDs: []string{SeedCaptainUID, SeedPlayerUID},
				Players:   []string{"Jamie Williams", "Sam Carter"},
				CreatedAt: created,
				UpdatedAt: created,
			},
			{
				ID:         "match-2026-12-03-away-cue-club",
				Opponent:   "Cue Club",
				Location:   "Cue Club, High Street",
				HomeOrAway: match.VenueAway,
				MatchDate:  seedDate(2026, time.December, 3),
				Result:     match.ResultPending,
				CreatedAt:  created,
				UpdatedAt:  created,
			},
		},
	}
}

func seedRosterEntry(id, name string, role profile.Role, uid string, at time.Time) roster.Entry {
	return roster.Entry{
		ID:               id,
		DisplayName:      name,
		Role:             role,
		AssignedUID:      uid,
		AssignedAt:       &at,
		LinkedProfileUID: uid,
		CreatedAt:        at,
	}
}

func seedDate(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 20, 0, 0, 0, time.UTC)
	return &t
}
