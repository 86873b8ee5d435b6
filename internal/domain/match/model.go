package match

import (
	"strings"
	"time"
)

// Result is the team's outcome for a fixture.
type Result string

const (
	ResultPending Result = "pending"
	ResultWin     Result = "win"
	ResultLoss    Result = "loss"
)

func (r Result) Valid() bool {
	switch r {
	case ResultPending, ResultWin, ResultLoss:
		return true
	default:
		return false
	}
}

func (r Result) Decided() bool {
	return r == ResultWin || r == ResultLoss
}

// ParseResult maps free text to a result, falling back to pending.
func ParseResult(v string) Result {
	switch Result(strings.ToLower(strings.TrimSpace(v))) {
	case ResultWin:
		return ResultWin
	case ResultLoss:
		return ResultLoss
	default:
		return ResultPending
	}
}

type Venue string

const (
	VenueHome Venue = "home"
	VenueAway Venue = "away"
)

// ParseVenue treats anything other than "away" as a home fixture.
func ParseVenue(v string) Venue {
	if strings.EqualFold(strings.TrimSpace(v), string(VenueAway)) {
		return VenueAway
	}
	return VenueHome
}

// PlayerStatRow is one player's frame record for a single match.
type PlayerStatRow struct {
	PlayerID      string `json:"playerId"`
	DisplayName   string `json:"displayName"`
	SinglesWins   int    `json:"singlesWins"`
	SinglesLosses int    `json:"singlesLosses"`
	DoublesWins   int    `json:"doublesWins"`
	DoublesLosses int    `json:"doublesLosses"`
	SubsPaid      bool   `json:"subsPaid"`
}

func (r PlayerStatRow) Wins() int {
	return r.SinglesWins + r.DoublesWins
}

func (r PlayerStatRow) Losses() int {
	return r.SinglesLosses + r.DoublesLosses
}

// Match is one fixture between the team and an opponent.
type Match struct {
	ID          string
	Opponent    string
	Location    string
	HomeOrAway  Venue
	MatchDate   *time.Time
	Notes       *string
	Result      Result
	PlayerStats []PlayerStatRow
	PlayerIDs   []string
	Players     []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RowFor returns the stat row recorded for playerID, if any.
func (m Match) RowFor(playerID string) (PlayerStatRow, bool) {
	for _, row := range m.PlayerStats {
		if row.PlayerID == playerID {
			return row, true
		}
	}
	return PlayerStatRow{}, false
}

// Participants returns the de-duplicated player ids of rows in order of first appearance.
func Participants(rows []PlayerStatRow) []string {
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		id := strings.TrimSpace(row.PlayerID)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// DisplayNames returns the non-empty display names of rows in order.
func DisplayNames(rows []PlayerStatRow) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row.DisplayName)
		if name == "" {
			continue
		}
		out = append(out, name)
	}
	return out
}
