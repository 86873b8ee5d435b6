package httpapi

import (
	"fmt"
	"time"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
	"github.com/jamwil123/pool-tracker/internal/domain/profile"
	"github.com/jamwil123/pool-tracker/internal/domain/roster"
	"github.com/jamwil123/pool-tracker/internal/domain/standing"
	"github.com/jamwil123/pool-tracker/internal/usecase"
)

var errMissingPrincipal = fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)

type matchDTO struct {
	ID          string                `json:"id"`
	Opponent    string                `json:"opponent"`
	Location    string                `json:"location"`
	HomeOrAway  string                `json:"homeOrAway"`
	MatchDate   string                `json:"matchDate,omitempty"`
	Notes       *string               `json:"notes"`
	Result      string                `json:"result"`
	PlayerStats []match.PlayerStatRow `json:"playerStats"`
	PlayerIDs   []string              `json:"playerIds"`
	Players     []string              `json:"players"`
	CreatedAt   string                `json:"createdAt"`
	UpdatedAt   string                `json:"updatedAt"`
}

type matchBoardDTO struct {
	Upcoming []matchDTO `json:"upcoming"`
	Previous []matchDTO `json:"previous"`
}

type deltaDTO struct {
	PlayerID string `json:"playerId"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

type reconcileResultDTO struct {
	MatchID     string                `json:"matchId"`
	PlayerStats []match.PlayerStatRow `json:"playerStats"`
	Deltas      []deltaDTO            `json:"deltas"`
	Attempts    int                   `json:"attempts"`
}

type importSummaryDTO struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	IDs     []string `json:"ids"`
	DryRun  bool     `json:"dryRun"`
}

type profileDTO struct {
	UID            string `json:"uid"`
	DisplayName    string `json:"displayName"`
	Role           string `json:"role"`
	TotalWins      int    `json:"totalWins"`
	TotalLosses    int    `json:"totalLosses"`
	SubsStatus     string `json:"subsStatus"`
	LinkedRosterID string `json:"linkedRosterId,omitempty"`
	LinkedPlayerID string `json:"linkedPlayerId,omitempty"`
	UpdatedAt      string `json:"updatedAt"`
}

type rosterEntryDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Assigned    bool   `json:"assigned"`
}

type winLossDTO struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

type dueGameDTO struct {
	MatchID   string `json:"matchId"`
	Opponent  string `json:"opponent"`
	MatchDate string `json:"matchDate,omitempty"`
}

type nextGameDTO struct {
	MatchID    string `json:"matchId"`
	Opponent   string `json:"opponent"`
	MatchDate  string `json:"matchDate"`
	Location   string `json:"location"`
	HomeOrAway string `json:"homeOrAway"`
}

type userTotalsDTO struct {
	Totals       winLossDTO   `json:"totals"`
	Singles      winLossDTO   `json:"singles"`
	GamesCount   int          `json:"gamesCount"`
	SubsDueCount int          `json:"subsDueCount"`
	SubsDueGames []dueGameDTO `json:"subsDueGames"`
	NextGame     *nextGameDTO `json:"nextGame"`
}

type playerMetricsDTO struct {
	FinishedMatches      int     `json:"finishedMatches"`
	MatchesPlayed        int     `json:"matchesPlayed"`
	SelectionRatePct     float64 `json:"selectionRatePct"`
	FrameWins            int     `json:"frameWins"`
	FrameLosses          int     `json:"frameLosses"`
	FrameWinRatePct      float64 `json:"frameWinRatePct"`
	FramesWonPerMatch    float64 `json:"framesWonPerMatch"`
	SinglesWinRatePct    float64 `json:"singlesWinRatePct"`
	DoublesWinRatePct    float64 `json:"doublesWinRatePct"`
	Last5FrameWinRatePct float64 `json:"last5FrameWinRatePct"`
	ContributionSharePct float64 `json:"contributionSharePct"`
}

type gameTotalDTO struct {
	MatchID   string `json:"matchId"`
	Opponent  string `json:"opponent"`
	MatchDate string `json:"matchDate,omitempty"`
	Result    string `json:"result"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
}

type standingRowDTO struct {
	Position      int    `json:"position"`
	Team          string `json:"team"`
	Played        int    `json:"played"`
	Won           int    `json:"won"`
	Drawn         int    `json:"drawn"`
	Lost          int    `json:"lost"`
	FramesFor     int    `json:"gf"`
	FramesAgainst int    `json:"ga"`
	FrameDiff     int    `json:"gd"`
	Points        int    `json:"points"`
}

type standingsDTO struct {
	Division  string           `json:"division"`
	ScrapedAt string           `json:"scrapedAt"`
	Source    string           `json:"source,omitempty"`
	Standings []standingRowDTO `json:"standings"`
}

func matchToDTO(m match.Match) matchDTO {
	return matchDTO{
		ID:          m.ID,
		Opponent:    m.Opponent,
		Location:    m.Location,
		HomeOrAway:  string(m.HomeOrAway),
		MatchDate:   formatOptionalTime(m.MatchDate),
		Notes:       m.Notes,
		Result:      string(m.Result),
		PlayerStats: append([]match.PlayerStatRow{}, m.PlayerStats...),
		PlayerIDs:   append([]string{}, m.PlayerIDs...),
		Players:     append([]string{}, m.Players...),
		CreatedAt:   formatTime(m.CreatedAt),
		UpdatedAt:   formatTime(m.UpdatedAt),
	}
}

func matchesToDTO(items []match.Match) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, m := range items {
		out = append(out, matchToDTO(m))
	}
	return out
}

func matchBoardToDTO(board usecase.MatchBoard) matchBoardDTO {
	return matchBoardDTO{
		Upcoming: matchesToDTO(board.Upcoming),
		Previous: matchesToDTO(board.Previous),
	}
}

func reconcileResultToDTO(result usecase.ReconcileResult) reconcileResultDTO {
	deltas := make([]deltaDTO, 0, len(result.Deltas))
	for _, d := range result.Deltas {
		deltas = append(deltas, deltaDTO{PlayerID: d.PlayerID, Wins: d.Wins, Losses: d.Losses})
	}

	return reconcileResultDTO{
		MatchID:     result.MatchID,
		PlayerStats: append([]match.PlayerStatRow{}, result.Rows...),
		Deltas:      deltas,
		Attempts:    result.Attempts,
	}
}

func profileToDTO(p profile.Profile) profileDTO {
	return profileDTO{
		UID:            p.UID,
		DisplayName:    p.DisplayName,
		Role:           string(p.Role),
		TotalWins:      p.TotalWins,
		TotalLosses:    p.TotalLosses,
		SubsStatus:     string(p.SubsStatus),
		LinkedRosterID: p.LinkedRosterID,
		LinkedPlayerID: p.LinkedPlayerID,
		UpdatedAt:      formatTime(p.UpdatedAt),
	}
}

func rosterEntryToDTO(e roster.Entry) rosterEntryDTO {
	return rosterEntryDTO{
		ID:          e.ID,
		DisplayName: e.DisplayName,
		Role:        string(e.Role),
		Assigned:    e.Assigned(),
	}
}

func userTotalsToDTO(t match.UserTotals) userTotalsDTO {
	due := make([]dueGameDTO, 0, len(t.SubsDueGames))
	for _, g := range t.SubsDueGames {
		due = append(due, dueGameDTO{MatchID: g.MatchID, Opponent: g.Opponent, MatchDate: formatOptionalTime(g.MatchDate)})
	}

	out := userTotalsDTO{
		Totals:       winLossDTO{Wins: t.Totals.Wins, Losses: t.Totals.Losses},
		Singles:      winLossDTO{Wins: t.Singles.Wins, Losses: t.Singles.Losses},
		GamesCount:   t.GamesCount,
		SubsDueCount: t.SubsDueCount,
		SubsDueGames: due,
	}
	if t.NextGame != nil {
		out.NextGame = &nextGameDTO{
			MatchID:    t.NextGame.MatchID,
			Opponent:   t.NextGame.Opponent,
			MatchDate:  formatTime(t.NextGame.MatchDate),
			Location:   t.NextGame.Location,
			HomeOrAway: string(t.NextGame.HomeOrAway),
		}
	}
	return out
}

func standingsToDTO(table standing.Table) standingsDTO {
	rows := make([]standingRowDTO, 0, len(table.Rows))
	for _, r := range table.Rows {
		rows = append(rows, standingRowDTO{
			Position:      r.Position,
			Team:          r.Team,
			Played:        r.Played,
			Won:           r.Won,
			Drawn:         r.Drawn,
			Lost:          r.Lost,
			FramesFor:     r.FramesFor,
			FramesAgainst: r.FramesAgainst,
			FrameDiff:     r.FrameDiff,
			Points:        r.Points,
		})
	}

	return standingsDTO{
		Division:  table.Division,
		ScrapedAt: table.ScrapedAt,
		Source:    table.Source,
		Standings: rows,
	}
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func formatOptionalTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return formatTime(*v)
}
