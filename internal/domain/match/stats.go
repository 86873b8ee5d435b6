package match

import (
	"sort"
	"time"
)

type WinLoss struct {
	Wins   int
	Losses int
}

type DueGame struct {
	MatchID   string
	Opponent  string
	MatchDate *time.Time
}

type NextGame struct {
	MatchID    string
	Opponent   string
	MatchDate  time.Time
	Location   string
	HomeOrAway Venue
}

// UserTotals summarises one player's season from the match rows.
type UserTotals struct {
	Totals       WinLoss
	Singles      WinLoss
	GamesCount   int
	SubsDueCount int
	SubsDueGames []DueGame
	NextGame     *NextGame
}

// PlayerMetrics are derived frame rates over finished matches.
type PlayerMetrics struct {
	FinishedMatches      int
	MatchesPlayed        int
	SelectionRatePct     float64
	FrameWins            int
	FrameLosses          int
	FrameWinRatePct      float64
	FramesWonPerMatch    float64
	SinglesWinRatePct    float64
	DoublesWinRatePct    float64
	Last5FrameWinRatePct float64
	ContributionSharePct float64
}

// ComputeUserTotals walks every match once. GamesCount is the number of season fixtures;
// the next game is the nearest dated fixture on or after the start of today.
func ComputeUserTotals(items []Match, playerID string, now time.Time) UserTotals {
	out := UserTotals{SubsDueGames: make([]DueGame, 0)}
	todayStart := StartOfDay(now)

	for _, m := range items {
		out.GamesCount++
		if row, ok := m.RowFor(playerID); ok {
			out.Totals.Wins += row.Wins()
			out.Totals.Losses += row.Losses()
			out.Singles.Wins += row.SinglesWins
			out.Singles.Losses += row.SinglesLosses
			if !row.SubsPaid {
				out.SubsDueCount++
				out.SubsDueGames = append(out.SubsDueGames, DueGame{
					MatchID:   m.ID,
					Opponent:  opponentOrTBC(m.Opponent),
					MatchDate: m.MatchDate,
				})
			}
		}

		if m.MatchDate == nil || m.MatchDate.Before(todayStart) {
			continue
		}
		if out.NextGame == nil || m.MatchDate.Before(out.NextGame.MatchDate) {
			out.NextGame = &NextGame{
				MatchID:    m.ID,
				Opponent:   opponentOrTBC(m.Opponent),
				MatchDate:  *m.MatchDate,
				Location:   m.Location,
				HomeOrAway: m.HomeOrAway,
			}
		}
	}

	return out
}

// ComputePlayerMetrics derives rates from finished matches only.
func ComputePlayerMetrics(items []Match, playerID string, now time.Time) PlayerMetrics {
	finished := make([]Match, 0, len(items))
	for _, m := range items {
		if Classify(m, now) == BucketPrevious {
			finished = append(finished, m)
		}
	}

	var (
		out             PlayerMetrics
		singles         WinLoss
		doubles         WinLoss
		teamWinsCredits int
	)
	out.FinishedMatches = len(finished)

	for _, m := range finished {
		for _, row := range m.PlayerStats {
			teamWinsCredits += row.Wins()
		}
		row, ok := m.RowFor(playerID)
		if !ok {
			continue
		}
		out.FrameWins += row.Wins()
		out.FrameLosses += row.Losses()
		singles.Wins += row.SinglesWins
		singles.Losses += row.SinglesLosses
		doubles.Wins += row.DoublesWins
		doubles.Losses += row.DoublesLosses
		if row.Wins()+row.Losses() > 0 {
			out.MatchesPlayed++
		}
	}

	sort.SliceStable(finished, func(i, j int) bool {
		return unixOrZero(finished[i].MatchDate) < unixOrZero(finished[j].MatchDate)
	})
	if len(finished) > 5 {
		finished = finished[len(finished)-5:]
	}
	var last5 WinLoss
	for _, m := range finished {
		if row, ok := m.RowFor(playerID); ok {
			last5.Wins += row.Wins()
			last5.Losses += row.Losses()
		}
	}

	out.SelectionRatePct = pct(out.MatchesPlayed, out.FinishedMatches)
	out.FrameWinRatePct = pct(out.FrameWins, out.FrameWins+out.FrameLosses)
	out.SinglesWinRatePct = pct(singles.Wins, singles.Wins+singles.Losses)
	out.DoublesWinRatePct = pct(doubles.Wins, doubles.Wins+doubles.Losses)
	out.Last5FrameWinRatePct = pct(last5.Wins, last5.Wins+last5.Losses)
	out.ContributionSharePct = pct(out.FrameWins, teamWinsCredits)
	if out.MatchesPlayed > 0 {
		out.FramesWonPerMatch = float64(out.FrameWins) / float64(out.MatchesPlayed)
	}

	return out
}

// ComputeGameTotals returns one player's frames in a single match.
func ComputeGameTotals(m Match, playerID string) WinLoss {
	row, ok := m.RowFor(playerID)
	if !ok {
		return WinLoss{}
	}
	return WinLoss{Wins: row.Wins(), Losses: row.Losses()}
}

// SumPlayerTotals recomputes season totals per player from every match row.
func SumPlayerTotals(items []Match) map[string]WinLoss {
	out := make(map[string]WinLoss)
	for _, m := range items {
		for _, row := range m.PlayerStats {
			if row.PlayerID == "" {
				continue
			}
			current := out[row.PlayerID]
			current.Wins += row.Wins()
			current.Losses += row.Losses()
			out[row.PlayerID] = current
		}
	}
	return out
}

func pct(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func unixOrZero(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.Unix()
}

func opponentOrTBC(v string) string {
	if v == "" {
		return "TBC"
	}
	return v
}
