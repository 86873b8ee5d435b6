package match

import (
	"errors"
	"fmt"
	"math"
)

const (
	MaxSinglesPerPlayer = 2
	MaxDoublesPerPlayer = 1

	// TeamSinglesCap is five players with two singles frames each.
	TeamSinglesCap = 10
	// TeamDoublesCap counts each doubles frame once per participating player.
	TeamDoublesCap = 6

	// DefaultSeasonResultCap is the number of decided fixtures in one season.
	DefaultSeasonResultCap = 13
)

var (
	ErrCapacityExceeded = errors.New("team capacity exceeded")
	ErrSeasonCapReached = errors.New("season cap reached")
)

// ClampCount bounds a submitted count to [0, max]. Non-finite and negative values become 0.
func ClampCount(v float64, max int) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	if v >= float64(max) {
		return max
	}
	return int(math.Trunc(v))
}

// ClampPair clamps a wins/losses pair so that wins+losses never exceeds max. Wins take priority.
func ClampPair(wins, losses float64, max int) (int, int) {
	w := ClampCount(wins, max)
	l := ClampCount(losses, max)
	if w+l > max {
		l = max - w
	}
	return w, l
}

// ClampRow applies the per-player caps to an already stored row.
func ClampRow(row PlayerStatRow) PlayerStatRow {
	row.SinglesWins, row.SinglesLosses = ClampPair(float64(row.SinglesWins), float64(row.SinglesLosses), MaxSinglesPerPlayer)
	row.DoublesWins, row.DoublesLosses = ClampPair(float64(row.DoublesWins), float64(row.DoublesLosses), MaxDoublesPerPlayer)
	return row
}

type TeamTotals struct {
	SinglesWins   int
	SinglesLosses int
	DoublesWins   int
	DoublesLosses int
}

func (t TeamTotals) Singles() int {
	return t.SinglesWins + t.SinglesLosses
}

func (t TeamTotals) Doubles() int {
	return t.DoublesWins + t.DoublesLosses
}

func ComputeTeamTotals(rows []PlayerStatRow) TeamTotals {
	var out TeamTotals
	for _, row := range rows {
		out.SinglesWins += row.SinglesWins
		out.SinglesLosses += row.SinglesLosses
		out.DoublesWins += row.DoublesWins
		out.DoublesLosses += row.DoublesLosses
	}
	return out
}

// ValidateTeamCapacity rejects row sets that record more frames than a match can hold.
func ValidateTeamCapacity(rows []PlayerStatRow) error {
	totals := ComputeTeamTotals(rows)
	if totals.Singles() > TeamSinglesCap {
		return fmt.Errorf("%w: singles %d/%d", ErrCapacityExceeded, totals.Singles(), TeamSinglesCap)
	}
	if totals.Doubles() > TeamDoublesCap {
		return fmt.Errorf("%w: doubles %d/%d", ErrCapacityExceeded, totals.Doubles(), TeamDoublesCap)
	}
	return nil
}

// Delta is the signed change applied to one profile's season totals.
type Delta struct {
	PlayerID string
	Wins     int
	Losses   int
}

// ComputeDeltas diffs two row sets over the union of their players. Players whose totals
// are unchanged are omitted. Output order follows previous rows, then newly added players.
func ComputeDeltas(previous, next []PlayerStatRow) []Delta {
	type tally struct{ oldWins, oldLosses, newWins, newLosses int }

	order := make([]string, 0, len(previous)+len(next))
	byPlayer := make(map[string]*tally, len(previous)+len(next))
	get := func(id string) *tally {
		t, ok := byPlayer[id]
		if !ok {
			t = &tally{}
			byPlayer[id] = t
			order = append(order, id)
		}
		return t
	}

	for _, row := range previous {
		if row.PlayerID == "" {
			continue
		}
		t := get(row.PlayerID)
		t.oldWins += row.Wins()
		t.oldLosses += row.Losses()
	}
	for _, row := range next {
		if row.PlayerID == "" {
			continue
		}
		t := get(row.PlayerID)
		t.newWins += row.Wins()
		t.newLosses += row.Losses()
	}

	out := make([]Delta, 0, len(order))
	for _, id := range order {
		t := byPlayer[id]
		winDiff := t.newWins - t.oldWins
		lossDiff := t.newLosses - t.oldLosses
		if winDiff == 0 && lossDiff == 0 {
			continue
		}
		out = append(out, Delta{PlayerID: id, Wins: winDiff, Losses: lossDiff})
	}
	return out
}
