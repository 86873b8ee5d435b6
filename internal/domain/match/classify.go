package match

import (
	"sort"
	"time"
)

type Bucket string

const (
	BucketUpcoming Bucket = "upcoming"
	BucketPrevious Bucket = "previous"
)

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Classify places a match on the upcoming or previous board. Pending matches stay upcoming
// for their whole match day so results can be entered on the night.
func Classify(m Match, now time.Time) Bucket {
	if m.Result.Decided() {
		return BucketPrevious
	}
	if m.MatchDate == nil {
		return BucketUpcoming
	}
	if m.MatchDate.Before(StartOfDay(now)) {
		return BucketPrevious
	}
	return BucketUpcoming
}

// SortUpcoming orders by match date ascending with undated matches last.
func SortUpcoming(items []Match) []Match {
	out := append([]Match(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].MatchDate, out[j].MatchDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return out
}

// SortPrevious orders by match date descending, undated last, then by last update descending.
func SortPrevious(items []Match) []Match {
	out := append([]Match(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].MatchDate, out[j].MatchDate
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		default:
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
	})
	return out
}

// Split classifies and sorts a season's matches into both boards.
func Split(items []Match, now time.Time) (upcoming, previous []Match) {
	upcoming = make([]Match, 0, len(items))
	previous = make([]Match, 0, len(items))
	for _, m := range items {
		if Classify(m, now) == BucketPrevious {
			previous = append(previous, m)
			continue
		}
		upcoming = append(upcoming, m)
	}
	return SortUpcoming(upcoming), SortPrevious(previous)
}
