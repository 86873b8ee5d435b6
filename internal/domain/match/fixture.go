package match

import (
	"regexp"
	"strings"
	"time"
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases v and collapses every run of non-alphanumerics into one dash.
func Slugify(v string) string {
	s := slugInvalidChars.ReplaceAllString(strings.ToLower(v), "-")
	return strings.Trim(s, "-")
}

// StableID derives a deterministic id so re-importing a fixture list never duplicates matches.
// The date label prefers the raw notes text, then the match date, then "tbc".
func StableID(notes *string, matchDate *time.Time, venue Venue, opponent string) string {
	label := "tbc"
	switch {
	case notes != nil && strings.TrimSpace(*notes) != "":
		label = strings.TrimSpace(*notes)
	case matchDate != nil:
		label = matchDate.UTC().Format(time.DateOnly)
	}
	return "match-" + label + "-" + string(venue) + "-" + Slugify(opponent)
}

// ParseFixtureDate reads a YYYY-MM-DD (or RFC 3339) value and pins it to 20:00 local time.
func ParseFixtureDate(raw string, loc *time.Location) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	parsed, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return nil
		}
		parsed = parsed.In(loc)
	}

	y, m, d := parsed.Date()
	at := time.Date(y, m, d, 20, 0, 0, 0, loc)
	return &at
}
