package memory

import (
	"sync"

	"github.com/jamwil123/pool-tracker/internal/domain/legacyplayer"
	"github.com/jamwil123/pool-tracker/internal/domain/match"
	"github.com/jamwil123/pool-tracker/internal/domain/profile"
	"github.com/jamwil123/pool-tracker/internal/domain/roster"
)

// Store keeps every collection behind one lock so transactions can commit across them.
// Each document carries a version that transactions check at commit time.
type Store struct {
	mu       sync.RWMutex
	matches  map[string]match.Match
	profiles map[string]profile.Profile
	roster   map[string]roster.Entry
	legacy   map[string]legacyplayer.Player
	versions map[string]uint64
}

type SeedData struct {
	Matches       []match.Match
	Profiles      []profile.Profile
	Roster        []roster.Entry
	LegacyPlayers []legacyplayer.Player
}

func NewStore(seed SeedData) *Store {
	s := &Store{
		matches:  make(map[string]match.Match, len(seed.Matches)),
		profiles: make(map[string]profile.Profile, len(seed.Profiles)),
		roster:   make(map[string]roster.Entry, len(seed.Roster)),
		legacy:   make(map[string]legacyplayer.Player, len(seed.LegacyPlayers)),
		versions: make(map[string]uint64),
	}
	for _, m := range seed.Matches {
		s.matches[m.ID] = cloneMatch(m)
	}
	for _, p := range seed.Profiles {
		s.profiles[p.UID] = p
	}
	for _, e := range seed.Roster {
		s.roster[e.ID] = e
	}
	for _, p := range seed.LegacyPlayers {
		s.legacy[p.ID] = p
	}
	return s
}

// bump must be called with mu held for writing.
func (s *Store) bump(key string) {
	s.versions[key]++
}

func matchKey(id string) string   { return "matches/" + id }
func profileKey(uid string) string { return "profiles/" + uid }
func rosterKey(id string) string   { return "roster/" + id }

func cloneMatch(m match.Match) match.Match {
	m.PlayerStats = append([]match.PlayerStatRow(nil), m.PlayerStats...)
	m.PlayerIDs = append([]string(nil), m.PlayerIDs...)
	m.Players = append([]string(nil), m.Players...)
	if m.MatchDate != nil {
		v := *m.MatchDate
		m.MatchDate = &v
	}
	if m.Notes != nil {
		v := *m.Notes
		m.Notes = &v
	}
	return m
}
