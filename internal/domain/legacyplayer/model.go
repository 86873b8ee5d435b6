package legacyplayer

import "github.com/jamwil123/pool-tracker/internal/domain/profile"

// Player is a record from the pre-profile players table. It is read for seeding and
// kept linked to profiles for older dashboards.
type Player struct {
	ID               string
	DisplayName      string
	Wins             int
	Losses           int
	SubsStatus       profile.SubsStatus
	LinkedProfileUID string
}
