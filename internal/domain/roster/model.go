package roster

import (
	"time"

	"github.com/jamwil123/pool-tracker/internal/domain/profile"
)

// Entry is a named team member that an account can claim at profile setup.
type Entry struct {
	ID               string
	DisplayName      string
	Role             profile.Role
	AssignedUID      string
	AssignedEmail    string
	AssignedAt       *time.Time
	LinkedProfileUID string
	CreatedAt        time.Time
}

func (e Entry) Assigned() bool {
	return e.AssignedUID != ""
}

// Link records which account claimed a roster entry.
type Link struct {
	UID   string
	Email string
	At    time.Time
}
