package roster

import (
	"context"

	"github.com/jamwil123/pool-tracker/internal/domain/profile"
)

// Repository describes roster persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (Entry, bool, error)
	List(ctx context.Context) ([]Entry, error)
	Create(ctx context.Context, e Entry) error
	SaveLink(ctx context.Context, id string, link Link) error
	// SetLinkedProfile points an entry at a profile without claiming it for an account.
	SetLinkedProfile(ctx context.Context, id, uid string) error
}

// LinkTx is the read-write view available while an account claims a roster entry.
type LinkTx interface {
	GetForUpdate(ctx context.Context, id string) (Entry, bool, error)
	SaveLink(ctx context.Context, id string, link Link) error
	UpsertProfile(ctx context.Context, p profile.Profile) error
}

// LinkStore runs fn as one atomic unit; an error from fn discards every write.
type LinkStore interface {
	WithinLinkTx(ctx context.Context, fn func(ctx context.Context, tx LinkTx) error) error
}
