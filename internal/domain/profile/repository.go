package profile

import (
	"context"
	"time"
)

// Repository describes profile persistence needs from use cases.
type Repository interface {
	GetByUID(ctx context.Context, uid string) (Profile, bool, error)
	List(ctx context.Context) ([]Profile, error)
	Upsert(ctx context.Context, p Profile) error
	SetTotals(ctx context.Context, uid string, wins, losses int, updatedAt time.Time) error
	SetSubsStatus(ctx context.Context, uid string, status SubsStatus, updatedAt time.Time) (bool, error)
}
