package legacyplayer

import "context"

type Repository interface {
	List(ctx context.Context) ([]Player, error)
	LinkProfile(ctx context.Context, id, uid string) error
}
