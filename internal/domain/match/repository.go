package match

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTxConflict reports that a concurrent writer invalidated the transaction's reads.
	ErrTxConflict    = errors.New("transaction conflict")
	ErrAlreadyExists = errors.New("match already exists")
)

// Repository describes match persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (Match, bool, error)
	List(ctx context.Context) ([]Match, error)
	Create(ctx context.Context, m Match) error
	Upsert(ctx context.Context, m Match) error
	UpdateResult(ctx context.Context, id string, result Result, updatedAt time.Time) error
	UpdatePlayerIDs(ctx context.Context, id string, playerIDs []string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) (bool, error)
	CountDecided(ctx context.Context) (int, error)
}

// StatsUpdate replaces a match's stat rows and the fields derived from them.
type StatsUpdate struct {
	MatchID   string
	Rows      []PlayerStatRow
	PlayerIDs []string
	Players   []string
	UpdatedAt time.Time
}

// StatsTx is the read-write view available inside one stats transaction.
type StatsTx interface {
	// GetForUpdate reads the match and holds it until the transaction ends.
	GetForUpdate(ctx context.Context, id string) (Match, bool, error)
	// IncrementProfileTotals adds signed deltas to a profile's season counters in place.
	// It reports false when no profile exists for playerID.
	IncrementProfileTotals(ctx context.Context, playerID string, wins, losses int) (bool, error)
	SaveStats(ctx context.Context, update StatsUpdate) error
}

// StatsStore runs fn as one atomic unit. Any error returned by fn discards every write made
// through tx. Implementations return an error wrapping ErrTxConflict when the unit lost a race.
type StatsStore interface {
	WithinStatsTx(ctx context.Context, fn func(ctx context.Context, tx StatsTx) error) error
}
