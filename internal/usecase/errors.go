package usecase

import (
	"errors"
	"fmt"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrConflict              = errors.New("conflicting state")
	ErrTransactionConflict   = errors.New("transaction conflict, please retry")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// mapTxErr surfaces a lost storage race as ErrTransactionConflict for single-shot transactions.
func mapTxErr(err error) error {
	if errors.Is(err, match.ErrTxConflict) {
		return fmt.Errorf("%w: %w", ErrTransactionConflict, err)
	}
	return err
}
