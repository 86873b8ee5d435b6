package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/jamwil123/pool-tracker/internal/domain/match"
)

const (
	sqlStateUniqueViolation      = "23505"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// isTxConflict reports errors that a retry of the whole transaction can resolve.
func isTxConflict(err error) bool {
	switch pqCode(err) {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected:
		return true
	default:
		return false
	}
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == sqlStateUniqueViolation
}

func wrapTxErr(err error) error {
	if err == nil || !isTxConflict(err) || errors.Is(err, match.ErrTxConflict) {
		return err
	}
	return fmt.Errorf("%w: %w", match.ErrTxConflict, err)
}

func expectAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected %s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: not found", op)
	}
	return nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}
