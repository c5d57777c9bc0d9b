package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// PostgreSQL (error code 23505)
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// MySQL (error code 1062)
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

// IsLockWaitErr reports whether err is a lock wait timeout from the
// underlying engine. Callers treat these as retryable conflicts.
func IsLockWaitErr(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	// PostgreSQL (error code 55P03)
	if strings.Contains(msg, "could not obtain lock on row") {
		return true
	}

	// MySQL (error code 1205)
	if strings.Contains(msg, "Lock wait timeout exceeded") {
		return true
	}

	// SQLite (error code 5)
	if strings.Contains(msg, "database is locked") {
		return true
	}

	return false
}
