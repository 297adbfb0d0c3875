package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a unique constraint violation from
// Postgres (pgx or lib/pq) or SQLite. When constraintName is provided the
// violated constraint must match it.
func IsUniqueViolation(err error, constraintName string) bool {
	return violates(err, pgUniqueViolation, constraintName, func(msg string) bool {
		if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
			return false
		}
		return constraintName == "" || strings.Contains(msg, constraintName)
	})
}

// IsForeignKeyViolation reports whether err is a foreign key violation: the row
// references a parent that does not exist. SQLite does not name the failing
// constraint, so constraintName only narrows Postgres errors.
func IsForeignKeyViolation(err error, constraintName string) bool {
	return violates(err, pgForeignKeyViolation, constraintName, func(msg string) bool {
		return strings.Contains(msg, "FOREIGN KEY constraint failed")
	})
}

func violates(err error, pgCode, constraintName string, matchMessage func(string) bool) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgCode && (constraintName == "" || pgxErr.ConstraintName == constraintName)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgCode && (constraintName == "" || pqErr.Constraint == constraintName)
	}

	return matchMessage(err.Error())
}
