package db

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsUniqueViolation reports whether err is a unique violation on the named constraint.
// An empty constraint matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	return isViolation(err, pgerrcode.UniqueViolation, constraint)
}

// IsForeignKeyViolation reports whether err is a foreign key violation on the named constraint.
// An empty constraint matches any foreign key violation.
func IsForeignKeyViolation(err error, constraint string) bool {
	return isViolation(err, pgerrcode.ForeignKeyViolation, constraint)
}

func isViolation(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
