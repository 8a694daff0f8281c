package apperr

import (
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLSTATE codes the mapping cares about.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeNotNullViolation    = "23502"
	CodeCheckViolation      = "23514"
)

// SQLState extracts a SQLSTATE-style code from a driver error anywhere in the
// chain. SQLite extended result codes for constraint failures are translated
// to their PostgreSQL equivalents; other SQLite codes are reported as
// "SQLITE<n>".
func SQLState(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code != "" {
		return pgErr.Code, true
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return CodeUniqueViolation, true
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return CodeForeignKeyViolation, true
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return CodeNotNullViolation, true
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return CodeCheckViolation, true
		}
		return "SQLITE" + strconv.Itoa(liteErr.Code()), true
	}

	return "", false
}
