// Package sqlstore implements the repository interfaces on database/sql for
// both SQLite and PostgreSQL. Queries are written once with $n placeholders
// and RETURNING, which both engines accept; only the DDL differs.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"buddy-server/internal/config"
)

// Dialect selects engine specific DDL and locking clauses.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return config.DriverPostgres
	}
	return config.DriverSQLite
}

// DB is a connection pool bound to its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg config.Database) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := sql.Open("pgx", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("open postgres db: %w", err)
		}
		return ping(ctx, &DB{DB: db, Dialect: Postgres})
	case config.DriverSQLite, "":
		return OpenSQLite(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// OpenSQLite opens (or creates) a sqlite database at the given path and
// ensures its directory exists. ":memory:" opens a private in-memory
// database.
func OpenSQLite(ctx context.Context, path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// a single connection serializes writers and keeps :memory: databases alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return ping(ctx, &DB{DB: db, Dialect: SQLite})
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_time_format=sqlite"
}

func ping(ctx context.Context, db *DB) (*DB, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s db: %w", db.Dialect, err)
	}
	return db, nil
}

// Init creates every table used by the application.
func (db *DB) Init(ctx context.Context) error {
	for _, r := range []interface{ Init(context.Context) error }{
		NewPromptRepository(db),
		NewPromptVoiceRepository(db),
		NewUserRepository(db),
	} {
		if err := r.Init(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) exec(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// ddl picks the statement list matching the dialect.
func (db *DB) ddl(sqlite, postgres []string) []string {
	if db.Dialect == Postgres {
		return postgres
	}
	return sqlite
}
