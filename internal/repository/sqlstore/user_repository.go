package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"buddy-server/internal/domain"
	"buddy-server/internal/repository"
)

var (
	createUsersSQLite = []string{`
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	first_name TEXT NOT NULL,
	full_name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	type TEXT NOT NULL CHECK (type IN ('user', 'admin')),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`,
	}

	createUsersPostgres = []string{`
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	first_name TEXT NOT NULL,
	full_name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	type TEXT NOT NULL CHECK (type IN ('user', 'admin')),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`,
	}
)

const userColumns = `id, first_name, full_name, email, password, type, created_at, updated_at`

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if err := r.db.exec(ctx, r.db.ddl(createUsersSQLite, createUsersPostgres)); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// Create stores user. user.Password must already hold the password hash.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	row := r.db.QueryRowContext(ctx, `
INSERT INTO users (id, first_name, full_name, email, password, type, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+userColumns,
		user.ID,
		user.FirstName,
		user.FullName,
		user.Email,
		user.Password.Value(),
		string(user.Type),
		user.CreatedAt,
		user.UpdatedAt,
	)
	created, err := scanUser(row)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("insert user returned no row: %w", err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE email = $1`,
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user     domain.User
		password string
		typ      string
	)
	if err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.FullName,
		&user.Email,
		&password,
		&typ,
		timestamp{&user.CreatedAt},
		timestamp{&user.UpdatedAt},
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Password = domain.NewRedacted(password)
	user.Type = domain.UserType(typ)
	return &user, nil
}
