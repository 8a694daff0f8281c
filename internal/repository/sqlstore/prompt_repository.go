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
	createPromptsSQLite = []string{`
CREATE TABLE IF NOT EXISTS prompts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL CHECK (type IN ('user', 'system', 'template')),
	prompt TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_prompts_type ON prompts (type)`,
	}

	createPromptsPostgres = []string{`
CREATE TABLE IF NOT EXISTS prompts (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL CHECK (type IN ('user', 'system', 'template')),
	prompt TEXT NOT NULL,
	tags JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_prompts_type ON prompts (type)`,
		`CREATE INDEX IF NOT EXISTS idx_prompts_tags ON prompts USING GIN (tags)`,
	}
)

const promptColumns = `id, name, type, prompt, tags, created_at, updated_at`

type PromptRepository struct {
	db *DB
}

func NewPromptRepository(db *DB) repository.PromptRepository {
	return &PromptRepository{db: db}
}

func (r *PromptRepository) Init(ctx context.Context) error {
	if err := r.db.exec(ctx, r.db.ddl(createPromptsSQLite, createPromptsPostgres)); err != nil {
		return fmt.Errorf("create prompts table: %w", err)
	}
	return nil
}

func (r *PromptRepository) Create(ctx context.Context, prompt *domain.Prompt) (*domain.Prompt, error) {
	if prompt.ID == "" {
		prompt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	prompt.CreatedAt = now
	prompt.UpdatedAt = now

	row := r.db.QueryRowContext(ctx, `
INSERT INTO prompts (id, name, type, prompt, tags, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+promptColumns,
		prompt.ID,
		prompt.Name,
		string(prompt.Type),
		prompt.Prompt,
		tags{&prompt.Tags},
		prompt.CreatedAt,
		prompt.UpdatedAt,
	)
	created, err := scanPrompt(row)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("insert prompt returned no row: %w", err)
		}
		return nil, fmt.Errorf("insert prompt: %w", err)
	}
	return created, nil
}

func (r *PromptRepository) GetByID(ctx context.Context, id string) (*domain.Prompt, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+promptColumns+`
FROM prompts
WHERE id = $1`,
		id,
	)
	return scanPrompt(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrompt(row rowScanner) (*domain.Prompt, error) {
	var (
		prompt domain.Prompt
		typ    string
	)
	if err := row.Scan(
		&prompt.ID,
		&prompt.Name,
		&typ,
		&prompt.Prompt,
		tags{&prompt.Tags},
		timestamp{&prompt.CreatedAt},
		timestamp{&prompt.UpdatedAt},
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan prompt: %w", err)
	}
	prompt.Type = domain.PromptType(typ)
	return &prompt, nil
}
