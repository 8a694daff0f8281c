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
	createPromptVoicesSQLite = []string{`
CREATE TABLE IF NOT EXISTS prompt_voices (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	label TEXT NOT NULL,
	"key" TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	prompt_id TEXT NOT NULL REFERENCES prompts (id),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_prompt_voices_prompt_id ON prompt_voices (prompt_id)`,
	}

	createPromptVoicesPostgres = []string{`
CREATE TABLE IF NOT EXISTS prompt_voices (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	label TEXT NOT NULL,
	"key" TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	prompt_id UUID NOT NULL REFERENCES prompts (id),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_prompt_voices_prompt_id ON prompt_voices (prompt_id)`,
	}
)

const selectPromptVoice = `
SELECT v.id, v.name, v.description, v.type, v.label, v."key", v.created_at, v.updated_at,
	p.id, p.name, p.type, p.prompt, p.tags, p.created_at, p.updated_at
FROM prompt_voices v
JOIN prompts p ON p.id = v.prompt_id
WHERE v.id = $1`

type PromptVoiceRepository struct {
	db *DB
}

func NewPromptVoiceRepository(db *DB) repository.PromptVoiceRepository {
	return &PromptVoiceRepository{db: db}
}

func (r *PromptVoiceRepository) Init(ctx context.Context) error {
	if err := r.db.exec(ctx, r.db.ddl(createPromptVoicesSQLite, createPromptVoicesPostgres)); err != nil {
		return fmt.Errorf("create prompt_voices table: %w", err)
	}
	return nil
}

func (r *PromptVoiceRepository) Create(ctx context.Context, voice *domain.PromptVoice) (*domain.PromptVoice, error) {
	if voice.ID == "" {
		voice.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	voice.CreatedAt = now
	voice.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin prompt voice tx: %w", err)
	}
	defer tx.Rollback()

	// the referenced prompt stays locked until commit on postgres
	lock := ""
	if r.db.Dialect == Postgres {
		lock = " FOR SHARE"
	}
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM prompts WHERE id = $1`+lock, voice.Prompt.ID).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, repository.ErrReferenceMissing
	case err != nil:
		return nil, fmt.Errorf("check prompt reference: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO prompt_voices (id, name, type, label, "key", description, prompt_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		voice.ID,
		voice.Name,
		voice.Type,
		voice.Label,
		voice.Key,
		voice.Description,
		voice.Prompt.ID,
		voice.CreatedAt,
		voice.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert prompt voice: %w", err)
	}

	created, err := scanPromptVoice(tx.QueryRowContext(ctx, selectPromptVoice, voice.ID))
	if err != nil {
		return nil, fmt.Errorf("load created prompt voice: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit prompt voice: %w", err)
	}
	return created, nil
}

func (r *PromptVoiceRepository) GetByID(ctx context.Context, id string) (*domain.PromptVoice, error) {
	return scanPromptVoice(r.db.QueryRowContext(ctx, selectPromptVoice, id))
}

func scanPromptVoice(row rowScanner) (*domain.PromptVoice, error) {
	var (
		voice domain.PromptVoice
		typ   string
	)
	if err := row.Scan(
		&voice.ID,
		&voice.Name,
		&voice.Description,
		&voice.Type,
		&voice.Label,
		&voice.Key,
		timestamp{&voice.CreatedAt},
		timestamp{&voice.UpdatedAt},
		&voice.Prompt.ID,
		&voice.Prompt.Name,
		&typ,
		&voice.Prompt.Prompt,
		tags{&voice.Prompt.Tags},
		timestamp{&voice.Prompt.CreatedAt},
		timestamp{&voice.Prompt.UpdatedAt},
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan prompt voice: %w", err)
	}
	voice.Prompt.Type = domain.PromptType(typ)
	return &voice, nil
}
