package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buddy-server/internal/apperr"
	"buddy-server/internal/config"
	"buddy-server/internal/domain"
	"buddy-server/internal/repository"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Init(ctx))
	return db
}

func newPrompt(name string) *domain.Prompt {
	return &domain.Prompt{
		Name:   name,
		Type:   domain.PromptTypeTemplate,
		Prompt: "Hello {{name}}",
		Tags:   []string{"greeting", "demo"},
	}
}

func TestOpen_CreatesDirectoryAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "buddy.db")

	db, err := Open(ctx, config.Database{Driver: config.DriverSQLite, Path: path})
	require.NoError(t, err)
	require.NoError(t, db.Init(ctx))
	require.NoError(t, db.Init(ctx))
	require.NoError(t, db.Close())

	_, err = Open(ctx, config.Database{Driver: "oracle"})
	assert.Error(t, err)
}

func TestPromptRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewPromptRepository(newTestDB(t))

	created, err := repo.Create(ctx, newPrompt("Greeter"))
	require.NoError(t, err)
	_, err = uuid.Parse(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Greeter", created.Name)
	assert.Equal(t, domain.PromptTypeTemplate, created.Type)
	assert.Equal(t, []string{"greeting", "demo"}, created.Tags)
	assert.False(t, created.CreatedAt.IsZero())
	assert.WithinDuration(t, time.Now(), created.CreatedAt, time.Minute)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Tags, got.Tags)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestPromptRepository_EmptyTags(t *testing.T) {
	ctx := context.Background()
	repo := NewPromptRepository(newTestDB(t))

	p := newPrompt("Bare")
	p.Tags = nil
	created, err := repo.Create(ctx, p)
	require.NoError(t, err)
	assert.NotNil(t, created.Tags)
	assert.Empty(t, created.Tags)
}

func TestPromptRepository_Missing(t *testing.T) {
	ctx := context.Background()
	repo := NewPromptRepository(newTestDB(t))
	id := uuid.NewString()

	_, err := repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPromptRepository_CheckConstraint(t *testing.T) {
	ctx := context.Background()
	repo := NewPromptRepository(newTestDB(t))

	p := newPrompt("Tool")
	p.Type = "tool"
	_, err := repo.Create(ctx, p)
	require.Error(t, err)

	code, ok := apperr.SQLState(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeCheckViolation, code)
}

func TestPromptVoiceRepository_Create(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	prompts := NewPromptRepository(db)
	voices := NewPromptVoiceRepository(db)

	prompt, err := prompts.Create(ctx, newPrompt("Narration"))
	require.NoError(t, err)

	created, err := voices.Create(ctx, &domain.PromptVoice{
		Name:   "Narrator",
		Type:   "tts",
		Label:  "Calm",
		Key:    "calm",
		Prompt: domain.Prompt{ID: prompt.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Narrator", created.Name)
	assert.Equal(t, "", created.Description)
	assert.Equal(t, prompt.ID, created.Prompt.ID)
	assert.Equal(t, "Narration", created.Prompt.Name)
	assert.Equal(t, prompt.Tags, created.Prompt.Tags)

	got, err := voices.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "calm", got.Key)
	assert.Equal(t, prompt.Prompt, got.Prompt.Prompt)
}

func TestPromptVoiceRepository_MissingPrompt(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	voices := NewPromptVoiceRepository(db)

	_, err := voices.Create(ctx, &domain.PromptVoice{
		Name:   "Orphan",
		Type:   "tts",
		Label:  "x",
		Key:    "x",
		Prompt: domain.Prompt{ID: uuid.NewString()},
	})
	assert.ErrorIs(t, err, repository.ErrReferenceMissing)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prompt_voices`).Scan(&count))
	assert.Zero(t, count)

	_, err = voices.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPromptVoiceRepository_ForeignKeyEnforced(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.ExecContext(ctx, `
INSERT INTO prompt_voices (id, name, type, label, "key", description, prompt_id, created_at, updated_at)
VALUES ($1, 'n', 't', 'l', 'k', '', $2, $3, $3)`, uuid.NewString(), uuid.NewString(), time.Now().UTC())
	require.Error(t, err)

	code, ok := apperr.SQLState(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeForeignKeyViolation, code)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	created, err := repo.Create(ctx, &domain.User{
		FirstName: "Ada",
		FullName:  "Ada Lovelace",
		Email:     "ada@example.com",
		Password:  domain.NewRedacted("hash"),
		Type:      domain.UserTypeAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "hash", created.Password.Value())
	assert.Equal(t, domain.UserTypeAdmin, created.Type)

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", byID.FullName)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.Create(ctx, &domain.User{
		FirstName: "Ada",
		FullName:  "Ada Again",
		Email:     "ada@example.com",
		Password:  domain.NewRedacted("hash"),
		Type:      domain.UserTypeUser,
	})
	require.Error(t, err)
	code, ok := apperr.SQLState(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeUniqueViolation, code)
}

func TestTimestamp_Scan(t *testing.T) {
	var got time.Time
	ts := timestamp{&got}

	require.NoError(t, ts.Scan("2023-01-15 12:30:00.5+02:00"))
	assert.Equal(t, time.Date(2023, 1, 15, 10, 30, 0, 5e8, time.UTC), got)

	require.NoError(t, ts.Scan([]byte("2023-01-15T12:30:00Z")))
	assert.Equal(t, time.Date(2023, 1, 15, 12, 30, 0, 0, time.UTC), got)

	assert.Error(t, ts.Scan("yesterday"))
	assert.Error(t, ts.Scan(42))
}
