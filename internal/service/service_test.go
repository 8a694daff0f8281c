package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buddy-server/internal/apperr"
	"buddy-server/internal/auth"
	"buddy-server/internal/domain"
	"buddy-server/internal/logging"
	"buddy-server/internal/repository"
	"buddy-server/internal/repository/sqlstore"
	"buddy-server/internal/schema"
)

type fixture struct {
	db      *sqlstore.DB
	prompts PromptService
	voices  PromptVoiceService
	users   UserService
	store   *fakeStorage
	hook    *test.Hook
}

func newFixture(t *testing.T, export ExportOptions) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := sqlstore.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Init(ctx))

	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	log := logging.FromLogrus(base)

	store := &fakeStorage{}
	return &fixture{
		db:      db,
		prompts: NewPromptService(sqlstore.NewPromptRepository(db), store, export, log),
		voices:  NewPromptVoiceService(sqlstore.NewPromptVoiceRepository(db), log),
		users:   NewUserService(sqlstore.NewUserRepository(db), auth.NewIssuer("secret", 24*time.Hour), log),
		store:   store,
		hook:    hook,
	}
}

type fakeStorage struct {
	bucket, key string
	doc         any
	err         error
}

func (f *fakeStorage) PutJSON(_ context.Context, bucket, key string, v any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.bucket, f.key, f.doc = bucket, key, v
	return "s3://" + bucket + "/" + key, nil
}

func (f *fakeStorage) ObjectURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://example.com/" + bucket + "/" + key, nil
}

func requireKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok, "expected classified error, got %T: %v", err, err)
	require.Equal(t, kind, e.Kind, e.Message)
	return e
}

func greeter() schema.PromptCreate {
	return schema.PromptCreate{
		Name:   "Greeter",
		Type:   domain.PromptTypeTemplate,
		Prompt: "Hello {{name}}, your {{item}} is ready",
		Tags:   []string{"greeting"},
	}
}

func TestPromptService_CreateThenGet(t *testing.T) {
	f := newFixture(t, ExportOptions{})
	ctx := context.Background()

	created, err := f.prompts.Create(ctx, greeter())
	require.NoError(t, err)
	assert.Equal(t, "Greeter", created.Name)
	assert.Equal(t, "Prompt created successfully", f.hook.LastEntry().Message)

	got, err := f.prompts.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Type, got.Type)
	assert.Equal(t, created.Prompt, got.Prompt)
	assert.Equal(t, created.Tags, got.Tags)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestPromptService_CreateRejectsInvalidPayload(t *testing.T) {
	f := newFixture(t, ExportOptions{})
	in := greeter()
	in.Type = "tool"

	_, err := f.prompts.Create(context.Background(), in)

	e := requireKind(t, err, apperr.KindValidation)
	assert.Equal(t, "type", e.Field)
	assert.Equal(t, logrus.WarnLevel, f.hook.LastEntry().Level)
}

func TestPromptService_GetMissing(t *testing.T) {
	f := newFixture(t, ExportOptions{})
	id := uuid.NewString()

	_, err := f.prompts.Get(context.Background(), id)

	e := requireKind(t, err, apperr.KindNotFound)
	assert.Equal(t, id, e.EntityID)
	assert.Equal(t, "Not Found: Prompt with ID "+id+" not found", apperr.Format(err))

	_, err = f.prompts.Get(context.Background(), "42")
	requireKind(t, err, apperr.KindValidation)
}

func TestPromptService_Render(t *testing.T) {
	f := newFixture(t, ExportOptions{})
	ctx := context.Background()
	created, err := f.prompts.Create(ctx, greeter())
	require.NoError(t, err)

	out, err := f.prompts.Render(ctx, created.ID, map[string]string{"name": "Ada"})

	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, your {{item}} is ready", out.Text)
	assert.Equal(t, []string{"name", "item"}, out.Variables)
}

func TestPromptService_Export(t *testing.T) {
	ctx := context.Background()

	disabled := newFixture(t, ExportOptions{})
	created, err := disabled.prompts.Create(ctx, greeter())
	require.NoError(t, err)
	_, err = disabled.prompts.Export(ctx, created.ID)
	requireKind(t, err, apperr.KindValidation)

	f := newFixture(t, ExportOptions{Bucket: "exports", KeyPrefix: "prompts/", URLExpiry: time.Hour})
	created, err = f.prompts.Create(ctx, greeter())
	require.NoError(t, err)

	out, err := f.prompts.Export(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "s3://exports/prompts/"+created.ID+".json", out.Location)
	assert.Equal(t, "https://example.com/exports/prompts/"+created.ID+".json", out.URL)
	assert.WithinDuration(t, time.Now().Add(time.Hour), out.ExpiresAt, time.Minute)
	doc, ok := f.store.doc.(promptDocument)
	require.True(t, ok)
	assert.Equal(t, []string{"name", "item"}, doc.Variables)

	_, first := disabled.prompts.Export(ctx, created.ID)
	_, second := disabled.prompts.Export(ctx, created.ID)
	assert.NotSame(t, first, second)

	f.store.err = errors.New("access denied")
	_, err = f.prompts.Export(ctx, created.ID)
	e := requireKind(t, err, apperr.KindApp)
	assert.Equal(t, "Application Error: Failed to export Prompt", apperr.Format(e))
}

// emptyInsertPrompts stands in for a store whose insert yields no row.
type emptyInsertPrompts struct {
	repository.PromptRepository
}

func (emptyInsertPrompts) Create(context.Context, *domain.Prompt) (*domain.Prompt, error) {
	return nil, fmt.Errorf("insert prompt returned no row: %w", repository.ErrNotFound)
}

type emptyInsertUsers struct {
	repository.UserRepository
}

func (emptyInsertUsers) Create(context.Context, *domain.User) (*domain.User, error) {
	return nil, fmt.Errorf("insert user returned no row: %w", repository.ErrNotFound)
}

func TestCreate_NoRowReturnedIsCreationError(t *testing.T) {
	log := logging.FromLogrus(logrus.New())
	ctx := context.Background()

	prompts := NewPromptService(emptyInsertPrompts{}, nil, ExportOptions{}, log)
	_, err := prompts.Create(ctx, greeter())
	requireKind(t, err, apperr.KindCreation)
	assert.Equal(t, "Creation Error: Failed to create Prompt", apperr.Format(err))
	assert.Equal(t, 500, apperr.HTTPStatus(err))

	users := NewUserService(emptyInsertUsers{}, auth.NewIssuer("secret", time.Hour), log)
	_, err = users.Create(ctx, ada())
	requireKind(t, err, apperr.KindCreation)
	assert.Equal(t, "Creation Error: Failed to create User", apperr.Format(err))
}

func TestPromptVoiceService(t *testing.T) {
	f := newFixture(t, ExportOptions{})
	ctx := context.Background()
	prompt, err := f.prompts.Create(ctx, greeter())
	require.NoError(t, err)

	created, err := f.voices.Create(ctx, schema.PromptVoiceCreate{
		Name:   "Narrator",
		Type:   "tts",
		Label:  "Calm",
		Key:    "calm",
		Prompt: schema.PromptRef{ID: prompt.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, prompt.ID, created.Prompt.ID)
	assert.Equal(t, domain.DefaultVoiceDescription, created.DisplayDescription())

	got, err := f.voices.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Narrator", got.Name)
	assert.Equal(t, "Greeter", got.Prompt.Name)

	_, err = f.voices.Get(ctx, uuid.NewString())
	requireKind(t, err, apperr.KindNotFound)
}

func TestPromptVoiceService_MissingPromptDoesNotInsert(t *testing.T) {
	f := newFixture(t, ExportOptions{})
	ctx := context.Background()
	missing := uuid.NewString()

	_, err := f.voices.Create(ctx, schema.PromptVoiceCreate{
		Name:   "Orphan",
		Type:   "tts",
		Label:  "x",
		Key:    "x",
		Prompt: schema.PromptRef{ID: missing},
	})

	e := requireKind(t, err, apperr.KindValidation)
	assert.Equal(t, "prompt.id", e.Field)
	assert.Contains(t, e.Message, missing)

	var count int
	require.NoError(t, f.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prompt_voices`).Scan(&count))
	assert.Zero(t, count)
}

func ada() schema.UserCreate {
	return schema.UserCreate{
		FirstName: "Ada",
		FullName:  "Ada Lovelace",
		Email:     "ada@example.com",
		Password:  domain.NewRedacted("correct horse"),
		Type:      domain.UserTypeUser,
	}
}

func TestUserService_CreateAndGet(t *testing.T) {
	f := newFixture(t, ExportOptions{})
	ctx := context.Background()

	created, err := f.users.Create(ctx, ada())
	require.NoError(t, err)
	assert.True(t, created.Password.IsEmpty())

	got, err := f.users.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.True(t, got.Password.IsEmpty())

	for _, entry := range f.hook.AllEntries() {
		line, err := entry.String()
		require.NoError(t, err)
		assert.NotContains(t, line, "correct horse")
	}
}

func TestUserService_DuplicateEmail(t *testing.T) {
	f := newFixture(t, ExportOptions{})
	ctx := context.Background()

	first, err := f.users.Create(ctx, ada())
	require.NoError(t, err)

	dup := ada()
	dup.FullName = "Someone Else"
	_, err = f.users.Create(ctx, dup)

	e := requireKind(t, err, apperr.KindValidation)
	assert.Equal(t, "A User with these details already exists", e.Message)

	kept, err := f.users.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", kept.FullName)
}

func TestUserService_PasswordTooLongForHash(t *testing.T) {
	f := newFixture(t, ExportOptions{})
	in := ada()
	// 40 runes passes the length rule but is 80 bytes
	in.Password = domain.NewRedacted(strings.Repeat("é", 40))

	_, err := f.users.Create(context.Background(), in)

	e := requireKind(t, err, apperr.KindValidation)
	assert.Equal(t, "password", e.Field)
	assert.Equal(t, 400, apperr.HTTPStatus(err))
}

func TestUserService_Login(t *testing.T) {
	f := newFixture(t, ExportOptions{})
	ctx := context.Background()
	created, err := f.users.Create(ctx, ada())
	require.NoError(t, err)

	token, err := f.users.Login(ctx, schema.UserLogin{Email: "ada@example.com", Password: domain.NewRedacted("correct horse")})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, created.ID, token.User.ID)
	assert.True(t, token.User.Password.IsEmpty())
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), token.ExpiresAt, time.Minute)

	_, wrongPassword := f.users.Login(ctx, schema.UserLogin{Email: "ada@example.com", Password: domain.NewRedacted("battery staple")})
	_, unknownEmail := f.users.Login(ctx, schema.UserLogin{Email: "nobody@example.com", Password: domain.NewRedacted("correct horse")})

	requireKind(t, wrongPassword, apperr.KindUnauthorized)
	requireKind(t, unknownEmail, apperr.KindUnauthorized)
	assert.Equal(t, apperr.Format(wrongPassword), apperr.Format(unknownEmail))
	assert.Equal(t, "Unauthorized: Invalid email or password", apperr.Format(unknownEmail))
}
