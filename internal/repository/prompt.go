package repository

import (
	"context"

	"buddy-server/internal/domain"
)

// PromptRepository exposes persistence operations for prompts.
type PromptRepository interface {
	Init(ctx context.Context) error
	// Create inserts prompt and returns the stored row.
	Create(ctx context.Context, prompt *domain.Prompt) (*domain.Prompt, error)
	GetByID(ctx context.Context, id string) (*domain.Prompt, error)
}

// PromptVoiceRepository persists prompt voices together with their prompt
// reference.
type PromptVoiceRepository interface {
	Init(ctx context.Context) error
	// Create checks that voice.Prompt.ID exists, inserts the voice and
	// returns it joined with its prompt, all in one transaction. It returns
	// ErrReferenceMissing without inserting when the prompt is absent.
	Create(ctx context.Context, voice *domain.PromptVoice) (*domain.PromptVoice, error)
	GetByID(ctx context.Context, id string) (*domain.PromptVoice, error)
}
