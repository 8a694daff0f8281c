package service

import (
	"context"
	"errors"
	"time"

	"buddy-server/internal/apperr"
	"buddy-server/internal/domain"
	"buddy-server/internal/logging"
	"buddy-server/internal/repository"
	"buddy-server/internal/schema"
	"buddy-server/internal/storage"
)

func errExportDisabled() error {
	return apperr.Validation("prompt export is not configured", "", nil)
}

// RenderedPrompt is a prompt with its placeholders substituted.
type RenderedPrompt struct {
	Prompt    *domain.Prompt
	Text      string
	Variables []string
}

// PromptExport describes where an exported prompt was written.
type PromptExport struct {
	Location  string
	URL       string
	ExpiresAt time.Time
}

// ExportOptions configures where prompts are exported to. An empty Bucket
// disables exports.
type ExportOptions struct {
	Bucket    string
	KeyPrefix string
	URLExpiry time.Duration
}

// PromptService creates, reads, renders and exports prompts.
type PromptService interface {
	Create(ctx context.Context, in schema.PromptCreate) (*domain.Prompt, error)
	Get(ctx context.Context, id string) (*domain.Prompt, error)
	Render(ctx context.Context, id string, vars map[string]string) (*RenderedPrompt, error)
	Export(ctx context.Context, id string) (*PromptExport, error)
}

type promptService struct {
	prompts repository.PromptRepository
	store   storage.Service
	export  ExportOptions
	log     logging.Logger
	now     func() time.Time
}

// NewPromptService builds a PromptService. store may be nil when exports
// are not configured.
func NewPromptService(prompts repository.PromptRepository, store storage.Service, export ExportOptions, log logging.Logger) PromptService {
	if export.URLExpiry <= 0 {
		export.URLExpiry = 15 * time.Minute
	}
	return &promptService{
		prompts: prompts,
		store:   store,
		export:  export,
		log:     log.With(logging.Fields{"entity": entityPrompt}),
		now:     time.Now,
	}
}

func (s *promptService) Create(ctx context.Context, in schema.PromptCreate) (*domain.Prompt, error) {
	if err := schema.Validate(in); err != nil {
		return nil, fail(ctx, s.log, err, entityPrompt, opCreation)
	}

	prompt, err := logging.After(ctx, s.log, "Prompt created successfully", true, func() (*domain.Prompt, error) {
		created, err := s.prompts.Create(ctx, &domain.Prompt{
			Name:   in.Name,
			Type:   in.Type,
			Prompt: in.Prompt,
			Tags:   in.Tags,
		})
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Creation(entityPrompt, "Failed to create Prompt", err)
		}
		if err != nil {
			return nil, err
		}
		if err := schema.Validate(*created); err != nil {
			return nil, apperr.Creation(entityPrompt, "Failed to create Prompt", err)
		}
		return created, nil
	})
	if err != nil {
		return nil, fail(ctx, s.log, err, entityPrompt, opCreation)
	}
	return prompt, nil
}

func (s *promptService) Get(ctx context.Context, id string) (*domain.Prompt, error) {
	prompt, err := s.load(ctx, id)
	if err != nil {
		return nil, fail(ctx, s.log, err, entityPrompt, opLookup)
	}
	return prompt, nil
}

func (s *promptService) load(ctx context.Context, id string) (*domain.Prompt, error) {
	if _, err := schema.ID(id); err != nil {
		return nil, err
	}
	prompt, err := s.prompts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(entityPrompt, id)
	}
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(*prompt); err != nil {
		return nil, apperr.App("Stored Prompt is invalid", err)
	}
	return prompt, nil
}

func (s *promptService) Render(ctx context.Context, id string, vars map[string]string) (*RenderedPrompt, error) {
	prompt, err := s.load(ctx, id)
	if err != nil {
		return nil, fail(ctx, s.log, err, entityPrompt, opRender)
	}
	return &RenderedPrompt{
		Prompt:    prompt,
		Text:      domain.RenderTemplate(prompt.Prompt, vars),
		Variables: prompt.Variables(),
	}, nil
}

func (s *promptService) Export(ctx context.Context, id string) (*PromptExport, error) {
	if s.store == nil || s.export.Bucket == "" {
		return nil, fail(ctx, s.log, errExportDisabled(), entityPrompt, opExport)
	}

	out, err := logging.Before(ctx, s.log, "Exporting prompt", logging.Fields{"id": id, "bucket": s.export.Bucket}, func() (*PromptExport, error) {
		prompt, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}

		key := storage.ObjectKey(s.export.KeyPrefix, prompt.ID+".json")
		location, err := s.store.PutJSON(ctx, s.export.Bucket, key, exportDocument(prompt))
		if err != nil {
			return nil, apperr.App("Failed to export Prompt", err)
		}
		url, err := s.store.ObjectURL(ctx, s.export.Bucket, key, s.export.URLExpiry)
		if err != nil {
			return nil, apperr.App("Failed to sign Prompt export link", err)
		}
		return &PromptExport{
			Location:  location,
			URL:       url,
			ExpiresAt: s.now().Add(s.export.URLExpiry).UTC(),
		}, nil
	})
	if err != nil {
		return nil, fail(ctx, s.log, err, entityPrompt, opExport)
	}
	return out, nil
}

type promptDocument struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Prompt    string    `json:"prompt"`
	Tags      []string  `json:"tags"`
	Variables []string  `json:"variables"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func exportDocument(p *domain.Prompt) promptDocument {
	return promptDocument{
		ID:        p.ID,
		Name:      p.Name,
		Type:      string(p.Type),
		Prompt:    p.Prompt,
		Tags:      p.Tags,
		Variables: p.Variables(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
