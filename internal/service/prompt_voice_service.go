package service

import (
	"context"
	"errors"
	"fmt"

	"buddy-server/internal/apperr"
	"buddy-server/internal/domain"
	"buddy-server/internal/logging"
	"buddy-server/internal/repository"
	"buddy-server/internal/schema"
)

// PromptVoiceService creates and reads prompt voices.
type PromptVoiceService interface {
	Create(ctx context.Context, in schema.PromptVoiceCreate) (*domain.PromptVoice, error)
	Get(ctx context.Context, id string) (*domain.PromptVoice, error)
}

type promptVoiceService struct {
	voices repository.PromptVoiceRepository
	log    logging.Logger
}

func NewPromptVoiceService(voices repository.PromptVoiceRepository, log logging.Logger) PromptVoiceService {
	return &promptVoiceService{
		voices: voices,
		log:    log.With(logging.Fields{"entity": entityPromptVoice}),
	}
}

func (s *promptVoiceService) Create(ctx context.Context, in schema.PromptVoiceCreate) (*domain.PromptVoice, error) {
	if err := schema.Validate(in); err != nil {
		return nil, fail(ctx, s.log, err, entityPromptVoice, opCreation)
	}

	voice, err := logging.After(ctx, s.log, "PromptVoice created successfully", true, func() (*domain.PromptVoice, error) {
		created, err := s.voices.Create(ctx, &domain.PromptVoice{
			Name:        in.Name,
			Description: in.Description,
			Type:        in.Type,
			Label:       in.Label,
			Key:         in.Key,
			Prompt:      domain.Prompt{ID: in.Prompt.ID},
		})
		switch {
		case errors.Is(err, repository.ErrReferenceMissing):
			return nil, apperr.Validation(
				fmt.Sprintf("Prompt with ID %s does not exist", in.Prompt.ID),
				"prompt.id",
				in.Prompt.ID,
			)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.Creation(entityPromptVoice, "Failed to create PromptVoice", err)
		case err != nil:
			return nil, err
		}
		if err := schema.Validate(*created); err != nil {
			return nil, apperr.Creation(entityPromptVoice, "Failed to create PromptVoice", err)
		}
		return created, nil
	})
	if err != nil {
		return nil, fail(ctx, s.log, err, entityPromptVoice, opCreation)
	}
	return voice, nil
}

func (s *promptVoiceService) Get(ctx context.Context, id string) (*domain.PromptVoice, error) {
	if _, err := schema.ID(id); err != nil {
		return nil, fail(ctx, s.log, err, entityPromptVoice, opLookup)
	}

	voice, err := s.voices.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fail(ctx, s.log, apperr.NotFound(entityPromptVoice, id), entityPromptVoice, opLookup)
	}
	if err != nil {
		return nil, fail(ctx, s.log, err, entityPromptVoice, opLookup)
	}
	return voice, nil
}
