package service

import (
	"context"
	"errors"
	"sync"

	"buddy-server/internal/apperr"
	"buddy-server/internal/auth"
	"buddy-server/internal/domain"
	"buddy-server/internal/logging"
	"buddy-server/internal/repository"
	"buddy-server/internal/schema"
)

const invalidCredentials = "Invalid email or password"

// UserService describes user lifecycle operations. Returned users never carry
// the password hash.
type UserService interface {
	Create(ctx context.Context, in schema.UserCreate) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Login(ctx context.Context, in schema.UserLogin) (*domain.AuthToken, error)
}

type userService struct {
	users  repository.UserRepository
	tokens *auth.Issuer
	log    logging.Logger

	// compared against when the email is unknown so both failures cost the same
	dummyHash func() (string, error)
}

func NewUserService(users repository.UserRepository, tokens *auth.Issuer, log logging.Logger) UserService {
	return &userService{
		users:     users,
		tokens:    tokens,
		log:       log.With(logging.Fields{"entity": entityUser}),
		dummyHash: sync.OnceValues(func() (string, error) { return auth.HashPassword("buddy-dummy-password") }),
	}
}

func (s *userService) Create(ctx context.Context, in schema.UserCreate) (*domain.User, error) {
	if err := schema.Validate(in); err != nil {
		return nil, fail(ctx, s.log, err, entityUser, opCreation)
	}

	user, err := logging.After(ctx, s.log, "User created successfully", true, func() (*domain.User, error) {
		hash, err := auth.HashPassword(in.Password.Value())
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperr.Validation("Field 'password' must be at most 72 bytes long", "password", nil)
		}
		if err != nil {
			return nil, apperr.App("Error during creation", err)
		}
		created, err := s.users.Create(ctx, &domain.User{
			FirstName: in.FirstName,
			FullName:  in.FullName,
			Email:     in.Email,
			Password:  domain.NewRedacted(hash),
			Type:      in.Type,
		})
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Creation(entityUser, "Failed to create User", err)
		}
		if err != nil {
			return nil, err
		}
		if err := schema.Validate(*created); err != nil {
			return nil, apperr.Creation(entityUser, "Failed to create User", err)
		}
		sanitized := created.Sanitized()
		return &sanitized, nil
	})
	if err != nil {
		return nil, fail(ctx, s.log, err, entityUser, opCreation)
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	if _, err := schema.ID(id); err != nil {
		return nil, fail(ctx, s.log, err, entityUser, opLookup)
	}

	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fail(ctx, s.log, apperr.NotFound(entityUser, id), entityUser, opLookup)
	}
	if err != nil {
		return nil, fail(ctx, s.log, err, entityUser, opLookup)
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

func (s *userService) Login(ctx context.Context, in schema.UserLogin) (*domain.AuthToken, error) {
	if err := schema.Validate(in); err != nil {
		return nil, fail(ctx, s.log, err, entityUser, opLogin)
	}

	token, err := s.login(ctx, in)
	if err != nil {
		return nil, fail(ctx, s.log, err, entityUser, opLogin)
	}
	logging.ForContext(ctx, s.log).Info("User logged in", logging.Fields{"user_id": token.User.ID})
	return token, nil
}

func (s *userService) login(ctx context.Context, in schema.UserLogin) (*domain.AuthToken, error) {
	user, err := s.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		if hash, hashErr := s.dummyHash(); hashErr == nil {
			_ = auth.CheckPassword(hash, in.Password.Value())
		}
		return nil, apperr.Unauthorized(invalidCredentials, nil)
	}
	if err != nil {
		return nil, err
	}

	switch err := auth.CheckPassword(user.Password.Value(), in.Password.Value()); {
	case errors.Is(err, auth.ErrPasswordMismatch):
		return nil, apperr.Unauthorized(invalidCredentials, nil)
	case err != nil:
		return nil, apperr.Unauthorized(invalidCredentials, err)
	}

	signed, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.App("Error during login", err)
	}
	return &domain.AuthToken{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      user.Sanitized(),
	}, nil
}
