package repository

import (
	"context"

	"buddy-server/internal/domain"
)

// UserRepository defines persistence operations for User entities. The
// Password of stored users holds the password hash.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
