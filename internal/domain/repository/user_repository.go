package repository

import (
	"context"
	"errors"

	"medicare-backend/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrDuplicateEmail is returned by Create when the email is already taken.
var ErrDuplicateEmail = errors.New("email already in use")

// UserFilter narrows user listings for the admin views
type UserFilter struct {
	Role   string
	Status string
	Search string
	Page   int
	Limit  int
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]entity.User, int64, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}
