package domain

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	CountByRole(ctx context.Context, role Role) (int, error)
	ListByInstitution(ctx context.Context, institutionID uuid.UUID, role Role, limit, offset int) ([]User, int, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// UserFinder is the read-only view other modules depend on
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
}
