package actor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Actor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Actor, error)
	Update(ctx context.Context, a *Actor) error
	List(ctx context.Context, limit, offset int) ([]*Actor, int, error)

	// Role-scoped queries used by the dispatcher and digest compiler.
	ListByRole(ctx context.Context, role Role) ([]*Actor, error)
	ListByRoleAndFacility(ctx context.Context, role Role, facilityCode string) ([]*Actor, error)
	ListByRoleAndProvinces(ctx context.Context, role Role, provinces []string) ([]*Actor, error)
}
