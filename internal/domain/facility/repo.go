package facility

import "context"

type Repository interface {
	Create(ctx context.Context, f *Facility) error
	ListByCode(ctx context.Context, code string) ([]*Facility, error)
	List(ctx context.Context, limit, offset int) ([]*Facility, int, error)
	ExistsExact(ctx context.Context, f *Facility) (bool, error)
}
