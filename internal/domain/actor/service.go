package actor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, a *Actor) error {
	if a.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !a.Role.Valid() {
		return fmt.Errorf("invalid role: %s", a.Role)
	}
	if err := validateScope(a); err != nil {
		return err
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Actor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, a *Actor) error {
	if !a.Role.Valid() {
		return fmt.Errorf("invalid role: %s", a.Role)
	}
	if err := validateScope(a); err != nil {
		return err
	}
	return s.repo.Update(ctx, a)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Actor, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// validateScope checks that the geographic scope required by the role is
// present. Actors are registered by admins; a manager without a scope cannot
// receive its digests, so reject it up front.
func validateScope(a *Actor) error {
	switch a.Role {
	case RoleEHP, RoleCaseInvestigator:
		if a.FacilityCode == "" {
			return fmt.Errorf("%s requires a facility_code", a.Role)
		}
	case RoleDistrictManager:
		if a.District == "" {
			return fmt.Errorf("%s requires a district", a.Role)
		}
	case RoleProvincialManager:
		if a.Province == "" {
			return fmt.Errorf("%s requires a province", a.Role)
		}
	case RoleNationalManager:
		// National scope, no geography.
	case RoleMIS:
		if a.Province == "" && a.FacilityCode == "" {
			return fmt.Errorf("%s requires a province or facility_code", a.Role)
		}
	}
	return nil
}
