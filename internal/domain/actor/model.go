package actor

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies what an actor does in the reporting chain. The set is
// closed; switches over Role must be exhaustive.
type Role string

const (
	RoleEHP                Role = "EHP"
	RoleCaseInvestigator   Role = "CASE_INVESTIGATOR"
	RoleDistrictManager    Role = "MANAGER_DISTRICT"
	RoleProvincialManager  Role = "MANAGER_PROVINCIAL"
	RoleNationalManager    Role = "MANAGER_NATIONAL"
	RoleMIS                Role = "MIS"
)

// Roles lists every valid role.
var Roles = []Role{
	RoleEHP,
	RoleCaseInvestigator,
	RoleDistrictManager,
	RoleProvincialManager,
	RoleNationalManager,
	RoleMIS,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleEHP, RoleCaseInvestigator, RoleDistrictManager,
		RoleProvincialManager, RoleNationalManager, RoleMIS:
		return true
	}
	return false
}

// Actor maps to the actor table. Which scope field is meaningful depends on
// the role: facility code for EHPs and case investigators, district for
// district managers, province for provincial managers, nothing for national
// managers, province or facility code for MIS contacts.
type Actor struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	EmailAddress string    `db:"email_address" json:"email_address,omitempty"`
	PhoneNumber  string    `db:"phone_number" json:"phone_number,omitempty"`
	Role         Role      `db:"role" json:"role"`
	FacilityCode string    `db:"facility_code" json:"facility_code,omitempty"`
	Province     string    `db:"province" json:"province,omitempty"`
	District     string    `db:"district" json:"district,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (a *Actor) String() string {
	return fmt.Sprintf("%s (%s)", a.Name, a.Role)
}
