package facility

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Facility maps to the facility table. Reference data imported in bulk from
// the national facility register; several rows may share one facility code.
type Facility struct {
	ID           uuid.UUID `db:"id" json:"id"`
	FacilityCode string    `db:"facility_code" json:"facility_code"`
	FacilityName string    `db:"facility_name" json:"facility_name"`
	Province     string    `db:"province" json:"province"`
	District     string    `db:"district" json:"district"`
	Subdistrict  string    `db:"subdistrict" json:"subdistrict"`
	Phase        string    `db:"phase" json:"phase"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Unknown is the display value used when no facility row matches a code.
const Unknown = "Unknown"

// JoinAttr joins a non-empty attribute across facility rows, falling back to
// Unknown when every row has it blank.
func JoinAttr(facilities []*Facility, attr func(*Facility) string) string {
	var parts []string
	for _, f := range facilities {
		if v := attr(f); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return Unknown
	}
	return strings.Join(parts, ", ")
}

// Names returns the joined facility names for a set of rows.
func Names(facilities []*Facility) string {
	return JoinAttr(facilities, func(f *Facility) string { return f.FacilityName })
}

// Provinces returns the joined provinces for a set of rows.
func Provinces(facilities []*Facility) string {
	return JoinAttr(facilities, func(f *Facility) string { return f.Province })
}

// Districts returns the joined districts for a set of rows.
func Districts(facilities []*Facility) string {
	return JoinAttr(facilities, func(f *Facility) string { return f.District })
}

// Subdistricts returns the joined subdistricts for a set of rows.
func Subdistricts(facilities []*Facility) string {
	return JoinAttr(facilities, func(f *Facility) string { return f.Subdistrict })
}

// DistinctProvinces returns the de-duplicated, non-blank provinces for a set
// of rows.
func DistinctProvinces(facilities []*Facility) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range facilities {
		if f.Province == "" || seen[f.Province] {
			continue
		}
		seen[f.Province] = true
		out = append(out, f.Province)
	}
	return out
}
