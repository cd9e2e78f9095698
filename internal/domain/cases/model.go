package cases

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReportedCase maps to the reported_case table. A row is created by the Ona
// sync (or directly for testing) and afterwards only accumulates digest
// claims, notified practitioners and the jembi_alert_sent flag.
type ReportedCase struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	FirstName           string     `db:"first_name" json:"first_name"`
	LastName            string     `db:"last_name" json:"last_name"`
	Locality            string     `db:"locality" json:"locality"`
	DateOfBirth         string     `db:"date_of_birth" json:"date_of_birth"`
	CreateDateTime      time.Time  `db:"create_date_time" json:"create_date_time"`
	SAIDNumber          string     `db:"sa_id_number" json:"sa_id_number,omitempty"`
	MSISDN              string     `db:"msisdn" json:"msisdn"`
	IDType              string     `db:"id_type" json:"id_type"`
	Abroad              string     `db:"abroad" json:"abroad"`
	ReportedBy          string     `db:"reported_by" json:"reported_by"`
	Gender              string     `db:"gender" json:"gender"`
	FacilityCode        string     `db:"facility_code" json:"facility_code"`
	Landmark            string     `db:"landmark" json:"landmark,omitempty"`
	LandmarkDescription string     `db:"landmark_description" json:"landmark_description,omitempty"`
	CaseNumber          string     `db:"case_number" json:"case_number"`
	OnaID               int64      `db:"ona_id" json:"ona_id"`
	OnaUUID             string     `db:"ona_uuid" json:"ona_uuid"`
	OnaFormIDString     string     `db:"ona_form_id_string" json:"ona_form_id_string"`
	FormID              *uuid.UUID `db:"form_id" json:"form_id,omitempty"`
	DigestID            *uuid.UUID `db:"digest_id" json:"digest_id,omitempty"`
	NationalDigestID    *uuid.UUID `db:"national_digest_id" json:"national_digest_id,omitempty"`
	ProvincialDigestID  *uuid.UUID `db:"provincial_digest_id" json:"provincial_digest_id,omitempty"`
	DistrictDigestID    *uuid.UUID `db:"district_digest_id" json:"district_digest_id,omitempty"`
	JembiAlertSent      bool       `db:"jembi_alert_sent" json:"jembi_alert_sent"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// Date-of-birth formats accepted in the historical data. Anything else is a
// data-quality bug and surfaces as a hard error.
var dobLayouts = []string{"2006-01-02", "060102"}

// ParseDateOfBirth parses either accepted date-of-birth format.
func ParseDateOfBirth(dob string) (time.Time, error) {
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, dob); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed date of birth %q", dob)
}

// AgeAt computes the subject's age in whole years at the given instant, as
// days since birth divided by 365 with integer truncation.
func (c *ReportedCase) AgeAt(now time.Time) (int, error) {
	dob, err := ParseDateOfBirth(c.DateOfBirth)
	if err != nil {
		return 0, err
	}
	days := int(now.Sub(dob).Hours() / 24)
	return days / 365, nil
}

// Age computes the subject's current age.
func (c *ReportedCase) Age() (int, error) {
	return c.AgeAt(time.Now())
}

// FormatCaseNumber builds the immutable case number assigned at creation:
// the facility code, the report date and a per-facility per-day sequence.
func FormatCaseNumber(facilityCode string, day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%d", facilityCode, day.Format("20060102"), seq)
}

// DigestLevel selects which of the four digest claim columns an operation
// applies to.
type DigestLevel int

const (
	LevelLegacy DigestLevel = iota
	LevelDistrict
	LevelProvincial
	LevelNational
)

func (l DigestLevel) String() string {
	switch l {
	case LevelLegacy:
		return "legacy"
	case LevelDistrict:
		return "district"
	case LevelProvincial:
		return "provincial"
	case LevelNational:
		return "national"
	}
	return "unknown"
}
