package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/malariaconnect/api/internal/domain/cases"
)

// Digest is a point-in-time snapshot row. One row per level per compiler
// run; the claimed cases point back at it through their level's claim
// column.
type Digest struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// travelCountries is the fixed list of countries broken out individually in
// the travel-history stats. Anything else lands in "other".
var travelCountries = []string{
	"Mozambique", "Zimbabwe", "Malawi", "Zambia", "Botswana", "Eswatini",
}

// Stats holds the grouped counts reported for a set of cases.
type Stats struct {
	Total       int
	Females     int
	Males       int
	Under5      int
	FiveAndOver int
	Travel      map[string]int
	OtherTravel int
	NoTravel    int
}

// Group is one geography bucket within a digest.
type Group struct {
	Name  string
	Stats Stats
}

// Data is everything a digest email needs.
type Data struct {
	Title  string
	Week   string
	Groups []Group
	Totals Stats
}

// computeStats counts a set of cases. Female is a case-insensitive
// substring match on "f"; male is the complement. A malformed date of birth
// is a hard error.
func computeStats(cs []*cases.ReportedCase, now time.Time) (Stats, error) {
	s := Stats{Travel: make(map[string]int)}
	for _, c := range cs {
		s.Total++
		if strings.Contains(strings.ToLower(c.Gender), "f") {
			s.Females++
		} else {
			s.Males++
		}

		age, err := c.AgeAt(now)
		if err != nil {
			return Stats{}, err
		}
		if age < 5 {
			s.Under5++
		} else {
			s.FiveAndOver++
		}

		countTravel(&s, c.Abroad)
	}
	return s, nil
}

func countTravel(s *Stats, abroad string) {
	trimmed := strings.TrimSpace(abroad)
	for _, country := range travelCountries {
		if strings.EqualFold(trimmed, country) {
			s.Travel[country]++
			return
		}
	}
	if strings.Contains(strings.ToLower(trimmed), "no") {
		s.NoTravel++
		return
	}
	s.OtherTravel++
}

// weekLabel derives the reporting range from the min/max create_date_time
// of the included cases, falling back to the ISO week of now.
func weekLabel(cs []*cases.ReportedCase, now time.Time) string {
	if len(cs) == 0 {
		year, week := now.ISOWeek()
		return fmt.Sprintf("Week %d of %d", week, year)
	}
	min, max := cs[0].CreateDateTime, cs[0].CreateDateTime
	for _, c := range cs[1:] {
		if c.CreateDateTime.Before(min) {
			min = c.CreateDateTime
		}
		if c.CreateDateTime.After(max) {
			max = c.CreateDateTime
		}
	}
	return min.Format("2 January 2006") + " - " + max.Format("2 January 2006")
}
