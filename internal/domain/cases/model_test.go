package cases

import (
	"testing"
	"time"
)

func TestAgeAt(t *testing.T) {
	c := &ReportedCase{DateOfBirth: "1982-01-01"}
	now := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	age, err := c.AgeAt(now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if age != 33 {
		t.Errorf("expected age 33, got %d", age)
	}
}

func TestAgeAt_LegacyFormat(t *testing.T) {
	c := &ReportedCase{DateOfBirth: "820101"}
	now := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	age, err := c.AgeAt(now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if age != 33 {
		t.Errorf("expected age 33, got %d", age)
	}
}

func TestAgeAt_Malformed(t *testing.T) {
	for _, dob := range []string{"", "01-01-1982", "not-a-date", "19820101"} {
		c := &ReportedCase{DateOfBirth: dob}
		if _, err := c.AgeAt(time.Now()); err == nil {
			t.Errorf("expected error for dob %q", dob)
		}
	}
}

func TestFormatCaseNumber(t *testing.T) {
	day := time.Date(2015, 3, 9, 14, 30, 0, 0, time.UTC)
	got := FormatCaseNumber("0001", day, 2)
	if got != "0001-20150309-2" {
		t.Errorf("unexpected case number %q", got)
	}
}

func TestDigestLevelString(t *testing.T) {
	levels := map[DigestLevel]string{
		LevelLegacy:     "legacy",
		LevelDistrict:   "district",
		LevelProvincial: "provincial",
		LevelNational:   "national",
	}
	for l, want := range levels {
		if l.String() != want {
			t.Errorf("level %d: expected %q, got %q", l, want, l.String())
		}
	}
}
