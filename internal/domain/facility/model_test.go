package facility

import "testing"

func TestNames(t *testing.T) {
	fs := []*Facility{
		{FacilityCode: "0001", FacilityName: "Facility 1"},
		{FacilityCode: "0001", FacilityName: "Facility 1b"},
	}
	if got := Names(fs); got != "Facility 1, Facility 1b" {
		t.Errorf("unexpected names %q", got)
	}
}

func TestNames_Unknown(t *testing.T) {
	if got := Names(nil); got != "Unknown" {
		t.Errorf("expected Unknown, got %q", got)
	}
	if got := Names([]*Facility{{FacilityCode: "0001"}}); got != "Unknown" {
		t.Errorf("expected Unknown for blank names, got %q", got)
	}
}

func TestDistinctProvinces(t *testing.T) {
	fs := []*Facility{
		{Province: "Limpopo"},
		{Province: "Limpopo"},
		{Province: "Mpumalanga"},
		{Province: ""},
	}
	got := DistinctProvinces(fs)
	if len(got) != 2 || got[0] != "Limpopo" || got[1] != "Mpumalanga" {
		t.Errorf("unexpected provinces %v", got)
	}
}
