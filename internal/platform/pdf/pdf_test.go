package pdf

import (
	"bytes"
	"testing"
)

func TestRender(t *testing.T) {
	out, err := Render(&CaseReport{
		CaseNumber:   "0001-20151014-1",
		FirstName:    "first_name",
		LastName:     "last_name",
		FacilityCode: "0001",
		Gender:       "female",
		Age:          33,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected non-empty output")
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("expected PDF header, got %q", out[:8])
	}
}
