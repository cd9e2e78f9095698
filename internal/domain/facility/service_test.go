package facility

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	facilities []*Facility
}

func (m *mockRepo) Create(_ context.Context, f *Facility) error {
	f.ID = uuid.New()
	m.facilities = append(m.facilities, f)
	return nil
}

func (m *mockRepo) ListByCode(_ context.Context, code string) ([]*Facility, error) {
	var out []*Facility
	for _, f := range m.facilities {
		if f.FacilityCode == code {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Facility, int, error) {
	return m.facilities, len(m.facilities), nil
}

func (m *mockRepo) ExistsExact(_ context.Context, f *Facility) (bool, error) {
	for _, existing := range m.facilities {
		if existing.FacilityCode == f.FacilityCode &&
			existing.FacilityName == f.FacilityName &&
			existing.Province == f.Province &&
			existing.District == f.District &&
			existing.Subdistrict == f.Subdistrict &&
			existing.Phase == f.Phase {
			return true, nil
		}
	}
	return false, nil
}

func TestImportCSV(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	body := strings.Join([]string{
		"facility_code,facility_name,province,district,subdistrict,phase",
		"0001,Facility 1,Limpopo,Vhembe,Mutale,1",
		"0002,Facility 2,Mpumalanga,Ehlanzeni,Nkomazi,2",
	}, "\n")

	created, err := svc.ImportCSV(context.Background(), strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 2 {
		t.Errorf("expected 2 created, got %d", created)
	}
}

func TestImportCSV_Idempotent(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	body := "facility_code,facility_name,province,district,subdistrict,phase\n" +
		"0001,Facility 1,Limpopo,Vhembe,Mutale,1\n"

	for i := 0; i < 2; i++ {
		if _, err := svc.ImportCSV(context.Background(), strings.NewReader(body)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(repo.facilities) != 1 {
		t.Errorf("expected 1 facility after re-import, got %d", len(repo.facilities))
	}
}

func TestImportCSV_BadHeader(t *testing.T) {
	svc := NewService(&mockRepo{})
	body := "code,name\n0001,Facility 1\n"
	if _, err := svc.ImportCSV(context.Background(), strings.NewReader(body)); err == nil {
		t.Error("expected error for bad header")
	}
}

func TestImportJSON(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	body := `[{"facility_code": "0001", "facility_name": "Facility 1", "province": "Limpopo"}]`
	created, err := svc.ImportJSON(context.Background(), strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 1 {
		t.Errorf("expected 1 created, got %d", created)
	}
	if repo.facilities[0].Province != "Limpopo" {
		t.Errorf("unexpected province %q", repo.facilities[0].Province)
	}
}

func TestImport_MissingCode(t *testing.T) {
	svc := NewService(&mockRepo{})
	body := `[{"facility_name": "Facility 1"}]`
	if _, err := svc.ImportJSON(context.Background(), strings.NewReader(body)); err == nil {
		t.Error("expected error for missing facility_code")
	}
}
