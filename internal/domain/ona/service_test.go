package ona

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/malariaconnect/api/internal/domain/cases"
)

type mockAPI struct {
	forms   []FormInfo
	records map[int64][]Record
}

func (m *mockAPI) Forms(_ context.Context) ([]FormInfo, error) {
	return m.forms, nil
}

func (m *mockAPI) FormData(_ context.Context, formID int64) ([]Record, error) {
	return m.records[formID], nil
}

type mockFormRepo struct {
	forms map[string]*Form
}

func newMockFormRepo() *mockFormRepo {
	return &mockFormRepo{forms: map[string]*Form{}}
}

func (m *mockFormRepo) UpsertForm(_ context.Context, f *Form) error {
	if existing, ok := m.forms[f.UUID]; ok {
		existing.FormID = f.FormID
		existing.IDString = f.IDString
		existing.Title = f.Title
		return nil
	}
	f.ID = uuid.New()
	m.forms[f.UUID] = f
	return nil
}

func (m *mockFormRepo) ListForms(_ context.Context) ([]*Form, error) {
	var out []*Form
	for _, f := range m.forms {
		out = append(out, f)
	}
	return out, nil
}

func (m *mockFormRepo) ListActiveForms(_ context.Context) ([]*Form, error) {
	var out []*Form
	for _, f := range m.forms {
		if f.Active {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockFormRepo) SetActive(_ context.Context, onaUUID string, active bool) error {
	if f, ok := m.forms[onaUUID]; ok {
		f.Active = active
	}
	return nil
}

type mockCaseRepo struct {
	cases []*cases.ReportedCase
}

func (m *mockCaseRepo) Create(_ context.Context, c *cases.ReportedCase) error {
	c.ID = uuid.New()
	m.cases = append(m.cases, c)
	return nil
}

func (m *mockCaseRepo) GetByID(_ context.Context, id uuid.UUID) (*cases.ReportedCase, error) {
	return nil, nil
}

func (m *mockCaseRepo) List(_ context.Context, limit, offset int) ([]*cases.ReportedCase, int, error) {
	return m.cases, len(m.cases), nil
}

func (m *mockCaseRepo) ExistsByOnaUUID(_ context.Context, onaUUID string) (bool, error) {
	for _, c := range m.cases {
		if c.OnaUUID == onaUUID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCaseRepo) CountByCaseNumberPrefix(_ context.Context, prefix string) (int, error) {
	n := 0
	for _, c := range m.cases {
		if strings.HasPrefix(c.CaseNumber, prefix) {
			n++
		}
	}
	return n, nil
}

func (m *mockCaseRepo) AddNotifiedEHP(_ context.Context, caseID, actorID uuid.UUID) error {
	return nil
}

func (m *mockCaseRepo) NotifiedEHPs(_ context.Context, caseID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (m *mockCaseRepo) SetJembiAlertSent(_ context.Context, caseID uuid.UUID) error { return nil }

func (m *mockCaseRepo) CountUnclaimed(_ context.Context, level cases.DigestLevel) (int, error) {
	return 0, nil
}

func (m *mockCaseRepo) ClaimForDigest(_ context.Context, level cases.DigestLevel, digestID uuid.UUID) ([]*cases.ReportedCase, error) {
	return nil, nil
}

type mockNotifier struct {
	reported []*cases.ReportedCase
}

func (m *mockNotifier) CaseReported(_ context.Context, c *cases.ReportedCase) {
	m.reported = append(m.reported, c)
}

func record(onaUUID string) Record {
	return Record{
		ID:             1234,
		UUID:           onaUUID,
		SubmissionTime: "2015-03-09T10:00:00",
		FirstName:      "John",
		LastName:       "Day",
		DateOfBirth:    "1982-01-01",
		MSISDN:         "+27720000000",
		Gender:         "male",
		FacilityCode:   "0001",
	}
}

func TestSyncForms_NewFormsInactive(t *testing.T) {
	api := &mockAPI{forms: []FormInfo{
		{FormID: 1, IDString: "malaria_case", Title: "Malaria Case", UUID: "form-uuid-1"},
	}}
	forms := newMockFormRepo()
	svc := NewService(api, forms, cases.NewService(&mockCaseRepo{}), &mockNotifier{}, zerolog.Nop())

	n, err := svc.SyncForms(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 form synced, got %d", n)
	}
	if forms.forms["form-uuid-1"].Active {
		t.Error("new forms must start inactive")
	}
}

func TestSyncForms_Idempotent(t *testing.T) {
	api := &mockAPI{forms: []FormInfo{
		{FormID: 1, IDString: "malaria_case", Title: "Malaria Case", UUID: "form-uuid-1"},
	}}
	forms := newMockFormRepo()
	svc := NewService(api, forms, cases.NewService(&mockCaseRepo{}), &mockNotifier{}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if _, err := svc.SyncForms(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(forms.forms) != 1 {
		t.Errorf("expected 1 form after re-sync, got %d", len(forms.forms))
	}
}

func TestSyncCases(t *testing.T) {
	api := &mockAPI{
		forms:   []FormInfo{{FormID: 1, IDString: "malaria_case", UUID: "form-uuid-1"}},
		records: map[int64][]Record{1: {record("rec-1"), record("rec-2")}},
	}
	forms := newMockFormRepo()
	caseRepo := &mockCaseRepo{}
	notifier := &mockNotifier{}
	svc := NewService(api, forms, cases.NewService(caseRepo), notifier, zerolog.Nop())

	if _, err := svc.SyncForms(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := forms.SetActive(context.Background(), "form-uuid-1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created, err := svc.SyncCases(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created["malaria_case"]) != 2 {
		t.Errorf("expected 2 new cases, got %v", created)
	}
	if len(caseRepo.cases) != 2 {
		t.Errorf("expected 2 case rows, got %d", len(caseRepo.cases))
	}
	if caseRepo.cases[0].CaseNumber == "" {
		t.Error("expected case number assigned at creation")
	}
	if len(notifier.reported) != 2 {
		t.Errorf("expected notification fan-out per case, got %d", len(notifier.reported))
	}
}

func TestSyncCases_IdempotentByOnaUUID(t *testing.T) {
	api := &mockAPI{
		forms:   []FormInfo{{FormID: 1, IDString: "malaria_case", UUID: "form-uuid-1"}},
		records: map[int64][]Record{1: {record("rec-1")}},
	}
	forms := newMockFormRepo()
	caseRepo := &mockCaseRepo{}
	notifier := &mockNotifier{}
	svc := NewService(api, forms, cases.NewService(caseRepo), notifier, zerolog.Nop())

	if _, err := svc.SyncForms(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := forms.SetActive(context.Background(), "form-uuid-1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.SyncCases(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(caseRepo.cases) != 1 {
		t.Errorf("expected 1 case after re-sync, got %d", len(caseRepo.cases))
	}
	if len(notifier.reported) != 1 {
		t.Errorf("expected 1 notification after re-sync, got %d", len(notifier.reported))
	}
}

func TestSyncCases_InactiveFormSkipped(t *testing.T) {
	api := &mockAPI{
		forms:   []FormInfo{{FormID: 1, IDString: "malaria_case", UUID: "form-uuid-1"}},
		records: map[int64][]Record{1: {record("rec-1")}},
	}
	forms := newMockFormRepo()
	caseRepo := &mockCaseRepo{}
	svc := NewService(api, forms, cases.NewService(caseRepo), &mockNotifier{}, zerolog.Nop())

	if _, err := svc.SyncForms(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.SyncCases(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(caseRepo.cases) != 0 {
		t.Errorf("expected no cases from inactive forms, got %d", len(caseRepo.cases))
	}
}

func TestRecordToCase_Defaults(t *testing.T) {
	form := &Form{ID: uuid.New(), IDString: "malaria_case"}
	rec := Record{UUID: "rec-1", FacilityCode: "0001"}
	c := recordToCase(rec, form)

	if c.FirstName != "" || c.Abroad != "" {
		t.Error("missing optional fields must default to blank")
	}
	if c.OnaUUID != "rec-1" || c.OnaFormIDString != "malaria_case" {
		t.Errorf("unexpected source identifiers: %+v", c)
	}
	if c.FormID == nil || *c.FormID != form.ID {
		t.Error("expected case linked to its form")
	}
}
