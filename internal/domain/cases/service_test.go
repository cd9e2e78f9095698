package cases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockRepo struct {
	cases []*ReportedCase
}

func (m *mockRepo) Create(_ context.Context, c *ReportedCase) error {
	c.ID = uuid.New()
	m.cases = append(m.cases, c)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*ReportedCase, error) {
	for _, c := range m.cases {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*ReportedCase, int, error) {
	return m.cases, len(m.cases), nil
}

func (m *mockRepo) ExistsByOnaUUID(_ context.Context, onaUUID string) (bool, error) {
	for _, c := range m.cases {
		if c.OnaUUID == onaUUID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) CountByCaseNumberPrefix(_ context.Context, prefix string) (int, error) {
	n := 0
	for _, c := range m.cases {
		if strings.HasPrefix(c.CaseNumber, prefix) {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) AddNotifiedEHP(_ context.Context, caseID, actorID uuid.UUID) error {
	return nil
}

func (m *mockRepo) NotifiedEHPs(_ context.Context, caseID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (m *mockRepo) SetJembiAlertSent(_ context.Context, caseID uuid.UUID) error {
	for _, c := range m.cases {
		if c.ID == caseID {
			c.JembiAlertSent = true
		}
	}
	return nil
}

func (m *mockRepo) CountUnclaimed(_ context.Context, level DigestLevel) (int, error) {
	n := 0
	for _, c := range m.cases {
		switch level {
		case LevelNational:
			if c.NationalDigestID == nil {
				n++
			}
		case LevelProvincial:
			if c.ProvincialDigestID == nil {
				n++
			}
		case LevelDistrict:
			if c.DistrictDigestID == nil {
				n++
			}
		default:
			if c.DigestID == nil {
				n++
			}
		}
	}
	return n, nil
}

func (m *mockRepo) ClaimForDigest(_ context.Context, level DigestLevel, digestID uuid.UUID) ([]*ReportedCase, error) {
	var claimed []*ReportedCase
	for _, c := range m.cases {
		var col **uuid.UUID
		switch level {
		case LevelNational:
			col = &c.NationalDigestID
		case LevelProvincial:
			col = &c.ProvincialDigestID
		case LevelDistrict:
			col = &c.DistrictDigestID
		default:
			col = &c.DigestID
		}
		if *col == nil {
			id := digestID
			*col = &id
			claimed = append(claimed, c)
		}
	}
	return claimed, nil
}

func newTestService(repo *mockRepo, now time.Time) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCreate_AssignsCaseNumber(t *testing.T) {
	repo := &mockRepo{}
	now := time.Date(2015, 3, 9, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)

	c := &ReportedCase{FacilityCode: "0001", MSISDN: "+27710000000"}
	if err := svc.Create(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.CaseNumber != "0001-20150309-1" {
		t.Errorf("unexpected case number %q", c.CaseNumber)
	}
}

func TestCreate_SequencePerFacilityAndDay(t *testing.T) {
	repo := &mockRepo{}
	now := time.Date(2015, 3, 9, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)

	for i := 0; i < 2; i++ {
		c := &ReportedCase{FacilityCode: "0001"}
		if err := svc.Create(context.Background(), c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	other := &ReportedCase{FacilityCode: "0002"}
	if err := svc.Create(context.Background(), other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.cases[0].CaseNumber != "0001-20150309-1" {
		t.Errorf("unexpected first case number %q", repo.cases[0].CaseNumber)
	}
	if repo.cases[1].CaseNumber != "0001-20150309-2" {
		t.Errorf("unexpected second case number %q", repo.cases[1].CaseNumber)
	}
	if other.CaseNumber != "0002-20150309-1" {
		t.Errorf("unexpected other-facility case number %q", other.CaseNumber)
	}
}

func TestCreate_MissingFacilityCode(t *testing.T) {
	svc := newTestService(&mockRepo{}, time.Now())
	if err := svc.Create(context.Background(), &ReportedCase{}); err == nil {
		t.Error("expected error for missing facility code")
	}
}

func TestClaimForDigest_ClaimOnce(t *testing.T) {
	repo := &mockRepo{cases: []*ReportedCase{
		{ID: uuid.New()},
		{ID: uuid.New()},
	}}

	first, err := repo.ClaimForDigest(context.Background(), LevelNational, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 claimed, got %d", len(first))
	}

	second, err := repo.ClaimForDigest(context.Background(), LevelNational, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("expected 0 claimed on second pass, got %d", len(second))
	}

	// A different level still sees the same batch.
	provincial, err := repo.ClaimForDigest(context.Background(), LevelProvincial, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(provincial) != 2 {
		t.Errorf("expected 2 claimed at provincial level, got %d", len(provincial))
	}
}
