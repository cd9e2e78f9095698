package cases

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create stores a new reported case and assigns its case number. The case
// number is <facility_code>-<YYYYMMDD>-<seq> where seq counts up per
// facility and day, and never changes afterwards.
func (s *Service) Create(ctx context.Context, c *ReportedCase) error {
	if c.FacilityCode == "" {
		return fmt.Errorf("facility_code is required")
	}
	if c.CreateDateTime.IsZero() {
		c.CreateDateTime = s.now()
	}

	prefix := fmt.Sprintf("%s-%s-", c.FacilityCode, c.CreateDateTime.Format("20060102"))
	n, err := s.repo.CountByCaseNumberPrefix(ctx, prefix)
	if err != nil {
		return fmt.Errorf("assigning case number: %w", err)
	}
	c.CaseNumber = prefix + strconv.Itoa(n+1)

	if err := s.repo.Create(ctx, c); err != nil {
		return fmt.Errorf("creating case: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ReportedCase, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*ReportedCase, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ExistsByOnaUUID(ctx context.Context, onaUUID string) (bool, error) {
	return s.repo.ExistsByOnaUUID(ctx, onaUUID)
}
