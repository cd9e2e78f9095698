package ona

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/malariaconnect/api/internal/domain/cases"
)

// Notifier kicks off the notification fan-out for a created case. Satisfied
// by notify.Dispatcher.
type Notifier interface {
	CaseReported(ctx context.Context, c *cases.ReportedCase)
}

// Service syncs the form registry and pulls submitted records into reported
// cases.
type Service struct {
	api      API
	forms    Repository
	cases    *cases.Service
	notifier Notifier
	log      zerolog.Logger
}

func NewService(api API, forms Repository, caseSvc *cases.Service, notifier Notifier, log zerolog.Logger) *Service {
	return &Service{
		api:      api,
		forms:    forms,
		cases:    caseSvc,
		notifier: notifier,
		log:      log.With().Str("component", "ona").Logger(),
	}
}

// SyncForms refreshes the form registry from the Ona API. Upserts are
// idempotent by ona uuid; forms seen for the first time stay inactive until
// an operator activates them.
func (s *Service) SyncForms(ctx context.Context) (int, error) {
	infos, err := s.api.Forms(ctx)
	if err != nil {
		return 0, err
	}
	for _, info := range infos {
		f := &Form{
			UUID:     info.UUID,
			FormID:   info.FormID,
			IDString: info.IDString,
			Title:    info.Title,
		}
		if err := s.forms.UpsertForm(ctx, f); err != nil {
			return 0, fmt.Errorf("upserting form %s: %w", info.IDString, err)
		}
	}
	s.log.Info().Int("forms", len(infos)).Msg("form registry synced")
	return len(infos), nil
}

// SyncCases pulls records for every active form, creates cases for records
// not seen before, and triggers the notification fan-out for each. Returns
// the ona uuids of new cases keyed by form id_string.
func (s *Service) SyncCases(ctx context.Context) (map[string][]string, error) {
	forms, err := s.forms.ListActiveForms(ctx)
	if err != nil {
		return nil, err
	}

	created := make(map[string][]string)
	for _, form := range forms {
		records, err := s.api.FormData(ctx, form.FormID)
		if err != nil {
			return created, err
		}
		for _, rec := range records {
			exists, err := s.cases.ExistsByOnaUUID(ctx, rec.UUID)
			if err != nil {
				return created, err
			}
			if exists {
				continue
			}
			if rec.FacilityCode == "" {
				s.log.Warn().Str("ona_uuid", rec.UUID).Str("form", form.IDString).
					Msg("skipping record without facility code")
				continue
			}

			c := recordToCase(rec, form)
			if err := s.cases.Create(ctx, c); err != nil {
				return created, fmt.Errorf("creating case for record %s: %w", rec.UUID, err)
			}
			s.notifier.CaseReported(ctx, c)
			created[form.IDString] = append(created[form.IDString], rec.UUID)
		}
	}
	return created, nil
}

func recordToCase(rec Record, form *Form) *cases.ReportedCase {
	var created time.Time
	if t, err := time.Parse("2006-01-02T15:04:05", rec.SubmissionTime); err == nil {
		created = t
	}
	return &cases.ReportedCase{
		FirstName:           rec.FirstName,
		LastName:            rec.LastName,
		Locality:            rec.Locality,
		DateOfBirth:         rec.DateOfBirth,
		CreateDateTime:      created,
		SAIDNumber:          rec.SAIDNumber,
		MSISDN:              rec.MSISDN,
		IDType:              rec.IDType,
		Abroad:              rec.Abroad,
		ReportedBy:          rec.ReportedBy,
		Gender:              rec.Gender,
		FacilityCode:        rec.FacilityCode,
		Landmark:            rec.Landmark,
		LandmarkDescription: rec.LandmarkDescription,
		OnaID:               rec.ID,
		OnaUUID:             rec.UUID,
		OnaFormIDString:     form.IDString,
		FormID:              &form.ID,
	}
}
