// Package jembi forwards reported cases to the Jembi case-reporting
// integration.
package jembi

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/malariaconnect/api/internal/domain/cases"
)

// Forwarder POSTs a canonical case payload to the Jembi endpoint with basic
// auth. The enabled flag is read on every call, so toggling forwarding off
// also stops sends that were scheduled while it was on.
type Forwarder struct {
	client   *resty.Client
	url      string
	username string
	password string
	enabled  func() bool
	repo     cases.Repository
	log      zerolog.Logger
}

func NewForwarder(url, username, password string, enabled func() bool, repo cases.Repository, log zerolog.Logger) *Forwarder {
	return &Forwarder{
		client:   resty.New(),
		url:      url,
		username: username,
		password: password,
		enabled:  enabled,
		repo:     repo,
		log:      log.With().Str("component", "jembi").Logger(),
	}
}

type payload struct {
	EventType           string `json:"event_type"`
	CaseNumber          string `json:"case_number"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Gender              string `json:"gender"`
	DateOfBirth         string `json:"date_of_birth"`
	Locality            string `json:"locality"`
	SAIDNumber          string `json:"sa_id_number"`
	MSISDN              string `json:"msisdn"`
	IDType              string `json:"id_type"`
	Abroad              string `json:"abroad"`
	FacilityCode        string `json:"facility_code"`
	Landmark            string `json:"landmark"`
	LandmarkDescription string `json:"landmark_description"`
	ReportedBy          string `json:"reported_by"`
	CreateDateTime      string `json:"create_date_time"`
}

// Forward sends the case to Jembi and marks it sent. A non-2xx response is
// an error so the task runner can retry.
func (f *Forwarder) Forward(ctx context.Context, c *cases.ReportedCase) error {
	if !f.enabled() {
		f.log.Info().Str("case_number", c.CaseNumber).Msg("jembi forwarding disabled, skipping")
		return nil
	}

	body, err := buildPayload(c)
	if err != nil {
		return fmt.Errorf("jembi payload for case %s: %w", c.CaseNumber, err)
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetBasicAuth(f.username, f.password).
		SetBody(body).
		Post(f.url)
	if err != nil {
		return fmt.Errorf("jembi forward case %s: %w", c.CaseNumber, err)
	}
	if resp.IsError() {
		return fmt.Errorf("jembi forward case %s: unexpected status %d", c.CaseNumber, resp.StatusCode())
	}

	if err := f.repo.SetJembiAlertSent(ctx, c.ID); err != nil {
		return fmt.Errorf("marking case %s jembi-sent: %w", c.CaseNumber, err)
	}
	f.log.Info().Str("case_number", c.CaseNumber).Msg("case forwarded to jembi")
	return nil
}

func buildPayload(c *cases.ReportedCase) (*payload, error) {
	dob, err := cases.ParseDateOfBirth(c.DateOfBirth)
	if err != nil {
		return nil, err
	}
	return &payload{
		EventType:           "new_case",
		CaseNumber:          c.CaseNumber,
		FirstName:           c.FirstName,
		LastName:            c.LastName,
		Gender:              c.Gender,
		DateOfBirth:         dob.Format("2006-01-02"),
		Locality:            c.Locality,
		SAIDNumber:          NormalizeSAID(c.SAIDNumber),
		MSISDN:              NormalizeMSISDN(c.MSISDN),
		IDType:              c.IDType,
		Abroad:              c.Abroad,
		FacilityCode:        c.FacilityCode,
		Landmark:            c.Landmark,
		LandmarkDescription: c.LandmarkDescription,
		ReportedBy:          NormalizeMSISDN(c.ReportedBy),
		CreateDateTime:      c.CreateDateTime.Format("2006-01-02 15:04:05"),
	}, nil
}

// NormalizeMSISDN strips everything but digits and prefixes a plus sign.
// Blank input stays blank.
func NormalizeMSISDN(msisdn string) string {
	var b strings.Builder
	for _, r := range msisdn {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "+" + b.String()
}

// NormalizeSAID coerces a non-numeric national ID to empty.
func NormalizeSAID(said string) string {
	if said == "" {
		return ""
	}
	for _, r := range said {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return said
}
