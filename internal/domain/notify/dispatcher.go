// Package notify fans out alerts for newly reported cases to the actors who
// need to hear about them.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/malariaconnect/api/internal/domain/actor"
	"github.com/malariaconnect/api/internal/domain/cases"
	"github.com/malariaconnect/api/internal/domain/facility"
	"github.com/malariaconnect/api/internal/platform/email"
	"github.com/malariaconnect/api/internal/platform/pdf"
	"github.com/malariaconnect/api/internal/platform/sms"
)

// Scheduler runs a function outside the request path. Satisfied by
// tasks.Runner.
type Scheduler interface {
	Go(name string, fn func(ctx context.Context) error)
}

// Forwarder sends a case to the external integration. Satisfied by
// jembi.Forwarder.
type Forwarder interface {
	Forward(ctx context.Context, c *cases.ReportedCase) error
}

// Deps collects the dispatcher's collaborators.
type Deps struct {
	Actors     actor.Repository
	Facilities facility.Repository
	Cases      cases.Repository
	Audit      cases.AuditRepository
	SMS        sms.Sender
	Email      email.Sender
	Scheduler  Scheduler
	Forwarder  Forwarder
	Log        zerolog.Logger
}

// Dispatcher decides, per newly reported case, who gets notified over which
// channel. Missing contact info and empty recipient sets are logged, never
// errors; send failures surface to the task runner.
type Dispatcher struct {
	actors     actor.Repository
	facilities facility.Repository
	cases      cases.Repository
	audit      cases.AuditRepository
	sms        sms.Sender
	email      email.Sender
	sched      Scheduler
	forwarder  Forwarder
	log        zerolog.Logger
}

func NewDispatcher(d Deps) *Dispatcher {
	return &Dispatcher{
		actors:     d.Actors,
		facilities: d.Facilities,
		cases:      d.Cases,
		audit:      d.Audit,
		sms:        d.SMS,
		email:      d.Email,
		sched:      d.Scheduler,
		forwarder:  d.Forwarder,
		log:        d.Log.With().Str("component", "notify").Logger(),
	}
}

// CaseReported schedules the notification fan-out and the integration
// forward for a freshly created case. It returns immediately; delivery
// happens on the task runner.
func (d *Dispatcher) CaseReported(ctx context.Context, c *cases.ReportedCase) {
	d.sched.Go("notify-case-"+c.CaseNumber, func(ctx context.Context) error {
		return d.notify(ctx, c)
	})
	if d.forwarder != nil {
		d.sched.Go("jembi-forward-"+c.CaseNumber, func(ctx context.Context) error {
			return d.forwarder.Forward(ctx, c)
		})
	}
}

func (d *Dispatcher) notify(ctx context.Context, c *cases.ReportedCase) error {
	facilities, err := d.facilities.ListByCode(ctx, c.FacilityCode)
	if err != nil {
		return fmt.Errorf("resolving facility %s: %w", c.FacilityCode, err)
	}

	return errors.Join(
		d.notifyEHPs(ctx, c, facilities),
		d.notifyReporter(ctx, c),
		d.notifyInvestigators(ctx, c, facilities),
		d.notifyMIS(ctx, c, facilities),
	)
}

const ehpAlertSMS = "A new case has been reported, the full report will be sent to you via email."

func (d *Dispatcher) notifyEHPs(ctx context.Context, c *cases.ReportedCase, facilities []*facility.Facility) error {
	ehps, err := d.actors.ListByRoleAndFacility(ctx, actor.RoleEHP, c.FacilityCode)
	if err != nil {
		return err
	}
	if len(ehps) == 0 {
		d.log.Warn().Str("case_number", c.CaseNumber).
			Msgf("No EHPs found for facility code %s.", c.FacilityCode)
		return nil
	}

	var errs []error
	for _, ehp := range ehps {
		if err := d.cases.AddNotifiedEHP(ctx, c.ID, ehp.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		if ehp.PhoneNumber != "" {
			if err := d.sendSMS(ctx, ehp.PhoneNumber, ehpAlertSMS); err != nil {
				errs = append(errs, err)
			}
		} else {
			d.log.Warn().Str("actor", ehp.Name).
				Msgf("Unable to SMS report for case %s. Missing phone_number.", c.CaseNumber)
		}
		if ehp.EmailAddress != "" {
			if err := d.sendCaseEmail(ctx, ehp.EmailAddress, c, facilities); err != nil {
				errs = append(errs, err)
			}
		} else {
			d.log.Warn().Str("actor", ehp.Name).
				Msgf("Unable to Email report for case %s. Missing email_address.", c.CaseNumber)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) notifyReporter(ctx context.Context, c *cases.ReportedCase) error {
	if c.ReportedBy == "" {
		d.log.Warn().Msgf("Unable to SMS case number for case %s. Missing reported_by.", c.CaseNumber)
		return nil
	}
	content := fmt.Sprintf("Your reported case has been assigned case number %s.", c.CaseNumber)
	return d.sendSMS(ctx, c.ReportedBy, content)
}

func (d *Dispatcher) notifyInvestigators(ctx context.Context, c *cases.ReportedCase, facilities []*facility.Facility) error {
	investigators, err := d.actors.ListByRoleAndFacility(ctx, actor.RoleCaseInvestigator, c.FacilityCode)
	if err != nil {
		return err
	}
	if len(investigators) == 0 {
		d.log.Warn().Str("case_number", c.CaseNumber).
			Msgf("No case investigators found for facility code %s.", c.FacilityCode)
		return nil
	}

	content, err := investigatorSMS(c, facilities)
	if err != nil {
		return err
	}

	var errs []error
	for _, ci := range investigators {
		if ci.PhoneNumber == "" {
			d.log.Warn().Str("actor", ci.Name).
				Msgf("Unable to SMS report for case %s. Missing phone_number.", c.CaseNumber)
			continue
		}
		if err := d.sendSMS(ctx, ci.PhoneNumber, content); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) notifyMIS(ctx context.Context, c *cases.ReportedCase, facilities []*facility.Facility) error {
	provinces := facility.DistinctProvinces(facilities)
	if len(provinces) == 0 {
		d.log.Warn().Str("case_number", c.CaseNumber).
			Msgf("No provinces found for facility code %s.", c.FacilityCode)
		return nil
	}

	contacts, err := d.actors.ListByRoleAndProvinces(ctx, actor.RoleMIS, provinces)
	if err != nil {
		return err
	}
	contacts = dedupActors(contacts)
	if len(contacts) == 0 {
		d.log.Warn().Str("case_number", c.CaseNumber).
			Msgf("No MIS contacts found for facility code %s.", c.FacilityCode)
		return nil
	}

	var errs []error
	for _, mis := range contacts {
		if mis.EmailAddress == "" {
			d.log.Warn().Str("actor", mis.Name).
				Msgf("Unable to Email report for case %s. Missing email_address.", c.CaseNumber)
			continue
		}
		if err := d.sendCaseEmail(ctx, mis.EmailAddress, c, facilities); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// dedupActors removes duplicates by name, role and email. Duplicate facility
// rows sharing one code can resolve the same contact more than once.
func dedupActors(actors []*actor.Actor) []*actor.Actor {
	type key struct {
		name  string
		role  actor.Role
		email string
	}
	seen := make(map[key]bool)
	var out []*actor.Actor
	for _, a := range actors {
		k := key{a.Name, a.Role, a.EmailAddress}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, a)
	}
	return out
}

// sendSMS sends a message and writes the audit row. The row is written only
// after the gateway accepted the message.
func (d *Dispatcher) sendSMS(ctx context.Context, to, content string) error {
	messageID, err := d.sms.Send(ctx, to, content)
	if err != nil {
		return fmt.Errorf("sms to %s: %w", to, err)
	}
	return d.audit.CreateSMS(ctx, &cases.SMS{To: to, Content: content, MessageID: messageID})
}

// sendCaseEmail renders the full case report as HTML with a PDF attachment,
// sends it, and writes the audit row keyed by the recipient.
func (d *Dispatcher) sendCaseEmail(ctx context.Context, to string, c *cases.ReportedCase, facilities []*facility.Facility) error {
	report, err := buildReport(c, facilities)
	if err != nil {
		return err
	}
	html, err := renderCaseEmailHTML(report)
	if err != nil {
		return err
	}
	pdfBytes, err := pdf.Render(report)
	if err != nil {
		return err
	}

	msg := &email.Message{
		To:       []string{to},
		Subject:  fmt.Sprintf("Malaria case number %s", c.CaseNumber),
		TextBody: renderCaseEmailText(report),
		HTMLBody: html,
		Attachment: &email.Attachment{
			Filename:    fmt.Sprintf("case_%s.pdf", c.CaseNumber),
			ContentType: "application/pdf",
			Content:     pdfBytes,
		},
	}
	if err := d.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("email to %s: %w", to, err)
	}
	return d.audit.CreateEmail(ctx, &cases.Email{To: to, HTMLContent: html, PDFContent: pdfBytes})
}
