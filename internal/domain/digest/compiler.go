// Package digest compiles periodic statistical summaries of not-yet-digested
// cases and emails them to the responsible managers.
package digest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/malariaconnect/api/internal/domain/actor"
	"github.com/malariaconnect/api/internal/domain/cases"
	"github.com/malariaconnect/api/internal/domain/facility"
	"github.com/malariaconnect/api/internal/platform/email"
)

// Compiler batches all not-yet-claimed cases into one snapshot per
// geographic level and emails each level's rollup. Each level claims the
// same batch independently through its own column, so all four levels
// report the same cases from their own vantage point.
type Compiler struct {
	cases      cases.Repository
	actors     actor.Repository
	facilities facility.Repository
	digests    Repository
	email      email.Sender
	audit      cases.AuditRepository
	log        zerolog.Logger
	now        func() time.Time
}

func NewCompiler(
	caseRepo cases.Repository,
	actorRepo actor.Repository,
	facilityRepo facility.Repository,
	digestRepo Repository,
	emailSender email.Sender,
	audit cases.AuditRepository,
	log zerolog.Logger,
) *Compiler {
	return &Compiler{
		cases:      caseRepo,
		actors:     actorRepo,
		facilities: facilityRepo,
		digests:    digestRepo,
		email:      emailSender,
		audit:      audit,
		log:        log.With().Str("component", "digest").Logger(),
		now:        time.Now,
	}
}

// CompileAndSend runs all four digest levels in order: national,
// provincial, district, then the legacy flat digest. With zero unclaimed
// cases it is a no-op: no digest rows, no email.
func (c *Compiler) CompileAndSend(ctx context.Context) error {
	n, err := c.cases.CountUnclaimed(ctx, cases.LevelLegacy)
	if err != nil {
		return fmt.Errorf("counting unclaimed cases: %w", err)
	}
	if n == 0 {
		c.log.Info().Msg("no unclaimed cases, skipping digest")
		return nil
	}

	return errors.Join(
		c.compileLevel(ctx, cases.LevelNational, c.sendNational),
		c.compileLevel(ctx, cases.LevelProvincial, c.sendProvincial),
		c.compileLevel(ctx, cases.LevelDistrict, c.sendDistrict),
		c.compileLevel(ctx, cases.LevelLegacy, c.sendLegacy),
	)
}

type sendFunc func(ctx context.Context, d *Digest, claimed []*cases.ReportedCase, g *geo, week string) error

func (c *Compiler) compileLevel(ctx context.Context, level cases.DigestLevel, send sendFunc) error {
	n, err := c.cases.CountUnclaimed(ctx, level)
	if err != nil {
		return fmt.Errorf("%s digest: %w", level, err)
	}
	if n == 0 {
		return nil
	}

	d, err := c.digests.CreateDigest(ctx, level)
	if err != nil {
		return fmt.Errorf("%s digest: %w", level, err)
	}
	claimed, err := c.cases.ClaimForDigest(ctx, level, d.ID)
	if err != nil {
		return fmt.Errorf("%s digest claim: %w", level, err)
	}
	if len(claimed) == 0 {
		return nil
	}

	g, err := c.resolveGeo(ctx, claimed)
	if err != nil {
		return fmt.Errorf("%s digest geography: %w", level, err)
	}

	return send(ctx, d, claimed, g, weekLabel(claimed, c.now()))
}

// geo caches the resolved geography per facility code for one compiler run.
type geo struct {
	provinces map[string]string
	districts map[string]string
	names     map[string]string
}

func (g *geo) province(code string) string { return g.provinces[code] }
func (g *geo) district(code string) string { return g.districts[code] }
func (g *geo) name(code string) string     { return g.names[code] }

func (c *Compiler) resolveGeo(ctx context.Context, cs []*cases.ReportedCase) (*geo, error) {
	g := &geo{
		provinces: make(map[string]string),
		districts: make(map[string]string),
		names:     make(map[string]string),
	}
	for _, rc := range cs {
		if _, done := g.names[rc.FacilityCode]; done {
			continue
		}
		rows, err := c.facilities.ListByCode(ctx, rc.FacilityCode)
		if err != nil {
			return nil, err
		}
		g.provinces[rc.FacilityCode] = firstAttr(rows, func(f *facility.Facility) string { return f.Province })
		g.districts[rc.FacilityCode] = firstAttr(rows, func(f *facility.Facility) string { return f.District })
		g.names[rc.FacilityCode] = facility.Names(rows)
	}
	return g, nil
}

func firstAttr(rows []*facility.Facility, attr func(*facility.Facility) string) string {
	for _, f := range rows {
		if v := attr(f); v != "" {
			return v
		}
	}
	return facility.Unknown
}

func (c *Compiler) sendNational(ctx context.Context, d *Digest, claimed []*cases.ReportedCase, g *geo, week string) error {
	managers, err := c.actors.ListByRole(ctx, actor.RoleNationalManager)
	if err != nil {
		return err
	}
	mis, err := c.actors.ListByRole(ctx, actor.RoleMIS)
	if err != nil {
		return err
	}

	data, err := c.buildData("National digest of reported Malaria cases", week, claimed, func(rc *cases.ReportedCase) string {
		return g.district(rc.FacilityCode)
	})
	if err != nil {
		return err
	}

	recipients := withEmail(append(managers, mis...))
	if len(recipients) == 0 {
		c.log.Warn().Msg("no recipients for national digest")
		return nil
	}
	return c.send(ctx, cases.LevelNational, d, data, recipients)
}

func (c *Compiler) sendProvincial(ctx context.Context, d *Digest, claimed []*cases.ReportedCase, g *geo, week string) error {
	managers, err := c.actors.ListByRole(ctx, actor.RoleProvincialManager)
	if err != nil {
		return err
	}
	mis, err := c.actors.ListByRole(ctx, actor.RoleMIS)
	if err != nil {
		return err
	}

	var errs []error
	for _, m := range managers {
		if m.Province == "" {
			c.log.Warn().Str("actor", m.Name).Msg("skipping provincial manager without a province")
			continue
		}
		sub := filterCases(claimed, func(rc *cases.ReportedCase) bool {
			return g.province(rc.FacilityCode) == m.Province
		})
		if len(sub) == 0 {
			continue
		}
		title := fmt.Sprintf("Digest of reported Malaria cases in %s", m.Province)
		data, err := c.buildData(title, week, sub, func(rc *cases.ReportedCase) string {
			return g.district(rc.FacilityCode)
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		recipients := withEmail(append([]*actor.Actor{m}, mis...))
		if err := c.send(ctx, cases.LevelProvincial, d, data, recipients); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Compiler) sendDistrict(ctx context.Context, d *Digest, claimed []*cases.ReportedCase, g *geo, week string) error {
	managers, err := c.actors.ListByRole(ctx, actor.RoleDistrictManager)
	if err != nil {
		return err
	}
	mis, err := c.actors.ListByRole(ctx, actor.RoleMIS)
	if err != nil {
		return err
	}

	var errs []error
	for _, m := range managers {
		if m.District == "" {
			c.log.Warn().Str("actor", m.Name).Msg("skipping district manager without a district")
			continue
		}
		sub := filterCases(claimed, func(rc *cases.ReportedCase) bool {
			return g.district(rc.FacilityCode) == m.District
		})
		if len(sub) == 0 {
			continue
		}
		title := fmt.Sprintf("Digest of reported Malaria cases in %s", m.District)
		data, err := c.buildData(title, week, sub, func(rc *cases.ReportedCase) string {
			return g.name(rc.FacilityCode)
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		recipients := withEmail(append([]*actor.Actor{m}, mis...))
		if err := c.send(ctx, cases.LevelDistrict, d, data, recipients); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Compiler) sendLegacy(ctx context.Context, d *Digest, claimed []*cases.ReportedCase, g *geo, week string) error {
	mis, err := c.actors.ListByRole(ctx, actor.RoleMIS)
	if err != nil {
		return err
	}

	data, err := c.buildData("Digest of reported Malaria cases", week, claimed, func(rc *cases.ReportedCase) string {
		return g.name(rc.FacilityCode)
	})
	if err != nil {
		return err
	}

	recipients := withEmail(mis)
	if len(recipients) == 0 {
		c.log.Warn().Msg("no recipients for weekly digest")
		return nil
	}
	return c.send(ctx, cases.LevelLegacy, d, data, recipients)
}

// buildData groups the cases by the level's geography dimension and computes
// per-group and total stats.
func (c *Compiler) buildData(title, week string, cs []*cases.ReportedCase, key func(*cases.ReportedCase) string) (*Data, error) {
	now := c.now()

	buckets := make(map[string][]*cases.ReportedCase)
	for _, rc := range cs {
		k := key(rc)
		buckets[k] = append(buckets[k], rc)
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	var groups []Group
	for _, name := range names {
		stats, err := computeStats(buckets[name], now)
		if err != nil {
			return nil, err
		}
		groups = append(groups, Group{Name: name, Stats: stats})
	}

	totals, err := computeStats(cs, now)
	if err != nil {
		return nil, err
	}
	return &Data{Title: title, Week: week, Groups: groups, Totals: totals}, nil
}

// send emails the digest to all recipients and records them on the digest
// row. Recipients arrive deduplicated with non-blank emails.
func (c *Compiler) send(ctx context.Context, level cases.DigestLevel, d *Digest, data *Data, recipients []*actor.Actor) error {
	if len(recipients) == 0 {
		return nil
	}

	html, err := renderDigestHTML(data)
	if err != nil {
		return err
	}

	var addresses []string
	for _, a := range recipients {
		addresses = append(addresses, a.EmailAddress)
		if err := c.digests.AddRecipient(ctx, level, d.ID, a.ID); err != nil {
			return err
		}
	}

	msg := &email.Message{
		To:       addresses,
		Subject:  fmt.Sprintf("Digest of reported Malaria cases %s", data.Week),
		TextBody: renderDigestText(data),
		HTMLBody: html,
	}
	if err := c.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("%s digest email: %w", level, err)
	}
	return c.audit.CreateEmail(ctx, &cases.Email{To: addresses[0], HTMLContent: html})
}

// withEmail filters out actors without an email address and removes
// duplicates by name, role and email.
func withEmail(actors []*actor.Actor) []*actor.Actor {
	type key struct {
		name  string
		role  actor.Role
		email string
	}
	seen := make(map[key]bool)
	var out []*actor.Actor
	for _, a := range actors {
		if a.EmailAddress == "" {
			continue
		}
		k := key{a.Name, a.Role, a.EmailAddress}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, a)
	}
	return out
}

func filterCases(cs []*cases.ReportedCase, keep func(*cases.ReportedCase) bool) []*cases.ReportedCase {
	var out []*cases.ReportedCase
	for _, rc := range cs {
		if keep(rc) {
			out = append(out, rc)
		}
	}
	return out
}
