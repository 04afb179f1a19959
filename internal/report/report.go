// Package report builds, persists and manages compliance reports.
//
// The Builder owns the report entity: numbering, initial status, the
// single-day duplicate rule and the sign/annotate/approve/delete lifecycle.
// The Service composes fetch, classification, aggregation and the Builder
// into the daily HACCP and periodic HMS generation paths.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/kitchencheck/internal/logging"
	"github.com/dshills/kitchencheck/internal/metrics"
	"github.com/dshills/kitchencheck/internal/schema"
	"github.com/dshills/kitchencheck/internal/store"
)

var (
	// ErrDuplicateReport is returned when a single-day report already exists
	// for the requested kind, type and date and overwrite was not requested.
	// The existing report is returned alongside it.
	ErrDuplicateReport = errors.New("report: a report already exists for this date")
	// ErrAlreadySigned is returned by Sign when the report carries a
	// signature. The first signature is kept.
	ErrAlreadySigned = errors.New("report: already signed")
	// ErrInvalidRequest is returned for requests the Builder cannot act on.
	ErrInvalidRequest = errors.New("report: invalid request")
)

// Request carries everything the Builder needs to create one report.
type Request struct {
	Tenant          string
	Kind            schema.ReportKind
	Type            schema.ReportType
	Period          schema.Period
	Title           string
	Summary         string
	Counts          schema.Counts
	ComplianceScore int
	OverallStatus   schema.OverallStatus
	Insights        string
	Recommendations string
	GeneratedBy     string
	Groups          []schema.GroupSummary
	Sections        []schema.Section
	DataGaps        []string
	// Automatic marks scheduled generation; such reports start final
	// instead of pending.
	Automatic bool
	// Overwrite replaces an existing single-day report instead of failing
	// with ErrDuplicateReport.
	Overwrite bool
}

func (r Request) validate() error {
	if r.Tenant == "" {
		return fmt.Errorf("%w: tenant is required", ErrInvalidRequest)
	}
	switch r.Kind {
	case schema.KindHACCPDaily, schema.KindHMS:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, r.Kind)
	}
	if !r.Period.Valid() {
		return fmt.Errorf("%w: period end %s before start %s", ErrInvalidRequest,
			r.Period.End.Format(schema.DateLayout), r.Period.Start.Format(schema.DateLayout))
	}
	return nil
}

// Builder creates and updates persisted reports.
type Builder struct {
	store   *store.ReportStore
	log     logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewBuilder(s *store.ReportStore, log logging.Logger, m *metrics.Metrics) *Builder {
	if log == nil {
		log = logging.Discard()
	}
	return &Builder{
		store:   s,
		log:     log.Module("report"),
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Number returns the report number for kind at t:
// HACCP-YYYYMMDD-<unix millis> or HMS-<unix millis>. Numbers are derived
// from the clock and only best-effort unique.
func Number(kind schema.ReportKind, day, t time.Time) string {
	if kind == schema.KindHACCPDaily {
		return fmt.Sprintf("HACCP-%s-%d", day.Format("20060102"), t.UnixMilli())
	}
	return fmt.Sprintf("HMS-%d", t.UnixMilli())
}

func origin(automatic bool) string {
	if automatic {
		return "automatic"
	}
	return "manual"
}

// Build creates the report described by req and persists it with a single
// write. For single-day periods an existing report of the same kind, type
// and date yields ErrDuplicateReport together with that report, unless
// req.Overwrite is set, in which case the existing record is replaced in
// place and keeps its ID and notes. A signed report is never replaced:
// Build returns it with ErrAlreadySigned.
func (b *Builder) Build(ctx context.Context, req Request) (*schema.Report, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var existing *schema.Report
	if req.Period.SingleDay() {
		found, err := b.store.FindByDay(ctx, req.Tenant, req.Kind, req.Type, req.Period.Start)
		switch {
		case err == nil:
			existing = found
		case !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("report: check existing: %w", err)
		}
	}
	if existing != nil && !req.Overwrite {
		b.metrics.DuplicateReport(string(req.Kind), "declined")
		b.log.Info("report exists, not overwriting",
			logging.String("tenant", req.Tenant),
			logging.String("kind", string(req.Kind)),
			logging.String("id", existing.ID))
		return existing, ErrDuplicateReport
	}
	if existing != nil && existing.Signed() {
		b.metrics.DuplicateReport(string(req.Kind), "signed")
		b.log.Warn("report is signed, not overwriting",
			logging.String("tenant", req.Tenant),
			logging.String("id", existing.ID),
			logging.String("signed_by", existing.Signature.SignedBy))
		return existing, ErrAlreadySigned
	}

	now := b.now()
	r := b.assemble(req, now)
	if existing != nil {
		r.ID = existing.ID
		r.Notes = existing.Notes
		if err := b.store.Replace(ctx, r); err != nil {
			return nil, fmt.Errorf("report: replace %s: %w", r.ID, err)
		}
		b.metrics.DuplicateReport(string(req.Kind), "overwritten")
	} else {
		if err := b.store.Insert(ctx, r); err != nil {
			return nil, fmt.Errorf("report: insert: %w", err)
		}
	}

	b.metrics.ReportGenerated(string(r.Kind), origin(req.Automatic), r.CompanyID, r.ComplianceScore)
	b.log.Info("report generated",
		logging.String("tenant", r.CompanyID),
		logging.String("id", r.ID),
		logging.String("number", r.ReportNumber),
		logging.String("status", string(r.Status)),
		logging.Int("score", r.ComplianceScore),
		logging.Bool("overwrite", existing != nil))
	return r, nil
}

func (b *Builder) assemble(req Request, now time.Time) *schema.Report {
	status := schema.ReportPending
	if req.Automatic {
		status = schema.ReportFinal
	}
	overall := req.OverallStatus
	if overall == "" {
		overall = schema.OverallPass
	}
	generatedBy := req.GeneratedBy
	if generatedBy == "" {
		generatedBy = "kitchencheck"
	}
	title := req.Title
	if title == "" {
		title = defaultTitle(req.Kind, req.Type)
	}
	return &schema.Report{
		ID:              uuid.NewString(),
		ReportNumber:    Number(req.Kind, req.Period.Start, now),
		CompanyID:       req.Tenant,
		Kind:            req.Kind,
		Type:            req.Type,
		Title:           title,
		Period:          req.Period,
		Summary:         req.Summary,
		Counts:          req.Counts,
		ComplianceScore: clampScore(req.ComplianceScore),
		OverallStatus:   overall,
		Insights:        req.Insights,
		Recommendations: req.Recommendations,
		Status:          status,
		GeneratedBy:     generatedBy,
		Automatic:       req.Automatic,
		CreatedAt:       now,
		Groups:          req.Groups,
		Sections:        req.Sections,
		DataGaps:        req.DataGaps,
	}
}

func defaultTitle(kind schema.ReportKind, typ schema.ReportType) string {
	if kind == schema.KindHACCPDaily {
		return "HACCP Daily Report"
	}
	if typ == "" {
		return "HMS Report"
	}
	return "HMS Report - " + string(typ)
}

func clampScore(s int) int {
	return min(max(s, 0), 100)
}

// Get loads one report.
func (b *Builder) Get(ctx context.Context, tenant, id string) (*schema.Report, error) {
	r, err := b.store.Get(ctx, tenant, id)
	if err != nil {
		return nil, fmt.Errorf("report: get %s: %w", id, err)
	}
	return r, nil
}

// List returns the tenant's reports, newest first.
func (b *Builder) List(ctx context.Context, tenant string, f store.ListFilter) ([]*schema.Report, error) {
	rs, err := b.store.List(ctx, tenant, f)
	if err != nil {
		return nil, fmt.Errorf("report: list: %w", err)
	}
	return rs, nil
}

// update loads a report, applies fn and writes it back in one update.
func (b *Builder) update(ctx context.Context, tenant, id string, fn func(*schema.Report) error) (*schema.Report, error) {
	r, err := b.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if err := fn(r); err != nil {
		return r, err
	}
	if err := b.store.Replace(ctx, r); err != nil {
		return nil, fmt.Errorf("report: update %s: %w", id, err)
	}
	return r, nil
}

// Sign records signer as the reviewer. A report can be signed once; later
// calls return ErrAlreadySigned and the unchanged report.
func (b *Builder) Sign(ctx context.Context, tenant, id, signer string, at time.Time) (*schema.Report, error) {
	signer = strings.TrimSpace(signer)
	if signer == "" {
		return nil, fmt.Errorf("%w: signer is required", ErrInvalidRequest)
	}
	r, err := b.update(ctx, tenant, id, func(r *schema.Report) error {
		if r.Signed() {
			return ErrAlreadySigned
		}
		r.Signature = &schema.Signature{SignedBy: signer, SignedAt: at.UTC()}
		return nil
	})
	if err == nil {
		b.log.Info("report signed", logging.String("id", id), logging.String("signer", signer))
	}
	return r, err
}

// Annotate replaces the report's free-text notes.
func (b *Builder) Annotate(ctx context.Context, tenant, id, notes string) (*schema.Report, error) {
	return b.update(ctx, tenant, id, func(r *schema.Report) error {
		r.Notes = notes
		return nil
	})
}

// Approve moves a report to the approved status.
func (b *Builder) Approve(ctx context.Context, tenant, id string) (*schema.Report, error) {
	return b.update(ctx, tenant, id, func(r *schema.Report) error {
		r.Status = schema.ReportApproved
		return nil
	})
}

// Delete removes a report.
func (b *Builder) Delete(ctx context.Context, tenant, id string) error {
	if err := b.store.Delete(ctx, tenant, id); err != nil {
		return fmt.Errorf("report: delete %s: %w", id, err)
	}
	b.log.Info("report deleted", logging.String("tenant", tenant), logging.String("id", id))
	return nil
}
