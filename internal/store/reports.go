package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dshills/kitchencheck/internal/schema"
)

// ReportStore persists reports as one row each: indexed columns for lookup
// plus the full report as a JSON payload.
type ReportStore struct {
	b Backend
}

func NewReportStore(b Backend) *ReportStore {
	return &ReportStore{b: b}
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Kind   schema.ReportKind
	Status schema.ReportStatus
	Limit  int
}

func reportRowOf(r *schema.Report) (Row, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("store: encode report: %w", err)
	}
	return Row{
		"id":               r.ID,
		CompanyColumn:      r.CompanyID,
		"kind":             string(r.Kind),
		"report_type":      string(r.Type),
		"report_date":      dateString(r.Period.Start),
		"period_end":       dateString(r.Period.End),
		"report_number":    r.ReportNumber,
		"status":           string(r.Status),
		"overall_status":   string(r.OverallStatus),
		"compliance_score": r.ComplianceScore,
		"created_at":       Timestamp(r.CreatedAt),
		"payload":          string(payload),
	}, nil
}

func reportOf(row Row) (*schema.Report, error) {
	var r schema.Report
	if err := json.Unmarshal([]byte(row.Text("payload")), &r); err != nil {
		return nil, fmt.Errorf("store: decode report %s: %w", row.Text("id"), err)
	}
	return &r, nil
}

// Insert writes a new report.
func (s *ReportStore) Insert(ctx context.Context, r *schema.Report) error {
	row, err := reportRowOf(r)
	if err != nil {
		return err
	}
	return s.b.Insert(ctx, Reports, row)
}

// Replace overwrites the stored report with the same ID in a single update.
func (s *ReportStore) Replace(ctx context.Context, r *schema.Report) error {
	row, err := reportRowOf(r)
	if err != nil {
		return err
	}
	delete(row, "id")
	return s.b.Update(ctx, Reports, r.ID, row)
}

// Get loads one report of tenant.
func (s *ReportStore) Get(ctx context.Context, tenant, id string) (*schema.Report, error) {
	rows, err := s.b.Select(ctx, Reports, Where(Eq("id", id), Eq(CompanyColumn, tenant)))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return reportOf(rows[0])
}

// FindByDay returns the report of kind and type whose period starts on day.
func (s *ReportStore) FindByDay(ctx context.Context, tenant string, kind schema.ReportKind, typ schema.ReportType, day time.Time) (*schema.Report, error) {
	q := Where(
		Eq(CompanyColumn, tenant),
		Eq("kind", string(kind)),
		Eq("report_type", string(typ)),
		Eq("report_date", dateString(day)),
	).Order("created_at", true)
	q.Limit = 1
	rows, err := s.b.Select(ctx, Reports, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return reportOf(rows[0])
}

// List returns the tenant's reports, newest first.
func (s *ReportStore) List(ctx context.Context, tenant string, f ListFilter) ([]*schema.Report, error) {
	q := Where(Eq(CompanyColumn, tenant)).Order("created_at", true)
	if f.Kind != "" {
		q = q.And(Eq("kind", string(f.Kind)))
	}
	if f.Status != "" {
		q = q.And(Eq("status", string(f.Status)))
	}
	q.Limit = f.Limit
	rows, err := s.b.Select(ctx, Reports, q)
	if err != nil {
		return nil, err
	}
	out := make([]*schema.Report, 0, len(rows))
	for _, row := range rows {
		r, err := reportOf(row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Delete removes a report after checking it belongs to tenant.
func (s *ReportStore) Delete(ctx context.Context, tenant, id string) error {
	if _, err := s.Get(ctx, tenant, id); err != nil {
		return err
	}
	return s.b.Delete(ctx, Reports, id)
}
