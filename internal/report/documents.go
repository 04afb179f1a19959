package report

import (
	"context"
	"fmt"

	"github.com/dshills/kitchencheck/internal/fetch"
	"github.com/dshills/kitchencheck/internal/logging"
	"github.com/dshills/kitchencheck/internal/pdf"
	"github.com/dshills/kitchencheck/internal/schema"
)

// Section names that have a printable document.
const (
	SectionRisk       = "risk_assessment"
	SectionFirstAid   = "first_aid"
	SectionFireSafety = "fire_safety"
)

// Document lays out the PDF of a persisted report. HMS reports list the
// incidents of their period, read again at render time; a failed read
// prints the report without the log.
func (s *Service) Document(ctx context.Context, r *schema.Report, meta pdf.Meta) *pdf.Document {
	if r.Kind == schema.KindHACCPDaily {
		return pdf.HACCPDaily(r, meta)
	}
	var gaps fetch.Gaps
	incidents := s.fetcher.Incidents(ctx, r.CompanyID, r.Period, &gaps)
	if missing := gaps.List(); len(missing) > 0 {
		s.log.Warn("incident log unavailable for document",
			logging.String("report", r.ID), logging.Any("gaps", missing))
	}
	return pdf.HMSReport(r, incidents, meta)
}

// SectionDocument lays out the PDF of one HMS section and returns it with
// its download slug.
func (s *Service) SectionDocument(ctx context.Context, tenant, name string, meta pdf.Meta) (*pdf.Document, string, error) {
	switch name {
	case SectionRisk, SectionFirstAid, SectionFireSafety:
	default:
		return nil, "", fmt.Errorf("%w: no document for section %q", ErrInvalidRequest, name)
	}
	_, data, _, err := s.SectionData(ctx, tenant, name)
	if err != nil {
		return nil, "", err
	}
	switch name {
	case SectionRisk:
		return pdf.RiskAssessment(data.Risks, meta), pdf.SlugRisk, nil
	case SectionFirstAid:
		return pdf.FirstAid(data, meta), pdf.SlugFirstAid, nil
	default:
		return pdf.FireSafety(data, meta), pdf.SlugFireSafety, nil
	}
}
