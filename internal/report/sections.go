package report

import (
	"context"
	"fmt"

	"github.com/dshills/kitchencheck/internal/logging"
	"github.com/dshills/kitchencheck/internal/schema"
	"github.com/dshills/kitchencheck/internal/section"
	"github.com/dshills/kitchencheck/internal/store"
)

// priorAnalyses is how many recent analyses feed a section report.
const priorAnalyses = 10

// SectionData loads every collection of the named section. The second
// result lists collections that could not be read.
func (s *Service) SectionData(ctx context.Context, tenant, name string) (section.Section, schema.SectionData, []string, error) {
	sec, err := section.Load(name)
	if err != nil {
		return section.Section{}, schema.SectionData{}, nil, err
	}
	data, gaps := s.fetcher.Section(ctx, tenant, sec.Collections)
	if len(gaps) > 0 {
		s.log.Warn("section data incomplete",
			logging.String("tenant", tenant),
			logging.String("section", name),
			logging.Any("gaps", gaps))
	}
	return sec, data, gaps, nil
}

// AnalyzeSection analyzes the named section and records the result. The
// analysis itself cannot fail; only an unknown section or a failed write
// returns an error.
func (s *Service) AnalyzeSection(ctx context.Context, tenant, name string) (schema.Analysis, error) {
	sec, data, _, err := s.SectionData(ctx, tenant, name)
	if err != nil {
		return schema.Analysis{}, err
	}
	a := s.advisor.Analyze(ctx, sec, data)
	if err := store.SaveAnalysis(ctx, s.backend, tenant, a); err != nil {
		return a, fmt.Errorf("report: save analysis: %w", err)
	}
	return a, nil
}

// SectionReport writes the narrative report of the named section from its
// current data and the most recent analyses. A failed read of the prior
// analyses is treated as none.
func (s *Service) SectionReport(ctx context.Context, tenant, name string, period schema.Period) (schema.SectionReport, error) {
	sec, data, _, err := s.SectionData(ctx, tenant, name)
	if err != nil {
		return schema.SectionReport{}, err
	}
	prior, err := store.RecentAnalyses(ctx, s.backend, tenant, name, priorAnalyses)
	if err != nil {
		s.log.Warn("prior analyses unavailable", logging.String("section", name), logging.Error(err))
		prior = nil
	}
	return s.advisor.Narrative(ctx, sec, data, prior, period), nil
}
