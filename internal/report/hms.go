package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/kitchencheck/internal/aggregate"
	"github.com/dshills/kitchencheck/internal/analysis"
	"github.com/dshills/kitchencheck/internal/fetch"
	"github.com/dshills/kitchencheck/internal/schema"
)

// HMSOptions control one HMS report generation.
type HMSOptions struct {
	Options
	Type    schema.ReportType
	Title   string
	Summary string
}

// incidentStatus classifies an incident: critical is danger, anything not
// closed is a warning.
func incidentStatus(i schema.Incident) schema.Status {
	switch {
	case i.Critical():
		return schema.StatusDanger
	case !i.Closed():
		return schema.StatusWarning
	default:
		return schema.StatusSafe
	}
}

func categoryOf(i schema.Incident) string {
	if c := strings.TrimSpace(i.Category); c != "" {
		return c
	}
	return otherZone
}

// IncidentCounts derives the HMS counts from a period's incidents.
// Categories match by substring, so "fire_safety" counts as safety.
func IncidentCounts(incidents []schema.Incident) schema.Counts {
	c := schema.Counts{TotalIncidents: len(incidents)}
	for _, i := range incidents {
		cat := strings.ToLower(i.Category)
		if strings.Contains(cat, "safety") {
			c.SafetyIncidents++
		}
		if strings.Contains(cat, "environment") {
			c.EnvironmentIncidents++
		}
		if strings.Contains(cat, "health") {
			c.HealthIncidents++
		}
		if !i.Closed() {
			c.Deviations++
		}
		switch incidentStatus(i) {
		case schema.StatusDanger:
			c.Critical++
		case schema.StatusWarning:
			c.Warnings++
		}
	}
	return c
}

// HMSContent is the aggregated incident data of one period.
type HMSContent struct {
	Incidents []schema.Incident
	Groups    []schema.GroupSummary
	Counts    schema.Counts
	Overall   schema.Status
	Score     int
}

// AssembleHMS aggregates incidents by category and scores them as
// 100 − 10·critical − 2·total.
func AssembleHMS(incidents []schema.Incident) HMSContent {
	classified := aggregate.Classify(incidents, incidentStatus)
	groups := aggregate.GroupBy(classified, categoryOf)
	counts := IncidentCounts(incidents)
	return HMSContent{
		Incidents: incidents,
		Groups: aggregate.Summaries(groups, func(c aggregate.Classified[schema.Incident]) schema.LineItem {
			return schema.LineItem{
				Label:  c.Record.Title,
				Value:  c.Record.Severity,
				Limits: c.Record.Status,
				Time:   c.Record.Date.Format(schema.DateLayout),
				Status: c.Status,
			}
		}),
		Counts:  counts,
		Overall: aggregate.Overall(groups),
		Score:   aggregate.IncidentPenalties.Score(counts.Critical, counts.TotalIncidents),
	}
}

// GenerateHMS builds and persists the HMS incident report for period. It
// returns the incidents the report was built from so callers can render
// them.
func (s *Service) GenerateHMS(ctx context.Context, tenant string, period schema.Period, opts HMSOptions) (*schema.Report, []schema.Incident, error) {
	if !period.Valid() {
		return nil, nil, fmt.Errorf("%w: period end before start", ErrInvalidRequest)
	}
	var gaps fetch.Gaps
	incidents := s.fetcher.Incidents(ctx, tenant, period, &gaps)
	content := AssembleHMS(incidents)

	typ := opts.Type
	if typ == "" {
		typ = schema.TypeMonthly
	}
	summary := opts.Summary
	if summary == "" {
		summary = fmt.Sprintf("Report for the period %s to %s",
			period.Start.Format(schema.DateLayout), period.End.Format(schema.DateLayout))
	}

	r, err := s.Builder.Build(ctx, Request{
		Tenant:          tenant,
		Kind:            schema.KindHMS,
		Type:            typ,
		Period:          period,
		Title:           opts.Title,
		Summary:         summary,
		Counts:          content.Counts,
		ComplianceScore: content.Score,
		OverallStatus:   content.Overall.Overall(),
		Insights:        analysis.Insights(incidents),
		Recommendations: analysis.Recommendations(incidents),
		GeneratedBy:     opts.GeneratedBy,
		Groups:          content.Groups,
		DataGaps:        gaps.List(),
		Automatic:       opts.Automatic,
		Overwrite:       opts.Overwrite,
	})
	return r, incidents, err
}
