package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/kitchencheck/internal/schema"
)

// SaveAnalysis records one section analysis for tenant.
func SaveAnalysis(ctx context.Context, b Backend, tenant string, a schema.Analysis) error {
	issues, err := json.Marshal(a.Issues)
	if err != nil {
		return fmt.Errorf("store: encode issues: %w", err)
	}
	solutions, err := json.Marshal(a.Solutions)
	if err != nil {
		return fmt.Errorf("store: encode solutions: %w", err)
	}
	return b.Insert(ctx, Analyses, Row{
		"id":                  uuid.NewString(),
		CompanyColumn:         tenant,
		"section_name":        a.Section,
		"severity":            string(a.Severity),
		"title":               a.Title,
		"description":         a.Description,
		"detected_issues":     string(issues),
		"suggested_solutions": string(solutions),
		"risk_score":          a.RiskScore,
		"priority":            string(a.Priority),
		"source":              string(a.Source),
		"analyzed_at":         Timestamp(a.AnalyzedAt),
	})
}

// RecentAnalyses returns up to limit analyses of section, newest first.
func RecentAnalyses(ctx context.Context, b Backend, tenant, section string, limit int) ([]schema.Analysis, error) {
	q := Where(Eq(CompanyColumn, tenant), Eq("section_name", section)).Order("analyzed_at", true)
	q.Limit = limit
	rows, err := b.Select(ctx, Analyses, q)
	if err != nil {
		return nil, err
	}
	out := make([]schema.Analysis, 0, len(rows))
	for _, row := range rows {
		a := schema.Analysis{
			Section:     row.Text("section_name"),
			Severity:    schema.Severity(row.Text("severity")),
			Title:       row.Text("title"),
			Description: row.Text("description"),
			RiskScore:   row.Int("risk_score"),
			Priority:    schema.Priority(row.Text("priority")),
			Source:      schema.AnalysisSource(row.Text("source")),
		}
		if t, err := time.Parse(time.RFC3339Nano, row.Text("analyzed_at")); err == nil {
			a.AnalyzedAt = t
		}
		// Malformed lists decode as empty rather than failing the read.
		_ = json.Unmarshal([]byte(row.Text("detected_issues")), &a.Issues)
		_ = json.Unmarshal([]byte(row.Text("suggested_solutions")), &a.Solutions)
		out = append(out, a)
	}
	return out, nil
}
