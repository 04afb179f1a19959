package render

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dshills/kitchencheck/internal/schema"
)

func sampleReport() *schema.Report {
	day := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	return &schema.Report{
		ID:              "0b6f",
		ReportNumber:    "HACCP-20250603-1748980800000",
		CompanyID:       "acme",
		Kind:            schema.KindHACCPDaily,
		Type:            schema.TypeDaily,
		Title:           "HACCP Daily Report 2025-06-03",
		Period:          schema.Day(day),
		Summary:         "3 temperature readings recorded.",
		Counts:          schema.Counts{Critical: 1, Temperatures: 3, Cleaning: 1},
		ComplianceScore: 85,
		OverallStatus:   schema.OverallFail,
		Status:          schema.ReportFinal,
		GeneratedBy:     "kitchencheck",
		CreatedAt:       day.Add(20 * time.Hour),
		Groups: []schema.GroupSummary{
			{Key: "Freezer", Status: schema.OverallFail, Total: 2, Safe: 1, Danger: 1, Readings: []schema.LineItem{
				{Label: "Freezer 1", Value: "-20.0 °C", Limits: "-32 to -18 °C", Time: "08:00", Status: schema.StatusSafe},
				{Label: "Freezer 2", Value: "-10.0 °C", Limits: "-32 to -18 °C", Time: "08:05", Status: schema.StatusDanger},
			}},
			{Key: "Fridge", Status: schema.OverallPass, Total: 1, Safe: 1},
		},
		Sections: []schema.Section{
			{Title: "Cleaning", Status: schema.OverallPass, Items: []schema.LineItem{{Label: "Floors|walls", Value: "Kari", Status: schema.StatusSafe}}},
			{Title: "Cooling", Status: schema.OverallPass},
		},
		DataGaps: []string{"hygiene_checks"},
	}
}

func TestRenderJSON_RoundTrip(t *testing.T) {
	report := sampleReport()
	b, err := RenderJSON(report)
	if err != nil {
		t.Fatalf("RenderJSON error: %v", err)
	}
	var got schema.Report
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("json.Unmarshal error: %v", err)
	}
	if got.ComplianceScore != report.ComplianceScore {
		t.Errorf("score mismatch: got %d, want %d", got.ComplianceScore, report.ComplianceScore)
	}
	if got.OverallStatus != report.OverallStatus {
		t.Errorf("overall mismatch: got %q, want %q", got.OverallStatus, report.OverallStatus)
	}
	if len(got.Groups) != len(report.Groups) {
		t.Errorf("group count mismatch: got %d, want %d", len(got.Groups), len(report.Groups))
	}
	if !got.Period.Start.Equal(report.Period.Start) {
		t.Errorf("period mismatch: got %v, want %v", got.Period.Start, report.Period.Start)
	}
}

func TestRenderJSON_PrettyPrinted(t *testing.T) {
	b, err := RenderJSON(sampleReport())
	if err != nil {
		t.Fatalf("RenderJSON error: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "\n") || !strings.Contains(s, "  ") {
		t.Error("expected indented multi-line JSON output")
	}
	if !strings.Contains(s, `"report_number": "HACCP-20250603-1748980800000"`) {
		t.Error("expected snake_case field names")
	}
}

func TestRenderJSON_Nil(t *testing.T) {
	if _, err := RenderJSON(nil); err == nil {
		t.Error("expected error for nil value")
	}
	var r *schema.Report
	if _, err := RenderJSON(r); err == nil {
		t.Error("expected error for nil report pointer")
	}
}

func TestRenderMarkdown_ContainsGroupsAndSections(t *testing.T) {
	md := RenderMarkdown(sampleReport())
	for _, want := range []string{"Freezer", "Fridge", "Cleaning", "Cooling", "Freezer 2", "**Score:** 85/100", "hygiene_checks", "Not signed"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
	if !strings.Contains(md, `Floors\|walls`) {
		t.Error("pipe in item label not escaped")
	}
	if !strings.Contains(md, "### Cooling [pass]\n\nNo entries.") {
		t.Error("empty section not marked")
	}
}

func TestRenderMarkdown_HMS(t *testing.T) {
	r := sampleReport()
	r.Kind = schema.KindHMS
	r.Period.End = r.Period.Start.AddDate(0, 1, 0)
	r.Counts = schema.Counts{TotalIncidents: 4, SafetyIncidents: 2, Deviations: 1}
	r.Recommendations = "Continue regular safety inspections\n\nMaintain good communication about safety"
	r.Signature = &schema.Signature{SignedBy: "Ola", SignedAt: r.CreatedAt}

	md := RenderMarkdown(r)
	for _, want := range []string{
		"2025-06-03 to 2025-07-03", "**Incidents:** 4", "- Continue regular safety inspections\n",
		"- Maintain good communication about safety\n", "Signed by Ola at 2025-06-03 20:00",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestRenderMarkdown_NilReport(t *testing.T) {
	if got := RenderMarkdown(nil); got != "" {
		t.Errorf("expected empty string for nil report, got %q", got)
	}
}

func TestRenderList(t *testing.T) {
	if got := RenderList(nil); got != "No reports.\n" {
		t.Errorf("RenderList(nil) = %q", got)
	}
	out := RenderList([]*schema.Report{sampleReport()})
	if !strings.Contains(out, "| 0b6f | HACCP-20250603-1748980800000 | haccp_daily | 2025-06-03 | final | fail | 85 | no |") {
		t.Errorf("unexpected list row:\n%s", out)
	}
}

func TestRenderAnalysis(t *testing.T) {
	out := RenderAnalysis(schema.Analysis{
		Title: "personnel - Analysis", Severity: schema.SeverityMedium, Priority: schema.PriorityMedium,
		RiskScore: 40, Source: schema.SourceLocal,
		Issues:    []string{"No safety representative registered"},
		Solutions: []string{"Register all employees in the system"},
	})
	for _, want := range []string{"## personnel - Analysis", "**Risk score:** 40/100", "### Issues", "- Register all employees in the system"} {
		if !strings.Contains(out, want) {
			t.Errorf("analysis output missing %q", want)
		}
	}
}

func TestRenderSectionReport(t *testing.T) {
	out := RenderSectionReport(schema.SectionReport{
		Title: "Personnel - HMS Report", Summary: "ok", ComplianceScore: 95, WarningsCount: 1,
		Recommendations: []string{"a", "b"}, Period: schema.Day(time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)),
	})
	if !strings.Contains(out, "**Score:** 95/100") || !strings.Contains(out, "- b\n") {
		t.Errorf("unexpected section report output:\n%s", out)
	}
}

func TestMdEscape(t *testing.T) {
	cases := []struct{ in, want string }{
		{"no pipes", "no pipes"},
		{"a|b", `a\|b`},
		{"a|b|c", `a\|b\|c`},
		{"line\nbreak", "line break"},
		{"", ""},
	}
	for _, c := range cases {
		got := mdEscape(c.in)
		if got != c.want {
			t.Errorf("mdEscape(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRenderAssistance(t *testing.T) {
	out := RenderAssistance(schema.Assistance{
		Topic:   schema.TopicFireSafety,
		Missing: []string{"Escape routes must be documented"},
		Actions: []string{"Hold a fire drill for all employees"},
	})
	for _, want := range []string{"## Assistant: fire_safety", "### Missing", "- Escape routes must be documented", "### Actions"} {
		if !strings.Contains(out, want) {
			t.Errorf("assistance output missing %q", want)
		}
	}
	if strings.Contains(out, "### Comments") {
		t.Error("empty lists should be left out")
	}
}
