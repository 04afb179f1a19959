// Package render produces terminal and API output for reports and analyses.
package render

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/dshills/kitchencheck/internal/schema"
)

// RenderJSON produces a pretty-printed JSON representation of v, usually a
// *schema.Report, a report list, an analysis or a section report.
func RenderJSON(v any) ([]byte, error) {
	if v == nil || (reflect.ValueOf(v).Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil()) {
		return nil, fmt.Errorf("render: nil value")
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: json marshal: %w", err)
	}
	return b, nil
}

func date(p schema.Period) string {
	if p.SingleDay() {
		return p.Start.Format(schema.DateLayout)
	}
	return p.Start.Format(schema.DateLayout) + " to " + p.End.Format(schema.DateLayout)
}

// RenderMarkdown produces a GitHub-flavoured Markdown summary of the report.
// Every group key and section title present in the report appears in the
// output.
func RenderMarkdown(report *schema.Report) string {
	if report == nil {
		return ""
	}
	var sb strings.Builder

	fmt.Fprintf(&sb, "## %s\n\n", report.Title)
	fmt.Fprintf(&sb, "**Report:** %s  \n", report.ReportNumber)
	fmt.Fprintf(&sb, "**Period:** %s  \n", date(report.Period))
	fmt.Fprintf(&sb, "**Status:** %s  \n", report.Status)
	fmt.Fprintf(&sb, "**Result:** %s  \n", report.OverallStatus)
	fmt.Fprintf(&sb, "**Score:** %d/100\n\n", report.ComplianceScore)

	if len(report.DataGaps) > 0 {
		fmt.Fprintf(&sb, "> **Incomplete data:** %s could not be read and count as empty.\n\n",
			strings.Join(report.DataGaps, ", "))
	}
	if report.Summary != "" {
		sb.WriteString(report.Summary + "\n\n")
	}

	c := report.Counts
	if report.Kind == schema.KindHMS {
		fmt.Fprintf(&sb, "**Incidents:** %d | **Safety:** %d | **Environment:** %d | **Health:** %d | **Deviations:** %d\n\n",
			c.TotalIncidents, c.SafetyIncidents, c.EnvironmentIncidents, c.HealthIncidents, c.Deviations)
	} else {
		fmt.Fprintf(&sb, "**Critical:** %d | **Warnings:** %d | **Readings:** %d | **Cleaning:** %d | **Hygiene:** %d | **Cooling:** %d\n\n",
			c.Critical, c.Warnings, c.Temperatures, c.Cleaning, c.Hygiene, c.Cooling)
	}

	if len(report.Groups) > 0 {
		sb.WriteString("### Groups\n\n")
		sb.WriteString("| Group | Status | Total | Safe | Warning | Danger |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		for _, g := range report.Groups {
			fmt.Fprintf(&sb, "| %s | %s | %d | %d | %d | %d |\n",
				mdEscape(g.Key), g.Status, g.Total, g.Safe, g.Warning, g.Danger)
		}
		sb.WriteString("\n")
		for _, g := range report.Groups {
			writeItems(&sb, g.Key, g.Readings)
		}
	}

	for _, s := range report.Sections {
		fmt.Fprintf(&sb, "### %s [%s]\n\n", s.Title, s.Status)
		if len(s.Items) == 0 {
			sb.WriteString("No entries.\n\n")
			continue
		}
		writeItems(&sb, "", s.Items)
	}

	if report.Insights != "" {
		sb.WriteString("### Analysis\n\n" + report.Insights + "\n\n")
	}
	if report.Recommendations != "" {
		sb.WriteString("### Recommendations\n\n")
		for _, r := range strings.Split(report.Recommendations, "\n") {
			if r = strings.TrimSpace(r); r != "" {
				fmt.Fprintf(&sb, "- %s\n", r)
			}
		}
		sb.WriteString("\n")
	}
	if report.Notes != "" {
		sb.WriteString("### Notes\n\n" + report.Notes + "\n\n")
	}
	if report.Signed() {
		fmt.Fprintf(&sb, "Signed by %s at %s\n", report.Signature.SignedBy,
			report.Signature.SignedAt.Format("2006-01-02 15:04"))
	} else {
		sb.WriteString("Not signed\n")
	}
	return sb.String()
}

// writeItems renders line items inside a collapsible block.
func writeItems(sb *strings.Builder, title string, items []schema.LineItem) {
	if len(items) == 0 {
		return
	}
	if title != "" {
		fmt.Fprintf(sb, "<details>\n<summary><strong>%s</strong></summary>\n\n", title)
	}
	sb.WriteString("| Item | Value | Limits | Time | Status |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, it := range items {
		fmt.Fprintf(sb, "| %s | %s | %s | %s | %s |\n",
			mdEscape(it.Label), mdEscape(it.Value), mdEscape(it.Limits), mdEscape(it.Time), it.Status)
	}
	sb.WriteString("\n")
	if title != "" {
		sb.WriteString("</details>\n\n")
	}
}

// RenderList produces a Markdown table of reports.
func RenderList(reports []*schema.Report) string {
	if len(reports) == 0 {
		return "No reports.\n"
	}
	var sb strings.Builder
	sb.WriteString("| ID | Number | Kind | Period | Status | Result | Score | Signed |\n")
	sb.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, r := range reports {
		signed := "no"
		if r.Signed() {
			signed = mdEscape(r.Signature.SignedBy)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s | %d | %s |\n",
			r.ID, r.ReportNumber, r.Kind, date(r.Period), r.Status, r.OverallStatus, r.ComplianceScore, signed)
	}
	return sb.String()
}

// RenderAnalysis produces a Markdown summary of one section analysis.
func RenderAnalysis(a schema.Analysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", a.Title)
	fmt.Fprintf(&sb, "**Severity:** %s | **Priority:** %s | **Risk score:** %d/100 | **Source:** %s\n\n",
		a.Severity, a.Priority, a.RiskScore, a.Source)
	if a.Description != "" {
		sb.WriteString(a.Description + "\n\n")
	}
	writeList(&sb, "Issues", a.Issues)
	writeList(&sb, "Solutions", a.Solutions)
	return sb.String()
}

// RenderSectionReport produces a Markdown summary of a section report.
func RenderSectionReport(r schema.SectionReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", r.Title)
	fmt.Fprintf(&sb, "**Period:** %s  \n", date(r.Period))
	fmt.Fprintf(&sb, "**Entries:** %d | **Critical:** %d | **Warnings:** %d | **Score:** %d/100 | **Source:** %s\n\n",
		r.TotalEntries, r.CriticalFindings, r.WarningsCount, r.ComplianceScore, r.Source)
	if r.Summary != "" {
		sb.WriteString(r.Summary + "\n\n")
	}
	writeList(&sb, "Recommendations", r.Recommendations)
	return sb.String()
}

// RenderAssistance produces a Markdown checklist of assistant guidance.
func RenderAssistance(a schema.Assistance) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Assistant: %s\n\n", a.Topic)
	writeList(&sb, "Missing", a.Missing)
	writeList(&sb, "Actions", a.Actions)
	writeList(&sb, "Suggestions", a.Suggestions)
	writeList(&sb, "Comments", a.Comments)
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "### %s\n\n", title)
	for _, it := range items {
		fmt.Fprintf(sb, "- %s\n", it)
	}
	sb.WriteString("\n")
}

// mdEscape replaces characters that would break Markdown table cells.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}
