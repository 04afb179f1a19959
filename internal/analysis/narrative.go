package analysis

import (
	"fmt"
	"strings"

	"github.com/dshills/kitchencheck/internal/aggregate"
	"github.com/dshills/kitchencheck/internal/schema"
	"github.com/dshills/kitchencheck/internal/section"
)

// maxRecommendations caps the recommendation list of a section report.
const maxRecommendations = 10

// findingCounts derives critical and warning counts from prior analyses:
// critical or high severity is a critical finding, medium a warning.
func findingCounts(prior []schema.Analysis) (critical, warnings int) {
	for _, a := range prior {
		switch a.Severity {
		case schema.SeverityCritical, schema.SeverityHigh:
			critical++
		case schema.SeverityMedium:
			warnings++
		}
	}
	return critical, warnings
}

// LocalNarrative builds the section report from counts and prior analyses
// without calling a model.
func LocalNarrative(sec section.Section, d schema.SectionData, prior []schema.Analysis, p schema.Period) schema.SectionReport {
	total := d.Entries()
	critical, warnings := findingCounts(prior)

	var sb strings.Builder
	var recs []string
	if total > 0 {
		fmt.Fprintf(&sb, "The report covers %s with a total of %d entries in the period. ", sec.DisplayName, total)
		if critical > 0 {
			fmt.Fprintf(&sb, "%d critical findings require immediate attention. ", critical)
		}
		if warnings > 0 {
			fmt.Fprintf(&sb, "In addition there are %d warnings that should be followed up. ", warnings)
		}
		if critical == 0 && warnings == 0 {
			sb.WriteString("No critical deviations or warnings registered. ")
		}
		sb.WriteString("See the detailed analysis and recommendations below.")
	} else {
		fmt.Fprintf(&sb, "No data registered for %s in the period. Systematic registration is "+
			"recommended to ensure good HMS practice and regulatory compliance.", sec.DisplayName)
		recs = append(recs,
			"Start systematic registration in "+sec.DisplayName,
			"Establish routines for regular documentation",
			"Carry out the necessary employee training",
		)
	}

	recs = mergeRecommendations(recs, prior)
	if len(recs) == 0 {
		recs = []string{
			"Continue the systematic HMS work",
			"Carry out regular checks and updates",
			"Keep the documentation up to date",
		}
	}

	return schema.SectionReport{
		Section:          sec.Name,
		Title:            sec.DisplayName + " - HMS Report",
		Summary:          sb.String(),
		Recommendations:  recs,
		TotalEntries:     total,
		CriticalFindings: critical,
		WarningsCount:    warnings,
		ComplianceScore:  aggregate.ComplianceScore(critical, warnings),
		Source:           schema.SourceLocal,
		Period:           p,
	}
}

// mergeRecommendations appends the prior analyses' solutions to recs,
// skipping duplicates, and truncates to maxRecommendations.
func mergeRecommendations(recs []string, prior []schema.Analysis) []string {
	seen := make(map[string]bool, len(recs))
	for _, r := range recs {
		seen[r] = true
	}
	for _, a := range prior {
		for _, s := range a.Solutions {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			recs = append(recs, s)
		}
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}
