package analysis

import (
	"fmt"
	"strings"

	"github.com/dshills/kitchencheck/internal/schema"
)

// Insights summarizes a period's incidents as newline-separated sentences
// for the HMS report.
func Insights(incidents []schema.Incident) string {
	if len(incidents) == 0 {
		return "No incidents registered in this period. Excellent safety record!"
	}
	var lines []string
	if n := countCritical(incidents); n > 0 {
		lines = append(lines, fmt.Sprintf("%d critical incidents require immediate follow-up.", n))
	}
	open := 0
	for _, i := range incidents {
		if i.Status == "open" {
			open++
		}
	}
	if open > 0 {
		lines = append(lines, fmt.Sprintf("%d incidents are still open and awaiting resolution.", open))
	}
	if len(incidents) > 10 {
		lines = append(lines, "A high number of incidents may indicate a need for further safety measures.")
	}
	if len(lines) == 0 {
		return "Generally good safety level in this period."
	}
	return strings.Join(lines, "\n")
}

// Recommendations lists follow-up actions for a period's incidents, one per
// line. The two standing recommendations are always present.
func Recommendations(incidents []schema.Incident) string {
	var lines []string
	if countCritical(incidents) > 0 {
		lines = append(lines,
			"Perform an immediate risk evaluation of critical incidents",
			"Implement corrective actions within 48 hours",
		)
	}
	if len(incidents) > 5 {
		lines = append(lines,
			"Consider extra safety training for employees",
			"Review and update HMS procedures",
		)
	}
	lines = append(lines,
		"Continue regular safety inspections",
		"Maintain good communication about safety",
	)
	return strings.Join(lines, "\n")
}

func countCritical(incidents []schema.Incident) int {
	n := 0
	for _, i := range incidents {
		if i.Critical() {
			n++
		}
	}
	return n
}
