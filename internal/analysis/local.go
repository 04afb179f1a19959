package analysis

import (
	"fmt"
	"time"

	"github.com/dshills/kitchencheck/internal/schema"
)

// Bucket maps a risk score onto severity and priority: above 70 is
// critical/urgent, above 40 high, above 20 medium, otherwise low.
func Bucket(score int) (schema.Severity, schema.Priority) {
	switch {
	case score > 70:
		return schema.SeverityCritical, schema.PriorityUrgent
	case score > 40:
		return schema.SeverityHigh, schema.PriorityHigh
	case score > 20:
		return schema.SeverityMedium, schema.PriorityMedium
	default:
		return schema.SeverityLow, schema.PriorityLow
	}
}

// findings accumulates issues, solutions and the running risk score.
type findings struct {
	issues    []string
	solutions []string
	score     int
}

func (f *findings) issue(text, solution string, points int) {
	f.issues = append(f.issues, text)
	f.solutions = append(f.solutions, solution)
	f.score += points
}

func (f *findings) advise(solution string, points int) {
	f.solutions = append(f.solutions, solution)
	f.score += points
}

// Local analyzes a section with fixed rules. It never fails and returns the
// same result for the same input and clock.
func Local(sectionName string, d schema.SectionData, now time.Time) schema.Analysis {
	var f findings
	switch sectionName {
	case "incidents":
		localIncidents(&f, d)
	case "risk_assessment":
		localRisks(&f, d)
	case "fire_safety":
		localFire(&f, d)
	case "first_aid":
		localFirstAid(&f, d, now)
	case "training":
		localTraining(&f, d)
	case "environment":
		localEnvironment(&f, d)
	case "personnel":
		localPersonnel(&f, d)
	}

	if len(f.issues) == 0 && len(f.solutions) == 0 {
		f.solutions = append(f.solutions,
			"Keep up the good HMS work and update documentation regularly",
			"Carry out regular checks and reviews",
		)
	}

	score := min(f.score, 100)
	sev, prio := Bucket(f.score)
	desc := "Good HMS practice observed. Continue the systematic work."
	if len(f.issues) > 0 {
		desc = fmt.Sprintf("Identified %d issues that need attention.", len(f.issues))
	}
	return schema.Analysis{
		Section:     sectionName,
		Severity:    sev,
		Title:       sectionName + " - Analysis",
		Description: desc,
		Issues:      nonNil(f.issues),
		Solutions:   f.solutions,
		RiskScore:   score,
		Priority:    prio,
		Source:      schema.SourceLocal,
		AnalyzedAt:  now,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func localIncidents(f *findings, d schema.SectionData) {
	critical := 0
	for _, i := range d.Incidents {
		if i.Severity == "critical" || i.Severity == "high" {
			critical++
		}
	}
	open := 0
	for _, fu := range d.Followups {
		if fu.Open() {
			open++
		}
	}
	if critical > 0 {
		f.issue(fmt.Sprintf("%d critical incidents registered", critical),
			"Prioritize immediate follow-up of critical incidents", critical*20)
	}
	if open > 0 {
		f.issue(fmt.Sprintf("%d open follow-ups waiting to be closed", open),
			"Complete and document all open follow-ups", open*10)
	}
	if len(d.Incidents) == 0 {
		f.advise("Make sure all incidents are reported and documented", 0)
	}
}

func localRisks(f *findings, d schema.SectionData) {
	high, open := 0, 0
	for _, r := range d.Risks {
		if r.RiskLevel == "high" || r.RiskLevel == "critical" {
			high++
		}
		if r.Status == "open" {
			open++
		}
	}
	if high > 0 {
		f.issue(fmt.Sprintf("%d high-risk items identified", high),
			"Prioritize immediate measures for high-risk areas", high*15)
	}
	if open > 0 {
		f.issue(fmt.Sprintf("%d open risk assessments need follow-up", open),
			"Assign a responsible person and a deadline to every open risk assessment", open*10)
	}
	if len(d.Risks) == 0 {
		f.issue("No risk assessments registered",
			"Carry out a systematic risk assessment of all work areas", 40)
	}
}

func localFire(f *findings, d schema.SectionData) {
	defect := 0
	for _, e := range d.Equipment {
		if e.OutOfService() {
			defect++
		}
	}
	if defect > 0 {
		f.issue(fmt.Sprintf("%d fire safety equipment items need service", defect),
			"Schedule immediate service or replacement of defective equipment", defect*20)
	}
	if len(d.Equipment) == 0 {
		f.issue("No fire safety equipment registered",
			"Register all fire safety equipment with location and check dates", 35)
	}
	if len(d.Inspections) == 0 {
		f.advise("Carry out regular fire inspections and document the results", 15)
	}
}

func localFirstAid(f *findings, d schema.SectionData, now time.Time) {
	if len(d.Responsible) == 0 {
		f.issue("No first aid responsible registered",
			"Appoint and train a first aid responsible immediately", 30)
	}
	if len(d.Equipment) == 0 {
		f.issue("No first aid equipment registered",
			"Acquire and register the required first aid equipment", 25)
	}
	expired := 0
	for _, e := range d.Equipment {
		if e.Expired(now) {
			expired++
		}
	}
	if expired > 0 {
		f.issue(fmt.Sprintf("%d first aid items are past their expiry date", expired),
			"Replace expired first aid items immediately", expired*10)
	}
}

func localTraining(f *findings, d schema.SectionData) {
	if len(d.Training) == 0 {
		f.issue("No training registered",
			"Create a training plan and carry out the required training", 30)
	}
	completed := 0
	for _, a := range d.Attendees {
		if a.Completed != nil && *a.Completed {
			completed++
		}
	}
	// No attendees counts as a zero completion rate.
	if float64(completed)/float64(max(1, len(d.Attendees))) < 0.8 {
		f.issue("Low training completion rate",
			"Follow up employees who are missing required training", 15)
	}
}

func localEnvironment(f *findings, d schema.SectionData) {
	if len(d.Goals) == 0 {
		f.advise("Set concrete environmental goals for the business", 10)
	}
	if len(d.Waste) == 0 {
		f.advise("Create a waste plan and document waste handling", 15)
	}
	if len(d.FryingOil) == 0 {
		f.advise("Document handling and disposal of frying oil", 10)
	}
}

func localPersonnel(f *findings, d schema.SectionData) {
	if len(d.SafetyReps) == 0 {
		f.issue("No safety representative registered",
			"Appoint a safety representative as required by the Working Environment Act", 25)
	}
	if len(d.Employees) == 0 {
		f.advise("Register all employees in the system", 15)
	}
}
