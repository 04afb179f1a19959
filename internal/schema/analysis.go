package schema

import "time"

// Severity buckets an analysis result.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Priority is the suggested follow-up urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// AnalysisSource records whether a result came from the model or local rules.
type AnalysisSource string

const (
	SourceModel AnalysisSource = "model"
	SourceLocal AnalysisSource = "local"
)

// Analysis is the structured result of analyzing one HMS section.
type Analysis struct {
	Section     string         `json:"section"`
	Severity    Severity       `json:"severity"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Issues      []string       `json:"issues"`
	Solutions   []string       `json:"solutions"`
	RiskScore   int            `json:"risk_score"`
	Priority    Priority       `json:"priority"`
	Source      AnalysisSource `json:"source"`
	AnalyzedAt  time.Time      `json:"analyzed_at"`
}

// SectionReport is the narrative report generated for one HMS section.
type SectionReport struct {
	Section          string         `json:"section"`
	Title            string         `json:"title"`
	Summary          string         `json:"summary"`
	Recommendations  []string       `json:"recommendations"`
	TotalEntries     int            `json:"total_entries"`
	CriticalFindings int            `json:"critical_findings"`
	WarningsCount    int            `json:"warnings_count"`
	ComplianceScore  int            `json:"compliance_score"`
	Source           AnalysisSource `json:"source"`
	Period           Period         `json:"period"`
}

// SectionData is everything fetched for one HMS section. Only the fields the
// section uses are populated.
type SectionData struct {
	Incidents   []Incident         `json:"incidents,omitempty"`
	Followups   []Followup         `json:"followups,omitempty"`
	Risks       []RiskAssessment   `json:"risk_assessments,omitempty"`
	Responsible []Responsible      `json:"responsible,omitempty"`
	Equipment   []Equipment        `json:"equipment,omitempty"`
	Inspections []Inspection       `json:"inspections,omitempty"`
	Training    []Training         `json:"training,omitempty"`
	Attendees   []Training         `json:"attendees,omitempty"`
	Employees   []Responsible      `json:"employees,omitempty"`
	SafetyReps  []Responsible      `json:"safety_representatives,omitempty"`
	Waste       []EnvironmentEntry `json:"waste,omitempty"`
	Goals       []EnvironmentEntry `json:"goals,omitempty"`
	FryingOil   []EnvironmentEntry `json:"frying_oil,omitempty"`
}

// Entries counts every record across all lists.
func (d SectionData) Entries() int {
	return len(d.Incidents) + len(d.Followups) + len(d.Risks) +
		len(d.Responsible) + len(d.Equipment) + len(d.Inspections) +
		len(d.Training) + len(d.Attendees) + len(d.Employees) +
		len(d.SafetyReps) + len(d.Waste) + len(d.Goals) + len(d.FryingOil)
}
