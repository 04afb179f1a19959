// Package schema defines the canonical data types shared by the fetcher,
// classifier, aggregator, report builder and renderers.
package schema

import "time"

// DateLayout is the wire format for calendar dates in the backend.
const DateLayout = "2006-01-02"

// Status is the three-tier classification of a single record.
type Status string

const (
	StatusSafe    Status = "safe"
	StatusWarning Status = "warning"
	StatusDanger  Status = "danger"
)

// OverallStatus is the report-level tri-state.
type OverallStatus string

const (
	OverallPass    OverallStatus = "pass"
	OverallWarning OverallStatus = "warning"
	OverallFail    OverallStatus = "fail"
)

// Ordinal orders statuses for worst-case comparison. safe=0, warning=1,
// danger=2. Unknown values rank as danger so they can never mask a problem.
func (s Status) Ordinal() int {
	switch s {
	case StatusSafe:
		return 0
	case StatusWarning:
		return 1
	default:
		return 2
	}
}

// Overall maps a record status onto the report-level tri-state.
func (s Status) Overall() OverallStatus {
	switch s {
	case StatusSafe:
		return OverallPass
	case StatusWarning:
		return OverallWarning
	default:
		return OverallFail
	}
}

// ReportKind distinguishes the two report families.
type ReportKind string

const (
	KindHACCPDaily ReportKind = "haccp_daily"
	KindHMS        ReportKind = "hms"
)

// ReportType is the period granularity or origin of a report.
type ReportType string

const (
	TypeDaily     ReportType = "daily"
	TypeWeekly    ReportType = "weekly"
	TypeMonthly   ReportType = "monthly"
	TypeQuarterly ReportType = "quarterly"
	TypeAnnual    ReportType = "annual"
	TypeCustom    ReportType = "custom"
)

// ReportStatus is the review lifecycle of a persisted report.
type ReportStatus string

const (
	ReportDraft    ReportStatus = "draft"
	ReportPending  ReportStatus = "pending"
	ReportFinal    ReportStatus = "final"
	ReportApproved ReportStatus = "approved"
)

// Period is an inclusive date range.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Day returns the single-day period containing t.
func Day(t time.Time) Period {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Period{Start: d, End: d}
}

// Valid reports whether Start <= End.
func (p Period) Valid() bool {
	return !p.End.Before(p.Start)
}

// SingleDay reports whether the period covers exactly one calendar date.
func (p Period) SingleDay() bool {
	return p.Start.Format(DateLayout) == p.End.Format(DateLayout)
}

// Counts holds the per-category totals carried on a report.
type Counts struct {
	TotalIncidents       int `json:"total_incidents"`
	SafetyIncidents      int `json:"safety_incidents"`
	EnvironmentIncidents int `json:"environment_incidents"`
	HealthIncidents      int `json:"health_incidents"`
	Deviations           int `json:"deviations"`
	Critical             int `json:"critical"`
	Warnings             int `json:"warnings"`

	Temperatures int `json:"temperatures"`
	Cleaning     int `json:"cleaning"`
	Hygiene      int `json:"hygiene"`
	Cooling      int `json:"cooling"`
}

// Signature records the human reviewer who signed a report.
type Signature struct {
	SignedBy string    `json:"signed_by"`
	SignedAt time.Time `json:"signed_at"`
}

// GroupSummary is the persisted shape of an aggregated group.
type GroupSummary struct {
	Key      string        `json:"key"`
	Status   OverallStatus `json:"status"`
	Total    int           `json:"total"`
	Safe     int           `json:"safe"`
	Warning  int           `json:"warning"`
	Danger   int           `json:"danger"`
	Readings []LineItem    `json:"readings,omitempty"`
}

// LineItem is a rendered row inside a group: one classified record.
type LineItem struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Limits string `json:"limits,omitempty"`
	Time   string `json:"time,omitempty"`
	Status Status `json:"status"`
}

// Report is the persisted report entity.
type Report struct {
	ID              string        `json:"id"`
	ReportNumber    string        `json:"report_number"`
	CompanyID       string        `json:"company_id"`
	Kind            ReportKind    `json:"kind"`
	Type            ReportType    `json:"report_type"`
	Title           string        `json:"title"`
	Period          Period        `json:"period"`
	Summary         string        `json:"summary"`
	Counts          Counts        `json:"counts"`
	ComplianceScore int           `json:"compliance_score"`
	OverallStatus   OverallStatus `json:"overall_status"`
	Insights        string        `json:"insights,omitempty"`
	Recommendations string        `json:"recommendations,omitempty"`
	Status          ReportStatus  `json:"status"`
	GeneratedBy     string        `json:"generated_by"`
	Automatic       bool          `json:"automatic"`
	CreatedAt       time.Time     `json:"created_at"`
	Notes           string        `json:"notes,omitempty"`
	Signature       *Signature    `json:"signature,omitempty"`

	Groups   []GroupSummary `json:"groups,omitempty"`
	Sections []Section      `json:"sections,omitempty"`
	// DataGaps names collections whose fetch failed while building the report.
	DataGaps []string `json:"data_gaps,omitempty"`
}

// Section is a titled block of line items (cleaning, hygiene, cooling).
type Section struct {
	Title  string        `json:"title"`
	Status OverallStatus `json:"status"`
	Items  []LineItem    `json:"items"`
}

// Signed reports whether the report already carries a signature.
func (r *Report) Signed() bool {
	return r.Signature != nil && r.Signature.SignedBy != ""
}
