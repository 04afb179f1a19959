package schema

import "time"

// Assistant topics. Names outside this list get general advice.
const (
	TopicFireSafety         = "fire_safety"
	TopicFirstAid           = "first_aid"
	TopicRiskAssessment     = "risk_assessment"
	TopicWorkingEnvironment = "working_environment"
	TopicIncident           = "incident"
	TopicDeviation          = "deviation"
	TopicTraining           = "training"
	TopicDocuments          = "documents"
	TopicReport             = "report"
	TopicEnvironment        = "environment"
	TopicGeneral            = "general"
)

// Assistance is rule-based guidance for filling in one HMS area.
type Assistance struct {
	Topic       string   `json:"topic"`
	Suggestions []string `json:"suggestions"`
	Actions     []string `json:"actions"`
	Comments    []string `json:"comments"`
	Missing     []string `json:"missing"`
}

// AssistForm holds what the user has entered so far, one block per topic.
// Only the block of the requested topic is read.
type AssistForm struct {
	Fire        FireForm        `json:"fire_safety"`
	FirstAid    FirstAidForm    `json:"first_aid"`
	Risk        RiskForm        `json:"risk_assessment"`
	Workplace   WorkplaceForm   `json:"working_environment"`
	Incident    IncidentForm    `json:"incident"`
	Deviation   DeviationForm   `json:"deviation"`
	Training    TrainingForm    `json:"training"`
	Documents   DocumentsForm   `json:"documents"`
	Report      ReportForm      `json:"report"`
	Environment EnvironmentForm `json:"environment"`
}

type FireForm struct {
	Extinguishers  []string   `json:"extinguishers"`
	EscapeRoutes   []string   `json:"escape_routes"`
	NextInspection *time.Time `json:"next_inspection,omitempty"`
	DrillMissing   bool       `json:"drill_missing"`
}

type FirstAidForm struct {
	Kits              []string   `json:"kits"`
	TrainedPeople     int        `json:"trained_people"`
	CertificateExpiry *time.Time `json:"certificate_expiry,omitempty"`
}

type RiskForm struct {
	Areas        []string   `json:"areas"`
	HighRisk     []string   `json:"high_risk"`
	LastReviewed *time.Time `json:"last_reviewed,omitempty"`
}

type WorkplaceForm struct {
	SafetyRepresentative string  `json:"safety_representative"`
	SurveyDone           bool    `json:"survey_done"`
	SickLeavePercent     float64 `json:"sick_leave_percent"`
}

type IncidentForm struct {
	Type             string   `json:"type"`
	Description      string   `json:"description"`
	ImmediateActions []string `json:"immediate_actions"`
	Severity         string   `json:"severity"`
	PartiesNotified  bool     `json:"parties_notified"`
}

type DeviationForm struct {
	Type             string     `json:"type"`
	Cause            string     `json:"cause"`
	CorrectiveAction string     `json:"corrective_action"`
	PreventiveAction string     `json:"preventive_action"`
	Responsible      string     `json:"responsible"`
	Deadline         *time.Time `json:"deadline,omitempty"`
}

type TrainingForm struct {
	HasPlan             bool       `json:"has_plan"`
	ExpiredCertificates int        `json:"expired_certificates"`
	HasOnboarding       bool       `json:"has_onboarding"`
	LastUpdated         *time.Time `json:"last_updated,omitempty"`
}

type DocumentsForm struct {
	HasHandbook      bool     `json:"has_handbook"`
	Procedures       []string `json:"procedures"`
	HasDrawings      bool     `json:"has_drawings"`
	HasContracts     bool     `json:"has_contracts"`
	ExpiredDocuments int      `json:"expired_documents"`
}

// ReportForm describes the report being prepared. DataSources counts the
// records available per source.
type ReportForm struct {
	Type        ReportType     `json:"type"`
	DataSources map[string]int `json:"data_sources"`
}

type EnvironmentForm struct {
	HasWastePlan      bool       `json:"has_waste_plan"`
	Goals             []string   `json:"goals"`
	UsesFryingOil     bool       `json:"uses_frying_oil"`
	FryingOilSupplier string     `json:"frying_oil_supplier"`
	GreaseTrapEmptied *time.Time `json:"grease_trap_emptied,omitempty"`
	EcoProducts       bool       `json:"eco_products"`
}
