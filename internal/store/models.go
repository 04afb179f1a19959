package store

// Table models used only to create the schema. Reads and writes go through
// maps so every collection shares one code path.

type temperatureRow struct {
	ID          string `gorm:"primaryKey;size:64"`
	CompanyID   string `gorm:"index;size:64"`
	LogDate     string `gorm:"index;size:10"`
	LogTime     string `gorm:"size:8"`
	Zone        string
	Equipment   string
	Temperature *float64
	Notes       string
}

type cleaningRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	CompanyID string `gorm:"index;size:64"`
	LogDate   string `gorm:"index;size:10"`
	LogTime   string `gorm:"size:8"`
	Task      string
	Employee  string
	Completed *bool
	Notes     string
}

type hygieneRow struct {
	ID             string `gorm:"primaryKey;size:64"`
	CompanyID      string `gorm:"index;size:64"`
	CheckDate      string `gorm:"index;size:10"`
	StaffName      string
	UniformClean   *bool
	HandsWashed    *bool
	JewelryRemoved *bool
	IllnessFree    *bool
	HairCovered    *bool
	Notes          string
}

type coolingRow struct {
	ID           string `gorm:"primaryKey;size:64"`
	CompanyID    string `gorm:"index;size:64"`
	LogDate      string `gorm:"index;size:10"`
	ProductName  string
	ProductType  string
	InitialTemp  *float64
	FinalTemp    *float64
	StartTime    string `gorm:"size:8"`
	EndTime      string `gorm:"size:8"`
	WithinLimits *bool
	Notes        string
}

type incidentRow struct {
	ID           string `gorm:"primaryKey;size:64"`
	CompanyID    string `gorm:"index;size:64"`
	IncidentDate string `gorm:"index;size:10"`
	Title        string
	CategoryID   string
	Severity     string
	Status       string
}

type followupRow struct {
	ID         string `gorm:"primaryKey;size:64"`
	CompanyID  string `gorm:"index;size:64"`
	IncidentID string
	Status     string
	Notes      string
}

type riskRow struct {
	ID                 string `gorm:"primaryKey;size:64"`
	CompanyID          string `gorm:"index;size:64"`
	HazardType         string
	HazardDescription  string
	Likelihood         int
	Consequence        int
	RiskScore          int
	RiskLevel          string
	PreventiveMeasures string
	ResponsiblePerson  string
	Status             string
	Deadline           string `gorm:"size:10"`
	Notes              string
}

type equipmentRow struct {
	ID                 string `gorm:"primaryKey;size:64"`
	CompanyID          string `gorm:"index;size:64"`
	EquipmentName      string
	EquipmentType      string
	Quantity           int
	EquipmentCondition string
	Status             string
	Location           string
	LastCheckDate      string `gorm:"size:10"`
	ExpiryDate         string `gorm:"size:10"`
	Description        string
}

type inspectionRow struct {
	ID             string `gorm:"primaryKey;size:64"`
	CompanyID      string `gorm:"index;size:64"`
	InspectionDate string `gorm:"index;size:10"`
	InspectionType string
	PerformedBy    string
	Status         string
	Notes          string
}

type personRow struct {
	ID                    string `gorm:"primaryKey;size:64"`
	CompanyID             string `gorm:"index;size:64"`
	Name                  string
	Department            string
	Phone                 string
	Email                 string
	LastCourseDate        string `gorm:"size:10"`
	CertificateValidUntil string `gorm:"size:10"`
}

type trainingRow struct {
	ID           string `gorm:"primaryKey;size:64"`
	CompanyID    string `gorm:"index;size:64"`
	Title        string
	Name         string
	TrainingDate string `gorm:"size:10"`
	Completed    *bool
}

type entryRow struct {
	ID          string `gorm:"primaryKey;size:64"`
	CompanyID   string `gorm:"index;size:64"`
	EntryDate   string `gorm:"size:10"`
	Description string
	Status      string
}

type analysisRow struct {
	ID                 string `gorm:"primaryKey;size:64"`
	CompanyID          string `gorm:"index;size:64"`
	SectionName        string `gorm:"index"`
	Severity           string
	Title              string
	Description        string
	DetectedIssues     string
	SuggestedSolutions string
	RiskScore          int
	Priority           string
	Source             string
	AnalyzedAt         string `gorm:"index"`
}

type reportRow struct {
	ID              string `gorm:"primaryKey;size:64"`
	CompanyID       string `gorm:"index;size:64"`
	Kind            string `gorm:"index;size:32"`
	ReportType      string `gorm:"size:32"`
	ReportDate      string `gorm:"index;size:10"`
	PeriodEnd       string `gorm:"size:10"`
	ReportNumber    string
	Status          string `gorm:"size:16"`
	OverallStatus   string `gorm:"size:16"`
	ComplianceScore int
	CreatedAt       string
	Payload         string `gorm:"type:text"`
}

// tables maps every collection to the model that defines its schema.
var tables = map[string]any{
	Temperatures:         &temperatureRow{},
	Cleaning:             &cleaningRow{},
	Hygiene:              &hygieneRow{},
	Cooling:              &coolingRow{},
	Incidents:            &incidentRow{},
	Followups:            &followupRow{},
	RiskAssessments:      &riskRow{},
	FireResponsible:      &personRow{},
	FireEquipment:        &equipmentRow{},
	FireInspections:      &inspectionRow{},
	FirstAidResponsible:  &personRow{},
	FirstAidEquipment:    &equipmentRow{},
	FirstAidInspections:  &inspectionRow{},
	Training:             &trainingRow{},
	TrainingAttendees:    &trainingRow{},
	Employees:            &personRow{},
	SafetyRepresentative: &personRow{},
	EnvironmentWaste:     &entryRow{},
	EnvironmentGoals:     &entryRow{},
	EnvironmentFryingOil: &entryRow{},
	Analyses:             &analysisRow{},
	Reports:              &reportRow{},
}
