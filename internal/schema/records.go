package schema

import "time"

// TemperatureReading is one logged temperature for a piece of equipment.
// Celsius is nil when the reading was never entered.
type TemperatureReading struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Date      time.Time `json:"log_date"`
	Time      string    `json:"log_time"`
	Zone      string    `json:"zone"`
	Equipment string    `json:"equipment"`
	Celsius   *float64  `json:"temperature"`
	Notes     string    `json:"notes,omitempty"`
}

// CleaningEntry records whether a cleaning task was done.
type CleaningEntry struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Date      time.Time `json:"log_date"`
	Time      string    `json:"log_time"`
	Task      string    `json:"task"`
	Employee  string    `json:"employee"`
	Completed *bool     `json:"completed"`
	Notes     string    `json:"notes,omitempty"`
}

// HygieneCheck is the personal-hygiene checklist for one staff member.
type HygieneCheck struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	Date           time.Time `json:"check_date"`
	StaffName      string    `json:"staff_name"`
	UniformClean   *bool     `json:"uniform_clean"`
	HandsWashed    *bool     `json:"hands_washed"`
	JewelryRemoved *bool     `json:"jewelry_removed"`
	IllnessFree    *bool     `json:"illness_free"`
	HairCovered    *bool     `json:"hair_covered"`
	Notes          string    `json:"notes,omitempty"`
}

// Checks returns the checklist answers in a fixed order.
func (h HygieneCheck) Checks() []*bool {
	return []*bool{h.UniformClean, h.HandsWashed, h.JewelryRemoved, h.IllnessFree, h.HairCovered}
}

// CoolingLog tracks a product cooled from cooking to storage temperature.
type CoolingLog struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	Date           time.Time `json:"log_date"`
	ProductName    string    `json:"product_name"`
	ProductType    string    `json:"product_type"`
	InitialCelsius *float64  `json:"initial_temp"`
	FinalCelsius   *float64  `json:"final_temp"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	WithinLimits   *bool     `json:"within_limits"`
	Notes          string    `json:"notes,omitempty"`
}

// Incident is an HMS incident or deviation.
type Incident struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Date      time.Time `json:"incident_date"`
	Title     string    `json:"title"`
	Category  string    `json:"category_id"`
	Severity  string    `json:"severity"`
	Status    string    `json:"status"`
}

// Critical reports whether the incident carries a critical severity.
func (i Incident) Critical() bool {
	return i.Severity == "critical"
}

// Closed reports whether the incident has been resolved.
func (i Incident) Closed() bool {
	return i.Status == "closed"
}

// RiskAssessment is one assessed hazard.
type RiskAssessment struct {
	ID                 string     `json:"id"`
	CompanyID          string     `json:"company_id"`
	HazardType         string     `json:"hazard_type"`
	Description        string     `json:"hazard_description"`
	Likelihood         int        `json:"likelihood"`
	Consequence        int        `json:"consequence"`
	RiskScore          int        `json:"risk_score"`
	RiskLevel          string     `json:"risk_level"`
	PreventiveMeasures string     `json:"preventive_measures"`
	Responsible        string     `json:"responsible_person"`
	Status             string     `json:"status"`
	Deadline           *time.Time `json:"deadline,omitempty"`
	Notes              string     `json:"notes,omitempty"`
}

// Equipment is a safety equipment item (fire extinguisher, first-aid kit).
type Equipment struct {
	Name      string     `json:"name"`
	Type      string     `json:"type,omitempty"`
	Quantity  int        `json:"quantity"`
	Condition string     `json:"condition"`
	Status    string     `json:"status"`
	Location  string     `json:"location"`
	LastCheck *time.Time `json:"last_check_date,omitempty"`
	Expiry    *time.Time `json:"expiry_date,omitempty"`
	Notes     string     `json:"description,omitempty"`
}

// Inspection is a recorded check of safety equipment.
type Inspection struct {
	Date        time.Time `json:"inspection_date"`
	Type        string    `json:"inspection_type"`
	PerformedBy string    `json:"performed_by"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
}

// Responsible is the designated person for a safety area.
type Responsible struct {
	Name           string     `json:"name"`
	Department     string     `json:"department,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Email          string     `json:"email,omitempty"`
	LastCourse     *time.Time `json:"last_course_date,omitempty"`
	CertValidUntil *time.Time `json:"certificate_valid_until,omitempty"`
}

// Equipment status values that mean the item is out of service.
const (
	EquipmentDefect       = "defect"
	EquipmentNeedsService = "needs_service"
)

// OutOfService reports whether the item needs repair or replacement.
func (e Equipment) OutOfService() bool {
	return e.Status == EquipmentDefect || e.Status == EquipmentNeedsService
}

// Expired reports whether the item's expiry date lies before now.
func (e Equipment) Expired(now time.Time) bool {
	return e.Expiry != nil && e.Expiry.Before(now)
}

// Followup tracks corrective work on an incident.
type Followup struct {
	IncidentID string `json:"incident_id"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
}

// Open reports whether the follow-up is still waiting to be closed.
func (f Followup) Open() bool {
	return f.Status == "open"
}

// Training is a planned or completed course, or one attendee of it when
// Name is set.
type Training struct {
	Title     string     `json:"title"`
	Name      string     `json:"name,omitempty"`
	Date      *time.Time `json:"training_date,omitempty"`
	Completed *bool      `json:"completed"`
}

// EnvironmentEntry is one line of an environment register (waste, goals,
// frying oil).
type EnvironmentEntry struct {
	Date        *time.Time `json:"entry_date,omitempty"`
	Description string     `json:"description"`
	Status      string     `json:"status,omitempty"`
}
