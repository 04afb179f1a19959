package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/kitchencheck/internal/schema"
)

// Row decoding is lenient: drivers return dates as strings or time.Time,
// booleans as bool or integers, and text as string or []byte.

// Text returns the column as a string; NULL yields "".
func (r Row) Text(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// Date parses a calendar date column. Unparseable values yield the zero time.
func (r Row) Date(key string) time.Time {
	if p := r.DatePtr(key); p != nil {
		return *p
	}
	return time.Time{}
}

// DatePtr is Date for optional columns; empty and invalid values yield nil.
func (r Row) DatePtr(key string) *time.Time {
	if t, ok := r[key].(time.Time); ok {
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &d
	}
	s := r.Text(key)
	if len(s) < len(schema.DateLayout) {
		return nil
	}
	t, err := time.Parse(schema.DateLayout, s[:len(schema.DateLayout)])
	if err != nil {
		return nil
	}
	return &t
}

// Float returns nil for NULL or non-numeric values.
func (r Row) Float(key string) *float64 {
	var f float64
	switch v := r[key].(type) {
	case nil:
		return nil
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case *float64:
		return v
	default:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(r.Text(key)), 64)
		if err != nil {
			return nil
		}
		f = parsed
	}
	return &f
}

// Bool returns nil for NULL or unrecognized values.
func (r Row) Bool(key string) *bool {
	var b bool
	switch v := r[key].(type) {
	case nil:
		return nil
	case bool:
		b = v
	case int64:
		b = v != 0
	case int:
		b = v != 0
	case *bool:
		return v
	default:
		parsed, err := strconv.ParseBool(r.Text(key))
		if err != nil {
			return nil
		}
		b = parsed
	}
	return &b
}

// Int returns 0 for NULL or non-numeric values.
func (r Row) Int(key string) int {
	if f := r.Float(key); f != nil {
		return int(*f)
	}
	return 0
}

func dateString(t time.Time) string {
	return t.Format(schema.DateLayout)
}

func optDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return dateString(*t)
}

func optFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func optBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func idOr(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func EncodeTemperature(r schema.TemperatureReading) Row {
	return Row{
		"id": idOr(r.ID), CompanyColumn: r.CompanyID,
		"log_date": dateString(r.Date), "log_time": r.Time,
		"zone": r.Zone, "equipment": r.Equipment,
		"temperature": optFloat(r.Celsius), "notes": r.Notes,
	}
}

func DecodeTemperature(r Row) schema.TemperatureReading {
	return schema.TemperatureReading{
		ID: r.Text("id"), CompanyID: r.Text(CompanyColumn),
		Date: r.Date("log_date"), Time: r.Text("log_time"),
		Zone: r.Text("zone"), Equipment: r.Text("equipment"),
		Celsius: r.Float("temperature"), Notes: r.Text("notes"),
	}
}

func EncodeCleaning(c schema.CleaningEntry) Row {
	return Row{
		"id": idOr(c.ID), CompanyColumn: c.CompanyID,
		"log_date": dateString(c.Date), "log_time": c.Time,
		"task": c.Task, "employee": c.Employee,
		"completed": optBool(c.Completed), "notes": c.Notes,
	}
}

func DecodeCleaning(r Row) schema.CleaningEntry {
	return schema.CleaningEntry{
		ID: r.Text("id"), CompanyID: r.Text(CompanyColumn),
		Date: r.Date("log_date"), Time: r.Text("log_time"),
		Task: r.Text("task"), Employee: r.Text("employee"),
		Completed: r.Bool("completed"), Notes: r.Text("notes"),
	}
}

func EncodeHygiene(h schema.HygieneCheck) Row {
	return Row{
		"id": idOr(h.ID), CompanyColumn: h.CompanyID,
		"check_date": dateString(h.Date), "staff_name": h.StaffName,
		"uniform_clean":   optBool(h.UniformClean),
		"hands_washed":    optBool(h.HandsWashed),
		"jewelry_removed": optBool(h.JewelryRemoved),
		"illness_free":    optBool(h.IllnessFree),
		"hair_covered":    optBool(h.HairCovered),
		"notes":           h.Notes,
	}
}

func DecodeHygiene(r Row) schema.HygieneCheck {
	return schema.HygieneCheck{
		ID: r.Text("id"), CompanyID: r.Text(CompanyColumn),
		Date: r.Date("check_date"), StaffName: r.Text("staff_name"),
		UniformClean:   r.Bool("uniform_clean"),
		HandsWashed:    r.Bool("hands_washed"),
		JewelryRemoved: r.Bool("jewelry_removed"),
		IllnessFree:    r.Bool("illness_free"),
		HairCovered:    r.Bool("hair_covered"),
		Notes:          r.Text("notes"),
	}
}

func EncodeCooling(c schema.CoolingLog) Row {
	return Row{
		"id": idOr(c.ID), CompanyColumn: c.CompanyID,
		"log_date": dateString(c.Date),
		"product_name": c.ProductName, "product_type": c.ProductType,
		"initial_temp": optFloat(c.InitialCelsius), "final_temp": optFloat(c.FinalCelsius),
		"start_time": c.StartTime, "end_time": c.EndTime,
		"within_limits": optBool(c.WithinLimits), "notes": c.Notes,
	}
}

func DecodeCooling(r Row) schema.CoolingLog {
	return schema.CoolingLog{
		ID: r.Text("id"), CompanyID: r.Text(CompanyColumn),
		Date:        r.Date("log_date"),
		ProductName: r.Text("product_name"), ProductType: r.Text("product_type"),
		InitialCelsius: r.Float("initial_temp"), FinalCelsius: r.Float("final_temp"),
		StartTime: r.Text("start_time"), EndTime: r.Text("end_time"),
		WithinLimits: r.Bool("within_limits"), Notes: r.Text("notes"),
	}
}

func EncodeIncident(i schema.Incident) Row {
	return Row{
		"id": idOr(i.ID), CompanyColumn: i.CompanyID,
		"incident_date": dateString(i.Date), "title": i.Title,
		"category_id": i.Category, "severity": i.Severity, "status": i.Status,
	}
}

func DecodeIncident(r Row) schema.Incident {
	return schema.Incident{
		ID: r.Text("id"), CompanyID: r.Text(CompanyColumn),
		Date: r.Date("incident_date"), Title: r.Text("title"),
		Category: r.Text("category_id"), Severity: r.Text("severity"),
		Status: r.Text("status"),
	}
}

func EncodeFollowup(company string, f schema.Followup) Row {
	return Row{
		"id": uuid.NewString(), CompanyColumn: company,
		"incident_id": f.IncidentID, "status": f.Status, "notes": f.Notes,
	}
}

func DecodeFollowup(r Row) schema.Followup {
	return schema.Followup{
		IncidentID: r.Text("incident_id"), Status: r.Text("status"), Notes: r.Text("notes"),
	}
}

func EncodeRisk(a schema.RiskAssessment) Row {
	return Row{
		"id": idOr(a.ID), CompanyColumn: a.CompanyID,
		"hazard_type": a.HazardType, "hazard_description": a.Description,
		"likelihood": a.Likelihood, "consequence": a.Consequence,
		"risk_score": a.RiskScore, "risk_level": a.RiskLevel,
		"preventive_measures": a.PreventiveMeasures,
		"responsible_person":  a.Responsible,
		"status":              a.Status,
		"deadline":            optDate(a.Deadline),
		"notes":               a.Notes,
	}
}

func DecodeRisk(r Row) schema.RiskAssessment {
	return schema.RiskAssessment{
		ID: r.Text("id"), CompanyID: r.Text(CompanyColumn),
		HazardType: r.Text("hazard_type"), Description: r.Text("hazard_description"),
		Likelihood: r.Int("likelihood"), Consequence: r.Int("consequence"),
		RiskScore: r.Int("risk_score"), RiskLevel: r.Text("risk_level"),
		PreventiveMeasures: r.Text("preventive_measures"),
		Responsible:        r.Text("responsible_person"),
		Status:             r.Text("status"),
		Deadline:           r.DatePtr("deadline"),
		Notes:              r.Text("notes"),
	}
}

func EncodeEquipment(company string, e schema.Equipment) Row {
	return Row{
		"id": uuid.NewString(), CompanyColumn: company,
		"equipment_name": e.Name, "equipment_type": e.Type,
		"quantity": e.Quantity, "equipment_condition": e.Condition,
		"status": e.Status, "location": e.Location,
		"last_check_date": optDate(e.LastCheck), "expiry_date": optDate(e.Expiry),
		"description": e.Notes,
	}
}

func DecodeEquipment(r Row) schema.Equipment {
	return schema.Equipment{
		Name: r.Text("equipment_name"), Type: r.Text("equipment_type"),
		Quantity: r.Int("quantity"), Condition: r.Text("equipment_condition"),
		Status: r.Text("status"), Location: r.Text("location"),
		LastCheck: r.DatePtr("last_check_date"), Expiry: r.DatePtr("expiry_date"),
		Notes: r.Text("description"),
	}
}

func EncodeInspection(company string, i schema.Inspection) Row {
	return Row{
		"id": uuid.NewString(), CompanyColumn: company,
		"inspection_date": dateString(i.Date), "inspection_type": i.Type,
		"performed_by": i.PerformedBy, "status": i.Status, "notes": i.Notes,
	}
}

func DecodeInspection(r Row) schema.Inspection {
	return schema.Inspection{
		Date: r.Date("inspection_date"), Type: r.Text("inspection_type"),
		PerformedBy: r.Text("performed_by"), Status: r.Text("status"),
		Notes: r.Text("notes"),
	}
}

func EncodeResponsible(company string, p schema.Responsible) Row {
	return Row{
		"id": uuid.NewString(), CompanyColumn: company,
		"name": p.Name, "department": p.Department,
		"phone": p.Phone, "email": p.Email,
		"last_course_date":        optDate(p.LastCourse),
		"certificate_valid_until": optDate(p.CertValidUntil),
	}
}

func DecodeResponsible(r Row) schema.Responsible {
	return schema.Responsible{
		Name: r.Text("name"), Department: r.Text("department"),
		Phone: r.Text("phone"), Email: r.Text("email"),
		LastCourse:     r.DatePtr("last_course_date"),
		CertValidUntil: r.DatePtr("certificate_valid_until"),
	}
}

func EncodeTraining(company string, t schema.Training) Row {
	return Row{
		"id": uuid.NewString(), CompanyColumn: company,
		"title": t.Title, "name": t.Name,
		"training_date": optDate(t.Date), "completed": optBool(t.Completed),
	}
}

func DecodeTraining(r Row) schema.Training {
	return schema.Training{
		Title: r.Text("title"), Name: r.Text("name"),
		Date: r.DatePtr("training_date"), Completed: r.Bool("completed"),
	}
}

func EncodeEntry(company string, e schema.EnvironmentEntry) Row {
	return Row{
		"id": uuid.NewString(), CompanyColumn: company,
		"entry_date": optDate(e.Date), "description": e.Description, "status": e.Status,
	}
}

func DecodeEntry(r Row) schema.EnvironmentEntry {
	return schema.EnvironmentEntry{
		Date: r.DatePtr("entry_date"), Description: r.Text("description"), Status: r.Text("status"),
	}
}
