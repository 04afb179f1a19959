package pdf

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshills/kitchencheck/internal/schema"
)

// Meta is the context shared by the document templates.
type Meta struct {
	Company   string
	Logo      []byte // PNG or JPEG; ignored when it does not decode
	Generated time.Time
	Measurer  Measurer
	Geometry  Geometry
}

func (m Meta) session(h Header) *Session {
	s := NewSession(Options{Geometry: m.Geometry, Measurer: m.Measurer, Title: h.Title})
	h.Company = m.Company
	h.Generated = m.Generated
	s.AddHeader(h)
	return s
}

// Download name prefixes.
const (
	SlugHACCP      = "HACCP_Report"
	SlugHMS        = "HMS_Report"
	SlugRisk       = "Risk_Assessment"
	SlugFirstAid   = "First_Aid"
	SlugFireSafety = "Fire_Safety"
)

const (
	maxInspections = 10
	logoX, logoY   = 150, 10
	logoW, logoH   = 40, 20
	noteSize       = 9
	inspectionSize = 9
	subheadingSize = 11
)

// Filename returns <slug>_<YYYY-MM-DD>.pdf.
func Filename(slug string, day time.Time) string {
	return fmt.Sprintf("%s_%s.pdf", slug, day.Format(schema.DateLayout))
}

// ReportFilename names the download for a persisted report after its kind
// and first day.
func ReportFilename(r *schema.Report) string {
	if r.Kind == schema.KindHACCPDaily {
		return Filename(SlugHACCP, r.Period.Start)
	}
	return Filename(SlugHMS, r.Period.Start)
}

func statusLabel(s schema.Status) string {
	switch s {
	case schema.StatusSafe:
		return "OK"
	case schema.StatusWarning:
		return "Warning"
	default:
		return "Critical"
	}
}

func overallLabel(s schema.OverallStatus) string {
	switch s {
	case schema.OverallPass:
		return "Pass"
	case schema.OverallWarning:
		return "Warning"
	default:
		return "Fail"
	}
}

func overallVariant(s schema.OverallStatus) Variant {
	switch s {
	case schema.OverallPass:
		return Success
	case schema.OverallWarning:
		return Warning
	default:
		return Danger
	}
}

func reportStatusLabel(s schema.ReportStatus) string {
	switch s {
	case schema.ReportDraft:
		return "Draft"
	case schema.ReportPending:
		return "Pending review"
	case schema.ReportFinal:
		return "Final"
	case schema.ReportApproved:
		return "Approved"
	default:
		return string(s)
	}
}

func typeLabel(t schema.ReportType) string {
	switch t {
	case schema.TypeDaily:
		return "Daily report"
	case schema.TypeWeekly:
		return "Weekly report"
	case schema.TypeMonthly:
		return "Monthly report"
	case schema.TypeQuarterly:
		return "Quarterly report"
	case schema.TypeAnnual:
		return "Annual report"
	case schema.TypeCustom:
		return "Custom report"
	default:
		return string(t)
	}
}

func date(t time.Time) string {
	return t.Format(schema.DateLayout)
}

func optDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return date(*t)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// HACCPDaily lays out a HACCP daily report: report details, temperature
// readings per zone, the cleaning, hygiene and cooling sections and the
// signature block.
func HACCPDaily(r *schema.Report, meta Meta) *Document {
	s := meta.session(Header{Title: r.Title, Subtitle: "Report " + r.ReportNumber})
	s.AddImage("logo", meta.Logo, logoX, logoY, logoW, logoH)

	s.AddSectionTitle("Report information", Primary)
	s.AddKeyValue("Date", date(r.Period.Start))
	s.AddKeyValue("Report number", r.ReportNumber)
	s.AddKeyValue("Generated", r.CreatedAt.Format("2006-01-02 15:04"))
	s.AddKeyValue("Generated by", r.GeneratedBy)
	s.AddKeyValue("Status", reportStatusLabel(r.Status))
	s.AddKeyValue("Overall result", overallLabel(r.OverallStatus))
	s.AddKeyValue("Compliance score", fmt.Sprintf("%d%%", r.ComplianceScore))
	s.AddSpacing(DefaultSpacing)

	if len(r.DataGaps) > 0 {
		s.AddInfoBox("Incomplete data",
			"These records could not be read and are counted as empty: "+strings.Join(r.DataGaps, ", ")+".",
			Warning)
	}
	if r.Summary != "" {
		s.AddText(r.Summary, TextStyle{})
	}

	s.AddBulletList([]string{
		fmt.Sprintf("Temperature readings: %d", r.Counts.Temperatures),
		fmt.Sprintf("Cleaning tasks: %d", r.Counts.Cleaning),
		fmt.Sprintf("Hygiene checks: %d", r.Counts.Hygiene),
		fmt.Sprintf("Cooling logs: %d", r.Counts.Cooling),
		fmt.Sprintf("Deviations: %d (%d critical, %d warnings)", r.Counts.Deviations, r.Counts.Critical, r.Counts.Warnings),
	})

	s.AddSectionTitle("Temperature control", Primary)
	if len(r.Groups) == 0 {
		s.AddText("No temperature readings recorded.", TextStyle{Color: grey})
	}
	for _, g := range r.Groups {
		s.AddText(fmt.Sprintf("%s - %s (%d readings, %d warnings, %d critical)",
			g.Key, overallLabel(g.Status), g.Total, g.Warning, g.Danger),
			TextStyle{Size: subheadingSize, Bold: true, Color: colors(overallVariant(g.Status)).solid})
		rows := make([][]string, 0, len(g.Readings))
		for _, li := range g.Readings {
			rows = append(rows, []string{li.Label, li.Value, orDash(li.Limits), orDash(li.Time), statusLabel(li.Status)})
		}
		s.AddTable([]string{"Equipment", "Temperature", "Limits", "Time", "Status"}, rows)
	}

	for _, sec := range r.Sections {
		s.AddSectionTitle(sec.Title, overallVariant(sec.Status))
		if len(sec.Items) == 0 {
			s.AddText("No entries recorded.", TextStyle{Color: grey})
			continue
		}
		rows := make([][]string, 0, len(sec.Items))
		for _, li := range sec.Items {
			rows = append(rows, []string{orDash(li.Label), orDash(li.Value), orDash(li.Time), statusLabel(li.Status)})
		}
		s.AddTable([]string{"Item", "Result", "Time", "Status"}, rows)
	}

	if r.Notes != "" {
		s.AddSectionTitle("Notes", Primary)
		s.AddText(r.Notes, TextStyle{})
	}

	s.AddSectionTitle("Signature", Primary)
	if r.Signed() {
		s.AddKeyValue("Signed by", r.Signature.SignedBy)
		s.AddKeyValue("Signed at", r.Signature.SignedAt.Format("2006-01-02 15:04"))
	} else {
		s.AddText("Not signed", TextStyle{Color: grey})
	}
	return s.Finalize()
}

// HMSReport lays out a periodic HMS report with its incident log.
func HMSReport(r *schema.Report, incidents []schema.Incident, meta Meta) *Document {
	s := meta.session(Header{Title: r.Title, Subtitle: "Report no. " + r.ReportNumber})

	s.AddSectionTitle("Report information", Primary)
	s.AddKeyValue("Type", typeLabel(r.Type))
	s.AddKeyValue("Period", date(r.Period.Start)+" to "+date(r.Period.End))
	s.AddKeyValue("Status", reportStatusLabel(r.Status))
	s.AddKeyValue("Compliance", fmt.Sprintf("%d%%", r.ComplianceScore))
	s.AddSpacing(DefaultSpacing)

	if len(r.DataGaps) > 0 {
		s.AddInfoBox("Incomplete data",
			"These records could not be read and are counted as empty: "+strings.Join(r.DataGaps, ", ")+".",
			Warning)
	}

	if r.Summary != "" {
		s.AddSectionTitle("Summary", Primary)
		s.AddText(r.Summary, TextStyle{})
	}

	s.AddSectionTitle("Statistics", Primary)
	s.AddKeyValue("Total incidents", fmt.Sprint(r.Counts.TotalIncidents))
	s.AddKeyValue("Safety incidents", fmt.Sprint(r.Counts.SafetyIncidents))
	s.AddKeyValue("Environment incidents", fmt.Sprint(r.Counts.EnvironmentIncidents))
	s.AddKeyValue("Health incidents", fmt.Sprint(r.Counts.HealthIncidents))
	s.AddKeyValue("Deviations", fmt.Sprint(r.Counts.Deviations))
	s.AddSpacing(DefaultSpacing)

	if r.Insights != "" {
		s.AddSectionTitle("Analysis", Warning)
		for _, line := range lines(r.Insights) {
			s.AddText(line, TextStyle{})
		}
	}
	if r.Recommendations != "" {
		s.AddSectionTitle("Recommendations", Success)
		s.AddBulletList(lines(r.Recommendations))
	}

	if len(incidents) > 0 {
		s.AddSectionTitle("Detailed incident log", Danger)
		items := make([]string, 0, len(incidents))
		for _, i := range incidents {
			items = append(items, fmt.Sprintf("%s - %s, severity %s, %s",
				i.Title, date(i.Date), orDash(i.Severity), orDash(i.Status)))
		}
		s.AddNumberedList(items)
	}

	if r.Notes != "" {
		s.AddSectionTitle("Notes", Primary)
		s.AddText(r.Notes, TextStyle{})
	}
	if r.Signed() {
		s.AddText(fmt.Sprintf("Signed by %s on %s", r.Signature.SignedBy, date(r.Signature.SignedAt)),
			TextStyle{Size: noteSize, Color: grey})
	}
	return s.Finalize()
}

// lines splits free text into non-blank lines with list markers removed.
func lines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		l = strings.TrimSpace(strings.TrimLeft(l, "•-*"))
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func riskVariant(level string) Variant {
	switch strings.ToLower(level) {
	case "critical", "kritisk":
		return Danger
	case "high", "høy", "medium", "middels":
		return Warning
	default:
		return Success
	}
}

// RiskAssessment lays out every assessed hazard with its scoring and
// follow-up.
func RiskAssessment(risks []schema.RiskAssessment, meta Meta) *Document {
	s := meta.session(Header{Title: "Risk assessment", Subtitle: "Overview of identified risks"})
	s.AddInfoBox("About risk assessment",
		"This document lists the identified risks in the business together with their assessment and preventive measures.",
		Info)
	s.AddSpacing(DefaultSpacing)

	if len(risks) == 0 {
		s.AddText("No risk assessments recorded.", TextStyle{Color: grey})
	}
	for i, r := range risks {
		s.AddSectionTitle(fmt.Sprintf("%d. %s", i+1, orDash(r.HazardType)), riskVariant(r.RiskLevel))
		if r.Description != "" {
			s.AddText(r.Description, TextStyle{})
		}
		s.AddSpacing(3)
		s.AddText("Assessment:", TextStyle{Size: subheadingSize, Bold: true})
		s.AddBulletList([]string{
			fmt.Sprintf("Likelihood: %d/5", r.Likelihood),
			fmt.Sprintf("Consequence: %d/5", r.Consequence),
			fmt.Sprintf("Risk score: %d", r.RiskScore),
			"Risk level: " + orDash(r.RiskLevel),
		})
		s.AddInfoBox("Preventive measures", orDash(r.PreventiveMeasures), Info)
		s.AddText("Follow-up:", TextStyle{Size: subheadingSize, Bold: true})
		deadline := "No deadline set"
		if r.Deadline != nil {
			deadline = "Deadline: " + date(*r.Deadline)
		}
		s.AddBulletList([]string{
			"Responsible: " + orDash(r.Responsible),
			"Status: " + orDash(r.Status),
			deadline,
		})
		if r.Notes != "" {
			s.AddText("Notes: "+r.Notes, TextStyle{Size: noteSize, Color: grey})
		}
		s.AddSpacing(8)
	}
	return s.Finalize()
}

// responsibleLines lists the contact details that are present.
func responsibleLines(p schema.Responsible, department bool) []string {
	out := []string{"Name: " + orDash(p.Name)}
	if department {
		out = append(out, "Department: "+orDash(p.Department))
	}
	if p.Phone != "" {
		out = append(out, "Phone: "+p.Phone)
	}
	if p.Email != "" {
		out = append(out, "Email: "+p.Email)
	}
	if p.LastCourse != nil {
		out = append(out, "Last course: "+date(*p.LastCourse))
	}
	if department && p.CertValidUntil != nil {
		out = append(out, "Valid until: "+date(*p.CertValidUntil))
	}
	return out
}

func inspectionLine(i schema.Inspection) string {
	return fmt.Sprintf("%s - %s - %s - %s", date(i.Date), orDash(i.Type), orDash(i.PerformedBy), orDash(i.Status))
}

// FirstAid lays out the first-aid responsible, emergency plan, equipment
// and the latest inspections.
func FirstAid(d schema.SectionData, meta Meta) *Document {
	s := meta.session(Header{Title: "First aid", Subtitle: "Equipment and first-aid routines"})

	if len(d.Responsible) > 0 {
		s.AddSectionTitle("First-aid responsible", Primary)
		s.AddBulletList(responsibleLines(d.Responsible[0], true))
		s.AddSpacing(DefaultSpacing)
	}

	s.AddSectionTitle("First-aid plan", Primary)
	s.AddText("In case of accident or acute illness:", TextStyle{Size: subheadingSize, Bold: true})
	s.AddNumberedList([]string{
		"Assess the situation - secure the area and avoid further danger",
		"Alert - call 113 in life-threatening situations or 116 117 for less serious cases",
		"Give first aid - provide the necessary first aid until professional help arrives",
		"Notify a manager - inform the general manager or nearest manager immediately",
		"Document - register the incident in the HMS system",
	})
	s.AddSpacing(DefaultSpacing)
	s.AddInfoBox("Important phone numbers",
		"Emergency medical: 113 | Fire: 110 | Police: 112 | Emergency room: 116 117",
		Warning)
	s.AddSpacing(DefaultSpacing)

	if len(d.Equipment) > 0 {
		s.AddSectionTitle("First-aid equipment", Success)
		rows := make([][]string, 0, len(d.Equipment))
		for _, e := range d.Equipment {
			rows = append(rows, []string{
				orDash(e.Name), fmt.Sprint(e.Quantity), orDash(e.Condition), orDash(e.Location), optDate(e.LastCheck),
			})
		}
		s.AddTable([]string{"Equipment", "Quantity", "Condition", "Location", "Last check"}, rows)
	}

	if len(d.Inspections) > 0 {
		s.AddSectionTitle("Inspection history", Primary)
		for _, i := range d.Inspections[:min(len(d.Inspections), maxInspections)] {
			s.AddText(inspectionLine(i), TextStyle{Size: inspectionSize})
		}
	}
	return s.Finalize()
}

// FireSafety lays out the fire safety responsible, fire routine, equipment
// and the latest inspections.
func FireSafety(d schema.SectionData, meta Meta) *Document {
	s := meta.session(Header{Title: "Fire safety", Subtitle: "Overview of fire safety routines and equipment"})

	if len(d.Responsible) > 0 {
		s.AddSectionTitle("Fire safety responsible", Danger)
		s.AddBulletList(responsibleLines(d.Responsible[0], false))
		s.AddSpacing(DefaultSpacing)
	}

	s.AddSectionTitle("Fire routine", Danger)
	s.AddNumberedList([]string{
		"Alert - activate the fire alarm and call 110",
		"Rescue - help people in immediate danger if it is safe",
		"Extinguish - try to put out the fire only if it is safe",
		"Evacuate - leave the building by the nearest escape route",
		"Assemble - meet at the assembly point outside the building",
	})
	s.AddSpacing(DefaultSpacing)
	s.AddInfoBox("Important information",
		"In case of fire: call 110 | Do not use the lift | Close doors behind you | Do not go back inside",
		Danger)
	s.AddSpacing(DefaultSpacing)

	if len(d.Equipment) > 0 {
		s.AddSectionTitle("Fire extinguishing equipment", Warning)
		rows := make([][]string, 0, len(d.Equipment))
		for _, e := range d.Equipment {
			rows = append(rows, []string{orDash(e.Type), orDash(e.Location), orDash(e.Status), orDash(e.Notes)})
		}
		s.AddTable([]string{"Type", "Location", "Status", "Description"}, rows)
	}

	if len(d.Inspections) > 0 {
		s.AddSectionTitle("Inspection history", Primary)
		for _, i := range d.Inspections[:min(len(d.Inspections), maxInspections)] {
			s.AddText(inspectionLine(i), TextStyle{Size: inspectionSize})
			if i.Notes != "" {
				s.AddText("Note: "+i.Notes, TextStyle{Size: 8, Color: grey})
			}
			s.AddSpacing(2)
		}
	}
	return s.Finalize()
}
