package analysis

import (
	"strings"
	"time"

	"github.com/dshills/kitchencheck/internal/schema"
)

// Review intervals used by the assistant.
const (
	riskReviewInterval     = 365 * 24 * time.Hour
	trainingReviewInterval = 180 * 24 * time.Hour
	minProcedures          = 3
	minIncidentDescription = 20
	sickLeaveAlertPercent  = 5
)

// topicAliases maps section names onto assistant topics.
var topicAliases = map[string]string{
	"incidents": schema.TopicIncident,
	"personnel": schema.TopicWorkingEnvironment,
}

var assistants = map[string]func(*guide, schema.AssistForm, time.Time){
	schema.TopicFireSafety:         assistFire,
	schema.TopicFirstAid:           assistFirstAid,
	schema.TopicRiskAssessment:     assistRisk,
	schema.TopicWorkingEnvironment: assistWorkplace,
	schema.TopicIncident:           assistIncident,
	schema.TopicDeviation:          assistDeviation,
	schema.TopicTraining:           assistTraining,
	schema.TopicDocuments:          assistDocuments,
	schema.TopicReport:             assistReport,
	schema.TopicEnvironment:        assistEnvironment,
}

// AssistTopic resolves a name to an assistant topic. Unknown names resolve
// to the general topic.
func AssistTopic(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if t, ok := topicAliases[name]; ok {
		return t
	}
	if _, ok := assistants[name]; ok {
		return name
	}
	return schema.TopicGeneral
}

// guide collects the four kinds of advice.
type guide struct {
	out schema.Assistance
}

func (g *guide) suggest(s ...string) { g.out.Suggestions = append(g.out.Suggestions, s...) }
func (g *guide) act(s ...string)     { g.out.Actions = append(g.out.Actions, s...) }
func (g *guide) comment(s ...string) { g.out.Comments = append(g.out.Comments, s...) }
func (g *guide) missing(s ...string) { g.out.Missing = append(g.out.Missing, s...) }

// Assist returns deterministic guidance for the named topic from what the
// user has entered. It never calls a completion provider.
func Assist(name string, form schema.AssistForm, now time.Time) schema.Assistance {
	topic := AssistTopic(name)
	g := &guide{out: schema.Assistance{Topic: topic}}
	if fn, ok := assistants[topic]; ok {
		fn(g, form, now)
	} else {
		assistGeneral(g)
	}
	g.out.Suggestions = nonNil(g.out.Suggestions)
	g.out.Actions = nonNil(g.out.Actions)
	g.out.Comments = nonNil(g.out.Comments)
	g.out.Missing = nonNil(g.out.Missing)
	return g.out
}

func assistFire(g *guide, form schema.AssistForm, _ time.Time) {
	f := form.Fire
	if len(f.Extinguishers) == 0 {
		g.missing("Fire extinguishing equipment must be registered")
		g.act("Register every fire extinguisher with its location and inspection date")
	}
	if len(f.EscapeRoutes) == 0 {
		g.missing("Escape routes must be documented")
		g.act("Map and document every escape route with clear signage")
	}
	if f.NextInspection == nil {
		g.suggest("Schedule the next fire inspection to stay compliant")
	}
	if f.DrillMissing {
		g.act("Hold a fire drill for all employees")
		g.comment("A fire drill is recommended at least once a year")
	}
	g.suggest("Check that every emergency exit is easy to reach",
		"Make sure the fire alarm is tested regularly")
	g.comment("Keep a complete overview of all fire safety equipment")
}

func assistFirstAid(g *guide, form schema.AssistForm, now time.Time) {
	f := form.FirstAid
	if len(f.Kits) == 0 {
		g.missing("First aid equipment must be registered")
		g.act("Register every first aid cabinet and check its contents")
	}
	if f.TrainedPeople <= 0 {
		g.act("Make sure at least two employees hold valid first aid training")
		g.comment("About 10% of employees should have first aid training")
	}
	if f.CertificateExpiry != nil && f.CertificateExpiry.Before(now) {
		g.act("Renew first aid training for employees with expired certificates")
	}
	g.suggest("Check that first aid cabinets are easy to reach and clearly marked",
		"Make sure emergency numbers are visible at the workplace")
	g.comment("Up-to-date first aid equipment is central to preparedness")
}

func assistRisk(g *guide, form schema.AssistForm, now time.Time) {
	f := form.Risk
	if len(f.Areas) == 0 {
		g.missing("Risk areas must be identified")
		g.act("Carry out a systematic walkthrough of the workplace")
	}
	if len(f.HighRisk) > 0 {
		g.act("Prioritize measures for high-risk areas immediately")
		g.comment("High-risk areas need extra attention and documentation")
	}
	if f.LastReviewed == nil || now.Sub(*f.LastReviewed) > riskReviewInterval {
		g.act("Update the risk assessment; it should be reviewed at least yearly")
	}
	g.suggest("Involve employees in identifying risk areas",
		"Document every completed risk assessment")
	g.comment("An up-to-date risk assessment is the basis of a safe workplace")
}

func assistWorkplace(g *guide, form schema.AssistForm, _ time.Time) {
	f := form.Workplace
	if strings.TrimSpace(f.SafetyRepresentative) == "" {
		g.missing("A safety representative must be registered")
		g.act("Appoint a safety representative as the Working Environment Act requires")
	}
	if !f.SurveyDone {
		g.suggest("Run a working environment survey to learn how employees experience it")
	}
	if f.SickLeavePercent > sickLeaveAlertPercent {
		g.act("High sick leave can point to problems in the working environment; consider measures")
		g.comment("Map the causes of sick leave and start preventive work")
	}
	g.suggest("Hold regular working environment meetings with employees",
		"Document every measure taken to improve the working environment")
	g.comment("A good working environment supports wellbeing and productivity")
}

func assistIncident(g *guide, form schema.AssistForm, _ time.Time) {
	f := form.Incident
	if strings.TrimSpace(f.Type) == "" {
		g.missing("The incident type must be specified")
	}
	if len(strings.TrimSpace(f.Description)) < minIncidentDescription {
		g.missing("The incident description needs more detail")
		g.act("Explain what happened, where and when")
	}
	if len(f.ImmediateActions) == 0 {
		g.act("Describe the immediate measures that were taken")
	}
	if sev := strings.ToLower(f.Severity); (sev == "high" || sev == "critical") && !f.PartiesNotified {
		g.act("Notify the relevant parties of serious incidents")
		g.comment("Serious incidents may have to be reported to the Labour Inspection Authority")
	}
	g.suggest("Record what was learned from the incident",
		"Share the experience with all employees to prevent similar incidents")
	g.comment("Good incident reporting drives learning and prevention")
}

func assistDeviation(g *guide, form schema.AssistForm, _ time.Time) {
	f := form.Deviation
	if strings.TrimSpace(f.Type) == "" {
		g.missing("The deviation type must be specified")
	}
	if strings.TrimSpace(f.Cause) == "" {
		g.missing("The cause of the deviation must be identified")
		g.act("Carry out a cause analysis to find the root cause")
	}
	if strings.TrimSpace(f.CorrectiveAction) == "" {
		g.act("Define corrective measures that put the deviation right")
	}
	if strings.TrimSpace(f.PreventiveAction) == "" {
		g.act("Define preventive measures so the deviation does not recur")
	}
	if strings.TrimSpace(f.Responsible) == "" {
		g.missing("A person responsible for follow-up must be assigned")
	}
	if f.Deadline == nil {
		g.suggest("Set a deadline for completing the measures")
	}
	g.suggest("Follow up that the measures are completed before the deadline")
	g.comment("Systematic deviation handling drives continuous improvement")
}

func assistTraining(g *guide, form schema.AssistForm, now time.Time) {
	f := form.Training
	if !f.HasPlan {
		g.missing("A training plan must be created")
		g.act("List the training every employee needs")
	}
	if f.ExpiredCertificates > 0 {
		g.act("Renew training for employees with expired certificates")
	}
	if !f.HasOnboarding {
		g.suggest("Create a structured onboarding programme for new employees")
	}
	if f.LastUpdated != nil && now.Sub(*f.LastUpdated) > trainingReviewInterval {
		g.act("Update the training register; it should be reviewed regularly")
	}
	g.suggest("Record every completed course with date and participants",
		"Consider refresher courses when routines change")
	g.comment("Systematic training keeps employees competent and safe")
}

func assistDocuments(g *guide, form schema.AssistForm, _ time.Time) {
	f := form.Documents
	if !f.HasHandbook {
		g.missing("An HMS handbook must be created")
		g.act("Write an HMS handbook that describes the company's HMS system")
	}
	if len(f.Procedures) < minProcedures {
		g.act("Write procedures for the critical areas: fire, first aid and evacuation")
	}
	if !f.HasDrawings {
		g.suggest("Upload evacuation maps and floor plans")
	}
	if !f.HasContracts {
		g.suggest("Register key HMS contracts such as waste return, fire service and occupational health")
	}
	if f.ExpiredDocuments > 0 {
		g.act("Review and update expired documents")
		g.comment("Keep the documentation current to stay compliant")
	}
	g.suggest("Organize documents in clear categories so they are easy to find",
		"Make sure every employee can reach the relevant HMS documentation")
	g.comment("Good documentation is the basis of a working HMS system")
}

func assistReport(g *guide, form schema.AssistForm, _ time.Time) {
	f := form.Report
	switch f.Type {
	case schema.TypeDaily:
		g.suggest("The daily report should include temperature checks, cleaning and any deviations")
	case schema.TypeWeekly:
		g.suggest("The weekly report can summarize the daily checks and planned activities")
	case schema.TypeMonthly, schema.TypeQuarterly:
		g.suggest("The monthly report should contain statistics on incidents, training and maintenance")
		g.act("Look at trends and identify areas that need extra attention")
	case schema.TypeAnnual:
		g.suggest("The annual report should give a complete overview of the HMS work")
		g.act("Summarize results, lessons learned and goals for the next period")
		g.comment("Use the report as the basis for the management review of HMS")
	}
	total := 0
	for _, n := range f.DataSources {
		total += n
	}
	if total == 0 {
		g.missing("No data is registered for the report period")
		g.act("Make sure all relevant information is registered in the system")
	}
	g.suggest("Include both positive results and areas for improvement")
	g.comment("Regular reporting keeps the overview and the follow-up in place")
}

func assistEnvironment(g *guide, form schema.AssistForm, _ time.Time) {
	f := form.Environment
	if !f.HasWastePlan {
		g.missing("A waste plan must be created")
		g.act("Plan how the different waste types are sorted and handled")
	}
	if len(f.Goals) == 0 {
		g.suggest("Set concrete environmental goals for the business")
	}
	if f.UsesFryingOil && strings.TrimSpace(f.FryingOilSupplier) == "" {
		g.act("Register the supplier that collects used frying oil")
	}
	if f.GreaseTrapEmptied == nil {
		g.act("Plan and document emptying of the grease trap")
	}
	if !f.EcoProducts {
		g.suggest("Consider environmentally friendly cleaning products")
		g.comment("Environmentally friendly products reduce the impact on the environment")
	}
	g.suggest("Follow up the environmental goals and document progress")
	g.comment("Systematic environmental work shows social responsibility and can cut costs")
}

func assistGeneral(g *guide) {
	g.suggest("Keep all HMS documentation up to date",
		"Carry out regular checks and document the findings",
		"Involve employees in the HMS work")
	g.act("Review the HMS system to find areas for improvement")
	g.comment("A good HMS system needs systematic work and follow-up")
}
