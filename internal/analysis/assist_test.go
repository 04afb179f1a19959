package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/kitchencheck/internal/schema"
)

func at(t time.Time) *time.Time { return &t }

func TestAssistTopic(t *testing.T) {
	cases := map[string]string{
		"fire_safety":  schema.TopicFireSafety,
		" First_Aid ":  schema.TopicFirstAid,
		"incidents":    schema.TopicIncident,
		"personnel":    schema.TopicWorkingEnvironment,
		"deviation":    schema.TopicDeviation,
		"insurance":    schema.TopicGeneral,
		"":             schema.TopicGeneral,
	}
	for in, want := range cases {
		assert.Equal(t, want, AssistTopic(in), "AssistTopic(%q)", in)
	}
}

func TestAssist(t *testing.T) {
	longAgo := fixedNow.AddDate(-2, 0, 0)
	recent := fixedNow.AddDate(0, -1, 0)

	cases := []struct {
		name        string
		topic       string
		form        schema.AssistForm
		missing     []string
		actions     []string
		noActions   []string
		suggestions []string
	}{
		{
			name:        "fire empty",
			topic:       schema.TopicFireSafety,
			form:        schema.AssistForm{Fire: schema.FireForm{DrillMissing: true}},
			missing:     []string{"Fire extinguishing equipment must be registered", "Escape routes must be documented"},
			actions:     []string{"Hold a fire drill for all employees"},
			suggestions: []string{"Schedule the next fire inspection to stay compliant"},
		},
		{
			name:  "fire complete",
			topic: schema.TopicFireSafety,
			form: schema.AssistForm{Fire: schema.FireForm{
				Extinguishers: []string{"Kitchen 6 kg"}, EscapeRoutes: []string{"Back door"}, NextInspection: at(recent)}},
			noActions: []string{"Hold a fire drill for all employees"},
		},
		{
			name:    "first aid expired certificate",
			topic:   schema.TopicFirstAid,
			form:    schema.AssistForm{FirstAid: schema.FirstAidForm{Kits: []string{"Cabinet"}, TrainedPeople: 2, CertificateExpiry: at(recent)}},
			actions: []string{"Renew first aid training for employees with expired certificates"},
			noActions: []string{"Register every first aid cabinet and check its contents",
				"Make sure at least two employees hold valid first aid training"},
		},
		{
			name:    "first aid nothing registered",
			topic:   schema.TopicFirstAid,
			missing: []string{"First aid equipment must be registered"},
			actions: []string{"Make sure at least two employees hold valid first aid training"},
		},
		{
			name:    "risk stale with high risk",
			topic:   schema.TopicRiskAssessment,
			form:    schema.AssistForm{Risk: schema.RiskForm{Areas: []string{"Burns"}, HighRisk: []string{"Burns"}, LastReviewed: at(longAgo)}},
			actions: []string{"Prioritize measures for high-risk areas immediately", "Update the risk assessment; it should be reviewed at least yearly"},
		},
		{
			name:      "risk recent",
			topic:     schema.TopicRiskAssessment,
			form:      schema.AssistForm{Risk: schema.RiskForm{Areas: []string{"Cuts"}, LastReviewed: at(recent)}},
			noActions: []string{"Update the risk assessment; it should be reviewed at least yearly"},
		},
		{
			name:        "working environment",
			topic:       "personnel",
			form:        schema.AssistForm{Workplace: schema.WorkplaceForm{SickLeavePercent: 7.5}},
			missing:     []string{"A safety representative must be registered"},
			actions:     []string{"High sick leave can point to problems in the working environment; consider measures"},
			suggestions: []string{"Run a working environment survey to learn how employees experience it"},
		},
		{
			name:    "serious incident not notified",
			topic:   schema.TopicIncident,
			form:    schema.AssistForm{Incident: schema.IncidentForm{Type: "burn", Description: "short", Severity: "high"}},
			missing: []string{"The incident description needs more detail"},
			actions: []string{"Describe the immediate measures that were taken", "Notify the relevant parties of serious incidents"},
		},
		{
			name:  "incident complete",
			topic: "incidents",
			form: schema.AssistForm{Incident: schema.IncidentForm{
				Type: "cut", Description: "Cut finger while slicing onions at the prep station",
				ImmediateActions: []string{"Bandaged"}, Severity: "high", PartiesNotified: true}},
			noActions: []string{"Notify the relevant parties of serious incidents", "Explain what happened, where and when"},
		},
		{
			name:  "deviation empty",
			topic: schema.TopicDeviation,
			missing: []string{"The deviation type must be specified", "The cause of the deviation must be identified",
				"A person responsible for follow-up must be assigned"},
			actions: []string{"Define corrective measures that put the deviation right",
				"Define preventive measures so the deviation does not recur"},
			suggestions: []string{"Set a deadline for completing the measures"},
		},
		{
			name:        "training stale",
			topic:       schema.TopicTraining,
			form:        schema.AssistForm{Training: schema.TrainingForm{HasPlan: true, ExpiredCertificates: 1, LastUpdated: at(longAgo)}},
			actions:     []string{"Renew training for employees with expired certificates", "Update the training register; it should be reviewed regularly"},
			suggestions: []string{"Create a structured onboarding programme for new employees"},
		},
		{
			name:        "documents",
			topic:       schema.TopicDocuments,
			form:        schema.AssistForm{Documents: schema.DocumentsForm{Procedures: []string{"Fire"}, ExpiredDocuments: 2}},
			missing:     []string{"An HMS handbook must be created"},
			actions:     []string{"Write procedures for the critical areas: fire, first aid and evacuation", "Review and update expired documents"},
			suggestions: []string{"Upload evacuation maps and floor plans"},
		},
		{
			name:    "annual report without data",
			topic:   schema.TopicReport,
			form:    schema.AssistForm{Report: schema.ReportForm{Type: schema.TypeAnnual}},
			missing: []string{"No data is registered for the report period"},
			actions: []string{"Summarize results, lessons learned and goals for the next period"},
		},
		{
			name:        "daily report with data",
			topic:       schema.TopicReport,
			form:        schema.AssistForm{Report: schema.ReportForm{Type: schema.TypeDaily, DataSources: map[string]int{"temperature_logs": 17}}},
			suggestions: []string{"The daily report should include temperature checks, cleaning and any deviations"},
			noActions:   []string{"Make sure all relevant information is registered in the system"},
		},
		{
			name:    "environment frying oil without supplier",
			topic:   schema.TopicEnvironment,
			form:    schema.AssistForm{Environment: schema.EnvironmentForm{UsesFryingOil: true}},
			missing: []string{"A waste plan must be created"},
			actions: []string{"Register the supplier that collects used frying oil", "Plan and document emptying of the grease trap"},
		},
		{
			name:        "general",
			topic:       "insurance",
			actions:     []string{"Review the HMS system to find areas for improvement"},
			suggestions: []string{"Keep all HMS documentation up to date"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Assist(c.topic, c.form, fixedNow)
			assert.Equal(t, AssistTopic(c.topic), got.Topic)
			for _, m := range c.missing {
				assert.Contains(t, got.Missing, m)
			}
			for _, a := range c.actions {
				assert.Contains(t, got.Actions, a)
			}
			for _, a := range c.noActions {
				assert.NotContains(t, got.Actions, a)
			}
			for _, s := range c.suggestions {
				assert.Contains(t, got.Suggestions, s)
			}
			assert.NotEmpty(t, got.Comments)
			assert.NotNil(t, got.Missing)
		})
	}
}

func TestAssist_Deterministic(t *testing.T) {
	form := schema.AssistForm{Environment: schema.EnvironmentForm{Goals: []string{"Less food waste"}}}
	assert.Equal(t, Assist(schema.TopicEnvironment, form, fixedNow), Assist(schema.TopicEnvironment, form, fixedNow))
}
