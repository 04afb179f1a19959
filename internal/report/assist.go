package report

import (
	"context"
	"time"

	"github.com/dshills/kitchencheck/internal/analysis"
	"github.com/dshills/kitchencheck/internal/logging"
	"github.com/dshills/kitchencheck/internal/schema"
	"github.com/dshills/kitchencheck/internal/section"
)

// assistSections names the stored section that can fill each topic's form.
var assistSections = map[string]string{
	schema.TopicFireSafety:         "fire_safety",
	schema.TopicFirstAid:           "first_aid",
	schema.TopicRiskAssessment:     "risk_assessment",
	schema.TopicWorkingEnvironment: "personnel",
	schema.TopicIncident:           "incidents",
	schema.TopicTraining:           "training",
	schema.TopicEnvironment:        "environment",
}

// Assist returns rule-based guidance for a topic. Facts the caller left
// empty are filled from the tenant's stored records; a failed read only
// leaves them empty.
func (s *Service) Assist(ctx context.Context, tenant, name string, form schema.AssistForm) schema.Assistance {
	topic := analysis.AssistTopic(name)
	if secName, ok := assistSections[topic]; ok {
		sec, err := section.Load(secName)
		if err == nil {
			data, gaps := s.fetcher.Section(ctx, tenant, sec.Collections)
			if len(gaps) > 0 {
				s.log.Warn("assist data incomplete",
					logging.String("tenant", tenant),
					logging.String("topic", topic),
					logging.Any("gaps", gaps))
			}
			fillForm(topic, &form, data)
		}
	}
	s.log.Debug("assist", logging.String("tenant", tenant), logging.String("topic", topic))
	return analysis.Assist(topic, form, s.now())
}

// fillForm copies stored facts into the empty fields of the topic's block.
func fillForm(topic string, form *schema.AssistForm, d schema.SectionData) {
	switch topic {
	case schema.TopicFireSafety:
		if len(form.Fire.Extinguishers) == 0 {
			form.Fire.Extinguishers = equipmentNames(d.Equipment)
		}
	case schema.TopicFirstAid:
		f := &form.FirstAid
		if len(f.Kits) == 0 {
			f.Kits = equipmentNames(d.Equipment)
		}
		if f.TrainedPeople == 0 {
			f.TrainedPeople = len(d.Responsible)
		}
		if f.CertificateExpiry == nil {
			f.CertificateExpiry = earliestCertificate(d.Responsible)
		}
	case schema.TopicRiskAssessment:
		f := &form.Risk
		if len(f.Areas) == 0 {
			for _, r := range d.Risks {
				f.Areas = append(f.Areas, r.HazardType)
			}
		}
		if len(f.HighRisk) == 0 {
			for _, r := range d.Risks {
				if r.RiskLevel == "high" || r.RiskLevel == "critical" {
					f.HighRisk = append(f.HighRisk, r.HazardType)
				}
			}
		}
	case schema.TopicWorkingEnvironment:
		if form.Workplace.SafetyRepresentative == "" && len(d.SafetyReps) > 0 {
			form.Workplace.SafetyRepresentative = d.SafetyReps[0].Name
		}
	case schema.TopicIncident:
		if form.Incident.Type == "" && len(d.Incidents) > 0 {
			form.Incident.Type = d.Incidents[0].Category
		}
	case schema.TopicTraining:
		f := &form.Training
		if f.LastUpdated == nil {
			f.LastUpdated = latestTraining(d.Training)
		}
	case schema.TopicEnvironment:
		f := &form.Environment
		if !f.HasWastePlan {
			f.HasWastePlan = len(d.Waste) > 0
		}
		if len(f.Goals) == 0 {
			for _, e := range d.Goals {
				f.Goals = append(f.Goals, e.Description)
			}
		}
		if !f.UsesFryingOil {
			f.UsesFryingOil = len(d.FryingOil) > 0
		}
	}
}

func equipmentNames(items []schema.Equipment) []string {
	var out []string
	for _, e := range items {
		out = append(out, e.Name)
	}
	return out
}

func earliestCertificate(people []schema.Responsible) *time.Time {
	var first *time.Time
	for _, p := range people {
		if p.CertValidUntil != nil && (first == nil || p.CertValidUntil.Before(*first)) {
			first = p.CertValidUntil
		}
	}
	return first
}

func latestTraining(items []schema.Training) *time.Time {
	var last *time.Time
	for _, t := range items {
		if t.Date != nil && (last == nil || t.Date.After(*last)) {
			last = t.Date
		}
	}
	return last
}
