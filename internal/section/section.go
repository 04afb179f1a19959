// Package section defines the HMS sections that can be analyzed. Each
// section names the collections it reads and carries a prompt addendum that
// is appended to the system prompt sent to the completion API.
package section

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/kitchencheck/internal/store"
)

// ErrUnknown is returned by Load for names outside the registry.
var ErrUnknown = errors.New("section: unknown section")

// Section describes one HMS area.
type Section struct {
	Name           string
	DisplayName    string
	Collections    []string
	PromptAddendum string
}

// builtins is the registry of sections keyed by name.
var builtins = map[string]Section{
	"incidents": {
		Name:        "incidents",
		DisplayName: "Incidents and deviations",
		Collections: []string{store.Incidents, store.Followups},
		PromptAddendum: "Focus on critical incidents and follow-ups that are still open. " +
			"Recurring categories indicate a systemic problem.",
	},
	"risk_assessment": {
		Name:        "risk_assessment",
		DisplayName: "Risk assessment",
		Collections: []string{store.RiskAssessments},
		PromptAddendum: "Focus on high and critical risk levels, open assessments without " +
			"a responsible person and deadlines that have passed.",
	},
	"fire_safety": {
		Name:        "fire_safety",
		DisplayName: "Fire safety",
		Collections: []string{store.FireResponsible, store.FireEquipment, store.FireInspections},
		PromptAddendum: "Focus on defective equipment, missing equipment registrations and " +
			"whether inspections are carried out regularly.",
	},
	"first_aid": {
		Name:        "first_aid",
		DisplayName: "First aid",
		Collections: []string{store.FirstAidResponsible, store.FirstAidEquipment, store.FirstAidInspections},
		PromptAddendum: "Focus on whether a responsible person is appointed and whether " +
			"equipment is present and within its expiry date.",
	},
	"training": {
		Name:        "training",
		DisplayName: "Training",
		Collections: []string{store.Training, store.TrainingAttendees},
		PromptAddendum: "Focus on missing mandatory training and on the share of attendees " +
			"who completed their courses.",
	},
	"environment": {
		Name:        "environment",
		DisplayName: "Environment",
		Collections: []string{store.EnvironmentWaste, store.EnvironmentGoals, store.EnvironmentFryingOil},
		PromptAddendum: "Focus on documented waste handling, frying oil disposal and " +
			"whether concrete environmental goals exist.",
	},
	"personnel": {
		Name:        "personnel",
		DisplayName: "Personnel",
		Collections: []string{store.Employees, store.SafetyRepresentative},
		PromptAddendum: "Focus on whether a safety representative is appointed as required " +
			"by the Working Environment Act and whether all employees are registered.",
	},
}

// Names lists the registered sections in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Load returns the named section or an error if the name is unknown.
func Load(name string) (Section, error) {
	s, ok := builtins[name]
	if !ok {
		return Section{}, fmt.Errorf("%w %q (available: %s)", ErrUnknown, name, strings.Join(Names(), ", "))
	}
	return s, nil
}
