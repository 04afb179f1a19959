package fetch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/kitchencheck/internal/schema"
	"github.com/dshills/kitchencheck/internal/store"
)

// Section reads the named collections concurrently into one SectionData.
// Unknown collection names are ignored. The second result lists the
// collections whose read failed.
func (f *Fetcher) Section(ctx context.Context, tenant string, collections []string) (schema.SectionData, []string) {
	var (
		data schema.SectionData
		gaps Gaps
		mu   sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range collections {
		g.Go(func() error {
			rows := f.Fetch(gctx, tenant, name, store.Query{}, &gaps)
			mu.Lock()
			defer mu.Unlock()
			assign(&data, name, rows)
			return nil
		})
	}
	_ = g.Wait()
	return data, gaps.List()
}

func assign(d *schema.SectionData, name string, rows []store.Row) {
	switch name {
	case store.Incidents:
		d.Incidents = decodeAll(rows, store.DecodeIncident)
	case store.Followups:
		d.Followups = decodeAll(rows, store.DecodeFollowup)
	case store.RiskAssessments:
		d.Risks = decodeAll(rows, store.DecodeRisk)
	case store.FireResponsible, store.FirstAidResponsible:
		d.Responsible = decodeAll(rows, store.DecodeResponsible)
	case store.FireEquipment, store.FirstAidEquipment:
		d.Equipment = decodeAll(rows, store.DecodeEquipment)
	case store.FireInspections, store.FirstAidInspections:
		d.Inspections = decodeAll(rows, store.DecodeInspection)
	case store.Training:
		d.Training = decodeAll(rows, store.DecodeTraining)
	case store.TrainingAttendees:
		d.Attendees = decodeAll(rows, store.DecodeTraining)
	case store.Employees:
		d.Employees = decodeAll(rows, store.DecodeResponsible)
	case store.SafetyRepresentative:
		d.SafetyReps = decodeAll(rows, store.DecodeResponsible)
	case store.EnvironmentWaste:
		d.Waste = decodeAll(rows, store.DecodeEntry)
	case store.EnvironmentGoals:
		d.Goals = decodeAll(rows, store.DecodeEntry)
	case store.EnvironmentFryingOil:
		d.FryingOil = decodeAll(rows, store.DecodeEntry)
	}
}
