// Package demo generates synthetic kitchen records for trying the reports
// on an empty store. Every generated row is marked with Marker in its notes
// so it can never be mistaken for a real log entry. Nothing outside the
// `demo seed` command uses this package.
package demo

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/dshills/kitchencheck/internal/schema"
	"github.com/dshills/kitchencheck/internal/store"
)

// Marker is written into the notes of every generated row.
const Marker = "demo data"

// zone is one temperature zone with its equipment and acceptable range.
type zone struct {
	name      string
	equipment []string
	min, max  float64
}

var zones = []zone{
	{"Freezer", []string{"Freezer 1", "Freezer 2", "Freezer 3"}, -32, -18},
	{"Fridge", []string{"Dressing fridge", "Grill counter", "Cold counter", "Cold room", "Steel fridge", "Pizza counter", "Salad bar"}, -5, 4},
	{"Water bath", []string{"Meat 1", "Meat 2"}, 60, 85},
	{"Dishwasher", []string{"Wash", "Dry"}, 60, 85},
	{"Goods receiving", []string{"Receiving 1", "Receiving 2", "Receiving 3"}, -5, 4},
}

var cleaningTasks = []string{
	"Wash floors",
	"Wipe benches",
	"Disinfect equipment",
	"Empty waste bins",
	"Clean fridge",
}

var staff = []string{"Staff A", "Staff B", "Staff C", "Staff D", "Staff E"}

var cooled = []struct{ name, kind string }{
	{"Chicken", "poultry"},
	{"Beef", "beef"},
}

// Fixture is one day of generated records.
type Fixture struct {
	Temperatures []schema.TemperatureReading
	Cleaning     []schema.CleaningEntry
	Hygiene      []schema.HygieneCheck
	Cooling      []schema.CoolingLog
	Incidents    []schema.Incident
	Risks        []schema.RiskAssessment
	Equipment    []schema.Equipment
	Inspections  []schema.Inspection
	Responsible  []schema.Responsible
}

// Summary counts the rows Seed inserted per collection.
type Summary map[string]int

// Total is the number of rows inserted.
func (s Summary) Total() int {
	n := 0
	for _, v := range s {
		n += v
	}
	return n
}

type outcome int

const (
	safe outcome = iota
	warning
	danger
)

type generator struct {
	rng     *rand.Rand
	tenant  string
	day     time.Time
	counter int
}

// roll draws a reading outcome: 2% danger, 3% warning, the rest safe.
func (g *generator) roll() outcome {
	r := g.rng.Float64()
	switch {
	case r < 0.02:
		return danger
	case r < 0.05:
		return warning
	default:
		return safe
	}
}

func (g *generator) between(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *generator) id(prefix string) string {
	g.counter++
	return fmt.Sprintf("demo-%s-%s-%s-%03d", prefix, g.tenant, g.day.Format("20060102"), g.counter)
}

func round1(f float64) *float64 {
	v := math.Round(f*10) / 10
	return &v
}

func ptr[T any](v T) *T { return &v }

func clock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// Generate builds one day of records for tenant. The same seed, tenant and
// day always produce the same fixture.
func Generate(tenant string, day time.Time, seed uint64) Fixture {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	g := &generator{
		rng:    rand.New(rand.NewPCG(seed, uint64(day.Unix()))),
		tenant: tenant,
		day:    day,
	}
	var f Fixture
	g.temperatures(&f)
	g.cleaning(&f)
	g.hygiene(&f)
	g.cooling(&f)
	g.hms(&f)
	return f
}

func (g *generator) temperatures(f *Fixture) {
	idx := 0
	for _, z := range zones {
		for _, eq := range z.equipment {
			var c float64
			switch g.roll() {
			case danger:
				off := g.between(1, 4)
				if g.rng.IntN(2) == 0 {
					c = z.min - off
				} else {
					c = z.max + off
				}
			case warning:
				off := g.between(0.05, 0.5)
				if g.rng.IntN(2) == 0 {
					c = z.min - off
				} else {
					c = z.max + off
				}
			default:
				c = g.between(z.min, z.max)
			}
			f.Temperatures = append(f.Temperatures, schema.TemperatureReading{
				ID:        g.id("temp"),
				CompanyID: g.tenant,
				Date:      g.day,
				Time:      clock(11+idx/3, g.rng.IntN(45)),
				Zone:      z.name,
				Equipment: eq,
				Celsius:   round1(c),
				Notes:     Marker,
			})
			idx++
		}
	}
}

func (g *generator) cleaning(f *Fixture) {
	for i, task := range cleaningTasks {
		f.Cleaning = append(f.Cleaning, schema.CleaningEntry{
			ID:        g.id("clean"),
			CompanyID: g.tenant,
			Date:      g.day,
			Time:      clock(13+i/2, g.rng.IntN(60)),
			Task:      task,
			Employee:  "System",
			Completed: ptr(g.roll() == safe),
			Notes:     Marker,
		})
	}
}

func (g *generator) hygiene(f *Fixture) {
	for _, name := range staff {
		f.Hygiene = append(f.Hygiene, schema.HygieneCheck{
			ID:             g.id("hyg"),
			CompanyID:      g.tenant,
			Date:           g.day,
			StaffName:      name,
			UniformClean:   ptr(true),
			HandsWashed:    ptr(true),
			JewelryRemoved: ptr(true),
			IllnessFree:    ptr(true),
			HairCovered:    ptr(true),
			Notes:          Marker,
		})
	}
}

func (g *generator) cooling(f *Fixture) {
	for i, p := range cooled {
		o := g.roll()
		var final float64
		switch o {
		case danger:
			final = g.between(5, 8)
		case warning:
			final = g.between(4, 5)
		default:
			final = g.between(2, 4)
		}
		start := 14 + 2*i
		f.Cooling = append(f.Cooling, schema.CoolingLog{
			ID:             g.id("cool"),
			CompanyID:      g.tenant,
			Date:           g.day,
			ProductName:    p.name,
			ProductType:    p.kind,
			InitialCelsius: round1(g.between(65, 75)),
			FinalCelsius:   round1(final),
			StartTime:      clock(start, 0),
			EndTime:        clock(start+2, 0),
			WithinLimits:   ptr(o == safe),
			Notes:          Marker,
		})
	}
}

// hms adds a small HMS register so the section reports and PDFs have
// something to show.
func (g *generator) hms(f *Fixture) {
	severities := []string{"low", "medium", "high", "critical"}
	categories := []string{"safety", "environment", "health", "deviation"}
	for i := range 3 {
		status := "open"
		if g.rng.IntN(2) == 0 {
			status = "closed"
		}
		f.Incidents = append(f.Incidents, schema.Incident{
			ID:        g.id("inc"),
			CompanyID: g.tenant,
			Date:      g.day,
			Title:     fmt.Sprintf("Demo incident %d (%s)", i+1, Marker),
			Category:  categories[g.rng.IntN(len(categories))],
			Severity:  severities[g.rng.IntN(len(severities))],
			Status:    status,
		})
	}

	hazards := []struct{ kind, desc, measure string }{
		{"Burns", "Hot oil in the fryer", "Heat-resistant gloves and splash guard"},
		{"Cuts", "Knife handling during prep", "Cut-resistant gloves and knife training"},
		{"Slips", "Wet floor by the dishwasher", "Anti-slip mats and warning signs"},
	}
	for _, h := range hazards {
		l, c := 1+g.rng.IntN(5), 1+g.rng.IntN(5)
		f.Risks = append(f.Risks, schema.RiskAssessment{
			ID:                 g.id("risk"),
			CompanyID:          g.tenant,
			HazardType:         h.kind,
			Description:        h.desc,
			Likelihood:         l,
			Consequence:        c,
			RiskScore:          l * c,
			RiskLevel:          riskLevel(l * c),
			PreventiveMeasures: h.measure,
			Responsible:        staff[0],
			Status:             "active",
			Deadline:           ptr(g.day.AddDate(0, 1, 0)),
			Notes:              Marker,
		})
	}

	checked := g.day.AddDate(0, -1, 0)
	f.Equipment = []schema.Equipment{
		{Name: "First-aid kit", Type: "first_aid", Quantity: 2, Condition: "good", Status: "ok",
			Location: "Kitchen", LastCheck: ptr(checked), Expiry: ptr(g.day.AddDate(1, 0, 0)), Notes: Marker},
		{Name: "Burn gel", Type: "first_aid", Quantity: 4, Condition: "good", Status: "ok",
			Location: "Kitchen", LastCheck: ptr(checked), Expiry: ptr(g.day.AddDate(0, 6, 0)), Notes: Marker},
	}
	f.Inspections = []schema.Inspection{
		{Date: checked, Type: "monthly", PerformedBy: staff[1], Status: "ok", Notes: Marker},
	}
	f.Responsible = []schema.Responsible{
		{Name: staff[0], Department: "Kitchen", LastCourse: ptr(g.day.AddDate(-1, 0, 0)), CertValidUntil: ptr(g.day.AddDate(1, 0, 0))},
	}
}

func riskLevel(score int) string {
	switch {
	case score >= 15:
		return "critical"
	case score >= 10:
		return "high"
	case score >= 5:
		return "medium"
	default:
		return "low"
	}
}

type pending struct {
	collection string
	row        store.Row
}

// Seed generates a fixture and inserts it through b. The first failing
// insert stops seeding; the summary reports what was written before it.
func Seed(ctx context.Context, b store.Backend, tenant string, day time.Time, seed uint64) (Summary, error) {
	if tenant == "" {
		return nil, fmt.Errorf("demo: tenant required")
	}
	f := Generate(tenant, day, seed)

	var rows []pending
	add := func(c string, r store.Row) { rows = append(rows, pending{c, r}) }
	for _, r := range f.Temperatures {
		add(store.Temperatures, store.EncodeTemperature(r))
	}
	for _, r := range f.Cleaning {
		add(store.Cleaning, store.EncodeCleaning(r))
	}
	for _, r := range f.Hygiene {
		add(store.Hygiene, store.EncodeHygiene(r))
	}
	for _, r := range f.Cooling {
		add(store.Cooling, store.EncodeCooling(r))
	}
	for _, r := range f.Incidents {
		add(store.Incidents, store.EncodeIncident(r))
	}
	for _, r := range f.Risks {
		add(store.RiskAssessments, store.EncodeRisk(r))
	}
	for _, r := range f.Equipment {
		add(store.FirstAidEquipment, store.EncodeEquipment(tenant, r))
	}
	for _, r := range f.Inspections {
		add(store.FirstAidInspections, store.EncodeInspection(tenant, r))
	}
	for _, r := range f.Responsible {
		add(store.FirstAidResponsible, store.EncodeResponsible(tenant, r))
	}

	sum := Summary{}
	for _, p := range rows {
		if err := b.Insert(ctx, p.collection, p.row); err != nil {
			return sum, fmt.Errorf("demo: seed %s: %w", p.collection, err)
		}
		sum[p.collection]++
	}
	return sum, nil
}
