// Package fetch reads records from the backend store for one tenant.
//
// A failed read is never fatal: it is logged, counted, recorded as a data
// gap and replaced by an empty collection, so downstream aggregation treats
// it the same as "no records".
package fetch

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/kitchencheck/internal/logging"
	"github.com/dshills/kitchencheck/internal/metrics"
	"github.com/dshills/kitchencheck/internal/schema"
	"github.com/dshills/kitchencheck/internal/store"
)

// Fetcher reads tenant-scoped collections.
type Fetcher struct {
	backend store.Backend
	log     logging.Logger
	metrics *metrics.Metrics
}

func New(b store.Backend, log logging.Logger, m *metrics.Metrics) *Fetcher {
	if log == nil {
		log = logging.Discard()
	}
	return &Fetcher{backend: b, log: log.Module("fetch"), metrics: m}
}

// Gaps collects the names of collections whose read failed. Safe for
// concurrent use; a nil *Gaps discards.
type Gaps struct {
	mu    sync.Mutex
	names map[string]struct{}
}

func (g *Gaps) add(name string) {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.names == nil {
		g.names = map[string]struct{}{}
	}
	g.names[name] = struct{}{}
}

// List returns the failed collections sorted by name.
func (g *Gaps) List() []string {
	if g == nil {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.names) == 0 {
		return nil
	}
	out := make([]string, 0, len(g.names))
	for n := range g.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Fetch runs q against collection with company_id = tenant added.
func (f *Fetcher) Fetch(ctx context.Context, tenant, collection string, q store.Query, gaps *Gaps) []store.Row {
	q = q.And(store.Eq(store.CompanyColumn, tenant))
	rows, err := f.backend.Select(ctx, collection, q)
	if err != nil {
		f.log.Warn("fetch failed, using empty collection",
			logging.String("collection", collection),
			logging.String("tenant", tenant),
			logging.Error(err))
		f.metrics.FetchFailed(collection)
		gaps.add(collection)
		return nil
	}
	return rows
}

func inPeriod(column string, p schema.Period) store.Query {
	if p.SingleDay() {
		return store.Where(store.Eq(column, p.Start.Format(schema.DateLayout)))
	}
	return store.Where(store.Between(column,
		p.Start.Format(schema.DateLayout), p.End.Format(schema.DateLayout)))
}

func decodeAll[T any](rows []store.Row, decode func(store.Row) T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, decode(r))
	}
	return out
}

func (f *Fetcher) Temperatures(ctx context.Context, tenant string, p schema.Period, gaps *Gaps) []schema.TemperatureReading {
	q := inPeriod("log_date", p).Order("log_time", false)
	return decodeAll(f.Fetch(ctx, tenant, store.Temperatures, q, gaps), store.DecodeTemperature)
}

func (f *Fetcher) Cleaning(ctx context.Context, tenant string, p schema.Period, gaps *Gaps) []schema.CleaningEntry {
	q := inPeriod("log_date", p).Order("log_time", false)
	return decodeAll(f.Fetch(ctx, tenant, store.Cleaning, q, gaps), store.DecodeCleaning)
}

func (f *Fetcher) Hygiene(ctx context.Context, tenant string, p schema.Period, gaps *Gaps) []schema.HygieneCheck {
	return decodeAll(f.Fetch(ctx, tenant, store.Hygiene, inPeriod("check_date", p), gaps), store.DecodeHygiene)
}

func (f *Fetcher) Cooling(ctx context.Context, tenant string, p schema.Period, gaps *Gaps) []schema.CoolingLog {
	q := inPeriod("log_date", p).Order("start_time", false)
	return decodeAll(f.Fetch(ctx, tenant, store.Cooling, q, gaps), store.DecodeCooling)
}

func (f *Fetcher) Incidents(ctx context.Context, tenant string, p schema.Period, gaps *Gaps) []schema.Incident {
	q := inPeriod("incident_date", p).Order("incident_date", false)
	return decodeAll(f.Fetch(ctx, tenant, store.Incidents, q, gaps), store.DecodeIncident)
}

func (f *Fetcher) RiskAssessments(ctx context.Context, tenant string, gaps *Gaps) []schema.RiskAssessment {
	q := store.Query{}.Order("risk_score", true)
	return decodeAll(f.Fetch(ctx, tenant, store.RiskAssessments, q, gaps), store.DecodeRisk)
}

// HACCP is the set of daily food-safety logs for a period.
type HACCP struct {
	Temperatures []schema.TemperatureReading
	Cleaning     []schema.CleaningEntry
	Hygiene      []schema.HygieneCheck
	Cooling      []schema.CoolingLog
	// Gaps lists collections that could not be read.
	Gaps []string
}

// GatherPeriod reads the four HACCP collections concurrently.
func (f *Fetcher) GatherPeriod(ctx context.Context, tenant string, p schema.Period) HACCP {
	var (
		out  HACCP
		gaps Gaps
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { out.Temperatures = f.Temperatures(gctx, tenant, p, &gaps); return nil })
	g.Go(func() error { out.Cleaning = f.Cleaning(gctx, tenant, p, &gaps); return nil })
	g.Go(func() error { out.Hygiene = f.Hygiene(gctx, tenant, p, &gaps); return nil })
	g.Go(func() error { out.Cooling = f.Cooling(gctx, tenant, p, &gaps); return nil })
	_ = g.Wait()
	out.Gaps = gaps.List()
	return out
}

// GatherDay is GatherPeriod for a single calendar date.
func (f *Fetcher) GatherDay(ctx context.Context, tenant string, day time.Time) HACCP {
	return f.GatherPeriod(ctx, tenant, schema.Day(day))
}
