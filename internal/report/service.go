package report

import (
	"time"

	"github.com/dshills/kitchencheck/internal/aggregate"
	"github.com/dshills/kitchencheck/internal/analysis"
	"github.com/dshills/kitchencheck/internal/classify"
	"github.com/dshills/kitchencheck/internal/config"
	"github.com/dshills/kitchencheck/internal/fetch"
	"github.com/dshills/kitchencheck/internal/logging"
	"github.com/dshills/kitchencheck/internal/store"
)

// Service runs the end-to-end generation paths.
type Service struct {
	Builder *Builder

	backend    store.Backend
	fetcher    *fetch.Fetcher
	advisor    *analysis.Advisor
	thresholds classify.Thresholds
	penalties  aggregate.Penalties
	log        logging.Logger
	now        func() time.Time
}

// Deps are the collaborators a Service is assembled from.
type Deps struct {
	Backend store.Backend
	Fetcher *fetch.Fetcher
	Builder *Builder
	Advisor *analysis.Advisor
	Log     logging.Logger
}

// NewService wires a Service. Scoring penalties and the temperature
// tolerance come from s; zero penalties fall back to the defaults.
func NewService(d Deps, s config.ReportSettings) *Service {
	th := classify.DefaultThresholds()
	if s.Tolerance > 0 {
		th.Tolerance = s.Tolerance
	}
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	p := aggregate.DefaultPenalties
	if s.CriticalPenalty > 0 || s.WarningPenalty > 0 {
		p = aggregate.Penalties{Critical: s.CriticalPenalty, Warning: s.WarningPenalty}
	}
	return &Service{
		Builder:    d.Builder,
		backend:    d.Backend,
		fetcher:    d.Fetcher,
		advisor:    d.Advisor,
		thresholds: th,
		penalties:  p,
		log:        d.Log.Module("report").Module("service"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Thresholds returns the temperature table in use.
func (s *Service) Thresholds() classify.Thresholds {
	return s.thresholds
}
