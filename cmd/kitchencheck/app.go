package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dshills/kitchencheck/internal/analysis"
	"github.com/dshills/kitchencheck/internal/config"
	"github.com/dshills/kitchencheck/internal/fetch"
	"github.com/dshills/kitchencheck/internal/logging"
	"github.com/dshills/kitchencheck/internal/metrics"
	"github.com/dshills/kitchencheck/internal/pdf"
	"github.com/dshills/kitchencheck/internal/report"
	"github.com/dshills/kitchencheck/internal/section"
	"github.com/dshills/kitchencheck/internal/store"
)

// Exit codes.
const (
	exitCodeFailOn   = 2 // --fail-on matched the report result
	exitCodeBadInput = 3 // invalid flags, config or request
	exitCodeStore    = 4 // backend unreachable or a write failed
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func badInput(err error) error { return &exitError{code: exitCodeBadInput, err: err} }

// classify turns a domain error into an exitError.
func classify(err error) error {
	var ee *exitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ee):
		return err
	case errors.Is(err, report.ErrInvalidRequest),
		errors.Is(err, report.ErrDuplicateReport),
		errors.Is(err, report.ErrAlreadySigned),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, section.ErrUnknown):
		return badInput(err)
	default:
		return &exitError{code: exitCodeStore, err: err}
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	configFile string
	company    string
	logLevel   string
}

// app is the wired object graph one command runs against.
type app struct {
	settings *config.Settings
	log      logging.Logger
	backend  store.Backend
	metrics  *metrics.Metrics
	svc      *report.Service
	tenant   string
	out      io.Writer
}

// newApp loads configuration and opens the backend.
func newApp(g globalFlags, out io.Writer) (*app, error) {
	s, err := config.Load(g.configFile)
	if err != nil {
		return nil, badInput(err)
	}
	if g.logLevel != "" {
		s.Log.Level = g.logLevel
	}
	return wire(s, g.company, out)
}

// wire assembles the components from settings.
func wire(s *config.Settings, company string, out io.Writer) (*app, error) {
	log := logging.New(os.Stderr, logging.Options{Level: s.Log.Level, Format: s.Log.Format})
	b, err := store.Open(s.Database, log.Module("store"))
	if err != nil {
		return nil, &exitError{code: exitCodeStore, err: err}
	}
	m := metrics.New()
	builder := report.NewBuilder(store.NewReportStore(b), log.Module("report"), m)
	svc := report.NewService(report.Deps{
		Backend: b,
		Fetcher: fetch.New(b, log.Module("fetch"), m),
		Builder: builder,
		Advisor: analysis.NewAdvisor(s.AI, log.Module("analysis"), m),
		Log:     log.Module("report"),
	}, s.Report)

	tenant := company
	if tenant == "" {
		tenant = s.Company.ID
	}
	return &app{
		settings: s,
		log:      log,
		backend:  b,
		metrics:  m,
		svc:      svc,
		tenant:   tenant,
		out:      out,
	}, nil
}

func (a *app) Close() error {
	return a.backend.Close()
}

// meta is the document context: company name and logo from settings. A logo
// that cannot be read is left out.
func (a *app) meta() pdf.Meta {
	name := a.settings.Report.CompanyName
	if name == "" {
		name = a.settings.Company.Name
	}
	m := pdf.Meta{Company: name}
	if p := a.settings.Report.LogoPath; p != "" {
		logo, err := os.ReadFile(p)
		if err != nil {
			a.log.Warn("logo unreadable", logging.String("path", p), logging.Error(err))
		} else {
			m.Logo = logo
		}
	}
	return m
}

// writeDocument renders doc to path.
func (a *app) writeDocument(doc *pdf.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &exitError{code: exitCodeStore, err: fmt.Errorf("create %s: %w", path, err)}
	}
	if err := pdf.WritePDF(doc, f); err != nil {
		f.Close()
		return &exitError{code: exitCodeStore, err: err}
	}
	if err := f.Close(); err != nil {
		return &exitError{code: exitCodeStore, err: err}
	}
	a.metrics.PagesRendered(len(doc.Pages))
	a.log.Info("document written", logging.String("path", path), logging.Int("pages", len(doc.Pages)))
	return nil
}
