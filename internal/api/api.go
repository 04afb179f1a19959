// Package api serves report generation, review and download over HTTP.
// The tenant is taken from each request: the X-Company-ID header, then the
// company query parameter, then the configured default.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dshills/kitchencheck/internal/logging"
	"github.com/dshills/kitchencheck/internal/metrics"
	"github.com/dshills/kitchencheck/internal/pdf"
	"github.com/dshills/kitchencheck/internal/report"
	"github.com/dshills/kitchencheck/internal/section"
	"github.com/dshills/kitchencheck/internal/store"
)

// TenantHeader carries the company a request acts for.
const TenantHeader = "X-Company-ID"

const (
	prefix    = "/api/v1"
	bodyLimit = "1M"
)

// Config assembles a Server.
type Config struct {
	Service *report.Service
	Log     logging.Logger
	Metrics *metrics.Metrics
	// Meta is the document context for PDF downloads. Generated is set per
	// request.
	Meta pdf.Meta
	// DefaultTenant applies when a request names no company.
	DefaultTenant string
}

// Server is the HTTP surface.
type Server struct {
	echo    *echo.Echo
	svc     *report.Service
	log     logging.Logger
	metrics *metrics.Metrics
	meta    pdf.Meta
	tenant  string
	now     func() time.Time
}

// New builds the server and registers its routes.
func New(c Config) *Server {
	if c.Log == nil {
		c.Log = logging.Discard()
	}
	s := &Server{
		echo:    echo.New(),
		svc:     c.Service,
		log:     c.Log.Module("api"),
		metrics: c.Metrics,
		meta:    c.Meta,
		tenant:  c.DefaultTenant,
		now:     time.Now,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.BodyLimit(bodyLimit))
	s.echo.Use(s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	g := s.echo.Group(prefix)
	g.POST("/reports/daily", s.generateDaily)
	g.POST("/reports/hms", s.generateHMS)
	g.GET("/reports", s.listReports)
	g.GET("/reports/:id", s.getReport)
	g.GET("/reports/:id/pdf", s.reportPDF)
	g.POST("/reports/:id/sign", s.signReport)
	g.PUT("/reports/:id/notes", s.annotateReport)
	g.POST("/reports/:id/approve", s.approveReport)
	g.DELETE("/reports/:id", s.deleteReport)

	g.GET("/sections", s.listSections)
	g.POST("/sections/:name/analyze", s.analyzeSection)
	g.POST("/sections/:name/assist", s.assistSection)
	g.GET("/sections/:name/report", s.sectionReport)
	g.GET("/sections/:name/pdf", s.sectionPDF)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", logging.String("addr", addr))
		errc <- s.echo.Start(addr)
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdown)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []logging.Field{
				logging.String("method", v.Method),
				logging.String("uri", v.URI),
				logging.Int("status", v.Status),
				logging.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, logging.Error(v.Error))
			}
			if v.Status >= http.StatusInternalServerError {
				s.log.Warn("request", fields...)
			} else {
				s.log.Debug("request", fields...)
			}
			return nil
		},
	})
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error         string `json:"error"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
	// Report is the existing report when generation was declined as a
	// duplicate.
	Report any `json:"report,omitempty"`
}

var errBadRequest = errors.New("bad request")

// statusOf maps domain errors onto HTTP status codes.
func statusOf(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, errBadRequest), errors.Is(err, report.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound), errors.Is(err, section.ErrUnknown):
		return http.StatusNotFound
	case errors.Is(err, report.ErrDuplicateReport), errors.Is(err, report.ErrAlreadySigned):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// duplicateError carries the report that made a generation a duplicate.
type duplicateError struct {
	err    error
	report any
}

func (d *duplicateError) Error() string { return d.err.Error() }
func (d *duplicateError) Unwrap() error { return d.err }

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := statusOf(err)
	resp := ErrorResponse{Error: err.Error(), Code: code, CorrelationID: uuid.NewString()[:8]}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			resp.Error = msg
		}
	}
	var dup *duplicateError
	if errors.As(err, &dup) {
		resp.Report = dup.report
	}
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed",
			logging.String("correlation_id", resp.CorrelationID),
			logging.String("path", c.Request().URL.Path),
			logging.Error(err))
		resp.Error = http.StatusText(code)
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, resp)
}
