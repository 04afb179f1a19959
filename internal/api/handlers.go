package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dshills/kitchencheck/internal/pdf"
	"github.com/dshills/kitchencheck/internal/report"
	"github.com/dshills/kitchencheck/internal/schema"
	"github.com/dshills/kitchencheck/internal/section"
	"github.com/dshills/kitchencheck/internal/store"
)

func (s *Server) tenantOf(c echo.Context) (string, error) {
	for _, t := range []string{c.Request().Header.Get(TenantHeader), c.QueryParam("company"), s.tenant} {
		if t = strings.TrimSpace(t); t != "" {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: no company given", errBadRequest)
}

func parseDate(field, v string) (time.Time, error) {
	t, err := time.Parse(schema.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", errBadRequest, field)
	}
	return t, nil
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// generated wraps a generation result so a declined duplicate or a refused
// overwrite of a signed report carries the existing report into the error
// body.
func generated(c echo.Context, r *schema.Report, err error) error {
	if r != nil && (errors.Is(err, report.ErrDuplicateReport) || errors.Is(err, report.ErrAlreadySigned)) {
		return &duplicateError{err: err, report: r}
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

type dailyRequest struct {
	Date        string `json:"date"`
	Automatic   bool   `json:"automatic"`
	Overwrite   bool   `json:"overwrite"`
	GeneratedBy string `json:"generated_by"`
}

func (s *Server) generateDaily(c echo.Context) error {
	tenant, err := s.tenantOf(c)
	if err != nil {
		return err
	}
	var req dailyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	day := s.now()
	if req.Date != "" {
		if day, err = parseDate("date", req.Date); err != nil {
			return err
		}
	}
	r, err := s.svc.GenerateDaily(c.Request().Context(), tenant, day, report.Options{
		Automatic: req.Automatic, Overwrite: req.Overwrite, GeneratedBy: req.GeneratedBy,
	})
	return generated(c, r, err)
}

type hmsRequest struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Automatic   bool   `json:"automatic"`
	Overwrite   bool   `json:"overwrite"`
	GeneratedBy string `json:"generated_by"`
}

func (s *Server) generateHMS(c echo.Context) error {
	tenant, err := s.tenantOf(c)
	if err != nil {
		return err
	}
	var req hmsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	start, err := parseDate("start", req.Start)
	if err != nil {
		return err
	}
	end, err := parseDate("end", req.End)
	if err != nil {
		return err
	}
	r, _, err := s.svc.GenerateHMS(c.Request().Context(), tenant, schema.Period{Start: start, End: end}, report.HMSOptions{
		Options: report.Options{Automatic: req.Automatic, Overwrite: req.Overwrite, GeneratedBy: req.GeneratedBy},
		Type:    schema.ReportType(req.Type),
		Title:   req.Title,
		Summary: req.Summary,
	})
	return generated(c, r, err)
}

func (s *Server) listReports(c echo.Context) error {
	tenant, err := s.tenantOf(c)
	if err != nil {
		return err
	}
	f := store.ListFilter{
		Kind:   schema.ReportKind(c.QueryParam("kind")),
		Status: schema.ReportStatus(c.QueryParam("status")),
	}
	if l := c.QueryParam("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: limit must be a non-negative integer", errBadRequest)
		}
		f.Limit = n
	}
	rs, err := s.svc.Builder.List(c.Request().Context(), tenant, f)
	if err != nil {
		return err
	}
	if rs == nil {
		rs = []*schema.Report{}
	}
	return c.JSON(http.StatusOK, rs)
}

func (s *Server) getReport(c echo.Context) error {
	tenant, err := s.tenantOf(c)
	if err != nil {
		return err
	}
	r, err := s.svc.Builder.Get(c.Request().Context(), tenant, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

type signRequest struct {
	SignedBy string `json:"signed_by"`
}

func (s *Server) signReport(c echo.Context) error {
	tenant, err := s.tenantOf(c)
	if err != nil {
		return err
	}
	var req signRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	r, err := s.svc.Builder.Sign(c.Request().Context(), tenant, c.Param("id"), req.SignedBy, s.now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) annotateReport(c echo.Context) error {
	tenant, err := s.tenantOf(c)
	if err != nil {
		return err
	}
	var req notesRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	r, err := s.svc.Builder.Annotate(c.Request().Context(), tenant, c.Param("id"), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) approveReport(c echo.Context) error {
	tenant, err := s.tenantOf(c)
	if err != nil {
		return err
	}
	r, err := s.svc.Builder.Approve(c.Request().Context(), tenant, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) deleteReport(c echo.Context) error {
	tenant, err := s.tenantOf(c)
	if err != nil {
		return err
	}
	if err := s.svc.Builder.Delete(c.Request().Context(), tenant, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) documentMeta() pdf.Meta {
	m := s.meta
	m.Generated = s.now()
	return m
}

// sendPDF writes doc as an attachment named filename.
func (s *Server) sendPDF(c echo.Context, doc *pdf.Document, filename string) error {
	var buf bytes.Buffer
	if err := pdf.WritePDF(doc, &buf); err != nil {
		return err
	}
	s.metrics.PagesRendered(len(doc.Pages))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

func (s *Server) reportPDF(c echo.Context) error {
	tenant, err := s.tenantOf(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	r, err := s.svc.Builder.Get(ctx, tenant, c.Param("id"))
	if err != nil {
		return err
	}
	return s.sendPDF(c, s.svc.Document(ctx, r, s.documentMeta()), pdf.ReportFilename(r))
}

type sectionInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

func (s *Server) listSections(c echo.Context) error {
	out := []sectionInfo{}
	for _, name := range section.Names() {
		sec, err := section.Load(name)
		if err != nil {
			return err
		}
		out = append(out, sectionInfo{Name: sec.Name, DisplayName: sec.DisplayName})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) analyzeSection(c echo.Context) error {
	tenant, err := s.tenantOf(c)
	if err != nil {
		return err
	}
	a, err := s.svc.AnalyzeSection(c.Request().Context(), tenant, c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// assistSection returns rule-based guidance. The body is optional.
func (s *Server) assistSection(c echo.Context) error {
	tenant, err := s.tenantOf(c)
	if err != nil {
		return err
	}
	var form schema.AssistForm
	if err := bind(c, &form); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.svc.Assist(c.Request().Context(), tenant, c.Param("name"), form))
}

// periodOf reads start and end query parameters. Both default to today.
func (s *Server) periodOf(c echo.Context) (schema.Period, error) {
	p := schema.Day(s.now())
	if v := c.QueryParam("start"); v != "" {
		t, err := parseDate("start", v)
		if err != nil {
			return p, err
		}
		p.Start = t
		if c.QueryParam("end") == "" {
			p.End = t
		}
	}
	if v := c.QueryParam("end"); v != "" {
		t, err := parseDate("end", v)
		if err != nil {
			return p, err
		}
		p.End = t
	}
	if !p.Valid() {
		return p, fmt.Errorf("%w: end before start", errBadRequest)
	}
	return p, nil
}

func (s *Server) sectionReport(c echo.Context) error {
	tenant, err := s.tenantOf(c)
	if err != nil {
		return err
	}
	p, err := s.periodOf(c)
	if err != nil {
		return err
	}
	r, err := s.svc.SectionReport(c.Request().Context(), tenant, c.Param("name"), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) sectionPDF(c echo.Context) error {
	tenant, err := s.tenantOf(c)
	if err != nil {
		return err
	}
	meta := s.documentMeta()
	doc, slug, err := s.svc.SectionDocument(c.Request().Context(), tenant, c.Param("name"), meta)
	if err != nil {
		return err
	}
	return s.sendPDF(c, doc, pdf.Filename(slug, meta.Generated))
}
