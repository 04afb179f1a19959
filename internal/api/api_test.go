package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/kitchencheck/internal/analysis"
	"github.com/dshills/kitchencheck/internal/config"
	"github.com/dshills/kitchencheck/internal/fetch"
	"github.com/dshills/kitchencheck/internal/metrics"
	"github.com/dshills/kitchencheck/internal/pdf"
	"github.com/dshills/kitchencheck/internal/report"
	"github.com/dshills/kitchencheck/internal/schema"
	"github.com/dshills/kitchencheck/internal/store"
)

var today = time.Date(2025, 6, 3, 21, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type env struct {
	mem *store.Memory
	srv *Server
}

func setup(t *testing.T) env {
	t.Helper()
	mem := store.NewMemory()
	m := metrics.New()
	svc := report.NewService(report.Deps{
		Backend: mem,
		Fetcher: fetch.New(mem, nil, m),
		Builder: report.NewBuilder(store.NewReportStore(mem), nil, m),
		Advisor: analysis.NewAdvisor(config.AISettings{}, nil, m),
	}, config.ReportSettings{})
	srv := New(Config{Service: svc, Metrics: m, Meta: pdf.Meta{Company: "Acme AS"}})
	srv.now = func() time.Time { return today }
	return env{mem: mem, srv: srv}
}

func (e env) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(TenantHeader, "acme")
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (e env) seed(t *testing.T) {
	t.Helper()
	day := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()
	require.NoError(t, e.mem.Insert(ctx, store.Temperatures, store.EncodeTemperature(schema.TemperatureReading{
		CompanyID: "acme", Date: day, Zone: "Freezer", Equipment: "Freezer 1", Time: "11:00", Celsius: ptr(-10.0)})))
	require.NoError(t, e.mem.Insert(ctx, store.Incidents, store.EncodeIncident(schema.Incident{
		CompanyID: "acme", Date: day, Title: "Cut finger", Category: "safety", Severity: "medium", Status: "open"})))
}

func TestGenerateDaily_Lifecycle(t *testing.T) {
	e := setup(t)
	e.seed(t)

	rec := e.do(t, http.MethodPost, "/api/v1/reports/daily", `{"date":"2025-06-03"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	r := decode[schema.Report](t, rec)
	assert.Equal(t, schema.KindHACCPDaily, r.Kind)
	assert.Equal(t, schema.OverallFail, r.OverallStatus)
	assert.Equal(t, 1, r.Counts.Temperatures)

	// Same day again is declined and the existing report is returned.
	rec = e.do(t, http.MethodPost, "/api/v1/reports/daily", `{"date":"2025-06-03"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	dup := decode[map[string]any](t, rec)
	assert.Equal(t, r.ID, dup["report"].(map[string]any)["id"])

	rec = e.do(t, http.MethodGet, "/api/v1/reports/"+r.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/reports/"+r.ID+"/sign", `{"signed_by":"Kari"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	signed := decode[schema.Report](t, rec)
	require.NotNil(t, signed.Signature)
	assert.Equal(t, "Kari", signed.Signature.SignedBy)

	rec = e.do(t, http.MethodPost, "/api/v1/reports/"+r.ID+"/sign", `{"signed_by":"Ola"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// A signed report cannot be regenerated over.
	rec = e.do(t, http.MethodPost, "/api/v1/reports/daily", `{"date":"2025-06-03","overwrite":true}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	kept := decode[map[string]any](t, rec)["report"].(map[string]any)
	assert.Equal(t, "Kari", kept["signature"].(map[string]any)["signed_by"])

	rec = e.do(t, http.MethodPut, "/api/v1/reports/"+r.ID+"/notes", `{"notes":"Freezer door left open"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Freezer door left open", decode[schema.Report](t, rec).Notes)

	rec = e.do(t, http.MethodPost, "/api/v1/reports/"+r.ID+"/approve", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, schema.ReportApproved, decode[schema.Report](t, rec).Status)

	rec = e.do(t, http.MethodGet, "/api/v1/reports?status=approved", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]schema.Report](t, rec), 1)

	rec = e.do(t, http.MethodGet, "/api/v1/reports?status=draft", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = e.do(t, http.MethodDelete, "/api/v1/reports/"+r.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.do(t, http.MethodGet, "/api/v1/reports/"+r.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateDaily_DefaultsToToday(t *testing.T) {
	e := setup(t)
	rec := e.do(t, http.MethodPost, "/api/v1/reports/daily", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	r := decode[schema.Report](t, rec)
	assert.Equal(t, "2025-06-03", r.Period.Start.Format(schema.DateLayout))
}

func TestGenerateHMS(t *testing.T) {
	e := setup(t)
	e.seed(t)

	rec := e.do(t, http.MethodPost, "/api/v1/reports/hms", `{"start":"2025-06-01","end":"2025-06-30","type":"monthly"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	r := decode[schema.Report](t, rec)
	assert.Equal(t, 1, r.Counts.TotalIncidents)

	rec = e.do(t, http.MethodGet, "/api/v1/reports/"+r.ID+"/pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "HMS_Report_2025-06-01.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

func TestBadRequests(t *testing.T) {
	e := setup(t)
	tests := []struct {
		name, method, path, body string
		want                     int
	}{
		{"bad date", http.MethodPost, "/api/v1/reports/daily", `{"date":"03.06.2025"}`, http.StatusBadRequest},
		{"hms missing end", http.MethodPost, "/api/v1/reports/hms", `{"start":"2025-06-01"}`, http.StatusBadRequest},
		{"hms reversed", http.MethodPost, "/api/v1/reports/hms", `{"start":"2025-06-30","end":"2025-06-01"}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/v1/reports/daily", `{`, http.StatusBadRequest},
		{"bad limit", http.MethodGet, "/api/v1/reports?limit=x", "", http.StatusBadRequest},
		{"sign without signer", http.MethodPost, "/api/v1/reports/nope/sign", `{}`, http.StatusBadRequest},
		{"unknown report", http.MethodGet, "/api/v1/reports/nope", "", http.StatusNotFound},
		{"unknown section", http.MethodPost, "/api/v1/sections/insurance/analyze", "", http.StatusNotFound},
		{"section without pdf", http.MethodGet, "/api/v1/sections/personnel/pdf", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, tt.want, resp.Code)
			assert.NotEmpty(t, resp.CorrelationID)
		})
	}
}

func TestMissingTenant(t *testing.T) {
	e := setup(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", http.NoBody)
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The query parameter works when the header is absent.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports?company=acme", http.NoBody)
	rec = httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSections(t *testing.T) {
	e := setup(t)

	rec := e.do(t, http.MethodGet, "/api/v1/sections", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]sectionInfo](t, rec), 7)

	rec = e.do(t, http.MethodPost, "/api/v1/sections/personnel/analyze", "")
	require.Equal(t, http.StatusOK, rec.Code)
	a := decode[schema.Analysis](t, rec)
	assert.Equal(t, schema.SourceLocal, a.Source)

	rec = e.do(t, http.MethodGet, "/api/v1/sections/personnel/report?start=2025-06-01&end=2025-06-03", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/sections/first_aid/pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "First_Aid_2025-06-03.pdf")
}

func TestAssistSection(t *testing.T) {
	e := setup(t)
	e.seed(t)

	rec := e.do(t, http.MethodPost, "/api/v1/sections/incidents/assist", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[schema.Assistance](t, rec)
	assert.Equal(t, schema.TopicIncident, got.Topic)
	assert.NotContains(t, got.Missing, "The incident type must be specified", "type comes from the stored incident")
	assert.Contains(t, got.Missing, "The incident description needs more detail")

	rec = e.do(t, http.MethodPost, "/api/v1/sections/personnel/assist", `{"working_environment":{"safety_representative":"Kari","sick_leave_percent":8}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[schema.Assistance](t, rec)
	assert.Equal(t, schema.TopicWorkingEnvironment, got.Topic)
	assert.Empty(t, got.Missing)
	assert.Contains(t, got.Actions, "High sick leave can point to problems in the working environment; consider measures")

	rec = e.do(t, http.MethodPost, "/api/v1/sections/insurance/assist", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, schema.TopicGeneral, decode[schema.Assistance](t, rec).Topic)

	rec = e.do(t, http.MethodPost, "/api/v1/sections/deviation/assist", `{"deviation":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	e := setup(t)
	e.do(t, http.MethodPost, "/api/v1/reports/daily", "")
	e.do(t, http.MethodGet, "/api/v1/sections/first_aid/pdf", "")

	rec := e.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kitchencheck_")
}

func TestHealthz(t *testing.T) {
	e := setup(t)
	rec := e.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
