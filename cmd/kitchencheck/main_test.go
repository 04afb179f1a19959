package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/kitchencheck/internal/config"
	"github.com/dshills/kitchencheck/internal/schema"
	"github.com/dshills/kitchencheck/internal/store"
)

const seedDate = "2025-06-03"

// testApp wires the application against an in-memory backend.
func testApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	a, err := wire(&config.Settings{
		Company:  config.CompanySettings{ID: "acme", Name: "Acme AS"},
		Database: config.DatabaseSettings{Driver: "memory"},
		Report:   config.ReportSettings{OutputDir: t.TempDir()},
		Log:      config.LogSettings{Level: "error"},
	}, "", &out)
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a, &out
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

func seedDemo(t *testing.T, a *app) {
	t.Helper()
	if err := runSeed(context.Background(), a, seedFlags{date: seedDate, days: 1, seed: 1}); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestDaily_JSONFromDemoData(t *testing.T) {
	a, out := testApp(t)
	seedDemo(t, a)
	out.Reset()

	err := classify(runDaily(context.Background(), a, dailyFlags{
		generateFlags: generateFlags{format: "json"},
		date:          seedDate,
	}))
	if err != nil {
		t.Fatalf("runDaily: %v", err)
	}
	var r schema.Report
	if err := json.Unmarshal(out.Bytes(), &r); err != nil {
		t.Fatalf("parse output JSON: %v\n%s", err, out.String())
	}
	if r.Counts.Temperatures != 17 {
		t.Errorf("temperatures: got %d, want 17", r.Counts.Temperatures)
	}
	if r.CompanyID != "acme" {
		t.Errorf("company: got %q, want acme", r.CompanyID)
	}
}

func TestDaily_DuplicateExitsThree(t *testing.T) {
	a, out := testApp(t)
	f := dailyFlags{generateFlags: generateFlags{format: "markdown"}, date: seedDate}

	if err := classify(runDaily(context.Background(), a, f)); err != nil {
		t.Fatalf("first run: %v", err)
	}
	out.Reset()
	err := classify(runDaily(context.Background(), a, f))
	if code := exitCode(err); code != exitCodeBadInput {
		t.Errorf("expected exit %d, got %d: %v", exitCodeBadInput, code, err)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("expected duplicate notice, got %q", out.String())
	}

	f.overwrite = true
	if err := classify(runDaily(context.Background(), a, f)); err != nil {
		t.Errorf("overwrite run: %v", err)
	}
}

func TestDaily_BadDateExitsThree(t *testing.T) {
	a, _ := testApp(t)
	err := classify(runDaily(context.Background(), a, dailyFlags{date: "03/06/2025"}))
	if code := exitCode(err); code != exitCodeBadInput {
		t.Errorf("expected exit %d, got %d: %v", exitCodeBadInput, code, err)
	}
}

func TestFailOnMatches(t *testing.T) {
	cases := []struct {
		threshold string
		overall   schema.OverallStatus
		want      bool
	}{
		{"", schema.OverallFail, false},
		{"fail", schema.OverallFail, true},
		{"fail", schema.OverallWarning, false},
		{"warning", schema.OverallWarning, true},
		{"warning", schema.OverallFail, true},
		{"warning", schema.OverallPass, false},
	}
	for _, c := range cases {
		got, err := failOnMatches(c.threshold, c.overall)
		if err != nil {
			t.Fatalf("failOnMatches(%q): %v", c.threshold, err)
		}
		if got != c.want {
			t.Errorf("failOnMatches(%q, %s) = %v, want %v", c.threshold, c.overall, got, c.want)
		}
	}
	if _, err := failOnMatches("pass", schema.OverallPass); exitCode(err) != exitCodeBadInput {
		t.Errorf("expected bad input for unknown threshold, got %v", err)
	}
}

func TestDaily_FailOnExitsTwo(t *testing.T) {
	a, _ := testApp(t)
	ctx := context.Background()
	day, _ := time.Parse(schema.DateLayout, seedDate)
	warm := -10.0
	if err := a.backend.Insert(ctx, store.Temperatures, store.EncodeTemperature(schema.TemperatureReading{
		CompanyID: "acme", Date: day, Zone: "Freezer", Equipment: "Freezer 1", Time: "11:00", Celsius: &warm,
	})); err != nil {
		t.Fatalf("insert: %v", err)
	}

	err := classify(runDaily(ctx, a, dailyFlags{
		generateFlags: generateFlags{format: "markdown", failOn: "fail"},
		date:          seedDate,
	}))
	if code := exitCode(err); code != exitCodeFailOn {
		t.Errorf("expected exit %d (failOn), got %d: %v", exitCodeFailOn, code, err)
	}
}

func TestDaily_PDFWritesFile(t *testing.T) {
	a, out := testApp(t)
	seedDemo(t, a)
	out.Reset()

	err := classify(runDaily(context.Background(), a, dailyFlags{
		generateFlags: generateFlags{format: "pdf"},
		date:          seedDate,
	}))
	if err != nil {
		t.Fatalf("runDaily: %v", err)
	}
	want := filepath.Join(a.settings.Report.OutputDir, "HACCP_Report_2025-06-03.pdf")
	if strings.TrimSpace(out.String()) != want {
		t.Errorf("printed path: got %q, want %q", out.String(), want)
	}
	b, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func TestHMS_Markdown(t *testing.T) {
	a, out := testApp(t)
	seedDemo(t, a)
	out.Reset()

	err := classify(runHMS(context.Background(), a, hmsFlags{
		generateFlags: generateFlags{format: "markdown"},
		start:         "2025-06-01",
		end:           "2025-06-30",
		typ:           "monthly",
	}))
	if err != nil {
		t.Fatalf("runHMS: %v", err)
	}
	if !strings.Contains(out.String(), "**Incidents:** 3") {
		t.Errorf("expected three demo incidents in output:\n%s", out.String())
	}
}

func TestHMS_ReversedPeriodExitsThree(t *testing.T) {
	a, _ := testApp(t)
	err := classify(runHMS(context.Background(), a, hmsFlags{start: "2025-06-30", end: "2025-06-01"}))
	if code := exitCode(err); code != exitCodeBadInput {
		t.Errorf("expected exit %d, got %d: %v", exitCodeBadInput, code, err)
	}
}

func TestAnalyze_UnknownSectionExitsThree(t *testing.T) {
	a, _ := testApp(t)
	err := classify(runAnalyze(context.Background(), a, "insurance", "markdown"))
	if code := exitCode(err); code != exitCodeBadInput {
		t.Errorf("expected exit %d, got %d: %v", exitCodeBadInput, code, err)
	}
}

func TestAnalyze_LocalFallback(t *testing.T) {
	a, out := testApp(t)
	if err := classify(runAnalyze(context.Background(), a, "personnel", "json")); err != nil {
		t.Fatalf("runAnalyze: %v", err)
	}
	var an schema.Analysis
	if err := json.Unmarshal(out.Bytes(), &an); err != nil {
		t.Fatalf("parse output JSON: %v", err)
	}
	if an.Source != schema.SourceLocal {
		t.Errorf("source: got %q, want local", an.Source)
	}
}

func TestAssist_InputFileAndStoredRecords(t *testing.T) {
	a, out := testApp(t)
	seedDemo(t, a)
	out.Reset()

	in := filepath.Join(t.TempDir(), "form.json")
	if err := os.WriteFile(in, []byte(`{"fire_safety":{"escape_routes":["Back door"],"drill_missing":true}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := classify(runAssist(context.Background(), a, "fire_safety", in, "json")); err != nil {
		t.Fatalf("runAssist: %v", err)
	}
	var got schema.Assistance
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("parse output JSON: %v", err)
	}
	if got.Topic != schema.TopicFireSafety {
		t.Errorf("topic: got %q", got.Topic)
	}
	for _, m := range got.Missing {
		if m == "Escape routes must be documented" {
			t.Error("escape routes were given in the input file")
		}
	}
	found := false
	for _, act := range got.Actions {
		found = found || act == "Hold a fire drill for all employees"
	}
	if !found {
		t.Errorf("expected a fire drill action, got %v", got.Actions)
	}
}

func TestAssist_BadInputExitsThree(t *testing.T) {
	a, _ := testApp(t)
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, in := range []string{bad, filepath.Join(t.TempDir(), "missing.json")} {
		err := classify(runAssist(context.Background(), a, "deviation", in, "markdown"))
		if code := exitCode(err); code != exitCodeBadInput {
			t.Errorf("%s: expected exit %d, got %d: %v", in, exitCodeBadInput, code, err)
		}
	}
}

func TestAssist_MarkdownGeneral(t *testing.T) {
	a, out := testApp(t)
	if err := classify(runAssist(context.Background(), a, "insurance", "", "markdown")); err != nil {
		t.Fatalf("runAssist: %v", err)
	}
	if !strings.Contains(out.String(), "## Assistant: general") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestSectionPDF(t *testing.T) {
	a, _ := testApp(t)
	seedDemo(t, a)
	for _, name := range []string{"risk_assessment", "first_aid", "fire_safety"} {
		out := filepath.Join(t.TempDir(), name+".pdf")
		if err := classify(runSectionPDF(context.Background(), a, name, out)); err != nil {
			t.Fatalf("runSectionPDF(%s): %v", name, err)
		}
		if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
			t.Errorf("%s: expected a non-empty file, got %v", name, err)
		}
	}
	err := classify(runSectionPDF(context.Background(), a, "personnel", ""))
	if code := exitCode(err); code != exitCodeBadInput {
		t.Errorf("expected exit %d, got %d: %v", exitCodeBadInput, code, err)
	}
}

func TestSeed_RejectsZeroDays(t *testing.T) {
	a, _ := testApp(t)
	err := runSeed(context.Background(), a, seedFlags{days: 0})
	if code := exitCode(err); code != exitCodeBadInput {
		t.Errorf("expected exit %d, got %d: %v", exitCodeBadInput, code, err)
	}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{
		{"serve"}, {"report", "daily"}, {"report", "hms"}, {"report", "sign"}, {"report", "list"},
		{"analyze"}, {"assist"}, {"section-report"}, {"section-pdf"}, {"render"}, {"demo", "seed"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Errorf("command %v not found: %v", path, err)
		}
	}
}
