// Package analysis produces structured HMS section analyses and narrative
// reports. A configured completion provider is tried first; any failure
// falls back to the deterministic local rules, so callers always get a
// result.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/kitchencheck/internal/config"
	"github.com/dshills/kitchencheck/internal/llm"
	"github.com/dshills/kitchencheck/internal/logging"
	"github.com/dshills/kitchencheck/internal/metrics"
	"github.com/dshills/kitchencheck/internal/schema"
	"github.com/dshills/kitchencheck/internal/section"
)

const systemPrompt = "You are an HMS (health, safety and environment) expert for the " +
	"restaurant industry in Norway. Respond with a single JSON object and nothing else."

// Advisor runs analyses for one configured provider.
type Advisor struct {
	settings config.AISettings
	log      logging.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewAdvisor returns an Advisor. With AI disabled every call uses the local
// rules.
func NewAdvisor(s config.AISettings, log logging.Logger, m *metrics.Metrics) *Advisor {
	if log == nil {
		log = logging.Discard()
	}
	return &Advisor{
		settings: s,
		log:      log.Module("analysis"),
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// provider returns the configured provider, or the fallback reason.
func (a *Advisor) provider() (llm.Provider, string) {
	if !a.settings.Enabled {
		return nil, "disabled"
	}
	p, err := llm.NewProvider(a.settings.Provider, a.settings.Model)
	if err != nil {
		if errors.Is(err, llm.ErrNoCredential) {
			return nil, "no_credential"
		}
		a.log.Warn("provider unavailable", logging.String("provider", a.settings.Provider), logging.Error(err))
		return nil, "provider_error"
	}
	return p, ""
}

func (a *Advisor) options() llm.Options {
	return llm.Options{MaxTokens: a.settings.MaxTokens, Temperature: a.settings.Temperature}
}

func (a *Advisor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.settings.Timeout > 0 {
		return context.WithTimeout(ctx, a.settings.Timeout)
	}
	return context.WithCancel(ctx)
}

// fallback records why the local rules served a request.
func (a *Advisor) fallback(op, sectionName, reason string, err error) {
	a.metrics.AIFallback(reason)
	fields := []logging.Field{
		logging.String("op", op),
		logging.String("section", sectionName),
		logging.String("reason", reason),
	}
	if err != nil {
		fields = append(fields, logging.Error(err))
		a.log.Warn("using local rules", fields...)
		return
	}
	a.log.Debug("using local rules", fields...)
}

// callOutcome classifies a CompleteJSON error for metrics.
func callOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, llm.ErrInvalidModelOutput):
		return "invalid_output"
	case errors.Is(err, llm.ErrTruncated):
		return "truncated"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "call_failed"
	}
}

// analysisResponse is the JSON object the model is asked to return.
type analysisResponse struct {
	Severity    string   `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Issues      []string `json:"issues"`
	Solutions   []string `json:"solutions"`
	RiskScore   *int     `json:"risk_score"`
	Priority    string   `json:"priority"`
}

func validateAnalysis(r *analysisResponse) []llm.ValidationError {
	var errs []llm.ValidationError
	switch schema.Severity(r.Severity) {
	case schema.SeverityLow, schema.SeverityMedium, schema.SeverityHigh, schema.SeverityCritical:
	default:
		errs = append(errs, llm.ValidationError{Field: "severity", Message: fmt.Sprintf("%q is not one of low, medium, high, critical", r.Severity)})
	}
	switch schema.Priority(r.Priority) {
	case schema.PriorityLow, schema.PriorityMedium, schema.PriorityHigh, schema.PriorityUrgent:
	default:
		errs = append(errs, llm.ValidationError{Field: "priority", Message: fmt.Sprintf("%q is not one of low, medium, high, urgent", r.Priority)})
	}
	if r.Title == "" {
		errs = append(errs, llm.ValidationError{Field: "title", Message: "required"})
	}
	if r.RiskScore == nil {
		errs = append(errs, llm.ValidationError{Field: "risk_score", Message: "required"})
	} else if *r.RiskScore < 0 || *r.RiskScore > 100 {
		errs = append(errs, llm.ValidationError{Field: "risk_score", Message: "must be within 0..100"})
	}
	return errs
}

func analysisPrompt(sec section.Section, d schema.SectionData) (string, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("analysis: encode section data: %w", err)
	}
	return fmt.Sprintf(`Analyze the %s records of a restaurant.

%s

Data:
%s

Identify potential problems or risks, areas that need improvement, critical
gaps or deviations, and preventive measures that should be implemented.

Respond in this JSON format:
{
  "severity": "low|medium|high|critical",
  "title": "short title of the analysis",
  "description": "detailed description of the situation",
  "issues": ["issue 1", "issue 2"],
  "solutions": ["solution 1", "solution 2"],
  "risk_score": 0-100,
  "priority": "low|medium|high|urgent"
}`, sec.DisplayName, sec.PromptAddendum, data), nil
}

// Analyze returns the structured analysis of one section. It never fails:
// provider problems are logged and the local rules answer instead.
func (a *Advisor) Analyze(ctx context.Context, sec section.Section, d schema.SectionData) schema.Analysis {
	p, reason := a.provider()
	if p == nil {
		a.fallback("analyze", sec.Name, reason, nil)
		return Local(sec.Name, d, a.now())
	}
	prompt, err := analysisPrompt(sec, d)
	if err != nil {
		a.fallback("analyze", sec.Name, "encode_failed", err)
		return Local(sec.Name, d, a.now())
	}

	cctx, cancel := a.withTimeout(ctx)
	defer cancel()
	resp, err := llm.CompleteJSON(cctx, p, systemPrompt, prompt, a.options(), validateAnalysis)
	outcome := callOutcome(err)
	a.metrics.AICall(a.settings.Provider, outcome)
	if err != nil {
		a.fallback("analyze", sec.Name, outcome, err)
		return Local(sec.Name, d, a.now())
	}

	return schema.Analysis{
		Section:     sec.Name,
		Severity:    schema.Severity(resp.Severity),
		Title:       resp.Title,
		Description: resp.Description,
		Issues:      nonNil(resp.Issues),
		Solutions:   nonNil(resp.Solutions),
		RiskScore:   *resp.RiskScore,
		Priority:    schema.Priority(resp.Priority),
		Source:      schema.SourceModel,
		AnalyzedAt:  a.now(),
	}
}

// narrativeResponse carries the model-written parts of a section report.
// Counts and the score are always computed locally.
type narrativeResponse struct {
	Title           string   `json:"title"`
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

func validateNarrative(r *narrativeResponse) []llm.ValidationError {
	var errs []llm.ValidationError
	if r.Title == "" {
		errs = append(errs, llm.ValidationError{Field: "title", Message: "required"})
	}
	if r.Summary == "" {
		errs = append(errs, llm.ValidationError{Field: "summary", Message: "required"})
	}
	return errs
}

func narrativePrompt(sec section.Section, d schema.SectionData, prior []schema.Analysis) (string, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("analysis: encode section data: %w", err)
	}
	earlier, err := json.MarshalIndent(prior, "", "  ")
	if err != nil {
		return "", fmt.Errorf("analysis: encode prior analyses: %w", err)
	}
	return fmt.Sprintf(`Write a comprehensive HMS report for %s.

Data:
%s

Previous analyses:
%s

The report must summarize the current status, name the identified problems
and risks, and give recommendations for improvement as an action plan.

Respond in this JSON format:
{
  "title": "report title",
  "summary": "summary of the current status",
  "recommendations": ["recommendation 1", "recommendation 2"]
}`, sec.DisplayName, data, earlier), nil
}

// Narrative returns the section report for period p. prior are the section's
// most recent analyses, newest first. Like Analyze it never fails.
func (a *Advisor) Narrative(ctx context.Context, sec section.Section, d schema.SectionData, prior []schema.Analysis, period schema.Period) schema.SectionReport {
	local := LocalNarrative(sec, d, prior, period)
	p, reason := a.provider()
	if p == nil {
		a.fallback("narrative", sec.Name, reason, nil)
		return local
	}
	prompt, err := narrativePrompt(sec, d, prior)
	if err != nil {
		a.fallback("narrative", sec.Name, "encode_failed", err)
		return local
	}

	cctx, cancel := a.withTimeout(ctx)
	defer cancel()
	resp, err := llm.CompleteJSON(cctx, p, systemPrompt, prompt, a.options(), validateNarrative)
	outcome := callOutcome(err)
	a.metrics.AICall(a.settings.Provider, outcome)
	if err != nil {
		a.fallback("narrative", sec.Name, outcome, err)
		return local
	}

	out := local
	out.Title = resp.Title
	out.Summary = resp.Summary
	if len(resp.Recommendations) > 0 {
		recs := resp.Recommendations
		if len(recs) > maxRecommendations {
			recs = recs[:maxRecommendations]
		}
		out.Recommendations = recs
	}
	out.Source = schema.SourceModel
	return out
}
