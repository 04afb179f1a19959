package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// mockProvider is a test double for Provider.
type mockProvider struct {
	responses []string // returned in order; last entry is repeated if list exhausted
	err       error
	callCount int
	prompts   []string
}

func (m *mockProvider) Complete(_ context.Context, _, user string, _ int, _ float64) (string, error) {
	m.prompts = append(m.prompts, user)
	idx := m.callCount
	m.callCount++
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", fmt.Errorf("mockProvider: no responses configured")
	}
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

type verdict struct {
	Severity string   `json:"severity"`
	Issues   []string `json:"issues"`
}

func requireSeverity(v *verdict) []ValidationError {
	if v.Severity == "" {
		return []ValidationError{{Field: "severity", Message: "missing"}}
	}
	return nil
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"severity":"low"}`, "low"},
		{"fenced", "```json\n{\"severity\":\"high\"}\n```", "high"},
		{"tilde fence", "~~~\n{\"severity\":\"medium\"}\n~~~", "medium"},
		{"truncated fence", "```json\n{\"severity\":\"critical\"}", "critical"},
		{"invalid escape", `{"severity":"low","issues":["temp \d+ above"]}`, "low"},
	}
	for _, c := range cases {
		var v verdict
		if err := ExtractJSON(c.raw, &v); err != nil {
			t.Errorf("%s: ExtractJSON error: %v", c.name, err)
			continue
		}
		if v.Severity != c.want {
			t.Errorf("%s: severity = %q, want %q", c.name, v.Severity, c.want)
		}
	}
}

func TestExtractJSON_Invalid(t *testing.T) {
	var v verdict
	if err := ExtractJSON("the fridge looks fine", &v); err == nil {
		t.Error("expected error for prose response")
	}
}

func TestCompleteJSON_Valid(t *testing.T) {
	mp := &mockProvider{responses: []string{`{"severity":"low"}`}}
	v, err := CompleteJSON(context.Background(), mp, "sys", "user", Options{MaxTokens: 100}, requireSeverity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Severity != "low" || mp.callCount != 1 {
		t.Errorf("got %+v after %d calls", v, mp.callCount)
	}
}

func TestCompleteJSON_RepairTriggered(t *testing.T) {
	mp := &mockProvider{responses: []string{`{"issues":[]}`, `{"severity":"high"}`}}
	v, err := CompleteJSON(context.Background(), mp, "sys", "user", Options{}, requireSeverity)
	if err != nil {
		t.Fatalf("expected repair to succeed, got error: %v", err)
	}
	if mp.callCount != 2 {
		t.Errorf("expected 2 provider calls (initial + repair), got %d", mp.callCount)
	}
	if v.Severity != "high" {
		t.Errorf("severity = %q, want high", v.Severity)
	}
	if len(mp.prompts) != 2 || mp.prompts[1] == mp.prompts[0] {
		t.Error("repair prompt should differ from the original prompt")
	}
}

func TestCompleteJSON_BothInvalid(t *testing.T) {
	mp := &mockProvider{responses: []string{"bad json"}}
	_, err := CompleteJSON(context.Background(), mp, "sys", "user", Options{}, requireSeverity)
	if !errors.Is(err, ErrInvalidModelOutput) {
		t.Errorf("expected ErrInvalidModelOutput, got %v", err)
	}
	if mp.callCount != 2 {
		t.Errorf("expected exactly one repair attempt, got %d calls", mp.callCount)
	}
}

func TestCompleteJSON_TransportError(t *testing.T) {
	boom := errors.New("connection reset")
	mp := &mockProvider{err: boom}
	_, err := CompleteJSON[verdict](context.Background(), mp, "sys", "user", Options{}, nil)
	if !errors.Is(err, boom) {
		t.Errorf("expected transport error, got %v", err)
	}
	if mp.callCount != 1 {
		t.Errorf("transport errors must not trigger repair, got %d calls", mp.callCount)
	}
}

func TestDefaultNewProvider_NoCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := defaultNewProvider("openai", "gpt-4o-mini")
	if !errors.Is(err, ErrNoCredential) {
		t.Errorf("expected ErrNoCredential, got %v", err)
	}
	if HasCredential("openai") {
		t.Error("HasCredential should be false without a key")
	}
}

func TestDefaultNewProvider_Unknown(t *testing.T) {
	_, err := defaultNewProvider("mistral", "x")
	if err == nil || errors.Is(err, ErrNoCredential) {
		t.Errorf("expected unknown provider error, got %v", err)
	}
}

func TestDefaultNewProvider_WithKey(t *testing.T) {
	for name, env := range KeyEnv {
		t.Setenv(env, "test-key")
		p, err := defaultNewProvider(name, "model")
		if err != nil || p == nil {
			t.Errorf("defaultNewProvider(%q) = %v, %v", name, p, err)
		}
	}
}
