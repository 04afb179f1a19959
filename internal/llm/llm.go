// Package llm handles completion provider communication, JSON extraction from
// model output and the single repair attempt.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	// ErrInvalidModelOutput is returned when both the initial and repair
	// responses fail to decode or validate.
	ErrInvalidModelOutput = errors.New("llm: invalid model output after repair attempt")
	// ErrNoCredential is returned by NewProvider when the provider's API key
	// is not configured.
	ErrNoCredential = errors.New("llm: no API credential configured")
	// ErrTruncated is returned by a provider when the answer hit the token
	// limit before the JSON object was complete.
	ErrTruncated = errors.New("llm: answer truncated at token limit")
)

// Provider is the interface for completion backends.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

// NewProvider is the factory for creating providers. It is a package-level
// variable so tests can replace it with a mock without modifying the call site.
// Tests must restore the original value; use t.Cleanup to do so safely.
var NewProvider func(providerName, model string) (Provider, error) = defaultNewProvider

// KeyEnv maps provider names to the environment variable holding the key.
var KeyEnv = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"google":    "GOOGLE_API_KEY",
}

// HasCredential reports whether the provider's key is set.
func HasCredential(providerName string) bool {
	_, err := apiKey(providerName)
	return err == nil
}

func apiKey(providerName string) (string, error) {
	env, ok := KeyEnv[strings.ToLower(providerName)]
	if !ok {
		return "", fmt.Errorf("llm: unknown provider %q", providerName)
	}
	key := strings.TrimSpace(os.Getenv(env))
	if key == "" {
		return "", fmt.Errorf("%w: %s not set", ErrNoCredential, env)
	}
	return key, nil
}

// defaultNewProvider dispatches to the appropriate provider implementation.
func defaultNewProvider(providerName, model string) (Provider, error) {
	key, err := apiKey(providerName)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(providerName) {
	case "anthropic":
		return newAnthropicProvider(key, model), nil
	case "openai":
		return newOpenAIProvider(key, model), nil
	case "google":
		return newGoogleProvider(key, model), nil
	}
	return nil, fmt.Errorf("llm: unknown provider %q", providerName)
}

// Options are the sampling parameters of a call.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// ValidationError records a single validation failure on a model response.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// CompleteJSON calls p, decodes the response into a T and validates it.
// When decoding or validation fails it sends one repair request carrying the
// original prompt, the invalid response and the errors. If the repair also
// fails the result is ErrInvalidModelOutput. Transport errors are returned
// as-is.
func CompleteJSON[T any](
	ctx context.Context,
	p Provider,
	systemPrompt, userPrompt string,
	opts Options,
	validate func(*T) []ValidationError,
) (*T, error) {
	raw, err := p.Complete(ctx, systemPrompt, userPrompt, opts.MaxTokens, opts.Temperature)
	if err != nil {
		return nil, fmt.Errorf("llm: complete: %w", err)
	}
	v, errs := decodeAndValidate(raw, validate)
	if len(errs) == 0 {
		return v, nil
	}

	repairPrompt := buildRepairPrompt(userPrompt, raw, errs)
	raw2, err := p.Complete(ctx, systemPrompt, repairPrompt, opts.MaxTokens, opts.Temperature)
	if err != nil {
		return nil, fmt.Errorf("llm: repair complete: %w", err)
	}
	v2, errs2 := decodeAndValidate(raw2, validate)
	if len(errs2) == 0 {
		return v2, nil
	}
	return nil, ErrInvalidModelOutput
}

func decodeAndValidate[T any](raw string, validate func(*T) []ValidationError) (*T, []ValidationError) {
	v := new(T)
	if err := ExtractJSON(raw, v); err != nil {
		return nil, []ValidationError{{Field: "json_parse", Message: err.Error()}}
	}
	if validate != nil {
		if errs := validate(v); len(errs) > 0 {
			return nil, errs
		}
	}
	return v, nil
}

// ExtractJSON strips markdown fences around raw and decodes it into v. If
// decoding fails because of invalid escape sequences, they are repaired and
// decoding is tried once more.
func ExtractJSON(raw string, v any) error {
	raw = stripMarkdownFences(raw)
	err := json.Unmarshal([]byte(raw), v)
	if err == nil {
		return nil
	}
	if err2 := json.Unmarshal([]byte(fixInvalidJSONEscapes(raw)), v); err2 == nil {
		return nil
	}
	return err
}

// fenceRe matches a markdown code fence block (``` or ~~~) with an optional
// language tag and captures the content between the fences.
var fenceRe = regexp.MustCompile("(?s)^(?:`{3}|~{3})[^\\n]*\\n(.*?)(?:`{3}|~{3})\\s*$")

// openFenceRe matches only an opening fence line, for truncated responses.
var openFenceRe = regexp.MustCompile("^(?:`{3}|~{3})[^\\n]*\\n")

func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if loc := openFenceRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[loc[1]:])
	}
	return s
}

// invalidJSONEscapeRe matches a backslash followed by any character that is
// not a valid JSON string escape character.
var invalidJSONEscapeRe = regexp.MustCompile(`\\([^"\\/bfnrtu])`)

func fixInvalidJSONEscapes(s string) string {
	return invalidJSONEscapeRe.ReplaceAllString(s, `\\$1`)
}

// buildRepairPrompt includes the original user prompt and the previous
// invalid response so the model has full context.
func buildRepairPrompt(originalUserPrompt, previousResponse string, errs []ValidationError) string {
	var sb strings.Builder
	sb.WriteString(originalUserPrompt)
	sb.WriteString("\n\nYour previous response was:\n")
	sb.WriteString(previousResponse)
	sb.WriteString("\n\nThat response was invalid. Errors:\n")
	for _, e := range errs {
		fmt.Fprintf(&sb, "  - %s\n", e.Error())
	}
	sb.WriteString("\nPlease output only the corrected JSON conforming to the requested format.")
	return sb.String()
}
