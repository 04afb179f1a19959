package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	googleoption "google.golang.org/api/option"
)

// googleProvider opens a client per call so the request context also bounds
// the connection.
type googleProvider struct {
	apiKey string
	model  string
}

func newGoogleProvider(apiKey, model string) Provider {
	return &googleProvider{apiKey: apiKey, model: model}
}

func (p *googleProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	client, err := genai.NewClient(ctx, googleoption.WithAPIKey(p.apiKey))
	if err != nil {
		return "", fmt.Errorf("google: %s: new client: %w", p.model, err)
	}
	defer client.Close()

	m := client.GenerativeModel(p.model)
	m.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))
	m.SetMaxOutputTokens(int32(maxTokens))
	m.SetTemperature(float32(temperature))
	m.ResponseMIMEType = "application/json"

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("google: %s: %w", p.model, err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("google: %s: no candidates", p.model)
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonMaxTokens {
		return "", fmt.Errorf("google: %s: %w", p.model, ErrTruncated)
	}

	var sb strings.Builder
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("google: %s: empty answer", p.model)
	}
	return sb.String(), nil
}
