package llm

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// jsonPrefill opens the assistant turn so Claude continues a JSON object.
const jsonPrefill = "{"

type anthropicProvider struct {
	client anthropic.Client
	model  string
}

func newAnthropicProvider(apiKey, model string) Provider {
	return &anthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Complete sends one user turn followed by the prefill and returns the
// object with the prefill restored.
func (p *anthropicProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
			anthropic.NewAssistantMessage(anthropic.NewTextBlock(jsonPrefill)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: %s: %w", p.model, err)
	}
	if string(msg.StopReason) == "max_tokens" {
		return "", fmt.Errorf("anthropic: %s: %w", p.model, ErrTruncated)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic: %s: empty answer", p.model)
	}
	return jsonPrefill + sb.String(), nil
}
