package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

var claudeModels = map[Tier]string{
	TierFast:     "claude-haiku-4-5-20251001",
	TierBalanced: "claude-sonnet-4-5-20250929",
	TierDeep:     "claude-sonnet-4-5-20250929",
}

const defaultMaxTokens = 8192

type claudeBackend struct {
	client anthropic.Client
}

func newClaudeBackend() *claudeBackend {
	return &claudeBackend{client: anthropic.NewClient()}
}

func (g *claudeBackend) Name() string { return "claude" }

func (g *claudeBackend) Complete(ctx context.Context, c completion) (string, error) {
	maxTokens := int64(defaultMaxTokens)
	if c.MaxTokens > 0 {
		maxTokens = int64(c.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(claudeModels[c.Tier]),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(c.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(c.Prompt)),
		},
	}
	if c.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: c.System}}
	}
	if c.TopP > 0 {
		params.TopP = anthropic.Float(c.TopP)
	}

	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		message, err := g.client.Messages.New(ctx, params)
		if err != nil {
			lastErr = fmt.Errorf("Claude API error (attempt %d/%d): %w", attempt, maxRetries, err)
			if attempt < maxRetries {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= time.Duration(backoffMult)
			}
			continue
		}

		text := extractClaudeText(message)
		if text == "" {
			lastErr = fmt.Errorf("empty response from Claude (attempt %d/%d)", attempt, maxRetries)
			if attempt < maxRetries {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= time.Duration(backoffMult)
			}
			continue
		}

		return text, nil
	}

	return "", lastErr
}

func extractClaudeText(msg *anthropic.Message) string {
	var parts []string
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			parts = append(parts, tb.Text)
		}
	}
	return strings.Join(parts, "")
}
