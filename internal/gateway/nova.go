package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

var novaModels = map[Tier]string{
	TierFast:     "us.amazon.nova-2-lite-v1:0",
	TierBalanced: "us.amazon.nova-2-lite-v1:0",
	TierDeep:     "us.amazon.nova-pro-v1:0",
}

type novaBackend struct {
	client *bedrockruntime.Client
}

func newNovaBackend() (*novaBackend, error) {
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &novaBackend{client: bedrockruntime.NewFromConfig(cfg)}, nil
}

func (g *novaBackend) Name() string { return "nova" }

func (g *novaBackend) Complete(ctx context.Context, c completion) (string, error) {
	maxTokens := int32(defaultMaxTokens)
	if c.MaxTokens > 0 {
		maxTokens = int32(c.MaxTokens)
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(novaModels[c.Tier]),
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: c.Prompt},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(maxTokens),
			Temperature: aws.Float32(float32(c.Temperature)),
		},
	}
	if c.System != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: c.System},
		}
	}
	if c.TopP > 0 {
		input.InferenceConfig.TopP = aws.Float32(float32(c.TopP))
	}

	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		resp, err := g.client.Converse(ctx, input)
		if err != nil {
			lastErr = fmt.Errorf("Bedrock Converse error (attempt %d/%d): %w", attempt, maxRetries, err)
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

		text := extractNovaText(resp)
		if text == "" {
			lastErr = fmt.Errorf("empty response from Bedrock (attempt %d/%d)", attempt, maxRetries)
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

func extractNovaText(resp *bedrockruntime.ConverseOutput) string {
	out, ok := resp.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	for _, block := range out.Value.Content {
		if tb, ok := block.(*types.ContentBlockMemberText); ok {
			return tb.Value
		}
	}
	return ""
}
