package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	backoffMult    = 2
)

var geminiModels = map[Tier]string{
	TierFast:     "gemini-flash-lite-latest",
	TierBalanced: "gemini-2.5-flash",
	TierDeep:     "gemini-2.5-pro",
}

const geminiGenerateEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

type geminiBackend struct {
	apiKey     string
	httpClient *http.Client
}

func newGeminiBackend() *geminiBackend {
	return &geminiBackend{
		apiKey:     os.Getenv("GEMINI_API_KEY"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (g *geminiBackend) Name() string { return "gemini" }

// geminiTextRequest is the request body for Gemini text generation.
type geminiTextRequest struct {
	SystemInstruction *geminiTextContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiTextContent `json:"contents"`
	GenerationConfig  *geminiTextGenCfg   `json:"generationConfig,omitempty"`
}

type geminiTextContent struct {
	Parts []geminiTextPart `json:"parts"`
}

type geminiTextPart struct {
	Text string `json:"text"`
}

type geminiTextGenCfg struct {
	Temperature      float64        `json:"temperature"`
	TopP             float64        `json:"topP,omitempty"`
	MaxOutputTokens  int            `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

// geminiTextResponse is the response from Gemini generateContent (text mode).
type geminiTextResponse struct {
	Candidates []geminiTextCandidate `json:"candidates"`
}

type geminiTextCandidate struct {
	Content geminiTextRespContent `json:"content"`
}

type geminiTextRespContent struct {
	Parts []geminiTextRespPart `json:"parts"`
}

type geminiTextRespPart struct {
	Text string `json:"text"`
}

func (g *geminiBackend) Complete(ctx context.Context, c completion) (string, error) {
	cfg := &geminiTextGenCfg{
		Temperature: c.Temperature,
		TopP:        c.TopP,
	}
	if c.MaxTokens > 0 {
		cfg.MaxOutputTokens = c.MaxTokens
	}
	if c.JSONResponse {
		cfg.ResponseMimeType = "application/json"
		cfg.ResponseSchema = c.ResponseSchema
	}

	reqBody := geminiTextRequest{
		Contents: []geminiTextContent{
			{Parts: []geminiTextPart{{Text: c.Prompt}}},
		},
		GenerationConfig: cfg,
	}
	if c.System != "" {
		reqBody.SystemInstruction = &geminiTextContent{
			Parts: []geminiTextPart{{Text: c.System}},
		}
	}

	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		text, err := g.doRequest(ctx, geminiModels[c.Tier], reqBody)
		if err == nil && text == "" {
			err = fmt.Errorf("empty response from Gemini")
		}
		if err != nil {
			lastErr = fmt.Errorf("Gemini API error (attempt %d/%d): %w", attempt, maxRetries, err)
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

func (g *geminiBackend) doRequest(ctx context.Context, modelID string, reqBody geminiTextRequest) (string, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf(geminiGenerateEndpoint+"?key=%s", modelID, g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests ||
		res.StatusCode >= http.StatusInternalServerError {
		errBody, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("retryable error (status %d): %s", res.StatusCode, string(errBody))
	}

	if res.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("Gemini API error (status %d): %s", res.StatusCode, string(errBody))
	}

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var resp geminiTextResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("response contained no text")
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}
