// Package art generates background images for session topics. Failures are
// advisory: the brainstorm never waits on art.
package art

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	imageModel    = "gemini-2.0-flash-preview-image-generation"
	imageEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
)

// Generator produces topic art through the Gemini image preview model.
type Generator struct {
	apiKey     string
	httpClient *http.Client
}

// New builds an art generator reading GEMINI_API_KEY from the environment.
func New() *Generator {
	return &Generator{
		apiKey:     os.Getenv("GEMINI_API_KEY"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type imageRequest struct {
	Contents         []imageContent `json:"contents"`
	GenerationConfig imageGenCfg    `json:"generationConfig"`
}

type imageContent struct {
	Parts []imagePart `json:"parts"`
}

type imagePart struct {
	Text       string       `json:"text,omitempty"`
	InlineData *inlineImage `json:"inlineData,omitempty"`
}

type inlineImage struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type imageGenCfg struct {
	ResponseModalities []string `json:"responseModalities"`
}

type imageResponse struct {
	Candidates []struct {
		Content imageContent `json:"content"`
	} `json:"candidates"`
}

// TopicArt renders an abstract backdrop for the topic and returns PNG bytes.
func (g *Generator) TopicArt(ctx context.Context, topic string) ([]byte, error) {
	prompt := fmt.Sprintf(
		"Şu beyin fırtınası konusu için soyut, sakin, koyu tonlu bir arka plan görseli oluştur: %s. Metin içermesin.",
		topic,
	)

	reqBody := imageRequest{
		Contents: []imageContent{
			{Parts: []imagePart{{Text: prompt}}},
		},
		GenerationConfig: imageGenCfg{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf(imageEndpoint+"?key=%s", imageModel, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("image API error (status %d): %s", res.StatusCode, string(errBody))
	}

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp imageResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			img, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("decode image data: %w", err)
			}
			return img, nil
		}
	}
	return nil, fmt.Errorf("response contained no image")
}
