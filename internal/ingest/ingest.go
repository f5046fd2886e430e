// Package ingest turns outside material (an article URL, a PDF, a text file)
// into the main-focus hint that seeds a brainstorm session.
package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

type SourceType string

const (
	SourceURL  SourceType = "url"
	SourcePDF  SourceType = "pdf"
	SourceText SourceType = "text"

	// maxInputSize is the maximum allowed size for input content (25 MB).
	maxInputSize = 25 * 1024 * 1024

	// maxFocusRunes bounds how much source text goes into a prompt hint.
	maxFocusRunes = 2000
)

func (s SourceType) String() string {
	return string(s)
}

// Content is extracted source material.
type Content struct {
	Text      string
	Title     string
	Source    string
	WordCount int
}

// FocusHint renders the content as the "Başlık: / Açıklama:" block used as a
// session's main focus. Long texts are cut at a rune boundary so the hint
// stays a hint and not a transcript.
func (c *Content) FocusHint() string {
	text := strings.TrimSpace(c.Text)
	if utf8.RuneCountInString(text) > maxFocusRunes {
		runes := []rune(text)
		text = string(runes[:maxFocusRunes]) + "..."
	}
	return fmt.Sprintf("Başlık: %s\nAçıklama: %s", c.Title, text)
}

type Ingester interface {
	Ingest(ctx context.Context, source string) (*Content, error)
}

func DetectSource(input string) SourceType {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return SourceURL
	}
	if strings.HasSuffix(strings.ToLower(input), ".pdf") {
		return SourcePDF
	}
	return SourceText
}

func NewIngester(input string) Ingester {
	switch DetectSource(input) {
	case SourceURL:
		return &URLIngester{}
	case SourcePDF:
		return &PDFIngester{}
	default:
		return &TextIngester{}
	}
}

// MainFocus ingests source and returns the rendered focus hint in one step.
func MainFocus(ctx context.Context, source string) (string, error) {
	content, err := NewIngester(source).Ingest(ctx, source)
	if err != nil {
		return "", err
	}
	return content.FocusHint(), nil
}

func wordCount(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			inWord = false
		} else if !inWord {
			inWord = true
			count++
		}
	}
	return count
}

func titleFromText(text string, maxLen int) string {
	line := text
	if idx := strings.IndexByte(text, '\n'); idx > 0 {
		line = text[:idx]
	}
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) > maxLen {
		line = string([]rune(line)[:maxLen]) + "..."
	}
	if line == "" {
		return "Başlıksız Kaynak"
	}
	return line
}

func validateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() > maxInputSize {
		return fmt.Errorf("%s is too large (%d MB, max %d MB)", path, info.Size()/(1024*1024), maxInputSize/(1024*1024))
	}
	return nil
}
