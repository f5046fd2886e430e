package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Models fence or preface JSON output despite instructions not to, so both
// parsers cut the payload out of the surrounding text before decoding.

func parseIdeaSummaries(text string) ([]IdeaSummary, error) {
	raw, err := extractJSONArray(text)
	if err != nil {
		return nil, err
	}
	var ideas []IdeaSummary
	if err := json.Unmarshal([]byte(raw), &ideas); err != nil {
		return nil, fmt.Errorf("decoding idea summaries: %w", err)
	}
	out := ideas[:0]
	for _, idea := range ideas {
		idea.Title = strings.TrimSpace(idea.Title)
		idea.Summary = strings.TrimSpace(idea.Summary)
		if idea.Title == "" {
			continue
		}
		out = append(out, idea)
	}
	return out, nil
}

func parseTopicList(text string) ([]string, error) {
	raw, err := extractJSONArray(text)
	if err != nil {
		return nil, err
	}
	var topics []string
	if err := json.Unmarshal([]byte(raw), &topics); err != nil {
		return nil, fmt.Errorf("decoding topic list: %w", err)
	}
	out := topics[:0]
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// extractJSONArray returns the outermost JSON array in text, tolerating
// markdown fences and prose around it.
func extractJSONArray(text string) (string, error) {
	s := stripFences(text)
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON array in response %q", truncate(text, 120))
	}
	return s[start : end+1], nil
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
