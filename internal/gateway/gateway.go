// Package gateway is the boundary to the text-generation backends. The
// orchestrator only sees the Generator interface; which engine answers is a
// deployment choice.
package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/yosoyorhan/Fikir-motoru/internal/conversation"
	"github.com/yosoyorhan/Fikir-motoru/internal/persona"
)

// Tier selects how much model capability a call gets. Each backend maps
// tiers onto its own model ids.
type Tier int

const (
	TierBalanced Tier = iota
	TierFast
	TierDeep
)

// TierFor is the single engine-selection decision point. Flash mode always
// takes the fastest engine; deep-dive sessions and Big Boss sessions take the
// most capable one; everything else runs on the balanced default.
func TierFor(isFlash, isDeepDive, isBigBossActive bool) Tier {
	if isFlash {
		return TierFast
	}
	if isDeepDive || isBigBossActive {
		return TierDeep
	}
	return TierBalanced
}

// TurnRequest asks for the next message of a single persona.
type TurnRequest struct {
	History          []conversation.Message
	Persona          persona.Persona
	Topic            string
	Focus            persona.FocusMap
	Concise          bool
	DeepDive         bool
	BigBossActive    bool
	BigBossInfluence int
}

// ScriptRequest asks for one entire brainstorm conversation in a single call
// (the flash / concise fast path).
type ScriptRequest struct {
	Topic            string
	Focus            persona.FocusMap
	Concise          bool
	DeepDive         bool
	Flash            bool
	BigBossActive    bool
	BigBossInfluence int
	// MainFocus is an optional idea the team should center on.
	MainFocus string
	// VaultHint lists already-saved idea titles the team must not repeat.
	VaultHint string
}

// IdeaSummary is one candidate produced by the session summarizer.
type IdeaSummary struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Generator is the consumed generation capability.
type Generator interface {
	// GenerateTurn produces the next message for one persona.
	GenerateTurn(ctx context.Context, req TurnRequest) (string, error)
	// GenerateScript produces a whole conversation plus outcome in one shot.
	GenerateScript(ctx context.Context, req ScriptRequest) (string, error)
	// Summarize extracts 3-5 candidate ideas from a finished conversation.
	Summarize(ctx context.Context, history []conversation.Message) ([]IdeaSummary, error)
	// Detail expands one candidate into a long-form concept.
	Detail(ctx context.Context, history []conversation.Message, candidate IdeaSummary) (string, error)
	// SuggestTopics proposes inspiration topics for a new brainstorm.
	SuggestTopics(ctx context.Context) ([]string, error)
	// RateLimitBriefing summarizes rate limit documentation in Turkish.
	RateLimitBriefing(ctx context.Context, doc string) (string, error)
	// AssistantReply answers an idle-state chat message as the assistant.
	AssistantReply(ctx context.Context, history []conversation.Message) (string, error)
}

// GenerationError wraps a backend failure with the engine and operation that
// produced it.
type GenerationError struct {
	Engine string
	Op     string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Engine, e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether an error looks like an API quota rejection.
// Backends do not expose a stable error type for this, so it is detected by
// message inspection.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}

// completion is one low-level call to a concrete engine.
type completion struct {
	Tier        Tier
	System      string
	Prompt      string
	Temperature float64
	TopP        float64
	MaxTokens   int
	// JSONResponse asks for machine-readable output. The Gemini backend
	// enforces it with a response MIME type and schema; the others rely on
	// the prompt.
	JSONResponse   bool
	ResponseSchema map[string]any
}

// Response schemas for the structured operations, in the REST API's
// uppercase OpenAPI-subset form.
var (
	ideaSummarySchema = map[string]any{
		"type": "ARRAY",
		"items": map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"title":   map[string]any{"type": "STRING"},
				"summary": map[string]any{"type": "STRING"},
			},
			"required": []string{"title", "summary"},
		},
	}
	topicListSchema = map[string]any{
		"type":  "ARRAY",
		"items": map[string]any{"type": "STRING"},
	}
)

// backend executes completions against one engine.
type backend interface {
	Name() string
	Complete(ctx context.Context, c completion) (string, error)
}

// Client implements Generator on top of a backend.
type Client struct {
	backend backend
}

// New constructs a Generator for the named engine: "gemini" (default),
// "claude", or "nova".
func New(engine string) (*Client, error) {
	switch engine {
	case "", "gemini":
		return &Client{backend: newGeminiBackend()}, nil
	case "claude":
		return &Client{backend: newClaudeBackend()}, nil
	case "nova":
		b, err := newNovaBackend()
		if err != nil {
			return nil, err
		}
		return &Client{backend: b}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q (want gemini, claude, or nova)", engine)
	}
}

func (c *Client) complete(ctx context.Context, op string, comp completion) (string, error) {
	text, err := c.backend.Complete(ctx, comp)
	if err != nil {
		return "", &GenerationError{Engine: c.backend.Name(), Op: op, Err: err}
	}
	return strings.TrimSpace(text), nil
}

// GenerateTurn implements Generator.
func (c *Client) GenerateTurn(ctx context.Context, req TurnRequest) (string, error) {
	def, ok := persona.Lookup(req.Persona)
	if !ok {
		return "", &GenerationError{
			Engine: c.backend.Name(),
			Op:     "turn",
			Err:    fmt.Errorf("no definition for persona %q", req.Persona),
		}
	}

	influence := 0
	if req.BigBossActive {
		influence = req.BigBossInfluence
	}
	directive := persona.Compile(def, req.Focus.Focus(req.Persona), persona.Modifiers{
		Concise:          req.Concise,
		DeepDive:         req.DeepDive,
		BigBossInfluence: influence,
	})

	return c.complete(ctx, "turn", completion{
		Tier:        TierFor(false, req.DeepDive, req.BigBossActive),
		System:      turnSystemInstruction(req.Persona, directive),
		Prompt:      turnPrompt(req.Topic, req.History, req.Persona),
		Temperature: 0.7,
		TopP:        1,
	})
}

// GenerateScript implements Generator.
func (c *Client) GenerateScript(ctx context.Context, req ScriptRequest) (string, error) {
	return c.complete(ctx, "script", completion{
		Tier:        TierFor(req.Flash, req.DeepDive, req.BigBossActive),
		System:      scriptSystemInstruction(req),
		Prompt:      scriptPrompt(req),
		Temperature: 0.8,
		TopP:        1,
	})
}

// Summarize implements Generator.
func (c *Client) Summarize(ctx context.Context, history []conversation.Message) ([]IdeaSummary, error) {
	text, err := c.complete(ctx, "summarize", completion{
		Tier:         TierDeep,
		System:       summarizeSystemInstruction,
		Prompt:       summarizePrompt(history),
		Temperature:    0.3,
		JSONResponse:   true,
		ResponseSchema: ideaSummarySchema,
	})
	if err != nil {
		return nil, err
	}
	ideas, err := parseIdeaSummaries(text)
	if err != nil {
		return nil, &GenerationError{Engine: c.backend.Name(), Op: "summarize", Err: err}
	}
	return ideas, nil
}

// Detail implements Generator.
func (c *Client) Detail(ctx context.Context, history []conversation.Message, candidate IdeaSummary) (string, error) {
	return c.complete(ctx, "detail", completion{
		Tier:        TierDeep,
		System:      detailSystemInstruction,
		Prompt:      detailPrompt(history, candidate),
		Temperature: 0.6,
	})
}

// SuggestTopics implements Generator.
func (c *Client) SuggestTopics(ctx context.Context) ([]string, error) {
	text, err := c.complete(ctx, "topics", completion{
		Tier:         TierBalanced,
		System:       topicsSystemInstruction,
		Prompt:       topicsPrompt,
		Temperature:    0.9,
		JSONResponse:   true,
		ResponseSchema: topicListSchema,
	})
	if err != nil {
		return nil, err
	}
	topics, err := parseTopicList(text)
	if err != nil {
		return nil, &GenerationError{Engine: c.backend.Name(), Op: "topics", Err: err}
	}
	return topics, nil
}

// RateLimitBriefing implements Generator.
func (c *Client) RateLimitBriefing(ctx context.Context, doc string) (string, error) {
	def, ok := persona.Lookup(persona.RateLimitExpert)
	if !ok {
		return "", &GenerationError{
			Engine: c.backend.Name(),
			Op:     "ratelimit",
			Err:    fmt.Errorf("no definition for persona %q", persona.RateLimitExpert),
		}
	}
	return c.complete(ctx, "ratelimit", completion{
		Tier:        TierDeep,
		System:      def.Directive,
		Prompt:      doc,
		Temperature: 0.5,
	})
}

// AssistantReply implements Generator.
func (c *Client) AssistantReply(ctx context.Context, history []conversation.Message) (string, error) {
	def, ok := persona.Lookup(persona.Assistant)
	if !ok {
		return "", &GenerationError{
			Engine: c.backend.Name(),
			Op:     "chat",
			Err:    fmt.Errorf("no definition for persona %q", persona.Assistant),
		}
	}
	return c.complete(ctx, "chat", completion{
		Tier:        TierBalanced,
		System:      def.Directive,
		Prompt:      assistantPrompt(history),
		Temperature: 0.7,
	})
}
