package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yosoyorhan/Fikir-motoru/internal/store"
)

var tracer = otel.Tracer("fikir-motoru-mcp")

// ToolDefs returns the MCP tool definitions.
func ToolDefs() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "start_brainstorm",
			Description: "Start a multi-persona brainstorm session on a topic. Starts an async session and returns a session ID. Use get_session to follow the conversation.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"topic": map[string]any{
						"type":        "string",
						"description": "Brainstorm topic (Turkish)",
					},
					"main_focus": map[string]any{
						"type":        "string",
						"description": "Optional saved idea or source summary the team should center on",
					},
					"concise": map[string]any{
						"type":        "boolean",
						"description": "Short, punchy responses",
						"default":     false,
					},
					"deep_dive": map[string]any{
						"type":        "boolean",
						"description": "Deep analysis mode (forces long responses and the idea vault)",
						"default":     false,
					},
					"flash": map[string]any{
						"type":        "boolean",
						"description": "Flash mode: the whole session is generated as one script",
						"default":     false,
					},
					"remember_vault": map[string]any{
						"type":        "boolean",
						"description": "Feed saved idea titles to the team so it avoids repeats",
						"default":     false,
					},
					"big_boss": map[string]any{
						"type":        "boolean",
						"description": "Big Boss mode: the Moderator defers to your input",
						"default":     false,
					},
					"big_boss_influence": map[string]any{
						"type":        "integer",
						"description": "How strongly the team bends to the Big Boss (0-100)",
						"default":     50,
					},
					"leader": map[string]any{
						"type":        "string",
						"description": "Persona to dominate the session (e.g. Geliştirici)",
					},
					"muted": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Personas to silence for the session",
					},
				},
				Required: []string{"topic"},
			},
		},
		{
			Name:        "get_session",
			Description: "Get the state, transcript, found idea, and candidates of a brainstorm session. Use this to poll a running session.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"session_id": map[string]any{
						"type":        "string",
						"description": "The session ID returned from start_brainstorm",
					},
				},
				Required: []string{"session_id"},
			},
		},
		{
			Name:        "submit_input",
			Description: "Send a message into a session that is awaiting user input. In Big Boss mode the message enters as the Big Boss and steers the team.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"session_id": map[string]any{
						"type":        "string",
						"description": "The session ID",
					},
					"text": map[string]any{
						"type":        "string",
						"description": "Your message to the team",
					},
				},
				Required: []string{"session_id", "text"},
			},
		},
		{
			Name:        "cancel_session",
			Description: "Stop a running brainstorm session. The transcript stays readable.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"session_id": map[string]any{
						"type":        "string",
						"description": "The session ID",
					},
				},
				Required: []string{"session_id"},
			},
		},
		{
			Name:        "accept_idea",
			Description: "Accept a session's found idea: saves it to the vault with its transcript and awards profile points.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"session_id": map[string]any{
						"type":        "string",
						"description": "The session ID",
					},
				},
				Required: []string{"session_id"},
			},
		},
		{
			Name:        "reject_idea",
			Description: "Reject a session's found idea. The team resumes brainstorming with the rejection on record.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"session_id": map[string]any{
						"type":        "string",
						"description": "The session ID",
					},
				},
				Required: []string{"session_id"},
			},
		},
		{
			Name:        "list_ideas",
			Description: "List saved ideas from the vault, newest first. Returns idea IDs, titles, topics, and statuses.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results (default 20)",
						"default":     20,
					},
					"cursor": map[string]any{
						"type":        "string",
						"description": "Pagination cursor from a previous list_ideas call",
					},
				},
			},
		},
	}
}

// Handlers contains tool handler implementations.
type Handlers struct {
	sessions *SessionManager
	ideas    *store.Store
	log      *slog.Logger
}

// NewHandlers creates tool handlers.
func NewHandlers(sessions *SessionManager, ideas *store.Store, logger *slog.Logger) *Handlers {
	return &Handlers{sessions: sessions, ideas: ideas, log: logger}
}

// HandleStartBrainstorm starts a brainstorm session.
func (h *Handlers) HandleStartBrainstorm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.start_brainstorm")
	defer span.End()

	startReq := StartRequest{
		Topic:            mcp.ParseString(req, "topic", ""),
		MainFocus:        mcp.ParseString(req, "main_focus", ""),
		Concise:          mcp.ParseBoolean(req, "concise", false),
		DeepDive:         mcp.ParseBoolean(req, "deep_dive", false),
		Flash:            mcp.ParseBoolean(req, "flash", false),
		RememberVault:    mcp.ParseBoolean(req, "remember_vault", false),
		BigBossActive:    mcp.ParseBoolean(req, "big_boss", false),
		BigBossInfluence: parseIntParam(req, "big_boss_influence", 50),
		Leader:           mcp.ParseString(req, "leader", ""),
		Muted:            parseStringSliceParam(req, "muted"),
	}

	span.SetAttributes(
		attribute.String("topic", startReq.Topic),
		attribute.Bool("flash", startReq.Flash),
		attribute.Bool("deep_dive", startReq.DeepDive),
		attribute.Bool("big_boss", startReq.BigBossActive),
	)

	if startReq.Topic == "" {
		span.SetStatus(codes.Error, "missing topic")
		return mcp.NewToolResultError("topic is required"), nil
	}

	id, err := h.sessions.StartSession(ctx, startReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "start session failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to start session: %v", err)), nil
	}

	span.SetAttributes(attribute.String("session_id", id))
	h.log.InfoContext(ctx, "Brainstorm started", "session_id", id, "topic", startReq.Topic)

	result := map[string]any{
		"session_id": id,
		"status":     "running",
		"message":    "Brainstorm started. Use get_session with this session_id to follow the conversation.",
	}
	return jsonResult(result)
}

// HandleGetSession returns session state and transcript.
func (h *Handlers) HandleGetSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.get_session")
	defer span.End()

	id := mcp.ParseString(req, "session_id", "")
	if id == "" {
		span.SetStatus(codes.Error, "missing session_id")
		return mcp.NewToolResultError("session_id is required"), nil
	}
	span.SetAttributes(attribute.String("session_id", id))

	snap, sess, err := h.sessions.SnapshotOf(id)
	if err != nil {
		span.SetStatus(codes.Error, "not found")
		return mcp.NewToolResultError(err.Error()), nil
	}

	messages := make([]map[string]any, 0, len(snap.History))
	for _, m := range snap.History {
		entry := map[string]any{
			"sender": string(m.Sender),
			"text":   m.Text,
		}
		if m.Pending {
			entry["pending"] = true
		}
		messages = append(messages, entry)
	}

	result := map[string]any{
		"session_id": id,
		"state":      string(snap.State),
		"topic":      snap.Topic,
		"busy":       sess.Busy(),
		"created_at": sess.CreatedAt,
		"messages":   messages,
	}
	if snap.FoundIdea != nil {
		result["found_idea"] = map[string]any{
			"title":       snap.FoundIdea.Title,
			"description": snap.FoundIdea.Description,
		}
	}
	if len(snap.Candidates) > 0 {
		cands := make([]map[string]any, 0, len(snap.Candidates))
		for _, c := range snap.Candidates {
			cands = append(cands, map[string]any{
				"id":      c.ID,
				"title":   c.Title,
				"summary": c.Summary,
			})
		}
		result["candidates"] = cands
	}
	if notices := sess.Notices(); len(notices) > 0 {
		result["notices"] = notices
	}

	return jsonResult(result)
}

// HandleSubmitInput resumes a waiting session with a user message.
func (h *Handlers) HandleSubmitInput(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.submit_input")
	defer span.End()

	id := mcp.ParseString(req, "session_id", "")
	text := mcp.ParseString(req, "text", "")
	if id == "" || text == "" {
		span.SetStatus(codes.Error, "missing arguments")
		return mcp.NewToolResultError("session_id and text are required"), nil
	}
	span.SetAttributes(attribute.String("session_id", id))

	if err := h.sessions.SubmitInput(ctx, id, text); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit failed")
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.log.InfoContext(ctx, "Input submitted", "session_id", id)
	return jsonResult(map[string]any{
		"session_id": id,
		"status":     "resumed",
		"message":    "Input accepted, the team is responding. Poll get_session for the continuation.",
	})
}

// HandleCancelSession stops a running session.
func (h *Handlers) HandleCancelSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.cancel_session")
	defer span.End()

	id := mcp.ParseString(req, "session_id", "")
	if id == "" {
		span.SetStatus(codes.Error, "missing session_id")
		return mcp.NewToolResultError("session_id is required"), nil
	}
	span.SetAttributes(attribute.String("session_id", id))

	if err := h.sessions.Cancel(id); err != nil {
		span.SetStatus(codes.Error, "not found")
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.log.InfoContext(ctx, "Session cancelled", "session_id", id)
	return jsonResult(map[string]any{
		"session_id": id,
		"status":     "cancelled",
	})
}

// HandleAcceptIdea saves a session's found idea to the vault.
func (h *Handlers) HandleAcceptIdea(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.accept_idea")
	defer span.End()

	id := mcp.ParseString(req, "session_id", "")
	if id == "" {
		span.SetStatus(codes.Error, "missing session_id")
		return mcp.NewToolResultError("session_id is required"), nil
	}
	span.SetAttributes(attribute.String("session_id", id))

	idea, err := h.sessions.Accept(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "accept failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to accept idea: %v", err)), nil
	}

	span.SetAttributes(attribute.String("idea_id", idea.ID))
	h.log.InfoContext(ctx, "Idea accepted", "session_id", id, "idea_id", idea.ID)

	return jsonResult(map[string]any{
		"idea_id": idea.ID,
		"title":   idea.Title,
		"status":  string(idea.Status),
		"message": "Idea saved to the vault.",
	})
}

// HandleRejectIdea discards a found idea and resumes the brainstorm.
func (h *Handlers) HandleRejectIdea(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.reject_idea")
	defer span.End()

	id := mcp.ParseString(req, "session_id", "")
	if id == "" {
		span.SetStatus(codes.Error, "missing session_id")
		return mcp.NewToolResultError("session_id is required"), nil
	}
	span.SetAttributes(attribute.String("session_id", id))

	if err := h.sessions.Reject(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reject failed")
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.log.InfoContext(ctx, "Idea rejected", "session_id", id)
	return jsonResult(map[string]any{
		"session_id": id,
		"status":     "resumed",
		"message":    "Idea rejected, the team is searching for a new direction.",
	})
}

// HandleListIdeas returns a paginated list of saved ideas.
func (h *Handlers) HandleListIdeas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.list_ideas")
	defer span.End()

	limit := parseIntParam(req, "limit", 20)
	cursor := mcp.ParseString(req, "cursor", "")

	span.SetAttributes(
		attribute.Int("limit", limit),
		attribute.String("cursor", cursor),
	)

	items, nextCursor, err := h.ideas.ListIdeas(ctx, limit, cursor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list ideas failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list ideas: %v", err)), nil
	}

	span.SetAttributes(attribute.Int("result_count", len(items)))

	ideas := make([]map[string]any, 0, len(items))
	for _, item := range items {
		entry := map[string]any{
			"idea_id":    item.IdeaID,
			"title":      item.Title,
			"status":     item.Status,
			"created_at": item.CreatedAt,
		}
		if item.Topic != "" {
			entry["topic"] = item.Topic
		}
		if item.Description != "" {
			entry["description"] = item.Description
		}
		ideas = append(ideas, entry)
	}

	result := map[string]any{
		"ideas": ideas,
		"count": len(ideas),
	}
	if nextCursor != "" {
		result["next_cursor"] = nextCursor
	}

	return jsonResult(result)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func parseIntParam(req mcp.CallToolRequest, key string, defaultVal int) int {
	args := req.GetArguments()
	if args == nil {
		return defaultVal
	}
	raw, ok := args[key]
	if !ok {
		return defaultVal
	}
	switch v := raw.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return defaultVal
}

func parseStringSliceParam(req mcp.CallToolRequest, key string) []string {
	args := req.GetArguments()
	if args == nil {
		return nil
	}
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
