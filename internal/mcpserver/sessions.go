package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yosoyorhan/Fikir-motoru/internal/brainstorm"
	"github.com/yosoyorhan/Fikir-motoru/internal/conversation"
	"github.com/yosoyorhan/Fikir-motoru/internal/gateway"
	"github.com/yosoyorhan/Fikir-motoru/internal/observability"
	"github.com/yosoyorhan/Fikir-motoru/internal/persona"
)

// StartRequest holds parameters for a new brainstorm session.
type StartRequest struct {
	Topic            string
	MainFocus        string
	Concise          bool
	DeepDive         bool
	Flash            bool
	RememberVault    bool
	BigBossActive    bool
	BigBossInfluence int
	Leader           string   // persona name to lead the session
	Muted            []string // persona names to silence
}

// focusMap converts the leader/muted persona names into a dominance map.
func (r StartRequest) focusMap() (persona.FocusMap, error) {
	focus := persona.FocusMap{}
	if r.Leader != "" {
		p := persona.Persona(r.Leader)
		if _, ok := persona.Lookup(p); !ok {
			return nil, fmt.Errorf("unknown persona %q", r.Leader)
		}
		focus[p] = persona.Leader
	}
	for _, name := range r.Muted {
		p := persona.Persona(name)
		if _, ok := persona.Lookup(p); !ok {
			return nil, fmt.Errorf("unknown persona %q", name)
		}
		focus[p] = persona.Muted
	}
	return focus, nil
}

// Notice is a toast-level message recorded from a session.
type Notice struct {
	Text  string                `json:"text"`
	Level brainstorm.NoticeLevel `json:"level"`
}

// Session is one live or finished brainstorm owned by the manager. State,
// history, found idea, and candidates are read through the engine's Snapshot;
// the session itself only accumulates notices and completion status.
type Session struct {
	ID        string
	Topic     string
	CreatedAt string
	engine    *brainstorm.Engine

	mu      sync.Mutex
	notices []Notice
	busy    bool // a generation goroutine is running
}

func (s *Session) recordEvent(ev brainstorm.Event) {
	if ev.Kind != brainstorm.EventNotice {
		return
	}
	s.mu.Lock()
	s.notices = append(s.notices, Notice{Text: ev.Notice, Level: ev.Level})
	s.mu.Unlock()
}

// Notices returns a copy of the notices recorded so far.
func (s *Session) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notice, len(s.notices))
	copy(out, s.notices)
	return out
}

func (s *Session) setBusy(b bool) {
	s.mu.Lock()
	s.busy = b
	s.mu.Unlock()
}

// Busy reports whether a generation goroutine is running for this session.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// SessionManager owns brainstorm engines keyed by session ID. Engine entry
// points block until a resting state, so the manager runs them on their own
// goroutines and bounds how many sessions generate at once.
type SessionManager struct {
	gen     gateway.Generator
	vault   brainstorm.IdeaStore
	artist  brainstorm.Artist
	log     *slog.Logger
	baseCtx context.Context // cancelled on SIGTERM for graceful shutdown

	mu          sync.Mutex
	sessions    map[string]*Session
	maxSessions int
	running     int
}

// NewSessionManager creates a session manager.
// baseCtx should be cancelled on SIGTERM so session goroutines can clean up.
func NewSessionManager(gen gateway.Generator, vault brainstorm.IdeaStore, artist brainstorm.Artist, maxSessions int, logger *slog.Logger, baseCtx context.Context) *SessionManager {
	if maxSessions <= 0 {
		maxSessions = 5
	}
	return &SessionManager{
		gen:         gen,
		vault:       vault,
		artist:      artist,
		log:         logger,
		baseCtx:     baseCtx,
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
	}
}

// StartSession creates an engine and runs the brainstorm in a goroutine.
// Returns the session ID immediately; callers poll with Get.
func (sm *SessionManager) StartSession(ctx context.Context, req StartRequest) (string, error) {
	focus, err := req.focusMap()
	if err != nil {
		return "", err
	}

	id := conversation.NewID()
	sess := &Session{
		ID:        id,
		Topic:     req.Topic,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	engine, err := brainstorm.New(brainstorm.Config{
		Generator: sm.gen,
		Store:     sm.vault,
		Artist:    sm.artist,
		Callback:  sess.recordEvent,
		Logger:    sm.log.With("session_id", id),
		TeamDelay: brainstorm.DefaultTeamDelay,
	})
	if err != nil {
		return "", err
	}
	sess.engine = engine

	settings := brainstorm.Settings{
		Topic:            req.Topic,
		Focus:            focus,
		Concise:          req.Concise,
		DeepDive:         req.DeepDive,
		Flash:            req.Flash,
		RememberVault:    req.RememberVault,
		BigBossActive:    req.BigBossActive,
		BigBossInfluence: req.BigBossInfluence,
		MainFocus:        req.MainFocus,
	}
	if _, err := brainstorm.Resolve(settings); err != nil {
		return "", err
	}

	sm.mu.Lock()
	if sm.running >= sm.maxSessions {
		sm.mu.Unlock()
		return "", fmt.Errorf("max concurrent sessions reached (%d)", sm.maxSessions)
	}
	sm.running++
	sm.sessions[id] = sess
	sm.mu.Unlock()

	// Derive the goroutine context from baseCtx (cancelled on SIGTERM) rather
	// than the HTTP request context (cancelled when the response is sent).
	// Carry the trace span from the request for observability linking.
	runCtx := observability.DetachTraceContextFrom(ctx, sm.baseCtx)
	go sm.runSession(runCtx, sess, settings)

	return id, nil
}

func (sm *SessionManager) runSession(ctx context.Context, sess *Session, settings brainstorm.Settings) {
	ctx, span := tracer.Start(ctx, "brainstorm.run",
		trace.WithAttributes(attribute.String("session_id", sess.ID)),
	)
	defer span.End()

	sess.setBusy(true)
	defer func() {
		sess.setBusy(false)
		sm.mu.Lock()
		sm.running--
		sm.mu.Unlock()
	}()

	if err := sess.engine.StartSession(ctx, settings); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session failed")
		sm.log.ErrorContext(ctx, "Session failed", "session_id", sess.ID, "error", err)
		return
	}
	span.SetAttributes(attribute.String("final_state", string(sess.engine.State())))
}

// Get returns a session by ID.
func (sm *SessionManager) Get(id string) (*Session, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sess, ok := sm.sessions[id]
	return sess, ok
}

// resume runs fn on a session goroutine. Used for the entry points that
// restart the turn loop and therefore block until the next resting state.
func (sm *SessionManager) resume(ctx context.Context, sess *Session, op string, fn func(context.Context) error) {
	runCtx := observability.DetachTraceContextFrom(ctx, sm.baseCtx)
	go func() {
		runCtx, span := tracer.Start(runCtx, op,
			trace.WithAttributes(attribute.String("session_id", sess.ID)),
		)
		defer span.End()

		sess.setBusy(true)
		defer sess.setBusy(false)

		if err := fn(runCtx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "resume failed")
			sm.log.ErrorContext(runCtx, "Session resume failed", "session_id", sess.ID, "op", op, "error", err)
		}
	}()
}

// SubmitInput hands a user or Big Boss message to a session that is awaiting
// input. The turn loop restarts asynchronously; callers poll with Get.
func (sm *SessionManager) SubmitInput(ctx context.Context, id, text string) error {
	sess, ok := sm.Get(id)
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	if state := sess.engine.State(); state != brainstorm.StateAwaitingUserInput {
		return fmt.Errorf("session is %s, not awaiting input", state)
	}
	sm.resume(ctx, sess, "brainstorm.submit_input", func(ctx context.Context) error {
		return sess.engine.SubmitHumanInput(ctx, text)
	})
	return nil
}

// Cancel aborts a running session. The session stays readable.
func (sm *SessionManager) Cancel(id string) error {
	sess, ok := sm.Get(id)
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	sess.engine.CancelSession()
	return nil
}

// Accept persists a session's found idea and awards points.
func (sm *SessionManager) Accept(ctx context.Context, id string) (brainstorm.FoundIdea, error) {
	sess, ok := sm.Get(id)
	if !ok {
		return brainstorm.FoundIdea{}, fmt.Errorf("session %s not found", id)
	}
	return sess.engine.AcceptFoundIdea(ctx)
}

// Reject discards a session's found idea and resumes the brainstorm
// asynchronously.
func (sm *SessionManager) Reject(ctx context.Context, id string) error {
	sess, ok := sm.Get(id)
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	if state := sess.engine.State(); state != brainstorm.StateFinalizing {
		return fmt.Errorf("session is %s, no idea to reject", state)
	}
	sm.resume(ctx, sess, "brainstorm.reject_idea", func(ctx context.Context) error {
		return sess.engine.RejectFoundIdea(ctx)
	})
	return nil
}

// SnapshotOf is a convenience wrapper for handlers.
func (sm *SessionManager) SnapshotOf(id string) (brainstorm.Snapshot, *Session, error) {
	sess, ok := sm.Get(id)
	if !ok {
		return brainstorm.Snapshot{}, nil, fmt.Errorf("session %s not found", id)
	}
	return sess.engine.Snapshot(), sess, nil
}
