package brainstorm

import "github.com/yosoyorhan/Fikir-motoru/internal/conversation"

// EventKind identifies what a session event carries.
type EventKind string

const (
	EventStateChanged     EventKind = "state"
	EventMessageAppended  EventKind = "message"
	EventMessageFinalized EventKind = "message_final"
	EventNotice           EventKind = "notice"
	EventIdeaFound        EventKind = "idea_found"
	EventCandidatesReady  EventKind = "candidates"
	EventIdeaDetailed     EventKind = "idea_detailed"
	EventArtReady         EventKind = "art"
)

// NoticeLevel mirrors the success/error toast levels of the UI.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Event carries session changes from the engine to the renderer. Only the
// fields relevant to the kind are set.
type Event struct {
	Kind       EventKind
	State      AppState
	Message    *conversation.Message
	Notice     string
	Level      NoticeLevel
	Idea       *FoundIdea
	Candidates []Candidate
	Detail     *DetailedIdea
	Art        []byte
}

// Callback is the function signature for session event handlers. Callbacks
// run on the engine goroutine and must not block.
type Callback func(Event)

// NopCallback is a no-op event callback for tests and silent mode.
func NopCallback(Event) {}
