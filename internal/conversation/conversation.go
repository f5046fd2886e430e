// Package conversation holds the message model shared by the orchestrator,
// the generation gateway, and the script parser.
package conversation

import (
	"crypto/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yosoyorhan/Fikir-motoru/internal/persona"
)

// Message is one entry in a session's history. A message is created as a
// pending placeholder when a turn begins and finalized in place (same ID)
// when generation completes. Once finalized it is immutable.
type Message struct {
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	Sender    persona.Persona `json:"sender"`
	Timestamp uint64          `json:"timestamp"`
	Pending   bool            `json:"pending,omitempty"`
}

// clock is a process-wide logical clock. Wall time alone is not monotonic
// enough to order messages minted in the same millisecond.
var clock atomic.Uint64

// NextTimestamp returns a strictly increasing logical timestamp.
func NextTimestamp() uint64 {
	now := uint64(time.Now().UnixMilli())
	for {
		prev := clock.Load()
		next := now
		if next <= prev {
			next = prev + 1
		}
		if clock.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// NewID mints a ULID for a message or idea.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// New creates a finalized message.
func New(sender persona.Persona, text string) Message {
	return Message{
		ID:        NewID(),
		Text:      text,
		Sender:    sender,
		Timestamp: NextTimestamp(),
	}
}

// NewPending creates the empty placeholder appended to history before a
// persona's generation call resolves.
func NewPending(sender persona.Persona) Message {
	return Message{
		ID:        NewID(),
		Sender:    sender,
		Timestamp: NextTimestamp(),
		Pending:   true,
	}
}

// Finalize returns a copy of m with text populated and the pending flag
// cleared. The ID is preserved so the placeholder is replaced, not duplicated.
func (m Message) Finalize(text string) Message {
	m.Text = text
	m.Pending = false
	return m
}

// Transcript renders history as "Sender: text" lines. This exact form is fed
// back into generation prompts, so it must stay stable.
func Transcript(history []Message) string {
	var b strings.Builder
	for i, m := range history {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(m.Sender))
		b.WriteString(": ")
		b.WriteString(m.Text)
	}
	return b.String()
}

// Clone copies a history slice so a snapshot cannot observe later appends.
func Clone(history []Message) []Message {
	out := make([]Message, len(history))
	copy(out, history)
	return out
}
