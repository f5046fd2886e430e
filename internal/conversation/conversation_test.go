package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yosoyorhan/Fikir-motoru/internal/persona"
)

func TestNextTimestampStrictlyIncreases(t *testing.T) {
	prev := NextTimestamp()
	for i := 0; i < 1000; i++ {
		next := NextTimestamp()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestFinalizeKeepsID(t *testing.T) {
	pending := NewPending(persona.Moderator)
	assert.True(t, pending.Pending)
	assert.Empty(t, pending.Text)

	done := pending.Finalize("Başlayalım.")
	assert.Equal(t, pending.ID, done.ID)
	assert.Equal(t, "Başlayalım.", done.Text)
	assert.False(t, done.Pending)
}

func TestTranscript(t *testing.T) {
	history := []Message{
		New(persona.Moderator, "Konuyu açıyorum."),
		New(persona.Developer, "Teknik olarak mümkün."),
	}
	want := "Moderatör: Konuyu açıyorum.\nGeliştirici: Teknik olarak mümkün."
	assert.Equal(t, want, Transcript(history))
	assert.Empty(t, Transcript(nil))
}

func TestCloneIsIndependent(t *testing.T) {
	history := []Message{New(persona.User, "merhaba")}
	snap := Clone(history)
	history[0].Text = "değişti"
	assert.Equal(t, "merhaba", snap[0].Text)
}
