package mcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yosoyorhan/Fikir-motoru/internal/persona"
)

func TestStartRequestFocusMap(t *testing.T) {
	req := StartRequest{
		Leader: "Geliştirici",
		Muted:  []string{"Finansal Analist", "Fikir Babası"},
	}
	focus, err := req.focusMap()
	require.NoError(t, err)

	assert.Equal(t, persona.Leader, focus.Focus(persona.Developer))
	assert.Equal(t, persona.Muted, focus.Focus(persona.FinancialAnalyst))
	assert.Equal(t, persona.Muted, focus.Focus(persona.IdeaMan))
	assert.Equal(t, persona.Default, focus.Focus(persona.Moderator))
}

func TestStartRequestFocusMapUnknownPersona(t *testing.T) {
	_, err := StartRequest{Leader: "CEO"}.focusMap()
	assert.ErrorContains(t, err, "CEO")

	_, err = StartRequest{Muted: []string{"Stajyer"}}.focusMap()
	assert.ErrorContains(t, err, "Stajyer")
}
