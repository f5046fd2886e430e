package brainstorm

import (
	"fmt"
	"strings"

	"github.com/yosoyorhan/Fikir-motoru/internal/persona"
)

// Settings is the immutable configuration of one session. Construct it with
// Resolve so the mode adjustment rules are applied exactly once.
type Settings struct {
	Topic            string
	Focus            persona.FocusMap
	Concise          bool
	DeepDive         bool
	Flash            bool
	RememberVault    bool
	BigBossActive    bool
	BigBossInfluence int
	// MainFocus is an optional saved idea the team should center on,
	// rendered as "Başlık: ...\nAçıklama: ...".
	MainFocus string
}

// Resolve validates raw toggles and applies the mode adjustments: deep-dive
// turns off concise mode and turns vault memory on; flash then forces concise,
// drops vault memory and deactivates Big Boss. Flash wins when both modes are
// requested.
func Resolve(raw Settings) (Settings, error) {
	s := raw
	s.Topic = strings.TrimSpace(s.Topic)
	if s.Topic == "" {
		return Settings{}, fmt.Errorf("a session needs a topic")
	}
	if s.BigBossInfluence < 0 || s.BigBossInfluence > 100 {
		return Settings{}, fmt.Errorf("big boss influence %d out of range [0,100]", s.BigBossInfluence)
	}

	if s.DeepDive {
		s.Concise = false
		s.RememberVault = true
	}
	if s.Flash {
		s.Concise = true
		s.RememberVault = false
		s.BigBossActive = false
	}
	if !s.BigBossActive {
		s.BigBossInfluence = 0
	}
	return s, nil
}

// FastPath reports whether the session runs as one full-script generation
// instead of the turn loop.
func (s Settings) FastPath() bool {
	return s.Flash || s.Concise
}
