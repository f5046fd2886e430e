// Package brainstorm runs multi-persona idea sessions: the state machine, the
// turn loop, and the session artifacts (found ideas, candidates, details).
package brainstorm

import (
	"strings"

	"github.com/yosoyorhan/Fikir-motoru/internal/conversation"
)

// AppState is the session state machine. Every entry point either keeps the
// state or moves it to another valid state; there is no error state.
type AppState string

const (
	StateIdle              AppState = "IDLE"
	StatePreparingTeam     AppState = "PREPARING_TEAM"
	StateBrainstorming     AppState = "BRAINSTORMING"
	StateAwaitingUserInput AppState = "AWAITING_USER_INPUT"
	StateFinalizing        AppState = "FINALIZING"
	StateSessionEnded      AppState = "SESSION_ENDED"
	StateLoading           AppState = "LOADING"
	StateDetailingIdea     AppState = "DETAILING_IDEA"
)

// IdeaStatus is the review pipeline position of a stored idea. The values are
// the user-visible Turkish labels and double as the persisted representation.
type IdeaStatus string

const (
	StatusPooled      IdeaStatus = "Havuz (Kasa)"
	StatusUnderReview IdeaStatus = "Değerlendiriliyor"
	StatusApproved    IdeaStatus = "Onaylandı"
)

// FoundIdea is a concluded brainstorm outcome pending user review.
type FoundIdea struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	Topic        string                 `json:"topic"`
	Status       IdeaStatus             `json:"status"`
	Conversation []conversation.Message `json:"conversation"`
	// ArchiveKey is set once the conversation transcript is archived.
	ArchiveKey string `json:"archiveKey,omitempty"`
}

// Candidate is one idea extracted by the session summarizer.
type Candidate struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// DetailedIdea is a candidate expanded into a long-form concept.
type DetailedIdea struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Details      string                 `json:"details"`
	Topic        string                 `json:"topic"`
	Conversation []conversation.Message `json:"conversation"`
}

// Profile is the gamification record attached to a user.
type Profile struct {
	Points int    `json:"points"`
	Level  string `json:"level"`
}

// bigBossRejectionTerms are phrases that read as a Big Boss veto. Matching is
// advisory: the reply still enters history, the team just gets warned.
var bigBossRejectionTerms = []string{
	"beğenmedim",
	"istemiyorum",
	"olmaz",
	"hayır",
	"kötü",
	"başka",
	"farklı bir şey",
	"uymuyor",
	"vizyonumuza uymuyor",
	"öncelik değil",
	"devam etmeyin",
	"durdurun",
}

// IsBigBossRejection reports whether a Big Boss reply contains a veto phrase.
func IsBigBossRejection(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range bigBossRejectionTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
