// Package marker interprets free-form model output as control flow. All
// marker detection lives here so the orchestrator state machine never
// inspects raw text itself.
package marker

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yosoyorhan/Fikir-motoru/internal/conversation"
	"github.com/yosoyorhan/Fikir-motoru/internal/persona"
)

// Control markers embedded in generated text. The moderator directive and the
// full-script system prompt instruct the model to emit these verbatim.
const (
	IdeaPhrase      = "SANIRIM BİR FİKİR BULDUM!"
	IdeaToken       = "[FİKİR BULDUM]"
	HumanInputToken = "[AWAITING_BOSS_INPUT]"

	titlePrefix       = "başlık:"
	descriptionPrefix = "açıklama:"

	// fallbackTitle is the placeholder the model tends to produce when it
	// declares an idea without actually having one. Treated as a failed
	// extraction.
	fallbackTitle = "başlıksız fikir"

	// ideaAnchor is the ASCII tail of the idea phrase; extraction takes
	// everything after its last occurrence.
	ideaAnchor = "BULDUM!"
)

// Kind tags a parsed turn outcome.
type Kind int

const (
	Continue Kind = iota
	IdeaFound
	AwaitingHumanInput
)

// Signal is the total result of parsing one turn. FailedExtraction is set
// when an idea marker was present but no usable title could be extracted; the
// kind downgrades to Continue and the orchestrator should warn the user.
type Signal struct {
	Kind             Kind
	Title            string
	Description      string
	FailedExtraction bool
}

// ParseTurn scans one persona's generated text for control markers.
//
// The human-input token wins when both markers are present. Personas are only
// expected to emit one marker per turn, but the parser does not assume it.
func ParseTurn(text string) Signal {
	upper := strings.ToUpper(text)

	if strings.Contains(upper, HumanInputToken) {
		return Signal{Kind: AwaitingHumanInput}
	}

	if !strings.Contains(upper, IdeaPhrase) && !strings.Contains(upper, IdeaToken) {
		return Signal{Kind: Continue}
	}

	// Take everything after the last anchor occurrence as the idea block.
	// The anchor search folds ASCII case directly on the original bytes so
	// multi-byte Turkish runes earlier in the text cannot skew the offset.
	idx := lastIndexFold(text, ideaAnchor)
	if idx < 0 {
		// Bracketed token without the spoken phrase; no block to mine.
		return Signal{Kind: Continue, FailedExtraction: true}
	}
	block := text[idx+len(ideaAnchor):]

	title, description := extractIdea(block)
	if title == "" || strings.ToLower(strings.TrimSpace(title)) == fallbackTitle {
		return Signal{Kind: Continue, FailedExtraction: true}
	}
	return Signal{Kind: IdeaFound, Title: title, Description: description}
}

// extractIdea splits an idea block into title and description. The first line
// with a "Başlık:" prefix (case-insensitive) is the title; every other line
// joins into the description, with an optional "Açıklama:" prefix stripped.
func extractIdea(block string) (title, description string) {
	var rest []string
	for _, line := range strings.Split(strings.TrimSpace(block), "\n") {
		if line == "" {
			continue
		}
		if t, ok := stripPrefixFold(line, titlePrefix); ok && title == "" {
			title = strings.TrimSpace(t)
			continue
		}
		rest = append(rest, line)
	}
	description = strings.Join(rest, "\n")
	if d, ok := stripPrefixFold(description, descriptionPrefix); ok {
		description = d
	}
	return title, strings.TrimSpace(description)
}

// Script errors for the full-script path. A missing idea token means the
// whole run failed ("team reached no conclusion"), not that parsing broke.
var (
	ErrNoConclusion = errors.New("script contains no idea marker")
	ErrUntitledIdea = errors.New("script idea has no usable title")
)

// ScriptResult is a parsed full-conversation script.
type ScriptResult struct {
	Conversation []conversation.Message
	Title        string
	Description  string
}

// ParseScript splits a single-shot full script on the idea token into a
// conversation segment and an idea segment. Conversation lines are
// "Persona: text" pairs split on the first colon; lines without a colon are
// stage directions and are dropped.
func ParseScript(script string) (*ScriptResult, error) {
	if !strings.Contains(script, IdeaToken) {
		return nil, ErrNoConclusion
	}

	parts := strings.SplitN(script, IdeaToken, 2)
	convSegment, ideaSegment := parts[0], parts[1]

	lines := strings.Split(strings.TrimSpace(ideaSegment), "\n")
	var ideaLines []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			ideaLines = append(ideaLines, l)
		}
	}
	if len(ideaLines) == 0 {
		return nil, ErrUntitledIdea
	}

	title := ideaLines[0]
	if t, ok := stripPrefixFold(title, titlePrefix); ok {
		title = t
	}
	title = strings.TrimSpace(title)
	if title == "" || strings.ToLower(title) == fallbackTitle {
		return nil, ErrUntitledIdea
	}

	description := strings.Join(ideaLines[1:], "\n")
	if d, ok := stripPrefixFold(description, descriptionPrefix); ok {
		description = d
	}

	var msgs []conversation.Message
	for _, line := range strings.Split(strings.TrimSpace(convSegment), "\n") {
		sender, text, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		msgs = append(msgs, conversation.New(
			persona.Persona(strings.TrimSpace(sender)),
			strings.TrimSpace(text),
		))
	}

	return &ScriptResult{
		Conversation: msgs,
		Title:        title,
		Description:  strings.TrimSpace(description),
	}, nil
}

// lastIndexFold returns the byte index of the last occurrence of an ASCII
// needle in s, ignoring ASCII case. Byte-wise scanning keeps offsets valid
// even when s contains multi-byte runes.
func lastIndexFold(s, needle string) int {
	if needle == "" || len(s) < len(needle) {
		return -1
	}
	for i := len(s) - len(needle); i >= 0; i-- {
		if equalFoldASCII(s[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// stripPrefixFold removes prefix from s if s starts with it under Unicode
// simple case folding, also consuming any whitespace right after the prefix.
func stripPrefixFold(s, prefix string) (string, bool) {
	rest := s
	for _, pr := range prefix {
		if rest == "" {
			return s, false
		}
		r, size := utf8.DecodeRuneInString(rest)
		if unicode.ToLower(r) != unicode.ToLower(pr) {
			return s, false
		}
		rest = rest[size:]
	}
	return strings.TrimLeft(rest, " \t"), true
}
