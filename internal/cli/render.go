package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/yosoyorhan/Fikir-motoru/internal/brainstorm"
	"github.com/yosoyorhan/Fikir-motoru/internal/conversation"
	"github.com/yosoyorhan/Fikir-motoru/internal/persona"
)

var (
	senderStyles = map[persona.Persona]lipgloss.Style{
		persona.Moderator:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		persona.MarketResearcher: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575")),
		persona.Developer:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00AFFF")),
		persona.UserPersona:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFAF00")),
		persona.FinancialAnalyst: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FD7FF")),
		persona.IdeaMan:          lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF87D7")),
		persona.BigBoss:          lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555")),
		persona.RateLimitExpert:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D7AF5F")),
		persona.Assistant:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#87FF87")),
		persona.User:             lipgloss.NewStyle().Bold(true),
	}

	systemStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#626262"))
	pendingStyle = lipgloss.NewStyle().Faint(true).Italic(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
)

// renderer prints session events as they happen. It runs on the engine
// goroutine, so every handler returns quickly.
type renderer struct {
	out     io.Writer
	color   bool
	verbose bool

	mu sync.Mutex
}

func newRenderer(out io.Writer, verbose bool) *renderer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &renderer{out: out, color: color, verbose: verbose}
}

func (r *renderer) render(style lipgloss.Style, s string) string {
	if !r.color {
		return s
	}
	return style.Render(s)
}

// Handle implements brainstorm.Callback.
func (r *renderer) Handle(ev brainstorm.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Kind {
	case brainstorm.EventMessageAppended:
		if ev.Message != nil && ev.Message.Pending {
			fmt.Fprintln(r.out, r.render(pendingStyle, fmt.Sprintf("  %s yazıyor...", ev.Message.Sender)))
		}
	case brainstorm.EventMessageFinalized:
		if ev.Message != nil {
			r.printMessage(*ev.Message)
		}
	case brainstorm.EventNotice:
		style := successStyle
		mark := "✔"
		if ev.Level == brainstorm.NoticeError {
			style = errStyle
			mark = "✖"
		}
		fmt.Fprintf(r.out, "\n%s\n\n", r.render(style, mark+" "+ev.Notice))
	case brainstorm.EventStateChanged:
		if r.verbose {
			fmt.Fprintln(r.out, r.render(systemStyle, fmt.Sprintf("[%s]", ev.State)))
		}
	case brainstorm.EventArtReady:
		if r.verbose {
			fmt.Fprintln(r.out, r.render(systemStyle, fmt.Sprintf("[arka plan görseli hazır, %d bayt]", len(ev.Art))))
		}
	}
}

func (r *renderer) printMessage(m conversation.Message) {
	if m.Sender == persona.System {
		fmt.Fprintf(r.out, "%s\n\n", r.render(systemStyle, m.Text))
		return
	}
	fmt.Fprintf(r.out, "%s: %s\n\n", r.printSender(m.Sender), m.Text)
}

func (r *renderer) printSender(p persona.Persona) string {
	style, ok := senderStyles[p]
	if !ok {
		style = systemStyle
	}
	return r.render(style, string(p))
}
