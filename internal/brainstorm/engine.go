package brainstorm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yosoyorhan/Fikir-motoru/internal/conversation"
	"github.com/yosoyorhan/Fikir-motoru/internal/gateway"
	"github.com/yosoyorhan/Fikir-motoru/internal/marker"
	"github.com/yosoyorhan/Fikir-motoru/internal/observability"
	"github.com/yosoyorhan/Fikir-motoru/internal/persona"
)

// DefaultTeamDelay is the team-assembly pause before the first turn.
const DefaultTeamDelay = 2 * time.Second

// acceptedIdeaPoints is the profile reward for accepting a found idea.
const acceptedIdeaPoints = 50

// IdeaStore persists accepted ideas and the user profile. All methods may be
// called concurrently.
type IdeaStore interface {
	SaveIdea(ctx context.Context, idea FoundIdea) (FoundIdea, error)
	AwardPoints(ctx context.Context, delta int) (Profile, error)
	// ListTitles returns the titles of saved ideas, used as the vault hint
	// so the team does not repeat itself.
	ListTitles(ctx context.Context) ([]string, error)
}

// Artist produces background art for a session topic.
type Artist interface {
	TopicArt(ctx context.Context, topic string) ([]byte, error)
}

// Config wires an Engine. Generator is required; Store and Artist are
// optional collaborators.
type Config struct {
	Generator gateway.Generator
	Store     IdeaStore
	Artist    Artist
	Callback  Callback
	Logger    *slog.Logger
	// TeamDelay is the pause shown while the team assembles. Use
	// DefaultTeamDelay for the standard pacing; zero skips it.
	TeamDelay time.Duration
}

// Engine owns one live session. Entry points are synchronous: they return
// when the session reaches a resting state (Finalizing, AwaitingUserInput,
// SessionEnded, Idle). Run them on their own goroutine when the caller needs
// to stay responsive; CancelSession and Intervene are safe from other
// goroutines.
type Engine struct {
	gen       gateway.Generator
	store     IdeaStore
	artist    Artist
	cb        Callback
	log       *slog.Logger
	teamDelay time.Duration

	mu         sync.Mutex
	state      AppState
	settings   Settings
	roster     []persona.Persona
	history    []conversation.Message
	foundIdea  *FoundIdea
	candidates []Candidate
	runSeq     int
	cancel     context.CancelFunc
}

// New builds an Engine from cfg.
func New(cfg Config) (*Engine, error) {
	if cfg.Generator == nil {
		return nil, errors.New("brainstorm: a generator is required")
	}
	cb := cfg.Callback
	if cb == nil {
		cb = NopCallback
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		gen:       cfg.Generator,
		store:     cfg.Store,
		artist:    cfg.Artist,
		cb:        cb,
		log:       log.With("component", "brainstorm"),
		teamDelay: cfg.TeamDelay,
		state:     StateIdle,
	}, nil
}

// Snapshot is a consistent read of the session for renderers and the server.
type Snapshot struct {
	State      AppState               `json:"state"`
	Topic      string                 `json:"topic"`
	History    []conversation.Message `json:"history"`
	FoundIdea  *FoundIdea             `json:"foundIdea,omitempty"`
	Candidates []Candidate            `json:"candidates,omitempty"`
}

// Snapshot returns the current session state. The history is a copy.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{
		State:      e.state,
		Topic:      e.settings.Topic,
		History:    conversation.Clone(e.history),
		Candidates: append([]Candidate(nil), e.candidates...),
	}
	if e.foundIdea != nil {
		idea := *e.foundIdea
		snap.FoundIdea = &idea
	}
	return snap
}

// State returns the current session state.
func (e *Engine) State() AppState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// History returns a copy of the session history.
func (e *Engine) History() []conversation.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return conversation.Clone(e.history)
}

// StartSession resolves the settings and runs a new session until its first
// resting state. A session already in flight is cancelled first.
func (e *Engine) StartSession(ctx context.Context, raw Settings) error {
	s, err := Resolve(raw)
	if err != nil {
		return err
	}

	runCtx, runID := e.armRun(ctx)
	defer e.disarmRun(runID)

	e.mu.Lock()
	e.settings = s
	e.roster = persona.ActiveRoster(s.Focus)
	e.history = nil
	e.foundIdea = nil
	e.candidates = nil
	e.mu.Unlock()

	e.log.Info("session starting", "topic", s.Topic, "flash", s.Flash, "deep_dive", s.DeepDive, "big_boss", s.BigBossActive)

	if strings.ToLower(s.Topic) == rateLimitTopic {
		return swallowCancel(e.runRateLimitBriefing(runCtx))
	}
	return swallowCancel(e.run(runCtx, s))
}

// SubmitHumanInput resumes a session that is waiting on the user. The message
// enters history as the Big Boss when Big Boss mode is on, as the user
// otherwise, and the turn loop restarts with a fresh budget.
func (e *Engine) SubmitHumanInput(ctx context.Context, text string) error {
	e.mu.Lock()
	if e.state != StateAwaitingUserInput {
		state := e.state
		e.mu.Unlock()
		return fmt.Errorf("session is %s, not awaiting input", state)
	}
	sender := persona.User
	if e.settings.BigBossActive {
		sender = persona.BigBoss
	}
	e.mu.Unlock()

	msg := conversation.New(sender, text)
	e.appendFinal(msg)

	if sender == persona.BigBoss && IsBigBossRejection(text) {
		e.notice("Big Boss fikri beğenmedi, ekip yeni bir yön arıyor.", NoticeError)
	}

	runCtx, runID := e.armRun(ctx)
	defer e.disarmRun(runID)
	return swallowCancel(e.loop(runCtx, 0))
}

// CancelSession aborts the running loop and returns the session to Idle.
// History is kept so the user can read what happened.
func (e *Engine) CancelSession() {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.state = StateIdle
	e.mu.Unlock()
	e.emit(Event{Kind: EventStateChanged, State: StateIdle})
	e.notice("Beyin fırtınası durduruldu.", NoticeError)
}

// Intervene aborts the running loop and hands the floor to the user.
func (e *Engine) Intervene() {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.state = StateAwaitingUserInput
	e.mu.Unlock()
	e.emit(Event{Kind: EventStateChanged, State: StateAwaitingUserInput})
	e.notice("Sohbete müdahale ediyorsunuz...", NoticeSuccess)
}

// AcceptFoundIdea persists the pending idea, awards profile points, and
// resets the session. On a store failure the idea stays pending so the user
// can retry.
func (e *Engine) AcceptFoundIdea(ctx context.Context) (FoundIdea, error) {
	e.mu.Lock()
	if e.state != StateFinalizing || e.foundIdea == nil {
		state := e.state
		e.mu.Unlock()
		return FoundIdea{}, fmt.Errorf("session is %s, no idea to accept", state)
	}
	idea := *e.foundIdea
	e.mu.Unlock()

	if e.store != nil {
		saved, err := e.store.SaveIdea(ctx, idea)
		if err != nil {
			e.log.Error("saving idea failed", "error", err, "title", idea.Title)
			e.notice("Fikir kaydedilirken bir hata oluştu.", NoticeError)
			return FoundIdea{}, err
		}
		idea = saved
		if _, err := e.store.AwardPoints(ctx, acceptedIdeaPoints); err != nil {
			e.log.Warn("awarding points failed", "error", err)
		}
	}

	e.mu.Lock()
	e.foundIdea = nil
	e.history = nil
	e.state = StateIdle
	e.mu.Unlock()
	e.emit(Event{Kind: EventStateChanged, State: StateIdle})
	e.notice("Fikir inovasyon panosuna eklendi!", NoticeSuccess)
	return idea, nil
}

// RejectFoundIdea discards the pending idea and resumes brainstorming from
// the idea's conversation, with a synthetic rejection message and a fresh
// turn budget.
func (e *Engine) RejectFoundIdea(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateFinalizing || e.foundIdea == nil {
		state := e.state
		e.mu.Unlock()
		return fmt.Errorf("session is %s, no idea to reject", state)
	}
	e.history = conversation.Clone(e.foundIdea.Conversation)
	e.foundIdea = nil
	e.mu.Unlock()

	e.notice("Ekip beyin fırtınasına devam ediyor...", NoticeSuccess)
	e.appendFinal(conversation.New(persona.User, "Bu fikri beğenmedim, devam edelim."))

	runCtx, runID := e.armRun(ctx)
	defer e.disarmRun(runID)
	return swallowCancel(e.loop(runCtx, 0))
}

// SelectCandidateForDetail expands one summarized candidate into a long-form
// concept and returns the session to Idle.
func (e *Engine) SelectCandidateForDetail(ctx context.Context, candidateID string) (*DetailedIdea, error) {
	e.mu.Lock()
	if e.state != StateSessionEnded {
		state := e.state
		e.mu.Unlock()
		return nil, fmt.Errorf("session is %s, no candidates to detail", state)
	}
	var picked *Candidate
	for i := range e.candidates {
		if e.candidates[i].ID == candidateID {
			picked = &e.candidates[i]
			break
		}
	}
	if picked == nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("unknown candidate %q", candidateID)
	}
	cand := *picked
	topic := e.settings.Topic
	e.candidates = nil
	e.mu.Unlock()

	e.setState(StateDetailingIdea)
	e.appendFinal(conversation.New(persona.System, fmt.Sprintf("Fikir detaylandırılıyor: **%s**", cand.Title)))

	details, err := e.gen.Detail(ctx, e.History(), gateway.IdeaSummary{Title: cand.Title, Summary: cand.Summary})
	if err != nil {
		e.log.Error("detailing failed", "error", err, "title", cand.Title)
		e.notice("Fikir detaylandırılırken bir hata oluştu.", NoticeError)
		e.setState(StateIdle)
		return nil, err
	}

	detailed := &DetailedIdea{
		ID:           cand.ID,
		Title:        cand.Title,
		Details:      details,
		Topic:        topic,
		Conversation: e.History(),
	}
	e.emit(Event{Kind: EventIdeaDetailed, Detail: detailed})
	e.setState(StateIdle)
	return detailed, nil
}

// SaveDetailedIdea stores a detailed concept as a pooled idea.
func (e *Engine) SaveDetailedIdea(ctx context.Context, d DetailedIdea) (FoundIdea, error) {
	if e.store == nil {
		return FoundIdea{}, errors.New("no idea store configured")
	}
	idea := FoundIdea{
		ID:           d.ID,
		Title:        d.Title,
		Description:  d.Details,
		Topic:        d.Topic,
		Status:       StatusPooled,
		Conversation: d.Conversation,
	}
	saved, err := e.store.SaveIdea(ctx, idea)
	if err != nil {
		e.notice("Detaylı fikir kaydedilirken bir hata oluştu.", NoticeError)
		return FoundIdea{}, err
	}
	e.notice(fmt.Sprintf("%q inovasyon panosuna eklendi!", d.Title), NoticeSuccess)
	return saved, nil
}

// ContinueBrainstorming resumes the turn loop after a summary, with a fresh
// budget, instead of ending the session.
func (e *Engine) ContinueBrainstorming(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateSessionEnded {
		state := e.state
		e.mu.Unlock()
		return fmt.Errorf("session is %s, nothing to continue", state)
	}
	e.candidates = nil
	e.mu.Unlock()

	e.appendFinal(conversation.New(persona.System, "Kullanıcı beyin fırtınasına devam edilmesini istedi."))

	runCtx, runID := e.armRun(ctx)
	defer e.disarmRun(runID)
	return swallowCancel(e.loop(runCtx, 0))
}

// EndSession drops all session data and returns to Idle.
func (e *Engine) EndSession() {
	e.mu.Lock()
	e.history = nil
	e.candidates = nil
	e.foundIdea = nil
	e.state = StateIdle
	e.mu.Unlock()
	e.emit(Event{Kind: EventStateChanged, State: StateIdle})
	e.notice("Oturum sonlandırıldı.", NoticeSuccess)
}

// AssistantChat answers an Idle-state message as the Cerevo assistant. The
// exchange enters history but does not start a session.
func (e *Engine) AssistantChat(ctx context.Context, text string) (string, error) {
	e.mu.Lock()
	if e.state != StateIdle {
		state := e.state
		e.mu.Unlock()
		return "", fmt.Errorf("session is %s, assistant chat is Idle-only", state)
	}
	e.mu.Unlock()

	e.appendFinal(conversation.New(persona.User, text))
	pending := conversation.NewPending(persona.Assistant)
	history := e.History()
	e.append(pending)

	reply, err := e.gen.AssistantReply(ctx, history)
	if err != nil {
		e.log.Warn("assistant reply failed", "error", err)
		reply = "Üzgünüm, şu an cevap veremiyorum. Birazdan tekrar dene."
	}
	e.finalize(pending.Finalize(reply))
	return reply, nil
}

// run drives a fresh session: team assembly pause, background art, then
// either the fast path or the turn loop.
func (e *Engine) run(ctx context.Context, s Settings) error {
	e.setState(StatePreparingTeam)
	e.startArtTask(ctx, s.Topic)

	if !e.pause(ctx, e.teamDelay) {
		return ctx.Err()
	}
	if s.FastPath() {
		return e.runFastPath(ctx, s)
	}

	e.appendFinal(conversation.New(persona.System, fmt.Sprintf("Yeni Fikir Fırtınası Başladı: **%s**", s.Topic)))
	return e.loop(ctx, 0)
}

// loop plays persona turns round-robin until an idea is found, the user is
// asked for input, the budget runs out, or the run is cancelled. The budget
// counts slots, so muted skips consume turns too.
func (e *Engine) loop(ctx context.Context, startTurn int) error {
	e.setState(StateBrainstorming)

	e.mu.Lock()
	s := e.settings
	roster := append([]persona.Persona(nil), e.roster...)
	e.mu.Unlock()
	if len(roster) == 0 {
		return errors.New("empty roster")
	}

	maxTurns := len(roster) * 3
	for turn := startTurn; turn < maxTurns; turn++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p := roster[turn%len(roster)]
		if s.Focus.Focus(p) == persona.Muted {
			continue
		}

		sig, err := e.takeTurn(ctx, p, s)
		if err != nil {
			return err
		}

		switch sig.Kind {
		case marker.IdeaFound:
			e.concludeWithIdea(sig.Title, sig.Description)
			return nil
		case marker.AwaitingHumanInput:
			e.setState(StateAwaitingUserInput)
			return nil
		default:
			if sig.FailedExtraction {
				e.notice("Yeterince niş bir fikir bulunamadı, ekip devam ediyor...", NoticeError)
			}
		}
	}

	return e.summarizeSession(ctx)
}

// takeTurn appends a pending placeholder, generates the persona's reply, and
// finalizes the placeholder in place. A cancelled generation removes the
// placeholder so history is exactly as before the turn. Generation failures
// are not fatal: a synthetic apology becomes the turn text.
func (e *Engine) takeTurn(ctx context.Context, p persona.Persona, s Settings) (marker.Signal, error) {
	history := e.History()
	pending := conversation.NewPending(p)
	e.append(pending)

	text, err := e.gen.GenerateTurn(ctx, gateway.TurnRequest{
		History:          history,
		Persona:          p,
		Topic:            s.Topic,
		Focus:            s.Focus,
		Concise:          s.Concise,
		DeepDive:         s.DeepDive,
		BigBossActive:    s.BigBossActive,
		BigBossInfluence: s.BigBossInfluence,
	})
	if ctx.Err() != nil {
		e.remove(pending.ID)
		return marker.Signal{}, ctx.Err()
	}
	if err != nil {
		e.log.Warn("turn generation failed", "persona", p, "error", err)
		if gateway.IsRateLimited(err) {
			e.notice("API kotası aşıldı, ekip kısa bir mola veriyor.", NoticeError)
		}
		text = fmt.Sprintf("Sistem: %s için yanıt oluşturulurken bir hata oluştu.", p)
	}

	e.finalize(pending.Finalize(text))
	return marker.ParseTurn(text), nil
}

// runFastPath generates the whole conversation in one call and parses it.
func (e *Engine) runFastPath(ctx context.Context, s Settings) error {
	e.setState(StateLoading)

	vault := ""
	if s.RememberVault && e.store != nil {
		titles, err := e.store.ListTitles(ctx)
		if err != nil {
			e.log.Warn("listing vault titles failed", "error", err)
		} else {
			vault = strings.Join(titles, ", ")
		}
	}

	script, err := e.gen.GenerateScript(ctx, gateway.ScriptRequest{
		Topic:            s.Topic,
		Focus:            s.Focus,
		Concise:          s.Concise,
		DeepDive:         s.DeepDive,
		Flash:            s.Flash,
		BigBossActive:    s.BigBossActive,
		BigBossInfluence: s.BigBossInfluence,
		MainFocus:        s.MainFocus,
		VaultHint:        vault,
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		e.log.Error("script generation failed", "error", err)
		e.notice("Üzgünüm, bir hata oluştu ve beyin fırtınası başlatılamadı.", NoticeError)
		e.setState(StateIdle)
		return nil
	}

	res, err := marker.ParseScript(script)
	switch {
	case errors.Is(err, marker.ErrNoConclusion):
		e.notice("Ekip bir sonuca varamadı, lütfen tekrar deneyin.", NoticeError)
		e.setState(StateIdle)
		return nil
	case errors.Is(err, marker.ErrUntitledIdea):
		e.notice("Yeterince niş bir fikir bulunamadı. Lütfen konuyu değiştirerek tekrar deneyin.", NoticeError)
		e.setState(StateIdle)
		return nil
	case err != nil:
		e.log.Error("script parsing failed", "error", err)
		e.notice("Üzgünüm, bir hata oluştu ve beyin fırtınası başlatılamadı.", NoticeError)
		e.setState(StateIdle)
		return nil
	}

	for _, m := range res.Conversation {
		e.appendFinal(m)
	}
	e.concludeWithIdea(res.Title, res.Description)
	return nil
}

// runRateLimitBriefing is the one-shot expert flow triggered by the reserved
// topic instead of a brainstorm.
func (e *Engine) runRateLimitBriefing(ctx context.Context) error {
	e.setState(StatePreparingTeam)
	e.appendFinal(conversation.New(persona.System, "Hız Sınırları Uzmanı'na bağlanılıyor..."))

	if !e.pause(ctx, e.teamDelay) {
		return ctx.Err()
	}

	pending := conversation.NewPending(persona.RateLimitExpert)
	e.append(pending)
	e.setState(StateBrainstorming)

	summary, err := e.gen.RateLimitBriefing(ctx, rateLimitDocumentation)
	if ctx.Err() != nil {
		e.remove(pending.ID)
		return ctx.Err()
	}
	if err != nil {
		e.log.Warn("rate limit briefing failed", "error", err)
		summary = "Sistem: Hız limitleri özeti oluşturulurken bir hata oluştu. Lütfen daha sonra tekrar deneyin."
	}

	e.finalize(pending.Finalize(summary))
	e.setState(StateIdle)
	return nil
}

// summarizeSession distills the exhausted conversation into candidates.
func (e *Engine) summarizeSession(ctx context.Context) error {
	e.setState(StateLoading)
	e.notice("Fikir fırtınası tamamlandı. Potansiyel fikirler özetleniyor...", NoticeSuccess)

	var cands []Candidate
	if history := e.History(); len(history) > 0 {
		summaries, err := e.gen.Summarize(ctx, history)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			e.log.Error("summarizing failed", "error", err)
			e.notice("Fikirler özetlenirken bir hata oluştu.", NoticeError)
		}
		for _, s := range summaries {
			cands = append(cands, Candidate{ID: conversation.NewID(), Title: s.Title, Summary: s.Summary})
		}
	}

	e.mu.Lock()
	e.candidates = cands
	e.mu.Unlock()
	e.emit(Event{Kind: EventCandidatesReady, Candidates: cands})
	e.setState(StateSessionEnded)
	return nil
}

// concludeWithIdea snapshots history into a pending FoundIdea and moves the
// session to Finalizing.
func (e *Engine) concludeWithIdea(title, description string) {
	e.mu.Lock()
	idea := &FoundIdea{
		ID:           conversation.NewID(),
		Title:        title,
		Description:  description,
		Topic:        e.settings.Topic,
		Status:       StatusPooled,
		Conversation: conversation.Clone(e.history),
	}
	e.foundIdea = idea
	e.mu.Unlock()

	snapshot := *idea
	e.emit(Event{Kind: EventIdeaFound, Idea: &snapshot})
	e.setState(StateFinalizing)
}

// startArtTask fires background art generation and forgets about it. The
// detached context keeps the trace but outlives the session run.
func (e *Engine) startArtTask(ctx context.Context, topic string) {
	if e.artist == nil {
		return
	}
	artCtx := observability.DetachTraceContext(ctx)
	go func() {
		art, err := e.artist.TopicArt(artCtx, topic)
		if err != nil {
			e.log.Warn("topic art failed", "error", err)
			if gateway.IsRateLimited(err) {
				e.notice("Görsel üretme limiti aşıldı. Fikir fırtınası devam ediyor.", NoticeError)
			} else {
				e.notice("Arka plan görseli oluşturulamadı.", NoticeError)
			}
			return
		}
		e.emit(Event{Kind: EventArtReady, Art: art})
	}()
}

// armRun installs a fresh cancellable context as the live run, cancelling any
// previous one.
func (e *Engine) armRun(ctx context.Context) (context.Context, int) {
	runCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.cancel = cancel
	e.runSeq++
	id := e.runSeq
	e.mu.Unlock()
	return runCtx, id
}

func (e *Engine) disarmRun(id int) {
	e.mu.Lock()
	if e.runSeq == id && e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.mu.Unlock()
}

// pause waits for d unless the run is cancelled first.
func (e *Engine) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (e *Engine) setState(s AppState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
	e.emit(Event{Kind: EventStateChanged, State: s})
}

func (e *Engine) append(m conversation.Message) {
	e.mu.Lock()
	e.history = append(e.history, m)
	e.mu.Unlock()
	msg := m
	e.emit(Event{Kind: EventMessageAppended, Message: &msg})
}

func (e *Engine) finalize(m conversation.Message) {
	e.mu.Lock()
	for i := range e.history {
		if e.history[i].ID == m.ID {
			e.history[i] = m
			break
		}
	}
	e.mu.Unlock()
	msg := m
	e.emit(Event{Kind: EventMessageFinalized, Message: &msg})
}

func (e *Engine) appendFinal(m conversation.Message) {
	e.mu.Lock()
	e.history = append(e.history, m)
	e.mu.Unlock()
	msg := m
	e.emit(Event{Kind: EventMessageFinalized, Message: &msg})
}

func (e *Engine) remove(id string) {
	e.mu.Lock()
	for i := range e.history {
		if e.history[i].ID == id {
			e.history = append(e.history[:i], e.history[i+1:]...)
			break
		}
	}
	e.mu.Unlock()
}

func (e *Engine) notice(text string, level NoticeLevel) {
	e.emit(Event{Kind: EventNotice, Notice: text, Level: level})
}

func (e *Engine) emit(ev Event) {
	e.cb(ev)
}

// swallowCancel maps a run's own cancellation to a clean return; the entry
// point that cancelled already set the next state.
func swallowCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
