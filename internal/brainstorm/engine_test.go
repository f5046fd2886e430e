package brainstorm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yosoyorhan/Fikir-motoru/internal/conversation"
	"github.com/yosoyorhan/Fikir-motoru/internal/gateway"
	"github.com/yosoyorhan/Fikir-motoru/internal/persona"
)

// smallTeam mutes everyone but Moderator, Pazar Araştırmacısı and Geliştirici,
// giving a 3-member roster and a 9-turn budget.
func smallTeam() persona.FocusMap {
	return persona.FocusMap{
		persona.UserPersona:      persona.Muted,
		persona.FinancialAnalyst: persona.Muted,
		persona.IdeaMan:          persona.Muted,
		persona.BigBoss:          persona.Muted,
	}
}

type fakeGen struct {
	mu          sync.Mutex
	turnCalls   []gateway.TurnRequest
	scriptCalls []gateway.ScriptRequest

	turn      func(ctx context.Context, n int, req gateway.TurnRequest) (string, error)
	script    func(req gateway.ScriptRequest) (string, error)
	summaries []gateway.IdeaSummary
	sumErr    error
	detail    string
	detailErr error
	briefing  string
	reply     string
}

func (f *fakeGen) GenerateTurn(ctx context.Context, req gateway.TurnRequest) (string, error) {
	f.mu.Lock()
	f.turnCalls = append(f.turnCalls, req)
	n := len(f.turnCalls)
	fn := f.turn
	f.mu.Unlock()
	if fn == nil {
		return "devam edelim", nil
	}
	return fn(ctx, n, req)
}

func (f *fakeGen) GenerateScript(ctx context.Context, req gateway.ScriptRequest) (string, error) {
	f.mu.Lock()
	f.scriptCalls = append(f.scriptCalls, req)
	fn := f.script
	f.mu.Unlock()
	if fn == nil {
		return "", errors.New("no script configured")
	}
	return fn(req)
}

func (f *fakeGen) Summarize(ctx context.Context, history []conversation.Message) ([]gateway.IdeaSummary, error) {
	return f.summaries, f.sumErr
}

func (f *fakeGen) Detail(ctx context.Context, history []conversation.Message, c gateway.IdeaSummary) (string, error) {
	return f.detail, f.detailErr
}

func (f *fakeGen) SuggestTopics(ctx context.Context) ([]string, error) {
	return []string{"Yapay Zeka Sanatı"}, nil
}

func (f *fakeGen) RateLimitBriefing(ctx context.Context, doc string) (string, error) {
	return f.briefing, nil
}

func (f *fakeGen) AssistantReply(ctx context.Context, history []conversation.Message) (string, error) {
	return f.reply, nil
}

func (f *fakeGen) turnCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.turnCalls)
}

type fakeStore struct {
	mu      sync.Mutex
	saved   []FoundIdea
	titles  []string
	points  int
	saveErr error
}

func (s *fakeStore) SaveIdea(ctx context.Context, idea FoundIdea) (FoundIdea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return FoundIdea{}, s.saveErr
	}
	s.saved = append(s.saved, idea)
	return idea, nil
}

func (s *fakeStore) AwardPoints(ctx context.Context, delta int) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points += delta
	return Profile{Points: s.points, Level: "Başlangıç"}, nil
}

func (s *fakeStore) ListTitles(ctx context.Context) ([]string, error) {
	return s.titles, nil
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) callback(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) notices() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		if ev.Kind == EventNotice {
			out = append(out, ev.Notice)
		}
	}
	return out
}

func (r *recorder) states() []AppState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []AppState
	for _, ev := range r.events {
		if ev.Kind == EventStateChanged {
			out = append(out, ev.State)
		}
	}
	return out
}

func newTestEngine(t *testing.T, gen gateway.Generator, store IdeaStore, rec *recorder) *Engine {
	t.Helper()
	cb := NopCallback
	if rec != nil {
		cb = rec.callback
	}
	e, err := New(Config{Generator: gen, Store: store, Callback: cb})
	require.NoError(t, err)
	return e
}

func TestSessionExhaustsBudgetAndSummarizes(t *testing.T) {
	gen := &fakeGen{
		summaries: []gateway.IdeaSummary{
			{Title: "Akıllı Sera", Summary: "IoT sera."},
			{Title: "Dikey Tarım", Summary: "Şehir içi tarım."},
		},
	}
	rec := &recorder{}
	e := newTestEngine(t, gen, nil, rec)

	err := e.StartSession(context.Background(), Settings{Topic: "akıllı tarım", Focus: smallTeam()})
	require.NoError(t, err)

	assert.Equal(t, StateSessionEnded, e.State())
	assert.Equal(t, 9, gen.turnCount(), "3-member roster gets a 9-turn budget")

	snap := e.Snapshot()
	require.Len(t, snap.Candidates, 2)
	assert.Equal(t, "Akıllı Sera", snap.Candidates[0].Title)
	// system seed + 9 turns
	assert.Len(t, snap.History, 10)

	// Moderator opens, then round-robin.
	assert.Equal(t, persona.Moderator, gen.turnCalls[0].Persona)
	assert.Equal(t, persona.MarketResearcher, gen.turnCalls[1].Persona)
	assert.Equal(t, persona.Developer, gen.turnCalls[2].Persona)
	assert.Equal(t, persona.Moderator, gen.turnCalls[3].Persona)

	assert.Contains(t, rec.states(), StateLoading)
	assert.Contains(t, rec.notices(), "Fikir fırtınası tamamlandı. Potansiyel fikirler özetleniyor...")
}

func TestSessionConcludesOnIdeaMarker(t *testing.T) {
	gen := &fakeGen{
		turn: func(_ context.Context, n int, req gateway.TurnRequest) (string, error) {
			if n == 3 {
				return "SANIRIM BİR FİKİR BULDUM!\nBaşlık: Akıllı Saksı\nAçıklama: Bitki takibi.", nil
			}
			return "tartışalım", nil
		},
	}
	e := newTestEngine(t, gen, nil, nil)

	require.NoError(t, e.StartSession(context.Background(), Settings{Topic: "ev bitkileri", Focus: smallTeam()}))

	assert.Equal(t, StateFinalizing, e.State())
	assert.Equal(t, 3, gen.turnCount(), "loop stops at the idea")

	snap := e.Snapshot()
	require.NotNil(t, snap.FoundIdea)
	assert.Equal(t, "Akıllı Saksı", snap.FoundIdea.Title)
	assert.Equal(t, "Bitki takibi.", snap.FoundIdea.Description)
	assert.Equal(t, StatusPooled, snap.FoundIdea.Status)
	assert.Equal(t, "ev bitkileri", snap.FoundIdea.Topic)
	assert.Len(t, snap.FoundIdea.Conversation, 4, "system seed + 3 turns")
}

func TestFailedExtractionContinuesWithWarning(t *testing.T) {
	gen := &fakeGen{
		turn: func(_ context.Context, n int, req gateway.TurnRequest) (string, error) {
			if n == 2 {
				return "SANIRIM BİR FİKİR BULDUM! Başlık: Başlıksız Fikir", nil
			}
			return "devam", nil
		},
	}
	rec := &recorder{}
	e := newTestEngine(t, gen, nil, rec)

	require.NoError(t, e.StartSession(context.Background(), Settings{Topic: "x", Focus: smallTeam()}))

	assert.Equal(t, StateSessionEnded, e.State(), "extraction failure never concludes the session")
	assert.Equal(t, 9, gen.turnCount())
	assert.Contains(t, rec.notices(), "Yeterince niş bir fikir bulunamadı, ekip devam ediyor...")
}

func TestHumanInputFlow(t *testing.T) {
	gen := &fakeGen{
		turn: func(_ context.Context, n int, req gateway.TurnRequest) (string, error) {
			if n == 2 {
				return "Big Boss, son söz sizin. [AWAITING_BOSS_INPUT]", nil
			}
			return "devam", nil
		},
	}
	rec := &recorder{}
	e := newTestEngine(t, gen, nil, rec)

	require.NoError(t, e.StartSession(context.Background(), Settings{
		Topic:            "drone teslimat",
		Focus:            smallTeam(),
		BigBossActive:    true,
		BigBossInfluence: 80,
	}))
	require.Equal(t, StateAwaitingUserInput, e.State())
	callsAtPause := gen.turnCount()

	// A veto reply still enters history; the loop resumes with a fresh budget.
	gen.mu.Lock()
	gen.turn = nil
	gen.mu.Unlock()
	require.NoError(t, e.SubmitHumanInput(context.Background(), "Hayır, bu vizyonumuza uymuyor."))

	assert.Contains(t, rec.notices(), "Big Boss fikri beğenmedi, ekip yeni bir yön arıyor.")
	assert.Equal(t, StateSessionEnded, e.State())
	assert.Equal(t, callsAtPause+9, gen.turnCount(), "resume restarts the full budget")

	var bossMsg bool
	for _, m := range e.History() {
		if m.Sender == persona.BigBoss && m.Text == "Hayır, bu vizyonumuza uymuyor." {
			bossMsg = true
		}
	}
	assert.True(t, bossMsg, "the Big Boss reply must be in history")
}

func TestSubmitHumanInputRequiresAwaitingState(t *testing.T) {
	e := newTestEngine(t, &fakeGen{}, nil, nil)
	err := e.SubmitHumanInput(context.Background(), "merhaba")
	assert.Error(t, err)
}

func TestGenerationFailureSubstitutesApology(t *testing.T) {
	boom := errors.New("backend down")
	gen := &fakeGen{
		turn: func(_ context.Context, n int, req gateway.TurnRequest) (string, error) {
			return "", boom
		},
		summaries: []gateway.IdeaSummary{{Title: "T", Summary: "S"}},
	}
	e := newTestEngine(t, gen, nil, nil)

	require.NoError(t, e.StartSession(context.Background(), Settings{Topic: "x", Focus: smallTeam()}))

	assert.Equal(t, StateSessionEnded, e.State(), "turn failures are never fatal")
	for _, m := range e.History()[1:] {
		assert.Contains(t, m.Text, "yanıt oluşturulurken bir hata oluştu")
		assert.False(t, m.Pending)
	}
}

func TestFastPathFlash(t *testing.T) {
	script := "Moderatör: Konu güzel.\nGeliştirici: Uygulama yapalım. [FİKİR BULDUM]\nBaşlık: Mobil Uygulama\nAçıklama: Hızlı fikir."
	gen := &fakeGen{
		script: func(req gateway.ScriptRequest) (string, error) { return script, nil },
	}
	store := &fakeStore{titles: []string{"Akıllı Saksı", "Dikey Tarım"}}
	e := newTestEngine(t, gen, store, nil)

	require.NoError(t, e.StartSession(context.Background(), Settings{
		Topic:         "mobil",
		Focus:         smallTeam(),
		Flash:         true,
		RememberVault: true, // dropped by the flash adjustment
		BigBossActive: true, // likewise
	}))

	assert.Equal(t, StateFinalizing, e.State())
	require.Len(t, gen.scriptCalls, 1)
	req := gen.scriptCalls[0]
	assert.True(t, req.Flash)
	assert.True(t, req.Concise, "flash forces concise")
	assert.False(t, req.BigBossActive, "flash drops big boss")
	assert.Empty(t, req.VaultHint, "flash drops vault memory")

	snap := e.Snapshot()
	require.NotNil(t, snap.FoundIdea)
	assert.Equal(t, "Mobil Uygulama", snap.FoundIdea.Title)
	assert.Len(t, snap.History, 2)
	assert.Equal(t, 0, gen.turnCount(), "fast path never runs the turn loop")
}

func TestFastPathConciseUsesVault(t *testing.T) {
	gen := &fakeGen{
		script: func(req gateway.ScriptRequest) (string, error) {
			return "Moderatör: olmadı", nil
		},
	}
	store := &fakeStore{titles: []string{"Akıllı Saksı", "Dikey Tarım"}}
	rec := &recorder{}
	e := newTestEngine(t, gen, store, rec)

	require.NoError(t, e.StartSession(context.Background(), Settings{
		Topic:         "tarım",
		Focus:         smallTeam(),
		Concise:       true,
		RememberVault: true,
	}))

	require.Len(t, gen.scriptCalls, 1)
	assert.Equal(t, "Akıllı Saksı, Dikey Tarım", gen.scriptCalls[0].VaultHint)

	// No conclusion marker: back to Idle with the distinct notice.
	assert.Equal(t, StateIdle, e.State())
	assert.Contains(t, rec.notices(), "Ekip bir sonuca varamadı, lütfen tekrar deneyin.")
}

func TestCancelRemovesPendingPlaceholder(t *testing.T) {
	started := make(chan struct{})
	gen := &fakeGen{
		turn: func(ctx context.Context, n int, req gateway.TurnRequest) (string, error) {
			if n == 1 {
				close(started)
			}
			<-ctx.Done()
			return "geç kalmış cevap", ctx.Err()
		},
	}
	e := newTestEngine(t, gen, nil, nil)

	done := make(chan error, 1)
	go func() {
		done <- e.StartSession(context.Background(), Settings{Topic: "x", Focus: smallTeam()})
	}()

	<-started
	e.CancelSession()
	require.NoError(t, <-done)

	assert.Equal(t, StateIdle, e.State())
	history := e.History()
	require.Len(t, history, 1, "only the system seed survives; the pending placeholder is removed")
	assert.Equal(t, persona.System, history[0].Sender)
}

func TestInterveneHandsFloorToUser(t *testing.T) {
	blocked := make(chan struct{})
	gen := &fakeGen{
		turn: func(ctx context.Context, n int, req gateway.TurnRequest) (string, error) {
			if n == 2 {
				close(blocked)
				<-ctx.Done()
				return "", ctx.Err()
			}
			return "devam", nil
		},
	}
	e := newTestEngine(t, gen, nil, nil)

	done := make(chan error, 1)
	go func() {
		done <- e.StartSession(context.Background(), Settings{Topic: "x", Focus: smallTeam()})
	}()

	<-blocked
	e.Intervene()
	require.NoError(t, <-done)
	assert.Equal(t, StateAwaitingUserInput, e.State())
}

func TestAcceptFoundIdea(t *testing.T) {
	gen := &fakeGen{
		turn: func(_ context.Context, n int, req gateway.TurnRequest) (string, error) {
			return "SANIRIM BİR FİKİR BULDUM!\nBaşlık: Sensörlü Tasma\nAçıklama: Evcil takip.", nil
		},
	}
	store := &fakeStore{}
	e := newTestEngine(t, gen, store, nil)

	require.NoError(t, e.StartSession(context.Background(), Settings{Topic: "evcil hayvan", Focus: smallTeam()}))
	require.Equal(t, StateFinalizing, e.State())

	saved, err := e.AcceptFoundIdea(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sensörlü Tasma", saved.Title)

	assert.Equal(t, StateIdle, e.State())
	assert.Empty(t, e.History(), "accepting resets the session")
	require.Len(t, store.saved, 1)
	assert.Equal(t, 50, store.points)
}

func TestAcceptKeepsIdeaOnStoreFailure(t *testing.T) {
	gen := &fakeGen{
		turn: func(_ context.Context, n int, req gateway.TurnRequest) (string, error) {
			return "SANIRIM BİR FİKİR BULDUM!\nBaşlık: Foo\nAçıklama: Bar", nil
		},
	}
	store := &fakeStore{saveErr: errors.New("dynamo down")}
	rec := &recorder{}
	e := newTestEngine(t, gen, store, rec)

	require.NoError(t, e.StartSession(context.Background(), Settings{Topic: "x", Focus: smallTeam()}))

	_, err := e.AcceptFoundIdea(context.Background())
	require.Error(t, err)

	assert.Equal(t, StateFinalizing, e.State(), "state is retained for retry")
	assert.NotNil(t, e.Snapshot().FoundIdea)
	assert.Contains(t, rec.notices(), "Fikir kaydedilirken bir hata oluştu.")
	assert.Equal(t, 0, store.points)
}

func TestRejectFoundIdeaResumesWithFreshBudget(t *testing.T) {
	gen := &fakeGen{
		turn: func(_ context.Context, n int, req gateway.TurnRequest) (string, error) {
			if n == 1 {
				return "SANIRIM BİR FİKİR BULDUM!\nBaşlık: Foo\nAçıklama: Bar", nil
			}
			return "yeni yön arıyoruz", nil
		},
		summaries: []gateway.IdeaSummary{{Title: "T", Summary: "S"}},
	}
	e := newTestEngine(t, gen, nil, nil)

	require.NoError(t, e.StartSession(context.Background(), Settings{Topic: "x", Focus: smallTeam()}))
	require.Equal(t, StateFinalizing, e.State())

	require.NoError(t, e.RejectFoundIdea(context.Background()))

	assert.Equal(t, StateSessionEnded, e.State())
	assert.Equal(t, 1+9, gen.turnCount(), "rejection restarts the full budget")
	assert.Nil(t, e.Snapshot().FoundIdea)

	var rejection bool
	for _, m := range e.History() {
		if m.Sender == persona.User && m.Text == "Bu fikri beğenmedim, devam edelim." {
			rejection = true
		}
	}
	assert.True(t, rejection)
}

func TestDetailCandidate(t *testing.T) {
	gen := &fakeGen{
		summaries: []gateway.IdeaSummary{{Title: "Akıllı Sera", Summary: "IoT sera."}},
		detail:    "- **Konsept Özeti:** Sera takibi.",
	}
	rec := &recorder{}
	e := newTestEngine(t, gen, nil, rec)

	require.NoError(t, e.StartSession(context.Background(), Settings{Topic: "tarım", Focus: smallTeam()}))
	require.Equal(t, StateSessionEnded, e.State())

	snap := e.Snapshot()
	require.Len(t, snap.Candidates, 1)

	detailed, err := e.SelectCandidateForDetail(context.Background(), snap.Candidates[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Akıllı Sera", detailed.Title)
	assert.Equal(t, "- **Konsept Özeti:** Sera takibi.", detailed.Details)
	assert.Equal(t, StateIdle, e.State())
	assert.Contains(t, rec.states(), StateDetailingIdea)

	_, err = e.SelectCandidateForDetail(context.Background(), "yok")
	assert.Error(t, err)
}

func TestContinueBrainstorming(t *testing.T) {
	gen := &fakeGen{
		summaries: []gateway.IdeaSummary{{Title: "T", Summary: "S"}},
	}
	e := newTestEngine(t, gen, nil, nil)

	require.NoError(t, e.StartSession(context.Background(), Settings{Topic: "x", Focus: smallTeam()}))
	require.Equal(t, StateSessionEnded, e.State())
	first := gen.turnCount()

	require.NoError(t, e.ContinueBrainstorming(context.Background()))
	assert.Equal(t, StateSessionEnded, e.State())
	assert.Equal(t, first+9, gen.turnCount())

	var sysContinue bool
	for _, m := range e.History() {
		if m.Sender == persona.System && m.Text == "Kullanıcı beyin fırtınasına devam edilmesini istedi." {
			sysContinue = true
		}
	}
	assert.True(t, sysContinue)
}

func TestEndSessionClearsEverything(t *testing.T) {
	gen := &fakeGen{summaries: []gateway.IdeaSummary{{Title: "T", Summary: "S"}}}
	e := newTestEngine(t, gen, nil, nil)

	require.NoError(t, e.StartSession(context.Background(), Settings{Topic: "x", Focus: smallTeam()}))
	e.EndSession()

	assert.Equal(t, StateIdle, e.State())
	snap := e.Snapshot()
	assert.Empty(t, snap.History)
	assert.Empty(t, snap.Candidates)
	assert.Nil(t, snap.FoundIdea)
}

func TestRateLimitBriefingFlow(t *testing.T) {
	gen := &fakeGen{briefing: "RPM, TPM ve RPD sınırlarına dikkat et."}
	e := newTestEngine(t, gen, nil, nil)

	require.NoError(t, e.StartSession(context.Background(), Settings{Topic: "Hız Sınırları Koyalım", Focus: nil}))

	assert.Equal(t, StateIdle, e.State())
	history := e.History()
	require.Len(t, history, 2)
	assert.Equal(t, persona.System, history[0].Sender)
	assert.Equal(t, persona.RateLimitExpert, history[1].Sender)
	assert.Equal(t, "RPM, TPM ve RPD sınırlarına dikkat et.", history[1].Text)
	assert.Equal(t, 0, gen.turnCount(), "no brainstorm runs for the reserved topic")
}

func TestAssistantChat(t *testing.T) {
	gen := &fakeGen{reply: "Beni Orhan yaptı."}
	e := newTestEngine(t, gen, nil, nil)

	reply, err := e.AssistantChat(context.Background(), "Seni kim yaptı?")
	require.NoError(t, err)
	assert.Equal(t, "Beni Orhan yaptı.", reply)

	history := e.History()
	require.Len(t, history, 2)
	assert.Equal(t, persona.User, history[0].Sender)
	assert.Equal(t, persona.Assistant, history[1].Sender)
	assert.Equal(t, StateIdle, e.State())
}

func TestStartSessionRejectsEmptyTopic(t *testing.T) {
	e := newTestEngine(t, &fakeGen{}, nil, nil)
	err := e.StartSession(context.Background(), Settings{Topic: "   "})
	assert.Error(t, err)
}
