package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yosoyorhan/Fikir-motoru/internal/conversation"
	"github.com/yosoyorhan/Fikir-motoru/internal/persona"
)

type fakeBackend struct {
	last  completion
	reply string
	err   error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Complete(_ context.Context, c completion) (string, error) {
	f.last = c
	return f.reply, f.err
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		name                      string
		flash, deepDive, bigBoss  bool
		want                      Tier
	}{
		{"default is balanced", false, false, false, TierBalanced},
		{"flash wins", true, false, false, TierFast},
		{"flash wins over deep dive", true, true, false, TierFast},
		{"flash wins over big boss", true, false, true, TierFast},
		{"deep dive goes deep", false, true, false, TierDeep},
		{"big boss goes deep", false, false, true, TierDeep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierFor(tt.flash, tt.deepDive, tt.bigBoss))
		})
	}
}

func TestGenerateTurnBuildsPrompt(t *testing.T) {
	fake := &fakeBackend{reply: "Bence bu pazar çok dar."}
	c := &Client{backend: fake}

	history := []conversation.Message{
		conversation.New(persona.Moderator, "Hoş geldiniz."),
		conversation.New(persona.Developer, "Bir mobil uygulama öneriyorum."),
	}
	got, err := c.GenerateTurn(context.Background(), TurnRequest{
		History: history,
		Persona: persona.MarketResearcher,
		Topic:   "akıllı tarım",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bence bu pazar çok dar.", got)

	assert.Equal(t, TierBalanced, fake.last.Tier)
	assert.Contains(t, fake.last.System, string(persona.MarketResearcher))
	assert.Contains(t, fake.last.Prompt, "Ana Konu: **akıllı tarım**")
	assert.Contains(t, fake.last.Prompt, "Geliştirici: Bir mobil uygulama öneriyorum.")
	assert.Contains(t, fake.last.Prompt, "Pazar Araştırmacısı olarak cevabını yaz:")
}

func TestGenerateTurnDeepDiveUsesDeepTier(t *testing.T) {
	fake := &fakeBackend{reply: "..."}
	c := &Client{backend: fake}

	_, err := c.GenerateTurn(context.Background(), TurnRequest{
		Persona:  persona.Developer,
		Topic:    "x",
		DeepDive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, TierDeep, fake.last.Tier)
}

func TestGenerateTurnUnknownPersona(t *testing.T) {
	c := &Client{backend: &fakeBackend{}}
	_, err := c.GenerateTurn(context.Background(), TurnRequest{Persona: persona.Persona("Stajyer")})
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "turn", genErr.Op)
}

func TestGenerateScriptSystemInstruction(t *testing.T) {
	fake := &fakeBackend{reply: "Moderatör: başlıyoruz"}
	c := &Client{backend: fake}

	_, err := c.GenerateScript(context.Background(), ScriptRequest{
		Topic:            "ev robotları",
		Flash:            true,
		BigBossActive:    true,
		BigBossInfluence: 80,
		MainFocus:        "temizlik robotu",
		VaultHint:        "Akıllı Saksı",
	})
	require.NoError(t, err)

	assert.Equal(t, TierFast, fake.last.Tier, "flash overrides big boss")
	assert.Contains(t, fake.last.System, "### KİŞİLİKLER ###")
	assert.Contains(t, fake.last.System, "[FİKİR BULDUM]")
	assert.Contains(t, fake.last.System, "BIG BOSS AKTİF")
	assert.Contains(t, fake.last.System, "[AWAITING_BOSS_INPUT]")
	assert.Contains(t, fake.last.Prompt, "Konu: **ev robotları**")
	assert.Contains(t, fake.last.Prompt, "ANA ODAK: temizlik robotu")
	assert.Contains(t, fake.last.Prompt, "KASADAKİ FİKİRLER (Bunları Tekrarlama): Akıllı Saksı")
}

func TestGenerateScriptWithoutBossOmitsBossRule(t *testing.T) {
	fake := &fakeBackend{reply: "x"}
	c := &Client{backend: fake}

	_, err := c.GenerateScript(context.Background(), ScriptRequest{Topic: "y"})
	require.NoError(t, err)
	assert.NotContains(t, fake.last.System, "BIG BOSS AKTİF")
	assert.Equal(t, TierBalanced, fake.last.Tier)
}

func TestSummarizeParsesFencedJSON(t *testing.T) {
	fake := &fakeBackend{reply: "```json\n[{\"title\":\"Akıllı Sera\",\"summary\":\"IoT ile sera takibi.\"},{\"title\":\"\",\"summary\":\"boş\"}]\n```"}
	c := &Client{backend: fake}

	ideas, err := c.Summarize(context.Background(), []conversation.Message{
		conversation.New(persona.Moderator, "tarım konuşalım"),
	})
	require.NoError(t, err)
	require.Len(t, ideas, 1, "untitled entries are dropped")
	assert.Equal(t, "Akıllı Sera", ideas[0].Title)
	assert.Equal(t, "IoT ile sera takibi.", ideas[0].Summary)

	assert.Equal(t, TierDeep, fake.last.Tier)
	assert.True(t, fake.last.JSONResponse)
	assert.NotNil(t, fake.last.ResponseSchema)
}

func TestSummarizeRejectsNonJSON(t *testing.T) {
	c := &Client{backend: &fakeBackend{reply: "maalesef fikir yok"}}
	_, err := c.Summarize(context.Background(), nil)
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "summarize", genErr.Op)
}

func TestSuggestTopics(t *testing.T) {
	fake := &fakeBackend{reply: `["Sürdürülebilir Kentsel Tarım", " ", "Oyunlaştırılmış Finans"]`}
	c := &Client{backend: fake}

	topics, err := c.SuggestTopics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Sürdürülebilir Kentsel Tarım", "Oyunlaştırılmış Finans"}, topics)
}

func TestDetailPromptCarriesCandidate(t *testing.T) {
	fake := &fakeBackend{reply: "# Konsept"}
	c := &Client{backend: fake}

	_, err := c.Detail(context.Background(), nil, IdeaSummary{Title: "Akıllı Sera", Summary: "IoT sera."})
	require.NoError(t, err)
	assert.Equal(t, TierDeep, fake.last.Tier)
	assert.Contains(t, fake.last.Prompt, "**Başlık:** Akıllı Sera")
	assert.Contains(t, fake.last.Prompt, "**Özet:** IoT sera.")
}

func TestCompleteWrapsBackendError(t *testing.T) {
	cause := errors.New("boom")
	c := &Client{backend: &fakeBackend{err: cause}}

	_, err := c.GenerateScript(context.Background(), ScriptRequest{Topic: "z"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "fake", genErr.Engine)
}

func TestIsRateLimited(t *testing.T) {
	assert.False(t, IsRateLimited(nil))
	assert.False(t, IsRateLimited(errors.New("connection refused")))
	assert.True(t, IsRateLimited(errors.New("retryable error (status 429): slow down")))
	assert.True(t, IsRateLimited(errors.New("RESOURCE_EXHAUSTED: Quota exceeded")))
}

func TestExtractJSONArrayWithProse(t *testing.T) {
	raw, err := extractJSONArray("İşte sonuç:\n[1, 2]\nBaşka bir şey.")
	require.NoError(t, err)
	assert.Equal(t, "[1, 2]", raw)

	_, err = extractJSONArray("hiç dizi yok")
	assert.Error(t, err)
}

func TestNewUnknownEngine(t *testing.T) {
	_, err := New("gpt")
	assert.Error(t, err)
}
