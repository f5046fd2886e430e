package brainstorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAdjustments(t *testing.T) {
	t.Run("deep dive forces long form and vault", func(t *testing.T) {
		s, err := Resolve(Settings{Topic: "x", DeepDive: true, Concise: true})
		require.NoError(t, err)
		assert.False(t, s.Concise)
		assert.True(t, s.RememberVault)
	})

	t.Run("flash forces concise and drops vault and big boss", func(t *testing.T) {
		s, err := Resolve(Settings{
			Topic:            "x",
			Flash:            true,
			RememberVault:    true,
			BigBossActive:    true,
			BigBossInfluence: 80,
		})
		require.NoError(t, err)
		assert.True(t, s.Concise)
		assert.False(t, s.RememberVault)
		assert.False(t, s.BigBossActive)
		assert.Zero(t, s.BigBossInfluence, "influence is meaningless without the boss")
	})

	t.Run("flash wins over deep dive", func(t *testing.T) {
		s, err := Resolve(Settings{Topic: "x", Flash: true, DeepDive: true})
		require.NoError(t, err)
		assert.True(t, s.Concise)
	})

	t.Run("topic is trimmed and required", func(t *testing.T) {
		s, err := Resolve(Settings{Topic: "  uzay madenciliği  "})
		require.NoError(t, err)
		assert.Equal(t, "uzay madenciliği", s.Topic)

		_, err = Resolve(Settings{Topic: "   "})
		assert.Error(t, err)
	})

	t.Run("influence range is validated", func(t *testing.T) {
		_, err := Resolve(Settings{Topic: "x", BigBossActive: true, BigBossInfluence: 101})
		assert.Error(t, err)
		_, err = Resolve(Settings{Topic: "x", BigBossActive: true, BigBossInfluence: -1})
		assert.Error(t, err)
	})
}

func TestFastPath(t *testing.T) {
	assert.False(t, Settings{}.FastPath())
	assert.True(t, Settings{Flash: true}.FastPath())
	assert.True(t, Settings{Concise: true}.FastPath())
}

func TestIsBigBossRejection(t *testing.T) {
	assert.True(t, IsBigBossRejection("Hayır, bunu İSTEMİYORUM."))
	assert.True(t, IsBigBossRejection("Bu vizyonumuza uymuyor."))
	assert.False(t, IsBigBossRejection("Harika, devam edin!"))
}
