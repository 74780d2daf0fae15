package profile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileValidate(t *testing.T) {
	t.Run("sqlite defaults DSN under data dir", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "sqlite", Data: t.TempDir()}
		require.NoError(t, p.Validate())
		assert.Equal(t, filepath.Join(p.Data, "adminparrot_dev.db"), p.DSN)
	})

	t.Run("postgres requires DSN", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "postgres", Data: t.TempDir()}
		assert.Error(t, p.Validate())
	})

	t.Run("unknown driver is rejected", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "mysql", Data: t.TempDir()}
		assert.Error(t, p.Validate())
	})

	t.Run("invalid mode falls back to dev", func(t *testing.T) {
		p := &Profile{Mode: "staging", Driver: "sqlite", Data: t.TempDir()}
		require.NoError(t, p.Validate())
		assert.Equal(t, "dev", p.Mode)
		assert.True(t, p.IsDev())
	})

	t.Run("llm defaults", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "sqlite", Data: t.TempDir()}
		require.NoError(t, p.Validate())
		assert.Equal(t, float32(0.7), p.LLMTemperature)
		assert.Equal(t, 1000, p.LLMMaxTokens)
		assert.Equal(t, 60*time.Second, p.LLMTimeout)
		assert.Equal(t, 10, p.HistoryContextLimit)
	})
}

func TestFromViper(t *testing.T) {
	v := viper.New()
	v.Set("mode", "dev")
	v.Set("driver", "sqlite")
	v.Set("data", t.TempDir())
	v.Set("port", 9000)
	v.Set("llm-model", "deepseek-chat")
	v.Set("history-context-limit", 20)
	v.Set("mock-stats", true)

	p, err := FromViper(v, "0.0.1-test")
	require.NoError(t, err)
	assert.Equal(t, 9000, p.Port)
	assert.Equal(t, "deepseek-chat", p.LLMModel)
	assert.Equal(t, 20, p.HistoryContextLimit)
	assert.True(t, p.MockStats)
	assert.Equal(t, "0.0.1-test", p.Version)
}
