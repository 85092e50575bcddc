package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8000", cfg.App.Port)
	assert.Equal(t, "ollama", cfg.Ai.LLMProvider)
	assert.Equal(t, 0.3, cfg.Ai.Temperature)
	assert.Equal(t, 512, cfg.Ai.MaxTokens)
	assert.Equal(t, 800, cfg.Retrieval.ChunkSize)
	assert.Equal(t, 3, cfg.Retrieval.TopKResults)
	assert.Equal(t, "en", cfg.Languages.Default)
	assert.Len(t, cfg.Languages.Supported, 12)
	assert.Empty(t, cfg.Audio.WhisperBaseURL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9100")
	t.Setenv("LLM_TEMPERATURE", "0.9")
	t.Setenv("CHUNK_SIZE", "400")
	t.Setenv("LLM_MAX_TOKENS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9100", cfg.App.Port)
	assert.Equal(t, 0.9, cfg.Ai.Temperature)
	assert.Equal(t, 400, cfg.Retrieval.ChunkSize)
	// Unparseable values fall back to the default.
	assert.Equal(t, 512, cfg.Ai.MaxTokens)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "temperature above one",
			mutate:  func(c *Config) { c.Ai.Temperature = 1.5 },
			wantErr: "temperature",
		},
		{
			name:    "negative temperature",
			mutate:  func(c *Config) { c.Ai.Temperature = -0.1 },
			wantErr: "temperature",
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.Retrieval.ChunkSize = 0 },
			wantErr: "chunk size",
		},
		{
			name:    "zero top k",
			mutate:  func(c *Config) { c.Retrieval.TopKResults = 0 },
			wantErr: "top K",
		},
		{
			name:    "non-numeric port",
			mutate:  func(c *Config) { c.App.Port = "eighty" },
			wantErr: "port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsSupported(t *testing.T) {
	langs := LanguageConfig{Supported: []string{"en", "es", "ja"}, Default: "en"}

	assert.True(t, langs.IsSupported("ja"))
	assert.False(t, langs.IsSupported("xx"))
	assert.False(t, langs.IsSupported(""))
}
