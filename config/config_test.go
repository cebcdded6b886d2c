package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lectureOutline/core"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 60.0, cfg.WindowSize)
	assert.Equal(t, 30.0, cfg.WindowOverlap)
	assert.Equal(t, 0.72, cfg.SimilarityThreshold)
}

func TestValidateRejectsBadCombinations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero window", func(c *Config) { c.WindowSize = 0 }},
		{"negative window", func(c *Config) { c.WindowSize = -10 }},
		{"negative overlap", func(c *Config) { c.WindowOverlap = -1 }},
		{"overlap equals window", func(c *Config) { c.WindowOverlap = c.WindowSize }},
		{"overlap exceeds window", func(c *Config) { c.WindowOverlap = c.WindowSize + 5 }},
		{"threshold above range", func(c *Config) { c.SimilarityThreshold = 1.5 }},
		{"threshold below range", func(c *Config) { c.SimilarityThreshold = -1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var confErr *core.ConfigurationError
			assert.ErrorAs(t, err, &confErr)
		})
	}
}

func TestValidateNormalizesLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SummaryBatchSize = 0
	cfg.MaxConcurrency = -2
	cfg.RequestTimeoutSec = 0

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.SummaryBatchSize)
	assert.Equal(t, 1, cfg.MaxConcurrency)
	assert.Equal(t, 60, cfg.RequestTimeoutSec)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("WINDOW_SIZE", "45")
	t.Setenv("SIMILARITY_THRESHOLD", "0.6")
	t.Setenv("FORCE_LOCAL_SUMMARIZER", "1")
	t.Setenv("CHAT_MODEL", "gpt-4o")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, 45.0, cfg.WindowSize)
	assert.Equal(t, 0.6, cfg.SimilarityThreshold)
	assert.True(t, cfg.ForceLocalSummarizer)
	assert.Equal(t, "gpt-4o", cfg.ChatModel)
}

func TestHasValidAPI(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.HasValidAPI())
	cfg.APIKey = "sk-test"
	assert.True(t, cfg.HasValidAPI())
}
