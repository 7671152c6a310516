package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell-api/internal/config"
	"github.com/taskwell/taskwell-api/internal/llm"
)

func validLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		GeminiAPIKey:   "AIzaSyTestKey1234567890",
		ModelName:      "gemini-2.5-flash",
		TimeoutSeconds: 30,
		MaxRetries:     3,
	}
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	t.Run("accepts a valid configuration", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, validateConfig(validLLMConfig()))
	})

	tests := []struct {
		name    string
		mutate  func(cfg *config.LLMConfig)
		wantMsg string
	}{
		{
			name:    "missing API key",
			mutate:  func(cfg *config.LLMConfig) { cfg.GeminiAPIKey = "" },
			wantMsg: "GEMINI_API_KEY is required",
		},
		{
			name:    "malformed API key",
			mutate:  func(cfg *config.LLMConfig) { cfg.GeminiAPIKey = "sk-wrong-provider" },
			wantMsg: "invalid Gemini API key format",
		},
		{
			name:    "unsupported model",
			mutate:  func(cfg *config.LLMConfig) { cfg.ModelName = "gpt-4" },
			wantMsg: "unsupported model",
		},
		{
			name:    "timeout below minimum",
			mutate:  func(cfg *config.LLMConfig) { cfg.TimeoutSeconds = 1 },
			wantMsg: "timeout must be between",
		},
		{
			name:    "timeout above maximum",
			mutate:  func(cfg *config.LLMConfig) { cfg.TimeoutSeconds = 600 },
			wantMsg: "timeout must be between",
		},
		{
			name:    "negative retries",
			mutate:  func(cfg *config.LLMConfig) { cfg.MaxRetries = -1 },
			wantMsg: "max retries must be between",
		},
		{
			name:    "excessive retries",
			mutate:  func(cfg *config.LLMConfig) { cfg.MaxRetries = 50 },
			wantMsg: "max retries must be between",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validLLMConfig()
			tc.mutate(&cfg)

			err := validateConfig(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, llm.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}
