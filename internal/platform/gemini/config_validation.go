package gemini

import (
	"fmt"
	"slices"
	"strings"

	"github.com/taskwell/taskwell-api/internal/config"
	"github.com/taskwell/taskwell-api/internal/llm"
)

// supportedModels is the closed set of model identifiers the gateway
// accepts. Anything else fails construction rather than failing on the
// first call.
var supportedModels = []string{
	"gemini-2.5-flash",
	"gemini-2.5-pro",
	"gemini-2.0-flash-exp",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

// Timeout and retry bounds enforced at construction.
const (
	minTimeoutSeconds = 5
	maxTimeoutSeconds = 120
	maxRetryBound     = 10
)

// validateConfig checks the LLM configuration eagerly so that a
// misconfigured deployment fails at startup, not at the first enrichment.
func validateConfig(cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY is required, get one from https://aistudio.google.com/",
			llm.ErrInvalidConfig)
	}

	if !strings.HasPrefix(cfg.GeminiAPIKey, "AIza") {
		return fmt.Errorf("%w: invalid Gemini API key format (must start with %q)",
			llm.ErrInvalidConfig, "AIza")
	}

	if !slices.Contains(supportedModels, cfg.ModelName) {
		return fmt.Errorf("%w: unsupported model %q (supported: %s)",
			llm.ErrInvalidConfig, cfg.ModelName, strings.Join(supportedModels, ", "))
	}

	if cfg.TimeoutSeconds < minTimeoutSeconds || cfg.TimeoutSeconds > maxTimeoutSeconds {
		return fmt.Errorf("%w: timeout must be between %d and %d seconds",
			llm.ErrInvalidConfig, minTimeoutSeconds, maxTimeoutSeconds)
	}

	if cfg.MaxRetries < 0 || cfg.MaxRetries > maxRetryBound {
		return fmt.Errorf("%w: max retries must be between 0 and %d",
			llm.ErrInvalidConfig, maxRetryBound)
	}

	return nil
}
