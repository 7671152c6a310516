package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskwell/taskwell-api/internal/config"
	"github.com/taskwell/taskwell-api/internal/llm"
	"google.golang.org/genai"
)

// contentGenerator abstracts the genai Models client so the gateway can be
// tested without network access.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gateway implements llm.Gateway against the Google Gemini API.
type Gateway struct {
	logger  *slog.Logger
	cfg     config.LLMConfig
	models  contentGenerator
	timeout time.Duration
}

// Verify Gateway implements the llm.Gateway interface.
var _ llm.Gateway = (*Gateway)(nil)

// New creates a Gemini-backed gateway. It validates the configuration and
// initializes the underlying API client, so an invalid key or model name
// fails at startup rather than on the first request.
func New(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Gateway, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", llm.ErrInvalidConfig)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Info("initialized Gemini gateway",
		slog.String("model", cfg.ModelName),
		slog.Int("timeout_seconds", cfg.TimeoutSeconds))

	return &Gateway{
		logger:  logger.With(slog.String("component", "gemini_gateway")),
		cfg:     cfg,
		models:  client.Models,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, nil
}

// Enrich rewrites free-form task text into a clear, actionable description.
func (g *Gateway) Enrich(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyInput
	}

	prompt := enrichSystemPrompt + "\n\nTask: " + text

	start := time.Now()
	resp, err := g.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.1),
		MaxOutputTokens: 1000,
	})
	if err != nil {
		return "", err
	}

	enriched := strings.TrimSpace(resp.Text())
	if enriched == "" {
		return "", &llm.GatewayError{
			Message:   "Gemini returned an empty enrichment response",
			Retryable: false,
			Err:       llm.ErrInvalidResponse,
		}
	}

	g.logger.DebugContext(ctx, "enriched task text",
		slog.String("model", g.cfg.ModelName),
		slog.Int("input_length", len(text)),
		slog.Int("output_length", len(enriched)),
		slog.Duration("latency", time.Since(start)))

	return enriched, nil
}

// Extract asks the model for structured task metadata with per-field
// confidence scores. The referenceTime anchors relative deadline phrases in
// the prompt.
func (g *Gateway) Extract(ctx context.Context, text string, referenceTime time.Time) (*llm.ExtractionResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, llm.ErrEmptyInput
	}

	prompt := extractionPrompt(text, referenceTime)

	start := time.Now()
	resp, err := g.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.1),
		MaxOutputTokens:  2000,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	raw := resp.Text()
	result, err := parseExtraction(raw)
	if err != nil {
		return nil, &llm.GatewayError{
			Message:   fmt.Sprintf("failed to parse extraction response: %v", err),
			Retryable: false,
			Err:       llm.ErrInvalidResponse,
		}
	}

	g.logger.DebugContext(ctx, "extracted task metadata",
		slog.String("model", g.cfg.ModelName),
		slog.Int("input_length", len(text)),
		slog.Duration("latency", time.Since(start)))

	return result, nil
}

// generate runs a single model call under the configured timeout and
// classifies any provider error.
func (g *Gateway) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.models.GenerateContent(callCtx, g.cfg.ModelName, genai.Text(prompt), cfg)
	if err != nil {
		gwErr := classifyError(err)
		g.logger.WarnContext(ctx, "Gemini API call failed",
			slog.String("model", g.cfg.ModelName),
			slog.String("error", gwErr.Message),
			slog.Bool("retryable", gwErr.Retryable))
		return nil, gwErr
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, &llm.GatewayError{
			Message:   "Gemini returned no candidates",
			Retryable: false,
			Err:       llm.ErrInvalidResponse,
		}
	}
	return resp, nil
}

// parseExtraction decodes the model's JSON payload into an ExtractionResult.
// Some models wrap JSON in markdown fences even when a JSON MIME type is
// requested, so fences are stripped before decoding. Nil slices are
// normalized to empty so callers can range without nil checks.
func parseExtraction(raw string) (*llm.ExtractionResult, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty response body")
	}

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var result llm.ExtractionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if result.Persons == nil {
		result.Persons = []string{}
	}
	if result.Dependencies == nil {
		result.Dependencies = []string{}
	}
	if result.Tags == nil {
		result.Tags = []string{}
	}

	return &result, nil
}
