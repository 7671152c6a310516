package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/llm"
)

// stubGateway is an in-memory llm.Gateway returning canned extraction output.
type stubGateway struct {
	extractCalls int
	result       *llm.ExtractionResult
	err          error
}

func (s *stubGateway) Enrich(_ context.Context, text string) (string, error) {
	return text, nil
}

func (s *stubGateway) Extract(_ context.Context, _ string, _ time.Time) (*llm.ExtractionResult, error) {
	s.extractCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func strPtr(s string) *string { return &s }

func TestNewExtractor(t *testing.T) {
	t.Parallel()

	t.Run("rejects nil gateway", func(t *testing.T) {
		t.Parallel()

		extractor, err := NewExtractor(nil, slog.Default())
		assert.Nil(t, extractor)
		assert.Error(t, err)
	})

	t.Run("rejects nil logger", func(t *testing.T) {
		t.Parallel()

		extractor, err := NewExtractor(&stubGateway{}, nil)
		assert.Nil(t, extractor)
		assert.Error(t, err)
	})
}

func TestExtract(t *testing.T) {
	t.Parallel()

	referenceTime := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("blank input skips the gateway", func(t *testing.T) {
		t.Parallel()

		gateway := &stubGateway{}
		extractor, err := NewExtractor(gateway, slog.Default())
		require.NoError(t, err)

		result, err := extractor.Extract(context.Background(), "   ", referenceTime)
		require.NoError(t, err)
		assert.Equal(t, 0, gateway.extractCalls)
		assert.Nil(t, result.Project)
		assert.Empty(t, result.Persons)
		assert.Empty(t, result.Tags)
		assert.Zero(t, result.ProjectConfidence)
	})

	t.Run("normalizes persons and drops blanks", func(t *testing.T) {
		t.Parallel()

		gateway := &stubGateway{result: &llm.ExtractionResult{
			Persons:           []string{"  john SMITH ", "   ", "alice"},
			PersonsConfidence: 0.9,
		}}
		extractor, err := NewExtractor(gateway, slog.Default())
		require.NoError(t, err)

		result, err := extractor.Extract(context.Background(), "meet john smith and alice", referenceTime)
		require.NoError(t, err)
		assert.Equal(t, []string{"John Smith", "Alice"}, result.Persons)
		assert.Equal(t, 0.9, result.PersonsConfidence)
	})

	t.Run("merges scanned hashtags with model tags", func(t *testing.T) {
		t.Parallel()

		gateway := &stubGateway{result: &llm.ExtractionResult{
			Tags:           []string{"backend", "bug"},
			TagsConfidence: 0.8,
		}}
		extractor, err := NewExtractor(gateway, slog.Default())
		require.NoError(t, err)

		result, err := extractor.Extract(context.Background(), "fix the #Bug in #auth", referenceTime)
		require.NoError(t, err)
		assert.Equal(t, []string{"bug", "auth", "backend"}, result.Tags)
	})

	t.Run("coerces unknown enums", func(t *testing.T) {
		t.Parallel()

		gateway := &stubGateway{result: &llm.ExtractionResult{
			TaskType: strPtr("brainstorming"),
			Priority: strPtr("critical"),
		}}
		extractor, err := NewExtractor(gateway, slog.Default())
		require.NoError(t, err)

		result, err := extractor.Extract(context.Background(), "think about the roadmap", referenceTime)
		require.NoError(t, err)
		require.NotNil(t, result.TaskType)
		require.NotNil(t, result.Priority)
		assert.Equal(t, domain.TaskTypeOther, *result.TaskType)
		assert.Equal(t, domain.PriorityNormal, *result.Priority)
	})

	t.Run("deadline phrase passes through untouched", func(t *testing.T) {
		t.Parallel()

		gateway := &stubGateway{result: &llm.ExtractionResult{
			Deadline:           strPtr("next friday at 3pm"),
			DeadlineConfidence: 0.85,
		}}
		extractor, err := NewExtractor(gateway, slog.Default())
		require.NoError(t, err)

		result, err := extractor.Extract(context.Background(), "ship it next friday at 3pm", referenceTime)
		require.NoError(t, err)
		require.NotNil(t, result.DeadlineText)
		assert.Equal(t, "next friday at 3pm", *result.DeadlineText)
		assert.Equal(t, 0.85, result.DeadlineConfidence)
	})

	t.Run("nil slices normalize to empty", func(t *testing.T) {
		t.Parallel()

		gateway := &stubGateway{result: &llm.ExtractionResult{}}
		extractor, err := NewExtractor(gateway, slog.Default())
		require.NoError(t, err)

		result, err := extractor.Extract(context.Background(), "do the thing", referenceTime)
		require.NoError(t, err)
		assert.NotNil(t, result.Persons)
		assert.NotNil(t, result.Dependencies)
		assert.NotNil(t, result.Tags)
	})

	t.Run("gateway errors pass through unchanged", func(t *testing.T) {
		t.Parallel()

		gatewayErr := errors.New("provider unavailable")
		gateway := &stubGateway{err: gatewayErr}
		extractor, err := NewExtractor(gateway, slog.Default())
		require.NoError(t, err)

		result, err := extractor.Extract(context.Background(), "do the thing", referenceTime)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, gatewayErr)
	})
}

func TestMarshalSuggestions(t *testing.T) {
	t.Parallel()

	tt := domain.TaskTypeMeeting
	result := &Result{
		Project:            strPtr("taskwell"),
		ProjectConfidence:  0.92,
		Persons:            []string{"John Smith"},
		PersonsConfidence:  0.8,
		TaskType:           &tt,
		TaskTypeConfidence: 0.75,
		Tags:               []string{"planning"},
		TagsConfidence:     0.6,
		ChainOfThought:     strPtr("project named explicitly"),
	}

	raw, err := MarshalSuggestions(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "taskwell", decoded["project"])
	assert.Equal(t, 0.92, decoded["project_confidence"])
	assert.Equal(t, "meeting", decoded["task_type"])
	assert.Equal(t, []any{"John Smith"}, decoded["persons"])
	assert.Equal(t, "project named explicitly", decoded["chain_of_thought"])
	assert.Contains(t, decoded, "deadline_confidence")
	assert.Contains(t, decoded, "effort_confidence")
}
