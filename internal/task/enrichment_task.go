package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/extraction"
	"github.com/taskwell/taskwell-api/internal/llm"
)

// Common errors
var (
	ErrNilEnrichmentService = errors.New("enrichment service cannot be nil")
	ErrNilGateway           = errors.New("gateway cannot be nil")
	ErrNilExtractor         = errors.New("extractor cannot be nil")
	ErrNilLogger            = errors.New("logger cannot be nil")
	ErrEmptyTaskID          = errors.New("task ID cannot be empty")
)

// EnrichmentService defines the service operations the enrichment task
// needs: loading the captured task and driving its workbench entry through
// the enrichment lifecycle.
type EnrichmentService interface {
	// GetTask retrieves a captured task by its ID
	GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// MarkProcessing transitions the task's workbench entry to processing
	MarkProcessing(ctx context.Context, taskID uuid.UUID) error

	// ApplyExtraction writes the enriched text and confidence-gated
	// metadata onto the task and records the full suggestion set, then
	// marks the workbench entry completed, all atomically
	ApplyExtraction(ctx context.Context, taskID uuid.UUID, enrichedText string, result *extraction.Result) error

	// MarkFailed records the failure message on the workbench entry
	MarkFailed(ctx context.Context, taskID uuid.UUID, message string) error
}

// MetadataExtractor defines the interface for structured metadata
// extraction
type MetadataExtractor interface {
	// Extract pulls post-processed metadata from task text
	Extract(ctx context.Context, text string, referenceTime time.Time) (*extraction.Result, error)
}

// enrichmentPayload represents the serialized data stored in the task
type enrichmentPayload struct {
	TaskID uuid.UUID `json:"task_id"`
}

// EnrichmentTask implements the Task interface for enriching a captured
// task with LLM-generated text and extracted metadata
type EnrichmentTask struct {
	id        uuid.UUID
	taskID    uuid.UUID
	service   EnrichmentService
	gateway   llm.Gateway
	extractor MetadataExtractor
	retry     llm.RetryPolicy
	logger    *slog.Logger
	status    TaskStatus
}

// NewEnrichmentTask creates a new enrichment task
func NewEnrichmentTask(
	taskID uuid.UUID,
	service EnrichmentService,
	gateway llm.Gateway,
	extractor MetadataExtractor,
	retry llm.RetryPolicy,
	logger *slog.Logger,
) (*EnrichmentTask, error) {
	if service == nil {
		return nil, ErrNilEnrichmentService
	}
	if gateway == nil {
		return nil, ErrNilGateway
	}
	if extractor == nil {
		return nil, ErrNilExtractor
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if taskID == uuid.Nil {
		return nil, ErrEmptyTaskID
	}

	return &EnrichmentTask{
		id:        uuid.New(),
		taskID:    taskID,
		service:   service,
		gateway:   gateway,
		extractor: extractor,
		retry:     retry,
		logger:    logger.With("task_type", TaskTypeEnrichment, "captured_task_id", taskID),
		status:    TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *EnrichmentTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *EnrichmentTask) Type() string {
	return TaskTypeEnrichment
}

// Payload returns the task data as a byte slice
func (t *EnrichmentTask) Payload() []byte {
	data, err := json.Marshal(enrichmentPayload{TaskID: t.taskID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *EnrichmentTask) Status() TaskStatus {
	return t.status
}

// Execute runs the enrichment pipeline for one captured task: load it, mark
// its workbench entry processing, enrich the raw text through the gateway
// with retries, extract structured metadata, then apply the gated results.
// Any failure after the entry is marked processing records the error
// message verbatim on the entry; a task that no longer exists aborts
// without touching anything.
func (t *EnrichmentTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting enrichment task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	// 1. Load the captured task. Failing here, including a task deleted
	// between enqueue and execution, aborts before anything is mutated.
	captured, err := t.service.GetTask(ctx, t.taskID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to retrieve captured task", "error", err)
		return fmt.Errorf("failed to retrieve captured task: %w", err)
	}

	// 2. Mark the workbench entry processing
	if err := t.service.MarkProcessing(ctx, t.taskID); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to mark workbench entry processing", "error", err)
		return fmt.Errorf("failed to mark workbench entry processing: %w", err)
	}

	// 3. Enrich the raw text
	enriched, err := llm.WithRetry(ctx, t.logger, t.retry, "enrich",
		func(ctx context.Context) (string, error) {
			return t.gateway.Enrich(ctx, captured.UserInput)
		})
	if err != nil {
		return t.fail(ctx, "enrichment failed", err)
	}

	// 4. Extract structured metadata from the original input
	result, err := llm.WithRetry(ctx, t.logger, t.retry, "extract",
		func(ctx context.Context) (*extraction.Result, error) {
			return t.extractor.Extract(ctx, captured.UserInput, time.Now().UTC())
		})
	if err != nil {
		return t.fail(ctx, "extraction failed", err)
	}

	// 5. Apply the results atomically and complete the entry
	if err := t.service.ApplyExtraction(ctx, t.taskID, enriched, result); err != nil {
		return t.fail(ctx, "failed to apply extraction", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("enrichment task completed successfully")
	return nil
}

// fail records the error on the workbench entry and finalizes the task
// status. The stored message is the underlying error text, unaltered, so
// the API surfaces exactly what went wrong.
func (t *EnrichmentTask) fail(ctx context.Context, stage string, err error) error {
	t.status = TaskStatusFailed
	t.logger.Error(stage, "error", err)

	if markErr := t.service.MarkFailed(ctx, t.taskID, err.Error()); markErr != nil {
		t.logger.Error("failed to record enrichment failure", "error", markErr)
	}

	return fmt.Errorf("%s: %w", stage, err)
}
