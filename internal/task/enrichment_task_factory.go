package task

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/llm"
)

// EnrichmentTaskFactory creates EnrichmentTask instances
type EnrichmentTaskFactory struct {
	service   EnrichmentService
	gateway   llm.Gateway
	extractor MetadataExtractor
	retry     llm.RetryPolicy
	logger    *slog.Logger
}

// NewEnrichmentTaskFactory creates a new factory for EnrichmentTasks
func NewEnrichmentTaskFactory(
	service EnrichmentService,
	gateway llm.Gateway,
	extractor MetadataExtractor,
	retry llm.RetryPolicy,
	logger *slog.Logger,
) *EnrichmentTaskFactory {
	return &EnrichmentTaskFactory{
		service:   service,
		gateway:   gateway,
		extractor: extractor,
		retry:     retry,
		logger:    logger.With("component", "enrichment_task_factory"),
	}
}

// CreateTask creates a new EnrichmentTask for the specified captured task
func (f *EnrichmentTaskFactory) CreateTask(taskID uuid.UUID) (Task, error) {
	return NewEnrichmentTask(
		taskID,
		f.service,
		f.gateway,
		f.extractor,
		f.retry,
		f.logger,
	)
}
