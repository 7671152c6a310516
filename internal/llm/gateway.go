package llm

import (
	"context"
	"time"
)

// Gateway wraps the two LLM capabilities the enrichment pipeline needs:
// free-text enrichment and schema-constrained metadata extraction.
// Implementations live under internal/platform; the pipeline and the
// orchestrator only ever see this interface.
// Version: 1.0
type Gateway interface {
	// Enrich rewrites raw task text for clarity and correctness while
	// preserving every entity (names, dates, projects, tags) in the input.
	// Empty or whitespace-only input fails with ErrEmptyInput before any
	// provider call. Transport or provider failures surface as a classified
	// *GatewayError.
	Enrich(ctx context.Context, text string) (string, error)

	// Extract asks the provider for structured metadata with per-field
	// confidence scores, using referenceTime to anchor relative dates in
	// the prompt. Empty input fails with ErrEmptyInput. A malformed or
	// non-JSON provider response is a non-retryable *GatewayError.
	Extract(ctx context.Context, text string, referenceTime time.Time) (*ExtractionResult, error)
}

// ExtractionResult is the raw structured output of a metadata extraction
// call: each semantic field paired with a confidence score in [0,1], plus
// the model's short justification. Post-processing (name normalization, tag
// merging, enum coercion) happens downstream in the extraction package,
// never here.
type ExtractionResult struct {
	Project           *string  `json:"project"`
	ProjectConfidence float64  `json:"project_confidence"`
	Persons           []string `json:"persons"`
	PersonsConfidence float64  `json:"persons_confidence"`

	// Deadline is the original natural-language phrase, not a timestamp.
	Deadline           *string `json:"deadline"`
	DeadlineConfidence float64 `json:"deadline_confidence"`

	TaskType           *string `json:"task_type"`
	TaskTypeConfidence float64 `json:"task_type_confidence"`
	Priority           *string `json:"priority"`
	PriorityConfidence float64 `json:"priority_confidence"`

	EffortEstimate   *int    `json:"effort_estimate"`
	EffortConfidence float64 `json:"effort_confidence"`

	Dependencies           []string `json:"dependencies"`
	DependenciesConfidence float64  `json:"dependencies_confidence"`
	Tags                   []string `json:"tags"`
	TagsConfidence         float64  `json:"tags_confidence"`

	ChainOfThought *string `json:"chain_of_thought"`
}
