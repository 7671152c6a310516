package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/llm"
)

// Result is post-processed extraction output: the gateway's raw fields with
// names normalized, tags merged with scanned hashtags, and free-text enums
// coerced into domain types. Confidence scores pass through untouched.
type Result struct {
	Project           *string
	ProjectConfidence float64

	Persons           []string
	PersonsConfidence float64

	// DeadlineText is the natural-language phrase as extracted; timestamp
	// resolution is the deadline package's job, not this one's.
	DeadlineText       *string
	DeadlineConfidence float64

	TaskType           *domain.TaskType
	TaskTypeConfidence float64

	Priority           *domain.Priority
	PriorityConfidence float64

	EffortEstimate   *int
	EffortConfidence float64

	Dependencies           []string
	DependenciesConfidence float64

	Tags           []string
	TagsConfidence float64

	ChainOfThought *string
}

// Extractor runs metadata extraction through an LLM gateway and applies the
// deterministic cleanup passes on the result.
type Extractor struct {
	gateway llm.Gateway
	logger  *slog.Logger
}

// NewExtractor creates an Extractor backed by the given gateway.
func NewExtractor(gateway llm.Gateway, logger *slog.Logger) (*Extractor, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	return &Extractor{
		gateway: gateway,
		logger:  logger.With(slog.String("component", "extractor")),
	}, nil
}

// Extract pulls structured metadata from task text. Whitespace-only input
// short-circuits to an empty zero-confidence Result without touching the
// gateway. Gateway errors pass through unchanged so the caller's retry
// policy can classify them.
func (e *Extractor) Extract(ctx context.Context, text string, referenceTime time.Time) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return emptyResult(), nil
	}

	raw, err := e.gateway.Extract(ctx, text, referenceTime)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Project:                raw.Project,
		ProjectConfidence:      raw.ProjectConfidence,
		PersonsConfidence:      raw.PersonsConfidence,
		DeadlineText:           raw.Deadline,
		DeadlineConfidence:     raw.DeadlineConfidence,
		PriorityConfidence:     raw.PriorityConfidence,
		TaskTypeConfidence:     raw.TaskTypeConfidence,
		EffortEstimate:         raw.EffortEstimate,
		EffortConfidence:       raw.EffortConfidence,
		Dependencies:           normalizeList(raw.Dependencies),
		DependenciesConfidence: raw.DependenciesConfidence,
		TagsConfidence:         raw.TagsConfidence,
		ChainOfThought:         raw.ChainOfThought,
	}

	result.Persons = make([]string, 0, len(raw.Persons))
	for _, p := range raw.Persons {
		if normalized := NormalizePersonName(p); normalized != "" {
			result.Persons = append(result.Persons, normalized)
		}
	}

	result.Tags = MergeTags(ExtractTags(text), raw.Tags)

	if raw.TaskType != nil {
		tt := domain.TaskTypeFromString(*raw.TaskType)
		result.TaskType = &tt
	}
	if raw.Priority != nil {
		p := domain.PriorityFromString(*raw.Priority)
		result.Priority = &p
	}

	e.logger.DebugContext(ctx, "post-processed extraction",
		slog.Int("persons", len(result.Persons)),
		slog.Int("tags", len(result.Tags)),
		slog.Bool("requires_attention", RequiresAttention(result)))

	return result, nil
}

// MarshalSuggestions serializes the full result, including every confidence
// score, into the JSON blob stored on the workbench entry for review.
func MarshalSuggestions(r *Result) (string, error) {
	payload := map[string]any{
		"project":                 r.Project,
		"project_confidence":      r.ProjectConfidence,
		"persons":                 r.Persons,
		"persons_confidence":      r.PersonsConfidence,
		"deadline":                r.DeadlineText,
		"deadline_confidence":     r.DeadlineConfidence,
		"task_type":               r.TaskType,
		"task_type_confidence":    r.TaskTypeConfidence,
		"priority":                r.Priority,
		"priority_confidence":     r.PriorityConfidence,
		"effort_estimate":         r.EffortEstimate,
		"effort_confidence":       r.EffortConfidence,
		"dependencies":            r.Dependencies,
		"dependencies_confidence": r.DependenciesConfidence,
		"tags":                    r.Tags,
		"tags_confidence":         r.TagsConfidence,
		"chain_of_thought":        r.ChainOfThought,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal suggestions: %w", err)
	}
	return string(data), nil
}

func emptyResult() *Result {
	return &Result{
		Persons:      []string{},
		Dependencies: []string{},
		Tags:         []string{},
	}
}

func normalizeList(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
