package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/api/shared"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/service"
)

// CreateTaskRequest represents the request body for capturing a new task
type CreateTaskRequest struct {
	UserInput string `json:"user_input" validate:"required,min=1"`
}

// TaskResponse represents the response data for a task, including the
// enrichment workflow state from its workbench entry.
type TaskResponse struct {
	ID                string     `json:"id"`
	UserInput         string     `json:"user_input"`
	EnrichedText      *string    `json:"enriched_text"`
	Project           *string    `json:"project"`
	Persons           []string   `json:"persons"`
	TaskType          *string    `json:"task_type"`
	Priority          string     `json:"priority"`
	DeadlineText      *string    `json:"deadline_text"`
	DeadlineParsed    *time.Time `json:"deadline_parsed"`
	EffortEstimate    *int       `json:"effort_estimate"`
	Dependencies      []string   `json:"dependencies"`
	Tags              []string   `json:"tags"`
	ExtractedAt       *time.Time `json:"extracted_at"`
	RequiresAttention bool       `json:"requires_attention"`
	EnrichmentStatus  string     `json:"enrichment_status"`
	ErrorMessage      *string    `json:"error_message"`
	MovedToTodosAt    *time.Time `json:"moved_to_todos_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// SuggestionsResponse carries the raw metadata suggestions recorded during
// the last enrichment run, as a JSON string with per-field confidences.
type SuggestionsResponse struct {
	TaskID              string  `json:"task_id"`
	EnrichmentStatus    string  `json:"enrichment_status"`
	MetadataSuggestions *string `json:"metadata_suggestions"`
}

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
	validator   *validator.Validate
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validator.New(),
	}
}

// CreateTask handles POST /api/v1/tasks requests. Capture is synchronous;
// enrichment happens in the background, so the response is 202 Accepted
// with the pending task.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: user_input is required")
		return
	}

	task, err := h.taskService.CreateTaskAndEnqueue(r.Context(), req.UserInput)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	entry, err := h.taskService.GetWorkbenchEntry(r.Context(), task.ID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, taskToResponse(task, entry))
}

// ListTasks handles GET /api/v1/tasks requests, with an optional
// ?enrichment_status= filter.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	var status *domain.EnrichmentStatus
	if raw := r.URL.Query().Get("enrichment_status"); raw != "" {
		s := domain.EnrichmentStatus(raw)
		if !domain.IsValidEnrichmentStatus(s) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid enrichment status filter")
			return
		}
		status = &s
	}

	pairs, err := h.taskService.ListTasks(r.Context(), status)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	responses := make([]TaskResponse, 0, len(pairs))
	for _, pair := range pairs {
		responses = append(responses, taskToResponse(pair.Task, pair.Entry))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetTask handles GET /api/v1/tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDFromURL(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	entry, err := h.taskService.GetWorkbenchEntry(r.Context(), taskID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task, entry))
}

// DeleteTask handles DELETE /api/v1/tasks/{id} requests
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDFromURL(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), taskID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RetryTask handles POST /api/v1/tasks/{id}/retry requests
func (h *TaskHandler) RetryTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDFromURL(w, r)
	if !ok {
		return
	}

	entry, err := h.taskService.RetryTask(r.Context(), taskID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, taskToResponse(task, entry))
}

// MoveToTodos handles POST /api/v1/tasks/{id}/move-to-todos requests
func (h *TaskHandler) MoveToTodos(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDFromURL(w, r)
	if !ok {
		return
	}

	todo, err := h.taskService.MoveToTodos(r.Context(), taskID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, todoToResponse(todo))
}

// GetSuggestions handles GET /api/v1/tasks/{id}/suggestions requests
func (h *TaskHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDFromURL(w, r)
	if !ok {
		return
	}

	entry, err := h.taskService.GetWorkbenchEntry(r.Context(), taskID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SuggestionsResponse{
		TaskID:              taskID.String(),
		EnrichmentStatus:    string(entry.EnrichmentStatus),
		MetadataSuggestions: entry.MetadataSuggestions,
	})
}

// taskIDFromURL parses the {id} URL parameter, responding with 400 on a
// malformed UUID.
func (h *TaskHandler) taskIDFromURL(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return uuid.Nil, false
	}
	return taskID, true
}

// taskToResponse converts a domain.Task and its workbench entry to a
// TaskResponse
func taskToResponse(task *domain.Task, entry *domain.WorkbenchEntry) TaskResponse {
	var taskType *string
	if task.TaskType != nil {
		tt := string(*task.TaskType)
		taskType = &tt
	}

	resp := TaskResponse{
		ID:                task.ID.String(),
		UserInput:         task.UserInput,
		EnrichedText:      task.EnrichedText,
		Project:           task.Project,
		Persons:           emptyIfNil(task.Persons),
		TaskType:          taskType,
		Priority:          string(task.Priority),
		DeadlineText:      task.DeadlineText,
		DeadlineParsed:    task.DeadlineParsed,
		EffortEstimate:    task.EffortEstimate,
		Dependencies:      emptyIfNil(task.Dependencies),
		Tags:              emptyIfNil(task.Tags),
		ExtractedAt:       task.ExtractedAt,
		RequiresAttention: task.RequiresAttention,
		CreatedAt:         task.CreatedAt,
		UpdatedAt:         task.UpdatedAt,
	}

	if entry != nil {
		resp.EnrichmentStatus = string(entry.EnrichmentStatus)
		resp.ErrorMessage = entry.ErrorMessage
		resp.MovedToTodosAt = entry.MovedToTodosAt
	}

	return resp
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
