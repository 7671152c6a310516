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

// UpdateTodoRequest represents the request body for updating a todo.
// Both fields are optional; omitted fields are left unchanged.
type UpdateTodoRequest struct {
	Status   *string `json:"status" validate:"omitempty,oneof=open completed archived"`
	Position *int    `json:"position"`
}

// TodoResponse represents the response data for a todo
type TodoResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Status    string    `json:"status"`
	Position  *int      `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TodoHandler handles todo-related HTTP requests
type TodoHandler struct {
	taskService service.TaskService
	validator   *validator.Validate
}

// NewTodoHandler creates a new TodoHandler
func NewTodoHandler(taskService service.TaskService) *TodoHandler {
	return &TodoHandler{
		taskService: taskService,
		validator:   validator.New(),
	}
}

// ListTodos handles GET /api/v1/todos requests, with an optional ?status=
// filter.
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	var status *domain.TodoStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.TodoStatus(raw)
		if !domain.IsValidTodoStatus(s) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid todo status filter")
			return
		}
		status = &s
	}

	todos, err := h.taskService.ListTodos(r.Context(), status)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	responses := make([]TodoResponse, 0, len(todos))
	for _, todo := range todos {
		responses = append(responses, todoToResponse(todo))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// UpdateTodo handles PATCH /api/v1/todos/{id} requests
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	todoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid todo ID")
		return
	}

	var req UpdateTodoRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: status must be open, completed, or archived")
		return
	}

	var status *domain.TodoStatus
	if req.Status != nil {
		s := domain.TodoStatus(*req.Status)
		status = &s
	}

	todo, err := h.taskService.UpdateTodo(r.Context(), todoID, status, req.Position)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, todoToResponse(todo))
}

// todoToResponse converts a domain.Todo to a TodoResponse
func todoToResponse(todo *domain.Todo) TodoResponse {
	return TodoResponse{
		ID:        todo.ID.String(),
		TaskID:    todo.TaskID.String(),
		Status:    string(todo.Status),
		Position:  todo.Position,
		CreatedAt: todo.CreatedAt,
		UpdatedAt: todo.UpdatedAt,
	}
}
