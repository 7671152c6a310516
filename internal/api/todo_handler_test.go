package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/service"
)

func newTodoRouter(svc service.TaskService) http.Handler {
	h := NewTodoHandler(svc)
	r := chi.NewRouter()
	r.Get("/todos", h.ListTodos)
	r.Patch("/todos/{id}", h.UpdateTodo)
	return r
}

func TestListTodosHandler(t *testing.T) {
	t.Parallel()

	t.Run("lists without a filter", func(t *testing.T) {
		t.Parallel()

		svc := new(MockTaskService)
		todo, err := domain.NewTodo(uuid.New(), nil)
		require.NoError(t, err)
		svc.On("ListTodos", mock.Anything, (*domain.TodoStatus)(nil)).
			Return([]*domain.Todo{todo}, nil)

		req := httptest.NewRequest(http.MethodGet, "/todos", nil)
		rec := httptest.NewRecorder()
		newTodoRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp []TodoResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, todo.ID.String(), resp[0].ID)
	})

	t.Run("passes a valid status filter through", func(t *testing.T) {
		t.Parallel()

		svc := new(MockTaskService)
		status := domain.TodoStatusCompleted
		svc.On("ListTodos", mock.Anything, &status).Return([]*domain.Todo{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/todos?status=completed", nil)
		rec := httptest.NewRecorder()
		newTodoRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]\n", rec.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("rejects an unknown status filter", func(t *testing.T) {
		t.Parallel()

		svc := new(MockTaskService)
		req := httptest.NewRequest(http.MethodGet, "/todos?status=done", nil)
		rec := httptest.NewRecorder()
		newTodoRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "ListTodos", mock.Anything, mock.Anything)
	})
}

func TestUpdateTodoHandler(t *testing.T) {
	t.Parallel()

	t.Run("updates status and position", func(t *testing.T) {
		t.Parallel()

		svc := new(MockTaskService)
		todo, err := domain.NewTodo(uuid.New(), nil)
		require.NoError(t, err)
		require.NoError(t, todo.UpdateStatus(domain.TodoStatusCompleted))
		position := 2
		todo.Position = &position

		status := domain.TodoStatusCompleted
		svc.On("UpdateTodo", mock.Anything, todo.ID, &status, &position).Return(todo, nil)

		body := bytes.NewBufferString(`{"status": "completed", "position": 2}`)
		req := httptest.NewRequest(http.MethodPatch, "/todos/"+todo.ID.String(), body)
		rec := httptest.NewRecorder()
		newTodoRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp TodoResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "completed", resp.Status)
		require.NotNil(t, resp.Position)
		assert.Equal(t, 2, *resp.Position)
		svc.AssertExpectations(t)
	})

	t.Run("rejects an unknown status value", func(t *testing.T) {
		t.Parallel()

		svc := new(MockTaskService)
		todoID := uuid.New()

		body := bytes.NewBufferString(`{"status": "done"}`)
		req := httptest.NewRequest(http.MethodPatch, "/todos/"+todoID.String(), body)
		rec := httptest.NewRecorder()
		newTodoRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "UpdateTodo", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed UUID is 400", func(t *testing.T) {
		t.Parallel()

		svc := new(MockTaskService)
		body := bytes.NewBufferString(`{"status": "completed"}`)
		req := httptest.NewRequest(http.MethodPatch, "/todos/nope", body)
		rec := httptest.NewRecorder()
		newTodoRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown todo is 404", func(t *testing.T) {
		t.Parallel()

		svc := new(MockTaskService)
		todoID := uuid.New()
		svc.On("UpdateTodo", mock.Anything, todoID, mock.Anything, mock.Anything).
			Return(nil, service.ErrTodoNotFound)

		body := bytes.NewBufferString(`{"status": "archived"}`)
		req := httptest.NewRequest(http.MethodPatch, "/todos/"+todoID.String(), body)
		rec := httptest.NewRecorder()
		newTodoRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Todo not found")
	})
}
