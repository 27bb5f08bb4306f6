package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/jaekwang-park/todo-web/internal/htmx"
	"github.com/jaekwang-park/todo-web/internal/http/view"
	"github.com/jaekwang-park/todo-web/internal/service"
)

type TodoHandler struct {
	svc      *service.TodoService
	renderer *view.Renderer
}

func NewTodoHandler(svc *service.TodoService, renderer *view.Renderer) *TodoHandler {
	return &TodoHandler{svc: svc, renderer: renderer}
}

// ServeHTTP routes /api/todos and /api/todos/{id}
func (h *TodoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/todos")
	rest = strings.TrimPrefix(rest, "/")

	// /api/todos/{id}
	if rest != "" {
		if strings.Contains(rest, "/") {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
			return
		}
		if r.Method != http.MethodDelete {
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		h.handleDelete(w, r, rest)
		return
	}

	// /api/todos
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	}
}

type createTodoRequest struct {
	Text string `json:"text"`
}

func (h *TodoHandler) handleList(w http.ResponseWriter, r *http.Request) {
	todos, err := h.svc.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if htmx.IsRequest(r) {
		writeFragment(w, r, h.renderer, http.StatusOK, view.FragmentTodoList, todos)
		return
	}
	WriteJSON(w, http.StatusOK, todos)
}

func (h *TodoHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if err := decodeBody(w, r, &req, func(get func(string) string) {
		req.Text = get("text")
	}); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	todo, err := h.svc.Add(r.Context(), req.Text)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	switch {
	case htmx.IsRequest(r):
		writeFragment(w, r, h.renderer, http.StatusOK, view.FragmentTodoItem, todo)
	case isJSON(r):
		WriteJSON(w, http.StatusCreated, todo)
	default:
		// Plain form post from a browser without scripting.
		http.Redirect(w, r, "/todos", http.StatusSeeOther)
	}
}

// handleDelete answers 200 with an empty body whether or not the id existed,
// so an HTMX outerHTML swap removes the row either way.
func (h *TodoHandler) handleDelete(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_ID", "todo id must be an integer, got "+strconv.Quote(rawID))
		return
	}

	if _, err := h.svc.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, context.Canceled):
		slog.DebugContext(r.Context(), "request cancelled", "error", err)
		WriteError(w, http.StatusServiceUnavailable, "CANCELLED", "request cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		slog.WarnContext(r.Context(), "request timed out", "error", err)
		WriteError(w, http.StatusServiceUnavailable, "TIMEOUT", "request timed out")
	default:
		slog.ErrorContext(r.Context(), "service error", "error", err)
		WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
