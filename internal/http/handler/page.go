package handler

import (
	"log/slog"
	"net/http"

	"github.com/jaekwang-park/todo-web/internal/http/view"
	"github.com/jaekwang-park/todo-web/internal/middleware"
	"github.com/jaekwang-park/todo-web/internal/service"
)

type PageHandler struct {
	todoSvc  *service.TodoService
	renderer *view.Renderer
}

func NewPageHandler(todoSvc *service.TodoService, renderer *view.Renderer) *PageHandler {
	return &PageHandler{todoSvc: todoSvc, renderer: renderer}
}

var pageTitles = map[string]string{
	view.PageHome:    "Home",
	view.PageSignIn:  "Sign in",
	view.PageSignUp:  "Sign up",
	view.PageConfirm: "Confirm",
	view.PageTodos:   "Todos",
}

// ServeHTTP serves the HTML pages. Anything else under / is a 404.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var name string
	switch r.URL.Path {
	case "/":
		name = view.PageHome
	case "/signin":
		name = view.PageSignIn
	case "/signup":
		name = view.PageSignUp
	case "/confirm":
		name = view.PageConfirm
	case "/todos":
		name = view.PageTodos
	default:
		http.NotFound(w, r)
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := view.PageData{
		Title:    pageTitles[name],
		SignedIn: hasSession(r),
		Email:    r.URL.Query().Get("email"),
	}

	if name == view.PageTodos {
		todos, err := h.todoSvc.List(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to load todos", "error", err)
			http.Error(w, "failed to load todos", http.StatusInternalServerError)
			return
		}
		data.Todos = todos
	}

	if err := h.renderer.Page(w, http.StatusOK, name, data); err != nil {
		slog.ErrorContext(r.Context(), "failed to render page", "page", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// hasSession drives the navigation links only; protected routes are
// guarded by the session middleware.
func hasSession(r *http.Request) bool {
	if middleware.GetUserID(r) != "" {
		return true
	}
	c, err := r.Cookie(middleware.IDTokenCookie)
	return err == nil && c.Value != ""
}
