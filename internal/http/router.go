package http

import (
	"net/http"

	"github.com/jaekwang-park/todo-web/internal/http/handler"
	"github.com/jaekwang-park/todo-web/internal/http/view"
	"github.com/jaekwang-park/todo-web/internal/service"
)

type RouterDeps struct {
	TodoSvc *service.TodoService
	// AuthSvc is nil when Cognito is not configured.
	AuthSvc       *service.AuthService
	Renderer      *view.Renderer
	SecureCookies bool
}

func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// Health check - kept outside /api for load balancer probes
	mux.Handle("/health", handler.NewHealthHandler())

	todoHandler := handler.NewTodoHandler(deps.TodoSvc, deps.Renderer)
	mux.Handle("/api/todos", todoHandler)
	mux.Handle("/api/todos/", todoHandler)

	mux.Handle("/api/auth/", handler.NewAuthHandler(deps.AuthSvc, deps.Renderer, deps.SecureCookies))

	// Pages; the page handler 404s anything it does not know
	mux.Handle("/", handler.NewPageHandler(deps.TodoSvc, deps.Renderer))

	return mux
}
