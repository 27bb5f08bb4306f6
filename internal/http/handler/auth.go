package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jaekwang-park/todo-web/internal/cognito"
	"github.com/jaekwang-park/todo-web/internal/htmx"
	"github.com/jaekwang-park/todo-web/internal/http/view"
	"github.com/jaekwang-park/todo-web/internal/middleware"
	"github.com/jaekwang-park/todo-web/internal/service"
)

// AuthHandler handles the credential endpoints under /api/auth/.
// A nil service means Cognito is not configured; every call then fails with
// NOT_CONFIGURED.
type AuthHandler struct {
	svc           *service.AuthService
	renderer      *view.Renderer
	secureCookies bool
}

func NewAuthHandler(svc *service.AuthService, renderer *view.Renderer, secureCookies bool) *AuthHandler {
	return &AuthHandler{svc: svc, renderer: renderer, secureCookies: secureCookies}
}

// ServeHTTP routes /api/auth/* requests.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/auth/")
	path = strings.TrimRight(path, "/")

	switch path {
	case "signin":
		h.requirePost(w, r, h.handleSignIn)
	case "signup":
		h.requirePost(w, r, h.handleSignUp)
	case "confirm":
		h.requirePost(w, r, h.handleConfirm)
	case "signout":
		h.requirePost(w, r, h.handleSignOut)
	default:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	}
}

func (h *AuthHandler) requirePost(w http.ResponseWriter, r *http.Request, handler func(http.ResponseWriter, *http.Request)) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	handler(w, r)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

func (h *AuthHandler) decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	err := decodeBody(w, r, &req, func(get func(string) string) {
		req.Email = get("email")
		req.Password = get("password")
		req.Code = get("code")
	})
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return req, false
	}
	req.Email = strings.TrimSpace(req.Email)
	return req, true
}

func (h *AuthHandler) configured(w http.ResponseWriter, r *http.Request) bool {
	if h.svc != nil {
		return true
	}
	h.fail(w, r, http.StatusServiceUnavailable, "NOT_CONFIGURED", "sign-in is not configured on this server")
	return false
}

func (h *AuthHandler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w, r) {
		return
	}
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	out, err := h.svc.SignIn(r.Context(), service.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleAuthError(w, r, err)
		return
	}

	maxAge := int(out.ExpiresIn)
	h.setCookie(w, middleware.IDTokenCookie, out.IDToken, maxAge)
	h.setCookie(w, middleware.AccessTokenCookie, out.AccessToken, maxAge)
	htmx.Redirect(w, "/todos")

	if htmx.IsRequest(r) {
		w.WriteHeader(http.StatusOK)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (h *AuthHandler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w, r) {
		return
	}
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	out, err := h.svc.SignUp(r.Context(), service.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleAuthError(w, r, err)
		return
	}

	htmx.Redirect(w, "/confirm?email="+url.QueryEscape(req.Email))
	if htmx.IsRequest(r) {
		w.WriteHeader(http.StatusOK)
		return
	}
	WriteJSON(w, http.StatusCreated, out)
}

func (h *AuthHandler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w, r) {
		return
	}
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	if err := h.svc.ConfirmSignUp(r.Context(), service.ConfirmSignUpInput{
		Email: req.Email,
		Code:  req.Code,
	}); err != nil {
		h.handleAuthError(w, r, err)
		return
	}

	htmx.Redirect(w, "/signin")
	if htmx.IsRequest(r) {
		w.WriteHeader(http.StatusOK)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "email confirmed"})
}

// handleSignOut always clears the session. Revoking the tokens at Cognito is
// best-effort.
func (h *AuthHandler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.AccessTokenCookie); err == nil && c.Value != "" && h.svc != nil {
		if err := h.svc.SignOut(r.Context(), service.SignOutInput{AccessToken: c.Value}); err != nil {
			slog.WarnContext(r.Context(), "global sign out failed", "error", err)
		}
	}

	h.setCookie(w, middleware.IDTokenCookie, "", -1)
	h.setCookie(w, middleware.AccessTokenCookie, "", -1)
	htmx.Redirect(w, "/")

	if htmx.IsRequest(r) {
		w.WriteHeader(http.StatusOK)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// fail reports a failed credential request through X-Auth-Error, plus an
// alert fragment for HTMX or a JSON error for API clients.
func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set(middleware.AuthErrorHeader, code)
	if htmx.IsRequest(r) {
		WriteAlert(w, h.renderer, view.AlertError, message)
		return
	}
	WriteError(w, status, code, message)
}

// handleAuthError maps cognito sentinel errors and service errors to responses.
// Messages shown to the client are fixed; details are only logged.
func (h *AuthHandler) handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	if info, ok := cognito.LookupError(err); ok {
		slog.WarnContext(r.Context(), "auth error", "code", info.Code, "detail", err.Error())
		h.fail(w, r, info.Status, info.Code, info.Message)
		return
	}

	if errors.Is(err, service.ErrInvalidInput) {
		h.fail(w, r, http.StatusBadRequest, "INVALID_INPUT", strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": "))
		return
	}

	slog.ErrorContext(r.Context(), "auth internal error", "error", err.Error())
	h.fail(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "something went wrong, please try again")
}
