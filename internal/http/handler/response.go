package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/jaekwang-park/todo-web/internal/http/view"
)

const maxBodySize = 1 << 20 // 1 MB

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
		},
	})
}

// WriteAlert renders the alert fragment with status 200 so HTMX swaps it
// into the form's alert target.
func WriteAlert(w http.ResponseWriter, renderer *view.Renderer, kind view.AlertKind, message string) {
	if err := renderer.Fragment(w, http.StatusOK, view.FragmentAlert, view.Alert{Kind: kind, Message: message}); err != nil {
		slog.Error("failed to render alert", "error", err)
		http.Error(w, message, http.StatusInternalServerError)
	}
}

func writeFragment(w http.ResponseWriter, r *http.Request, renderer *view.Renderer, status int, name string, data any) {
	if err := renderer.Fragment(w, status, name, data); err != nil {
		slog.ErrorContext(r.Context(), "failed to render fragment", "fragment", name, "error", err)
		WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// isJSON reports whether the request body is declared as JSON.
func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// decodeBody fills dst from a JSON body, or from form fields via fromForm.
// HTMX submits forms urlencoded; API clients send JSON.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, fromForm func(get func(string) string)) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return fmt.Errorf("decode json body: %w", err)
		}
		return nil
	}

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	fromForm(r.PostForm.Get)
	return nil
}
