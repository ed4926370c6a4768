package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/callhighlights/internal/controller"
	"github.com/kalambet/callhighlights/internal/render"
)

const maxRequestBodySize = 1 << 20 // 1MB

// WebDeps holds what the HTML page handlers need.
type WebDeps struct {
	Controller  *controller.Controller
	DefaultMode render.Mode
}

// NewWebHandler serves the server-rendered page and its form endpoints.
// The view mode travels with each request (query string or hidden form
// field) so no handler keeps display state between requests.
func NewWebHandler(deps WebDeps) http.Handler {
	if deps.DefaultMode == "" {
		deps.DefaultMode = render.ModeGrouped
	}

	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Get("/", handlePage(deps))
	r.Post("/calls", handleSubmit(deps))
	r.Post("/calls/{id}/delete", handleDelete(deps))
	r.Post("/view/toggle", handleToggleView(deps))
	r.Post("/theme/toggle", handleToggleTheme(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handlePage(deps WebDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := modeParam(r.URL.Query().Get("view"), deps.DefaultMode)
		writePage(w, http.StatusOK, deps.Controller.Load(mode))
	}
}

func handleSubmit(deps WebDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !parseForm(w, r) {
			return
		}
		mode := modeParam(r.PostForm.Get("view"), deps.DefaultMode)

		page, err := deps.Controller.Submit(controller.Submission{
			Date:       r.PostForm.Get("date"),
			Company:    r.PostForm.Get("company"),
			Transcript: r.PostForm.Get("transcript"),
		}, mode)

		var verr *controller.ValidationError
		switch {
		case errors.As(err, &verr):
			writePage(w, http.StatusUnprocessableEntity, page)
		case err != nil:
			slog.Error("saving call", "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save call: %v", err)
		default:
			redirectToPage(w, r, mode)
		}
	}
}

func handleDelete(deps WebDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid call id %q", chi.URLParam(r, "id"))
			return
		}
		if !parseForm(w, r) {
			return
		}
		mode := modeParam(r.PostForm.Get("view"), deps.DefaultMode)

		if _, err := deps.Controller.Delete(id, mode); err != nil {
			slog.Error("deleting call", "id", id, "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete call: %v", err)
			return
		}
		redirectToPage(w, r, mode)
	}
}

// handleToggleView reloads the calls and renders them in the other mode.
func handleToggleView(deps WebDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !parseForm(w, r) {
			return
		}
		mode := modeParam(r.PostForm.Get("view"), deps.DefaultMode)
		writePage(w, http.StatusOK, deps.Controller.Toggle(mode))
	}
}

func handleToggleTheme(deps WebDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !parseForm(w, r) {
			return
		}
		mode := modeParam(r.PostForm.Get("view"), deps.DefaultMode)

		if _, err := deps.Controller.ToggleTheme(); err != nil {
			slog.Warn("saving theme preference", "error", err)
		}
		redirectToPage(w, r, mode)
	}
}

// parseForm reads a size-limited form body and answers 400 when it cannot.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := r.ParseForm(); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid form: %v", err)
		return false
	}
	return true
}

func modeParam(raw string, fallback render.Mode) render.Mode {
	if raw == "" {
		return fallback
	}
	m, err := render.ParseMode(raw)
	if err != nil {
		return fallback
	}
	return m
}

func redirectToPage(w http.ResponseWriter, r *http.Request, mode render.Mode) {
	http.Redirect(w, r, "/?view="+url.QueryEscape(string(mode)), http.StatusSeeOther)
}

func writePage(w http.ResponseWriter, code int, p render.Page) {
	var buf bytes.Buffer
	if err := render.HTML(&buf, p); err != nil {
		slog.Error("rendering page", "error", err)
		httpError(w, http.StatusInternalServerError, "api_error", "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
