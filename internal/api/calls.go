package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/callhighlights/internal/calls"
	"github.com/kalambet/callhighlights/internal/insights"
)

// CallStore abstracts the call collection for the JSON API and MCP server.
// Implemented by calls.Store.
type CallStore interface {
	ListAll() []calls.CallRecord
	Get(id int64) (calls.CallRecord, error)
	Create(date, company, transcript string) (calls.CallRecord, error)
	DeleteByID(id int64) error
	Clear() error
}

type CreateCallRequest struct {
	Date       string `json:"date"`
	Company    string `json:"company"`
	Transcript string `json:"transcript"`
}

// CompanyGroup is one company bucket as returned by GET /groups.
type CompanyGroup struct {
	Company string `json:"company"`
	insights.CompanyStats
	Calls []calls.CallRecord `json:"calls"`
}

type AppDeps struct {
	Calls CallStore
	Token string
}

// NewAppHandler returns the bearer-protected JSON API over the call collection.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(BearerAuth(deps.Token))

	r.Get("/calls", handleListCalls(deps))
	r.Post("/calls", handleCreateCall(deps))
	r.Delete("/calls", handlePurgeCalls(deps))
	r.Get("/calls/{id}", handleGetCall(deps))
	r.Delete("/calls/{id}", handleDeleteCall(deps))
	r.Get("/insights", handleInsights(deps))
	r.Get("/groups", handleGroups(deps))

	return r
}

func handleListCalls(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Calls.ListAll())
	}
}

func handleCreateCall(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req CreateCallRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		rec, err := deps.Calls.Create(req.Date, req.Company, req.Transcript)
		if errors.Is(err, calls.ErrEmptyTranscript) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "transcript is required")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save call: %v", err)
			return
		}

		writeJSON(w, http.StatusCreated, rec)
	}
}

func handleGetCall(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := callID(w, r)
		if !ok {
			return
		}

		rec, err := deps.Calls.Get(id)
		if errors.Is(err, calls.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "call not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get call: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, rec)
	}
}

// handleDeleteCall succeeds for unknown ids too; deleting is idempotent.
func handleDeleteCall(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := callID(w, r)
		if !ok {
			return
		}

		if err := deps.Calls.DeleteByID(id); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete call: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func handlePurgeCalls(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Calls.Clear(); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to purge calls: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "purged"})
	}
}

func handleInsights(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, insights.Summarize(deps.Calls.ListAll()))
	}
}

func handleGroups(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, companyGroups(deps.Calls.ListAll()))
	}
}

func companyGroups(records []calls.CallRecord) []CompanyGroup {
	g := insights.GroupByCompany(records)
	groups := make([]CompanyGroup, 0, len(g.Companies))
	for _, c := range g.Companies {
		groups = append(groups, CompanyGroup{
			Company:      c,
			CompanyStats: g.Stats(c),
			Calls:        g.Buckets[c],
		})
	}
	return groups
}

func callID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid call id %q", raw)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
