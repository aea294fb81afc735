// Package httpapi implements the HTTP transport of the search service.
//
// Routes:
//
//	GET /jobs/search   → paginated full-text search with filters
//	GET /jobs/{id}     → one active job with its company name
//	GET /companies     → companies with active jobs (?language=)
//	GET /filters       → the fixed filter enumerations
//	GET /health        → liveness
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rodruizronald/tw-search/internal/jobs"
	"github.com/rodruizronald/tw-search/internal/search"
)

// ─── Response types ───────────────────────────────────────────────────────────

// SearchResponse is the JSON shape of GET /jobs/search.
type SearchResponse struct {
	Items      []search.JobResult `json:"items"`
	TotalCount int                `json:"totalCount"`
	Pagination search.PageInfo    `json:"pagination"`
}

// ─── Handler ─────────────────────────────────────────────────────────────────

// Searcher is the part of search.Service the handlers use.
type Searcher interface {
	SearchRaw(ctx context.Context, raw search.RawParams) (*search.Page, error)
	GetJob(ctx context.Context, id int64) (*search.JobResult, error)
	CompanyFacets(ctx context.Context, lang string) ([]search.CompanyFacet, error)
}

// Handler holds shared dependencies.
type Handler struct {
	svc    Searcher
	logger *zap.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(svc Searcher, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts all search routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/jobs/search", getOnly(h.searchJobs))
	mux.HandleFunc("/jobs/", getOnly(h.getJob))
	mux.HandleFunc("/companies", getOnly(h.listCompanies))
	mux.HandleFunc("/filters", getOnly(h.listFilters))
	mux.HandleFunc("/health", getOnly(h.health))
}

// Routes returns the mux wrapped in the standard middleware stack.
func (h *Handler) Routes(limiter *IPLimiter) http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	mw := []Middleware{RequestID, Recover(h.logger), AccessLog(h.logger)}
	if limiter != nil {
		mw = append(mw, limiter.Middleware)
	}
	return Chain(mux, mw...)
}

func getOnly(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		fn(w, r)
	}
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) searchJobs(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.SearchRaw(r.Context(), search.RawParamsFromValues(r.URL.Query()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	jsonOK(w, SearchResponse{
		Items:      page.Items,
		TotalCount: page.TotalCount,
		Pagination: page.Info(),
	})
}

// getJob handles GET /jobs/{id}
func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/jobs/"), "/")
	if rest == "" || strings.Contains(rest, "/") {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "not found")
		return
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_INPUT", "invalid job id")
		return
	}

	job, err := h.svc.GetJob(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	jsonOK(w, job)
}

func (h *Handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	facets, err := h.svc.CompanyFacets(r.Context(), r.URL.Query().Get("language"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	jsonOK(w, facets)
}

func (h *Handler) listFilters(w http.ResponseWriter, _ *http.Request) {
	jsonOK(w, jobs.AllOptions())
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	jsonOK(w, map[string]string{"status": "ok"})
}
