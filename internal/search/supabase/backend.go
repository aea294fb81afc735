// Package supabase runs searches through the Supabase REST API by calling the
// search_jobs, get_active_job and company_facets stored procedures. It is
// used where the service has an API key but no direct database access.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	postgrest "github.com/nedpals/supabase-go/postgrest/pkg"
	"go.uber.org/zap"

	"github.com/rodruizronald/tw-search/internal/apperr"
	"github.com/rodruizronald/tw-search/internal/jobs"
	"github.com/rodruizronald/tw-search/internal/search"
)

const (
	searchFunc = "search_jobs"
	getJobFunc = "get_active_job"
	facetsFunc = "company_facets"
)

// Caller invokes a stored procedure and decodes its JSON result into out.
type Caller interface {
	CallRPC(ctx context.Context, name string, params map[string]any, out any) error
}

type Backend struct {
	rpc    Caller
	logger *zap.Logger
}

func New(rpc Caller, logger *zap.Logger) *Backend {
	return &Backend{rpc: rpc, logger: logger}
}

// rpcRow is one row of search_job_row as PostgREST encodes it.
type rpcRow struct {
	ID               int64     `json:"id"`
	CompanyID        int64     `json:"company_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Responsibilities []string  `json:"responsibilities"`
	SkillMustHave    []string  `json:"skill_must_have"`
	SkillNiceToHave  []string  `json:"skill_nice_to_have"`
	MainTechnologies []string  `json:"main_technologies"`
	Benefits         []string  `json:"benefits"`
	ExperienceLevel  string    `json:"experience_level"`
	EmploymentType   string    `json:"employment_type"`
	Location         string    `json:"location"`
	Province         string    `json:"province"`
	WorkMode         string    `json:"work_mode"`
	JobFunction      string    `json:"job_function"`
	Language         string    `json:"language"`
	City             string    `json:"city"`
	ApplicationURL   string    `json:"application_url"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	CompanyName      string    `json:"company_name"`
	TotalCount       int64     `json:"total_count"`
}

func (r rpcRow) result() search.JobResult {
	return search.JobResult{
		Job: jobs.Job{
			ID:               r.ID,
			CompanyID:        r.CompanyID,
			Title:            r.Title,
			Description:      r.Description,
			Responsibilities: r.Responsibilities,
			SkillMustHave:    r.SkillMustHave,
			SkillNiceToHave:  r.SkillNiceToHave,
			MainTechnologies: r.MainTechnologies,
			Benefits:         r.Benefits,
			ExperienceLevel:  jobs.ExperienceLevel(r.ExperienceLevel),
			EmploymentType:   jobs.EmploymentType(r.EmploymentType),
			Location:         jobs.Location(r.Location),
			Province:         jobs.Province(r.Province),
			WorkMode:         jobs.WorkMode(r.WorkMode),
			JobFunction:      jobs.JobFunction(r.JobFunction),
			Language:         jobs.Language(r.Language),
			City:             r.City,
			ApplicationURL:   r.ApplicationURL,
			IsActive:         r.IsActive,
			CreatedAt:        r.CreatedAt,
			UpdatedAt:        r.UpdatedAt,
		},
		CompanyName: r.CompanyName,
	}
}

// rpcParams builds the named arguments of search_jobs. Unset filters are
// sent as null.
func rpcParams(p search.Params) map[string]any {
	m := map[string]any{
		"p_search_query":     p.Query,
		"p_language":         string(p.Language),
		"p_experience_level": nullable(string(p.ExperienceLevel)),
		"p_employment_type":  nullable(string(p.EmploymentType)),
		"p_location":         nullable(string(p.Location)),
		"p_work_mode":        nullable(string(p.WorkMode)),
		"p_province":         nullable(string(p.Province)),
		"p_job_function":     nullable(string(p.JobFunction)),
		"p_company":          nullable(p.Company),
		"p_date_from":        nil,
		"p_date_to":          nil,
		"p_limit":            p.Limit,
		"p_offset":           p.Offset,
	}
	if p.DateFrom != nil {
		m["p_date_from"] = p.DateFrom.UTC().Format(time.RFC3339Nano)
	}
	if p.DateTo != nil {
		m["p_date_to"] = p.DateTo.UTC().Format(time.RFC3339Nano)
	}
	return m
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (b *Backend) Search(ctx context.Context, p search.Params) (*search.Page, error) {
	var rows []rpcRow
	if err := b.rpc.CallRPC(ctx, searchFunc, rpcParams(p), &rows); err != nil {
		return nil, mapError(err, "search")
	}

	page := search.EmptyPage(p)
	for _, r := range rows {
		page.Items = append(page.Items, r.result())
		page.TotalCount = int(r.TotalCount)
	}

	// Past the end no row carries the count; ask for the first row instead.
	if len(rows) == 0 && p.Offset > 0 {
		countArgs := rpcParams(p)
		countArgs["p_limit"] = 1
		countArgs["p_offset"] = 0
		var first []rpcRow
		if err := b.rpc.CallRPC(ctx, searchFunc, countArgs, &first); err != nil {
			return nil, mapError(err, "count")
		}
		if len(first) > 0 {
			page.TotalCount = int(first[0].TotalCount)
		}
	}

	b.logger.Debug("supabase search executed",
		zap.Int("total", page.TotalCount),
		zap.Int("returned", len(page.Items)))
	return page, nil
}

func (b *Backend) GetJob(ctx context.Context, id int64) (*search.JobResult, error) {
	var rows []rpcRow
	if err := b.rpc.CallRPC(ctx, getJobFunc, map[string]any{"p_id": id}, &rows); err != nil {
		return nil, mapError(err, "get job")
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("job %d not found", id), nil)
	}
	r := rows[0].result()
	return &r, nil
}

type facetRow struct {
	Name       string `json:"name"`
	ActiveJobs int    `json:"active_jobs"`
}

func (b *Backend) CompanyFacets(ctx context.Context, lang jobs.Language) ([]search.CompanyFacet, error) {
	var rows []facetRow
	if err := b.rpc.CallRPC(ctx, facetsFunc, map[string]any{"p_language": string(lang)}, &rows); err != nil {
		return nil, mapError(err, "company facets")
	}
	facets := make([]search.CompanyFacet, 0, len(rows))
	for _, r := range rows {
		facets = append(facets, search.CompanyFacet{Name: r.Name, ActiveJobs: r.ActiveJobs})
	}
	return facets, nil
}

func (b *Backend) Close() {}

// mapError classifies a transport or PostgREST error. PostgREST forwards the
// SQLSTATE of a failed procedure call in RequestError.Code.
func mapError(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Unavailable(op+" timed out", err)
	}

	var reqErr *postgrest.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.Code == "22P02", reqErr.Code == "22007", reqErr.Code == "22008":
			// invalid_text_representation, invalid_datetime_format,
			// datetime_field_overflow
			return apperr.InvalidInput("invalid search parameter", err)
		case reqErr.Code == "57014":
			return apperr.Unavailable("supabase unavailable", err)
		case reqErr.HTTPStatusCode == http.StatusServiceUnavailable,
			reqErr.HTTPStatusCode == http.StatusGatewayTimeout,
			reqErr.HTTPStatusCode == http.StatusTooManyRequests:
			return apperr.Unavailable("supabase unavailable", err)
		}
		return apperr.Internal(op+" failed", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperr.Unavailable("supabase unavailable", err)
	}
	return apperr.Internal(op+" failed", err)
}
