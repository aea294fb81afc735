package search

import (
	"math"

	"github.com/rodruizronald/tw-search/internal/jobs"
)

// JobResult is a job joined with its company's display name.
type JobResult struct {
	jobs.Job
	CompanyName string `json:"companyName"`
}

// Page is one window of a search. TotalCount counts every match of the
// filtered set, not only the returned items.
type Page struct {
	Items      []JobResult `json:"items"`
	TotalCount int         `json:"totalCount"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}

// EmptyPage is the result of a search with no matches.
func EmptyPage(p Params) *Page {
	return &Page{Items: []JobResult{}, Limit: p.Limit, Offset: p.Offset}
}

// Info derives UI pagination metadata from the page.
func (pg *Page) Info() PageInfo {
	return NewPageInfo(pg.Offset, pg.Limit, pg.TotalCount)
}

// PageInfo is pagination metadata in 1-indexed page terms.
type PageInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

// NewPageInfo computes page = offset/limit + 1, totalPages =
// ceil(total/limit) and hasMore = page < totalPages.
func NewPageInfo(offset, limit, total int) PageInfo {
	if limit <= 0 {
		return PageInfo{Page: 1, Total: total}
	}
	page := offset/limit + 1
	totalPages := (total + limit - 1) / limit
	return PageInfo{
		Page:       page,
		PageSize:   limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

// OffsetForPage converts a 1-indexed page number to a row offset. The
// result saturates at math.MaxInt instead of wrapping.
func OffsetForPage(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	if pageSize > 0 && page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}

// CompanyFacet is one entry of the company filter: a company name and how
// many active jobs it has in a language.
type CompanyFacet struct {
	Name       string `json:"name"`
	ActiveJobs int    `json:"activeJobs"`
}
