package search

import (
	"context"

	"github.com/rodruizronald/tw-search/internal/jobs"
)

// Backend executes searches against a job store. Implementations receive
// Params that already passed Validate, report failures as apperr
// DomainErrors, and never return partial pages.
type Backend interface {
	// Search returns one page of matches and the total over the whole
	// filtered set.
	Search(ctx context.Context, p Params) (*Page, error)

	// GetJob returns an active job by id, or a NOT_FOUND error.
	GetJob(ctx context.Context, id int64) (*JobResult, error)

	// CompanyFacets lists companies with active jobs in lang, by name.
	CompanyFacets(ctx context.Context, lang jobs.Language) ([]CompanyFacet, error)

	Close()
}
