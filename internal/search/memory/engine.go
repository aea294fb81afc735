// Package memory is an in-process search Backend over a fixed set of jobs.
// It applies the same predicates, ordering and counting as the Postgres
// query, using the textsearch analyzer in place of tsvector matching. It
// serves local development from a fixtures file and is the reference
// engine in tests.
package memory

import (
	"context"
	"fmt"
	"os"
	"sort"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/rodruizronald/tw-search/internal/apperr"
	"github.com/rodruizronald/tw-search/internal/jobs"
	"github.com/rodruizronald/tw-search/internal/search"
	"github.com/rodruizronald/tw-search/internal/textsearch"
)

type indexedJob struct {
	job           jobs.Job
	company       string
	companyFolded string
	vector        textsearch.Vector
}

// Engine is read-only after construction and safe for concurrent use.
type Engine struct {
	// ordered newest first, id descending on ties
	jobs []indexedJob
	byID map[int64]*indexedJob
}

// Fixtures is the YAML document accepted by LoadFile.
type Fixtures struct {
	Companies []jobs.Company `yaml:"companies"`
	Jobs      []jobs.Job     `yaml:"jobs"`
}

// New indexes list. Every job must reference a known company and carry
// valid enumerated attributes; duplicate ids are rejected.
func New(companies []jobs.Company, list []jobs.Job) (*Engine, error) {
	names := make(map[int64]string, len(companies))
	for _, c := range companies {
		names[c.ID] = c.Name
	}

	e := &Engine{
		jobs: make([]indexedJob, 0, len(list)),
		byID: make(map[int64]*indexedJob, len(list)),
	}
	seen := make(map[int64]struct{}, len(list))
	for i := range list {
		j := list[i]
		if _, dup := seen[j.ID]; dup {
			return nil, fmt.Errorf("duplicate job id %d", j.ID)
		}
		seen[j.ID] = struct{}{}

		name, ok := names[j.CompanyID]
		if !ok {
			return nil, fmt.Errorf("job %d: unknown company %d", j.ID, j.CompanyID)
		}
		if err := j.Validate(); err != nil {
			return nil, fmt.Errorf("job %d: %w", j.ID, err)
		}
		e.jobs = append(e.jobs, indexedJob{
			job:           j,
			company:       name,
			companyFolded: fold(name),
			vector:        textsearch.NewVector(j.Language, j.SearchableText()...),
		})
	}

	sort.SliceStable(e.jobs, func(a, b int) bool {
		ja, jb := e.jobs[a].job, e.jobs[b].job
		if !ja.CreatedAt.Equal(jb.CreatedAt) {
			return ja.CreatedAt.After(jb.CreatedAt)
		}
		return ja.ID > jb.ID
	})
	for i := range e.jobs {
		e.byID[e.jobs[i].job.ID] = &e.jobs[i]
	}
	return e, nil
}

// LoadFile reads a YAML fixtures file and indexes it.
func LoadFile(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	return New(fx.Companies, fx.Jobs)
}

// Len returns the number of indexed jobs, active or not.
func (e *Engine) Len() int { return len(e.jobs) }

func (e *Engine) Search(ctx context.Context, p search.Params) (*search.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Unavailable("search cancelled", err)
	}

	q := textsearch.ParsePlain(p.Language, p.Query)
	company := fold(p.Company)

	page := search.EmptyPage(p)
	for i := range e.jobs {
		ij := &e.jobs[i]
		if !matches(ij, p, q, company) {
			continue
		}
		if page.TotalCount >= p.Offset && len(page.Items) < p.Limit {
			page.Items = append(page.Items, result(ij))
		}
		page.TotalCount++
	}
	return page, nil
}

func matches(ij *indexedJob, p search.Params, q textsearch.Query, company string) bool {
	j := &ij.job
	switch {
	case !j.IsActive:
		return false
	case j.Language != p.Language:
		return false
	case !ij.vector.Matches(q):
		return false
	case p.ExperienceLevel != "" && j.ExperienceLevel != p.ExperienceLevel:
		return false
	case p.EmploymentType != "" && j.EmploymentType != p.EmploymentType:
		return false
	case p.Location != "" && j.Location != p.Location:
		return false
	case p.WorkMode != "" && j.WorkMode != p.WorkMode:
		return false
	case p.Province != "" && j.Province != p.Province:
		return false
	case p.JobFunction != "" && j.JobFunction != p.JobFunction:
		return false
	case p.Company != "" && ij.companyFolded != company:
		return false
	case p.DateFrom != nil && j.CreatedAt.Before(*p.DateFrom):
		return false
	case p.DateTo != nil && j.CreatedAt.After(*p.DateTo):
		return false
	}
	return true
}

func (e *Engine) GetJob(ctx context.Context, id int64) (*search.JobResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Unavailable("get job cancelled", err)
	}
	ij, ok := e.byID[id]
	if !ok || !ij.job.IsActive {
		return nil, apperr.NotFound(fmt.Sprintf("job %d not found", id), nil)
	}
	r := result(ij)
	return &r, nil
}

func (e *Engine) CompanyFacets(ctx context.Context, lang jobs.Language) ([]search.CompanyFacet, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Unavailable("company facets cancelled", err)
	}
	counts := make(map[string]int)
	for i := range e.jobs {
		ij := &e.jobs[i]
		if ij.job.IsActive && ij.job.Language == lang {
			counts[ij.company]++
		}
	}
	facets := make([]search.CompanyFacet, 0, len(counts))
	for name, n := range counts {
		facets = append(facets, search.CompanyFacet{Name: name, ActiveJobs: n})
	}
	sort.Slice(facets, func(a, b int) bool { return facets[a].Name < facets[b].Name })
	return facets, nil
}

func (e *Engine) Close() {}

func result(ij *indexedJob) search.JobResult {
	return search.JobResult{Job: ij.job, CompanyName: ij.company}
}

// fold case-folds s for the company comparison. Casers are stateful, so one
// is made per call.
func fold(s string) string {
	return cases.Fold().String(s)
}
