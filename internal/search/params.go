// Package search implements the job search query service: parameter parsing
// and validation, the parameterized query builder, the paginated response
// envelope, and the Service that fronts a search Backend.
package search

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rodruizronald/tw-search/internal/apperr"
	"github.com/rodruizronald/tw-search/internal/jobs"
)

const (
	DefaultLimit    = 20
	DefaultMaxLimit = 100

	// MaxOffset is the largest offset search_jobs accepts (p_offset integer).
	MaxOffset = math.MaxInt32
)

// Limits holds the tunable defaults applied to every search.
type Limits struct {
	DefaultLimit    int
	MaxLimit        int
	DefaultLanguage jobs.Language
}

// DefaultLimits returns limit 20, max 100, english.
func DefaultLimits() Limits {
	return Limits{
		DefaultLimit:    DefaultLimit,
		MaxLimit:        DefaultMaxLimit,
		DefaultLanguage: jobs.DefaultLanguage,
	}
}

// Params is a typed search request. A zero-valued filter means "no
// restriction". DateFrom and DateTo are inclusive.
type Params struct {
	Query           string
	Limit           int
	Offset          int
	ExperienceLevel jobs.ExperienceLevel
	EmploymentType  jobs.EmploymentType
	Location        jobs.Location
	WorkMode        jobs.WorkMode
	Province        jobs.Province
	JobFunction     jobs.JobFunction
	Company         string
	DateFrom        *time.Time
	DateTo          *time.Time
	Language        jobs.Language
}

// WithDefaults fills the limit and language when unset and trims the
// company filter.
func (p Params) WithDefaults(l Limits) Params {
	if p.Limit == 0 {
		p.Limit = l.DefaultLimit
	}
	if p.Language == "" {
		p.Language = l.DefaultLanguage
	}
	p.Company = strings.TrimSpace(p.Company)
	return p
}

// Validate checks a defaulted Params. Every failure is an INVALID_INPUT
// DomainError naming the field.
func (p Params) Validate(l Limits) error {
	if p.Limit < 1 || p.Limit > l.MaxLimit {
		return invalid("limit", fmt.Errorf("must be between 1 and %d, got %d", l.MaxLimit, p.Limit))
	}
	if p.Offset < 0 || p.Offset > MaxOffset {
		return invalid("offset", fmt.Errorf("must be between 0 and %d, got %d", MaxOffset, p.Offset))
	}
	if _, err := jobs.ParseLanguage(string(p.Language)); err != nil {
		return invalid("language", err)
	}
	if p.ExperienceLevel != "" {
		if _, err := jobs.ParseExperienceLevel(string(p.ExperienceLevel)); err != nil {
			return invalid("experience_level", err)
		}
	}
	if p.EmploymentType != "" {
		if _, err := jobs.ParseEmploymentType(string(p.EmploymentType)); err != nil {
			return invalid("employment_type", err)
		}
	}
	if p.Location != "" {
		if _, err := jobs.ParseLocation(string(p.Location)); err != nil {
			return invalid("location", err)
		}
	}
	if p.WorkMode != "" {
		if _, err := jobs.ParseWorkMode(string(p.WorkMode)); err != nil {
			return invalid("work_mode", err)
		}
	}
	if p.Province != "" {
		if _, err := jobs.ParseProvince(string(p.Province)); err != nil {
			return invalid("province", err)
		}
	}
	if p.JobFunction != "" {
		if _, err := jobs.ParseJobFunction(string(p.JobFunction)); err != nil {
			return invalid("job_function", err)
		}
	}
	if p.DateFrom != nil && p.DateTo != nil && p.DateFrom.After(*p.DateTo) {
		return invalid("date_from", fmt.Errorf("must not be after date_to"))
	}
	return nil
}

// IsBlankQuery reports whether the free-text query has no content at all.
// Blank queries match nothing and never reach a backend.
func (p Params) IsBlankQuery() bool {
	return strings.TrimSpace(p.Query) == ""
}

// Filters returns the supplied filters keyed by their wire name, for logs
// and analytics events.
func (p Params) Filters() map[string]string {
	f := make(map[string]string)
	add := func(k, v string) {
		if v != "" {
			f[k] = v
		}
	}
	add("experience_level", string(p.ExperienceLevel))
	add("employment_type", string(p.EmploymentType))
	add("location", string(p.Location))
	add("work_mode", string(p.WorkMode))
	add("province", string(p.Province))
	add("job_function", string(p.JobFunction))
	add("company", p.Company)
	if p.DateFrom != nil {
		add("date_from", p.DateFrom.UTC().Format(time.RFC3339Nano))
	}
	if p.DateTo != nil {
		add("date_to", p.DateTo.UTC().Format(time.RFC3339Nano))
	}
	return f
}

func invalid(field string, err error) error {
	return apperr.InvalidInput(fmt.Sprintf("invalid %s: %v", field, err), err)
}
