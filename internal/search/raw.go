package search

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rodruizronald/tw-search/internal/jobs"
)

// RawParams is the wire shape of a search request, with every field still a
// string. Both transports fill one and call Parse.
//
// Pagination may be given either as limit/offset or as a 1-indexed
// page/page_size pair, not both.
type RawParams struct {
	SearchQuery     string
	Limit           string
	Offset          string
	Page            string
	PageSize        string
	ExperienceLevel string
	EmploymentType  string
	Location        string
	WorkMode        string
	Province        string
	JobFunction     string
	Company         string
	DateFrom        string
	DateTo          string
	Language        string
}

// RawParamsFromValues reads a URL query. The free-text query may be passed
// as "q" or "search_query".
func RawParamsFromValues(v url.Values) RawParams {
	q := v.Get("q")
	if q == "" {
		q = v.Get("search_query")
	}
	return RawParams{
		SearchQuery:     q,
		Limit:           v.Get("limit"),
		Offset:          v.Get("offset"),
		Page:            v.Get("page"),
		PageSize:        v.Get("page_size"),
		ExperienceLevel: v.Get("experience_level"),
		EmploymentType:  v.Get("employment_type"),
		Location:        v.Get("location"),
		WorkMode:        v.Get("work_mode"),
		Province:        v.Get("province"),
		JobFunction:     v.Get("job_function"),
		Company:         v.Get("company"),
		DateFrom:        v.Get("date_from"),
		DateTo:          v.Get("date_to"),
		Language:        v.Get("language"),
	}
}

// Parse converts r to validated Params with defaults applied.
func (r RawParams) Parse(l Limits) (Params, error) {
	p := Params{
		Query:           r.SearchQuery,
		ExperienceLevel: jobs.ExperienceLevel(r.ExperienceLevel),
		EmploymentType:  jobs.EmploymentType(r.EmploymentType),
		Location:        jobs.Location(r.Location),
		WorkMode:        jobs.WorkMode(r.WorkMode),
		Province:        jobs.Province(r.Province),
		JobFunction:     jobs.JobFunction(r.JobFunction),
		Company:         r.Company,
		Language:        jobs.Language(r.Language),
	}

	usesPages := r.Page != "" || r.PageSize != ""
	usesOffsets := r.Limit != "" || r.Offset != ""
	if usesPages && usesOffsets {
		return Params{}, invalid("pagination", fmt.Errorf("use either page/page_size or limit/offset"))
	}

	var err error
	if usesPages {
		page, size := 1, l.DefaultLimit
		if r.Page != "" {
			if page, err = parseInt("page", r.Page); err != nil {
				return Params{}, err
			}
			if page < 1 {
				return Params{}, invalid("page", fmt.Errorf("must be at least 1, got %d", page))
			}
		}
		if r.PageSize != "" {
			if size, err = parseInt("page_size", r.PageSize); err != nil {
				return Params{}, err
			}
			if size < 1 {
				return Params{}, invalid("page_size", fmt.Errorf("must be at least 1, got %d", size))
			}
		}
		if page-1 > MaxOffset/size {
			return Params{}, invalid("page", fmt.Errorf("must be at most %d for page_size %d, got %d", MaxOffset/size+1, size, page))
		}
		p.Limit = size
		p.Offset = OffsetForPage(page, size)
	} else {
		if r.Limit != "" {
			if p.Limit, err = parseInt("limit", r.Limit); err != nil {
				return Params{}, err
			}
			if p.Limit == 0 {
				return Params{}, invalid("limit", fmt.Errorf("must be at least 1"))
			}
		}
		if r.Offset != "" {
			if p.Offset, err = parseInt("offset", r.Offset); err != nil {
				return Params{}, err
			}
		}
	}

	if r.DateFrom != "" {
		if p.DateFrom, err = ParseDateBound(r.DateFrom, false); err != nil {
			return Params{}, invalid("date_from", err)
		}
	}
	if r.DateTo != "" {
		if p.DateTo, err = ParseDateBound(r.DateTo, true); err != nil {
			return Params{}, invalid("date_to", err)
		}
	}

	p = p.WithDefaults(l)
	if err := p.Validate(l); err != nil {
		return Params{}, err
	}
	return p, nil
}

const dateOnly = "2006-01-02"

// ParseDateBound accepts an RFC 3339 timestamp or a YYYY-MM-DD date (UTC).
// A bare date used as an upper bound covers the whole day: it resolves to
// the last microsecond, the finest precision Postgres timestamps keep.
func ParseDateBound(s string, upper bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateOnly, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("expected RFC 3339 timestamp or YYYY-MM-DD, got %q", s)
	}
	if upper {
		t = t.Add(24*time.Hour - time.Microsecond)
	}
	return &t, nil
}

func parseInt(field, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, invalid(field, fmt.Errorf("not an integer: %q", s))
	}
	return n, nil
}
