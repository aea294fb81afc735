package search_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodruizronald/tw-search/internal/apperr"
	"github.com/rodruizronald/tw-search/internal/jobs"
	"github.com/rodruizronald/tw-search/internal/search"
)

var limits = search.DefaultLimits()

func assertInvalid(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrTypeInvalidInput), "got %v", err)
	assert.Contains(t, err.Error(), field)
}

// ── defaults ──────────────────────────────────────────────────────────────────

func TestParse_Defaults(t *testing.T) {
	p, err := search.RawParams{SearchQuery: "go"}.Parse(limits)
	require.NoError(t, err)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset)
	assert.Equal(t, jobs.LanguageEnglish, p.Language)
	assert.Nil(t, p.DateFrom)
	assert.Nil(t, p.DateTo)
}

func TestRawParamsFromValues(t *testing.T) {
	v := url.Values{}
	v.Set("search_query", "backend")
	v.Set("work_mode", "remote")
	v.Set("company", "Acme")
	raw := search.RawParamsFromValues(v)
	assert.Equal(t, "backend", raw.SearchQuery)
	assert.Equal(t, "remote", raw.WorkMode)

	v.Set("q", "frontend")
	assert.Equal(t, "frontend", search.RawParamsFromValues(v).SearchQuery, "q wins")
}

// ── pagination ────────────────────────────────────────────────────────────────

func TestParse_LimitOffset(t *testing.T) {
	p, err := search.RawParams{SearchQuery: "go", Limit: "50", Offset: "100"}.Parse(limits)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 100, p.Offset)
}

func TestParse_PageAndPageSize(t *testing.T) {
	p, err := search.RawParams{SearchQuery: "go", Page: "3", PageSize: "10"}.Parse(limits)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 20, p.Offset)

	p, err = search.RawParams{SearchQuery: "go", Page: "2"}.Parse(limits)
	require.NoError(t, err)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 20, p.Offset)
}

func TestParse_PaginationErrors(t *testing.T) {
	cases := []struct {
		name  string
		raw   search.RawParams
		field string
	}{
		{"mixed styles", search.RawParams{Page: "1", Limit: "10"}, "pagination"},
		{"page zero", search.RawParams{Page: "0"}, "page"},
		{"page size zero", search.RawParams{PageSize: "0"}, "page_size"},
		{"limit zero", search.RawParams{Limit: "0"}, "limit"},
		{"limit over max", search.RawParams{Limit: "101"}, "limit"},
		{"limit negative", search.RawParams{Limit: "-5"}, "limit"},
		{"offset negative", search.RawParams{Offset: "-1"}, "offset"},
		{"limit not a number", search.RawParams{Limit: "ten"}, "limit"},
		{"page size over max", search.RawParams{PageSize: "500"}, "limit"},
		{"page overflows offset", search.RawParams{Page: "200000000000000000", PageSize: "100"}, "page"},
		{"page past integer offsets", search.RawParams{Page: "21474838", PageSize: "100"}, "page"},
		{"offset over integer range", search.RawParams{Offset: "2147483648"}, "offset"},
		{"offset over int64", search.RawParams{Offset: "9223372036854775808"}, "offset"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.raw.SearchQuery = "go"
			_, err := tc.raw.Parse(limits)
			assertInvalid(t, err, tc.field)
		})
	}
}

func TestParse_LargestPageAndOffset(t *testing.T) {
	p, err := search.RawParams{SearchQuery: "go", Page: "21474837", PageSize: "100"}.Parse(limits)
	require.NoError(t, err)
	assert.Equal(t, 2147483600, p.Offset)
	assert.Equal(t, 21474837, search.NewPageInfo(p.Offset, p.Limit, 0).Page)

	p, err = search.RawParams{SearchQuery: "go", Offset: "2147483647"}.Parse(limits)
	require.NoError(t, err)
	assert.Equal(t, search.MaxOffset, p.Offset)
}

func TestParse_MaxLimitIsConfigurable(t *testing.T) {
	l := limits
	l.MaxLimit = 10
	_, err := search.RawParams{SearchQuery: "go", Limit: "11"}.Parse(l)
	assertInvalid(t, err, "limit")

	p, err := search.RawParams{SearchQuery: "go", Limit: "10"}.Parse(l)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Limit)
}

// ── enumerations ──────────────────────────────────────────────────────────────

func TestParse_Enumerations(t *testing.T) {
	p, err := search.RawParams{
		SearchQuery:     "go",
		ExperienceLevel: "senior",
		EmploymentType:  "full-time",
		Location:        "costa-rica",
		WorkMode:        "remote",
		Province:        "heredia",
		JobFunction:     "data-analytics",
		Language:        "spanish",
	}.Parse(limits)
	require.NoError(t, err)
	assert.Equal(t, jobs.ExperienceSenior, p.ExperienceLevel)
	assert.Equal(t, jobs.EmploymentFullTime, p.EmploymentType)
	assert.Equal(t, jobs.LocationCostaRica, p.Location)
	assert.Equal(t, jobs.WorkModeRemote, p.WorkMode)
	assert.Equal(t, jobs.ProvinceHeredia, p.Province)
	assert.Equal(t, jobs.FunctionDataAnalytics, p.JobFunction)
	assert.Equal(t, jobs.LanguageSpanish, p.Language)
}

func TestParse_RejectsUnknownEnumerations(t *testing.T) {
	cases := map[string]search.RawParams{
		"experience_level": {ExperienceLevel: "Senior"},
		"employment_type":  {EmploymentType: "fulltime"},
		"location":         {Location: "usa"},
		"work_mode":        {WorkMode: "remote "},
		"province":         {Province: "san jose"},
		"job_function":     {JobFunction: "engineering"},
		"language":         {Language: "french"},
	}
	for field, raw := range cases {
		t.Run(field, func(t *testing.T) {
			raw.SearchQuery = "go"
			_, err := raw.Parse(limits)
			assertInvalid(t, err, field)
		})
	}
}

// ── dates ─────────────────────────────────────────────────────────────────────

func TestParse_DateOnlyBoundsCoverWholeDays(t *testing.T) {
	p, err := search.RawParams{SearchQuery: "go", DateFrom: "2024-01-01", DateTo: "2024-01-31"}.Parse(limits)
	require.NoError(t, err)
	require.NotNil(t, p.DateFrom)
	require.NotNil(t, p.DateTo)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *p.DateFrom)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 999999000, time.UTC), *p.DateTo)
}

func TestParse_TimestampBounds(t *testing.T) {
	p, err := search.RawParams{SearchQuery: "go", DateFrom: "2024-01-01T08:30:00-06:00"}.Parse(limits)
	require.NoError(t, err)
	assert.True(t, p.DateFrom.Equal(time.Date(2024, 1, 1, 14, 30, 0, 0, time.UTC)))
}

func TestParse_DateErrors(t *testing.T) {
	_, err := search.RawParams{SearchQuery: "go", DateFrom: "01/02/2024"}.Parse(limits)
	assertInvalid(t, err, "date_from")

	_, err = search.RawParams{SearchQuery: "go", DateTo: "yesterday"}.Parse(limits)
	assertInvalid(t, err, "date_to")

	_, err = search.RawParams{SearchQuery: "go", DateFrom: "2024-02-01", DateTo: "2024-01-01"}.Parse(limits)
	assertInvalid(t, err, "date_from")
}

func TestParse_SameDayWindowIsValid(t *testing.T) {
	p, err := search.RawParams{SearchQuery: "go", DateFrom: "2024-03-05", DateTo: "2024-03-05"}.Parse(limits)
	require.NoError(t, err)
	assert.True(t, p.DateFrom.Before(*p.DateTo))
}
