package search_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodruizronald/tw-search/internal/jobs"
	"github.com/rodruizronald/tw-search/internal/search"
)

func TestBuildSearchQuery_QueryOnly(t *testing.T) {
	p := search.Params{Query: "golang developer"}.WithDefaults(limits)
	q := search.BuildSearchQuery(p)

	assert.Equal(t, []any{"english", "golang developer", 20, 0}, q.Args)
	assert.Contains(t, q.SQL, "j.is_active = true")
	assert.Contains(t, q.SQL, "j.language = $1::text::search_language")
	assert.Contains(t, q.SQL, "plainto_tsquery($1::text::regconfig, $2::text)")
	assert.Contains(t, q.SQL, "count(*) OVER () AS total_count")
	assert.Contains(t, q.SQL, "ORDER BY j.created_at DESC, j.id DESC")
	assert.Contains(t, q.SQL, "LIMIT $3 OFFSET $4")

	for _, absent := range []string{"experience_level =", "work_mode =", "lower(c.name)", "created_at >="} {
		assert.NotContains(t, q.SQL, absent)
	}
}

func TestBuildSearchQuery_AllFilters(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 23, 59, 59, 999999000, time.UTC)
	p := search.Params{
		Query:           "data",
		Limit:           10,
		Offset:          30,
		ExperienceLevel: jobs.ExperienceJunior,
		EmploymentType:  jobs.EmploymentContract,
		Location:        jobs.LocationLatam,
		WorkMode:        jobs.WorkModeHybrid,
		Province:        jobs.ProvinceCartago,
		JobFunction:     jobs.FunctionDataAnalytics,
		Company:         "Acme",
		DateFrom:        &from,
		DateTo:          &to,
		Language:        jobs.LanguageSpanish,
	}
	q := search.BuildSearchQuery(p)

	require.Len(t, q.Args, 13)
	assert.Equal(t, []any{
		"spanish", "data",
		"junior", "contract", "latam", "hybrid", "cartago", "data-analytics",
		"Acme", from, to,
		10, 30,
	}, q.Args)

	for _, clause := range []string{
		"j.experience_level = $3::text::experience_level",
		"j.employment_type = $4::text::employment_type",
		"j.location = $5::text::location_type",
		"j.work_mode = $6::text::work_mode",
		"j.province = $7::text::province",
		"j.job_function = $8::text::job_function",
		"lower(c.name) = lower($9::text)",
		"j.created_at >= $10",
		"j.created_at <= $11",
		"LIMIT $12 OFFSET $13",
	} {
		assert.Contains(t, q.SQL, clause)
	}
}

func TestBuildSearchQuery_NeverInterpolatesInput(t *testing.T) {
	hostile := "'; DROP TABLE jobs; --"
	p := search.Params{Query: hostile, Company: hostile}.WithDefaults(limits)

	q := search.BuildSearchQuery(p)
	assert.NotContains(t, q.SQL, "DROP TABLE")
	assert.Contains(t, q.Args, hostile)

	c := search.BuildCountQuery(p)
	assert.NotContains(t, c.SQL, "DROP TABLE")
}

func TestBuildCountQuery_SharesPredicates(t *testing.T) {
	p := search.Params{Query: "go", WorkMode: jobs.WorkModeRemote, Limit: 5, Offset: 50}.WithDefaults(limits)
	c := search.BuildCountQuery(p)

	assert.Equal(t, []any{"english", "go", "remote"}, c.Args, "no paging arguments")
	assert.True(t, strings.Contains(c.SQL, "SELECT count(*)"))
	assert.Contains(t, c.SQL, "j.work_mode = $3::text::work_mode")
	assert.NotContains(t, c.SQL, "LIMIT")
	assert.NotContains(t, c.SQL, "ORDER BY")
}

func TestBuildGetJobQuery(t *testing.T) {
	q := search.BuildGetJobQuery(42)
	assert.Equal(t, []any{int64(42)}, q.Args)
	assert.Contains(t, q.SQL, "WHERE j.id = $1 AND j.is_active = true")
	assert.Contains(t, q.SQL, search.JobColumns)
}
