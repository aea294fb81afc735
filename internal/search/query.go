package search

import (
	"fmt"
	"strings"
)

// Query is a parameterized SQL statement. User input only ever travels in
// Args.
type Query struct {
	SQL  string
	Args []any
}

// JobColumns is the job projection shared by every statement, ending with
// the company name. Nullable enum and text columns are coalesced so they
// scan into plain strings.
const JobColumns = `j.id, j.company_id, j.title, j.description,
	       j.responsibilities, j.skill_must_have, j.skill_nice_to_have,
	       j.main_technologies, j.benefits,
	       j.experience_level::text, j.employment_type::text, j.location::text,
	       COALESCE(j.province::text, ''), j.work_mode::text, j.job_function::text,
	       j.language::text, COALESCE(j.city, ''), j.application_url,
	       j.is_active, j.created_at, j.updated_at,
	       c.name`

// whereBuilder accumulates AND-ed predicates and numbers placeholders.
type whereBuilder struct {
	clauses []string
	args    []any
}

// arg registers v and returns its placeholder.
func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) add(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *whereBuilder) sql() string {
	return strings.Join(w.clauses, "\n\t  AND ")
}

// searchPredicates builds the filter for p. The language placeholder is
// cast through text so one parameter can feed both the regconfig and the
// enum comparison.
func searchPredicates(p Params) *whereBuilder {
	w := &whereBuilder{}
	lang := w.arg(string(p.Language))
	query := w.arg(p.Query)

	w.add("j.is_active = true")
	w.add(fmt.Sprintf("j.language = %s::text::search_language", lang))
	w.add(fmt.Sprintf("j.search_vector @@ plainto_tsquery(%s::text::regconfig, %s::text)", lang, query))

	if p.ExperienceLevel != "" {
		w.add(fmt.Sprintf("j.experience_level = %s::text::experience_level", w.arg(string(p.ExperienceLevel))))
	}
	if p.EmploymentType != "" {
		w.add(fmt.Sprintf("j.employment_type = %s::text::employment_type", w.arg(string(p.EmploymentType))))
	}
	if p.Location != "" {
		w.add(fmt.Sprintf("j.location = %s::text::location_type", w.arg(string(p.Location))))
	}
	if p.WorkMode != "" {
		w.add(fmt.Sprintf("j.work_mode = %s::text::work_mode", w.arg(string(p.WorkMode))))
	}
	if p.Province != "" {
		w.add(fmt.Sprintf("j.province = %s::text::province", w.arg(string(p.Province))))
	}
	if p.JobFunction != "" {
		w.add(fmt.Sprintf("j.job_function = %s::text::job_function", w.arg(string(p.JobFunction))))
	}
	if p.Company != "" {
		w.add(fmt.Sprintf("lower(c.name) = lower(%s::text)", w.arg(p.Company)))
	}
	if p.DateFrom != nil {
		w.add(fmt.Sprintf("j.created_at >= %s", w.arg(*p.DateFrom)))
	}
	if p.DateTo != nil {
		w.add(fmt.Sprintf("j.created_at <= %s", w.arg(*p.DateTo)))
	}
	return w
}

// BuildSearchQuery returns the page statement for p: the job projection,
// the company name and a window count of the whole filtered set, newest
// first with id as the tie-break so pages never overlap.
func BuildSearchQuery(p Params) Query {
	w := searchPredicates(p)
	limit := w.arg(p.Limit)
	offset := w.arg(p.Offset)

	sql := fmt.Sprintf(`
	SELECT %s,
	       count(*) OVER () AS total_count
	FROM jobs j
	JOIN companies c ON c.id = j.company_id
	WHERE %s
	ORDER BY j.created_at DESC, j.id DESC
	LIMIT %s OFFSET %s`, JobColumns, w.sql(), limit, offset)

	return Query{SQL: sql, Args: w.args}
}

// BuildCountQuery returns a statement counting every match of p. It is used
// when a page past the end comes back empty and the window count is lost.
func BuildCountQuery(p Params) Query {
	w := searchPredicates(p)
	sql := fmt.Sprintf(`
	SELECT count(*)
	FROM jobs j
	JOIN companies c ON c.id = j.company_id
	WHERE %s`, w.sql())

	return Query{SQL: sql, Args: w.args}
}

// BuildGetJobQuery returns the detail statement for one active job.
func BuildGetJobQuery(id int64) Query {
	return Query{
		SQL: fmt.Sprintf(`
	SELECT %s
	FROM jobs j
	JOIN companies c ON c.id = j.company_id
	WHERE j.id = $1 AND j.is_active = true`, JobColumns),
		Args: []any{id},
	}
}

// CompanyFacetsSQL counts active jobs per company for one language ($1).
const CompanyFacetsSQL = `
	SELECT c.name, count(*)
	FROM jobs j
	JOIN companies c ON c.id = j.company_id
	WHERE j.is_active = true
	  AND j.language = $1::text::search_language
	GROUP BY c.name
	ORDER BY c.name`
