package migrations

import "github.com/rodruizronald/tw-search/internal/db"

// search_jobs mirrors search.BuildSearchQuery for clients that can only call
// stored procedures (the Supabase REST RPC endpoint). A NULL argument means
// "no restriction".
var CreateSearchFunctions = db.Migration{
	Version:     3,
	Description: "Create search_jobs, get_active_job and company_facets functions",
	Up: `
		CREATE TYPE search_job_row AS (
			id                 bigint,
			company_id         bigint,
			title              text,
			description        text,
			responsibilities   text[],
			skill_must_have    text[],
			skill_nice_to_have text[],
			main_technologies  text[],
			benefits           text[],
			experience_level   text,
			employment_type    text,
			location           text,
			province           text,
			work_mode          text,
			job_function       text,
			language           text,
			city               text,
			application_url    text,
			is_active          boolean,
			created_at         timestamptz,
			updated_at         timestamptz,
			company_name       text,
			total_count        bigint
		);

		CREATE FUNCTION search_jobs(
			p_search_query     text,
			p_language         text DEFAULT 'english',
			p_experience_level text DEFAULT NULL,
			p_employment_type  text DEFAULT NULL,
			p_location         text DEFAULT NULL,
			p_work_mode        text DEFAULT NULL,
			p_province         text DEFAULT NULL,
			p_job_function     text DEFAULT NULL,
			p_company          text DEFAULT NULL,
			p_date_from        timestamptz DEFAULT NULL,
			p_date_to          timestamptz DEFAULT NULL,
			p_limit            integer DEFAULT 20,
			p_offset           integer DEFAULT 0
		)
		RETURNS SETOF search_job_row
		LANGUAGE sql STABLE AS $$
			SELECT j.id, j.company_id, j.title, j.description,
			       j.responsibilities, j.skill_must_have, j.skill_nice_to_have,
			       j.main_technologies, j.benefits,
			       j.experience_level::text, j.employment_type::text, j.location::text,
			       COALESCE(j.province::text, ''), j.work_mode::text, j.job_function::text,
			       j.language::text, COALESCE(j.city, ''), j.application_url,
			       j.is_active, j.created_at, j.updated_at,
			       c.name,
			       count(*) OVER ()
			FROM jobs j
			JOIN companies c ON c.id = j.company_id
			WHERE j.is_active = true
			  AND j.language = p_language::search_language
			  AND j.search_vector @@ plainto_tsquery(p_language::regconfig, p_search_query)
			  AND (p_experience_level IS NULL OR j.experience_level = p_experience_level::experience_level)
			  AND (p_employment_type IS NULL OR j.employment_type = p_employment_type::employment_type)
			  AND (p_location IS NULL OR j.location = p_location::location_type)
			  AND (p_work_mode IS NULL OR j.work_mode = p_work_mode::work_mode)
			  AND (p_province IS NULL OR j.province = p_province::province)
			  AND (p_job_function IS NULL OR j.job_function = p_job_function::job_function)
			  AND (p_company IS NULL OR lower(c.name) = lower(p_company))
			  AND (p_date_from IS NULL OR j.created_at >= p_date_from)
			  AND (p_date_to IS NULL OR j.created_at <= p_date_to)
			ORDER BY j.created_at DESC, j.id DESC
			LIMIT p_limit OFFSET p_offset
		$$;

		CREATE FUNCTION get_active_job(p_id bigint)
		RETURNS SETOF search_job_row
		LANGUAGE sql STABLE AS $$
			SELECT j.id, j.company_id, j.title, j.description,
			       j.responsibilities, j.skill_must_have, j.skill_nice_to_have,
			       j.main_technologies, j.benefits,
			       j.experience_level::text, j.employment_type::text, j.location::text,
			       COALESCE(j.province::text, ''), j.work_mode::text, j.job_function::text,
			       j.language::text, COALESCE(j.city, ''), j.application_url,
			       j.is_active, j.created_at, j.updated_at,
			       c.name,
			       1::bigint
			FROM jobs j
			JOIN companies c ON c.id = j.company_id
			WHERE j.id = p_id AND j.is_active = true
		$$;

		CREATE FUNCTION company_facets(p_language text DEFAULT 'english')
		RETURNS TABLE (name text, active_jobs bigint)
		LANGUAGE sql STABLE AS $$
			SELECT c.name, count(*)
			FROM jobs j
			JOIN companies c ON c.id = j.company_id
			WHERE j.is_active = true
			  AND j.language = p_language::search_language
			GROUP BY c.name
			ORDER BY c.name
		$$;
	`,
	Down: `
		DROP FUNCTION IF EXISTS company_facets(text);
		DROP FUNCTION IF EXISTS get_active_job(bigint);
		DROP FUNCTION IF EXISTS search_jobs(text, text, text, text, text, text, text, text, text,
			timestamptz, timestamptz, integer, integer);
		DROP TYPE IF EXISTS search_job_row;
	`,
}

// All lists every migration in version order.
var All = []db.Migration{
	CreateJobsTables,
	AddSearchVector,
	CreateSearchFunctions,
}
