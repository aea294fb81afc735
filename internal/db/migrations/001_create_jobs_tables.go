package migrations

import "github.com/rodruizronald/tw-search/internal/db"

var CreateJobsTables = db.Migration{
	Version:     1,
	Description: "Create enums, companies and jobs tables",
	Up: `
		CREATE TYPE experience_level AS ENUM (
			'entry-level', 'junior', 'mid-level', 'senior', 'lead', 'principal', 'executive'
		);
		CREATE TYPE employment_type AS ENUM (
			'full-time', 'part-time', 'contract', 'freelance', 'temporary', 'internship'
		);
		CREATE TYPE location_type AS ENUM ('costa-rica', 'latam');
		CREATE TYPE province AS ENUM (
			'san-jose', 'alajuela', 'cartago', 'heredia', 'guanacaste', 'puntarenas', 'limon'
		);
		CREATE TYPE work_mode AS ENUM ('remote', 'hybrid', 'onsite');
		CREATE TYPE job_function AS ENUM (
			'technology-engineering', 'sales-business-development',
			'marketing-communications', 'operations-logistics', 'finance-accounting',
			'management-leadership', 'hr-recruitment', 'customer-success-support',
			'product-management', 'data-analytics', 'design-creative',
			'legal-compliance', 'other'
		);
		CREATE TYPE search_language AS ENUM ('english', 'spanish');

		CREATE TABLE companies (
			id         bigserial PRIMARY KEY,
			name       text NOT NULL UNIQUE,
			created_at timestamptz NOT NULL DEFAULT now()
		);

		CREATE TABLE jobs (
			id                 bigserial PRIMARY KEY,
			company_id         bigint NOT NULL REFERENCES companies (id) ON DELETE CASCADE,
			title              text NOT NULL,
			description        text NOT NULL DEFAULT '',
			responsibilities   text[] NOT NULL DEFAULT '{}',
			skill_must_have    text[] NOT NULL DEFAULT '{}',
			skill_nice_to_have text[] NOT NULL DEFAULT '{}',
			main_technologies  text[] NOT NULL DEFAULT '{}',
			benefits           text[] NOT NULL DEFAULT '{}',
			experience_level   experience_level NOT NULL,
			employment_type    employment_type NOT NULL,
			location           location_type NOT NULL,
			province           province,
			work_mode          work_mode NOT NULL,
			job_function       job_function NOT NULL,
			language           search_language NOT NULL DEFAULT 'english',
			city               text,
			application_url    text NOT NULL,
			is_active          boolean NOT NULL DEFAULT true,
			created_at         timestamptz NOT NULL DEFAULT now(),
			updated_at         timestamptz NOT NULL DEFAULT now()
		);

		CREATE INDEX jobs_active_language_created_idx
			ON jobs (language, created_at DESC, id DESC)
			WHERE is_active;
		CREATE INDEX jobs_company_idx ON jobs (company_id);
		CREATE INDEX companies_lower_name_idx ON companies (lower(name));
	`,
	Down: `
		DROP TABLE IF EXISTS jobs;
		DROP TABLE IF EXISTS companies;
		DROP TYPE IF EXISTS search_language;
		DROP TYPE IF EXISTS job_function;
		DROP TYPE IF EXISTS work_mode;
		DROP TYPE IF EXISTS province;
		DROP TYPE IF EXISTS location_type;
		DROP TYPE IF EXISTS employment_type;
		DROP TYPE IF EXISTS experience_level;
	`,
}
