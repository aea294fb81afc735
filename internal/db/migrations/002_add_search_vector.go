package migrations

import "github.com/rodruizronald/tw-search/internal/db"

// The vector is built with the job's own language as the text-search
// configuration, so documents and queries are stemmed alike.
var AddSearchVector = db.Migration{
	Version:     2,
	Description: "Add weighted search_vector with trigger and GIN index",
	Up: `
		ALTER TABLE jobs ADD COLUMN search_vector tsvector;

		CREATE FUNCTION jobs_search_vector_update() RETURNS trigger
		LANGUAGE plpgsql AS $$
		DECLARE
			cfg regconfig := NEW.language::text::regconfig;
		BEGIN
			NEW.search_vector :=
				setweight(to_tsvector(cfg, coalesce(NEW.title, '')), 'A') ||
				setweight(to_tsvector(cfg, coalesce(NEW.description, '')), 'B') ||
				setweight(to_tsvector(cfg,
					array_to_string(NEW.responsibilities, ' ') || ' ' ||
					array_to_string(NEW.skill_must_have, ' ') || ' ' ||
					array_to_string(NEW.skill_nice_to_have, ' ') || ' ' ||
					array_to_string(NEW.main_technologies, ' ')), 'C');
			RETURN NEW;
		END
		$$;

		CREATE TRIGGER jobs_search_vector_trigger
			BEFORE INSERT OR UPDATE ON jobs
			FOR EACH ROW EXECUTE FUNCTION jobs_search_vector_update();

		UPDATE jobs SET title = title;

		CREATE INDEX jobs_search_vector_idx ON jobs USING GIN (search_vector);
	`,
	Down: `
		DROP INDEX IF EXISTS jobs_search_vector_idx;
		DROP TRIGGER IF EXISTS jobs_search_vector_trigger ON jobs;
		DROP FUNCTION IF EXISTS jobs_search_vector_update();
		ALTER TABLE jobs DROP COLUMN IF EXISTS search_vector;
	`,
}
