// Package postgres runs searches directly against PostgreSQL through pgx,
// using the statements built by the search package.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/rodruizronald/tw-search/internal/apperr"
	"github.com/rodruizronald/tw-search/internal/jobs"
	"github.com/rodruizronald/tw-search/internal/search"
)

// Querier is the subset of pgxpool.Pool the backend uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Backend struct {
	db     Querier
	close  func()
	logger *zap.Logger
}

// New returns a Backend over pool. Close closes the pool.
func New(pool *pgxpool.Pool, logger *zap.Logger) *Backend {
	return &Backend{db: pool, close: pool.Close, logger: logger}
}

// NewWithQuerier returns a Backend over any Querier; Close is a no-op.
func NewWithQuerier(q Querier, logger *zap.Logger) *Backend {
	return &Backend{db: q, close: func() {}, logger: logger}
}

func (b *Backend) Search(ctx context.Context, p search.Params) (*search.Page, error) {
	q := search.BuildSearchQuery(p)
	rows, err := b.db.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, mapError(err, "search")
	}
	defer rows.Close()

	page := search.EmptyPage(p)
	for rows.Next() {
		var (
			r     search.JobResult
			total int64
		)
		dest := append(jobDest(&r), &total)
		if err := rows.Scan(dest...); err != nil {
			return nil, mapError(err, "search")
		}
		page.Items = append(page.Items, r)
		page.TotalCount = int(total)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "search")
	}

	// The window count rides on the rows, so a page past the end loses it.
	if len(page.Items) == 0 && p.Offset > 0 {
		c := search.BuildCountQuery(p)
		var total int64
		if err := b.db.QueryRow(ctx, c.SQL, c.Args...).Scan(&total); err != nil {
			return nil, mapError(err, "count")
		}
		page.TotalCount = int(total)
	}

	b.logger.Debug("search executed",
		zap.Int("total", page.TotalCount),
		zap.Int("returned", len(page.Items)))
	return page, nil
}

func (b *Backend) GetJob(ctx context.Context, id int64) (*search.JobResult, error) {
	q := search.BuildGetJobQuery(id)
	var r search.JobResult
	if err := b.db.QueryRow(ctx, q.SQL, q.Args...).Scan(jobDest(&r)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(fmt.Sprintf("job %d not found", id), nil)
		}
		return nil, mapError(err, "get job")
	}
	return &r, nil
}

func (b *Backend) CompanyFacets(ctx context.Context, lang jobs.Language) ([]search.CompanyFacet, error) {
	rows, err := b.db.Query(ctx, search.CompanyFacetsSQL, string(lang))
	if err != nil {
		return nil, mapError(err, "company facets")
	}
	defer rows.Close()

	facets := []search.CompanyFacet{}
	for rows.Next() {
		var (
			f search.CompanyFacet
			n int64
		)
		if err := rows.Scan(&f.Name, &n); err != nil {
			return nil, mapError(err, "company facets")
		}
		f.ActiveJobs = int(n)
		facets = append(facets, f)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "company facets")
	}
	return facets, nil
}

func (b *Backend) Close() { b.close() }

// jobDest returns scan targets in search.JobColumns order.
func jobDest(r *search.JobResult) []any {
	j := &r.Job
	return []any{
		&j.ID, &j.CompanyID, &j.Title, &j.Description,
		&j.Responsibilities, &j.SkillMustHave, &j.SkillNiceToHave,
		&j.MainTechnologies, &j.Benefits,
		&j.ExperienceLevel, &j.EmploymentType, &j.Location,
		&j.Province, &j.WorkMode, &j.JobFunction,
		&j.Language, &j.City, &j.ApplicationURL,
		&j.IsActive, &j.CreatedAt, &j.UpdatedAt,
		&r.CompanyName,
	}
}

// mapError classifies a driver error. The cause is kept for logs; only the
// type and a generic message reach clients.
func mapError(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(op+": no rows", err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return apperr.Unavailable(op+" timed out", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "22P02", pgErr.Code == "22007", pgErr.Code == "22008":
			// invalid_text_representation, invalid_datetime_format,
			// datetime_field_overflow
			return apperr.InvalidInput("invalid search parameter", err)
		case pgErr.Code == "57014", pgErr.Code == "57P01", pgErr.Code == "53300":
			// query_canceled, admin_shutdown, too_many_connections
			return apperr.Unavailable("database unavailable", err)
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == "08":
			return apperr.Unavailable("database unavailable", err)
		}
		return apperr.Internal(op+" failed", err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return apperr.Unavailable("database unavailable", err)
	}
	return apperr.Internal(op+" failed", err)
}
