package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rodruizronald/tw-search/internal/apperr"
	"github.com/rodruizronald/tw-search/internal/cache"
	"github.com/rodruizronald/tw-search/internal/events"
	"github.com/rodruizronald/tw-search/internal/jobs"
	"github.com/rodruizronald/tw-search/internal/telemetry"
)

const (
	searchKeyNamespace = "search:v1"
	facetKeyNamespace  = "facets:v1"
)

// Options tunes a Service. Zero fields take the defaults of DefaultOptions.
type Options struct {
	Limits       Limits
	CacheTTL     time.Duration
	FacetTTL     time.Duration
	QueryTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		Limits:       DefaultLimits(),
		CacheTTL:     2 * time.Minute,
		FacetTTL:     30 * time.Minute,
		QueryTimeout: 5 * time.Second,
	}
}

// Service is the transport-agnostic entry point of the search: it validates
// requests, serves repeated searches from the cache, and reports each
// answered search as an analytics event. It holds no mutable state of its
// own and is safe for concurrent use.
type Service struct {
	backend Backend
	cache   cache.Cache
	pub     events.Publisher
	logger  *zap.Logger
	tracer  trace.Tracer
	opts    Options
	group   singleflight.Group
	now     func() time.Time
}

// NewService returns a Service over backend. c and pub may be nil to
// disable caching and events.
func NewService(backend Backend, c cache.Cache, pub events.Publisher, logger *zap.Logger, opts Options) *Service {
	def := DefaultOptions()
	if opts.Limits.DefaultLimit == 0 {
		opts.Limits.DefaultLimit = def.Limits.DefaultLimit
	}
	if opts.Limits.MaxLimit == 0 {
		opts.Limits.MaxLimit = def.Limits.MaxLimit
	}
	if opts.Limits.DefaultLanguage == "" {
		opts.Limits.DefaultLanguage = def.Limits.DefaultLanguage
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = def.CacheTTL
	}
	if opts.FacetTTL == 0 {
		opts.FacetTTL = def.FacetTTL
	}
	if opts.QueryTimeout == 0 {
		opts.QueryTimeout = def.QueryTimeout
	}
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend: backend,
		cache:   c,
		pub:     pub,
		logger:  logger,
		tracer:  telemetry.GetTracer("tw-search/search"),
		opts:    opts,
		now:     time.Now,
	}
}

// Limits returns the limits the service validates against.
func (s *Service) Limits() Limits { return s.opts.Limits }

// ─── Search ───────────────────────────────────────────────────────────────────

// SearchRaw parses wire parameters and runs the search.
func (s *Service) SearchRaw(ctx context.Context, raw RawParams) (*Page, error) {
	p, err := raw.Parse(s.opts.Limits)
	if err != nil {
		return nil, err
	}
	return s.Search(ctx, p)
}

// Search returns one page of jobs matching p, newest first, with the total
// number of matches. A blank query matches nothing.
func (s *Service) Search(ctx context.Context, p Params) (*Page, error) {
	ctx, span := s.tracer.Start(ctx, "search.Search")
	defer span.End()

	p = p.WithDefaults(s.opts.Limits)
	if err := p.Validate(s.opts.Limits); err != nil {
		span.SetStatus(codes.Error, "invalid input")
		return nil, err
	}
	span.SetAttributes(
		telemetry.String("search.language", string(p.Language)),
		telemetry.Int("search.limit", p.Limit),
		telemetry.Int("search.offset", p.Offset),
	)

	if p.IsBlankQuery() {
		return EmptyPage(p), nil
	}

	key, err := cache.Key(searchKeyNamespace, p)
	if err != nil {
		return nil, apperr.Internal("search failed", err)
	}

	if page, ok := s.cachedPage(ctx, key); ok {
		span.SetAttributes(telemetry.Bool("search.cached", true))
		s.publish(ctx, p, page, true)
		return page, nil
	}

	// Concurrent identical misses share one backend call. The shared call is
	// detached from any single caller and bounded by QueryTimeout; each
	// caller stops waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		qctx, cancel := context.WithTimeout(shared, s.opts.QueryTimeout)
		defer cancel()

		page, err := s.backend.Search(qctx, p)
		if err != nil {
			return nil, classify(err, "search")
		}
		if page.Items == nil {
			page.Items = []JobResult{}
		}
		s.storePage(shared, key, page)
		return page, nil
	})

	var v any
	select {
	case res := <-ch:
		v, err = res.Val, res.Err
	case <-ctx.Done():
		err = classify(ctx.Err(), "search")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperr.TypeOf(err)))
		s.logFailure("search", err)
		return nil, err
	}

	page := v.(*Page)
	span.SetAttributes(telemetry.Int("search.total", page.TotalCount))
	s.publish(ctx, p, page, false)
	return page, nil
}

func (s *Service) cachedPage(ctx context.Context, key string) (*Page, bool) {
	if s.cache == nil {
		return nil, false
	}
	var page Page
	if err := cache.GetJSON(ctx, s.cache, key, &page); err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.Warn("search cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return &page, true
}

func (s *Service) storePage(ctx context.Context, key string, page *Page) {
	if s.cache == nil {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, key, page, s.opts.CacheTTL); err != nil {
		s.logger.Warn("search cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, p Params, page *Page, cached bool) {
	ev := events.SearchPerformed{
		Query:      p.Query,
		Language:   string(p.Language),
		Filters:    p.Filters(),
		Limit:      p.Limit,
		Offset:     p.Offset,
		TotalCount: page.TotalCount,
		Returned:   len(page.Items),
		Cached:     cached,
		RequestID:  telemetry.RequestIDFrom(ctx),
		At:         s.now().UTC(),
	}
	if err := s.pub.PublishSearch(ctx, ev); err != nil {
		s.logger.Warn("publish search event failed", zap.Error(err))
	}
}

// ─── Job detail ───────────────────────────────────────────────────────────────

// GetJob returns an active job with its company name.
func (s *Service) GetJob(ctx context.Context, id int64) (*JobResult, error) {
	ctx, span := s.tracer.Start(ctx, "search.GetJob")
	defer span.End()

	if id <= 0 {
		return nil, apperr.InvalidInput(fmt.Sprintf("invalid job id %d", id), nil)
	}

	qctx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	job, err := s.backend.GetJob(qctx, id)
	if err != nil {
		err = classify(err, "get job")
		span.RecordError(err)
		s.logFailure("get job", err)
		return nil, err
	}
	return job, nil
}

// ─── Company facets ───────────────────────────────────────────────────────────

// CompanyFacets returns companies with active jobs in lang (default language
// when empty), served from the cache when the scheduler has filled it.
func (s *Service) CompanyFacets(ctx context.Context, lang string) ([]CompanyFacet, error) {
	ctx, span := s.tracer.Start(ctx, "search.CompanyFacets")
	defer span.End()

	language, err := s.parseLanguage(lang)
	if err != nil {
		return nil, err
	}

	key := facetKey(language)
	if s.cache != nil {
		var facets []CompanyFacet
		err := cache.GetJSON(ctx, s.cache, key, &facets)
		if err == nil {
			return facets, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.Warn("facet cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	return s.loadFacets(ctx, language)
}

// RefreshFacets recomputes the facets of every language and overwrites the
// cached copies. It stops at the first failing language.
func (s *Service) RefreshFacets(ctx context.Context) error {
	for _, lang := range jobs.AllOptions().Languages {
		if _, err := s.loadFacets(ctx, lang); err != nil {
			return fmt.Errorf("refresh %s facets: %w", lang, err)
		}
	}
	return nil
}

func (s *Service) loadFacets(ctx context.Context, lang jobs.Language) ([]CompanyFacet, error) {
	qctx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	facets, err := s.backend.CompanyFacets(qctx, lang)
	if err != nil {
		err = classify(err, "company facets")
		s.logFailure("company facets", err)
		return nil, err
	}
	if facets == nil {
		facets = []CompanyFacet{}
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, facetKey(lang), facets, s.opts.FacetTTL); err != nil {
			s.logger.Warn("facet cache write failed", zap.String("language", string(lang)), zap.Error(err))
		}
	}
	return facets, nil
}

func (s *Service) parseLanguage(lang string) (jobs.Language, error) {
	if lang == "" {
		return s.opts.Limits.DefaultLanguage, nil
	}
	l, err := jobs.ParseLanguage(lang)
	if err != nil {
		return "", invalid("language", err)
	}
	return l, nil
}

func facetKey(lang jobs.Language) string {
	return facetKeyNamespace + ":" + string(lang)
}

// ─── Errors ───────────────────────────────────────────────────────────────────

// classify turns a backend failure into a single opaque DomainError.
// Backends usually classify already; this covers timeouts and anything
// they let through.
func classify(err error, op string) error {
	var de *apperr.DomainError
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Unavailable(op+" timed out", err)
	}
	return apperr.Internal(op+" failed", err)
}

func (s *Service) logFailure(op string, err error) {
	switch apperr.TypeOf(err) {
	case apperr.ErrTypeInvalidInput, apperr.ErrTypeNotFound:
		return
	}
	s.logger.Error(op+" failed", zap.String("type", string(apperr.TypeOf(err))), zap.Error(err))
}
