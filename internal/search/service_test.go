package search_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodruizronald/tw-search/internal/apperr"
	"github.com/rodruizronald/tw-search/internal/cache"
	"github.com/rodruizronald/tw-search/internal/events"
	"github.com/rodruizronald/tw-search/internal/jobs"
	"github.com/rodruizronald/tw-search/internal/search"
	"github.com/rodruizronald/tw-search/internal/search/memory"
	"github.com/rodruizronald/tw-search/internal/telemetry"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

type countingBackend struct {
	search.Backend
	searches atomic.Int32
	facets   atomic.Int32
	err      error
}

func (b *countingBackend) Search(ctx context.Context, p search.Params) (*search.Page, error) {
	b.searches.Add(1)
	if b.err != nil {
		return nil, b.err
	}
	return b.Backend.Search(ctx, p)
}

func (b *countingBackend) CompanyFacets(ctx context.Context, lang jobs.Language) ([]search.CompanyFacet, error) {
	b.facets.Add(1)
	if b.err != nil {
		return nil, b.err
	}
	return b.Backend.CompanyFacets(ctx, lang)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.SearchPerformed
}

func (r *recordingPublisher) PublishSearch(_ context.Context, ev events.SearchPerformed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) Close() {}

func (r *recordingPublisher) all() []events.SearchPerformed {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.SearchPerformed(nil), r.events...)
}

type slowBackend struct {
	search.Backend
}

func (slowBackend) Search(ctx context.Context, _ search.Params) (*search.Page, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// gatedBackend holds every search until release is closed.
type gatedBackend struct {
	search.Backend
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (g *gatedBackend) Search(ctx context.Context, p search.Params) (*search.Page, error) {
	g.calls.Add(1)
	select {
	case g.entered <- struct{}{}:
	default:
	}
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.Backend.Search(ctx, p)
}

func fixtureEngine(t *testing.T) *memory.Engine {
	t.Helper()
	created := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	mk := func(id, company int64, title string, mode jobs.WorkMode) jobs.Job {
		return jobs.Job{
			ID: id, CompanyID: company, Title: title,
			ExperienceLevel: jobs.ExperienceMidLevel,
			EmploymentType:  jobs.EmploymentFullTime,
			Location:        jobs.LocationCostaRica,
			WorkMode:        mode,
			JobFunction:     jobs.FunctionTechnologyEngineering,
			Language:        jobs.LanguageEnglish,
			IsActive:        true,
			CreatedAt:       created.Add(time.Duration(id) * time.Hour),
		}
	}
	e, err := memory.New(
		[]jobs.Company{{ID: 1, Name: "Acme"}, {ID: 2, Name: "Globex"}},
		[]jobs.Job{
			mk(1, 1, "Backend Engineer", jobs.WorkModeRemote),
			mk(2, 1, "Frontend Engineer", jobs.WorkModeOnsite),
			mk(3, 2, "Platform Engineer", jobs.WorkModeRemote),
			mk(4, 2, "Data Analyst", jobs.WorkModeHybrid),
		})
	require.NoError(t, err)
	return e
}

func newService(t *testing.T, b search.Backend, c cache.Cache, pub events.Publisher) *search.Service {
	t.Helper()
	return search.NewService(b, c, pub, nil, search.DefaultOptions())
}

// ── search ────────────────────────────────────────────────────────────────────

func TestService_Search(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(t, fixtureEngine(t), nil, pub)

	ctx := telemetry.WithRequestID(context.Background(), "req-1")
	page, err := svc.Search(ctx, search.Params{Query: "engineer", WorkMode: jobs.WorkModeRemote})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Items[0].ID)
	assert.Equal(t, "Globex", page.Items[0].CompanyName)
	assert.Equal(t, 20, page.Limit)

	evs := pub.all()
	require.Len(t, evs, 1)
	assert.Equal(t, "engineer", evs[0].Query)
	assert.Equal(t, "english", evs[0].Language)
	assert.Equal(t, map[string]string{"work_mode": "remote"}, evs[0].Filters)
	assert.Equal(t, 2, evs[0].TotalCount)
	assert.Equal(t, 2, evs[0].Returned)
	assert.Equal(t, "req-1", evs[0].RequestID)
	assert.False(t, evs[0].Cached)
}

func TestService_BlankQueryNeverReachesBackend(t *testing.T) {
	b := &countingBackend{Backend: fixtureEngine(t)}
	svc := newService(t, b, nil, nil)

	for _, q := range []string{"", "   ", "\t\n"} {
		page, err := svc.Search(context.Background(), search.Params{Query: q})
		require.NoError(t, err)
		assert.Zero(t, page.TotalCount)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
	}
	assert.Zero(t, b.searches.Load())
}

func TestService_InvalidParams(t *testing.T) {
	b := &countingBackend{Backend: fixtureEngine(t)}
	svc := newService(t, b, nil, nil)

	_, err := svc.Search(context.Background(), search.Params{Query: "go", Limit: 500})
	assert.True(t, apperr.Is(err, apperr.ErrTypeInvalidInput))

	_, err = svc.Search(context.Background(), search.Params{Query: "go", WorkMode: "Remote"})
	assert.True(t, apperr.Is(err, apperr.ErrTypeInvalidInput))

	_, err = svc.SearchRaw(context.Background(), search.RawParams{SearchQuery: "go", Offset: "-3"})
	assert.True(t, apperr.Is(err, apperr.ErrTypeInvalidInput))

	assert.Zero(t, b.searches.Load())
}

func TestService_CachesPages(t *testing.T) {
	b := &countingBackend{Backend: fixtureEngine(t)}
	pub := &recordingPublisher{}
	svc := newService(t, b, cache.NewMemory(cache.DefaultOptions()), pub)

	p := search.Params{Query: "engineer"}
	first, err := svc.Search(context.Background(), p)
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, int32(1), b.searches.Load())
	assert.Equal(t, first.TotalCount, second.TotalCount)
	require.Len(t, second.Items, len(first.Items))
	assert.Equal(t, first.Items[0].ID, second.Items[0].ID)
	assert.Equal(t, first.Items[0].CompanyName, second.Items[0].CompanyName)

	evs := pub.all()
	require.Len(t, evs, 2)
	assert.False(t, evs[0].Cached)
	assert.True(t, evs[1].Cached)

	p.Offset = 1
	_, err = svc.Search(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, int32(2), b.searches.Load(), "another page is another key")
}

func TestService_BackendErrorsAreOpaque(t *testing.T) {
	b := &countingBackend{Backend: fixtureEngine(t), err: errors.New("pq: relation \"jobs\" does not exist")}
	svc := newService(t, b, nil, nil)

	_, err := svc.Search(context.Background(), search.Params{Query: "engineer"})
	require.Error(t, err)
	assert.Equal(t, apperr.ErrTypeInternal, apperr.TypeOf(err))
	assert.Equal(t, "internal server error", apperr.PublicMessage(err))
}

func TestService_BackendDomainErrorsPassThrough(t *testing.T) {
	b := &countingBackend{Backend: fixtureEngine(t), err: apperr.Unavailable("database unavailable", nil)}
	svc := newService(t, b, nil, nil)

	_, err := svc.Search(context.Background(), search.Params{Query: "engineer"})
	assert.Equal(t, apperr.ErrTypeUnavailable, apperr.TypeOf(err))
}

func TestService_QueryTimeout(t *testing.T) {
	opts := search.DefaultOptions()
	opts.QueryTimeout = 20 * time.Millisecond
	svc := search.NewService(slowBackend{Backend: fixtureEngine(t)}, nil, nil, nil, opts)

	_, err := svc.Search(context.Background(), search.Params{Query: "engineer"})
	assert.Equal(t, apperr.ErrTypeUnavailable, apperr.TypeOf(err))
}

func TestService_CancelledCallerDoesNotFailSharedSearch(t *testing.T) {
	g := &gatedBackend{
		Backend: fixtureEngine(t),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc := newService(t, g, nil, nil)
	p := search.Params{Query: "engineer"}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.Search(ctxA, p)
		errA <- err
	}()
	<-g.entered

	type result struct {
		page *search.Page
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		page, err := svc.Search(context.Background(), p)
		resB <- result{page, err}
	}()
	// let the second caller join the in-flight search
	time.Sleep(50 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.Equal(t, apperr.ErrTypeUnavailable, apperr.TypeOf(err))
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller kept waiting on the shared search")
	}

	close(g.release)
	select {
	case r := <-resB:
		require.NoError(t, r.err)
		assert.Equal(t, 3, r.page.TotalCount)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never returned")
	}
	assert.Equal(t, int32(1), g.calls.Load())
}

// ── detail ────────────────────────────────────────────────────────────────────

func TestService_GetJob(t *testing.T) {
	svc := newService(t, fixtureEngine(t), nil, nil)

	job, err := svc.GetJob(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Data Analyst", job.Title)

	_, err = svc.GetJob(context.Background(), 0)
	assert.True(t, apperr.Is(err, apperr.ErrTypeInvalidInput))

	_, err = svc.GetJob(context.Background(), 404)
	assert.True(t, apperr.Is(err, apperr.ErrTypeNotFound))
}

// ── facets ────────────────────────────────────────────────────────────────────

func TestService_CompanyFacets(t *testing.T) {
	b := &countingBackend{Backend: fixtureEngine(t)}
	svc := newService(t, b, cache.NewMemory(cache.DefaultOptions()), nil)

	facets, err := svc.CompanyFacets(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []search.CompanyFacet{{Name: "Acme", ActiveJobs: 2}, {Name: "Globex", ActiveJobs: 2}}, facets)

	_, err = svc.CompanyFacets(context.Background(), "english")
	require.NoError(t, err)
	assert.Equal(t, int32(1), b.facets.Load(), "second read served from cache")

	spanish, err := svc.CompanyFacets(context.Background(), "spanish")
	require.NoError(t, err)
	assert.NotNil(t, spanish)
	assert.Empty(t, spanish)

	_, err = svc.CompanyFacets(context.Background(), "klingon")
	assert.True(t, apperr.Is(err, apperr.ErrTypeInvalidInput))
}

func TestService_RefreshFacets(t *testing.T) {
	b := &countingBackend{Backend: fixtureEngine(t)}
	svc := newService(t, b, cache.NewMemory(cache.DefaultOptions()), nil)

	require.NoError(t, svc.RefreshFacets(context.Background()))
	assert.Equal(t, int32(len(jobs.AllOptions().Languages)), b.facets.Load())

	_, err := svc.CompanyFacets(context.Background(), "english")
	require.NoError(t, err)
	assert.Equal(t, int32(len(jobs.AllOptions().Languages)), b.facets.Load())

	b.err = errors.New("boom")
	assert.Error(t, svc.RefreshFacets(context.Background()))
}
