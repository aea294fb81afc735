// Package scheduler wires up the cron job that periodically recomputes the
// company facets so the filter bar is served from the cache.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher recomputes cached data. search.Service satisfies it.
type Refresher interface {
	RefreshFacets(ctx context.Context) error
}

// Scheduler wraps robfig/cron and manages the refresh loop.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	logger    *zap.Logger
	spec      string // cron spec, e.g. "@every 10m"

	// wg tracks the startup run so Stop can wait for it.
	wg sync.WaitGroup
}

// New creates a Scheduler firing on spec.
func New(refresher Refresher, spec string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		refresher: refresher,
		logger:    logger,
		spec:      spec,
	}
}

// Start registers the job and starts the scheduler. Also runs one refresh
// immediately so the facets are cached without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runRefresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("facet refresh scheduled", zap.String("spec", s.spec))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runRefresh(ctx)
	}()

	return nil
}

// Stop shuts down the scheduler and waits for running refreshes.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("facet refresh stopped")
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	if err := s.refresher.RefreshFacets(ctx); err != nil {
		s.logger.Warn("facet refresh failed", zap.Error(err))
		return
	}
	s.logger.Debug("facet refresh complete")
}
