// tw-search search-service
//
// Read-only job search over the jobs table. Exposes:
//   - GET /jobs/search   full-text search with filters and pagination
//   - GET /jobs/{id}     one active job
//   - GET /companies     company facets for the filter bar
//   - GET /filters       allowed enum values
//   - twsearch.v1.JobSearch over gRPC, plus grpc.health.v1
//
// The search engine is PostgreSQL (default), Supabase RPC, or an in-memory
// index loaded from a fixtures file.
package main

import (
	"context"
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/rodruizronald/tw-search/internal/config"
)

const version = "1.0.0"

func main() {
	app := fx.New(
		fx.Provide(
			config.Load,
			newLogger,
			newBackend,
			newCache,
			newPublisher,
			newService,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Invoke(
			registerTracer,
			registerHTTPServer,
			registerGRPCServer,
			registerScheduler,
		),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("[search-service] startup: %v", err)
	}

	<-app.Done()

	if err := app.Stop(context.Background()); err != nil {
		log.Fatalf("[search-service] shutdown: %v", err)
	}
}
