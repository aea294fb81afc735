// migrate applies or rolls back the search schema.
//
//	migrate up      apply every pending migration (default)
//	migrate down    roll back the latest applied migration
//	migrate status  list migrations and whether they are applied
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rodruizronald/tw-search/internal/db"
	"github.com/rodruizronald/tw-search/internal/db/migrations"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, databaseURL, db.PoolOptions{MaxConns: 2})
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()

	migrator := db.NewMigrator(pool, logger)

	switch cmd {
	case "up":
		if err := migrator.Up(ctx, migrations.All); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		logger.Info("All migrations completed successfully")

	case "down":
		if err := migrator.Down(ctx, migrations.All); err != nil {
			logger.Fatal("Failed to roll back migration", zap.Error(err))
		}

	case "status":
		if err := migrator.CreateMigrationsTable(ctx); err != nil {
			logger.Fatal("Failed to create migrations table", zap.Error(err))
		}
		applied, err := migrator.GetAppliedMigrations(ctx)
		if err != nil {
			logger.Fatal("Failed to get applied migrations", zap.Error(err))
		}
		for _, m := range migrations.All {
			at, ok := applied[m.Version]
			fields := []zap.Field{
				zap.Int("version", m.Version),
				zap.String("description", m.Description),
				zap.Bool("applied", ok),
			}
			if ok {
				fields = append(fields, zap.Time("applied_at", at))
			}
			logger.Info("Migration", fields...)
		}
		logger.Info("Pending migrations", zap.Int("count", len(db.Pending(migrations.All, applied))))

	default:
		logger.Fatal("Unknown command, expected up, down or status", zap.String("command", cmd))
	}
}
