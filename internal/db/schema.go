package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Migration struct {
	Version     int
	Description string
	Up          string
	Down        string
}

// Migrator applies versioned migrations and records them in
// schema_migrations. Each migration runs in its own transaction.
type Migrator struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewMigrator(pool *pgxpool.Pool, logger *zap.Logger) *Migrator {
	return &Migrator{
		pool:   pool,
		logger: logger,
	}
}

func (m *Migrator) CreateMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     integer PRIMARY KEY,
			description text NOT NULL,
			applied_at  timestamptz NOT NULL DEFAULT now()
		)
	`
	if _, err := m.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[int]time.Time, error) {
	rows, err := m.pool.Query(ctx, "SELECT version, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}
	return applied, rows.Err()
}

func (m *Migrator) ApplyMigration(ctx context.Context, migration Migration) error {
	return pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version, description) VALUES ($1, $2)`,
			migration.Version, migration.Description); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		return nil
	})
}

func (m *Migrator) RollbackMigration(ctx context.Context, migration Migration) error {
	return pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, migration.Down); err != nil {
			return fmt.Errorf("failed to rollback migration %d: %w", migration.Version, err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM schema_migrations WHERE version = $1", migration.Version); err != nil {
			return fmt.Errorf("failed to remove migration record %d: %w", migration.Version, err)
		}
		return nil
	})
}

// Up applies every migration not yet recorded, in version order.
func (m *Migrator) Up(ctx context.Context, migrations []Migration) error {
	if err := m.CreateMigrationsTable(ctx); err != nil {
		return err
	}
	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, migration := range Pending(migrations, applied) {
		m.logger.Info("applying migration",
			zap.Int("version", migration.Version),
			zap.String("description", migration.Description))

		if err := m.ApplyMigration(ctx, migration); err != nil {
			return err
		}
	}
	return nil
}

// Down rolls back the most recently applied migration, if any.
func (m *Migrator) Down(ctx context.Context, migrations []Migration) error {
	if err := m.CreateMigrationsTable(ctx); err != nil {
		return err
	}
	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	last, ok := Latest(migrations, applied)
	if !ok {
		m.logger.Info("no migration to roll back")
		return nil
	}
	m.logger.Info("rolling back migration",
		zap.Int("version", last.Version),
		zap.String("description", last.Description))
	return m.RollbackMigration(ctx, last)
}

// Pending returns the migrations absent from applied, sorted by version.
func Pending(migrations []Migration, applied map[int]time.Time) []Migration {
	var out []Migration
	for _, mig := range migrations {
		if _, ok := applied[mig.Version]; !ok {
			out = append(out, mig)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

// Latest returns the applied migration with the highest version.
func Latest(migrations []Migration, applied map[int]time.Time) (Migration, bool) {
	var (
		best  Migration
		found bool
	)
	for _, mig := range migrations {
		if _, ok := applied[mig.Version]; ok && (!found || mig.Version > best.Version) {
			best, found = mig, true
		}
	}
	return best, found
}
