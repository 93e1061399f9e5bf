package migrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pharmacy-store/internal/models"
	"pharmacy-store/internal/schema"
	"pharmacy-store/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	// TrackingTable records the ID of every applied step.
	TrackingTable = "schema_migrations"
	lockKey       = "schema-migrate"
	lockTTL       = 5 * time.Minute
)

var (
	// ErrLocked means another process holds the migration lock.
	ErrLocked = errors.New("migration lock held by another process")
	// ErrUnknownMigration means the database recorded a step this binary
	// does not know about.
	ErrUnknownMigration = errors.New("database has unknown migration")
	ErrOutOfOrder       = errors.New("migration steps out of order")
)

// Locker serialises runners across processes.
type Locker interface {
	AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, lockKey string) error
}

// Notifier is told about every applied step.
type Notifier interface {
	PublishSchemaMigrated(ctx context.Context, event *models.SchemaMigratedEvent) error
}

// VersionStore publishes the ID of the last applied step.
type VersionStore interface {
	SetSchemaVersion(ctx context.Context, migrationID string) error
}

type Option func(*Runner)

func WithLocker(l Locker) Option { return func(r *Runner) { r.locker = l } }

func WithNotifier(n Notifier) Option { return func(r *Runner) { r.notifier = n } }

func WithVersionStore(v VersionStore) Option { return func(r *Runner) { r.versions = v } }

// WithSteps replaces the built-in history.
func WithSteps(s []Step) Option { return func(r *Runner) { r.steps = s } }

// Runner brings a database from empty to the current schema.
type Runner struct {
	db       *sqlx.DB
	dialect  schema.Dialect
	steps    []Step
	locker   Locker
	notifier Notifier
	versions VersionStore
	logger   *zap.Logger
}

// NewRunner creates a runner for db using the built-in history.
func NewRunner(db *sqlx.DB, opts ...Option) (*Runner, error) {
	dialect, err := schema.DialectFor(db.DriverName())
	if err != nil {
		return nil, err
	}

	r := &Runner{
		db:      db,
		dialect: dialect,
		steps:   Steps(),
		logger:  util.Named("migrate"),
	}
	for _, opt := range opts {
		opt(r)
	}

	for i := 1; i < len(r.steps); i++ {
		if r.steps[i].ID <= r.steps[i-1].ID {
			return nil, fmt.Errorf("%s after %s: %w", r.steps[i].ID, r.steps[i-1].ID, ErrOutOfOrder)
		}
	}
	return r, nil
}

func (r *Runner) createTrackingTable(ctx context.Context) error {
	appliedAt := "TIMESTAMP"
	if r.dialect == schema.Postgres {
		appliedAt = "TIMESTAMPTZ"
	}
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(255) PRIMARY KEY,
			description VARCHAR(255) NOT NULL,
			applied_at %s NOT NULL
		)`, TrackingTable, appliedAt)
	_, err := r.db.ExecContext(ctx, query)
	return err
}

// Applied lists the recorded steps in the order they were applied.
func (r *Runner) Applied(ctx context.Context) ([]models.AppliedMigration, error) {
	if err := r.createTrackingTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var applied []models.AppliedMigration
	err := r.db.SelectContext(ctx, &applied,
		fmt.Sprintf("SELECT id, description, applied_at FROM %s ORDER BY id", TrackingTable))
	return applied, err
}

// Pending lists the steps not yet recorded in the database.
func (r *Runner) Pending(ctx context.Context) ([]Step, error) {
	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(r.steps))
	for _, s := range r.steps {
		known[s.ID] = true
	}
	done := make(map[string]bool, len(applied))
	for _, a := range applied {
		if !known[a.ID] {
			return nil, fmt.Errorf("%s: %w", a.ID, ErrUnknownMigration)
		}
		done[a.ID] = true
	}

	var pending []Step
	for _, s := range r.steps {
		if !done[s.ID] {
			pending = append(pending, s)
		}
	}
	return pending, nil
}

// Up applies every pending step in order and returns the IDs it applied.
// Steps already recorded are skipped, so running Up twice is a no-op.
func (r *Runner) Up(ctx context.Context) ([]string, error) {
	ctx, span := util.StartSpan(ctx, "Runner.Up")
	defer span.End()

	if r.locker != nil {
		ok, err := r.locker.AcquireLock(ctx, lockKey, lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire migration lock: %w", err)
		}
		if !ok {
			return nil, ErrLocked
		}
		defer func() {
			if err := r.locker.ReleaseLock(context.Background(), lockKey); err != nil {
				r.logger.Error("Failed to release migration lock", zap.Error(err))
			}
		}()
	}

	pending, err := r.Pending(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		r.logger.Info("Schema is up to date")
		return nil, nil
	}

	applied := make([]string, 0, len(pending))
	for _, step := range pending {
		if err := r.apply(ctx, step); err != nil {
			return applied, fmt.Errorf("migration %s failed: %w", step.ID, err)
		}
		applied = append(applied, step.ID)
	}

	if r.versions != nil {
		last := applied[len(applied)-1]
		if err := r.versions.SetSchemaVersion(ctx, last); err != nil {
			r.logger.Error("Failed to publish schema version", zap.String("migration_id", last), zap.Error(err))
		}
	}

	r.logger.Info("Migrations completed", zap.Strings("applied", applied))
	return applied, nil
}

func (r *Runner) apply(ctx context.Context, step Step) error {
	start := time.Now()
	r.logger.Info("Running migration", zap.String("migration_id", step.ID))

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range step.Statements(r.dialect) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		tx.Rebind(fmt.Sprintf("INSERT INTO %s (id, description, applied_at) VALUES (?, ?, ?)", TrackingTable)),
		step.ID, step.Description, time.Now().UTC())
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	util.MigrationsAppliedTotal.Inc()
	util.MigrationDuration.Observe(time.Since(start).Seconds())

	if r.notifier != nil {
		event := &models.SchemaMigratedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeSchemaMigrated,
				Timestamp: time.Now(),
			},
			MigrationID: step.ID,
			Description: step.Description,
		}
		if err := r.notifier.PublishSchemaMigrated(ctx, event); err != nil {
			r.logger.Error("Failed to publish SchemaMigrated event", zap.Error(err))
		}
	}
	return nil
}
