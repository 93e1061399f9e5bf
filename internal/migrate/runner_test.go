package migrate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pharmacy-store/internal/mirror"
	"pharmacy-store/internal/models"
	"pharmacy-store/internal/schema"
	"pharmacy-store/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := store.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableNames(t *testing.T, db *sqlx.DB) []string {
	t.Helper()
	var names []string
	err := db.Select(&names, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	require.NoError(t, err)
	return names
}

type fakeLocker struct {
	mu       sync.Mutex
	held     bool
	released int
}

func (l *fakeLocker) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLocker) ReleaseLock(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	l.released++
	return nil
}

type recorder struct {
	events  []*models.SchemaMigratedEvent
	version string
}

func (r *recorder) PublishSchemaMigrated(ctx context.Context, event *models.SchemaMigratedEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) SetSchemaVersion(ctx context.Context, migrationID string) error {
	r.version = migrationID
	return nil
}

func TestUpCreatesEveryTable(t *testing.T) {
	db := openTestDB(t)
	r, err := NewRunner(db)
	require.NoError(t, err)

	applied, err := r.Up(context.Background())
	require.NoError(t, err)
	assert.Len(t, applied, len(Steps()))

	assert.Equal(t, []string{
		"brand", "cart", "cart_items", "customer", "doctor_consultation",
		"medicine_shop", "payment", "product", "schema_migrations", "wishlist",
	}, tableNames(t, db))

	var indexes int
	require.NoError(t, db.Get(&indexes, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name LIKE '%_idx'"))
	assert.Positive(t, indexes)
}

func TestUpIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	r, err := NewRunner(db)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = r.Up(ctx)
	require.NoError(t, err)

	applied, err := r.Up(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)

	pending, err := r.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	recorded, err := r.Applied(ctx)
	require.NoError(t, err)
	require.Len(t, recorded, len(Steps()))
	assert.Equal(t, "0001_create_brand", recorded[0].ID)
	assert.False(t, recorded[0].AppliedAt.IsZero())
}

func TestUpAppliesOnlyNewSteps(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first, err := NewRunner(db, WithSteps(Steps()[:4]))
	require.NoError(t, err)
	applied, err := first.Up(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, 4)

	full, err := NewRunner(db)
	require.NoError(t, err)
	pending, err := full.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, len(Steps())-4)
	assert.Equal(t, "0005_create_product", pending[0].ID)

	applied, err = full.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0005_create_product", applied[0])
}

func TestUnknownRecordedStep(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	full, err := NewRunner(db)
	require.NoError(t, err)
	_, err = full.Up(ctx)
	require.NoError(t, err)

	older, err := NewRunner(db, WithSteps(Steps()[:3]))
	require.NoError(t, err)
	_, err = older.Up(ctx)
	assert.True(t, errors.Is(err, ErrUnknownMigration))
}

func TestFailedStepRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	broken := append(Steps()[:1], Step{
		ID:          "0002_broken",
		Description: "broken",
		SQLite:      []string{"CREATE TABLE half_done (id INTEGER)", "NOT VALID SQL"},
	})
	r, err := NewRunner(db, WithSteps(broken))
	require.NoError(t, err)

	applied, err := r.Up(ctx)
	require.Error(t, err)
	assert.Equal(t, []string{"0001_create_brand"}, applied)
	assert.NotContains(t, tableNames(t, db), "half_done")

	recorded, err := r.Applied(ctx)
	require.NoError(t, err)
	assert.Len(t, recorded, 1)
}

func TestStepsMustBeOrdered(t *testing.T) {
	db := openTestDB(t)
	s := Steps()
	_, err := NewRunner(db, WithSteps([]Step{s[1], s[0]}))
	assert.True(t, errors.Is(err, ErrOutOfOrder))
}

func TestLockAndNotifications(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	locker := &fakeLocker{}
	rec := &recorder{}

	r, err := NewRunner(db, WithLocker(locker), WithNotifier(rec), WithVersionStore(rec))
	require.NoError(t, err)

	_, err = r.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, locker.released)
	assert.Len(t, rec.events, len(Steps()))
	assert.Equal(t, models.EventTypeSchemaMigrated, rec.events[0].EventType)
	assert.Equal(t, Steps()[len(Steps())-1].ID, rec.version)

	locker.held = true
	_, err = r.Up(ctx)
	assert.ErrorIs(t, err, ErrLocked)
}

func TestFirstStepIsFrozen(t *testing.T) {
	first := Steps()[0]
	assert.Equal(t, "0001_create_brand", first.ID)

	assert.Equal(t, []string{"CREATE TABLE brand (\n" +
		"\t\t\tbrand_id TEXT PRIMARY KEY,\n" +
		"\t\t\tbrand_name VARCHAR(50) NOT NULL,\n" +
		"\t\t\tbrand_location VARCHAR(50),\n" +
		"\t\t\tbrand_official_phone VARCHAR(15)\n" +
		"\t\t)"}, first.Statements(schema.SQLite))

	assert.Equal(t, []string{"CREATE TABLE brand (\n" +
		"\t\t\tbrand_id UUID PRIMARY KEY,\n" +
		"\t\t\tbrand_name VARCHAR(50) NOT NULL,\n" +
		"\t\t\tbrand_location VARCHAR(50),\n" +
		"\t\t\tbrand_official_phone VARCHAR(15)\n" +
		"\t\t)"}, first.Statements(schema.Postgres))
}

func TestEveryStepHasBothDialects(t *testing.T) {
	for _, s := range Steps() {
		assert.NotEmpty(t, s.Postgres, s.ID)
		assert.Len(t, s.SQLite, len(s.Postgres), s.ID)
	}
}

func TestHistoryMatchesDeclarations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	r, err := NewRunner(db)
	require.NoError(t, err)
	_, err = r.Up(ctx)
	require.NoError(t, err)

	m, err := mirror.New(db)
	require.NoError(t, err)
	drifts, err := m.Verify(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestLaterChangeIsNewStep(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	released, err := NewRunner(db)
	require.NoError(t, err)
	_, err = released.Up(ctx)
	require.NoError(t, err)

	addWebsite := Step{
		ID:          "0011_brand_website",
		Description: "add Brand.brand_website",
		Postgres:    []string{"ALTER TABLE brand ADD COLUMN brand_website VARCHAR(100)"},
		SQLite:      []string{"ALTER TABLE brand ADD COLUMN brand_website VARCHAR(100)"},
	}
	next, err := NewRunner(db, WithSteps(append(Steps(), addWebsite)))
	require.NoError(t, err)

	applied, err := next.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"0011_brand_website"}, applied)

	_, err = db.Exec("INSERT INTO brand (brand_id, brand_name, brand_website) VALUES ('b1', 'Acme', 'acme.example')")
	require.NoError(t, err)

	// The declarations were not updated, so the mirror reports the column.
	m, err := mirror.New(db)
	require.NoError(t, err)
	drifts, err := m.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, []mirror.Drift{{Kind: mirror.UnexpectedColumn, Table: "brand", Column: "brand_website"}}, drifts)
}
