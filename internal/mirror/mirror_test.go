package mirror

import (
	"context"
	"path/filepath"
	"testing"

	"pharmacy-store/internal/migrate"
	"pharmacy-store/internal/models"
	"pharmacy-store/internal/schema"
	"pharmacy-store/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ownerDB creates a migrated sqlite file the way the owning application
// would, and returns its path.
func ownerDB(t *testing.T) (*sqlx.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pharmacy.db")

	db, err := store.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	runner, err := migrate.NewRunner(db)
	require.NoError(t, err)
	_, err = runner.Up(context.Background())
	require.NoError(t, err)
	return db, path
}

func TestReadOnlyDSN(t *testing.T) {
	assert.Equal(t, "file:/tmp/p.db?mode=ro", readOnlyDSN(schema.SQLite, "/tmp/p.db"))
	assert.Equal(t, "file:p.db?cache=shared&mode=ro", readOnlyDSN(schema.SQLite, "file:p.db?cache=shared"))
	assert.Equal(t,
		"postgres://app:secret@db:5432/app?sslmode=disable&default_transaction_read_only=on",
		readOnlyDSN(schema.Postgres, "postgres://app:secret@db:5432/app?sslmode=disable"))
	assert.Equal(t,
		"host=db dbname=app default_transaction_read_only=on",
		readOnlyDSN(schema.Postgres, "host=db dbname=app"))
}

func TestMirrorReadsOwnerRows(t *testing.T) {
	owner, path := ownerDB(t)
	ctx := context.Background()

	s := store.New(owner)
	brand := &models.Brand{Name: "Acme Labs"}
	require.NoError(t, s.CreateBrand(ctx, brand))

	m, err := Open("sqlite3", path)
	require.NoError(t, err)
	defer m.Close()

	got, err := m.GetBrand(ctx, brand.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Labs", got.Name)

	n, err := m.Count(ctx, schema.BrandTable)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = m.db.ExecContext(ctx, "DELETE FROM brand")
	assert.Error(t, err)
}

func TestVerifyMatchingSchema(t *testing.T) {
	_, path := ownerDB(t)

	m, err := Open("sqlite3", path)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.PingContext(context.Background()))
	drifts, err := m.Verify(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestVerifyReportsDrift(t *testing.T) {
	owner, path := ownerDB(t)

	owner.MustExec("ALTER TABLE brand ADD COLUMN brand_slogan TEXT")
	owner.MustExec("ALTER TABLE brand DROP COLUMN brand_location")
	owner.MustExec("DROP TABLE wishlist")

	m, err := Open("sqlite3", path)
	require.NoError(t, err)
	defer m.Close()

	drifts, err := m.Verify(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []Drift{
		{Kind: MissingColumn, Table: "brand", Column: "brand_location"},
		{Kind: UnexpectedColumn, Table: "brand", Column: "brand_slogan"},
		{Kind: MissingTable, Table: "wishlist"},
	}, drifts)
}

func TestCompareNullability(t *testing.T) {
	brand := schema.MustLookup(schema.BrandTable)
	live := []liveColumn{
		{Name: "brand_id", Nullable: false},
		{Name: "brand_name", Nullable: true},
		{Name: "brand_location", Nullable: true},
		{Name: "brand_official_phone", Nullable: true},
	}

	drifts := compare(brand, live)
	require.Len(t, drifts, 1)
	assert.Equal(t, Drift{Kind: NullabilityMismatch, Table: "brand", Column: "brand_name"}, drifts[0])
	assert.Equal(t, "nullability_mismatch: brand.brand_name", drifts[0].String())
}
