// Package mirror gives a second application read access to the tables the
// owning application created, without the ability to change them.
package mirror

import (
	"context"
	"fmt"
	"strings"

	"pharmacy-store/internal/schema"
	"pharmacy-store/internal/store"
	"pharmacy-store/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Mirror is a read-only view over the owner's database.
type Mirror struct {
	*store.Reader
	db      *sqlx.DB
	dialect schema.Dialect
	logger  *zap.Logger
}

// Open connects to the owner's database with a read-only session. postgres
// sessions default every transaction to read only; sqlite files are opened
// with mode=ro.
func Open(driver, dsn string) (*Mirror, error) {
	dialect, err := schema.DialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(driver, readOnlyDSN(dialect, dsn))
	if err != nil {
		return nil, err
	}
	return New(db)
}

// New wraps an already open connection.
func New(db *sqlx.DB) (*Mirror, error) {
	dialect, err := schema.DialectFor(db.DriverName())
	if err != nil {
		return nil, err
	}
	return &Mirror{
		Reader:  store.NewReader(db),
		db:      db,
		dialect: dialect,
		logger:  util.Named("mirror"),
	}, nil
}

func readOnlyDSN(dialect schema.Dialect, dsn string) string {
	switch dialect {
	case schema.Postgres:
		if strings.Contains(dsn, "default_transaction_read_only") {
			return dsn
		}
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			return appendParam(dsn, "default_transaction_read_only=on")
		}
		return dsn + " default_transaction_read_only=on"
	case schema.SQLite:
		if strings.Contains(dsn, "mode=") {
			return dsn
		}
		if !strings.HasPrefix(dsn, "file:") {
			dsn = "file:" + dsn
		}
		return appendParam(dsn, "mode=ro")
	}
	return dsn
}

func appendParam(dsn, param string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}
	return dsn + "?" + param
}

// Close closes the underlying connection
func (m *Mirror) Close() error {
	return m.db.Close()
}

// PingContext reports whether the owner's database is reachable.
func (m *Mirror) PingContext(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return fmt.Errorf("mirror database unreachable: %w", err)
	}
	return nil
}
