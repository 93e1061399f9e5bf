package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pharmacy-store/internal/schema"
	"pharmacy-store/internal/util"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Open connects to the database behind driver/dsn. sqlite connections always
// enforce foreign keys; in-memory sqlite is pinned to a single connection so
// every query sees the same database.
func Open(driver, dsn string) (*sqlx.DB, error) {
	dialect, err := schema.DialectFor(driver)
	if err != nil {
		return nil, err
	}

	if dialect == schema.SQLite && !strings.Contains(dsn, "_foreign_keys") && !strings.Contains(dsn, "_fk") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
	}

	db, err := sqlx.Connect(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialect == schema.SQLite && strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if dialect == schema.SQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Store is the owning application's data access layer. It adds writes on
// top of the queries in Reader.
type Store struct {
	Reader
	db     *sqlx.DB
	tx     *sqlx.Tx
	logger *zap.Logger
}

// New wraps an open database for the owning application.
func New(db *sqlx.DB) *Store {
	return &Store{
		Reader: Reader{q: db},
		db:     db,
		logger: util.GetLogger(),
	}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// InTx runs fn against a Store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise. Nested
// calls reuse the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	txStore := &Store{
		Reader: Reader{q: tx},
		db:     s.db,
		tx:     tx,
		logger: s.logger,
	}
	if err := fn(txStore); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := s.q.ExecContext(ctx, s.q.Rebind(query), args...)
	if err != nil {
		return 0, classify(err)
	}
	return res.RowsAffected()
}

func (s *Store) insertReturning(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return classify(sqlx.GetContext(ctx, s.q, dest, s.q.Rebind(query), args...))
}

// deleteByKey removes the row of table whose primary key equals key.
// Dependent rows go with it as declared by each foreign key's ON DELETE.
func (s *Store) deleteByKey(ctx context.Context, table string, key interface{}) error {
	t := schema.MustLookup(table)

	ctx, span := util.StartSpan(ctx, "Store.Delete."+t.Entity)
	defer span.End()

	n, err := s.exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t.Name, t.PrimaryKey), key)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", t.Name, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", t.Name, key, ErrNotFound)
	}

	s.logger.Info("Row deleted", zap.String("table", t.Name), zap.Any("key", key))
	return nil
}
