package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/passgate/internal/auth/store"
	"github.com/aussiebroadwan/passgate/pkg/secctx"
	"github.com/aussiebroadwan/passgate/pkg/slogx"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	db  *sql.DB
	dsn string
}

var _ store.Store = (*Store)(nil)

// NewStore opens the database at dsn. ":memory:" gives a private in-memory
// database, which is what the tests use.
//
// The pool is pinned to one connection: sqlite serialises writers anyway,
// and an in-memory database only lives as long as its connection.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(context.Background(), `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) WithTx(ctx context.Context, name string, fn func(ctx context.Context, tx store.Tx) error) error {
	return s.withTx(ctx, secctx.Transaction{Name: name}, fn)
}

func (s *Store) WithReadOnlyTx(ctx context.Context, name string, fn func(ctx context.Context, tx store.Tx) error) error {
	return s.withTx(ctx, secctx.Transaction{Name: name, ReadOnly: true}, fn)
}

// withTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) withTx(ctx context.Context, marker secctx.Transaction, fn func(ctx context.Context, tx store.Tx) error) error {
	if secctx.Capture(ctx).InTransaction() {
		return store.ErrNestedTx
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = sqlTx.Rollback() // safe to call even after commit
	}()

	ctx = secctx.WithTransaction(ctx, marker)
	if err := fn(ctx, newTx(sqlTx)); err != nil {
		slogx.FromContext(ctx).Debug("transaction rolled back",
			"tx", marker.Name,
			"read_only", marker.ReadOnly,
			"error", err,
		)
		return err
	}

	return sqlTx.Commit()
}

func (s *Store) Accounts() store.Accounts             { return &accountsRepo{db: s.db} }
func (s *Store) Clients() store.Clients               { return &clientsRepo{db: s.db} }
func (s *Store) Authorizations() store.Authorizations { return &authorizationsRepo{db: s.db} }

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// checkWritable rejects writes inside a read-only transaction.
func checkWritable(ctx context.Context) error {
	if secctx.Capture(ctx).ReadOnly() {
		return store.ErrReadOnlyTx
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapConstraint(err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return store.ErrAlreadyExists
		}
	}
	return err
}

// execOne runs a single-row UPDATE and reports ErrNotFound when no row
// matched.
func execOne(ctx context.Context, db dbtx, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// joinFields and splitFields store string lists space-delimited, the same
// encoding OAuth uses for scope.
func joinFields(v []string) string { return strings.Join(v, " ") }

func splitFields(s string) []string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return nil
	}
	return f
}
