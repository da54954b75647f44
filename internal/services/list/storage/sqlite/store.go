// Package sqlite provides a SQLite-backed list storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sqlitemigrate "github.com/louisbranch/demonlist.space/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// querier is the query surface shared by *sql.DB and *sql.Conn, so the
// same store code serves both the pooled handle and a pinned connection.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// view runs list storage operations against one querier.
type view struct {
	db querier
}

// Store persists list state in SQLite.
type Store struct {
	view
	sqlDB *sql.DB
}

// Open opens a SQLite list store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{view: view{db: sqlDB}, sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LimitConnections caps the pooled handle at n open connections, so at
// most n workers can hold one at a time and further Acquire calls block
// until a connection frees up or their context ends.
func (s *Store) LimitConnections(n int) {
	if s == nil || s.sqlDB == nil || n <= 0 {
		return
	}
	s.sqlDB.SetMaxOpenConns(n)
}

// Acquire pins one pooled connection and returns a store bound to it.
// The release function returns the connection to the pool and must be
// called exactly once.
func (s *Store) Acquire(ctx context.Context) (storage.Store, func(), error) {
	if s == nil || s.sqlDB == nil {
		return nil, nil, fmt.Errorf("storage is not configured")
	}
	conn, err := s.sqlDB.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("acquire connection: %w", err)
	}
	release := func() {
		_ = conn.Close()
	}
	return view{db: conn}, release, nil
}

// nullIfEmpty maps empty strings to NULL on the way into the database.
func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// buildWindow appends the filter predicate and key bounds to base and
// returns the final query with its bind arguments. descending reports
// that rows come back in reverse key order and need reversing.
func buildWindow(base, keyColumn string, w storage.Window) (string, []any, bool) {
	var predicates []string
	var args []any
	if w.Filter.SQL != "" {
		predicates = append(predicates, w.Filter.SQL)
		args = append(args, w.Filter.Args...)
	}
	if w.After != nil {
		predicates = append(predicates, keyColumn+" > ?")
		args = append(args, *w.After)
	}
	if w.Before != nil {
		predicates = append(predicates, keyColumn+" < ?")
		args = append(args, *w.Before)
	}

	query := base
	if len(predicates) > 0 {
		query += " WHERE " + strings.Join(predicates, " AND ")
	}

	// Anchoring on Before alone asks for the page that ends just before
	// the key, so the scan runs backwards.
	descending := w.Before != nil && w.After == nil
	if descending {
		query += " ORDER BY " + keyColumn + " DESC LIMIT ?"
	} else {
		query += " ORDER BY " + keyColumn + " ASC LIMIT ?"
	}
	args = append(args, w.Limit)
	return query, args, descending
}

func checkWindow(w storage.Window) error {
	if w.Limit <= 0 {
		return fmt.Errorf("window limit must be greater than zero")
	}
	return nil
}

// boundaryKey returns the smallest or largest key matching the filter.
func (v view) boundaryKey(ctx context.Context, table, keyColumn string, filter storage.Condition, largest bool) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if v.db == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	query := "SELECT " + keyColumn + " FROM " + table
	if filter.SQL != "" {
		query += " WHERE " + filter.SQL
	}
	if largest {
		query += " ORDER BY " + keyColumn + " DESC LIMIT 1"
	} else {
		query += " ORDER BY " + keyColumn + " ASC LIMIT 1"
	}

	var key int64
	err := v.db.QueryRowContext(ctx, query, filter.Args...).Scan(&key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("boundary key for %s: %w", table, err)
	}
	return key, nil
}

// keyExists reports whether any filtered row lies beyond key in the
// given direction. cmp must be ">" or "<".
func (v view) keyExists(ctx context.Context, table, keyColumn string, filter storage.Condition, cmp string, key int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if v.db == nil {
		return false, fmt.Errorf("storage is not configured")
	}

	where := keyColumn + " " + cmp + " ?"
	args := append(append([]any{}, filter.Args...), key)
	if filter.SQL != "" {
		where = filter.SQL + " AND " + where
	}
	query := "SELECT EXISTS (SELECT 1 FROM " + table + " WHERE " + where + ")"

	var exists bool
	if err := v.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("key probe for %s: %w", table, err)
	}
	return exists, nil
}

var (
	_ storage.Store = view{}
	_ storage.Store = (*Store)(nil)
)
