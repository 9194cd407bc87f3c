package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// SQL driver names accepted by OpenSQL.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Querier is the subset of *sql.DB and *sql.Tx used by repositories.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLDB wraps a database/sql pool for the sqlite and postgres stores. It
// carries open transactions in the context so repositories join them.
type SQLDB struct {
	db     *sql.DB
	driver string
}

// OpenSQL opens and pings a pool. For sqlite, dsn is a file path whose
// directory is created if missing.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLDB, error) {
	switch driver {
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "." && dir != "" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
				return nil, fmt.Errorf("create dirs: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrConnection, driver, err)
	}
	if driver == DriverSQLite {
		// A single writer keeps sqlite from reporting SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", ErrConnection, driver, err)
	}
	return &SQLDB{db: db, driver: driver}, nil
}

// Driver returns the driver name.
func (s *SQLDB) Driver() string { return s.driver }

// DB returns the underlying pool.
func (s *SQLDB) DB() *sql.DB { return s.db }

// Close closes the pool.
func (s *SQLDB) Close() error { return s.db.Close() }

// Ping checks the connection.
func (s *SQLDB) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

type sqlTxKey struct{}

// sqlTx is an open transaction plus the handlers to run if it rolls back.
type sqlTx struct {
	*sql.Tx

	mu       sync.Mutex
	rollback []func()
}

// Conn returns the transaction carried by ctx, or the pool.
func (s *SQLDB) Conn(ctx context.Context) Querier {
	if tx, ok := ctx.Value(sqlTxKey{}).(*sqlTx); ok {
		return tx.Tx
	}
	return s.db
}

// InTransaction runs fn inside a database transaction. The transaction is
// committed if fn returns nil and rolled back otherwise. A nested call joins
// the outer transaction.
func (s *SQLDB) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(sqlTxKey{}).(*sqlTx); ok {
		return fn(ctx)
	}

	begun, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrConnection, err)
	}
	tx := &sqlTx{Tx: begun}
	if err := fn(context.WithValue(ctx, sqlTxKey{}, tx)); err != nil {
		_ = tx.Rollback()
		tx.runRollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		tx.runRollback()
		return fmt.Errorf("%w: commit: %v", ErrQuery, err)
	}
	return nil
}

// OnRollback registers fn to run if the transaction carried by ctx rolls
// back. Handlers run in reverse order. It reports false, and does nothing,
// outside a transaction.
func OnRollback(ctx context.Context, fn func()) bool {
	tx, ok := ctx.Value(sqlTxKey{}).(*sqlTx)
	if !ok {
		return false
	}
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.rollback = append(tx.rollback, fn)
	return true
}

func (tx *sqlTx) runRollback() {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	for i := len(tx.rollback) - 1; i >= 0; i-- {
		tx.rollback[i]()
	}
	tx.rollback = nil
}

// Rebind rewrites ? placeholders to $1, $2, ... for postgres.
func (s *SQLDB) Rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var (
		sb strings.Builder
		n  int
	)
	sb.Grow(len(query) + 8)
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Migrate runs the statements in one transaction.
func (s *SQLDB) Migrate(ctx context.Context, statements ...string) error {
	return s.InTransaction(ctx, func(ctx context.Context) error {
		for _, stmt := range statements {
			if _, err := s.Conn(ctx).ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("%w: migrate: %v", ErrQuery, err)
			}
		}
		return nil
	})
}

// ClassifySQLError maps driver errors onto the package sentinels.
func ClassifySQLError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return fmt.Errorf("%w: %v", ErrQuery, err)
}
