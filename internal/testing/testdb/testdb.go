package testdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/forgo/entityfactory/internal/database"
	"github.com/forgo/entityfactory/internal/repository"
)

// TestDB is an isolated SQL database with the repository schema applied.
type TestDB struct {
	DB     *database.SQLDB
	Driver string
	t      *testing.T
}

var counter atomic.Int64

// New creates a sqlite database in a temporary directory. Foreign keys are
// enforced. The database is closed when the test ends.
func New(t *testing.T) *TestDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixtures.db")
	return open(t, database.DriverSQLite, path+"?_pragma=foreign_keys(1)")
}

// NewPostgres connects to TEST_POSTGRES_DSN and creates a private schema for
// the test. The test is skipped when the variable is unset.
func NewPostgres(t *testing.T) *TestDB {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("testdb: TEST_POSTGRES_DSN not set")
	}

	schema := uniqueName(t)
	tdb := open(t, database.DriverPostgres, withSearchPath(dsn, schema))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _ = tdb.DB.DB().ExecContext(ctx, "DROP SCHEMA IF EXISTS "+schema+" CASCADE")
	})
	return tdb
}

func open(t *testing.T, driver, dsn string) *TestDB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.OpenSQL(ctx, driver, dsn)
	if err != nil {
		t.Fatalf("testdb: failed to open %s: %v", driver, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if driver == database.DriverPostgres {
		schema := schemaFromDSN(dsn)
		if _, err := db.DB().ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+schema); err != nil {
			t.Fatalf("testdb: failed to create schema: %v", err)
		}
	}
	if err := db.Migrate(ctx, repository.Schema...); err != nil {
		t.Fatalf("testdb: migration failed: %v", err)
	}

	return &TestDB{DB: db, Driver: driver, t: t}
}

// Ctx returns a context with a reasonable timeout for test operations.
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// Count returns the number of rows in table, failing the test on error.
func (tdb *TestDB) Count(table string) int {
	tdb.t.Helper()
	var n int
	if err := tdb.DB.Conn(tdb.Ctx()).QueryRowContext(tdb.Ctx(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		tdb.t.Fatalf("testdb: count %s failed: %v", table, err)
	}
	return n
}

// MustExec executes a statement and fails the test on error.
func (tdb *TestDB) MustExec(query string, args ...any) {
	tdb.t.Helper()
	if _, err := tdb.DB.DB().ExecContext(tdb.Ctx(), tdb.DB.Rebind(query), args...); err != nil {
		tdb.t.Fatalf("testdb: exec failed: %v\nQuery: %s", err, query)
	}
}

// ============================================================================
// SurrealDB
// ============================================================================

// Surreal is an isolated SurrealDB namespace.
type Surreal struct {
	DB        database.Database
	Namespace string
}

// NewSurreal connects to the SurrealDB at TEST_SURREAL_HOST in a namespace
// unique to the test and removes the namespace afterwards. The test is
// skipped when the variable is unset.
func NewSurreal(t *testing.T) *Surreal {
	t.Helper()

	host := os.Getenv("TEST_SURREAL_HOST")
	if host == "" {
		t.Skip("testdb: TEST_SURREAL_HOST not set")
	}

	cfg := database.Config{
		Host:      host,
		Port:      getEnv("TEST_SURREAL_PORT", "8000"),
		User:      getEnv("TEST_SURREAL_USER", "root"),
		Password:  getEnv("TEST_SURREAL_PASSWORD", "root"),
		Namespace: uniqueName(t),
		Database:  "test",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Execute(ctx, fmt.Sprintf("REMOVE NAMESPACE %s", cfg.Namespace), nil)
		_ = db.Close()
	})

	return &Surreal{DB: db, Namespace: cfg.Namespace}
}

func uniqueName(t *testing.T) string {
	name := strings.ToLower(t.Name())
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	return fmt.Sprintf("test_%s_%d_%d", name, time.Now().UnixNano()%1_000_000, counter.Add(1))
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + schema
}

func schemaFromDSN(dsn string) string {
	_, after, _ := strings.Cut(dsn, "search_path=")
	schema, _, _ := strings.Cut(after, "&")
	return schema
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
