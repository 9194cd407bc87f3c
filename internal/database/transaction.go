package database

// Transaction utilities.
//
// All patterns here are BATCH-BASED: statements accumulate and execute
// together at commit time wrapped in BEGIN/COMMIT TRANSACTION. There is no
// isolation between Add() calls.
//
// # AtomicBatch
//
// Fluent API for a handful of statements that must succeed together:
//
//	batch := NewAtomicBatch()
//	batch.Add(query1, vars1).Add(query2, vars2)
//	batch.Execute(ctx, db)
//
// # TxBuilder
//
// Combines statements whose variables may collide. Variables are namespaced
// ($email -> $v1_email):
//
//	tb := NewTxBuilder()
//	tb.Add("CREATE user SET email = $email", vars1)
//	tb.Add("CREATE user SET email = $email", vars2)
//	ExecuteTransaction(ctx, db, tb)
//
// # UnitOfWork and SurrealTransactor
//
// SurrealTransactor places a UnitOfWork in the context; stores that find one
// add their writes to it instead of executing them, and the whole unit is
// committed once the callback returns.

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// TxBuilder builds atomic transaction queries with automatic variable namespacing.
type TxBuilder struct {
	statements []string
	vars       map[string]any
	varCounter uint64
}

// NewTxBuilder creates a new transaction builder
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{
		statements: make([]string, 0),
		vars:       make(map[string]any),
	}
}

// Add appends a statement, renaming its variables so they cannot collide
// with earlier statements. It returns the original to namespaced name mapping.
func (tb *TxBuilder) Add(query string, vars map[string]any) map[string]string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	mapping := make(map[string]string, len(names))
	for _, name := range names {
		tb.varCounter++
		renamed := fmt.Sprintf("v%d_%s", tb.varCounter, name)
		re := regexp.MustCompile(`\$` + regexp.QuoteMeta(name) + `\b`)
		query = re.ReplaceAllLiteralString(query, "$"+renamed)

		tb.vars[renamed] = vars[name]
		mapping[name] = renamed
	}

	tb.statements = append(tb.statements, query)
	return mapping
}

// AddRaw adds a raw statement without variable substitution
func (tb *TxBuilder) AddRaw(query string) {
	tb.statements = append(tb.statements, query)
}

// Len returns the number of statements.
func (tb *TxBuilder) Len() int {
	return len(tb.statements)
}

// Build returns the complete transaction query and merged variables
func (tb *TxBuilder) Build() (string, map[string]any) {
	if len(tb.statements) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range tb.statements {
		sb.WriteString(stmt)
		if !strings.HasSuffix(strings.TrimSpace(stmt), ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")

	return sb.String(), tb.vars
}

// ExecuteTransaction executes a transaction built with TxBuilder
func ExecuteTransaction(ctx context.Context, db Database, tb *TxBuilder) ([]any, error) {
	query, vars := tb.Build()
	if query == "" {
		return nil, nil
	}
	return db.Query(ctx, query, vars)
}

// UnitOfWork is a set of statements that must succeed or fail together.
type UnitOfWork struct {
	db       Database
	mu       sync.Mutex
	builder  *TxBuilder
	rollback []func(ctx context.Context) error
}

// NewUnitOfWork creates a new unit of work
func NewUnitOfWork(db Database) *UnitOfWork {
	return &UnitOfWork{
		db:      db,
		builder: NewTxBuilder(),
	}
}

// Add adds a statement to the unit of work
func (uow *UnitOfWork) Add(query string, vars map[string]any) {
	uow.AddWithRollback(query, vars, nil)
}

// AddWithRollback adds a statement with a handler that runs if Commit fails.
// Handlers run in reverse order of registration.
func (uow *UnitOfWork) AddWithRollback(query string, vars map[string]any, rollback func(ctx context.Context) error) {
	uow.mu.Lock()
	defer uow.mu.Unlock()

	uow.builder.Add(query, vars)
	if rollback != nil {
		uow.rollback = append(uow.rollback, rollback)
	}
}

// Len returns the number of pending statements.
func (uow *UnitOfWork) Len() int {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	return uow.builder.Len()
}

// Commit executes all statements atomically.
func (uow *UnitOfWork) Commit(ctx context.Context) error {
	uow.mu.Lock()
	defer uow.mu.Unlock()

	if _, err := ExecuteTransaction(ctx, uow.db, uow.builder); err != nil {
		uow.runRollback(ctx)
		return err
	}
	return nil
}

// Discard runs the rollback handlers without executing anything.
func (uow *UnitOfWork) Discard(ctx context.Context) {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	uow.runRollback(ctx)
}

func (uow *UnitOfWork) runRollback(ctx context.Context) {
	for i := len(uow.rollback) - 1; i >= 0; i-- {
		if err := uow.rollback[i](ctx); err != nil {
			slog.Warn("rollback handler failed", slog.String("error", err.Error()))
		}
	}
	uow.rollback = nil
}

// AtomicBatch provides a simpler API for batch operations that should be atomic
type AtomicBatch struct {
	builder *TxBuilder
}

// NewAtomicBatch creates a new atomic batch
func NewAtomicBatch() *AtomicBatch {
	return &AtomicBatch{builder: NewTxBuilder()}
}

// Add adds a query to the batch
func (ab *AtomicBatch) Add(query string, vars map[string]any) *AtomicBatch {
	ab.builder.Add(query, vars)
	return ab
}

// Execute runs all queries as a single transaction
func (ab *AtomicBatch) Execute(ctx context.Context, db Database) error {
	_, err := ExecuteTransaction(ctx, db, ab.builder)
	return err
}

// Len returns the number of queries in the batch
func (ab *AtomicBatch) Len() int {
	return ab.builder.Len()
}

// ============================================================================
// SurrealTransactor
// ============================================================================

type unitOfWorkKey struct{}

// UnitOfWorkFrom returns the unit of work carried by ctx, if any.
func UnitOfWorkFrom(ctx context.Context) (*UnitOfWork, bool) {
	uow, ok := ctx.Value(unitOfWorkKey{}).(*UnitOfWork)
	return uow, ok
}

// SurrealTransactor runs factory batches as one SurrealDB transaction.
type SurrealTransactor struct {
	db Database
}

// NewSurrealTransactor creates a transactor over db.
func NewSurrealTransactor(db Database) *SurrealTransactor {
	return &SurrealTransactor{db: db}
}

// InTransaction runs fn with a UnitOfWork in the context and commits it if fn
// succeeds. A nested call joins the outer unit.
func (t *SurrealTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := UnitOfWorkFrom(ctx); ok {
		return fn(ctx)
	}

	uow := NewUnitOfWork(t.db)
	if err := fn(context.WithValue(ctx, unitOfWorkKey{}, uow)); err != nil {
		uow.Discard(ctx)
		return err
	}
	return uow.Commit(ctx)
}
