package database

import (
	"context"
	"errors"
)

// Standard errors for database operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique constraint violation (e.g., a repeated email).
	ErrDuplicate = errors.New("duplicate record")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure (syntax error, invalid reference, etc.).
	ErrQuery = errors.New("query error")

	// ErrUnsupportedDriver indicates a store driver name this package does not know.
	ErrUnsupportedDriver = errors.New("unsupported driver")
)

// Database is the document-store interface used by the SurrealDB backed
// fixture stores.
type Database interface {
	// Connection management
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a query and returns one response per statement
	Query(ctx context.Context, query string, vars map[string]any) ([]any, error)

	// QueryOne executes a query and returns the first record of the first statement
	QueryOne(ctx context.Context, query string, vars map[string]any) (any, error)

	// Execute runs a query without returning results (for mutations)
	Execute(ctx context.Context, query string, vars map[string]any) error

	// BeginTx starts a batch transaction
	BeginTx(ctx context.Context) (Transaction, error)
}

// Transaction accumulates statements and runs them atomically on Commit.
type Transaction interface {
	Execute(ctx context.Context, query string, vars map[string]any) error
	Commit() error
	Rollback() error
}

// Config holds SurrealDB connection settings.
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}
