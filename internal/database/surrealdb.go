package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// SurrealDB implements the Database interface for SurrealDB
type SurrealDB struct {
	db     *surrealdb.DB
	config Config
}

// NewSurrealDB creates a new SurrealDB instance
func NewSurrealDB(cfg Config) *SurrealDB {
	return &SurrealDB{
		config: cfg,
	}
}

// Endpoint returns the websocket URL built from the config.
func (s *SurrealDB) Endpoint() string {
	return fmt.Sprintf("ws://%s:%s", s.config.Host, s.config.Port)
}

// Connect establishes a connection, signs in and selects the namespace and database.
func (s *SurrealDB) Connect(ctx context.Context) error {
	db, err := surrealdb.FromEndpointURLString(ctx, s.Endpoint())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	_, err = db.SignIn(ctx, &surrealdb.Auth{
		Username: s.config.User,
		Password: s.config.Password,
	})
	if err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("%w: signin failed: %v", ErrConnection, err)
	}

	if err := db.Use(ctx, s.config.Namespace, s.config.Database); err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("%w: use failed: %v", ErrConnection, err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SurrealDB) Close() error {
	if s.db != nil {
		return s.db.Close(context.Background())
	}
	return nil
}

// Ping checks the database connection
func (s *SurrealDB) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrConnection
	}
	if _, err := s.db.Version(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Query executes a query. Each statement's response is returned as a
// {status, result} map.
func (s *SurrealDB) Query(ctx context.Context, query string, vars map[string]any) ([]any, error) {
	if s.db == nil {
		return nil, ErrConnection
	}

	results, err := surrealdb.Query[any](ctx, s.db, query, vars)
	if err != nil {
		return nil, classifyQueryError(err.Error())
	}
	if results == nil {
		return nil, nil
	}

	output := make([]any, 0, len(*results))
	for _, r := range *results {
		if r.Status != "OK" {
			if r.Error != nil {
				return nil, classifyQueryError(r.Error.Message)
			}
			return nil, ErrQuery
		}
		output = append(output, map[string]any{
			"status": r.Status,
			"result": r.Result,
		})
	}
	return output, nil
}

// QueryOne executes a query and returns the first record of the first statement.
func (s *SurrealDB) QueryOne(ctx context.Context, query string, vars map[string]any) (any, error) {
	results, err := s.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return firstRecord(results)
}

// Execute runs a query without returning results
func (s *SurrealDB) Execute(ctx context.Context, query string, vars map[string]any) error {
	_, err := s.Query(ctx, query, vars)
	return err
}

// BeginTx starts a batch transaction. Statements run on Commit.
func (s *SurrealDB) BeginTx(ctx context.Context) (Transaction, error) {
	if s.db == nil {
		return nil, ErrConnection
	}
	return &batchTx{db: s, ctx: ctx, builder: NewTxBuilder()}, nil
}

// batchTx implements Transaction on top of any Database by wrapping the
// accumulated statements in a single BEGIN/COMMIT block.
type batchTx struct {
	db      Database
	ctx     context.Context
	builder *TxBuilder
	done    bool
}

func (t *batchTx) Execute(_ context.Context, query string, vars map[string]any) error {
	if t.done {
		return fmt.Errorf("%w: transaction already finished", ErrQuery)
	}
	t.builder.Add(query, vars)
	return nil
}

func (t *batchTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	if _, err := ExecuteTransaction(t.ctx, t.db, t.builder); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

func (t *batchTx) Rollback() error {
	t.done = true
	t.builder = NewTxBuilder()
	return nil
}

// firstRecord unwraps the first {status, result} response.
func firstRecord(results []any) (any, error) {
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	first := results[0]
	resp, ok := first.(map[string]any)
	if !ok {
		return first, nil
	}
	if data, ok := resp["result"].([]any); ok {
		if len(data) == 0 {
			return nil, ErrNotFound
		}
		return data[0], nil
	}
	return resp["result"], nil
}

// Records returns the result rows of the response at index i.
func Records(results []any, i int) []any {
	if i < 0 || i >= len(results) {
		return nil
	}
	if resp, ok := results[i].(map[string]any); ok {
		if data, ok := resp["result"].([]any); ok {
			return data
		}
	}
	return nil
}

func classifyQueryError(msg string) error {
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "already exists") || strings.Contains(lower, "already contains") {
		return fmt.Errorf("%w: %s", ErrDuplicate, msg)
	}
	return fmt.Errorf("%w: %s", ErrQuery, msg)
}
