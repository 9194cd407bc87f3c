package database

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB records queries and optionally fails them.
type fakeDB struct {
	mu      sync.Mutex
	queries []string
	vars    []map[string]any
	fail    error
}

func (f *fakeDB) Connect(context.Context) error { return nil }
func (f *fakeDB) Close() error                  { return nil }
func (f *fakeDB) Ping(context.Context) error    { return nil }

func (f *fakeDB) Query(_ context.Context, query string, vars map[string]any) ([]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.queries = append(f.queries, query)
	f.vars = append(f.vars, vars)
	return []any{map[string]any{"status": "OK", "result": []any{map[string]any{"id": "x"}}}}, nil
}

func (f *fakeDB) QueryOne(ctx context.Context, query string, vars map[string]any) (any, error) {
	results, err := f.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return firstRecord(results)
}

func (f *fakeDB) Execute(ctx context.Context, query string, vars map[string]any) error {
	_, err := f.Query(ctx, query, vars)
	return err
}

func (f *fakeDB) BeginTx(ctx context.Context) (Transaction, error) {
	return &batchTx{db: f, ctx: ctx, builder: NewTxBuilder()}, nil
}

// ============================================================================
// TxBuilder Tests
// ============================================================================

func TestTxBuilder_NamespacesVariables(t *testing.T) {
	t.Parallel()
	tb := NewTxBuilder()

	m1 := tb.Add("CREATE user SET email = $email, name = $name", map[string]any{"email": "a@x", "name": "A"})
	m2 := tb.Add("CREATE user SET email = $email", map[string]any{"email": "b@x"})

	query, vars := tb.Build()
	assert.True(t, strings.HasPrefix(query, "BEGIN TRANSACTION;\n"))
	assert.True(t, strings.HasSuffix(query, "COMMIT TRANSACTION;"))
	assert.Equal(t, "v1_email", m1["email"])
	assert.Equal(t, "v2_name", m1["name"])
	assert.Equal(t, "v3_email", m2["email"])
	assert.Equal(t, "a@x", vars["v1_email"])
	assert.Equal(t, "b@x", vars["v3_email"])
	assert.Contains(t, query, "email = $v1_email, name = $v2_name;")
}

func TestTxBuilder_DoesNotRewritePrefixedNames(t *testing.T) {
	t.Parallel()
	tb := NewTxBuilder()

	tb.Add("CREATE t SET a = $id, b = $id_parent", map[string]any{"id": 1})
	query, _ := tb.Build()
	assert.Contains(t, query, "a = $v1_id, b = $id_parent")
}

func TestTxBuilder_Empty(t *testing.T) {
	t.Parallel()

	query, vars := NewTxBuilder().Build()
	assert.Empty(t, query)
	assert.Nil(t, vars)

	results, err := ExecuteTransaction(context.Background(), &fakeDB{}, NewTxBuilder())
	assert.NoError(t, err)
	assert.Nil(t, results)
}

// ============================================================================
// AtomicBatch / UnitOfWork Tests
// ============================================================================

func TestAtomicBatch_Execute(t *testing.T) {
	t.Parallel()
	db := &fakeDB{}

	batch := NewAtomicBatch().
		Add("CREATE a SET x = $x", map[string]any{"x": 1}).
		Add("CREATE b SET x = $x", map[string]any{"x": 2})
	assert.Equal(t, 2, batch.Len())

	require.NoError(t, batch.Execute(context.Background(), db))
	require.Len(t, db.queries, 1, "batch is sent as one request")
	assert.Contains(t, db.queries[0], "BEGIN TRANSACTION")
}

func TestUnitOfWork_RollbackRunsInReverseOnFailure(t *testing.T) {
	t.Parallel()
	db := &fakeDB{fail: errors.New("conflict")}

	var order []int
	uow := NewUnitOfWork(db)
	uow.AddWithRollback("CREATE a", nil, func(context.Context) error { order = append(order, 1); return nil })
	uow.AddWithRollback("CREATE b", nil, func(context.Context) error { order = append(order, 2); return errors.New("ignored") })
	uow.Add("CREATE c", nil)

	err := uow.Commit(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []int{2, 1}, order)
}

func TestBatchTx(t *testing.T) {
	t.Parallel()
	db := &fakeDB{}

	tx, err := db.BeginTx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Execute(context.Background(), "CREATE a", nil))
	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Commit(), "second commit is a no-op")
	assert.Len(t, db.queries, 1)

	assert.Error(t, tx.Execute(context.Background(), "CREATE b", nil))

	tx, err = db.BeginTx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Execute(context.Background(), "CREATE c", nil))
	require.NoError(t, tx.Rollback())
	require.NoError(t, tx.Commit())
	assert.Len(t, db.queries, 1)
}

// ============================================================================
// SurrealTransactor Tests
// ============================================================================

func TestSurrealTransactor_CommitsUnit(t *testing.T) {
	t.Parallel()
	db := &fakeDB{}
	tx := NewSurrealTransactor(db)

	err := tx.InTransaction(context.Background(), func(ctx context.Context) error {
		uow, ok := UnitOfWorkFrom(ctx)
		require.True(t, ok)
		uow.Add("CREATE a SET n = $n", map[string]any{"n": 1})
		uow.Add("CREATE a SET n = $n", map[string]any{"n": 2})

		return tx.InTransaction(ctx, func(inner context.Context) error {
			same, _ := UnitOfWorkFrom(inner)
			assert.Same(t, uow, same)
			return nil
		})
	})
	require.NoError(t, err)
	require.Len(t, db.queries, 1)
	assert.Equal(t, 2, strings.Count(db.queries[0], "CREATE a"))
}

func TestSurrealTransactor_DiscardsOnError(t *testing.T) {
	t.Parallel()
	db := &fakeDB{}
	rolledBack := false
	boom := errors.New("boom")

	err := NewSurrealTransactor(db).InTransaction(context.Background(), func(ctx context.Context) error {
		uow, _ := UnitOfWorkFrom(ctx)
		uow.AddWithRollback("CREATE a", nil, func(context.Context) error {
			rolledBack = true
			return nil
		})
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, db.queries)
	assert.True(t, rolledBack)
}

// ============================================================================
// Response helpers
// ============================================================================

func TestFirstRecordAndRecords(t *testing.T) {
	t.Parallel()

	results := []any{
		map[string]any{"status": "OK", "result": []any{"r1", "r2"}},
		map[string]any{"status": "OK", "result": []any{}},
	}
	rec, err := firstRecord(results)
	require.NoError(t, err)
	assert.Equal(t, "r1", rec)
	assert.Equal(t, []any{"r1", "r2"}, Records(results, 0))
	assert.Empty(t, Records(results, 1))
	assert.Nil(t, Records(results, 5))

	_, err = firstRecord(nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = firstRecord([]any{map[string]any{"status": "OK", "result": []any{}}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClassifyQueryError(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, classifyQueryError("Database record `user:1` already exists"), ErrDuplicate)
	assert.ErrorIs(t, classifyQueryError("Parse error"), ErrQuery)
}

func TestSurrealDB_NotConnected(t *testing.T) {
	t.Parallel()
	db := NewSurrealDB(Config{Host: "localhost", Port: "8000"})

	assert.Equal(t, "ws://localhost:8000", db.Endpoint())
	assert.ErrorIs(t, db.Ping(context.Background()), ErrConnection)
	_, err := db.Query(context.Background(), "INFO FOR DB", nil)
	assert.ErrorIs(t, err, ErrConnection)
	_, err = db.BeginTx(context.Background())
	assert.ErrorIs(t, err, ErrConnection)
	assert.NoError(t, db.Close())
}
