// Package database provides the storage backends behind the fixture
// stores: SurrealDB through the Database interface, and sqlite or postgres
// through database/sql.
//
// # SurrealDB
//
// The Database interface mirrors SurrealDB's query model:
//
//   - Query: one {status, result} response per statement
//   - QueryOne: the first record of the first statement
//   - Execute: no return value (for CREATE/UPDATE/DELETE)
//
// Transactions are BATCH-BASED. BeginTx and UnitOfWork accumulate statements
// in memory and send them wrapped in BEGIN TRANSACTION / COMMIT TRANSACTION
// on commit, so Rollback only discards pending statements.
//
// SurrealTransactor adapts this to factory.Transactor: stores add their
// CREATE statements to the UnitOfWork found in the context and the factory
// commits them together after PersistN has built every entity.
//
// # SQL
//
// OpenSQL opens a pool for the "sqlite" (modernc.org/sqlite) or "pgx"
// (github.com/jackc/pgx/v5/stdlib) driver. SQLDB.InTransaction keeps the
// *sql.Tx in the context and Conn returns it, so repositories written
// against Conn take part in the caller's transaction without extra plumbing.
// Write queries with ? placeholders and pass them through Rebind.
// OnRollback registers cleanup that runs if the carried transaction does not
// commit.
//
// # Error Handling
//
//   - ErrNotFound: Record does not exist
//   - ErrDuplicate: Unique constraint violation
//   - ErrConnection: Connection or transaction setup failed
//   - ErrQuery: Statement failed
//   - ErrUnsupportedDriver: Unknown driver name
//
// Use errors.Is() to check error types:
//
//	if errors.Is(err, database.ErrDuplicate) {
//	    // the fixture collided with existing data
//	}
package database
