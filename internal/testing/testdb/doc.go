// Package testdb provides isolated databases for package tests.
//
// # SQLite (default)
//
// Every test gets its own database file under t.TempDir() with the
// repository schema applied; nothing to start, nothing to clean up:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    basics := repository.NewBasicEntityRepository(tdb.DB)
//	}
//
// # Postgres and SurrealDB
//
// NewPostgres and NewSurreal run against real servers when TEST_POSTGRES_DSN
// or TEST_SURREAL_HOST is set and skip the test otherwise. Each test gets a
// unique schema or namespace that is dropped when the test ends:
//
//	sdb := testdb.NewSurreal(t) // namespace: test_testsave_123456_1
//
// # Timeout Context
//
//	ctx := tdb.Ctx() // 10 second timeout, cancelled on cleanup
package testdb
