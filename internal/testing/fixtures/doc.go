// Package fixtures wires the example entity factories used by package tests
// and by the fixturegen command.
//
// New builds one factory per entity over a set of stores. The stores decide
// where persisted entities go:
//
//	f := fixtures.MustNew(t, fixtures.MemoryStores())
//	f := fixtures.MustNew(t, fixtures.SQLStores(tdb.DB))
//
// The generic helpers fail the test instead of returning an error:
//
//	basic := fixtures.Persist(t, f.Basic)
//	child := fixtures.Persist(t, f.Child) // persists a parent first
//	users := fixtures.PersistN(t, f.User, 3)
//
// Overrides are passed as attributes:
//
//	e := fixtures.Build(t, f.Basic, factory.Static(fixtures.LongAttributeName, int64(999)))
//
// Generated values come from a seeded gofakeit source; WithSeed makes a run
// reproducible. Users get a bcrypt hash of TestPassword at minimum cost.
package fixtures
