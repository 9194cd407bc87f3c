// Package repository implements the stores that fixture factories persist
// through.
//
// Every store satisfies factory.Store[T]:
//
//	Save(ctx context.Context, entity *T) (*T, error)
//
// # SQL Repositories
//
// SQLRepository is generic over the entity type; one constructor per entity
// fixes its table, columns and row scanner:
//
//   - NewBasicEntityRepository
//   - NewParentEntityRepository / NewChildEntityRepository
//   - NewUniqueAttributesRepository
//   - NewUserRepository
//
// They run on database.SQLDB (sqlite or postgres). Queries go through
// SQLDB.Conn, so a Save inside SQLDB.InTransaction joins that transaction.
// Apply Schema with SQLDB.Migrate before use.
//
// # SurrealDB Store
//
// SurrealStore[E, P] works for any model.Record. IDs are assigned
// client-side (UUID) so that a Save inside a SurrealTransactor unit can
// return the entity before the batch is committed.
//
// # Example Usage
//
//	db, err := database.OpenSQL(ctx, database.DriverSQLite, "fixtures.db")
//	if err != nil {
//	    return err
//	}
//	if err := db.Migrate(ctx, repository.Schema...); err != nil {
//	    return err
//	}
//	basics := repository.NewBasicEntityRepository(db)
//	n, err := basics.Count(ctx)
package repository
