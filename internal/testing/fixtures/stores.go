package fixtures

import (
	"github.com/forgo/entityfactory/internal/database"
	"github.com/forgo/entityfactory/internal/model"
	"github.com/forgo/entityfactory/internal/repository"
	"github.com/forgo/entityfactory/pkg/factory"
	"github.com/forgo/entityfactory/pkg/store/memory"
)

// Stores are the storage collaborators of the example factories. Tx, when
// set, makes every PersistN atomic.
type Stores struct {
	Basic  factory.Store[model.BasicEntity]
	Parent factory.Store[model.ParentEntity]
	Child  factory.Store[model.ChildEntity]
	Unique factory.Store[model.EntityWithUniqueAttributes]
	User   factory.Store[model.User]
	Tx     factory.Transactor
}

// MemoryStores keeps everything in memory.
func MemoryStores() Stores {
	return Stores{
		Basic:  memory.New("BasicEntity", memory.WithIdentity(getID[model.BasicEntity], setID[model.BasicEntity])),
		Parent: memory.New("ParentEntity", memory.WithIdentity(getID[model.ParentEntity], setID[model.ParentEntity])),
		Child:  memory.New("ChildEntity", memory.WithIdentity(getID[model.ChildEntity], setID[model.ChildEntity])),
		Unique: memory.New("EntityWithUniqueAttributes", memory.WithIdentity(getID[model.EntityWithUniqueAttributes], setID[model.EntityWithUniqueAttributes])),
		User:   memory.New("User", memory.WithIdentity(getID[model.User], setID[model.User])),
		Tx:     memory.NewTransactor(),
	}
}

// SQLStores persists through the SQL repositories.
func SQLStores(db *database.SQLDB) Stores {
	return Stores{
		Basic:  repository.NewBasicEntityRepository(db),
		Parent: repository.NewParentEntityRepository(db),
		Child:  repository.NewChildEntityRepository(db),
		Unique: repository.NewUniqueAttributesRepository(db),
		User:   repository.NewUserRepository(db),
		Tx:     db,
	}
}

// SurrealStores persists to SurrealDB. PersistN batches are sent as one
// transaction.
func SurrealStores(db database.Database) Stores {
	return Stores{
		Basic:  repository.NewSurrealStore[model.BasicEntity](db),
		Parent: repository.NewSurrealStore[model.ParentEntity](db),
		Child:  repository.NewSurrealStore[model.ChildEntity](db),
		Unique: repository.NewSurrealStore[model.EntityWithUniqueAttributes](db),
		User:   repository.NewSurrealStore[model.User](db),
		Tx:     database.NewSurrealTransactor(db),
	}
}

type record[E any] interface {
	*E
	model.Record
}

func getID[E any, P record[E]](e *E) string     { return P(e).GetID() }
func setID[E any, P record[E]](e *E, id string) { P(e).SetID(id) }
