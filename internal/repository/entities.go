package repository

import (
	"fmt"

	"github.com/forgo/entityfactory/internal/database"
	"github.com/forgo/entityfactory/internal/model"
)

// ============================================================================
// BasicEntity
// ============================================================================

// BasicEntityRepository stores model.BasicEntity rows.
type BasicEntityRepository = SQLRepository[model.BasicEntity, *model.BasicEntity]

// NewBasicEntityRepository creates a repository over db.
func NewBasicEntityRepository(db *database.SQLDB) *BasicEntityRepository {
	return &BasicEntityRepository{
		db:      db,
		table:   model.TableBasicEntity,
		columns: []string{"my_long_attribute", "my_string_attribute"},
		values: func(e *model.BasicEntity) []any {
			return []any{e.MyLongAttribute, e.MyStringAttribute}
		},
		scan: func(s scanner) (*model.BasicEntity, error) {
			var e model.BasicEntity
			if err := s.Scan(&e.ID, &e.MyLongAttribute, &e.MyStringAttribute); err != nil {
				return nil, err
			}
			return &e, nil
		},
	}
}

// ============================================================================
// ParentEntity / ChildEntity
// ============================================================================

// ParentEntityRepository stores model.ParentEntity rows. Children are
// saved through ChildEntityRepository.
type ParentEntityRepository = SQLRepository[model.ParentEntity, *model.ParentEntity]

// NewParentEntityRepository creates a repository over db.
func NewParentEntityRepository(db *database.SQLDB) *ParentEntityRepository {
	return &ParentEntityRepository{
		db:      db,
		table:   model.TableParentEntity,
		columns: []string{"string_attribute"},
		values: func(e *model.ParentEntity) []any {
			return []any{e.StringAttribute}
		},
		scan: func(s scanner) (*model.ParentEntity, error) {
			var e model.ParentEntity
			if err := s.Scan(&e.ID, &e.StringAttribute); err != nil {
				return nil, err
			}
			return &e, nil
		},
	}
}

// ChildEntityRepository stores model.ChildEntity rows. Loaded children carry
// a parent holding only its ID.
type ChildEntityRepository = SQLRepository[model.ChildEntity, *model.ChildEntity]

// NewChildEntityRepository creates a repository over db.
func NewChildEntityRepository(db *database.SQLDB) *ChildEntityRepository {
	return &ChildEntityRepository{
		db:      db,
		table:   model.TableChildEntity,
		columns: []string{"parent_id"},
		values: func(e *model.ChildEntity) []any {
			return []any{e.ParentID()}
		},
		scan: func(s scanner) (*model.ChildEntity, error) {
			var (
				e        model.ChildEntity
				parentID string
			)
			if err := s.Scan(&e.ID, &parentID); err != nil {
				return nil, err
			}
			e.Parent = &model.ParentEntity{ID: parentID}
			return &e, nil
		},
		check: checkParent,
	}
}

func checkParent(e *model.ChildEntity) error {
	if e.ParentID() == "" {
		return fmt.Errorf("%w: child_entity", ErrMissingParent)
	}
	return nil
}

// ============================================================================
// EntityWithUniqueAttributes
// ============================================================================

// UniqueAttributesRepository stores model.EntityWithUniqueAttributes rows.
type UniqueAttributesRepository = SQLRepository[model.EntityWithUniqueAttributes, *model.EntityWithUniqueAttributes]

// NewUniqueAttributesRepository creates a repository over db.
func NewUniqueAttributesRepository(db *database.SQLDB) *UniqueAttributesRepository {
	return &UniqueAttributesRepository{
		db:      db,
		table:   model.TableUniqueAttributes,
		columns: []string{"unique_string", "unique_long", "repeatable_string", "repeatable_long"},
		values: func(e *model.EntityWithUniqueAttributes) []any {
			return []any{e.UniqueString, e.UniqueLong, e.RepeatableString, e.RepeatableLong}
		},
		scan: func(s scanner) (*model.EntityWithUniqueAttributes, error) {
			var e model.EntityWithUniqueAttributes
			if err := s.Scan(&e.ID, &e.UniqueString, &e.UniqueLong, &e.RepeatableString, &e.RepeatableLong); err != nil {
				return nil, err
			}
			return &e, nil
		},
	}
}

// ============================================================================
// User
// ============================================================================

// UserRepository stores model.User rows.
type UserRepository = SQLRepository[model.User, *model.User]

// NewUserRepository creates a repository over db.
func NewUserRepository(db *database.SQLDB) *UserRepository {
	return &UserRepository{
		db:    db,
		table: model.TableUser,
		columns: []string{
			"username", "first_name", "last_name", "address", "email",
			"age", "phone_number", "password_hash", "created_on",
		},
		values: func(u *model.User) []any {
			return []any{
				u.Username, u.FirstName, u.LastName, u.Address, u.Email,
				u.Age, u.PhoneNumber, u.PasswordHash, u.CreatedOn.UTC(),
			}
		},
		scan: func(s scanner) (*model.User, error) {
			var u model.User
			err := s.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Address, &u.Email,
				&u.Age, &u.PhoneNumber, &u.PasswordHash, &u.CreatedOn)
			if err != nil {
				return nil, err
			}
			return &u, nil
		},
	}
}
