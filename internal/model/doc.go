// Package model defines the example entities the fixture factories build.
//
// # Entities
//
//   - BasicEntity: a number and a string, no relations
//   - ParentEntity / ChildEntity: a one-to-many relation; a child cannot be
//     saved without a saved parent
//   - EntityWithUniqueAttributes: columns with unique constraints
//   - User: a realistic account used by the fixturegen CLI
//
// Every entity implements Record so the generic stores can assign IDs and
// pick a table:
//
//	type Record interface {
//	    Table() string
//	    GetID() string
//	    SetID(id string)
//	}
//
// # Serialization
//
// Entities carry json and yaml tags; the export package encodes them with
// either. Secrets such as User.PasswordHash are tagged "-".
package model
