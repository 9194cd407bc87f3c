package fixtures

import (
	"time"

	"github.com/forgo/entityfactory/internal/model"
	"github.com/forgo/entityfactory/pkg/factory"
)

// Attribute names. They match the property names of the schemas below.
const (
	LongAttributeName      = "myLongAttribute"
	StringAttributeName    = "myStringAttribute"
	IncorrectAttributeName = "iDoNotExist"

	ParentStringAttributeName = "stringAttribute"
	ParentAttributeName       = "parent"

	UniqueStringName     = "uniqueString"
	UniqueLongName       = "uniqueLong"
	RepeatableStringName = "repeatableString"
	RepeatableLongName   = "repeatableLong"

	// RepeatableStringValue is the constant default of RepeatableStringName.
	RepeatableStringValue = "This can be the same in different entities of this type"
)

// BasicEntitySchema maps the properties of model.BasicEntity.
func BasicEntitySchema() *factory.Schema[model.BasicEntity] {
	return factory.NewSchema("BasicEntity",
		factory.Prop(LongAttributeName, func(e *model.BasicEntity, v int64) { e.MyLongAttribute = v }),
		factory.Prop(StringAttributeName, func(e *model.BasicEntity, v string) { e.MyStringAttribute = v }),
	)
}

// ParentEntitySchema maps the properties of model.ParentEntity.
func ParentEntitySchema() *factory.Schema[model.ParentEntity] {
	return factory.NewSchema("ParentEntity",
		factory.Prop(ParentStringAttributeName, func(e *model.ParentEntity, v string) { e.StringAttribute = v }),
	)
}

// ChildEntitySchema maps the properties of model.ChildEntity. Setting the
// parent also links the child into the parent's Children.
func ChildEntitySchema() *factory.Schema[model.ChildEntity] {
	return factory.NewSchema("ChildEntity",
		factory.Prop(ParentAttributeName, func(e *model.ChildEntity, v *model.ParentEntity) {
			if v == nil {
				e.Parent = nil
				return
			}
			v.AddChild(e)
		}),
	)
}

// UniqueAttributesSchema maps the properties of model.EntityWithUniqueAttributes.
func UniqueAttributesSchema() *factory.Schema[model.EntityWithUniqueAttributes] {
	return factory.NewSchema("EntityWithUniqueAttributes",
		factory.Prop(UniqueStringName, func(e *model.EntityWithUniqueAttributes, v string) { e.UniqueString = v }),
		factory.Prop(UniqueLongName, func(e *model.EntityWithUniqueAttributes, v int64) { e.UniqueLong = v }),
		factory.Prop(RepeatableStringName, func(e *model.EntityWithUniqueAttributes, v string) { e.RepeatableString = v }),
		factory.Prop(RepeatableLongName, func(e *model.EntityWithUniqueAttributes, v int64) { e.RepeatableLong = v }),
	)
}

// UserSchema maps the properties of model.User.
func UserSchema() *factory.Schema[model.User] {
	return factory.NewSchema("User",
		factory.Prop("username", func(u *model.User, v string) { u.Username = v }),
		factory.Prop("firstName", func(u *model.User, v string) { u.FirstName = v }),
		factory.Prop("lastName", func(u *model.User, v string) { u.LastName = v }),
		factory.Prop("address", func(u *model.User, v string) { u.Address = v }),
		factory.Prop("email", func(u *model.User, v string) { u.Email = v }),
		factory.Prop("age", func(u *model.User, v int) { u.Age = v }),
		factory.Prop("phoneNumber", func(u *model.User, v string) { u.PhoneNumber = v }),
		factory.Prop("passwordHash", func(u *model.User, v string) { u.PasswordHash = v }),
		factory.Prop("createdOn", func(u *model.User, v time.Time) { u.CreatedOn = v }),
	)
}
