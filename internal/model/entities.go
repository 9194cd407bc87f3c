package model

// Table names, shared by the SQL and SurrealDB stores.
const (
	TableBasicEntity      = "basic_entity"
	TableParentEntity     = "parent_entity"
	TableChildEntity      = "child_entity"
	TableUniqueAttributes = "entity_with_unique_attributes"
	TableUser             = "app_user"
)

// Record is implemented by every entity that a store can save. IDs are
// assigned by the store when empty.
type Record interface {
	Table() string
	GetID() string
	SetID(id string)
}

// BasicEntity has one numeric and one text attribute and no relations.
type BasicEntity struct {
	ID                string `json:"id" yaml:"id"`
	MyLongAttribute   int64  `json:"my_long_attribute" yaml:"my_long_attribute"`
	MyStringAttribute string `json:"my_string_attribute" yaml:"my_string_attribute"`
}

func (e *BasicEntity) Table() string   { return TableBasicEntity }
func (e *BasicEntity) GetID() string   { return e.ID }
func (e *BasicEntity) SetID(id string) { e.ID = id }

// ParentEntity owns zero or more children.
type ParentEntity struct {
	ID              string         `json:"id" yaml:"id"`
	StringAttribute string         `json:"string_attribute" yaml:"string_attribute"`
	Children        []*ChildEntity `json:"-" yaml:"-"`
}

func (e *ParentEntity) Table() string   { return TableParentEntity }
func (e *ParentEntity) GetID() string   { return e.ID }
func (e *ParentEntity) SetID(id string) { e.ID = id }

// AddChild links child to this parent in both directions.
func (e *ParentEntity) AddChild(child *ChildEntity) {
	e.Children = append(e.Children, child)
	child.Parent = e
}

// ChildEntity must reference a saved parent.
type ChildEntity struct {
	ID     string        `json:"id" yaml:"id"`
	Parent *ParentEntity `json:"parent,omitempty" yaml:"parent,omitempty"`
}

func (e *ChildEntity) Table() string   { return TableChildEntity }
func (e *ChildEntity) GetID() string   { return e.ID }
func (e *ChildEntity) SetID(id string) { e.ID = id }

// ParentID returns the parent's ID, or "" when there is no parent.
func (e *ChildEntity) ParentID() string {
	if e.Parent == nil {
		return ""
	}
	return e.Parent.ID
}

// EntityWithUniqueAttributes has columns with unique constraints next to
// columns that may repeat.
type EntityWithUniqueAttributes struct {
	ID               string `json:"id" yaml:"id"`
	UniqueString     string `json:"unique_string" yaml:"unique_string"`
	UniqueLong       int64  `json:"unique_long" yaml:"unique_long"`
	RepeatableString string `json:"repeatable_string" yaml:"repeatable_string"`
	RepeatableLong   int64  `json:"repeatable_long" yaml:"repeatable_long"`
}

func (e *EntityWithUniqueAttributes) Table() string   { return TableUniqueAttributes }
func (e *EntityWithUniqueAttributes) GetID() string   { return e.ID }
func (e *EntityWithUniqueAttributes) SetID(id string) { e.ID = id }
