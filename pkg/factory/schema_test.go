package factory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Name  string
	Size  int64
	Owner *widget
	Tags  []string
}

func widgetSchema() *Schema[widget] {
	return NewSchema("widget",
		Prop("name", func(w *widget, v string) { w.Name = v }),
		Prop("size", func(w *widget, v int64) { w.Size = v }),
		Prop("owner", func(w *widget, v *widget) { w.Owner = v }),
		Prop("tags", func(w *widget, v []string) { w.Tags = v }),
	)
}

// ============================================================================
// Schema Tests
// ============================================================================

func TestSchema_Properties(t *testing.T) {
	t.Parallel()
	s := widgetSchema()

	assert.Equal(t, "widget", s.Name())
	assert.Equal(t, []string{"name", "owner", "size", "tags"}, s.Properties())
	assert.True(t, s.Has("size"))
	assert.False(t, s.Has("colour"))
}

func TestSchema_Set(t *testing.T) {
	t.Parallel()
	s := widgetSchema()
	w, err := s.Instantiate()
	require.NoError(t, err)

	require.NoError(t, s.Set(w, "name", "bolt"))
	require.NoError(t, s.Set(w, "size", int64(3)))
	assert.Equal(t, widget{Name: "bolt", Size: 3}, *w)
}

func TestSchema_Set_UnknownProperty(t *testing.T) {
	t.Parallel()
	s := widgetSchema()
	w, _ := s.Instantiate()

	err := s.Set(w, "colour", "red")
	require.ErrorIs(t, err, ErrPropertyNotFound)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "widget", fe.Entity)
	assert.Equal(t, "colour", fe.Attribute)
}

func TestSchema_Set_WrongType(t *testing.T) {
	t.Parallel()
	s := widgetSchema()
	w, _ := s.Instantiate()

	err := s.Set(w, "size", "three")
	assert.ErrorIs(t, err, ErrPropertyAssignmentFailed)
	assert.Contains(t, err.Error(), "expected int64, got string")
}

func TestSchema_Set_Nil(t *testing.T) {
	t.Parallel()
	s := widgetSchema()
	w := &widget{Owner: &widget{}, Tags: []string{"a"}}

	require.NoError(t, s.Set(w, "owner", nil))
	require.NoError(t, s.Set(w, "tags", nil))
	assert.Nil(t, w.Owner)
	assert.Nil(t, w.Tags)

	assert.ErrorIs(t, s.Set(w, "size", nil), ErrPropertyAssignmentFailed)
}

func TestSchema_Check(t *testing.T) {
	t.Parallel()
	s := widgetSchema()

	require.NoError(t, s.Check("size", int64(3)))
	require.NoError(t, s.Check("owner", nil))
	assert.ErrorIs(t, s.Check("size", 3), ErrPropertyAssignmentFailed)
	assert.ErrorIs(t, s.Check("size", nil), ErrPropertyAssignmentFailed)
	assert.ErrorIs(t, s.Check("colour", "red"), ErrPropertyNotFound)

	loose := NewSchema("loose", Field[widget]{
		Name: "name",
		Set:  func(*widget, any) error { return nil },
	})
	assert.NoError(t, loose.Check("name", 42))
}

func TestSchema_Instantiate_ConstructorFailure(t *testing.T) {
	t.Parallel()

	s := widgetSchema().WithConstructor(func() (*widget, error) {
		return nil, errors.New("no default constructor")
	})
	_, err := s.Instantiate()
	assert.ErrorIs(t, err, ErrInstantiationFailed)

	s = widgetSchema().WithConstructor(func() (*widget, error) { return nil, nil })
	_, err = s.Instantiate()
	assert.ErrorIs(t, err, ErrInstantiationFailed)
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	err := &Error{
		Kind:      ErrUniquenessExhausted,
		Entity:    "widget",
		Attribute: "size",
		Attempts:  100,
	}
	assert.Equal(t, "factory: uniqueness exhausted: entity widget: attribute size: after 100 attempts", err.Error())
	assert.ErrorIs(t, err, ErrUniquenessExhausted)
	assert.NotErrorIs(t, err, ErrTypeMismatch)
}
