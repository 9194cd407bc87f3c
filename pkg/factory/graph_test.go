package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type part struct {
	Name   string
	Widget *widget
}

func partSchema() *Schema[part] {
	return NewSchema("part",
		Prop("name", func(p *part, v string) { p.Name = v }),
		Prop("widget", func(p *part, v *widget) { p.Widget = v }),
	)
}

// ============================================================================
// Composition Tests
// ============================================================================

func TestPersistedBy_SavesDependency(t *testing.T) {
	t.Parallel()
	widgets := &savedWidgets{}

	wf := MustNew(widgetSchema(), widgets, WithDefaults(UniqueDef(Sequence("size", 1))))
	pf := MustNew(partSchema(), nil, WithDefaults(
		Def(Static("name", "gear")),
		Def(PersistedBy("widget", wf)),
	))

	ps, err := pf.BuildN(context.Background(), 2)
	require.NoError(t, err)

	require.Equal(t, 2, widgets.Len())
	assert.Same(t, widgets.items[0], ps[0].Widget)
	assert.Same(t, widgets.items[1], ps[1].Widget)
	assert.NotEqual(t, ps[0].Widget.Size, ps[1].Widget.Size)
}

func TestBuiltBy_DoesNotSaveDependency(t *testing.T) {
	t.Parallel()
	widgets := &savedWidgets{}

	wf := MustNew(widgetSchema(), widgets, WithDefaults(Def(Static("name", "bolt"))))
	pf := MustNew(partSchema(), nil, WithDefaults(Def(BuiltBy("widget", wf))))

	p, err := pf.Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p.Widget)
	assert.Equal(t, "bolt", p.Widget.Name)
	assert.Zero(t, widgets.Len())
}

func TestWithDependents(t *testing.T) {
	t.Parallel()
	widgets := &savedWidgets{}

	wf := MustNew(widgetSchema(), widgets)
	pf := MustNew(partSchema(), nil, WithDependents([]Node{wf}, func(deps []Node) []Definition {
		return []Definition{Def(FromNode("widget", deps[0], true))}
	}))

	require.Len(t, pf.Dependents(), 1)
	assert.Equal(t, wf.ID(), pf.Dependents()[0].ID())

	p, err := pf.Build(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, p.Widget)
	assert.Equal(t, 1, widgets.Len())

	assert.Equal(t, map[string][]string{
		pf.ID(): {wf.ID()},
		wf.ID(): {},
	}, Graph(pf))
}

func TestDependencyError_KeepsDependentEntity(t *testing.T) {
	t.Parallel()
	obs := &recordingObserver{}

	wf := MustNew(widgetSchema(), &savedWidgets{}, WithDefaults(UniqueDef(Static("size", int64(1)))))
	pf := MustNew(partSchema(), nil,
		WithDefaults(Def(PersistedBy("widget", wf))),
		WithObserver(obs),
	)

	_, err := pf.Build(context.Background())
	require.NoError(t, err)
	_, err = pf.Build(context.Background())
	require.ErrorIs(t, err, ErrUniquenessExhausted)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "widget", fe.Entity)
	assert.Equal(t, "size", fe.Attribute)
	assert.Empty(t, obs.exhausted, "exhaustion belongs to the widget factory")
}

// ============================================================================
// Cycle Tests
// ============================================================================

func TestBuild_DetectsRuntimeCycle(t *testing.T) {
	t.Parallel()

	var a, b *Factory[part]
	a = MustNew(partSchema(), nil, WithDefaults(Def(NewAttribute("name", func(ctx context.Context) (any, error) {
		if _, err := b.Build(ctx); err != nil {
			return nil, err
		}
		return "a", nil
	}))))
	b = MustNew(partSchema(), nil, WithDefaults(Def(NewAttribute("name", func(ctx context.Context) (any, error) {
		if _, err := a.Build(ctx); err != nil {
			return nil, err
		}
		return "b", nil
	}))))

	_, err := a.Build(context.Background())
	require.ErrorIs(t, err, ErrDependencyCycle)
	assert.Contains(t, err.Error(), "part -> part -> part")
}

type fakeNode struct {
	id   string
	deps []Node
}

func (n *fakeNode) ID() string                              { return n.id }
func (n *fakeNode) EntityName() string                      { return n.id }
func (n *fakeNode) Dependents() []Node                      { return n.deps }
func (n *fakeNode) BuildAny(context.Context) (any, error)   { return n.id, nil }
func (n *fakeNode) PersistAny(context.Context) (any, error) { return n.id, nil }

func TestCheckAcyclic(t *testing.T) {
	t.Parallel()

	leaf := &fakeNode{id: "leaf"}
	mid := &fakeNode{id: "mid", deps: []Node{leaf}}
	top := &fakeNode{id: "top", deps: []Node{mid, leaf}}
	assert.NoError(t, CheckAcyclic(top, mid))

	x := &fakeNode{id: "x"}
	y := &fakeNode{id: "y", deps: []Node{x}}
	z := &fakeNode{id: "z", deps: []Node{y}}
	x.deps = []Node{z}

	err := CheckAcyclic(y)
	require.ErrorIs(t, err, ErrDependencyCycle)
	assert.Contains(t, err.Error(), "y -> x -> z -> y")
}

func TestCheckAcyclic_SelfLoop(t *testing.T) {
	t.Parallel()

	self := &fakeNode{id: "self"}
	self.deps = []Node{self}
	assert.ErrorIs(t, CheckAcyclic(self), ErrDependencyCycle)
}
