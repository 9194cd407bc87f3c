package fixtures

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/forgo/entityfactory/internal/model"
	"github.com/forgo/entityfactory/pkg/factory"

	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plain text behind every generated User.PasswordHash.
const TestPassword = "testpass123"

// Factories holds the example factories wired over one set of stores.
type Factories struct {
	Basic            *factory.Factory[model.BasicEntity]
	Broken           *factory.Factory[model.BasicEntity]
	Parent           *factory.Factory[model.ParentEntity]
	Child            *factory.Factory[model.ChildEntity]
	UniqueAttributes *factory.Factory[model.EntityWithUniqueAttributes]
	ClearingValues   *factory.Factory[model.EntityWithUniqueAttributes]
	User             *factory.Factory[model.User]

	kinds map[string]Kind
}

type config struct {
	seed     uint64
	logger   *slog.Logger
	observer factory.Observer
}

// Option customizes New.
type Option func(*config)

// WithSeed makes generated values reproducible. Zero picks a random seed.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.seed = seed }
}

// WithLogger passes l to every factory.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithObserver passes obs to every factory.
func WithObserver(obs factory.Observer) Option {
	return func(c *config) { c.observer = obs }
}

// New wires the example factories over stores.
func New(stores Stores, opts ...Option) (*Factories, error) {
	c := config{logger: slog.Default(), observer: factory.NopObserver{}}
	for _, fn := range opts {
		fn(&c)
	}
	if c.seed == 0 {
		c.seed = rand.Uint64()
	}
	fk := &faker{f: gofakeit.New(c.seed)}

	common := []factory.Option{
		factory.WithLogger(c.logger),
		factory.WithObserver(c.observer),
		factory.WithTransactor(stores.Tx),
	}
	with := func(extra ...factory.Option) []factory.Option {
		return append(append([]factory.Option{}, common...), extra...)
	}

	f := &Factories{}
	var err error

	// ========================================================================
	// BasicEntity
	// ========================================================================

	f.Basic, err = factory.New(BasicEntitySchema(), stores.Basic, with(factory.WithDefaults(
		factory.Def(factory.Func(LongAttributeName, func() int64 { return int64(fk.number(1, 5)) })),
		factory.Def(factory.Func(StringAttributeName, fk.sentence)),
	))...)
	if err != nil {
		return nil, err
	}

	// Broken names a property BasicEntity does not have; every Build fails.
	f.Broken, err = factory.New(BasicEntitySchema(), stores.Basic, with(factory.WithDefaults(
		factory.Def(factory.Func(IncorrectAttributeName, fk.sentence)),
		factory.Def(factory.Func(StringAttributeName, fk.sentence)),
	))...)
	if err != nil {
		return nil, err
	}

	// ========================================================================
	// ParentEntity / ChildEntity
	// ========================================================================

	f.Parent, err = factory.New(ParentEntitySchema(), stores.Parent, with(factory.WithDefaults(
		factory.Def(factory.Static(ParentStringAttributeName, "string value")),
	))...)
	if err != nil {
		return nil, err
	}

	f.Child, err = factory.New(ChildEntitySchema(), stores.Child, with(factory.WithDependents(
		[]factory.Node{f.Parent},
		func(deps []factory.Node) []factory.Definition {
			return []factory.Definition{
				factory.Def(factory.FromNode(ParentAttributeName, deps[0], true)),
			}
		},
	))...)
	if err != nil {
		return nil, err
	}

	// ========================================================================
	// EntityWithUniqueAttributes
	// ========================================================================

	f.UniqueAttributes, err = factory.New(UniqueAttributesSchema(), stores.Unique, with(factory.WithDefaults(
		factory.UniqueDef(factory.Func(UniqueStringName, fk.sentence)),
		factory.UniqueDef(factory.Sequence(UniqueLongName, 1)),
		factory.Def(factory.Static(RepeatableStringName, RepeatableStringValue)),
		factory.Def(factory.Func(RepeatableLongName, func() int64 { return int64(fk.number(1, 5)) })),
	))...)
	if err != nil {
		return nil, err
	}

	// ClearingValues produces the same unique values on every call, so the
	// second Build fails until the used values are reset.
	f.ClearingValues, err = factory.New(UniqueAttributesSchema(), stores.Unique, with(factory.WithDefaults(
		factory.UniqueDef(factory.Static(UniqueStringName, "Not unique")),
		factory.UniqueDef(factory.Static(UniqueLongName, int64(1))),
	))...)
	if err != nil {
		return nil, err
	}

	// ========================================================================
	// User
	// ========================================================================

	f.User, err = factory.New(UserSchema(), stores.User, with(factory.WithDefaults(
		factory.UniqueDef(factory.Func("username", fk.username)),
		factory.Def(factory.Func("firstName", fk.firstName)),
		factory.Def(factory.Func("lastName", fk.lastName)),
		factory.Def(factory.Func("address", fk.address)),
		factory.UniqueDef(factory.Func("email", fk.email)),
		factory.Def(factory.Func("age", func() int { return fk.number(model.MinUserAge, 90) })),
		factory.Def(factory.Func("phoneNumber", fk.phone)),
		factory.Def(factory.FuncCtx("passwordHash", hashPassword)),
		factory.Def(factory.Func("createdOn", func() time.Time { return time.Now().UTC() })),
	))...)
	if err != nil {
		return nil, err
	}

	if err := factory.CheckAcyclic(f.Basic, f.Parent, f.Child, f.UniqueAttributes, f.User); err != nil {
		return nil, err
	}

	f.kinds = map[string]Kind{
		"basic":  kind[model.BasicEntity]{f.Basic},
		"parent": kind[model.ParentEntity]{f.Parent},
		"child":  kind[model.ChildEntity]{f.Child},
		"unique": kind[model.EntityWithUniqueAttributes]{f.UniqueAttributes},
		"user":   kind[model.User]{f.User},
	}
	return f, nil
}

// MustNew is New for test setup; it fails t on error.
func MustNew(t testing.TB, stores Stores, opts ...Option) *Factories {
	t.Helper()

	f, err := New(stores, opts...)
	if err != nil {
		t.Fatalf("fixtures: failed to wire factories: %v", err)
	}
	return f
}

func hashPassword(context.Context) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ============================================================================
// Kinds
// ============================================================================

// Kind is a type-erased factory addressed by name, as used by the generator
// command.
type Kind interface {
	factory.Node
	BuildN(ctx context.Context, n int) ([]any, error)
	PersistN(ctx context.Context, n int) ([]any, error)
	ResetAllUsedValues()
}

type kind[T any] struct {
	*factory.Factory[T]
}

func (k kind[T]) BuildN(ctx context.Context, n int) ([]any, error) {
	out, err := k.Factory.BuildN(ctx, n)
	return anys(out), err
}

func (k kind[T]) PersistN(ctx context.Context, n int) ([]any, error) {
	out, err := k.Factory.PersistN(ctx, n)
	return anys(out), err
}

func anys[T any](in []*T) []any {
	if in == nil {
		return nil
	}
	out := make([]any, len(in))
	for i, e := range in {
		out[i] = e
	}
	return out
}

// Kind returns the factory registered under name.
func (f *Factories) Kind(name string) (Kind, bool) {
	k, ok := f.kinds[strings.ToLower(name)]
	return k, ok
}

// Kinds returns the registered kind names in sorted order.
func (f *Factories) Kinds() []string {
	names := make([]string, 0, len(f.kinds))
	for name := range f.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResetAll clears the used unique values of every factory.
func (f *Factories) ResetAll() {
	for _, k := range f.kinds {
		k.ResetAllUsedValues()
	}
	f.ClearingValues.ResetAllUsedValues()
}

// ============================================================================
// Test Helpers
// ============================================================================

// Build builds one entity with f or fails t.
func Build[T any](t testing.TB, f *factory.Factory[T], attrs ...factory.Attribute) *T {
	t.Helper()

	e, err := f.BuildWith(t.Context(), overrides(t, f, attrs))
	if err != nil {
		t.Fatalf("fixtures: failed to build %s: %v", f.EntityName(), err)
	}
	return e
}

// Persist builds and saves one entity with f or fails t.
func Persist[T any](t testing.TB, f *factory.Factory[T], attrs ...factory.Attribute) *T {
	t.Helper()

	e, err := f.PersistWith(t.Context(), overrides(t, f, attrs))
	if err != nil {
		t.Fatalf("fixtures: failed to persist %s: %v", f.EntityName(), err)
	}
	return e
}

// PersistN saves n entities with f or fails t.
func PersistN[T any](t testing.TB, f *factory.Factory[T], n int) []*T {
	t.Helper()

	out, err := f.PersistN(t.Context(), n)
	if err != nil {
		t.Fatalf("fixtures: failed to persist %d %s: %v", n, f.EntityName(), err)
	}
	return out
}

// overrides falls back to the factory-wide set when attrs is empty.
func overrides[T any](t testing.TB, f *factory.Factory[T], attrs []factory.Attribute) *factory.OverrideSet {
	t.Helper()

	if len(attrs) == 0 {
		return f.Overrides()
	}
	set, err := factory.NewOverrides(attrs...)
	if err != nil {
		t.Fatalf("fixtures: invalid overrides: %v", err)
	}
	return set
}

// ============================================================================
// Fake Data
// ============================================================================

// faker serializes access to one seeded gofakeit source.
type faker struct {
	mu sync.Mutex
	f  *gofakeit.Faker
}

func (k *faker) number(lo, hi int) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.f.Number(lo, hi)
}

// sentence returns 4 to 8 capitalized words ending in a period.
func (k *faker) sentence() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	words := make([]string, k.f.Number(4, 8))
	for i := range words {
		words[i] = k.f.Word()
	}
	s := strings.Join(words, " ")
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

func (k *faker) username() string  { return k.str(k.f.Username) }
func (k *faker) firstName() string { return k.str(k.f.FirstName) }
func (k *faker) lastName() string  { return k.str(k.f.LastName) }
func (k *faker) email() string     { return k.str(k.f.Email) }
func (k *faker) phone() string     { return k.str(k.f.Phone) }

func (k *faker) address() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.f.Address().Address
}

func (k *faker) str(fn func() string) string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return fn()
}
