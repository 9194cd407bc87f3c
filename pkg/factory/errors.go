package factory

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Use errors.Is() to check them:
//
//	if errors.Is(err, factory.ErrUniquenessExhausted) {
//	    f.ResetAllUsedValues()
//	}
var (
	// ErrInvalidArgument indicates a copy count below one, an empty or duplicate
	// attribute name, or an unknown attribute passed to a reset.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInstantiationFailed indicates the target entity could not be constructed.
	ErrInstantiationFailed = errors.New("instantiation failed")

	// ErrPropertyNotFound indicates the attribute name is not a settable field of the entity.
	// The name is checked before any value is generated, so Error.Value is nil when a
	// build fails this way.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrPropertyAssignmentFailed indicates the setter rejected the value.
	ErrPropertyAssignmentFailed = errors.New("property assignment failed")

	// ErrUniquenessExhausted indicates MaxUniqueAttempts generated values all collided.
	ErrUniquenessExhausted = errors.New("uniqueness exhausted")

	// ErrTypeMismatch indicates a value is incompatible with the values already tracked.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrDependencyCycle indicates a factory was re-entered through its own dependents.
	ErrDependencyCycle = errors.New("dependency cycle")

	// ErrNoStore indicates Persist was called on a factory built without a store.
	ErrNoStore = errors.New("no store configured")
)

// Error carries the context of a failed factory operation.
type Error struct {
	Kind      error
	Entity    string
	Attribute string
	Value     any
	Attempts  int
	Err       error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("factory: ")
	sb.WriteString(e.Kind.Error())
	if e.Entity != "" {
		fmt.Fprintf(&sb, ": entity %s", e.Entity)
	}
	if e.Attribute != "" {
		fmt.Fprintf(&sb, ": attribute %s", e.Attribute)
	}
	if e.Value != nil {
		fmt.Fprintf(&sb, ": value %v", e.Value)
	}
	if e.Attempts > 0 {
		fmt.Fprintf(&sb, ": after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func invalidArgument(format string, args ...any) error {
	return &Error{Kind: ErrInvalidArgument, Err: fmt.Errorf(format, args...)}
}

// withEntity fills in the entity name on errors raised below the factory,
// where the entity type is not known.
func withEntity(err error, entity string) error {
	var fe *Error
	if errors.As(err, &fe) && fe.Entity == "" {
		fe.Entity = entity
	}
	return err
}
