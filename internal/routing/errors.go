package routing

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrCannotHandle reports a message with no bound handler and no fallback override.
	ErrCannotHandle = errors.New("cannot handle message")
	// ErrDuplicateHandler reports two bindings for the same exact type.
	ErrDuplicateHandler = errors.New("duplicate handler")
	// ErrInvalidBinding reports a binding with no type, no handler, or an interface type.
	ErrInvalidBinding = errors.New("invalid handler binding")
)

// CannotHandleError identifies the agent and message type that had no route.
// It matches ErrCannotHandle with errors.Is.
type CannotHandleError struct {
	Agent string
	Type  reflect.Type
}

func (e *CannotHandleError) Error() string {
	return fmt.Sprintf("agent %q cannot handle message of type %s", e.Agent, typeString(e.Type))
}

func (e *CannotHandleError) Unwrap() error {
	return ErrCannotHandle
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
