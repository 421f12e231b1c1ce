package routing

import (
	"context"
	"fmt"
	"reflect"
)

// HandlerFunc handles one message whose dynamic type equals the binding type.
type HandlerFunc func(ctx context.Context, msg any) (any, error)

// Binding associates one exact message type with its handler.
type Binding struct {
	Type    reflect.Type
	Handler HandlerFunc
}

// Bind creates an untyped binding for t.
func Bind(t reflect.Type, fn HandlerFunc) Binding {
	return Binding{Type: t, Handler: fn}
}

// Handle creates a binding for message type M from a typed handler.
// The handler result R is returned to the caller of OnMessage as-is.
func Handle[M, R any](fn func(ctx context.Context, msg M) (R, error)) Binding {
	t := reflect.TypeFor[M]()
	if fn == nil {
		return Binding{Type: t}
	}
	return Binding{
		Type: t,
		Handler: func(ctx context.Context, msg any) (any, error) {
			typed, ok := msg.(M)
			if !ok {
				return nil, fmt.Errorf("handler for %s received %T", t, msg)
			}
			return fn(ctx, typed)
		},
	}
}
