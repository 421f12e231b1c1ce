package routing

import (
	"fmt"
	"reflect"
	"sort"
)

// Registry maps exact message types to handlers for one agent.
// It is built once and never mutated, so lookups need no locking.
type Registry struct {
	handlers      map[reflect.Type]HandlerFunc
	subscriptions []reflect.Type
}

// NewRegistry builds a registry from bindings.
// A second binding for an already bound type is rejected.
func NewRegistry(bindings ...Binding) (*Registry, error) {
	handlers := make(map[reflect.Type]HandlerFunc, len(bindings))
	for i, b := range bindings {
		if b.Type == nil {
			return nil, fmt.Errorf("binding %d: %w: message type is required", i, ErrInvalidBinding)
		}
		if b.Type.Kind() == reflect.Interface {
			return nil, fmt.Errorf("binding %d: %w: %s is an interface type", i, ErrInvalidBinding, b.Type)
		}
		if b.Handler == nil {
			return nil, fmt.Errorf("binding %d: %w: handler for %s is nil", i, ErrInvalidBinding, b.Type)
		}
		if _, exists := handlers[b.Type]; exists {
			return nil, fmt.Errorf("binding %d: %w for %s", i, ErrDuplicateHandler, b.Type)
		}
		handlers[b.Type] = b.Handler
	}

	subscriptions := make([]reflect.Type, 0, len(handlers))
	for t := range handlers {
		subscriptions = append(subscriptions, t)
	}
	sort.Slice(subscriptions, func(i, j int) bool {
		return subscriptions[i].String() < subscriptions[j].String()
	})

	return &Registry{handlers: handlers, subscriptions: subscriptions}, nil
}

// Lookup returns the handler bound to exactly t.
func (r *Registry) Lookup(t reflect.Type) (HandlerFunc, bool) {
	if t == nil {
		return nil, false
	}
	fn, ok := r.handlers[t]
	return fn, ok
}

// Subscriptions returns the bound types sorted by type name.
func (r *Registry) Subscriptions() []reflect.Type {
	out := make([]reflect.Type, len(r.subscriptions))
	copy(out, r.subscriptions)
	return out
}

// Len returns the number of bound types.
func (r *Registry) Len() int {
	return len(r.handlers)
}
