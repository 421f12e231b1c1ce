// Package routing implements type-routed agents: handlers are bound to exact message types at construction and each inbound message is dispatched by its dynamic type, never by an interface it satisfies or a type it embeds.
package routing

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/neoclaw-ai/agentroute/internal/runtime"
)

var _ runtime.Agent = (*Agent)(nil)

// UnhandledFunc produces a result for messages with no bound handler.
type UnhandledFunc func(ctx context.Context, msg any) (any, error)

// Option configures an Agent at construction.
type Option func(*Agent)

// WithUnhandled replaces the default CannotHandle fallback.
func WithUnhandled(fn UnhandledFunc) Option {
	return func(a *Agent) {
		a.unhandled = fn
	}
}

// Agent routes messages to handlers by exact dynamic type.
type Agent struct {
	name      string
	registry  *Registry
	unhandled UnhandledFunc
}

// NewAgent builds the handler registry from bindings and then registers the
// agent with rt. A nil rt leaves the agent unregistered.
func NewAgent(name string, rt runtime.Registrar, bindings []Binding, opts ...Option) (*Agent, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("agent name is required")
	}

	registry, err := NewRegistry(bindings...)
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w", name, err)
	}

	a := &Agent{name: name, registry: registry}
	for _, opt := range opts {
		opt(a)
	}

	if rt != nil {
		if err := rt.RegisterAgent(a); err != nil {
			return nil, fmt.Errorf("register agent %q: %w", name, err)
		}
	}
	return a, nil
}

// Name returns the agent name.
func (a *Agent) Name() string {
	return a.name
}

// Subscriptions returns the exact message types this agent has handlers for.
func (a *Agent) Subscriptions() []reflect.Type {
	return a.registry.Subscriptions()
}

// Handles reports whether t has a bound handler.
func (a *Agent) Handles(t reflect.Type) bool {
	_, ok := a.registry.Lookup(t)
	return ok
}

// OnMessage invokes the handler bound to the dynamic type of msg, or
// OnUnhandledMessage when none is bound. Handler results and errors are
// returned unchanged and ctx is passed through as given.
func (a *Agent) OnMessage(ctx context.Context, msg any) (any, error) {
	if fn, ok := a.registry.Lookup(reflect.TypeOf(msg)); ok {
		return fn(ctx, msg)
	}
	return a.OnUnhandledMessage(ctx, msg)
}

// OnUnhandledMessage runs the fallback override, or fails with a
// *CannotHandleError when the agent has none.
func (a *Agent) OnUnhandledMessage(ctx context.Context, msg any) (any, error) {
	if a.unhandled != nil {
		return a.unhandled(ctx, msg)
	}
	return nil, &CannotHandleError{Agent: a.name, Type: reflect.TypeOf(msg)}
}
