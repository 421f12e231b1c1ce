// Package runtime hosts agents in-process: it owns agent registration, gives each agent a FIFO mailbox, and delivers direct and published messages.
package runtime

import (
	"context"
	"errors"
	"reflect"
)

var (
	// ErrAgentNotFound is returned when a message targets an unknown agent name.
	ErrAgentNotFound = errors.New("agent not found")
	// ErrDuplicateAgent is returned when two agents register under one name.
	ErrDuplicateAgent = errors.New("agent already registered")
	// ErrNoSubscribers is returned when a published message matches no agent.
	ErrNoSubscribers = errors.New("no subscribed agents")
	// ErrStopped is returned for deliveries dropped by a mailbox shutdown.
	ErrStopped = errors.New("mailbox stopped")
)

// Agent is an addressable unit of behavior that responds to typed messages.
type Agent interface {
	Name() string
	// OnMessage handles one message. ctx is the caller's cancellation token.
	OnMessage(ctx context.Context, msg any) (any, error)
	// Subscriptions lists the exact message types the agent handles.
	Subscriptions() []reflect.Type
}

// Registrar accepts agents at construction time.
type Registrar interface {
	RegisterAgent(agent Agent) error
}

// Delivery is the outcome of one published message for one agent.
type Delivery struct {
	Agent string
	Value any
	Err   error
}
