// Package agents provides the built-in type-routed agents.
package agents

import (
	"context"

	"github.com/neoclaw-ai/agentroute/internal/routing"
	"github.com/neoclaw-ai/agentroute/internal/runtime"
)

// Echo answers an int with the int plus a fixed increment. It has no
// fallback override, so any other message type fails with CannotHandle.
type Echo struct {
	*routing.Agent
	increment int
}

// NewEcho constructs an Echo and registers it with rt.
func NewEcho(name string, rt runtime.Registrar, increment int) (*Echo, error) {
	e := &Echo{increment: increment}
	agent, err := routing.NewAgent(name, rt, []routing.Binding{
		routing.Handle(e.handleInt),
	})
	if err != nil {
		return nil, err
	}
	e.Agent = agent
	return e, nil
}

func (e *Echo) handleInt(_ context.Context, x int) (int, error) {
	return x + e.increment, nil
}
