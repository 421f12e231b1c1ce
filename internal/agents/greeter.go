package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/neoclaw-ai/agentroute/internal/routing"
	"github.com/neoclaw-ai/agentroute/internal/runtime"
)

// Ping asks the greeter to answer with a Pong carrying the same text.
type Ping struct {
	Text string
}

// Pong is the greeter's reply to a Ping.
type Pong struct {
	Text string
}

func (p Pong) String() string {
	return "pong: " + p.Text
}

// Greeter greets names and answers pings. Unmatched message types get the
// configured default reply instead of an error.
type Greeter struct {
	*routing.Agent
	greeting     string
	defaultReply string
}

// NewGreeter constructs a Greeter and registers it with rt.
func NewGreeter(name string, rt runtime.Registrar, greeting, defaultReply string) (*Greeter, error) {
	g := &Greeter{greeting: greeting, defaultReply: defaultReply}
	agent, err := routing.NewAgent(name, rt, []routing.Binding{
		routing.Handle(g.handleName),
		routing.Handle(g.handlePing),
	}, routing.WithUnhandled(g.handleUnknown))
	if err != nil {
		return nil, err
	}
	g.Agent = agent
	return g, nil
}

func (g *Greeter) handleName(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "stranger"
	}
	return fmt.Sprintf("%s, %s!", g.greeting, name), nil
}

func (g *Greeter) handlePing(ctx context.Context, p Ping) (Pong, error) {
	if err := ctx.Err(); err != nil {
		return Pong{}, err
	}
	return Pong{Text: p.Text}, nil
}

func (g *Greeter) handleUnknown(_ context.Context, _ any) (any, error) {
	return g.defaultReply, nil
}
