package agents

import (
	"fmt"

	"github.com/neoclaw-ai/agentroute/internal/codec"
	"github.com/neoclaw-ai/agentroute/internal/config"
	"github.com/neoclaw-ai/agentroute/internal/runtime"
)

// FromConfig constructs every enabled built-in agent and registers it with rt.
func FromConfig(cfg *config.Config, rt runtime.Registrar) ([]runtime.Agent, error) {
	var out []runtime.Agent
	if cfg.Agents.Echo.Enabled {
		echo, err := NewEcho(config.EchoAgent, rt, cfg.Agents.Echo.Increment)
		if err != nil {
			return nil, fmt.Errorf("create echo agent: %w", err)
		}
		out = append(out, echo)
	}
	if cfg.Agents.Greeter.Enabled {
		greeter, err := NewGreeter(
			config.GreeterAgent,
			rt,
			cfg.Agents.Greeter.Greeting,
			cfg.Agents.Greeter.DefaultReply,
		)
		if err != nil {
			return nil, fmt.Errorf("create greeter agent: %w", err)
		}
		out = append(out, greeter)
	}
	return out, nil
}

// RegisterKinds adds the message kinds defined by this package to p.
func RegisterKinds(p *codec.Parser) error {
	return p.Register("ping", func(raw string) (any, error) {
		return Ping{Text: raw}, nil
	})
}
