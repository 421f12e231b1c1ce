// Package commands provides channel-agnostic slash command handling.
package commands

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/neoclaw-ai/agentroute/internal/channels"
	"github.com/neoclaw-ai/agentroute/internal/runtime"
)

const helpText = "Commands: /help, /commands, /agents, /quit\n" +
	"Messages: <agent> <type> <value...> | publish <type> <value...>"

// Directory lists the agents hosted by a runtime.
type Directory interface {
	Agents() []string
	Agent(name string) (runtime.Agent, bool)
}

// Handler dispatches supported slash commands.
type Handler struct {
	agents Directory
	kinds  []string
}

// New creates a new slash command handler. kinds are the message types the
// input parser understands and are listed by /help.
func New(agents Directory, kinds []string) *Handler {
	return &Handler{agents: agents, kinds: kinds}
}

// Handle executes one command and reports whether it was handled.
func (h *Handler) Handle(ctx context.Context, cmd string, w channels.ResponseWriter) (handled bool, err error) {
	if w == nil {
		return false, errors.New("response writer is required")
	}

	switch normalize(cmd) {
	case "/help", "/commands":
		return true, h.handleHelp(ctx, w)
	case "/agents":
		return true, h.handleAgents(ctx, w)
	default:
		return false, nil
	}
}

func (h *Handler) handleHelp(ctx context.Context, w channels.ResponseWriter) error {
	if len(h.kinds) == 0 {
		return w.WriteMessage(ctx, helpText)
	}
	return w.WriteMessage(ctx, helpText+"\nTypes: "+strings.Join(h.kinds, ", "))
}

func (h *Handler) handleAgents(ctx context.Context, w channels.ResponseWriter) error {
	if h.agents == nil {
		return errors.New("agents command is unavailable")
	}
	names := h.agents.Agents()
	if len(names) == 0 {
		return w.WriteMessage(ctx, "No agents registered.")
	}
	var b strings.Builder
	b.WriteString("Agents:\n")
	for i, name := range names {
		agent, ok := h.agents.Agent(name)
		if !ok {
			continue
		}
		_, _ = fmt.Fprintf(&b, "%d. %s: %s", i+1, name, typeList(agent.Subscriptions()))
		if i < len(names)-1 {
			b.WriteByte('\n')
		}
	}
	return w.WriteMessage(ctx, b.String())
}

// Router dispatches slash commands before delegating to the next line handler.
type Router struct {
	Commands *Handler
	Next     channels.LineHandler
}

// HandleLine runs command dispatch first, then forwards non-command input.
func (r Router) HandleLine(ctx context.Context, w channels.ResponseWriter, line string) error {
	if r.Next == nil {
		return errors.New("next handler is required")
	}
	if r.Commands != nil {
		handled, err := r.Commands.Handle(ctx, line, w)
		if handled || err != nil {
			return err
		}
	}
	if strings.HasPrefix(strings.TrimSpace(line), "/") {
		return w.WriteMessage(ctx, fmt.Sprintf("unknown command %q; try /help", strings.TrimSpace(line)))
	}
	return r.Next.HandleLine(ctx, w, line)
}

func typeList(types []reflect.Type) string {
	if len(types) == 0 {
		return "(no subscriptions)"
	}
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, ", ")
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
