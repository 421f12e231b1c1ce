// Package channels reads operator input, turns it into agent messages, and writes results back.
package channels

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neoclaw-ai/agentroute/internal/codec"
	"github.com/neoclaw-ai/agentroute/internal/runtime"
)

const usageText = "Usage: <agent> <type> <value...> | publish <type> <value...>"

// ResponseWriter sends output back to the active channel.
type ResponseWriter interface {
	WriteMessage(ctx context.Context, text string) error
}

// LineHandler processes one line of operator input.
type LineHandler interface {
	HandleLine(ctx context.Context, w ResponseWriter, line string) error
}

// Messenger is the runtime surface used to deliver parsed messages.
type Messenger interface {
	Send(ctx context.Context, agent string, msg any) (any, error)
	Publish(ctx context.Context, msg any) ([]runtime.Delivery, error)
}

// RuntimeHandler parses input lines into typed messages and delivers them.
// Delivery failures, including unhandled message types, are written back to
// the channel rather than returned.
type RuntimeHandler struct {
	Runtime Messenger
	Parser  *codec.Parser
}

// HandleLine handles `<agent> <type> <value...>` and `publish <type> <value...>`.
func (h RuntimeHandler) HandleLine(ctx context.Context, w ResponseWriter, line string) error {
	if w == nil {
		return errors.New("response writer is required")
	}
	if h.Runtime == nil || h.Parser == nil {
		return errors.New("runtime and parser are required")
	}

	tokens, err := codec.SplitLine(line)
	if err != nil {
		return w.WriteMessage(ctx, "error: "+err.Error())
	}
	if len(tokens) < 2 {
		return w.WriteMessage(ctx, usageText)
	}

	target, kind := tokens[0], tokens[1]
	msg, err := h.Parser.Parse(kind, strings.Join(tokens[2:], " "))
	if err != nil {
		return w.WriteMessage(ctx, "error: "+err.Error())
	}
	if strings.EqualFold(target, "publish") {
		return h.publish(ctx, w, msg)
	}

	value, err := h.Runtime.Send(ctx, target, msg)
	if err != nil {
		return w.WriteMessage(ctx, fmt.Sprintf("%s error: %v", target, err))
	}
	return w.WriteMessage(ctx, fmt.Sprintf("%s> %s", target, codec.Format(value)))
}

func (h RuntimeHandler) publish(ctx context.Context, w ResponseWriter, msg any) error {
	deliveries, err := h.Runtime.Publish(ctx, msg)
	if err != nil {
		return w.WriteMessage(ctx, "error: "+err.Error())
	}
	lines := make([]string, 0, len(deliveries))
	for _, d := range deliveries {
		if d.Err != nil {
			lines = append(lines, fmt.Sprintf("%s error: %v", d.Agent, d.Err))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s> %s", d.Agent, codec.Format(d.Value)))
	}
	return w.WriteMessage(ctx, strings.Join(lines, "\n"))
}
