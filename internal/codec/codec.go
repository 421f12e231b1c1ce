// Package codec turns textual input from the CLI, REPL, and scheduler into typed message values.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
)

// ParseFunc converts raw text into a message value.
type ParseFunc func(raw string) (any, error)

// Parser maps kind names to parse functions.
type Parser struct {
	byKind map[string]ParseFunc
}

// NewParser creates a parser with no kinds.
func NewParser() *Parser {
	return &Parser{byKind: make(map[string]ParseFunc)}
}

// Default creates a parser with the builtin scalar and json kinds.
func Default() *Parser {
	p := NewParser()
	builtins := []struct {
		kind string
		fn   ParseFunc
	}{
		{kind: "int", fn: parseInt},
		{kind: "float", fn: parseFloat},
		{kind: "bool", fn: parseBool},
		{kind: "string", fn: parseString},
		{kind: "duration", fn: parseDuration},
		{kind: "json", fn: parseJSON},
	}
	for _, b := range builtins {
		// Builtin kinds are distinct, so registration cannot fail.
		_ = p.Register(b.kind, b.fn)
	}
	return p
}

// Register adds a kind by unique name.
func (p *Parser) Register(kind string, fn ParseFunc) error {
	kind = normalizeKind(kind)
	if kind == "" {
		return errors.New("kind cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("parse func for kind %s cannot be nil", kind)
	}
	if _, exists := p.byKind[kind]; exists {
		return fmt.Errorf("kind %s already registered", kind)
	}
	p.byKind[kind] = fn
	return nil
}

// Parse converts raw into a value of the named kind.
func (p *Parser) Parse(kind, raw string) (any, error) {
	fn, ok := p.byKind[normalizeKind(kind)]
	if !ok {
		return nil, fmt.Errorf("unknown message type %q (known: %s)", kind, strings.Join(p.Kinds(), ", "))
	}
	v, err := fn(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s value %q: %w", normalizeKind(kind), raw, err)
	}
	return v, nil
}

// Kinds returns registered kind names in sorted order.
func (p *Parser) Kinds() []string {
	kinds := make([]string, 0, len(p.byKind))
	for kind := range p.byKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// SplitLine tokenizes a line with shell quoting rules.
func SplitLine(line string) ([]string, error) {
	tokens, err := shlex.Split(strings.TrimSpace(line))
	if err != nil {
		return nil, fmt.Errorf("split input: %w", err)
	}
	return tokens, nil
}

// Format renders a result value with its type for display.
func Format(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v (%T)", v, v)
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}

func parseInt(raw string) (any, error) {
	return strconv.Atoi(strings.TrimSpace(raw))
}

func parseFloat(raw string) (any, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

func parseBool(raw string) (any, error) {
	return strconv.ParseBool(strings.TrimSpace(raw))
}

func parseString(raw string) (any, error) {
	return raw, nil
}

func parseDuration(raw string) (any, error) {
	return time.ParseDuration(strings.TrimSpace(raw))
}

func parseJSON(raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return v, nil
}
