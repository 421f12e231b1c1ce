package runtime

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/neoclaw-ai/agentroute/internal/logging"
)

const defaultMailboxSize = 20

var _ Registrar = (*Local)(nil)

// Option configures a Local runtime.
type Option func(*Local)

// WithMailboxSize sets the per-agent queue size.
func WithMailboxSize(n int) Option {
	return func(l *Local) {
		l.mailboxSize = n
	}
}

// WithDeliverTimeout bounds each delivery. Zero disables the bound.
func WithDeliverTimeout(d time.Duration) Option {
	return func(l *Local) {
		l.deliverTimeout = d
	}
}

type entry struct {
	agent         Agent
	mailbox       *Mailbox
	subscriptions []reflect.Type
}

// Local is an in-process runtime. Each registered agent gets its own mailbox,
// so one agent handles one message at a time while agents run concurrently.
type Local struct {
	mailboxSize    int
	deliverTimeout time.Duration

	mu      sync.RWMutex
	agents  map[string]*entry
	started bool
	rootCtx context.Context
}

// New creates an empty runtime.
func New(opts ...Option) *Local {
	l := &Local{
		mailboxSize: defaultMailboxSize,
		agents:      make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RegisterAgent adds an agent under its unique name. Agents registered after
// Start begin receiving immediately.
func (l *Local) RegisterAgent(agent Agent) error {
	if agent == nil {
		return errors.New("agent is required")
	}
	name := strings.TrimSpace(agent.Name())
	if name == "" {
		return errors.New("agent name is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.agents[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAgent, name)
	}
	e := &entry{
		agent:         agent,
		mailbox:       NewMailbox(agent, l.mailboxSize, l.deliverTimeout),
		subscriptions: agent.Subscriptions(),
	}
	if l.started {
		if err := e.mailbox.Start(l.rootCtx); err != nil {
			return fmt.Errorf("start mailbox for %s: %w", name, err)
		}
	}
	l.agents[name] = e

	logging.Logger().Info("agent registered", "agent", name, "subscriptions", typeNames(e.subscriptions))
	return nil
}

// Start starts delivery for every registered agent.
func (l *Local) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return errors.New("runtime already started")
	}
	for name, e := range l.agents {
		if err := e.mailbox.Start(ctx); err != nil {
			return fmt.Errorf("start mailbox for %s: %w", name, err)
		}
	}
	l.started = true
	l.rootCtx = ctx
	return nil
}

// Stop cancels in-flight deliveries and drops queued ones.
func (l *Local) Stop() {
	for _, e := range l.entries() {
		e.mailbox.Stop()
	}
}

// WaitUntilIdle blocks until every mailbox is idle.
func (l *Local) WaitUntilIdle(ctx context.Context) error {
	for _, e := range l.entries() {
		if err := e.mailbox.WaitUntilIdle(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Agent returns a registered agent by name.
func (l *Local) Agent(name string) (Agent, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.agents[name]
	if !ok {
		return nil, false
	}
	return e.agent, true
}

// Agents returns registered agent names in sorted order.
func (l *Local) Agents() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.agents))
	for name := range l.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subscribers returns the sorted names of agents subscribed to exactly t.
// Eligibility comes from subscriptions captured at registration; no agent is invoked.
func (l *Local) Subscribers(t reflect.Type) []string {
	if t == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	var names []string
	for name, e := range l.agents {
		for _, sub := range e.subscriptions {
			if sub == t {
				names = append(names, name)
				break
			}
		}
	}
	sort.Strings(names)
	return names
}

// Send delivers msg to one agent and waits for its result.
func (l *Local) Send(ctx context.Context, name string, msg any) (any, error) {
	l.mu.RLock()
	e, ok := l.agents[name]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	return e.mailbox.Send(ctx, msg)
}

// Publish delivers msg to every agent subscribed to its exact type and
// returns one Delivery per subscriber in agent name order.
func (l *Local) Publish(ctx context.Context, msg any) ([]Delivery, error) {
	t := reflect.TypeOf(msg)
	names := l.Subscribers(t)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w for %v", ErrNoSubscribers, t)
	}

	deliveries := make([]Delivery, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := l.Send(ctx, name, msg)
			deliveries[i] = Delivery{Agent: name, Value: value, Err: err}
		}()
	}
	wg.Wait()
	return deliveries, nil
}

func (l *Local) entries() []*entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*entry, 0, len(l.agents))
	for _, e := range l.agents {
		out = append(out, e)
	}
	return out
}

func typeNames(types []reflect.Type) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, t.String())
	}
	return out
}
