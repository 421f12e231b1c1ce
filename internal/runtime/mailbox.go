package runtime

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/neoclaw-ai/agentroute/internal/logging"
)

// Envelope is one queued delivery to an agent.
type Envelope struct {
	ID      string
	Message any

	ctx   context.Context
	reply chan Result
}

// Result is the handler outcome for one envelope.
type Result struct {
	Value any
	Err   error
}

// NewEnvelope wraps msg with a fresh message ID. ctx is the sender's
// cancellation token for the delivery.
func NewEnvelope(ctx context.Context, msg any) *Envelope {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Envelope{
		ID:      uuid.NewString(),
		Message: msg,
		ctx:     ctx,
		reply:   make(chan Result, 1),
	}
}

// Reply returns the channel that receives exactly one Result.
func (e *Envelope) Reply() <-chan Result {
	return e.reply
}

// Mailbox delivers queued envelopes to one agent sequentially.
type Mailbox struct {
	agent   Agent
	timeout time.Duration

	queue chan *Envelope
	done  chan struct{}

	stateMu    sync.Mutex
	started    bool
	stopped    bool
	rootCtx    context.Context
	currentRun context.CancelFunc
	// pending counts envelopes accepted by Post and not yet answered.
	pending int
}

// NewMailbox creates a mailbox with a fixed-size queue. A positive timeout
// bounds each delivery.
func NewMailbox(agent Agent, queueSize int, timeout time.Duration) *Mailbox {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Mailbox{
		agent:   agent,
		timeout: timeout,
		queue:   make(chan *Envelope, queueSize),
		done:    make(chan struct{}),
	}
}

// Start begins the delivery loop. Cancelling ctx stops the loop and cancels
// the in-flight delivery.
func (m *Mailbox) Start(ctx context.Context) error {
	if m == nil {
		return errors.New("mailbox is required")
	}
	if m.agent == nil {
		return errors.New("agent is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	m.stateMu.Lock()
	if m.started {
		m.stateMu.Unlock()
		return errors.New("mailbox already started")
	}
	m.started = true
	m.rootCtx = ctx
	m.stateMu.Unlock()

	go m.run(ctx)
	return nil
}

// Post queues one envelope for FIFO delivery.
func (m *Mailbox) Post(ctx context.Context, env *Envelope) error {
	if env == nil {
		return errors.New("envelope is required")
	}
	rootCtx, started := m.deliveryContext()
	if !started {
		return errors.New("mailbox is not started")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	m.stateMu.Lock()
	if m.stopped || rootCtx.Err() != nil {
		m.stateMu.Unlock()
		return ErrStopped
	}
	m.pending++
	m.stateMu.Unlock()

	select {
	case <-rootCtx.Done():
		m.addPending(-1)
		return ErrStopped
	case <-ctx.Done():
		m.addPending(-1)
		return ctx.Err()
	case m.queue <- env:
	}
	// The loop may have drained the queue between the check above and the
	// enqueue; answer anything it left behind.
	if m.isStopped() {
		m.drain()
	}
	return nil
}

// Send posts msg and waits for the agent's result.
func (m *Mailbox) Send(ctx context.Context, msg any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	env := NewEnvelope(ctx, msg)
	if err := m.Post(ctx, env); err != nil {
		return nil, err
	}
	select {
	case res := <-env.reply:
		return res.Value, res.Err
	case <-m.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop drops all queued envelopes and cancels the in-flight delivery.
func (m *Mailbox) Stop() {
	m.drain()
	m.cancelCurrentRun()
}

// WaitUntilIdle blocks until no delivery is running and the queue is empty.
func (m *Mailbox) WaitUntilIdle(ctx context.Context) error {
	if m == nil {
		return errors.New("mailbox is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		if m.isIdle() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Wait blocks until the delivery loop exits.
func (m *Mailbox) Wait() {
	if m == nil {
		return
	}
	m.stateMu.Lock()
	started := m.started
	m.stateMu.Unlock()
	if !started {
		return
	}
	<-m.done
}

func (m *Mailbox) run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.stateMu.Lock()
			m.stopped = true
			m.stateMu.Unlock()
			m.cancelCurrentRun()
			m.drain()
			return
		case env := <-m.queue:
			if env == nil {
				continue
			}
			if ctx.Err() != nil {
				env.reply <- Result{Err: ErrStopped}
				m.addPending(-1)
				continue
			}
			env.reply <- m.deliver(ctx, env)
			m.addPending(-1)
		}
	}
}

func (m *Mailbox) deliver(rootCtx context.Context, env *Envelope) Result {
	runCtx, cancel := context.WithCancel(env.ctx)
	defer cancel()
	stopAfter := context.AfterFunc(rootCtx, cancel)
	defer stopAfter()
	if m.timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, m.timeout)
		defer cancelTimeout()
	}

	m.setCurrentRun(cancel)
	defer m.clearCurrentRun()

	value, err := m.agent.OnMessage(runCtx, env.Message)
	if err != nil {
		logging.Logger().Debug(
			"delivery failed",
			"agent", m.agent.Name(),
			"message_id", env.ID,
			"type", fmt.Sprintf("%v", reflect.TypeOf(env.Message)),
			"err", err,
		)
	}
	return Result{Value: value, Err: err}
}

func (m *Mailbox) drain() {
	for {
		select {
		case env := <-m.queue:
			if env != nil {
				env.reply <- Result{Err: ErrStopped}
				m.addPending(-1)
			}
		default:
			return
		}
	}
}

func (m *Mailbox) deliveryContext() (context.Context, bool) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.rootCtx, m.started
}

func (m *Mailbox) setCurrentRun(cancel context.CancelFunc) {
	m.stateMu.Lock()
	m.currentRun = cancel
	m.stateMu.Unlock()
}

func (m *Mailbox) clearCurrentRun() {
	m.stateMu.Lock()
	m.currentRun = nil
	m.stateMu.Unlock()
}

func (m *Mailbox) cancelCurrentRun() {
	m.stateMu.Lock()
	cancel := m.currentRun
	m.currentRun = nil
	m.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (m *Mailbox) addPending(delta int) {
	m.stateMu.Lock()
	m.pending += delta
	m.stateMu.Unlock()
}

func (m *Mailbox) isStopped() bool {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.stopped
}

func (m *Mailbox) isIdle() bool {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return !m.started || m.pending == 0
}
