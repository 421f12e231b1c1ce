package cli

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/neoclaw-ai/agentroute/internal/codec"
	"github.com/neoclaw-ai/agentroute/internal/config"
	"github.com/neoclaw-ai/agentroute/internal/runtime"
)

func TestAppStopDrainsInFlightDeliveriesAfterSignal(t *testing.T) {
	cfg := &config.Config{Runtime: config.RuntimeConfig{MailboxSize: 4, DrainTimeout: 5 * time.Second}}
	a := &app{cfg: cfg, rt: runtime.New(runtime.WithMailboxSize(4)), parser: codec.Default()}

	started := make(chan string, 4)
	for _, name := range []string{"slow-a", "slow-b"} {
		if err := a.rt.RegisterAgent(&slowAgent{name: name, delay: 200 * time.Millisecond, started: started}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	signalCtx, signal := context.WithCancel(context.Background())
	stop, err := a.start(signalCtx)
	if err != nil {
		t.Fatalf("start app: %v", err)
	}

	type result struct {
		value any
		err   error
	}
	results := make(chan result, 3)
	var wg sync.WaitGroup
	for _, name := range []string{"slow-a", "slow-b", "slow-a"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := a.rt.Send(context.Background(), name, 1)
			results <- result{value: value, err: err}
		}()
	}
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatalf("expected deliveries to start")
		}
	}
	// The second slow-a message is queued behind the first.
	waitIdleCtx, waitIdleCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer waitIdleCancel()
	if err := a.rt.WaitUntilIdle(waitIdleCtx); err == nil {
		t.Fatalf("expected runtime busy before shutdown")
	}

	signal()
	stop()
	wg.Wait()
	close(results)

	count := 0
	for res := range results {
		count++
		if res.err != nil {
			t.Fatalf("expected delivery to finish during drain, got %v", res.err)
		}
		if res.value != 2 {
			t.Fatalf("expected 2, got %#v", res.value)
		}
	}
	if count != 3 {
		t.Fatalf("expected 3 results, got %d", count)
	}
}

type slowAgent struct {
	name    string
	delay   time.Duration
	started chan<- string
}

func (a *slowAgent) Name() string { return a.name }

func (a *slowAgent) Subscriptions() []reflect.Type { return []reflect.Type{reflect.TypeFor[int]()} }

func (a *slowAgent) OnMessage(ctx context.Context, msg any) (any, error) {
	a.started <- a.name
	select {
	case <-time.After(a.delay):
		return msg.(int) + 1, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
