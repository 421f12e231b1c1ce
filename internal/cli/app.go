package cli

import (
	"context"
	"fmt"

	"github.com/neoclaw-ai/agentroute/internal/agents"
	"github.com/neoclaw-ai/agentroute/internal/codec"
	"github.com/neoclaw-ai/agentroute/internal/config"
	"github.com/neoclaw-ai/agentroute/internal/logging"
	"github.com/neoclaw-ai/agentroute/internal/runtime"
	"github.com/neoclaw-ai/agentroute/internal/scheduler"
)

// app holds the runtime and parser shared by the subcommands.
type app struct {
	cfg    *config.Config
	rt     *runtime.Local
	parser *codec.Parser
}

// loadApp loads and validates config, then builds the runtime with every
// enabled agent registered.
func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newApp(cfg)
}

func newApp(cfg *config.Config) (*app, error) {
	rt := runtime.New(
		runtime.WithMailboxSize(cfg.Runtime.MailboxSize),
		runtime.WithDeliverTimeout(cfg.Runtime.DeliverTimeout),
	)
	if _, err := agents.FromConfig(cfg, rt); err != nil {
		return nil, err
	}

	parser := codec.Default()
	if err := agents.RegisterKinds(parser); err != nil {
		return nil, fmt.Errorf("register message kinds: %w", err)
	}
	return &app{cfg: cfg, rt: rt, parser: parser}, nil
}

// start runs the runtime until the returned stop func is called. Cancelling
// ctx does not stop delivery; stop waits up to the drain timeout for queued
// and in-flight deliveries before cancelling the rest.
func (a *app) start(ctx context.Context) (stop func(), err error) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if err := a.rt.Start(runCtx); err != nil {
		cancel()
		return nil, err
	}
	return func() {
		a.drain()
		a.rt.Stop()
		cancel()
	}, nil
}

func (a *app) drain() {
	drainCtx := context.Background()
	if a.cfg.Runtime.DrainTimeout > 0 {
		var cancel context.CancelFunc
		drainCtx, cancel = context.WithTimeout(drainCtx, a.cfg.Runtime.DrainTimeout)
		defer cancel()
	}
	if err := a.rt.WaitUntilIdle(drainCtx); err != nil {
		logging.Logger().Warn("runtime did not drain before shutdown", "err", err)
	}
}

func (a *app) schedulerService() *scheduler.Service {
	entries := a.cfg.EnabledSchedule()
	jobs := make([]scheduler.Job, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, scheduler.Job{
			ID:    entry.ID,
			Cron:  entry.Cron,
			Agent: entry.Agent,
			Type:  entry.Type,
			Value: entry.Value,
		})
	}
	return scheduler.NewService(jobs, a.rt, a.parser)
}
