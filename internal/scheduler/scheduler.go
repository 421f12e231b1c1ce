// Package scheduler delivers configured messages to agents on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/neoclaw-ai/agentroute/internal/codec"
	"github.com/neoclaw-ai/agentroute/internal/logging"
	"github.com/robfig/cron/v3"
)

// Job is one scheduled delivery.
type Job struct {
	ID    string
	Cron  string
	Agent string
	Type  string
	Value string
}

// Sender delivers a message to a named agent.
type Sender interface {
	Send(ctx context.Context, agent string, msg any) (any, error)
}

// Service runs scheduled jobs against a Sender.
type Service struct {
	jobs   []Job
	sender Sender
	parser *codec.Parser
	cron   *cron.Cron

	mu      sync.Mutex
	started bool
}

// NewService creates a cron-backed scheduler service.
func NewService(jobs []Job, sender Sender, parser *codec.Parser) *Service {
	return &Service{
		jobs:   jobs,
		sender: sender,
		parser: parser,
		cron:   newCron(),
	}
}

func newCron() *cron.Cron {
	logger := cronLogger{}
	return cron.New(
		cron.WithLocation(time.Local),
		cron.WithLogger(logger),
		cron.WithChain(cron.SkipIfStillRunning(logger)),
	)
}

// cronLogger sends cron's own log lines to the process logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logging.Logger().Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logging.Logger().Error("cron: "+msg, append(keysAndValues, "err", err)...)
}

// Jobs returns the configured jobs.
func (s *Service) Jobs() []Job {
	out := make([]Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// Start validates every job, registers it with cron, and starts execution.
// Values are parsed up front so bad entries fail before anything runs.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("scheduler already started")
	}

	for _, job := range s.jobs {
		if _, err := s.parser.Parse(job.Type, job.Value); err != nil {
			return fmt.Errorf("job %q: %w", job.ID, err)
		}
		if _, err := cron.ParseStandard(job.Cron); err != nil {
			return fmt.Errorf("register cron job %q: %w", job.ID, err)
		}
	}

	// Entries go on a fresh cron that is kept only if every job registers.
	c := newCron()
	for _, job := range s.jobs {
		_, err := c.AddFunc(job.Cron, func() {
			value, runErr := s.run(ctx, job)
			if runErr != nil {
				logging.Logger().Warn(
					"scheduled job failed",
					"job_id", job.ID,
					"agent", job.Agent,
					"err", runErr,
				)
				return
			}
			logging.Logger().Info(
				"scheduled job succeeded",
				"job_id", job.ID,
				"agent", job.Agent,
				"result", codec.Format(value),
			)
		})
		if err != nil {
			return fmt.Errorf("register cron job %q: %w", job.ID, err)
		}
	}

	s.cron = c
	s.cron.Start()
	s.started = true
	logging.Logger().Info("scheduler started", "jobs_registered", len(s.jobs))
	return nil
}

// Stop stops cron and waits for in-flight jobs to finish or ctx cancellation.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	doneCtx := s.cron.Stop()
	s.started = false
	s.mu.Unlock()

	select {
	case <-doneCtx.Done():
		logging.Logger().Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow executes one job immediately by ID.
func (s *Service) RunNow(ctx context.Context, jobID string) (any, error) {
	target := strings.TrimSpace(jobID)
	for _, job := range s.jobs {
		if job.ID != target {
			continue
		}
		logging.Logger().Info("job run", "job_id", job.ID, "source", "manual", "agent", job.Agent)
		return s.run(ctx, job)
	}
	return nil, fmt.Errorf("job %s not found", target)
}

func (s *Service) run(ctx context.Context, job Job) (any, error) {
	msg, err := s.parser.Parse(job.Type, job.Value)
	if err != nil {
		return nil, err
	}
	return s.sender.Send(ctx, job.Agent, msg)
}
