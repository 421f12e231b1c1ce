package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/neoclaw-ai/agentroute/internal/logging"
)

// Validatable is implemented by config sections that can self-validate.
type Validatable interface {
	Validate() error
}

// Validate checks the log level name.
func (c LogConfig) Validate() error {
	if _, err := logging.ParseLevel(c.Level); err != nil {
		return err
	}
	return nil
}

// Validate checks mailbox and timeout bounds.
func (c RuntimeConfig) Validate() error {
	if c.MailboxSize <= 0 {
		return errors.New("mailbox_size must be > 0")
	}
	if c.DeliverTimeout < 0 {
		return errors.New("deliver_timeout must be >= 0")
	}
	if c.DrainTimeout < 0 {
		return errors.New("drain_timeout must be >= 0")
	}
	return nil
}

// Validate checks required greeter fields when the agent is enabled.
func (c GreeterConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Greeting) == "" {
		return errors.New("greeting is required when enabled=true")
	}
	return nil
}

// Validate checks required schedule fields.
func (c ScheduleConfig) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(c.Cron) == "" {
		return errors.New("cron is required")
	}
	if strings.TrimSpace(c.Agent) == "" {
		return errors.New("agent is required")
	}
	if strings.TrimSpace(c.Type) == "" {
		return errors.New("type is required")
	}
	return nil
}

// Validate checks every section and returns all problems joined.
func (cfg *Config) Validate() error {
	var errs []error

	if err := cfg.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	if err := cfg.Runtime.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", err))
	}
	if err := cfg.Agents.Greeter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("agents.greeter: %w", err))
	}

	enabled := cfg.EnabledAgents()
	seen := make(map[string]bool, len(cfg.Schedule))
	for i, entry := range cfg.Schedule {
		if err := entry.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("schedule[%d]: %w", i, err))
			continue
		}
		if seen[entry.ID] {
			errs = append(errs, fmt.Errorf("schedule[%d]: duplicate id %q", i, entry.ID))
		}
		seen[entry.ID] = true
		if entry.Enabled && !slices.Contains(enabled, entry.Agent) {
			errs = append(errs, fmt.Errorf("schedule[%d]: agent %q is not enabled", i, entry.Agent))
		}
	}

	return errors.Join(errs...)
}
