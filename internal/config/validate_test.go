package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := defaultConfig
	cfg.Schedule = nil
	return &cfg
}

func TestValidateRejectsBadSections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: "log:",
		},
		{
			name:    "mailbox size",
			mutate:  func(c *Config) { c.Runtime.MailboxSize = 0 },
			wantErr: "runtime: mailbox_size",
		},
		{
			name:    "greeter greeting",
			mutate:  func(c *Config) { c.Agents.Greeter.Greeting = " " },
			wantErr: "agents.greeter: greeting",
		},
		{
			name: "schedule missing cron",
			mutate: func(c *Config) {
				c.Schedule = []ScheduleConfig{{ID: "a", Agent: "echo", Type: "int"}}
			},
			wantErr: "schedule[0]: cron is required",
		},
		{
			name: "schedule duplicate id",
			mutate: func(c *Config) {
				entry := ScheduleConfig{ID: "a", Cron: "@hourly", Agent: "echo", Type: "int"}
				c.Schedule = []ScheduleConfig{entry, entry}
			},
			wantErr: `schedule[1]: duplicate id "a"`,
		},
		{
			name: "schedule disabled agent",
			mutate: func(c *Config) {
				c.Agents.Echo.Enabled = false
				c.Schedule = []ScheduleConfig{{ID: "a", Cron: "@hourly", Agent: "echo", Type: "int", Enabled: true}}
			},
			wantErr: `agent "echo" is not enabled`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestValidateJoinsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = "loud"
	cfg.Runtime.MailboxSize = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "log:") || !strings.Contains(err.Error(), "runtime:") {
		t.Fatalf("expected both section errors, got %q", err.Error())
	}
}

func TestValidateDisabledGreeterSkipsChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Agents.Greeter = GreeterConfig{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled greeter to validate, got %v", err)
	}
}
