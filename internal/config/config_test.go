package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	homeDir := filepath.Join(t.TempDir(), ".agentroute")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home dir: %v", err)
	}
	t.Setenv("AGENTROUTE_HOME", homeDir)
	if body != "" {
		if err := os.WriteFile(filepath.Join(homeDir, "config.toml"), []byte(body), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	return homeDir
}

func TestLoad_DefaultsApplyWithoutConfigFile(t *testing.T) {
	homeDir := writeConfig(t, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HomeDir != homeDir {
		t.Fatalf("expected home dir %q, got %q", homeDir, cfg.HomeDir)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("expected default log level warn, got %q", cfg.Log.Level)
	}
	if cfg.Runtime.MailboxSize != defaultConfig.Runtime.MailboxSize {
		t.Fatalf("expected mailbox size %d, got %d", defaultConfig.Runtime.MailboxSize, cfg.Runtime.MailboxSize)
	}
	if cfg.Runtime.DrainTimeout != 5*time.Second {
		t.Fatalf("expected drain timeout 5s, got %v", cfg.Runtime.DrainTimeout)
	}
	if !cfg.Agents.Echo.Enabled || cfg.Agents.Echo.Increment != 1 {
		t.Fatalf("expected echo enabled with increment 1, got %+v", cfg.Agents.Echo)
	}
	if got := cfg.EnabledAgents(); len(got) != 2 {
		t.Fatalf("expected both agents enabled, got %v", got)
	}
	if len(cfg.Schedule) != 0 {
		t.Fatalf("expected empty schedule, got %d entries", len(cfg.Schedule))
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.ConfigPath() != filepath.Join(homeDir, "config.toml") {
		t.Fatalf("unexpected config path %q", cfg.ConfigPath())
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	writeConfig(t, `
[log]
level = "debug"

[runtime]
mailbox_size = 4
deliver_timeout = "250ms"

[agents.echo]
increment = 10

[agents.greeter]
enabled = false

[[schedule]]
id = "tick"
cron = "@every 1m"
agent = "echo"
type = "int"
value = "41"
enabled = true

[[schedule]]
id = "off"
cron = "@hourly"
agent = "echo"
type = "int"
value = "1"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Fatalf("expected log level debug, got %q", cfg.Log.Level)
	}
	if cfg.Runtime.MailboxSize != 4 {
		t.Fatalf("expected mailbox size 4, got %d", cfg.Runtime.MailboxSize)
	}
	if cfg.Runtime.DeliverTimeout != 250*time.Millisecond {
		t.Fatalf("expected deliver timeout 250ms, got %v", cfg.Runtime.DeliverTimeout)
	}
	if cfg.Agents.Echo.Increment != 10 || !cfg.Agents.Echo.Enabled {
		t.Fatalf("expected echo enabled with increment 10, got %+v", cfg.Agents.Echo)
	}
	if cfg.Agents.Greeter.Enabled {
		t.Fatalf("expected greeter disabled from file")
	}
	if len(cfg.Schedule) != 2 {
		t.Fatalf("expected 2 schedule entries, got %d", len(cfg.Schedule))
	}
	enabled := cfg.EnabledSchedule()
	if len(enabled) != 1 || enabled[0].ID != "tick" || enabled[0].Value != "41" {
		t.Fatalf("expected only tick enabled, got %+v", enabled)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoad_ExpandsEnvVarsInStringValues(t *testing.T) {
	t.Setenv("GREETING_WORD", "Howdy")
	writeConfig(t, `
[agents.greeter]
greeting = "$GREETING_WORD"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Agents.Greeter.Greeting != "Howdy" {
		t.Fatalf("expected expanded greeting %q, got %q", "Howdy", cfg.Agents.Greeter.Greeting)
	}
}

func TestLoad_MalformedFileFails(t *testing.T) {
	writeConfig(t, "[runtime\nmailbox_size = ")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed config")
	}
}

func TestWrite_RendersMergedTOML(t *testing.T) {
	writeConfig(t, `
[agents.echo]
increment = 3
`)

	var out bytes.Buffer
	if err := Write(&out); err != nil {
		t.Fatalf("write config: %v", err)
	}
	text := out.String()
	for _, want := range []string{"increment = 3", "mailbox_size = 20", "drain_timeout", "5s"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in merged config, got:\n%s", want, text)
		}
	}
}

func TestDefaultUserConfigTOMLRoundTrips(t *testing.T) {
	body, err := DefaultUserConfigTOML()
	if err != nil {
		t.Fatalf("default user config: %v", err)
	}
	writeConfig(t, body)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load bootstrap config: %v", err)
	}
	if !cfg.Agents.Echo.Enabled || cfg.Agents.Greeter.Greeting != "Hello" {
		t.Fatalf("unexpected bootstrap config: %+v", cfg.Agents)
	}
}
