// Package config loads agentroute configuration from defaults, a TOML file, and environment variables, exposing typed structs for each section.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// EchoAgent is the config key and agent name of the echo agent.
	EchoAgent = "echo"
	// GreeterAgent is the config key and agent name of the greeter agent.
	GreeterAgent = "greeter"
)

// Config is the runtime configuration loaded from defaults, config.toml, and env vars.
type Config struct {
	// HomeDir is resolved from AGENTROUTE_HOME and not read from config.
	HomeDir  string           `mapstructure:"-"`
	Log      LogConfig        `mapstructure:"log"`
	Runtime  RuntimeConfig    `mapstructure:"runtime"`
	Agents   AgentsConfig     `mapstructure:"agents"`
	Schedule []ScheduleConfig `mapstructure:"schedule"`
}

// LogConfig controls the process log level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// RuntimeConfig controls mailbox sizing and delivery bounds.
type RuntimeConfig struct {
	MailboxSize    int           `mapstructure:"mailbox_size"`
	DeliverTimeout time.Duration `mapstructure:"deliver_timeout"`
	DrainTimeout   time.Duration `mapstructure:"drain_timeout"`
}

// AgentsConfig configures the built-in agents.
type AgentsConfig struct {
	Echo    EchoConfig    `mapstructure:"echo"`
	Greeter GreeterConfig `mapstructure:"greeter"`
}

// EchoConfig configures the echo agent.
type EchoConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	Increment int  `mapstructure:"increment"`
}

// GreeterConfig configures the greeter agent.
type GreeterConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Greeting     string `mapstructure:"greeting"`
	DefaultReply string `mapstructure:"default_reply"`
}

// ScheduleConfig is one cron-driven delivery to an agent.
type ScheduleConfig struct {
	ID      string `mapstructure:"id"`
	Cron    string `mapstructure:"cron"`
	Agent   string `mapstructure:"agent"`
	Type    string `mapstructure:"type"`
	Value   string `mapstructure:"value"`
	Enabled bool   `mapstructure:"enabled"`
}

var defaultConfig = Config{
	Log: LogConfig{Level: "warn"},
	Runtime: RuntimeConfig{
		MailboxSize:    20,
		DeliverTimeout: 0,
		DrainTimeout:   5 * time.Second,
	},
	Agents: AgentsConfig{
		Echo: EchoConfig{
			Enabled:   true,
			Increment: 1,
		},
		Greeter: GreeterConfig{
			Enabled:      true,
			Greeting:     "Hello",
			DefaultReply: "I only understand names and pings.",
		},
	},
}

// homeDir returns the agentroute home directory.
// Uses AGENTROUTE_HOME if set, otherwise defaults to ~/.agentroute.
func homeDir() (string, error) {
	if dir := os.Getenv("AGENTROUTE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return defaultHomePath(home), nil
}

// Load merges hardcoded defaults and config file values in that order.
// Config is always at $AGENTROUTE_HOME/config.toml.
func Load() (*Config, error) {
	homeDir, err := homeDir()
	if err != nil {
		return nil, err
	}

	v, err := readViper(homeDir)
	if err != nil {
		return nil, err
	}

	var cfg Config
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		expandEnvStringHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)

	if err := v.Unmarshal(&cfg, func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = decodeHook
	}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.HomeDir = homeDir

	return &cfg, nil
}

// Write writes the merged configuration (defaults overlaid by user
// config) to w in TOML format.
func Write(w io.Writer) error {
	if w == nil {
		return errors.New("writer is required")
	}

	homeDir, err := homeDir()
	if err != nil {
		return err
	}
	v, err := readViper(homeDir)
	if err != nil {
		return err
	}

	// Keep duration fields human-readable in generated TOML.
	v.Set("runtime.deliver_timeout", v.GetDuration("runtime.deliver_timeout").String())
	v.Set("runtime.drain_timeout", v.GetDuration("runtime.drain_timeout").String())

	if err := v.WriteConfigTo(w); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DefaultUserConfigTOML renders the bootstrap user config as TOML.
func DefaultUserConfigTOML() (string, error) {
	v := viper.New()
	v.SetConfigType("toml")

	v.Set("log.level", defaultConfig.Log.Level)
	v.Set("runtime.mailbox_size", defaultConfig.Runtime.MailboxSize)
	v.Set("runtime.drain_timeout", defaultConfig.Runtime.DrainTimeout.String())
	v.Set("agents.echo.enabled", defaultConfig.Agents.Echo.Enabled)
	v.Set("agents.echo.increment", defaultConfig.Agents.Echo.Increment)
	v.Set("agents.greeter.enabled", defaultConfig.Agents.Greeter.Enabled)
	v.Set("agents.greeter.greeting", defaultConfig.Agents.Greeter.Greeting)

	var out bytes.Buffer
	if err := v.WriteConfigTo(&out); err != nil {
		return "", fmt.Errorf("write default user config: %w", err)
	}
	return out.String(), nil
}

func readViper(homeDir string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(homeConfigPath(homeDir))
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", defaultConfig.Log.Level)

	v.SetDefault("runtime.mailbox_size", defaultConfig.Runtime.MailboxSize)
	v.SetDefault("runtime.deliver_timeout", defaultConfig.Runtime.DeliverTimeout)
	v.SetDefault("runtime.drain_timeout", defaultConfig.Runtime.DrainTimeout)

	v.SetDefault("agents.echo.enabled", defaultConfig.Agents.Echo.Enabled)
	v.SetDefault("agents.echo.increment", defaultConfig.Agents.Echo.Increment)

	v.SetDefault("agents.greeter.enabled", defaultConfig.Agents.Greeter.Enabled)
	v.SetDefault("agents.greeter.greeting", defaultConfig.Agents.Greeter.Greeting)
	v.SetDefault("agents.greeter.default_reply", defaultConfig.Agents.Greeter.DefaultReply)
}

// EnabledAgents returns the names of enabled built-in agents.
func (c *Config) EnabledAgents() []string {
	var names []string
	if c.Agents.Echo.Enabled {
		names = append(names, EchoAgent)
	}
	if c.Agents.Greeter.Enabled {
		names = append(names, GreeterAgent)
	}
	return names
}

// EnabledSchedule returns the schedule entries with enabled=true.
func (c *Config) EnabledSchedule() []ScheduleConfig {
	var out []ScheduleConfig
	for _, entry := range c.Schedule {
		if entry.Enabled {
			out = append(out, entry)
		}
	}
	return out
}

func expandEnvStringHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.String {
			return data, nil
		}
		value, ok := data.(string)
		if !ok {
			return data, nil
		}
		return os.ExpandEnv(value), nil
	}
}
