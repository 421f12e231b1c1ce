package config

import "path/filepath"

const (
	// Layout under AGENTROUTE_HOME.
	ConfigFilePath  = "config.toml"
	PIDFilePath     = "agentroute.pid"
	HistoryFilePath = "history"
)

func homeConfigPath(home string) string {
	return filepath.Join(home, ConfigFilePath)
}

func defaultHomePath(home string) string {
	return filepath.Join(home, ".agentroute")
}

func (c *Config) ConfigPath() string {
	return homeConfigPath(c.HomeDir)
}

func (c *Config) PIDPath() string {
	return filepath.Join(c.HomeDir, PIDFilePath)
}

func (c *Config) HistoryPath() string {
	return filepath.Join(c.HomeDir, HistoryFilePath)
}
