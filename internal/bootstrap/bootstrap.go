// Package bootstrap prepares the agentroute home directory on first run.
package bootstrap

import (
	"fmt"
	"os"

	"github.com/neoclaw-ai/agentroute/internal/config"
)

// Initialize creates the home directory and a default config.toml if missing.
// It reports whether the config file was created by this call.
func Initialize(cfg *config.Config) (created bool, err error) {
	if cfg == nil || cfg.HomeDir == "" {
		return false, fmt.Errorf("home directory is required")
	}
	if err := os.MkdirAll(cfg.HomeDir, 0o755); err != nil {
		return false, fmt.Errorf("create directory %q: %w", cfg.HomeDir, err)
	}

	content, err := config.DefaultUserConfigTOML()
	if err != nil {
		return false, err
	}
	return writeFileIfMissing(cfg.ConfigPath(), content)
}

func writeFileIfMissing(path, content string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat %q: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write file %q: %w", path, err)
	}
	return true, nil
}
