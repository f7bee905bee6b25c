package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"doorctl/internal/registry"
)

// Server holds the configuration for the doorctl HTTP server.
type Server struct {
	// Listen is the address the HTTP API binds to.
	Listen string `yaml:"listen"`

	// RegistryPath points at the device registry file. Empty means the
	// default per-user location.
	RegistryPath string `yaml:"registry_path,omitempty"`

	// LogDir is where per-day operation logs are written.
	LogDir string `yaml:"log_dir"`

	// PollSchedule is a cron expression for the device reachability
	// poller. Empty disables polling.
	PollSchedule string `yaml:"poll_schedule,omitempty"`

	// PanelTimeoutSeconds bounds each HTTP attempt against a panel.
	PanelTimeoutSeconds int `yaml:"panel_timeout_seconds,omitempty"`

	// LogLevel overrides the DOORCTL_LOG_LEVEL environment variable
	// when set (debug, info, warn, error).
	LogLevel string `yaml:"log_level,omitempty"`
}

// PanelTimeout returns the per-attempt panel timeout as a duration.
func (s Server) PanelTimeout() time.Duration {
	return time.Duration(s.PanelTimeoutSeconds) * time.Second
}

// Defaults returns a Server config with sensible defaults applied.
func Defaults() Server {
	return Server{
		Listen:              ":8080",
		LogDir:              "logs",
		PollSchedule:        "*/5 * * * *",
		PanelTimeoutSeconds: 10,
	}
}

// Load reads a server configuration from a YAML file. A missing file is
// not an error; defaults are returned. Values present in the file
// override defaults, absent values keep them.
func Load(path string) (Server, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}
	if cfg.PanelTimeoutSeconds <= 0 {
		cfg.PanelTimeoutSeconds = 10
	}

	return cfg, nil
}

// DefaultPath returns the per-user location of the server config file,
// alongside the device registry.
func DefaultPath() (string, error) {
	regPath, err := registry.DefaultPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(regPath), "server.yaml"), nil
}
