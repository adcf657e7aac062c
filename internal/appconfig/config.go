// Package appconfig loads and validates the application configuration.
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/serverwave/serverwave/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	DataDir       string        `mapstructure:"data_dir" yaml:"data_dir"`
	Console       ConsoleConfig `mapstructure:"console" yaml:"console"`
	Runtime       RuntimeConfig `mapstructure:"runtime" yaml:"runtime"`
	Logging       LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// ConsoleConfig controls the live console session engine policy knobs.
type ConsoleConfig struct {
	HistoryFetchLimit int    `mapstructure:"history_fetch_limit" yaml:"history_fetch_limit"`
	DeviceCodeWindow  int    `mapstructure:"device_code_window" yaml:"device_code_window"`
	ScrollTolerance   int    `mapstructure:"scroll_tolerance" yaml:"scroll_tolerance"`
	HistoryMax        int    `mapstructure:"history_max" yaml:"history_max"`
	DeviceCodePattern string `mapstructure:"device_code_pattern" yaml:"device_code_pattern"`
}

// RuntimeConfig configures the container runtime backing the supervisor.
type RuntimeConfig struct {
	Runtime    string           `mapstructure:"runtime" yaml:"runtime"`
	Containerd ContainerdConfig `mapstructure:"containerd" yaml:"containerd"`
	TailBytes  int              `mapstructure:"tail_bytes" yaml:"tail_bytes"`
}

// ContainerdConfig configures the containerd runtime endpoint.
type ContainerdConfig struct {
	Address   string `mapstructure:"address" yaml:"address"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// LoggingConfig controls diagnostic logging behavior.
type LoggingConfig struct {
	DisableDiagnostics bool `mapstructure:"disable_diagnostics" yaml:"disable_diagnostics"`
}

// ToConsoleConfig maps the file representation onto the engine config.
func (c ConsoleConfig) ToConsoleConfig() schema.ConsoleConfig {
	return schema.ConsoleConfig{
		HistoryFetchLimit: c.HistoryFetchLimit,
		DeviceCodeWindow:  c.DeviceCodeWindow,
		ScrollTolerance:   c.ScrollTolerance,
		HistoryMax:        c.HistoryMax,
		DeviceCodePattern: c.DeviceCodePattern,
	}
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	uid := os.Getuid()
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = filepath.Join("/run", "user", fmt.Sprintf("%d", uid))
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		DataDir:       filepath.Join(home, ".serverwave"),
		Console: ConsoleConfig{
			HistoryFetchLimit: schema.DefaultHistoryFetchLimit,
			DeviceCodeWindow:  schema.DefaultDeviceCodeWindow,
			ScrollTolerance:   schema.DefaultScrollTolerance,
			HistoryMax:        schema.DefaultHistoryMax,
			DeviceCodePattern: schema.DefaultDeviceCodePattern,
		},
		Runtime: RuntimeConfig{
			Runtime: "containerd",
			Containerd: ContainerdConfig{
				Address:   fmt.Sprintf("unix://%s", filepath.Join(runtimeDir, "containerd", "containerd.sock")),
				Namespace: "serverwave",
			},
			TailBytes: 256 * 1024,
		},
		Logging: LoggingConfig{
			DisableDiagnostics: false,
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".serverwave", "config.yaml"), nil
}
