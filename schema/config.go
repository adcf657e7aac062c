package schema

import (
	"errors"
	"regexp"
)

// Policy defaults for the console engine. None of these are load-bearing for
// correctness; they only need to be large enough in practice.
const (
	// DefaultHistoryFetchLimit bounds the one-shot historical tail fetched on attach.
	DefaultHistoryFetchLimit = 500
	// DefaultDeviceCodeWindow bounds how many recent lines the watcher scans.
	DefaultDeviceCodeWindow = 30
	// DefaultScrollTolerance is the distance from the bottom, in scroll units,
	// still considered "at bottom".
	DefaultScrollTolerance = 50
	// DefaultHistoryMax caps the command history length.
	DefaultHistoryMax = 100
)

// DefaultDeviceCodePattern matches the provider's device verification URL.
// The first capture group is the user code. The pattern intentionally rejects
// URLs truncated before the user_code parameter: a false negative is safe, a
// false positive triggers a modal interruption.
const DefaultDeviceCodePattern = `https://[^\s"'<>]+/oauth2/device/verify\?user_code=([A-Za-z0-9._~-]+)`

// ConsoleConfig carries the policy knobs for a console session.
type ConsoleConfig struct {
	HistoryFetchLimit int
	DeviceCodeWindow  int
	ScrollTolerance   int
	HistoryMax        int
	DeviceCodePattern string
}

// NormalizeConsoleConfig applies defaults and validates the config.
func NormalizeConsoleConfig(cfg ConsoleConfig) (ConsoleConfig, error) {
	if cfg.HistoryFetchLimit <= 0 {
		cfg.HistoryFetchLimit = DefaultHistoryFetchLimit
	}
	if cfg.DeviceCodeWindow <= 0 {
		cfg.DeviceCodeWindow = DefaultDeviceCodeWindow
	}
	if cfg.ScrollTolerance < 0 {
		cfg.ScrollTolerance = DefaultScrollTolerance
	}
	if cfg.ScrollTolerance == 0 {
		cfg.ScrollTolerance = DefaultScrollTolerance
	}
	if cfg.HistoryMax <= 0 {
		cfg.HistoryMax = DefaultHistoryMax
	}
	if cfg.DeviceCodePattern == "" {
		cfg.DeviceCodePattern = DefaultDeviceCodePattern
	}
	re, err := regexp.Compile(cfg.DeviceCodePattern)
	if err != nil {
		return ConsoleConfig{}, err
	}
	if re.NumSubexp() < 1 {
		return ConsoleConfig{}, errors.New("device code pattern must capture the user code")
	}
	return cfg, nil
}
