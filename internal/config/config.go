/*
Package config handles loading and validating agent configuration from
environment variables. Every value has a sensible default for either dev
or prod mode so the agent can start with zero environment setup locally.
*/
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AgentConfig holds every configuration value for the agent process.
// Values are read once at startup and passed through the app via
// dependency injection. No global config variable is used; callers
// receive a *AgentConfig explicitly, making dependencies visible and
// the code easier to test.
type AgentConfig struct {
	// DevMode selects dev-friendly defaults (data dir, log format) when true.
	DevMode bool

	// DataDir is the root of the on-disk workspace; see internal/paths.
	DataDir string

	// Port is the TCP port the control-plane HTTP server listens on.
	Port string

	// LogFormat controls the output format of slog.
	// accepted values: "text" | "json" (default: "text" in dev mode, "json" otherwise)
	LogFormat string

	// BuildQueueCapacity and DeployQueueCapacity bound the two job queues (C6).
	BuildQueueCapacity  int
	DeployQueueCapacity int
}

// devModeTruthy matches the case-insensitive truthy tokens NIMBLE_DEV_MODE accepts.
var devModeTruthy = map[string]bool{
	"1":    true,
	"true": true,
	"yes":  true,
	"on":   true,
}

// Load reads configuration from environment variables and returns a
// populated AgentConfig. Missing environment variables fall back to safe
// defaults so the agent can run without any setup during local development.
func Load() *AgentConfig {
	devMode := devModeTruthy[strings.ToLower(os.Getenv("NIMBLE_DEV_MODE"))]

	dataDir := os.Getenv("NIMBLE_DATA_DIR")
	if dataDir == "" {
		if devMode {
			dataDir = "./data"
		} else {
			dataDir = "/var/lib/nimble"
		}
	}

	logFormatDefault := "json"
	if devMode {
		logFormatDefault = "text"
	}

	return &AgentConfig{
		DevMode:             devMode,
		DataDir:             dataDir,
		Port:                getEnv("NIMBLE_PORT", "7080"),
		LogFormat:           getEnv("NIMBLE_LOG_FORMAT", logFormatDefault),
		BuildQueueCapacity:  getEnvInt("NIMBLE_BUILD_QUEUE_CAPACITY", 100),
		DeployQueueCapacity: getEnvInt("NIMBLE_DEPLOY_QUEUE_CAPACITY", 100),
	}
}

// NewLogger constructs a *slog.Logger based on the LogFormat field of the
// config. "text" produces human-readable output for local development; any
// other value produces structured JSON output for production log shipping.
func (config *AgentConfig) NewLogger() *slog.Logger {
	var handler slog.Handler

	options := &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelInfo,
		ReplaceAttr: func(groups []string, attribute slog.Attr) slog.Attr {
			if attribute.Key == slog.SourceKey {
				source := attribute.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return attribute
		},
	}

	if config.DevMode {
		options.Level = slog.LevelDebug
	}

	if config.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, options)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, options)
	}

	return slog.New(handler)
}

// getEnv retrieves the value of an environment variable by key. If the
// variable is not set or is empty, the provided fallback value is returned.
func getEnv(key, fallbackValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallbackValue
}

// getEnvInt is getEnv plus integer parsing; an unparsable value falls back
// to fallbackValue rather than failing startup.
func getEnvInt(key string, fallbackValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallbackValue
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallbackValue
	}
	return parsed
}
