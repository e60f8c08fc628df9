// Package projectconfig parses the per-submission nimble.yaml that selects a
// build strategy and names the resulting application.
package projectconfig

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// BuilderType selects a Builder Strategy variant (§4.3).
type BuilderType string

const (
	BuilderDockerfile BuilderType = "dockerfile"
	BuilderGo         BuilderType = "go"
)

// DefaultPort is used when nimble.yaml omits the port field.
const DefaultPort = 8080

// Config is the parsed, validated contents of a project's nimble.yaml.
type Config struct {
	Builder BuilderType
	App     string
	Port    int
}

// rawConfig mirrors the on-disk YAML shape before validation.
type rawConfig struct {
	Builder string `yaml:"builder"`
	App     string `yaml:"app"`
	Port    *int   `yaml:"port"`
}

// ParseError reports a specific reason nimble.yaml failed to parse or
// validate; the Build Worker wraps it into the error it logs for the
// failed build.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return e.Reason
}

// FromFile reads and parses the nimble.yaml at path.
func FromFile(path string) (*Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return FromBytes(contents)
}

// FromBytes parses raw nimble.yaml contents.
func FromBytes(contents []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(contents, &raw); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid yaml: %v", err)}
	}

	if strings.TrimSpace(raw.Builder) == "" {
		return nil, &ParseError{Reason: "missing required field: builder"}
	}
	builder, err := parseBuilderType(raw.Builder)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(raw.App) == "" {
		return nil, &ParseError{Reason: "missing required field: app"}
	}

	port := DefaultPort
	if raw.Port != nil {
		port = *raw.Port
	}
	if port < 1 || port > 65535 {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid port %d: must be between 1 and 65535", port)}
	}

	return &Config{Builder: builder, App: raw.App, Port: port}, nil
}

func parseBuilderType(raw string) (BuilderType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(BuilderDockerfile):
		return BuilderDockerfile, nil
	case string(BuilderGo):
		return BuilderGo, nil
	default:
		return "", &ParseError{Reason: fmt.Sprintf("invalid builder type: %s. valid options: dockerfile, go", raw)}
	}
}
