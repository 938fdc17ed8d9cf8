// Package config provides configuration types and defaults for lexkit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/zjrosen/lexkit/internal/highlight"
	"github.com/zjrosen/lexkit/internal/log"
	"github.com/zjrosen/lexkit/internal/tracing"
)

// Output formats accepted by the tokenize command.
const (
	OutputText      = "text"
	OutputJSON      = "json"
	OutputHighlight = "highlight"
)

// Config holds all configuration options for lexkit.
type Config struct {
	Declarations string            `mapstructure:"declarations"` // declaration document used when --decl is absent
	Output       string            `mapstructure:"output"`
	DropTags     []string          `mapstructure:"drop_tags"` // tokens carrying any of these are left out of output
	Strict       bool              `mapstructure:"strict"`    // warnings fail the run too
	Log          LogConfig         `mapstructure:"log"`
	Cache        CacheConfig       `mapstructure:"cache"`
	Watch        WatchConfig       `mapstructure:"watch"`
	Theme        map[string]string `mapstructure:"theme"` // tag -> hex color
	Tracing      tracing.Config    `mapstructure:"tracing"`
}

// LogConfig controls the debug log enabled by --debug or LEXKIT_DEBUG.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// CacheConfig controls memoisation of compiled tokenizers.
type CacheConfig struct {
	Expiration time.Duration `mapstructure:"expiration"`
}

// WatchConfig controls lexkit watch.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// DefaultTracesFilePath returns ~/.config/lexkit/traces/traces.jsonl, or ""
// when the home directory is unknown.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lexkit", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tr := tracing.DefaultConfig()
	tr.FilePath = DefaultTracesFilePath()
	return Config{
		Output:   OutputText,
		DropTags: []string{"ignore"},
		Log: LogConfig{
			File:  "debug.log",
			Level: "debug",
		},
		Cache:   CacheConfig{Expiration: 10 * time.Minute},
		Watch:   WatchConfig{Debounce: 200 * time.Millisecond},
		Theme:   map[string]string{},
		Tracing: tr,
	}
}

// Validate checks every section.
func Validate(c Config) error {
	if err := ValidateOutput(c.Output); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Cache.Expiration < 0 {
		return fmt.Errorf("cache.expiration must not be negative, got %s", c.Cache.Expiration)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	if err := ValidateTheme(c.Theme); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateOutput checks the output format; empty means text.
func ValidateOutput(output string) error {
	switch output {
	case "", OutputText, OutputJSON, OutputHighlight:
		return nil
	default:
		return fmt.Errorf("output must be %q, %q, or %q, got %q", OutputText, OutputJSON, OutputHighlight, output)
	}
}

// ValidateTheme checks that every color is a #rgb or #rrggbb hex value.
func ValidateTheme(theme map[string]string) error {
	tags := make([]string, 0, len(theme))
	for tag := range theme {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	for _, tag := range tags {
		if !highlight.IsHexColor(theme[tag]) {
			return fmt.Errorf("theme.%s: invalid hex color %q", tag, theme[tag])
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration; empty values use defaults.
func ValidateTracing(tr tracing.Config) error {
	if tr.SampleRate < 0.0 || tr.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tr.SampleRate)
	}

	switch tr.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tr.Exporter)
	}

	if tr.Enabled {
		if tr.Exporter == "file" && tr.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tr.Exporter == "otlp" && tr.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# lexkit configuration

# Declaration document used when --decl is not given
# declarations: lang.yaml

# Output of "lexkit tokenize": text, json, or highlight
output: text

# Tokens whose type carries any of these tags are left out of output.
# Every type is tagged with its own name, so type names work here too.
drop_tags:
  - ignore

# Fail on warnings (unknown characters) as well as errors
strict: false

# Debug log, written only with --debug or LEXKIT_DEBUG=1
log:
  file: debug.log
  level: debug   # debug, info, warn, error

# Compiled tokenizers are cached by declaration content
cache:
  expiration: 10m

# lexkit watch waits this long after the last write before rescanning
watch:
  debounce: 200ms

# Highlight colors by tag (used with output: highlight)
# A token uses its type name first, then its other tags.
theme: {}
#  keyword: "#CBA6F7"
#  opener: "#89B4FA"
#  ignore: "#6C7086"

# OpenTelemetry tracing of compile and tokenize runs
# tracing:
#   enabled: false                 # default: false
#   exporter: file                 # none, file, stdout, otlp (default: file)
#   file_path: ~/.config/lexkit/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # for the otlp exporter
#   sample_rate: 1.0               # 0.0-1.0
#   service_name: lexkit
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
