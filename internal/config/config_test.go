package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/lexkit/internal/tracing"
)

func TestDefaults_AreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, Validate(cfg))
	require.Equal(t, OutputText, cfg.Output)
	require.Equal(t, []string{"ignore"}, cfg.DropTags)
	require.Equal(t, "debug.log", cfg.Log.File)
	require.Equal(t, 10*time.Minute, cfg.Cache.Expiration)
	require.Equal(t, 200*time.Millisecond, cfg.Watch.Debounce)
	require.False(t, cfg.Tracing.Enabled)
	require.Equal(t, "lexkit", cfg.Tracing.ServiceName)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty output", mutate: func(c *Config) { c.Output = "" }},
		{name: "json output", mutate: func(c *Config) { c.Output = OutputJSON }},
		{name: "bad output", mutate: func(c *Config) { c.Output = "xml" }, wantErr: `got "xml"`},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
		{name: "negative expiration", mutate: func(c *Config) { c.Cache.Expiration = -time.Second }, wantErr: "cache.expiration"},
		{name: "negative debounce", mutate: func(c *Config) { c.Watch.Debounce = -time.Second }, wantErr: "watch.debounce"},
		{name: "good theme", mutate: func(c *Config) { c.Theme = map[string]string{"opener": "#89B4FA", "ignore": "#666"} }},
		{name: "bad theme", mutate: func(c *Config) { c.Theme = map[string]string{"opener": "blue"} }, wantErr: `theme.opener: invalid hex color "blue"`},
		{name: "sample rate", mutate: func(c *Config) { c.Tracing.SampleRate = 1.5 }, wantErr: "sample_rate"},
		{name: "exporter", mutate: func(c *Config) { c.Tracing.Exporter = "zipkin" }, wantErr: "tracing.exporter"},
		{
			name: "file exporter without path",
			mutate: func(c *Config) {
				c.Tracing = tracing.Config{Enabled: true, Exporter: "file"}
			},
			wantErr: "tracing.file_path is required",
		},
		{
			name: "otlp without endpoint",
			mutate: func(c *Config) {
				c.Tracing = tracing.Config{Enabled: true, Exporter: "otlp"}
			},
			wantErr: "tracing.otlp_endpoint is required",
		},
		{
			name: "disabled tracing skips path checks",
			mutate: func(c *Config) {
				c.Tracing = tracing.Config{Exporter: "file"}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultConfigTemplate_ParsesAndMatchesDefaults(t *testing.T) {
	var parsed struct {
		Output   string            `yaml:"output"`
		DropTags []string          `yaml:"drop_tags"`
		Strict   bool              `yaml:"strict"`
		Log      map[string]string `yaml:"log"`
		Cache    map[string]string `yaml:"cache"`
		Watch    map[string]string `yaml:"watch"`
		Theme    map[string]string `yaml:"theme"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigTemplate()), &parsed))

	defaults := Defaults()
	require.Equal(t, defaults.Output, parsed.Output)
	require.Equal(t, defaults.DropTags, parsed.DropTags)
	require.Equal(t, defaults.Strict, parsed.Strict)
	require.Equal(t, defaults.Log.File, parsed.Log["file"])
	require.Equal(t, defaults.Log.Level, parsed.Log["level"])
	require.Equal(t, defaults.Cache.Expiration.String(), mustDuration(t, parsed.Cache["expiration"]).String())
	require.Equal(t, defaults.Watch.Debounce, mustDuration(t, parsed.Watch["debounce"]))
	require.Empty(t, parsed.Theme)
}

func mustDuration(t *testing.T, s string) time.Duration {
	t.Helper()
	d, err := time.ParseDuration(s)
	require.NoError(t, err)
	return d
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lexkit", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
