package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func readTheme(t *testing.T, path string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var parsed struct {
		Theme map[string]string `yaml:"theme"`
	}
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	return parsed.Theme
}

func TestSetThemeColor_OnDefaultTemplateKeepsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SetThemeColor(path, "opener", "#89B4FA"))
	require.NoError(t, SetThemeColor(path, "ignore", "#666"))

	require.Equal(t, map[string]string{"opener": "#89B4FA", "ignore": "#666"}, readTheme(t, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# Fail on warnings")
	require.Contains(t, string(data), "output: text")
}

func TestSetThemeColor_ReplaceAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme:\n  word: \"#111111\"\n  opener: \"#222222\"\n"), 0o600))

	require.NoError(t, SetThemeColor(path, "word", "#333333"))
	require.Equal(t, map[string]string{"word": "#333333", "opener": "#222222"}, readTheme(t, path))

	require.NoError(t, SetThemeColor(path, "opener", ""))
	require.Equal(t, map[string]string{"word": "#333333"}, readTheme(t, path))
}

func TestSetThemeColor_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SetThemeColor(path, "word", "#abc"))
	require.Equal(t, map[string]string{"word": "#abc"}, readTheme(t, path))
}

func TestSetThemeColor_Errors(t *testing.T) {
	dir := t.TempDir()

	err := SetThemeColor(filepath.Join(dir, "a.yaml"), "word", "red")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid hex color")

	listPath := filepath.Join(dir, "list.yaml")
	require.NoError(t, os.WriteFile(listPath, []byte("- a\n- b\n"), 0o600))
	err = SetThemeColor(listPath, "word", "#fff")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a mapping")

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("theme: [\n"), 0o600))
	err = SetThemeColor(badPath, "word", "#fff")
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing config")
}
