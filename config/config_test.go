package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadExplicitOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
session:
  interval_ms: 1500
services:
  classifier:
    url: http://classifier:5000
  suggestions:
    url: http://advisor:6000
frames:
  source: http
  snapshot_url: http://cam/snapshot.jpg
report:
  title: Lab session
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1500, cfg.Session.IntervalMS)
	assert.Equal(t, DefaultRequestTimeoutMS, cfg.Session.RequestTimeoutMS)
	assert.Equal(t, "http://classifier:5000", cfg.Services.Classifier.URL)
	assert.Equal(t, "http://advisor:6000", cfg.Services.Suggestions.URL)
	assert.Equal(t, "http", cfg.Frames.Source)
	assert.Equal(t, "Lab session", cfg.Report.Title)
	assert.Equal(t, DefaultReportFilename, cfg.Report.Filename)
	assert.Equal(t, "image/jpeg", cfg.Frames.MIME)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultIntervalMS, cfg.Session.IntervalMS)
	assert.Equal(t, "dir", cfg.Frames.Source)
}

func TestLoadGuessesEnvDirectory(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CONFIG_ENV", "staging")
	require.NoError(t, os.MkdirAll(filepath.Join("config", "staging"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("config", "staging", "config.yaml"),
		[]byte("session:\n  interval_ms: 500\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Session.IntervalMS)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Root)
		errMsg string
	}{
		{"defaults", func(*Root) {}, ""},
		{"negative interval", func(r *Root) { r.Session.IntervalMS = -1 }, "interval_ms"},
		{"bad url", func(r *Root) { r.Services.Archive.URL = "not a url" }, "services.archive.url"},
		{"missing classifier", func(r *Root) { r.Services.Classifier.URL = "" }, "classifier.url is required"},
		{"unknown source", func(r *Root) { r.Frames.Source = "usb" }, "unknown source"},
		{"http without url", func(r *Root) { r.Frames.Source = "http" }, "snapshot_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Defaults()
			tt.mutate(r)
			err := r.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
