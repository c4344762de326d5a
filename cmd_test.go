package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/maastricht-university/emotion-session/orchestrator"
	"github.com/maastricht-university/emotion-session/report"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	l, err := newLogger("debug", "", &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter, "non-tty output defaults to json")

	l, err = newLogger("info", "text", &buf)
	require.NoError(t, err)
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)

	_, err = newLogger("loud", "", &buf)
	assert.Error(t, err)
}

func TestBundleFrom(t *testing.T) {
	snap := orchestrator.Snapshot{
		SessionID:   "id-1",
		Table:       orchestrator.FrequencyTable{{Label: "happy", Count: 2}},
		Suggestions: []string{"smile"},
	}
	b := bundleFrom(snap, "Title")
	assert.Equal(t, "id-1", b.SessionID)
	assert.Equal(t, "Title", b.Title)
	assert.Equal(t, snap.Table, b.Table)
	assert.Equal(t, snap.Suggestions, b.Suggestions)
	assert.False(t, b.GeneratedAt.IsZero())
}

func TestReportCommandRebuildsFromBundle(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("services:\n  classifier:\n    url: http://127.0.0.1:5000\n"), 0o644))

	bundle := report.Bundle{
		SessionID: "rebuild",
		Title:     "Lab session",
		Table:     orchestrator.FrequencyTable{{Label: "happy", Count: 3}, {Label: "sad", Count: 1}},
	}
	raw, err := yaml.Marshal(bundle)
	require.NoError(t, err)
	from := filepath.Join(dir, "session.yaml")
	require.NoError(t, os.WriteFile(from, raw, 0o644))

	outDir := filepath.Join(dir, "out")
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"report", "--config", conf, "--output-dir", outDir, "--from", from, "--log-level", "error"})

	require.NoError(t, root.Execute())

	want := filepath.Join(outDir, "session_rebuild", "emotion_report.pdf")
	assert.Equal(t, "report: "+want, strings.TrimSpace(stdout.String()))
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRootRejectsInvalidConfig(t *testing.T) {
	conf := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("frames:\n  source: usb\n"), 0o644))

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"report", "--config", conf, "--from", "x.yaml"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}
