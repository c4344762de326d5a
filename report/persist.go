package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/maastricht-university/emotion-session/orchestrator"
)

const (
	BundleFile = "session.yaml"
	lockFile   = ".export.lock"
)

// Bundle is the tabular sidecar written next to an exported report.
type Bundle struct {
	SessionID   string                      `yaml:"session_id"`
	GeneratedAt time.Time                   `yaml:"generated_at"`
	Title       string                      `yaml:"title"`
	Table       orchestrator.FrequencyTable `yaml:"emotion_data"`
	Suggestions []string                    `yaml:"suggestions,omitempty"`
}

func sessionDir(outputsRoot, sessionID string) (string, error) {
	dir := filepath.Join(outputsRoot, "session_"+sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func writeYAML(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Save writes <outputs>/session_<id>/<filename> and the YAML bundle under an
// exclusive lock so a CLI export and a server export cannot interleave.
// It returns the PDF path.
func (a *Assembler) Save(outputsRoot, filename string, art Artifact, b Bundle) (string, error) {
	dir, err := sessionDir(outputsRoot, b.SessionID)
	if err != nil {
		return "", fmt.Errorf("report dir: %w", err)
	}

	lock := flock.New(filepath.Join(dir, lockFile))
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("lock %s: %w", dir, err)
	}
	defer lock.Unlock()

	var buf bytes.Buffer
	if err := a.WritePDF(&buf, art); err != nil {
		return "", err
	}
	pdfPath := filepath.Join(dir, filename)
	if err := os.WriteFile(pdfPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := writeYAML(filepath.Join(dir, BundleFile), b); err != nil {
		return "", fmt.Errorf("write bundle: %w", err)
	}
	a.Log.WithField("path", pdfPath).Info("report exported")
	return pdfPath, nil
}

// LoadBundle reads a bundle written by Save.
func LoadBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var b Bundle
	if err := yaml.NewDecoder(f).Decode(&b); err != nil {
		return nil, fmt.Errorf("bundle %s: %w", path, err)
	}
	return &b, nil
}
