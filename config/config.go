package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Service struct {
	URL string `yaml:"url"`
}
type Services struct {
	Classifier  Service `yaml:"classifier"`
	Archive     Service `yaml:"archive"`
	Suggestions Service `yaml:"suggestions"`
}
type Session struct {
	IntervalMS       int `yaml:"interval_ms"`
	RequestTimeoutMS int `yaml:"request_timeout_ms"`
}
type Frames struct {
	Source      string `yaml:"source"` // "dir" | "http"
	Dir         string `yaml:"dir"`
	SnapshotURL string `yaml:"snapshot_url"`
	MIME        string `yaml:"mime"`
}
type Report struct {
	OutputDir string `yaml:"output_dir"`
	Filename  string `yaml:"filename"`
	Title     string `yaml:"title"`
}
type Root struct {
	Session  Session  `yaml:"session"`
	Services Services `yaml:"services"`
	Frames   Frames   `yaml:"frames"`
	Report   Report   `yaml:"report"`
	Server   struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // "text" | "json" | "" (auto)
	} `yaml:"log"`
}

// Load reads the first config file it finds. An explicit path must exist;
// the guessed locations are optional and fall back to Defaults.
func Load(explicit string) (*Root, error) {
	cfg := Defaults()
	if explicit != "" {
		if err := decodeFile(explicit, cfg); err != nil {
			return nil, err
		}
		return finish(cfg)
	}

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	guess := []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	}
	for _, p := range guess {
		err := decodeFile(p, cfg)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return finish(cfg)
}

func decodeFile(path string, cfg *Root) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

func finish(cfg *Root) (*Root, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (r *Root) Validate() error {
	if r.Session.IntervalMS <= 0 {
		return fmt.Errorf("session.interval_ms must be positive, got %d", r.Session.IntervalMS)
	}
	if r.Session.RequestTimeoutMS <= 0 {
		return fmt.Errorf("session.request_timeout_ms must be positive, got %d", r.Session.RequestTimeoutMS)
	}
	for name, raw := range map[string]string{
		"services.classifier.url":  r.Services.Classifier.URL,
		"services.archive.url":     r.Services.Archive.URL,
		"services.suggestions.url": r.Services.Suggestions.URL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s: invalid url %q", name, raw)
		}
	}
	if r.Services.Classifier.URL == "" {
		return errors.New("services.classifier.url is required")
	}
	switch r.Frames.Source {
	case "dir":
		if r.Frames.Dir == "" {
			return errors.New("frames.dir is required when frames.source is dir")
		}
	case "http":
		if r.Frames.SnapshotURL == "" {
			return errors.New("frames.snapshot_url is required when frames.source is http")
		}
	default:
		return fmt.Errorf("frames.source: unknown source %q", r.Frames.Source)
	}
	return nil
}

func (r *Root) Interval() time.Duration       { return DurMillis(r.Session.IntervalMS) }
func (r *Root) RequestTimeout() time.Duration { return DurMillis(r.Session.RequestTimeoutMS) }

func DurMillis(n int) time.Duration { return time.Duration(n) * time.Millisecond }
