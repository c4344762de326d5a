package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// ErrUnavailable marks an advisory call that produced nothing usable.
var ErrUnavailable = errors.New("clients: unavailable")

// HTTP is shared by every remote-service client. Each call gets its own
// deadline derived from timeout.
type HTTP struct {
	c       *http.Client
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewHTTP(timeout time.Duration, log logrus.FieldLogger) *HTTP {
	return &HTTP{c: &http.Client{}, timeout: timeout, log: log}
}

// postJSON performs exactly one round trip. out may be nil to discard the body.
func (h *HTTP) postJSON(ctx context.Context, url, name string, in, out any) error {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s encode: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.c.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: %s", name, resp.Status, string(body))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode: %w", name, err)
	}
	return nil
}
