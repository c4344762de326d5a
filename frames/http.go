package frames

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"
)

// maxSnapshotBytes caps a single snapshot download.
const maxSnapshotBytes = 16 << 20

// HTTPSource fetches a still from an IP-camera style snapshot endpoint.
type HTTPSource struct {
	url  string
	mime string
	c    *http.Client
	now  func() time.Time
}

func NewHTTPSource(url, fallbackMIME string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url:  url,
		mime: fallbackMIME,
		c:    &http.Client{Timeout: timeout},
		now:  time.Now,
	}
}

// Next returns ErrNoFrame when the camera answers without an image; transport
// failures are returned as errors.
func (s *HTTPSource) Next(ctx context.Context) (Frame, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Frame{}, err
	}
	resp, err := s.c.Do(req)
	if err != nil {
		return Frame{}, fmt.Errorf("snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Frame{}, ErrNoFrame
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return Frame{}, fmt.Errorf("snapshot read: %w", err)
	}
	if len(data) == 0 {
		return Frame{}, ErrNoFrame
	}

	ct := s.mime
	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && mt != "" {
		ct = mt
	}
	return Frame{Data: data, MIME: ct, CapturedAt: s.now()}, nil
}
