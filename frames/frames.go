// Package frames provides still-image sources for capture cycles.
package frames

import (
	"context"
	"encoding/base64"
	"errors"
	"time"
)

// ErrNoFrame means the source had nothing to offer this cycle.
var ErrNoFrame = errors.New("frames: no frame available")

// Frame is one encoded still image. Data must not be modified once handed out.
type Frame struct {
	Data       []byte
	MIME       string
	CapturedAt time.Time
}

// DataURL encodes the frame the way a browser screenshot does; the classifier
// strips everything up to the first comma.
func (f Frame) DataURL() string {
	mime := f.MIME
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

type Source interface {
	Next(ctx context.Context) (Frame, error)
}
