package clients

import (
	"context"
	"strings"

	"github.com/maastricht-university/emotion-session/frames"
)

// --- Classifier (/analyze) ---
type ClassifyReq struct {
	Image string `json:"image"`
}
type ClassifyResp struct {
	Emotion string `json:"emotion,omitempty"`
	Error   string `json:"error,omitempty"`
}

type OutcomeKind int

const (
	Detected OutcomeKind = iota
	NoFace
	TransportError
)

func (k OutcomeKind) String() string {
	switch k {
	case Detected:
		return "detected"
	case NoFace:
		return "no_face"
	case TransportError:
		return "transport_error"
	}
	return "unknown"
}

// Outcome of one classification round trip. Label is set only for Detected,
// Err only for TransportError.
type Outcome struct {
	Kind  OutcomeKind
	Label string
	Err   error
}

type Classifier struct {
	h   *HTTP
	url string
}

func NewClassifier(h *HTTP, baseURL string) *Classifier {
	return &Classifier{h: h, url: strings.TrimRight(baseURL, "/") + "/analyze"}
}

// Classify never returns an error; failures become TransportError.
func (c *Classifier) Classify(ctx context.Context, f frames.Frame) Outcome {
	var out ClassifyResp
	if err := c.h.postJSON(ctx, c.url, "classify", ClassifyReq{Image: f.DataURL()}, &out); err != nil {
		return Outcome{Kind: TransportError, Err: err}
	}
	label := strings.TrimSpace(out.Emotion)
	if label == "" {
		if out.Error != "" {
			c.h.log.WithField("service_error", out.Error).Debug("classifier returned no emotion")
		}
		return Outcome{Kind: NoFace}
	}
	return Outcome{Kind: Detected, Label: label}
}
