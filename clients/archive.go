package clients

import (
	"context"
	"strings"

	"github.com/maastricht-university/emotion-session/frames"
)

// --- Archive (/save_image) ---
type ArchiveReq struct {
	Image    string `json:"image"`
	Filename string `json:"filename"`
}

type Archiver struct {
	h   *HTTP
	url string
}

func NewArchiver(h *HTTP, baseURL string) *Archiver {
	return &Archiver{h: h, url: strings.TrimRight(baseURL, "/") + "/save_image"}
}

// Archive stores the frame under its label. The response body is ignored.
func (a *Archiver) Archive(ctx context.Context, f frames.Frame, label string) error {
	return a.h.postJSON(ctx, a.url, "archive", ArchiveReq{Image: f.DataURL(), Filename: label}, nil)
}
