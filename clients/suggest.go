package clients

import (
	"context"
	"fmt"
	"strings"
)

// --- Advisor (/suggestions) ---
type EmotionCount struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}
type SuggestReq struct {
	EmotionData []EmotionCount `json:"emotion_data"`
}

// SuggestResp keeps Suggestions as a pointer so an absent field can be told
// apart from an empty list.
type SuggestResp struct {
	Suggestions *[]string `json:"suggestions"`
}

type Advisor struct {
	h   *HTTP
	url string
}

func NewAdvisor(h *HTTP, baseURL string) *Advisor {
	return &Advisor{h: h, url: strings.TrimRight(baseURL, "/") + "/suggestions"}
}

// Suggestions returns the advisor's list, possibly empty. Every failure,
// including a response without the suggestions field, wraps ErrUnavailable.
func (a *Advisor) Suggestions(ctx context.Context, table []EmotionCount) ([]string, error) {
	if table == nil {
		table = []EmotionCount{}
	}
	var out SuggestResp
	if err := a.h.postJSON(ctx, a.url, "suggestions", SuggestReq{EmotionData: table}, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if out.Suggestions == nil {
		return nil, fmt.Errorf("%w: response has no suggestions", ErrUnavailable)
	}
	return *out.Suggestions, nil
}
