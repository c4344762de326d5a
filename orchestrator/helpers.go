package orchestrator

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/maastricht-university/emotion-session/clients"
)

// NormalizeLabel trims and case-folds a classifier label. Any non-blank
// string is a valid label, including sentinels the service may emit.
func NormalizeLabel(raw string) string {
	return cases.Fold().String(strings.TrimSpace(raw))
}

// toPayload flattens the table into the suggestion request shape.
func toPayload(t FrequencyTable) []clients.EmotionCount {
	out := make([]clients.EmotionCount, 0, len(t))
	for _, e := range t {
		out = append(out, clients.EmotionCount{Emotion: e.Label, Count: e.Count})
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
