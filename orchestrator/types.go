package orchestrator

import (
	"context"

	"github.com/maastricht-university/emotion-session/clients"
	"github.com/maastricht-university/emotion-session/frames"
)

// State is the session lifecycle position.
type State int

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Status texts shown to the user. Detected labels are shown verbatim.
const (
	StatusReady     = "Click 'Start Analysis'"
	StatusDetecting = "Detecting..."
	StatusStopped   = "Analysis Stopped"
	StatusNoFace    = "No face detected"
	StatusError     = "Error detecting emotion"
)

type FrequencyEntry struct {
	Label string `json:"emotion" yaml:"emotion"`
	Count int    `json:"count" yaml:"count"`
}

// FrequencyTable is ordered by first observation, unique by label.
type FrequencyTable []FrequencyEntry

// Total is the number of successful cycles folded into the table.
func (t FrequencyTable) Total() int {
	n := 0
	for _, e := range t {
		n += e.Count
	}
	return n
}

// Snapshot is a read-only view of the session.
type Snapshot struct {
	SessionID   string         `json:"session_id"`
	State       string         `json:"state"`
	Status      string         `json:"status"`
	Table       FrequencyTable `json:"emotion_data"`
	Suggestions []string       `json:"suggestions"`
	Cycles      int            `json:"cycles"`
	Skipped     int            `json:"skipped_ticks"`
}

// Collaborators. Implementations live in clients and frames.

type FrameSource = frames.Source

type Classifier interface {
	Classify(ctx context.Context, f frames.Frame) clients.Outcome
}

type Archiver interface {
	Archive(ctx context.Context, f frames.Frame, label string) error
}

type Advisor interface {
	Suggestions(ctx context.Context, table []clients.EmotionCount) ([]string, error)
}
