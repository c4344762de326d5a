// Package report turns a session's frequency table into an exportable
// artifact: a chart snapshot plus an "Emotion | Count" table.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/emotion-session/orchestrator"
)

// ErrNoChart means no chart snapshot could be produced for the table.
var ErrNoChart = errors.New("report: no chart available")

var Header = []string{"Emotion", "Count"}

// Artifact is a rendered-on-demand report. Rows[0] is always Header.
type Artifact struct {
	Title string
	Chart []byte // PNG, nil for a table-only report
	Rows  [][]string
}

func (a Artifact) HasChart() bool { return len(a.Chart) > 0 }

// ChartRenderer produces a PNG snapshot of the table.
type ChartRenderer interface {
	RenderChart(t orchestrator.FrequencyTable) ([]byte, error)
}

type Assembler struct {
	Title string
	Chart ChartRenderer // optional
	Log   logrus.FieldLogger
}

func NewAssembler(title string, chart ChartRenderer, log logrus.FieldLogger) *Assembler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Assembler{Title: title, Chart: chart, Log: log.WithField("component", "report")}
}

// Build is deterministic in its inputs. A nil snapshot yields a table-only
// artifact.
func (a *Assembler) Build(t orchestrator.FrequencyTable, snapshot []byte) Artifact {
	rows := make([][]string, 0, len(t)+1)
	rows = append(rows, append([]string(nil), Header...))
	for _, e := range t {
		rows = append(rows, []string{e.Label, strconv.Itoa(e.Count)})
	}
	var chart []byte
	if len(snapshot) > 0 {
		chart = append([]byte(nil), snapshot...)
	}
	return Artifact{Title: a.Title, Chart: chart, Rows: rows}
}

// Render asks the chart renderer for a snapshot and builds the artifact,
// degrading to table-only when no chart can be drawn.
func (a *Assembler) Render(t orchestrator.FrequencyTable) Artifact {
	return a.Build(t, a.snapshot(t))
}

func (a *Assembler) snapshot(t orchestrator.FrequencyTable) []byte {
	if a.Chart == nil {
		return nil
	}
	png, err := a.Chart.RenderChart(t)
	if err != nil {
		if !errors.Is(err, ErrNoChart) {
			a.Log.WithError(err).Warn("chart snapshot failed, exporting table only")
		}
		return nil
	}
	return png
}

// WritePDF exports the artifact. If the embedded chart cannot be placed in
// the document the export is retried without it.
func (a *Assembler) WritePDF(w io.Writer, art Artifact) error {
	var buf bytes.Buffer
	err := art.WritePDF(&buf)
	if err != nil && art.HasChart() {
		a.Log.WithError(err).Warn("chart could not be embedded, exporting table only")
		art.Chart = nil
		buf.Reset()
		err = art.WritePDF(&buf)
	}
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}
