package report

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func (a Artifact) writer() table.Writer {
	tw := table.NewWriter()
	if len(a.Rows) == 0 {
		return tw
	}
	tw.AppendHeader(toRow(a.Rows[0]))
	for _, r := range a.Rows[1:] {
		tw.AppendRow(toRow(r))
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw
}

// Text renders a terminal table with the title above it.
func (a Artifact) Text() string {
	tw := a.writer()
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	// keep the title on one line
	style.Size.WidthMin = text.StringWidthWithoutEscSequences(a.Title) + 4
	tw.SetStyle(style)
	tw.SetTitle(a.Title)
	return tw.Render()
}

// CSV renders the rows only, header first.
func (a Artifact) CSV() string { return a.writer().RenderCSV() }

func toRow(cells []string) table.Row {
	r := make(table.Row, len(cells))
	for i, c := range cells {
		r[i] = c
	}
	return r
}
