package report

import (
	"bytes"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	rowHeight = 8.0
	colLabel  = 120.0
	colCount  = 40.0
)

// fixedDate keeps the document metadata stable across exports of the same
// artifact.
var fixedDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// WritePDF renders an A4 document: title, chart (if any), then the table.
// The table header is repeated on every page the table spills onto.
func (a Artifact) WritePDF(w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(a.Title, true)
	pdf.SetCreationDate(fixedDate)
	pdf.SetModificationDate(fixedDate)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	if bottom == 0 {
		bottom = 15
	}
	limit := pageH - bottom

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr(a.Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if a.HasChart() {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("chart", opts, bytes.NewReader(a.Chart))
		pdf.ImageOptions("chart", left, pdf.GetY(), pageW-left-right, 0, true, opts, 0, "")
		pdf.Ln(6)
	}

	head, body := Header, [][]string(nil)
	if len(a.Rows) > 0 {
		head, body = a.Rows[0], a.Rows[1:]
	}
	header := func() {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetFillColor(230, 230, 240)
		pdf.CellFormat(colLabel, rowHeight, tr(head[0]), "1", 0, "L", true, 0, "")
		pdf.CellFormat(colCount, rowHeight, tr(head[1]), "1", 1, "R", true, 0, "")
		pdf.SetFont("Helvetica", "", 12)
	}
	if pdf.GetY()+2*rowHeight > limit {
		pdf.AddPage()
	}
	header()
	for _, row := range body {
		if pdf.GetY()+rowHeight > limit {
			pdf.AddPage()
			header()
		}
		pdf.CellFormat(colLabel, rowHeight, tr(row[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colCount, rowHeight, row[1], "1", 1, "R", false, 0, "")
	}

	return pdf.Output(w)
}
