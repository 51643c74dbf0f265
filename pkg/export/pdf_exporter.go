package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	landscapeWidth = 277.0
	rowHeight      = 6.0
)

// PDFExporter renders sheets into a landscape A4 document, one page per sheet.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render writes a single dataset under title.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	return e.RenderSheets(title, []Sheet{{Data: data}})
}

// RenderSheets writes every sheet on its own page. The document title is
// repeated as the page header; sheet titles become sub headers.
func (e *PDFExporter) RenderSheets(title string, sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("pdf requires at least one sheet")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, sheet := range sheets {
		if len(sheet.Data.Headers) == 0 {
			return nil, fmt.Errorf("pdf sheet %q requires at least one header", sheet.Title)
		}
		pdf.AddPage()
		if title != "" {
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 9, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		}
		if sheet.Title != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 7, tr(sheet.Title), "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)

		colWidth := landscapeWidth / float64(len(sheet.Data.Headers))
		writeHeader := func() {
			pdf.SetFont("Arial", "B", 9)
			pdf.SetFillColor(230, 230, 230)
			for _, header := range sheet.Data.Headers {
				pdf.CellFormat(colWidth, rowHeight+1, tr(header), "1", 0, "C", true, 0, "")
			}
			pdf.Ln(-1)
			pdf.SetFont("Arial", "", 8)
		}
		writeHeader()

		_, pageHeight := pdf.GetPageSize()
		_, _, _, bottom := pdf.GetMargins()
		for _, row := range sheet.Data.Rows {
			if pdf.GetY()+rowHeight > pageHeight-bottom {
				pdf.AddPage()
				writeHeader()
			}
			for _, header := range sheet.Data.Headers {
				pdf.CellFormat(colWidth, rowHeight, tr(truncate(row[header], colWidth)), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// truncate keeps cell text roughly inside its column at the 8pt body font.
func truncate(value string, width float64) string {
	limit := int(width / 1.6)
	runes := []rune(value)
	if limit < 4 || len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
