// Package pdf renders tabular documents for export endpoints.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// Column describes one table column of a rendered document.
type Column struct {
	Header string
	Width  float64
}

// Document is a titled table ready for rendering.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Columns     []Column
	Rows        [][]string
}

const rowHeight = 7.0

// Render produces the document as PDF bytes in landscape A4.
func Render(doc Document) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, doc.Title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", doc.GeneratedAt.Format("2006-01-02 15:04 MST")), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetTextColor(0, 0, 0)

	writeHeader(pdf, doc.Columns)

	pdf.SetFont("Helvetica", "", 9)
	for i, row := range doc.Rows {
		if pdf.GetY() > 185 {
			pdf.AddPage()
			writeHeader(pdf, doc.Columns)
			pdf.SetFont("Helvetica", "", 9)
		}

		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)
		for j, column := range doc.Columns {
			value := ""
			if j < len(row) {
				value = row[j]
			}
			pdf.CellFormat(column.Width, rowHeight, truncate(value, column.Width), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(rowHeight)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func writeHeader(pdf *fpdf.Fpdf, columns []Column) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(225, 225, 225)
	for _, column := range columns {
		pdf.CellFormat(column.Width, rowHeight, column.Header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(rowHeight)
}

// truncate keeps cell text within the column width, roughly two characters
// per millimetre at the 9pt table font.
func truncate(value string, width float64) string {
	limit := int(width / 2)
	if limit < 4 {
		limit = 4
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
