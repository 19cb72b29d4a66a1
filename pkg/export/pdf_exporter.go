package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders a WeekGrid into a landscape A4 timetable page.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates the PDF document.
func (e *PDFExporter) Render(grid WeekGrid) ([]byte, error) {
	if len(grid.SlotLabels) == 0 {
		return nil, fmt.Errorf("pdf requires at least one slot label")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	if grid.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, grid.Title, "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	const dayColWidth = 28.0
	colWidth := (277.0 - dayColWidth) / float64(len(grid.SlotLabels))

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(dayColWidth, 8, "Day", "1", 0, "C", false, 0, "")
	for _, label := range grid.SlotLabels {
		pdf.CellFormat(colWidth, 8, label, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, day := range grid.Days {
		pdf.CellFormat(dayColWidth, 10, day.Day, "1", 0, "", false, 0, "")
		for i := range grid.SlotLabels {
			value := ""
			if i < len(day.Cells) {
				value = day.Cells[i]
			}
			pdf.CellFormat(colWidth, 10, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
