package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter renders a WeekGrid into CSV bytes: a header row of slot labels
// followed by one row per day.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the grid.
func (e *CSVExporter) Render(grid WeekGrid) ([]byte, error) {
	if len(grid.SlotLabels) == 0 {
		return nil, fmt.Errorf("csv requires at least one slot label")
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	header := append([]string{"Day"}, grid.SlotLabels...)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, day := range grid.Days {
		record := make([]string, 0, len(header))
		record = append(record, day.Day)
		for i := range grid.SlotLabels {
			if i < len(day.Cells) {
				record = append(record, day.Cells[i])
			} else {
				record = append(record, "")
			}
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
