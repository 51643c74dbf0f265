package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is a header row plus records keyed by header name. Missing keys
// render as empty cells.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Sheet is a titled dataset rendered as its own section or page.
type Sheet struct {
	Title string
	Data  Dataset
}

// CSVExporter writes calendar datasets as RFC 4180 CSV with a header row.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render fails when the dataset has no headers.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
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
