// internal/service/csv_parser.go
package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const utf8BOM = "\ufeff"

// ParseCSV reads a header row followed by records. Short rows yield partial
// records (missing columns are absent from the map); cells beyond the header
// are keyed "_<index>". Blank lines are skipped.
func ParseCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records := []map[string]string{}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return records, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		header[i] = strings.TrimSpace(h)
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		rec := make(map[string]string, len(row))
		for i, cell := range row {
			key := fmt.Sprintf("_%d", i)
			if i < len(header) {
				key = header[i]
			}
			rec[key] = cell
		}
		records = append(records, rec)
	}

	return records, nil
}

// ParseCSVFile opens path and parses it with ParseCSV.
func ParseCSVFile(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCSV(f)
}
