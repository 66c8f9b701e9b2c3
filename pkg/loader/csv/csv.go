package csv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/OFFIS-RIT/graphlift/pkg/loader"
)

// CSVDecoder decodes CSV exports of the GraphRAG tables. The first non-blank
// row is the header. Empty cells are treated as missing columns.
type CSVDecoder struct {
	Comma rune
}

// NewCSVDecoder creates a comma separated decoder.
func NewCSVDecoder() *CSVDecoder {
	return &CSVDecoder{Comma: ','}
}

func (d *CSVDecoder) Extension() string {
	return "csv"
}

// Decode parses content into records. Rows the csv reader rejects are
// skipped, the same way blank rows are.
func (d *CSVDecoder) Decode(content []byte) ([]loader.Record, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if d.Comma != 0 {
		reader.Comma = d.Comma
	}

	var header []string
	var rows []loader.Record

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}
		if isBlank(record) {
			continue
		}

		if header == nil {
			header = make([]string, len(record))
			for i, h := range record {
				header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
			}
			continue
		}

		row := make(loader.Record, len(header))
		for i, field := range record {
			if i >= len(header) || header[i] == "" || field == "" {
				continue
			}
			row[header[i]] = field
		}
		rows = append(rows, row)
	}

	if header == nil {
		return nil, fmt.Errorf("CSV file is empty or contains no header")
	}

	return rows, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
