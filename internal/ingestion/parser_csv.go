package ingestion

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/exportsafe/lcaudit/internal/screening"
)

// ParseCSV parses a comma-separated batch. Documents are quoted fields and
// may span lines.
//
// Expected header (profile and jurisdiction optional):
//
//	id,lc,invoice,profile,jurisdiction
func ParseCSV(data []byte) ([]screening.Request, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"lc", "invoice"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("header: missing %q column", required)
		}
	}

	get := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var reqs []screening.Request
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		if len(row) < len(header) {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, len(header), len(row))
		}

		reqs = append(reqs, item{
			ID:           get(row, "id"),
			LC:           get(row, "lc"),
			Invoice:      get(row, "invoice"),
			Profile:      get(row, "profile"),
			Jurisdiction: get(row, "jurisdiction"),
		}.request())
	}
	return reqs, nil
}
