// Package ingestion reads batch files of LC/invoice pairs for bulk audits.
package ingestion

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/exportsafe/lcaudit/internal/screening"
)

// Supported batch formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

// Batch is a parsed batch file.
type Batch struct {
	ID       string              `json:"batch_id"`
	Digest   string              `json:"digest"`
	Format   string              `json:"format"`
	Requests []screening.Request `json:"-"`
}

// file is the document shape shared by the JSON and YAML formats.
type file struct {
	BatchID string `json:"batch_id" yaml:"batch_id"`
	Items   []item `json:"items" yaml:"items"`
}

type item struct {
	ID           string `json:"id" yaml:"id"`
	LC           string `json:"lc" yaml:"lc"`
	Invoice      string `json:"invoice" yaml:"invoice"`
	Profile      string `json:"profile" yaml:"profile"`
	Jurisdiction string `json:"jurisdiction" yaml:"jurisdiction"`
}

// Parse reads a batch in the given format. An empty format is detected
// from the content.
func Parse(data []byte, format string) (Batch, error) {
	format = strings.ToLower(format)
	switch format {
	case "":
		format = detectFormat(data)
	case "yml":
		format = FormatYAML
	}

	var (
		id   string
		reqs []screening.Request
		err  error
	)
	switch format {
	case FormatJSON:
		id, reqs, err = ParseJSON(data)
	case FormatCSV:
		reqs, err = ParseCSV(data)
	case FormatYAML:
		id, reqs, err = ParseYAML(data)
	default:
		return Batch{}, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return Batch{}, fmt.Errorf("parse %s: %w", format, err)
	}
	if len(reqs) == 0 {
		return Batch{}, fmt.Errorf("parse %s: batch has no items", format)
	}

	digest := fmt.Sprintf("%x", sha256.Sum256(data))
	if id == "" {
		id = "BATCH-" + digest[:12]
	}
	if err := assignIDs(id, reqs); err != nil {
		return Batch{}, err
	}
	return Batch{ID: id, Digest: digest, Format: format, Requests: reqs}, nil
}

// LoadFile parses the batch at path, choosing the format by extension.
func LoadFile(path string) (Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Batch{}, fmt.Errorf("read batch: %w", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch format {
	case FormatJSON, FormatCSV, FormatYAML, "yml":
	default:
		format = ""
	}
	return Parse(data, format)
}

// --- helpers ---

func detectFormat(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	first, _, _ := bytes.Cut(trimmed, []byte("\n"))
	switch {
	case bytes.HasPrefix(trimmed, []byte("{")), bytes.HasPrefix(trimmed, []byte("[")):
		return FormatJSON
	case bytes.Contains(first, []byte(",")) && !bytes.Contains(first, []byte(":")):
		return FormatCSV
	default:
		return FormatYAML
	}
}

// assignIDs numbers items without an id and rejects duplicates.
func assignIDs(batchID string, reqs []screening.Request) error {
	seen := make(map[string]int, len(reqs))
	for i := range reqs {
		if reqs[i].ID == "" {
			reqs[i].ID = fmt.Sprintf("%s-%03d", batchID, i+1)
		}
		if prev, ok := seen[reqs[i].ID]; ok {
			return fmt.Errorf("item %d: duplicate id %q (first at item %d)", i+1, reqs[i].ID, prev+1)
		}
		seen[reqs[i].ID] = i
	}
	return nil
}

func (it item) request() screening.Request {
	return screening.Request{
		ID:           strings.TrimSpace(it.ID),
		LC:           it.LC,
		Invoice:      it.Invoice,
		Profile:      strings.TrimSpace(it.Profile),
		Jurisdiction: strings.TrimSpace(it.Jurisdiction),
	}
}

func requests(items []item) []screening.Request {
	reqs := make([]screening.Request, len(items))
	for i, it := range items {
		reqs[i] = it.request()
	}
	return reqs
}
