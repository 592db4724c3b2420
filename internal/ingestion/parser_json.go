package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/exportsafe/lcaudit/internal/screening"
)

// ParseJSON parses a JSON batch: either {"batch_id": ..., "items": [...]} or
// a bare array of items.
func ParseJSON(data []byte) (string, []screening.Request, error) {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		var items []item
		if err := json.Unmarshal(data, &items); err != nil {
			return "", nil, fmt.Errorf("unmarshal: %w", err)
		}
		return "", requests(items), nil
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return "", nil, fmt.Errorf("unmarshal: %w", err)
	}
	return f.BatchID, requests(f.Items), nil
}
