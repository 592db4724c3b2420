package ingestion

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/exportsafe/lcaudit/internal/screening"
)

// ParseYAML parses a YAML batch with the same shape as the JSON format.
// Block scalars keep the documents readable:
//
//	batch_id: march-shipments
//	items:
//	  - id: inv-0392
//	    lc: |
//	      LC No: EXP/2024/0117
//	      ...
func ParseYAML(data []byte) (string, []screening.Request, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return "", nil, fmt.Errorf("unmarshal: %w", err)
	}
	return f.BatchID, requests(f.Items), nil
}
