package report

import (
	"encoding/json"
	"os"

	"github.com/drodil/depspector/pkg/types"
)

// WriteJSON serializes results as indented JSON to path.
func WriteJSON(results []types.AnalysisResult, path string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
