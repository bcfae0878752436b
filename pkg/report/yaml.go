package report

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/drodil/depspector/pkg/types"
)

// WriteYAML serializes results as YAML to path.
func WriteYAML(results []types.AnalysisResult, path string) error {
	data, err := yaml.Marshal(results)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
