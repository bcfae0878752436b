// Package depgraph discovers installed packages, merges hoisted/nested
// duplicates, and classifies each by dependency type via BFS over the
// workspace roots (C6). Manifest shape grounded on the teacher's
// PackageManifest in internal/analysis/dependency_analyzer.go.
package depgraph

import (
	"encoding/json"
	"os"
)

// Manifest is the subset of package.json fields the graph builder needs.
type Manifest struct {
	Name                 string                 `json:"name"`
	Version              string                 `json:"version"`
	Dependencies         map[string]string      `json:"dependencies"`
	DevDependencies      map[string]string      `json:"devDependencies"`
	PeerDependencies      map[string]string      `json:"peerDependencies"`
	OptionalDependencies map[string]string      `json:"optionalDependencies"`
	Workspaces           interface{}            `json:"workspaces"`
	Raw                  map[string]interface{} `json:"-"`
}

// readManifest reads and parses a package.json file at path.
func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &m.Raw); err != nil {
		return nil, err
	}
	return &m, nil
}

// workspacePatterns extracts the glob pattern list from a manifest's
// "workspaces" field, handling both the array form and the
// `{packages: [...]}` object form.
func workspacePatterns(raw interface{}) []string {
	switch v := raw.(type) {
	case []interface{}:
		return toStringSlice(v)
	case map[string]interface{}:
		if packages, ok := v["packages"].([]interface{}); ok {
			return toStringSlice(packages)
		}
	}
	return nil
}

func toStringSlice(v []interface{}) []string {
	out := make([]string, 0, len(v))
	for _, e := range v {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
