package prefetch

import "time"

// parseRegistryDocument normalizes an npm-registry-shaped JSON document
// (dist-tags/versions/time, per the teacher's PackageVersionData) into a
// RegistryMetadata.
func parseRegistryDocument(name string, doc map[string]interface{}) *RegistryMetadata {
	meta := &RegistryMetadata{Name: name, Versions: make(map[string]VersionMeta)}

	times := map[string]time.Time{}
	if timeMap, ok := doc["time"].(map[string]interface{}); ok {
		for v, raw := range timeMap {
			if s, ok := raw.(string); ok {
				if t, err := time.Parse(time.RFC3339, s); err == nil {
					times[v] = t
				}
			}
		}
	}

	var maintainerNames []string
	if raw, ok := doc["maintainers"].([]interface{}); ok {
		for _, m := range raw {
			if obj, ok := m.(map[string]interface{}); ok {
				if n, ok := obj["name"].(string); ok {
					maintainerNames = append(maintainerNames, n)
				}
			}
		}
	}
	meta.Maintainers = maintainerNames

	versionsRaw, _ := doc["versions"].(map[string]interface{})
	for version, raw := range versionsRaw {
		obj, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		vm := VersionMeta{Version: version, PublishedAt: times[version]}
		if dep, ok := obj["deprecated"].(string); ok {
			vm.Deprecated = dep
		}
		if npmUser, ok := obj["_npmUser"].(map[string]interface{}); ok {
			if n, ok := npmUser["name"].(string); ok {
				vm.Publisher = n
			}
		}
		meta.Versions[version] = vm
	}
	return meta
}
