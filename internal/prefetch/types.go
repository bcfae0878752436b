// Package prefetch batches registry-metadata and vulnerability lookups
// ahead of per-package analysis (C5), and exposes the shared, read-only
// PrefetchedData handle analyzers query during C4.
package prefetch

import "time"

// VersionMeta is one version record out of a package's registry metadata.
type VersionMeta struct {
	Version     string
	PublishedAt time.Time
	Deprecated  string
	Publisher   string
}

// RegistryMetadata is the per-package document returned by the registry,
// normalized to the fields C4's analyzers need.
type RegistryMetadata struct {
	Name        string
	Versions    map[string]VersionMeta
	Maintainers []string
}

// LatestPriorTo returns the most recently published version strictly
// before the given version's publish time, grounded on the spec's
// `dormant` analyzer logic (C4).
func (m *RegistryMetadata) LatestPriorTo(version string) (VersionMeta, bool) {
	cur, ok := m.Versions[version]
	if !ok {
		return VersionMeta{}, false
	}
	var best VersionMeta
	found := false
	for v, vm := range m.Versions {
		if v == version || vm.PublishedAt.IsZero() || !vm.PublishedAt.Before(cur.PublishedAt) {
			continue
		}
		if !found || vm.PublishedAt.After(best.PublishedAt) {
			best = vm
			found = true
		}
	}
	return best, found
}

// VulnerabilityInfo is one advisory record returned by the vulnerability
// service, normalized across ecosystems (CVE/GHSA/RUSTSEC/PYSEC/OSV/GO).
type VulnerabilityInfo struct {
	ID               string
	Summary          string
	Details          string
	SeverityType     string // "cvss3" or "qualitative"
	Score            float64
	DatabaseSeverity string
}

// PrefetchedData is the immutable, concurrency-safe handle analyzers use
// to query prefetch results, falling back to a live lookup on miss for
// metadata (see Store.GetMetadata).
type PrefetchedData interface {
	GetMetadata(name, version string) (*RegistryMetadata, bool)
	GetVulnerabilities(name, version string) ([]VulnerabilityInfo, bool)
}
