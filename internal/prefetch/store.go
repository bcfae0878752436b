package prefetch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Store is the concurrency-safe, process-wide handle returned to analyzers
// (PrefetchedData). It layers an in-memory map over a disk cache over a
// live registry fetch, per §4.5: "the in-memory map is consulted first,
// then the disk cache, then a live fetch."
type Store struct {
	mu       sync.RWMutex
	metadata map[string]*RegistryMetadata
	vulns    map[string][]VulnerabilityInfo

	client   *RegistryClient
	cacheDir string
}

// NewStore builds an empty Store backed by client and rooted at cacheDir
// (the directory under which registry/metadata/<name>@<version>.json is
// read and written).
func NewStore(client *RegistryClient, cacheDir string) *Store {
	return &Store{
		metadata: make(map[string]*RegistryMetadata),
		vulns:    make(map[string][]VulnerabilityInfo),
		client:   client,
		cacheDir: cacheDir,
	}
}

// diskPath mirrors the registry's own "@scope/name" layout: a scoped
// package's slash becomes a subdirectory, matching npm's own tarball URLs.
func (s *Store) diskPath(name, version string) string {
	return filepath.Join(s.cacheDir, "registry", "metadata", name+"@"+version+".json")
}

func (s *Store) readDisk(name, version string) (*RegistryMetadata, bool) {
	data, err := os.ReadFile(s.diskPath(name, version))
	if err != nil {
		return nil, false
	}
	var meta RegistryMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, false
	}
	return &meta, true
}

func (s *Store) writeDisk(name, version string, meta *RegistryMetadata) {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return
	}
	path := s.diskPath(name, version)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0o644)
}

// PutMetadata stores meta under name in-memory and persists it to disk
// under the given representative version, used by the prefetcher after a
// successful fetch.
func (s *Store) PutMetadata(name, version string, meta *RegistryMetadata) {
	s.mu.Lock()
	s.metadata[name] = meta
	s.mu.Unlock()
	s.writeDisk(name, version, meta)
}

// PutVulnerabilities stores the vulnerability list for "name@version".
func (s *Store) PutVulnerabilities(name, version string, vulns []VulnerabilityInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vulns[name+"@"+version] = vulns
}

// GetMetadata implements PrefetchedData: in-memory, then disk, then a live
// fetch against the registry.
func (s *Store) GetMetadata(name, version string) (*RegistryMetadata, bool) {
	s.mu.RLock()
	if meta, ok := s.metadata[name]; ok {
		s.mu.RUnlock()
		return meta, true
	}
	s.mu.RUnlock()

	if meta, ok := s.readDisk(name, version); ok {
		s.mu.Lock()
		s.metadata[name] = meta
		s.mu.Unlock()
		return meta, true
	}

	if s.client == nil {
		return nil, false
	}
	doc, err := s.client.FetchRaw(context.Background(), name)
	if err != nil {
		return nil, false
	}
	meta := parseRegistryDocument(name, doc)
	s.PutMetadata(name, version, meta)
	return meta, true
}

// GetVulnerabilities implements PrefetchedData, returning the batch-queried
// list stored by the prefetcher for "name@version".
func (s *Store) GetVulnerabilities(name, version string) ([]VulnerabilityInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vulns[name+"@"+version]
	return v, ok
}
