// Package resultcache implements the per-package result cache (C7):
// freshness gate by content hash, analyzer-coverage gate by the recorded
// set of analyzers that ran. Persisted via go.etcd.io/bbolt rather than the teacher's
// own cache interfaces, since SPEC_FULL.md only pins a literal on-disk path
// for C5's registry metadata (see DESIGN.md).
package resultcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/drodil/depspector/pkg/types"
)

var bucketName = []byte("results")

// Entry is one cached package result. AnalyzersRun records every analyzer
// that executed when the entry was written (including ones that found
// nothing), so the coverage gate can distinguish "ran, found nothing" from
// "never ran".
type Entry struct {
	Version      string        `json:"version"`
	ContentHash  string        `json:"contentHash"`
	Results      []types.Issue `json:"results"`
	AnalyzersRun []string      `json:"analyzersRun"`
	Timestamp    time.Time     `json:"timestamp"`
}

func (e *Entry) ranAnalyzer(name string) bool {
	for _, a := range e.AnalyzersRun {
		if a == name {
			return true
		}
	}
	return false
}

// Cache is the bbolt-backed key/value store, key "<name>@<version>".
type Cache struct {
	db *bolt.DB
}

// Namespace returns the cache namespace for a (cwd, nodeModulesPath) pair:
// a hash of the two paths, per §4.7's "namespace = hash of (cwd,
// node_modules_path)".
func Namespace(cwd, nodeModulesPath string) string {
	sum := sha256.Sum256([]byte(cwd + "\x00" + nodeModulesPath))
	return hex.EncodeToString(sum[:])[:16]
}

// Open opens (creating if absent) the bbolt database for the given cache
// directory and namespace.
func Open(cacheDir, namespace string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(cacheDir, namespace+".db")
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying bbolt file handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

func key(name, version string) []byte {
	return []byte(name + "@" + version)
}

// Get returns the raw cached entry for (name, version), if any.
func (c *Cache) Get(name, version string) (*Entry, bool) {
	var entry Entry
	found := false
	_ = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		data := b.Get(key(name, version))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil
		}
		found = true
		return nil
	})
	if !found {
		return nil, false
	}
	return &entry, true
}

// Put writes entry under (name, version).
func (c *Cache) Put(name, version string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		return b.Put(key(name, version), data)
	})
}

// ContentHash computes the SHA-256 over the concatenated, sorted
// .js/.mjs/.ts file contents in dir.
func ContentHash(dir string) (string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".js", ".mjs", ".ts":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(files)

	h := sha256.New()
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Lookup applies the freshness gate (content hash + max age), then the
// analyzer-coverage gate (every active analyzer must appear in the entry's
// AnalyzersRun; an analyzer that ran and found nothing passes the gate).
// activeAnalyzers is the full set of currently enabled analyzer names
// across C3+C4. On a hit the cached issues are returned as stored.
func (c *Cache) Lookup(name, version, contentHash string, maxAge time.Duration, activeAnalyzers []string) ([]types.Issue, bool) {
	entry, ok := c.Get(name, version)
	if !ok {
		return nil, false
	}
	if entry.Version != version || entry.ContentHash != contentHash {
		return nil, false
	}
	if maxAge > 0 && time.Since(entry.Timestamp) > maxAge {
		return nil, false
	}

	for _, name := range activeAnalyzers {
		if !entry.ranAnalyzer(name) {
			return nil, false
		}
	}
	return entry.Results, true
}
