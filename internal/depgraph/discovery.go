package depgraph

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/drodil/depspector/pkg/types"
)

// BuildOptions controls discovery and classification per §4.6.
type BuildOptions struct {
	ProjectDir        string
	NodeModulesDir    string
	IncludeWorkspaces bool
	IncludeExternal   bool
	IncludeDev        bool
	IncludeOptional   bool
	IncludePeer       bool
	IncludeTransient  bool
	ExcludeSubstrings []string
}

// Graph is the discovered and classified dependency set.
type Graph struct {
	Packages map[string]*types.PackageInfo // keyed by name
	opts     BuildOptions
}

// DiscoveredPackages returns the final package list in deterministic
// (name) order, after applying the include/exclude flags from
// BuildOptions. Call Classify before this so DependencyType/IsTransient
// reflect the BFS result.
func (g *Graph) DiscoveredPackages() []*types.PackageInfo {
	names := make([]string, 0, len(g.Packages))
	for n := range g.Packages {
		names = append(names, n)
	}
	sortStrings(names)
	out := make([]*types.PackageInfo, 0, len(names))
	for _, n := range names {
		pkg := g.Packages[n]
		if g.included(pkg) {
			out = append(out, pkg)
		}
	}
	return out
}

func (g *Graph) included(pkg *types.PackageInfo) bool {
	if pkg.IsLocal {
		return g.opts.IncludeWorkspaces || pkg.IsRoot
	}
	switch pkg.DependencyType {
	case types.DependencyDev:
		if !g.opts.IncludeDev {
			return false
		}
	case types.DependencyOptional:
		if !g.opts.IncludeOptional {
			return false
		}
	case types.DependencyPeer:
		if !g.opts.IncludePeer {
			return false
		}
	}
	if pkg.IsTransient && !g.opts.IncludeTransient && pkg.DependencyType != types.DependencyUnknown {
		return false
	}
	if !g.opts.IncludeExternal && pkg.DependencyType == types.DependencyUnknown {
		return false
	}
	return true
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func excluded(name string, substrings []string) bool {
	for _, sub := range substrings {
		if sub != "" && strings.Contains(name, sub) {
			return true
		}
	}
	return false
}

func manifestToDeps(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	return out
}

// Build discovers local (root + workspace) and installed packages, merges
// hoisted/nested duplicates, and returns an unclassified Graph (local
// packages are DependencyLocal; installed packages stay Unknown until
// Classify runs).
func Build(opts BuildOptions) (*Graph, error) {
	g := &Graph{Packages: make(map[string]*types.PackageInfo), opts: opts}

	rootManifestPath := filepath.Join(opts.ProjectDir, "package.json")
	root, err := readManifest(rootManifestPath)
	if err == nil {
		addLocalPackage(g, root, opts.ProjectDir, true, opts.ExcludeSubstrings)

		if opts.IncludeWorkspaces {
			for _, pattern := range workspacePatterns(root.Workspaces) {
				matches, _ := doublestar.Glob(os.DirFS(opts.ProjectDir), filepath.ToSlash(filepath.Join(pattern, "package.json")))
				for _, match := range matches {
					wsPath := filepath.Join(opts.ProjectDir, match)
					wsDir := filepath.Dir(wsPath)
					ws, err := readManifest(wsPath)
					if err != nil {
						continue
					}
					addLocalPackage(g, ws, wsDir, false, opts.ExcludeSubstrings)
				}
			}
		}
	}

	if opts.NodeModulesDir != "" {
		walkInstalled(g, opts.NodeModulesDir, opts.ExcludeSubstrings)
	}

	return g, nil
}

func addLocalPackage(g *Graph, m *Manifest, path string, isRoot bool, excludeSubstrings []string) {
	if m.Name == "" || excluded(m.Name, excludeSubstrings) {
		return
	}
	pkg := &types.PackageInfo{
		Name:            m.Name,
		Version:         m.Version,
		AbsolutePath:    path,
		Manifest:        m.Raw,
		IsLocal:         true,
		IsRoot:          isRoot,
		Dependencies:    manifestToDeps(m.Dependencies),
		DevDependencies: manifestToDeps(m.DevDependencies),
		OptionalDeps:    manifestToDeps(m.OptionalDependencies),
		PeerDeps:        manifestToDeps(m.PeerDependencies),
		DependencyType:  types.DependencyLocal,
	}
	g.Packages[m.Name] = pkg
}

// walkInstalled walks the node_modules tree; a package.json whose path
// contains a "dist" or "build" path segment is skipped (built output, not
// an installed package root).
func walkInstalled(g *Graph, root string, excludeSubstrings []string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if info.Name() != "package.json" {
			return nil
		}
		if hasSegment(path, "dist") || hasSegment(path, "build") {
			return nil
		}

		m, err := readManifest(path)
		if err != nil || m.Name == "" {
			return nil
		}
		if excluded(m.Name, excludeSubstrings) {
			return nil
		}

		dir := filepath.Dir(path)
		if existing, ok := g.Packages[m.Name]; ok && !existing.IsLocal {
			existing.Dependencies = unionStrings(existing.Dependencies, manifestToDeps(m.Dependencies))
			existing.DevDependencies = unionStrings(existing.DevDependencies, manifestToDeps(m.DevDependencies))
			existing.OptionalDeps = unionStrings(existing.OptionalDeps, manifestToDeps(m.OptionalDependencies))
			existing.PeerDeps = unionStrings(existing.PeerDeps, manifestToDeps(m.PeerDependencies))
			return nil
		}
		if existing, ok := g.Packages[m.Name]; ok && existing.IsLocal {
			return nil
		}

		g.Packages[m.Name] = &types.PackageInfo{
			Name:            m.Name,
			Version:         m.Version,
			AbsolutePath:    dir,
			Manifest:        m.Raw,
			Dependencies:    manifestToDeps(m.Dependencies),
			DevDependencies: manifestToDeps(m.DevDependencies),
			OptionalDeps:    manifestToDeps(m.OptionalDependencies),
			PeerDeps:        manifestToDeps(m.PeerDependencies),
			DependencyType:  types.DependencyUnknown,
		}
		return nil
	})
}

func hasSegment(path, segment string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == segment {
			return true
		}
	}
	return false
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
