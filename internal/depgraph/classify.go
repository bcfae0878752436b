package depgraph

import "github.com/drodil/depspector/pkg/types"

type queueItem struct {
	name string
	typ  types.DependencyType
}

// Classify runs the BFS over the union of workspace roots described in
// §4.6, assigning each installed package's DependencyType and IsTransient.
func (g *Graph) Classify() {
	visited := make(map[string]types.DependencyType)
	var queue []queueItem

	roots := make([]*types.PackageInfo, 0)
	for _, pkg := range g.Packages {
		if pkg.IsLocal {
			roots = append(roots, pkg)
		}
	}

	enqueueIfAbsent := func(names []string, typ types.DependencyType) {
		for _, name := range names {
			if _, ok := visited[name]; !ok {
				queue = append(queue, queueItem{name: name, typ: typ})
			}
		}
	}
	for _, root := range roots {
		enqueueIfAbsent(root.Dependencies, types.DependencyDirect)
	}
	for _, root := range roots {
		enqueueIfAbsent(root.OptionalDeps, types.DependencyOptional)
	}
	for _, root := range roots {
		enqueueIfAbsent(root.DevDependencies, types.DependencyDev)
	}
	for _, root := range roots {
		enqueueIfAbsent(root.PeerDeps, types.DependencyPeer)
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if existing, ok := visited[item.name]; ok {
			if item.typ.Priority() > existing.Priority() {
				visited[item.name] = item.typ
			}
			continue
		}
		visited[item.name] = item.typ

		pkg, ok := g.Packages[item.name]
		if !ok || pkg.IsLocal {
			continue
		}

		for _, dep := range pkg.Dependencies {
			queue = append(queue, queueItem{name: dep, typ: item.typ})
		}
		for _, dep := range pkg.OptionalDeps {
			childType := item.typ
			if item.typ == types.DependencyDirect {
				childType = types.DependencyOptional
			}
			queue = append(queue, queueItem{name: dep, typ: childType})
		}
		for _, dep := range pkg.PeerDeps {
			childType := item.typ
			if item.typ == types.DependencyDirect {
				childType = types.DependencyPeer
			}
			queue = append(queue, queueItem{name: dep, typ: childType})
		}
		for _, dep := range pkg.DevDependencies {
			queue = append(queue, queueItem{name: dep, typ: types.DependencyDev})
		}
	}

	directNames := make(map[string]bool)
	for _, root := range roots {
		for _, dep := range root.Dependencies {
			directNames[dep] = true
		}
	}

	for name, pkg := range g.Packages {
		if pkg.IsLocal {
			continue
		}
		if typ, ok := visited[name]; ok {
			pkg.DependencyType = typ
		} else {
			pkg.DependencyType = types.DependencyUnknown
		}
		pkg.IsTransient = !directNames[name]
	}
}
