package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drodil/depspector/pkg/types"
)

func TestClassifyDirectAndTransientDependencies(t *testing.T) {
	graph := &Graph{Packages: map[string]*types.PackageInfo{
		"root": {Name: "root", IsLocal: true, Dependencies: []string{"a"}},
		"a":    {Name: "a", Dependencies: []string{"b"}},
		"b":    {Name: "b"},
	}}
	graph.Classify()

	assert.Equal(t, types.DependencyDirect, graph.Packages["a"].DependencyType)
	assert.False(t, graph.Packages["a"].IsTransient)

	assert.Equal(t, types.DependencyDirect, graph.Packages["b"].DependencyType)
	assert.True(t, graph.Packages["b"].IsTransient, "b is only reachable transitively, not a direct root dependency")
}

func TestClassifyDevAndOptionalAndPeer(t *testing.T) {
	graph := &Graph{Packages: map[string]*types.PackageInfo{
		"root": {
			Name: "root", IsLocal: true,
			DevDependencies: []string{"devdep"},
			OptionalDeps:    []string{"optdep"},
			PeerDeps:        []string{"peerdep"},
		},
		"devdep":  {Name: "devdep"},
		"optdep":  {Name: "optdep"},
		"peerdep": {Name: "peerdep"},
	}}
	graph.Classify()

	assert.Equal(t, types.DependencyDev, graph.Packages["devdep"].DependencyType)
	assert.Equal(t, types.DependencyOptional, graph.Packages["optdep"].DependencyType)
	assert.Equal(t, types.DependencyPeer, graph.Packages["peerdep"].DependencyType)
}

func TestClassifyUpgradesToHigherPriorityType(t *testing.T) {
	graph := &Graph{Packages: map[string]*types.PackageInfo{
		"root": {
			Name: "root", IsLocal: true,
			Dependencies:    []string{"shared"},
			DevDependencies: []string{"shared"},
		},
		"shared": {Name: "shared"},
	}}
	graph.Classify()

	assert.Equal(t, types.DependencyDirect, graph.Packages["shared"].DependencyType,
		"direct outranks dev when the same package is reachable both ways")
}

func TestClassifyUnreachablePackageIsUnknown(t *testing.T) {
	graph := &Graph{Packages: map[string]*types.PackageInfo{
		"root":     {Name: "root", IsLocal: true, Dependencies: []string{"a"}},
		"a":        {Name: "a"},
		"orphaned": {Name: "orphaned"},
	}}
	graph.Classify()

	assert.Equal(t, types.DependencyUnknown, graph.Packages["orphaned"].DependencyType)
}
