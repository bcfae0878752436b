package prefetch

import (
	"context"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Prefetcher runs the two concurrent workloads of §4.5 ahead of per-package
// analysis: registry metadata fetch and vulnerability batch query. Bounded
// fan-out follows the teacher's semaphore-channel idiom in
// internal/analysis/ast/analyzer.go's parseFiles, generalized to
// golang.org/x/sync/errgroup + semaphore.Weighted.
type Prefetcher struct {
	Store       *Store
	VulnClient  *VulnClient
	Concurrency int64
}

// highestVersions groups work items by package name and selects, for each
// name, the highest-semver version among the encountered instances. Items
// whose version fails to parse for every candidate fall back to the first
// encountered version string, matching the original's filter_map pattern.
func highestVersions(items []WorkItem) map[string]string {
	best := make(map[string]*semver.Version)
	fallback := make(map[string]string)
	out := make(map[string]string)

	for _, item := range items {
		if _, ok := fallback[item.Name]; !ok {
			fallback[item.Name] = item.Version
		}
		v, err := semver.NewVersion(item.Version)
		if err != nil {
			continue
		}
		if cur, ok := best[item.Name]; !ok || v.GreaterThan(cur) {
			best[item.Name] = v
		}
	}

	for name, v := range best {
		out[name] = v.Original()
	}
	for name, v := range fallback {
		if _, ok := out[name]; !ok {
			out[name] = v
		}
	}
	return out
}

// Run fetches metadata for the highest-semver version of each distinct
// package name, and vulnerability data for every exact (name, version)
// pair, populating p.Store for subsequent C4 analyzer lookups.
func (p *Prefetcher) Run(ctx context.Context, items []WorkItem) error {
	g, ctx := errgroup.WithContext(ctx)

	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	sem := semaphore.NewWeighted(concurrency)

	if p.Store != nil && p.Store.client != nil {
		for name, version := range highestVersions(items) {
			name, version := name, version
			g.Go(func() error {
				if err := sem.Acquire(ctx, 1); err != nil {
					return err
				}
				defer sem.Release(1)

				doc, err := p.Store.client.FetchRaw(ctx, name)
				if err != nil {
					if IsNotFound(err) {
						return nil
					}
					return nil // network/registry error: analyzers simply get no metadata
				}
				meta := parseRegistryDocument(name, doc)
				p.Store.PutMetadata(name, version, meta)
				return nil
			})
		}
	}

	if p.VulnClient != nil && p.Store != nil {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			results, err := p.VulnClient.QueryBatch(ctx, items)
			if err != nil {
				return nil // vulnerability service failure: analyzers simply get no findings
			}
			for key, vulns := range results {
				name, version := splitNameVersion(key)
				p.Store.PutVulnerabilities(name, version, vulns)
			}
			return nil
		})
	}

	return g.Wait()
}

func splitNameVersion(key string) (string, string) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '@' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
