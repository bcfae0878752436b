// Package pipeline implements the analyzer driver (C8): the five-phase
// orchestration of discovery, caching, prefetching, bounded-concurrency
// per-package analysis, and merge described in spec.md §4.8. Grounded on
// the teacher's internal/analysis/ast/analyzer.go's parseFiles bounded
// worker-pool idiom (semaphore + one parser per worker), generalized with
// golang.org/x/sync/errgroup across the driver's five phases.
package pipeline

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/internal/discover"
	"github.com/drodil/depspector/internal/fileanalyzer"
	"github.com/drodil/depspector/internal/pkganalyzer"
	"github.com/drodil/depspector/internal/prefetch"
	"github.com/drodil/depspector/internal/resultcache"
	"github.com/drodil/depspector/internal/trust"
	"github.com/drodil/depspector/pkg/logger"
	"github.com/drodil/depspector/pkg/types"
)

// Options controls one run of the driver.
type Options struct {
	Concurrency    int64
	Offline        bool
	FailFast       bool
	NoCache        bool
	IncludeTests   bool
	MaxFileSize    int64
	ASTTimeoutMs   int
	CacheMaxAge    time.Duration
	IgnorePatterns []string
	OnlyAnalyzers  []string // empty = every registered analyzer
	Exclude        []string
	ExcludePaths   []string
}

const defaultMaxFileSize = 2 * 1024 * 1024 // 2MB

// Packages is the subset of depgraph.Graph the driver needs, kept as an
// interface so internal/pipeline does not import internal/depgraph
// (avoids a cyclic-looking dependency and keeps the driver testable
// against a fake package list).
type Packages interface {
	DiscoveredPackages() []*types.PackageInfo
}

// FileAnalyzerConfig resolves a named file analyzer's tunables, typically
// pkg/config.Config.FileAnalyzerConfig.
type FileAnalyzerConfig func(name string) *fileanalyzer.Config

// PackageAnalyzerConfig resolves a named package analyzer's tunables,
// typically pkg/config.Config.PackageAnalyzerConfig.
type PackageAnalyzerConfig func(name string) *pkganalyzer.Config

// Driver runs one scan across a discovered package graph.
type Driver struct {
	Graph                 Packages
	Cache                 *resultcache.Cache // nil disables caching
	Prefetcher            *prefetch.Prefetcher
	FileAnalyzerConfig    FileAnalyzerConfig
	PackageAnalyzerConfig PackageAnalyzerConfig
	Options               Options
	Log                   *logger.Logger
	Benchmark             *Benchmark

	workspaceDirs map[string]bool // set once per Run, for discover.Options.WorkspaceDirs
	unused        []string        // ignore patterns that matched nothing, set by Run
}

func (d *Driver) maxFileSize() int64 {
	if d.Options.MaxFileSize > 0 {
		return d.Options.MaxFileSize
	}
	return defaultMaxFileSize
}

func (d *Driver) analyzerAllowed(name string) bool {
	if len(d.Options.OnlyAnalyzers) == 0 {
		return true
	}
	for _, n := range d.Options.OnlyAnalyzers {
		if n == name {
			return true
		}
	}
	return false
}

func (d *Driver) activeFileAnalyzers() []fileanalyzer.FileAnalyzer {
	var out []fileanalyzer.FileAnalyzer
	for _, a := range fileanalyzer.All() {
		if !d.analyzerAllowed(a.Name()) {
			continue
		}
		if d.FileAnalyzerConfig != nil {
			if cfg := d.FileAnalyzerConfig(a.Name()); cfg != nil && cfg.Enabled != nil && !*cfg.Enabled {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

func (d *Driver) activePackageAnalyzers() []pkganalyzer.PackageAnalyzer {
	var out []pkganalyzer.PackageAnalyzer
	for _, a := range pkganalyzer.All() {
		if !d.analyzerAllowed(a.Name()) {
			continue
		}
		if d.PackageAnalyzerConfig != nil {
			if cfg := d.PackageAnalyzerConfig(a.Name()); cfg != nil && cfg.Enabled != nil && !*cfg.Enabled {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

func (d *Driver) activeAnalyzerNames() []string {
	names := make([]string, 0, 24)
	for _, a := range d.activeFileAnalyzers() {
		names = append(names, a.Name())
	}
	for _, a := range d.activePackageAnalyzers() {
		names = append(names, a.Name())
	}
	return names
}

// Run executes the five phases of §4.8 and returns the merged result set.
func (d *Driver) Run(ctx context.Context) ([]types.AnalysisResult, error) {
	// Phase 1: enumerate.
	discoveryStart := time.Now()
	packages := d.Graph.DiscoveredPackages()
	d.Benchmark.AddDiscoveryTime(time.Since(discoveryStart))

	d.workspaceDirs = make(map[string]bool, len(packages))
	for _, pkg := range packages {
		if pkg.IsLocal {
			d.workspaceDirs[pkg.AbsolutePath] = true
		}
	}

	activeAnalyzers := d.activeAnalyzerNames()

	// Phase 2: cache scan (parallel, CPU-bound classification).
	cached, workItems := d.cacheScan(ctx, packages, activeAnalyzers)

	// Phase 3: prefetch (async, I/O-bound).
	var prefetched prefetch.PrefetchedData
	if !d.Options.Offline && d.Prefetcher != nil && d.Prefetcher.Store != nil {
		prefetched = d.Prefetcher.Store
		items := make([]prefetch.WorkItem, 0, len(workItems))
		for _, pkg := range workItems {
			if pkg.IsLocal {
				continue
			}
			items = append(items, prefetch.WorkItem{Name: pkg.Name, Version: pkg.Version})
		}
		prefetchStart := time.Now()
		if err := d.Prefetcher.Run(ctx, items); err != nil && d.Log != nil {
			d.Log.WithFields(map[string]interface{}{"error": err.Error()}).Warn("pipeline: prefetch phase returned an error; continuing with partial data")
		}
		d.Benchmark.AddPrefetchTime(time.Since(prefetchStart))
	}

	// Phase 4: per-package analysis, bounded concurrency.
	concurrency := d.Options.Concurrency
	if concurrency < 50 {
		concurrency = 50
	}
	sem := semaphore.NewWeighted(concurrency)
	g, gctx := errgroup.WithContext(ctx)

	tracker := newIgnoreTracker(d.Options.IgnorePatterns)
	analyzed := make([]types.AnalysisResult, len(workItems))

	for i, pkg := range workItems {
		i, pkg := i, pkg
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			result := d.analyzePackage(gctx, pkg, prefetched, tracker, activeAnalyzers)
			analyzed[i] = result
			d.Benchmark.RecordPackage()

			if d.Options.FailFast && len(result.Issues) > 0 {
				return errFailFast
			}
			return nil
		})
	}

	runErr := g.Wait()
	if runErr != nil && runErr != errFailFast {
		return nil, runErr
	}

	// Phase 5: merge.
	merged := make([]types.AnalysisResult, 0, len(cached)+len(analyzed))
	merged = append(merged, cached...)
	for _, r := range analyzed {
		if r.PackagePath != "" {
			merged = append(merged, r)
		}
	}

	if runErr == errFailFast {
		for _, r := range merged {
			if len(r.Issues) > 0 {
				return []types.AnalysisResult{r}, nil
			}
		}
	}

	d.unused = tracker.Unused()
	return merged, nil
}

// errFailFast is a sentinel used to unwind the errgroup early when
// fail-fast observes the first non-empty result; it is not a real error
// and Run translates it back into a truncated, successful result.
var errFailFast = errSentinel("fail-fast")

type errSentinel string

func (e errSentinel) Error() string { return string(e) }

// Unused returns the ignore IDs from the most recent Run that matched no
// issue, surfaced informationally by the CLI per spec.md §7.
func (d *Driver) Unused() []string { return d.unused }

func (d *Driver) cacheScan(ctx context.Context, packages []*types.PackageInfo, activeAnalyzers []string) (cached []types.AnalysisResult, workItems []*types.PackageInfo) {
	if d.Cache == nil || d.Options.NoCache {
		return nil, packages
	}

	type scanResult struct {
		pkg    *types.PackageInfo
		result *types.AnalysisResult
	}

	results := make([]scanResult, len(packages))
	concurrency := int64(runtime.NumCPU())
	sem := semaphore.NewWeighted(concurrency)
	var wg sync.WaitGroup

	for i, pkg := range packages {
		i, pkg := i, pkg
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sem.Acquire(ctx, 1)
			defer sem.Release(1)

			if pkg.IsLocal {
				return
			}
			hash, err := resultcache.ContentHash(pkg.AbsolutePath)
			if err != nil {
				return
			}
			issues, ok := d.Cache.Lookup(pkg.Name, pkg.Version, hash, d.Options.CacheMaxAge, activeAnalyzers)
			if !ok {
				return
			}
			results[i] = scanResult{pkg: pkg, result: &types.AnalysisResult{
				PackagePath:    pkg.AbsolutePath,
				Package:        pkg.Name,
				Version:        pkg.Version,
				Issues:         issues,
				TrustScore:     trust.Score(issues),
				DependencyType: pkg.DependencyType,
				IsTransient:    pkg.IsTransient,
				IsFromCache:    true,
			}}
		}()
	}
	wg.Wait()

	for i, pkg := range packages {
		if results[i].result != nil {
			cached = append(cached, *results[i].result)
		} else {
			workItems = append(workItems, pkg)
		}
	}
	return cached, workItems
}

func (d *Driver) analyzePackage(ctx context.Context, pkg *types.PackageInfo, prefetched prefetch.PrefetchedData, tracker *ignoreTracker, activeAnalyzers []string) types.AnalysisResult {
	var mu sync.Mutex
	var issues []types.Issue

	var wg sync.WaitGroup

	// 4a: package-level analyzers, concurrently.
	pkgCtx := &pkganalyzer.PackageContext{
		Name:     pkg.Name,
		Version:  pkg.Version,
		Path:     pkg.AbsolutePath,
		Manifest: pkg.Manifest,
		IsLocal:  pkg.IsLocal,
		Offline:  d.Options.Offline,
	}
	if prefetched != nil {
		pkgCtx.Prefetched = prefetched
	}

	for _, a := range d.activePackageAnalyzers() {
		a := a
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg := pkgCtx
			localCfg := *cfg
			if d.PackageAnalyzerConfig != nil {
				localCfg.Config = d.PackageAnalyzerConfig(a.Name())
			}
			start := time.Now()
			found := pkganalyzer.RunSafely(a, &localCfg)
			d.Benchmark.RecordAnalyzer(a.Name(), time.Since(start), len(found))

			mu.Lock()
			issues = append(issues, found...)
			mu.Unlock()
		}()
	}

	// 4b/4c: discover files, then analyze each (concurrently over files,
	// sequentially over analyzers per file).
	files, _ := discover.Walk(pkg.AbsolutePath, discover.Options{
		IsRootPackage: pkg.IsRoot,
		WorkspaceDirs: d.workspaceDirs,
		Exclude:       d.Options.Exclude,
		ExcludePaths:  d.Options.ExcludePaths,
		IncludeTests:  d.Options.IncludeTests,
	})

	fileAnalyzers := d.activeFileAnalyzers()

	// One parser per worker; a parser is never used by two goroutines at once.
	workers := runtime.NumCPU()
	if len(files) < workers {
		workers = len(files)
	}
	parsers := make(chan *astindex.Parser, workers)
	for i := 0; i < workers; i++ {
		p := astindex.NewParser(d.Log)
		defer p.Close()
		parsers <- p
	}

	fileSem := semaphore.NewWeighted(int64(runtime.NumCPU()))
	var fileWG sync.WaitGroup
	for _, f := range files {
		f := f
		fileWG.Add(1)
		go func() {
			defer fileWG.Done()
			_ = fileSem.Acquire(ctx, 1)
			defer fileSem.Release(1)
			parser := <-parsers
			defer func() { parsers <- parser }()

			found := d.analyzeFile(ctx, f, pkg, fileAnalyzers, parser)
			mu.Lock()
			issues = append(issues, found...)
			mu.Unlock()
		}()
	}
	fileWG.Wait()
	wg.Wait()

	// 4d: ignore filter, then dedupe.
	issues = tracker.Filter(issues)
	issues = dedupeByID(issues)

	result := types.AnalysisResult{
		PackagePath:    pkg.AbsolutePath,
		Package:        pkg.Name,
		Version:        pkg.Version,
		Issues:         issues,
		TrustScore:     trust.Score(issues),
		DependencyType: pkg.DependencyType,
		IsTransient:    pkg.IsTransient,
		IsFromCache:    false,
	}
	d.cacheWrite(pkg, result, activeAnalyzers)
	return result
}

func (d *Driver) analyzeFile(ctx context.Context, path string, pkg *types.PackageInfo, analyzers []fileanalyzer.FileAnalyzer, parser *astindex.Parser) []types.Issue {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	d.Benchmark.RecordFile(info.Size())

	var ast *astindex.ParsedAst
	if info.Size() <= d.maxFileSize() && parser.IsSupported(path) {
		ast, _ = parser.Parse(ctx, path, content, d.Options.ASTTimeoutMs)
	}

	fileCtx := &fileanalyzer.FileContext{
		Source:   string(content),
		FilePath: path,
		Package:  pkg.Name,
		Version:  pkg.Version,
		Ast:      ast,
	}

	var issues []types.Issue
	for _, a := range analyzers {
		if a.UsesAST() && ast == nil {
			continue
		}
		localCtx := *fileCtx
		if d.FileAnalyzerConfig != nil {
			localCtx.Config = d.FileAnalyzerConfig(a.Name())
		}
		start := time.Now()
		found := fileanalyzer.RunSafely(a, &localCtx)
		d.Benchmark.RecordAnalyzer(a.Name(), time.Since(start), len(found))
		issues = append(issues, found...)
	}
	return issues
}

func (d *Driver) cacheWrite(pkg *types.PackageInfo, result types.AnalysisResult, activeAnalyzers []string) {
	if d.Cache == nil || d.Options.NoCache || pkg.IsLocal {
		return
	}
	hash, err := resultcache.ContentHash(pkg.AbsolutePath)
	if err != nil {
		if d.Log != nil {
			d.Log.WithFields(map[string]interface{}{"package": pkg.Name, "error": err.Error()}).Warn("pipeline: content hash failed; skipping cache write")
		}
		return
	}
	entry := resultcache.Entry{
		Version:      pkg.Version,
		ContentHash:  hash,
		Results:      result.Issues,
		AnalyzersRun: activeAnalyzers,
		Timestamp:    time.Now(),
	}
	if err := d.Cache.Put(pkg.Name, pkg.Version, entry); err != nil && d.Log != nil {
		d.Log.WithFields(map[string]interface{}{"package": pkg.Name, "error": err.Error()}).Warn("pipeline: cache write failed")
	}
}
