package pipeline

import (
	"sync"
	"time"
)

// AnalyzerStats is one analyzer's accumulated timing, grounded on
// original_source/src/benchmark.rs's AnalyzerStats.
type AnalyzerStats struct {
	TotalTime   time.Duration
	Invocations int
	IssuesFound int
	MinTime     time.Duration
	MaxTime     time.Duration
}

func (s *AnalyzerStats) record(d time.Duration, issues int) {
	s.TotalTime += d
	s.Invocations++
	s.IssuesFound += issues
	if s.MinTime == 0 || d < s.MinTime {
		s.MinTime = d
	}
	if d > s.MaxTime {
		s.MaxTime = d
	}
}

// AvgTime returns the mean time per invocation, or zero if none recorded.
func (s AnalyzerStats) AvgTime() time.Duration {
	if s.Invocations == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.Invocations)
}

// Benchmark is the optional collector enabled by --benchmark. Interior
// mutability behind a mutex per spec.md §5's shared-resource rule: "the
// benchmark collector ... interior mutability behind a lock; all analyzers
// record into it." Grounded on
// original_source/src/benchmark.rs's BenchmarkCollector.
type Benchmark struct {
	mu            sync.Mutex
	analyzers     map[string]*AnalyzerStats
	TotalFiles    int
	TotalPackages int
	TotalBytes    int64
	DiscoveryTime time.Duration
	FileReadTime  time.Duration
	PrefetchTime  time.Duration
}

// NewBenchmark constructs an empty collector.
func NewBenchmark() *Benchmark {
	return &Benchmark{analyzers: make(map[string]*AnalyzerStats)}
}

// RecordAnalyzer records one analyzer invocation's elapsed time and issue
// count.
func (b *Benchmark) RecordAnalyzer(name string, d time.Duration, issues int) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.analyzers[name]
	if !ok {
		s = &AnalyzerStats{}
		b.analyzers[name] = s
	}
	s.record(d, issues)
}

// RecordFile records one file having been read and analyzed.
func (b *Benchmark) RecordFile(bytes int64) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.TotalFiles++
	b.TotalBytes += bytes
}

// RecordPackage records one package having completed analysis.
func (b *Benchmark) RecordPackage() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.TotalPackages++
}

// AddDiscoveryTime accumulates time spent in package discovery.
func (b *Benchmark) AddDiscoveryTime(d time.Duration) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.DiscoveryTime += d
}

// AddPrefetchTime accumulates time spent in the prefetch phase.
func (b *Benchmark) AddPrefetchTime(d time.Duration) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.PrefetchTime += d
}

// Snapshot is a point-in-time copy of the collected stats, safe to print
// without holding the lock.
type Snapshot struct {
	Analyzers     map[string]AnalyzerStats
	TotalFiles    int
	TotalPackages int
	TotalBytes    int64
	DiscoveryTime time.Duration
	FileReadTime  time.Duration
	PrefetchTime  time.Duration
}

// Snapshot returns a copy of the current collector state.
func (b *Benchmark) Snapshot() Snapshot {
	if b == nil {
		return Snapshot{Analyzers: map[string]AnalyzerStats{}}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := Snapshot{
		Analyzers:     make(map[string]AnalyzerStats, len(b.analyzers)),
		TotalFiles:    b.TotalFiles,
		TotalPackages: b.TotalPackages,
		TotalBytes:    b.TotalBytes,
		DiscoveryTime: b.DiscoveryTime,
		FileReadTime:  b.FileReadTime,
		PrefetchTime:  b.PrefetchTime,
	}
	for name, s := range b.analyzers {
		out.Analyzers[name] = *s
	}
	return out
}
