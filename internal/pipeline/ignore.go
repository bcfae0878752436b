package pipeline

import (
	"sync"

	"github.com/drodil/depspector/internal/issueid"
	"github.com/drodil/depspector/pkg/types"
)

// ignoreTracker applies the ignore-ID filter (spec.md §4.1's matching rule)
// and records, across all worker goroutines, which user-supplied patterns
// actually matched an issue — the complement is reported as "unused
// ignore IDs" per §7. Guarded by a mutex per §5's shared-resource rule for
// "the used-ignored-IDs set".
type ignoreTracker struct {
	mu       sync.Mutex
	patterns []string
	used     map[string]bool
}

func newIgnoreTracker(patterns []string) *ignoreTracker {
	return &ignoreTracker{patterns: patterns, used: make(map[string]bool)}
}

// Filter drops every issue whose ID matches any ignore pattern, recording
// the matched pattern(s) as used.
func (t *ignoreTracker) Filter(issues []types.Issue) []types.Issue {
	if len(t.patterns) == 0 {
		return issues
	}
	out := make([]types.Issue, 0, len(issues))
	for _, issue := range issues {
		matched := false
		for _, pattern := range t.patterns {
			if issueid.MatchesIgnore(issue.ID, pattern) {
				matched = true
				t.markUsed(pattern)
			}
		}
		if !matched {
			out = append(out, issue)
		}
	}
	return out
}

func (t *ignoreTracker) markUsed(pattern string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.used[pattern] = true
}

// Unused returns every supplied pattern that matched no issue across the
// whole run, in the order originally supplied.
func (t *ignoreTracker) Unused() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for _, p := range t.patterns {
		if !t.used[p] {
			out = append(out, p)
		}
	}
	return out
}

// dedupeByID keeps only the first occurrence of each issue ID, preserving
// detection order, per spec.md §4.8 step 4d.
func dedupeByID(issues []types.Issue) []types.Issue {
	seen := make(map[string]bool, len(issues))
	out := make([]types.Issue, 0, len(issues))
	for _, issue := range issues {
		if seen[issue.ID] {
			continue
		}
		seen[issue.ID] = true
		out = append(out, issue)
	}
	return out
}
