package fileanalyzer

import "strings"

// TriggerMatcher is the "precompiled multi-literal matcher" described in
// §4.3 as the shared fast path every file analyzer runs before doing any
// real work: if none of a handful of trigger substrings appear in the raw
// text, the analyzer returns immediately.
//
// No Aho-Corasick library exists anywhere in the example corpus (see
// DESIGN.md). The teacher's own ArchitecturePatternDetector
// (internal/analysis/pattern_detector.go) establishes the idiom used
// throughout the pack for exactly this kind of check: a flat list of
// strings.Contains calls. With trigger lists never exceeding a dozen short
// literals, a hand-built automaton buys nothing a linear scan doesn't
// already give, so this stays a thin wrapper over strings.Contains.
type TriggerMatcher struct {
	triggers []string
}

// NewTriggerMatcher precompiles (here: simply stores) a trigger list.
func NewTriggerMatcher(triggers ...string) *TriggerMatcher {
	return &TriggerMatcher{triggers: triggers}
}

// Match reports whether any trigger substring occurs in text.
func (m *TriggerMatcher) Match(text string) bool {
	for _, t := range m.triggers {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
