// Package types holds the data model shared across depspector's analyzers,
// pipeline, cache, and reporters.
package types

import (
	"strings"
)

// Severity is a totally ordered enumeration of issue severities.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// ParseSeverity parses a case-insensitive severity string. Anything
// unrecognized maps to Low on parse, but a Severity is never serialized
// lossily once constructed.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "Critical"
	case SeverityHigh:
		return "High"
	case SeverityMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// MarshalJSON preserves the enumeration string form on serialization.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON restores a Severity from its string form.
func (s *Severity) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	*s = ParseSeverity(str)
	return nil
}

// MarshalYAML serializes Severity as its string form for the YAML report
// writer (gopkg.in/yaml.v3 does not consult json.Marshaler).
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Issue is a single finding emitted by an analyzer. It is immutable after
// emission; deduplication within one AnalysisResult is by ID.
type Issue struct {
	ID        string   `json:"id" yaml:"id"`
	IssueType string   `json:"issueType" yaml:"issueType"`
	Analyzer  string   `json:"analyzer" yaml:"analyzer"`
	Line      int      `json:"line" yaml:"line"`
	File      string   `json:"file,omitempty" yaml:"file,omitempty"`
	Message   string   `json:"message" yaml:"message"`
	Severity  Severity `json:"severity" yaml:"severity"`
	Code      string   `json:"code,omitempty" yaml:"code,omitempty"`
	Package   string   `json:"package,omitempty" yaml:"package,omitempty"`
	URL       string   `json:"url,omitempty" yaml:"url,omitempty"`
}

// DependencyType is the BFS-assigned role of a package in the dependency
// graph, with priority ordering Direct > Peer > Optional > Dev used for
// upgrades during classification.
type DependencyType int

const (
	DependencyUnknown DependencyType = iota
	DependencyDev
	DependencyOptional
	DependencyPeer
	DependencyDirect
	DependencyLocal
)

func (d DependencyType) String() string {
	switch d {
	case DependencyDirect:
		return "direct"
	case DependencyDev:
		return "dev"
	case DependencyOptional:
		return "optional"
	case DependencyPeer:
		return "peer"
	case DependencyLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Priority returns the BFS upgrade priority; higher wins. Local and Unknown
// are not part of the upgrade lattice (Local is assigned directly at
// discovery, Unknown is the absence of any BFS assignment).
func (d DependencyType) Priority() int {
	switch d {
	case DependencyDirect:
		return 4
	case DependencyPeer:
		return 3
	case DependencyOptional:
		return 2
	case DependencyDev:
		return 1
	default:
		return 0
	}
}

// PackageInfo describes one enumerated installed package.
type PackageInfo struct {
	Name            string
	Version         string
	AbsolutePath    string
	Manifest        map[string]interface{}
	DependencyType  DependencyType
	IsTransient     bool
	IsRoot          bool
	IsLocal         bool
	Dependencies    []string
	DevDependencies []string
	OptionalDeps    []string
	PeerDeps        []string
}

// TrustScore is the per-package security trust score derived from issue
// severity counts with logarithmic diminishing returns (see internal/trust).
type TrustScore struct {
	Score         float64 `json:"score" yaml:"score"`
	CriticalCount int     `json:"criticalCount" yaml:"criticalCount"`
	HighCount     int     `json:"highCount" yaml:"highCount"`
	MediumCount   int     `json:"mediumCount" yaml:"mediumCount"`
	LowCount      int     `json:"lowCount" yaml:"lowCount"`
}

// Level maps the numeric score to the qualitative trust level.
func (t TrustScore) Level() string {
	switch {
	case t.Score >= 90:
		return "High"
	case t.Score >= 70:
		return "Moderate"
	case t.Score >= 50:
		return "Low"
	default:
		return "Very Low"
	}
}

// AnalysisResult is the per-(package,version) outcome of a scan.
type AnalysisResult struct {
	PackagePath    string         `json:"packagePath" yaml:"packagePath"`
	Package        string         `json:"package,omitempty" yaml:"package,omitempty"`
	Version        string         `json:"version,omitempty" yaml:"version,omitempty"`
	Issues         []Issue        `json:"issues" yaml:"issues"`
	TrustScore     TrustScore     `json:"trustScore" yaml:"trustScore"`
	DependencyType DependencyType `json:"dependencyType" yaml:"dependencyType"`
	IsTransient    bool           `json:"isTransient" yaml:"isTransient"`
	IsFromCache    bool           `json:"isFromCache" yaml:"isFromCache"`
}

// DependencyTypeName returns the string form of the result's
// DependencyType.
func (r AnalysisResult) DependencyTypeName() string {
	return r.DependencyType.String()
}

// MarshalJSON serializes DependencyType as its string form.
func (d DependencyType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// MarshalYAML serializes DependencyType as its string form for the YAML
// report writer (gopkg.in/yaml.v3 does not consult json.Marshaler).
func (d DependencyType) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}
