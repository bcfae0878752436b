// Package pkganalyzer implements the nine package-level detectors (C4)
// that run against manifest JSON and prefetched registry/vulnerability
// data rather than source text. Style grounded on the teacher's
// internal/analysis/license_checker.go and update_checker.go: a checker
// struct wrapping an HTTP-backed data source, classifying severity from
// a lookup table.
package pkganalyzer

import (
	"github.com/drodil/depspector/internal/issueid"
	"github.com/drodil/depspector/internal/prefetch"
	"github.com/drodil/depspector/pkg/types"
)

// Config carries the per-analyzer tunables named throughout §4.4.
type Config struct {
	Enabled                  *bool
	SeverityOverride         *types.Severity
	HoursSincePublish        int
	DaysSincePreviousPublish int
	WhitelistedPublishers    []string
	AllowedScripts           []string
	AllowedCommands          []string
	TyposquatAdditions       []string
	AllowedLicenses          []string
}

func (c *Config) isEnabled() bool {
	return c == nil || c.Enabled == nil || *c.Enabled
}

func (c *Config) hoursSincePublish() int {
	if c == nil || c.HoursSincePublish == 0 {
		return 72
	}
	return c.HoursSincePublish
}

func (c *Config) daysSincePreviousPublish() int {
	if c == nil || c.DaysSincePreviousPublish == 0 {
		return 365
	}
	return c.DaysSincePreviousPublish
}

func (c *Config) whitelistedPublisher(name string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.WhitelistedPublishers {
		if p == name {
			return true
		}
	}
	return false
}

// PackageContext carries everything one package analyzer invocation needs.
type PackageContext struct {
	Name       string
	Version    string
	Path       string
	Manifest   map[string]interface{}
	Config     *Config
	Prefetched prefetch.PrefetchedData // nil when offline or not fetched
	IsLocal    bool
	Offline    bool
}

// PackageAnalyzer is the common shape every C4 detector implements.
type PackageAnalyzer interface {
	Name() string
	RequiresNetwork() bool
	Analyze(ctx *PackageContext) []types.Issue
}

// All returns the closed set of package analyzers.
func All() []PackageAnalyzer {
	return []PackageAnalyzer{
		&CVEAnalyzer{},
		&CooldownAnalyzer{},
		&DeprecatedAnalyzer{},
		&DormantAnalyzer{},
		&ReputationAnalyzer{},
		&NativeAnalyzer{},
		&ScriptsAnalyzer{},
		&TyposquatAnalyzer{},
		&LicenseAnalyzer{},
	}
}

func newIssue(ctx *PackageContext, analyzer, issueType string, line int, message string, sev types.Severity, code string) types.Issue {
	if ctx.Config != nil && ctx.Config.SeverityOverride != nil {
		sev = *ctx.Config.SeverityOverride
	}
	return types.Issue{
		ID:        issueid.Generate(analyzer, ctx.Name, ctx.Path, line, message),
		IssueType: issueType,
		Analyzer:  analyzer,
		Line:      line,
		Message:   message,
		Severity:  sev,
		Code:      code,
		Package:   ctx.Name,
	}
}

// RunSafely mirrors fileanalyzer.RunSafely's fault isolation for C4.
func RunSafely(a PackageAnalyzer, ctx *PackageContext) (issues []types.Issue) {
	defer func() {
		if r := recover(); r != nil {
			issues = nil
		}
	}()
	return a.Analyze(ctx)
}

// manifestString reads a string field off the manifest map, returning
// ("", false) if absent or not a string.
func manifestString(manifest map[string]interface{}, key string) (string, bool) {
	v, ok := manifest[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// manifestStringMap reads an object field off the manifest map whose
// values are all strings (e.g. "scripts", "dependencies").
func manifestStringMap(manifest map[string]interface{}, key string) map[string]string {
	raw, ok := manifest[key].(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
