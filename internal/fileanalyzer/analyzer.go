// Package fileanalyzer implements the fourteen file-level pattern
// detectors (C3) that consume AST events or raw text to report issues.
// The trigger + severity-classification idiom here is grounded on the
// teacher's ArchitecturePatternDetector in internal/analysis/pattern_detector.go.
package fileanalyzer

import (
	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/internal/issueid"
	"github.com/drodil/depspector/pkg/types"
)

// Config carries the per-analyzer tunables referenced throughout §4.3.
// Every field is optional; zero values fall back to the documented default.
type Config struct {
	Enabled               *bool
	SeverityOverride      *types.Severity
	MinBufferLength       int
	AllowedEnvVars        []string
	AdditionalDangerPaths []string
	AllowedIPs            []string
	AllowedHosts          []string
	MinStringLength       int
	AllowedCommands       []string
}

func (c *Config) minBufferLength(def int) int {
	if c == nil || c.MinBufferLength == 0 {
		return def
	}
	return c.MinBufferLength
}

func (c *Config) minStringLength(def int) int {
	if c == nil || c.MinStringLength == 0 {
		return def
	}
	return c.MinStringLength
}

func (c *Config) isEnabled() bool {
	return c == nil || c.Enabled == nil || *c.Enabled
}

func (c *Config) allowedCommands() []string {
	if c == nil {
		return nil
	}
	return c.AllowedCommands
}

// FileContext carries everything one file analyzer invocation needs.
type FileContext struct {
	Source      string
	FilePath    string
	Package     string
	Version     string
	Config      *Config
	Ast         *astindex.ParsedAst // optional; nil if size-skipped or not requested
}

// FileAnalyzer is the common shape every C3 detector implements.
type FileAnalyzer interface {
	Name() string
	UsesAST() bool
	RequiresNetwork() bool
	Interest() astindex.NodeInterest
	Analyze(ctx *FileContext) []types.Issue
}

// All returns the closed, compile-time-known set of file analyzers, keyed
// by stable name (SPEC_FULL.md §9: "Analyzer discovery and registration").
func All() []FileAnalyzer {
	return []FileAnalyzer{
		&BufferAnalyzer{},
		&Base64Analyzer{},
		&DynamicAnalyzer{},
		&EnvAnalyzer{},
		&EvalAnalyzer{},
		&FsAnalyzer{},
		&IPAnalyzer{},
		&MetadataAnalyzer{},
		&MinifiedAnalyzer{},
		&NetworkAnalyzer{},
		&ObfuscationAnalyzer{},
		&PollutionAnalyzer{},
		&ProcessAnalyzer{},
		&SecretsAnalyzer{},
	}
}

// newIssue builds an Issue with a stable ID computed via internal/issueid,
// applying any configured severity override.
func newIssue(ctx *FileContext, analyzer, issueType string, line int, message string, sev types.Severity, code string) types.Issue {
	if ctx.Config != nil && ctx.Config.SeverityOverride != nil {
		sev = *ctx.Config.SeverityOverride
	}
	return types.Issue{
		ID:        issueid.Generate(analyzer, ctx.Package, ctx.FilePath, line, message),
		IssueType: issueType,
		Analyzer:  analyzer,
		Line:      line,
		File:      ctx.FilePath,
		Message:   message,
		Severity:  sev,
		Code:      code,
		Package:   ctx.Package,
	}
}

// RunSafely invokes an analyzer and isolates any panic to a nil/empty
// result, matching the fault-isolation requirement in §4.2: "any panic
// inside an analyzer during file analysis is caught; ... no issues are
// produced for that analyzer on that file; other analyzers continue."
func RunSafely(a FileAnalyzer, ctx *FileContext) (issues []types.Issue) {
	defer func() {
		if r := recover(); r != nil {
			issues = nil
		}
	}()
	return a.Analyze(ctx)
}

// resolveArgString resolves a call argument to a best-effort string value
// via the VariableMap, covering the StringLiteral/TemplateLiteral/Identifier
// ArgInfo variants referenced throughout §4.3.
func resolveArgString(arg astindex.ArgInfo, vm *astindex.VariableMap) (string, bool) {
	switch arg.Kind {
	case astindex.ArgStringLiteral, astindex.ArgTemplateLiteral:
		return arg.Value, true
	case astindex.ArgIdentifier:
		if vm != nil {
			if v, ok := vm.Resolve(arg.Value); ok {
				return v, true
			}
		}
		return "", false
	default:
		return "", false
	}
}
