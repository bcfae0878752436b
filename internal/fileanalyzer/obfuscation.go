package fileanalyzer

import (
	"regexp"
	"strings"

	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

const defaultMinStringLength = 200

var numArrayRegex = regexp.MustCompile(`[\[,]\s*\d{1,3}\s*(?:,\s*\d{1,3}\s*){19,}\]?`)

// ObfuscationAnalyzer flags long string literals and large numeric-array
// literals, both common payload-hiding idioms.
type ObfuscationAnalyzer struct{}

func (a *ObfuscationAnalyzer) Name() string                   { return "obfuscation" }
func (a *ObfuscationAnalyzer) UsesAST() bool                   { return true }
func (a *ObfuscationAnalyzer) RequiresNetwork() bool           { return false }
func (a *ObfuscationAnalyzer) Interest() astindex.NodeInterest { return astindex.InterestStringLiterals }

func (a *ObfuscationAnalyzer) Analyze(ctx *FileContext) []types.Issue {
	if !ctx.Config.isEnabled() || ctx.Ast == nil {
		return nil
	}
	minLen := ctx.Config.minStringLength(defaultMinStringLength)
	var issues []types.Issue

	for _, lit := range ctx.Ast.StringLiterals {
		if len(lit.Value) >= minLen {
			preview := lit.Value
			if len(preview) > 40 {
				preview = preview[:40] + "..."
			}
			issues = append(issues, newIssue(ctx, a.Name(), "obfuscation", lit.Line,
				"Unusually long string literal, possible encoded payload", types.SeverityLow, preview))
		}
	}

	if numArrayRegex.MatchString(ctx.Source) {
		for i, line := range strings.Split(ctx.Source, "\n") {
			if numArrayRegex.MatchString(line) {
				issues = append(issues, newIssue(ctx, a.Name(), "obfuscation", i+1,
					"Large numeric array literal, possible encoded payload", types.SeverityLow, ""))
			}
		}
	}
	return issues
}
