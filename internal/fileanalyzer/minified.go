package fileanalyzer

import (
	"strings"

	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

const minifiedLongLine = 1000

// MinifiedAnalyzer flags long lines and low whitespace ratio, a heuristic
// for minified/obfuscated source worth a closer look.
type MinifiedAnalyzer struct{}

func (a *MinifiedAnalyzer) Name() string                   { return "minified" }
func (a *MinifiedAnalyzer) UsesAST() bool                   { return false }
func (a *MinifiedAnalyzer) RequiresNetwork() bool           { return false }
func (a *MinifiedAnalyzer) Interest() astindex.NodeInterest { return 0 }

func (a *MinifiedAnalyzer) Analyze(ctx *FileContext) []types.Issue {
	if !ctx.Config.isEnabled() {
		return nil
	}
	var issues []types.Issue

	lines := strings.Split(ctx.Source, "\n")
	for i, line := range lines {
		if len(line) > minifiedLongLine {
			preview := line
			if len(preview) > 80 {
				preview = preview[:80] + "..."
			}
			issues = append(issues, newIssue(ctx, a.Name(), "minified", i+1,
				"Line exceeds 1000 characters, likely minified", types.SeverityLow, preview))
		}
	}

	if len(ctx.Source) > 500 {
		whitespace := 0
		for _, r := range ctx.Source {
			if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
				whitespace++
			}
		}
		ratio := float64(whitespace) / float64(len(ctx.Source))
		if ratio < 0.05 {
			issues = append(issues, newIssue(ctx, a.Name(), "minified", 0,
				"Whitespace ratio below 5%, likely minified", types.SeverityLow, ""))
		}
	}
	return issues
}
