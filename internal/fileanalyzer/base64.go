package fileanalyzer

import (
	"regexp"

	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

var base64RunPattern = regexp.MustCompile(`[A-Za-z0-9+/]{40,}={0,2}`)

// Base64Analyzer scans for long runs of base64-alphabet characters, a weak
// signal often combined with other analyzers' findings.
type Base64Analyzer struct{}

func (a *Base64Analyzer) Name() string                   { return "base64" }
func (a *Base64Analyzer) UsesAST() bool                   { return false }
func (a *Base64Analyzer) RequiresNetwork() bool           { return false }
func (a *Base64Analyzer) Interest() astindex.NodeInterest { return 0 }

func (a *Base64Analyzer) Analyze(ctx *FileContext) []types.Issue {
	if !ctx.Config.isEnabled() {
		return nil
	}
	minLen := ctx.Config.minBufferLength(1000)

	var issues []types.Issue
	for _, loc := range base64RunPattern.FindAllStringIndex(ctx.Source, -1) {
		run := ctx.Source[loc[0]:loc[1]]
		if len(run) < minLen {
			continue
		}
		preview := run
		if len(preview) > 40 {
			preview = preview[:40] + "..."
		}
		line := astindex.LineFromOffset(ctx.Source, loc[0])
		issues = append(issues, newIssue(ctx, a.Name(), "base64", line,
			"Long base64-like run detected (len="+itoa(len(run))+")", types.SeverityLow, preview))
	}
	return issues
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
