package fileanalyzer

import (
	"regexp"

	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

var bufferTrigger = NewTriggerMatcher("Buffer.")

var bufferCallPattern = regexp.MustCompile(`Buffer\.(?:from|alloc)\(\s*['"]([^'"]*)['"]`)

// BufferAnalyzer flags large Buffer.from/Buffer.alloc string payloads,
// often used to smuggle encoded secondary-stage payloads.
type BufferAnalyzer struct{}

func (a *BufferAnalyzer) Name() string                      { return "buffer" }
func (a *BufferAnalyzer) UsesAST() bool                      { return false }
func (a *BufferAnalyzer) RequiresNetwork() bool              { return false }
func (a *BufferAnalyzer) Interest() astindex.NodeInterest    { return 0 }

func (a *BufferAnalyzer) Analyze(ctx *FileContext) []types.Issue {
	if !ctx.Config.isEnabled() || !bufferTrigger.Match(ctx.Source) {
		return nil
	}
	minLen := ctx.Config.minBufferLength(100)

	var issues []types.Issue
	for _, m := range bufferCallPattern.FindAllStringSubmatchIndex(ctx.Source, -1) {
		payload := ctx.Source[m[2]:m[3]]
		if len(payload) < minLen {
			continue
		}
		line := astindex.LineFromOffset(ctx.Source, m[0])
		issues = append(issues, newIssue(ctx, a.Name(), "buffer", line,
			"Large Buffer payload detected", types.SeverityHigh, payload))
	}
	return issues
}
