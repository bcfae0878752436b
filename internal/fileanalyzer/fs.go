package fileanalyzer

import (
	"strings"

	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

var fsTrigger = NewTriggerMatcher("fs.", "promises.")

var defaultDangerousPaths = []string{
	"/etc/passwd", "/etc/shadow", "/etc/hosts", "/etc/sudoers",
	".ssh/id_rsa", ".ssh/authorized_keys", ".aws/credentials",
	".npmrc", ".gitconfig", "/proc/",
}

var fsWriteMethods = map[string]bool{
	"writeFile": true, "writeFileSync": true, "appendFile": true, "appendFileSync": true,
}

// FsAnalyzer flags filesystem calls that target sensitive paths or that
// write/watch files.
type FsAnalyzer struct{}

func (a *FsAnalyzer) Name() string                   { return "fs" }
func (a *FsAnalyzer) UsesAST() bool                   { return true }
func (a *FsAnalyzer) RequiresNetwork() bool           { return false }
func (a *FsAnalyzer) Interest() astindex.NodeInterest { return astindex.InterestCalls }

func (a *FsAnalyzer) Analyze(ctx *FileContext) []types.Issue {
	if !ctx.Config.isEnabled() || !fsTrigger.Match(ctx.Source) || ctx.Ast == nil {
		return nil
	}

	dangerPaths := append([]string{}, defaultDangerousPaths...)
	if ctx.Config != nil {
		dangerPaths = append(dangerPaths, ctx.Config.AdditionalDangerPaths...)
	}
	vm := ctx.Ast.Variables

	var issues []types.Issue
	for _, call := range ctx.Ast.Calls {
		if call.ObjectName != "fs" && call.ObjectName != "promises" {
			continue
		}
		method := call.CalleeName

		if len(call.Arguments) > 0 {
			if arg, ok := resolveArgString(call.Arguments[0], vm); ok {
				for _, p := range dangerPaths {
					if strings.Contains(arg, p) {
						issues = append(issues, newIssue(ctx, a.Name(), "fs", call.Line,
							"Filesystem access to sensitive path: "+arg, types.SeverityHigh, arg))
						break
					}
				}
			}
		}

		if fsWriteMethods[method] {
			issues = append(issues, newIssue(ctx, a.Name(), "fs", call.Line,
				"Filesystem write via fs."+method, types.SeverityMedium, ""))
		}
		if method == "watch" {
			issues = append(issues, newIssue(ctx, a.Name(), "fs", call.Line,
				"Filesystem watch via fs.watch", types.SeverityMedium, ""))
		}
	}
	return issues
}
