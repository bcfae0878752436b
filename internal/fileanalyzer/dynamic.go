package fileanalyzer

import (
	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

var dynamicTrigger = NewTriggerMatcher("vm.", "require(")

var vmRunMethods = map[string]bool{
	"runInContext": true, "runInNewContext": true, "runInThisContext": true,
}

// DynamicAnalyzer flags vm.* sandbox-escape-prone calls and require() of a
// non-literal (dynamically computed) module specifier.
type DynamicAnalyzer struct{}

func (a *DynamicAnalyzer) Name() string                   { return "dynamic" }
func (a *DynamicAnalyzer) UsesAST() bool                   { return true }
func (a *DynamicAnalyzer) RequiresNetwork() bool           { return false }
func (a *DynamicAnalyzer) Interest() astindex.NodeInterest { return astindex.InterestCalls }

func (a *DynamicAnalyzer) Analyze(ctx *FileContext) []types.Issue {
	if !ctx.Config.isEnabled() || !dynamicTrigger.Match(ctx.Source) || ctx.Ast == nil {
		return nil
	}

	var issues []types.Issue
	for _, call := range ctx.Ast.Calls {
		if call.ObjectName == "vm" && len(call.PropertyChain) > 0 && vmRunMethods[call.PropertyChain[len(call.PropertyChain)-1]] {
			issues = append(issues, newIssue(ctx, a.Name(), "dynamic", call.Line,
				"vm."+call.PropertyChain[len(call.PropertyChain)-1]+" executes dynamically generated code",
				types.SeverityCritical, ""))
			continue
		}
		if call.CalleeName == "require" && len(call.Arguments) == 1 {
			arg := call.Arguments[0]
			if arg.Kind != astindex.ArgStringLiteral {
				issues = append(issues, newIssue(ctx, a.Name(), "dynamic", call.Line,
					"require() called with a non-literal, dynamically computed module specifier",
					types.SeverityMedium, ""))
			}
		}
	}
	return issues
}
