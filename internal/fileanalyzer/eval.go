package fileanalyzer

import (
	"strings"

	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

var evalTrigger = NewTriggerMatcher("eval(", "new Function", "Function(", `setTimeout("`, `setInterval("`)

var evalSuspiciousPatterns = []string{
	"http://", "https://", "ws://", "child_process", "exec(", "spawn(",
	"fromCharCode", "atob", "btoa", "\\x", "\\u",
}

var evalSafeSentinels = []string{"return this", "use strict"}

func evalClassify(content string) types.Severity {
	lower := strings.ToLower(content)
	for _, p := range evalSuspiciousPatterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return types.SeverityCritical
		}
	}
	for _, s := range evalSafeSentinels {
		if strings.Contains(content, s) {
			return types.SeverityMedium
		}
	}
	if len(content) < 20 && !strings.Contains(content, ";") {
		return types.SeverityMedium
	}
	return types.SeverityHigh
}

// EvalAnalyzer classifies eval/new Function/setTimeout-string/dynamic
// require calls by the suspiciousness of their resolved first argument.
type EvalAnalyzer struct{}

func (a *EvalAnalyzer) Name() string                   { return "eval" }
func (a *EvalAnalyzer) UsesAST() bool                   { return true }
func (a *EvalAnalyzer) RequiresNetwork() bool           { return false }
func (a *EvalAnalyzer) Interest() astindex.NodeInterest { return astindex.InterestCalls }

func (a *EvalAnalyzer) Analyze(ctx *FileContext) []types.Issue {
	if !ctx.Config.isEnabled() || !evalTrigger.Match(ctx.Source) || ctx.Ast == nil {
		return nil
	}

	var issues []types.Issue
	vm := ctx.Ast.Variables

	for _, call := range ctx.Ast.Calls {
		switch {
		case call.CalleeName == "eval" && call.ObjectName == "":
			arg := firstArgText(call, vm)
			sev := evalClassify(arg)
			issues = append(issues, newIssue(ctx, a.Name(), "eval", call.Line,
				"eval() call detected", sev, arg))

		case call.CalleeName == "Function" && call.ObjectName == "":
			arg := firstArgText(call, vm)
			sev := evalClassify(arg)
			issues = append(issues, newIssue(ctx, a.Name(), "eval", call.Line,
				"new Function() used to construct code from a string (eval equivalent)", sev, arg))

		case (call.CalleeName == "setTimeout" || call.CalleeName == "setInterval") && call.ObjectName == "":
			if len(call.Arguments) > 0 && call.Arguments[0].Kind == astindex.ArgStringLiteral {
				issues = append(issues, newIssue(ctx, a.Name(), "eval", call.Line,
					call.CalleeName+" called with a string body (implicit eval)", types.SeverityHigh, call.Arguments[0].Value))
			}

		case call.CalleeName == "require" && call.ObjectName == "" && len(call.Arguments) == 1:
			kind := call.Arguments[0].Kind
			if kind == astindex.ArgIdentifier || kind == astindex.ArgBinaryExpr || kind == astindex.ArgTemplateLiteral {
				issues = append(issues, newIssue(ctx, a.Name(), "eval", call.Line,
					"require() called with a dynamically computed specifier", types.SeverityHigh, ""))
			}
		}
	}
	return issues
}

func firstArgText(call astindex.CallInfo, vm *astindex.VariableMap) string {
	if len(call.Arguments) == 0 {
		return ""
	}
	if v, ok := resolveArgString(call.Arguments[0], vm); ok {
		return v
	}
	return call.Arguments[0].Value
}
