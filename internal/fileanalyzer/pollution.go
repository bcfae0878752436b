package fileanalyzer

import (
	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

var pollutionTrigger = NewTriggerMatcher("__proto__", "constructor.prototype", "setPrototypeOf", "defineProperty")

// PollutionAnalyzer flags prototype-pollution idioms: direct __proto__
// assignment, constructor.prototype writes, and Object.setPrototypeOf /
// Object.defineProperty targeting __proto__.
type PollutionAnalyzer struct{}

func (a *PollutionAnalyzer) Name() string { return "pollution" }
func (a *PollutionAnalyzer) UsesAST() bool { return true }
func (a *PollutionAnalyzer) RequiresNetwork() bool { return false }
func (a *PollutionAnalyzer) Interest() astindex.NodeInterest {
	return astindex.InterestAssignments | astindex.InterestCalls
}

func (a *PollutionAnalyzer) Analyze(ctx *FileContext) []types.Issue {
	if !ctx.Config.isEnabled() || !pollutionTrigger.Match(ctx.Source) || ctx.Ast == nil {
		return nil
	}
	var issues []types.Issue

	for _, asn := range ctx.Ast.Assignments {
		if asn.TargetKind != astindex.AssignTargetProperty && asn.TargetKind != astindex.AssignTargetComputedProperty {
			continue
		}
		switch asn.Property {
		case "__proto__":
			issues = append(issues, newIssue(ctx, a.Name(), "pollution", asn.Line,
				"Direct __proto__ assignment, possible prototype pollution", types.SeverityHigh, ""))
		case "prototype":
			if asn.Object == "constructor" {
				issues = append(issues, newIssue(ctx, a.Name(), "pollution", asn.Line,
					"constructor.prototype assignment, possible prototype pollution", types.SeverityMedium, ""))
			}
		}
	}

	for _, call := range ctx.Ast.Calls {
		if call.ObjectName != "Object" {
			continue
		}
		switch call.CalleeName {
		case "setPrototypeOf":
			issues = append(issues, newIssue(ctx, a.Name(), "pollution", call.Line,
				"Object.setPrototypeOf call, possible prototype pollution", types.SeverityMedium, ""))
		case "defineProperty":
			if len(call.Arguments) >= 2 && call.Arguments[1].Value == "__proto__" {
				issues = append(issues, newIssue(ctx, a.Name(), "pollution", call.Line,
					"Object.defineProperty targeting __proto__, possible prototype pollution", types.SeverityHigh, ""))
			}
		}
	}
	return issues
}
