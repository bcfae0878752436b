package fileanalyzer

import (
	"strings"

	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

var envTrigger = NewTriggerMatcher("process.env", "process[")

var sensitiveEnvSubstrings = []string{
	"KEY", "TOKEN", "SECRET", "PASSWORD", "PASSWD", "CREDENTIALS", "AUTH",
	"API", "PRIVATE", "CERT", "SIGNATURE",
}

var defaultAllowedEnvVars = map[string]bool{
	"NODE_ENV": true, "PATH": true, "HOME": true, "PWD": true, "LANG": true,
	"TERM": true, "SHELL": true, "TMPDIR": true, "CI": true, "USER": true,
	"NODE_OPTIONS": true, "DEBUG": true,
}

// EnvAnalyzer reports environment-variable access via process.env,
// classifying likely-sensitive variable names as Medium severity.
type EnvAnalyzer struct{}

func (a *EnvAnalyzer) Name() string                   { return "env" }
func (a *EnvAnalyzer) UsesAST() bool                   { return true }
func (a *EnvAnalyzer) RequiresNetwork() bool           { return false }
func (a *EnvAnalyzer) Interest() astindex.NodeInterest {
	return astindex.InterestMemberAccesses | astindex.InterestDestructures
}

func (a *EnvAnalyzer) Analyze(ctx *FileContext) []types.Issue {
	if !ctx.Config.isEnabled() || !envTrigger.Match(ctx.Source) || ctx.Ast == nil {
		return nil
	}

	allowed := map[string]bool{}
	for k, v := range defaultAllowedEnvVars {
		allowed[k] = v
	}
	if ctx.Config != nil {
		for _, v := range ctx.Config.AllowedEnvVars {
			allowed[strings.ToUpper(v)] = true
		}
	}

	var issues []types.Issue
	seen := map[string]bool{}
	emit := func(name string, line int) {
		if name == "" || seen[name] || allowed[strings.ToUpper(name)] {
			return
		}
		seen[name] = true
		sev := types.SeverityLow
		upper := strings.ToUpper(name)
		for _, s := range sensitiveEnvSubstrings {
			if strings.Contains(upper, s) {
				sev = types.SeverityMedium
				break
			}
		}
		issues = append(issues, newIssue(ctx, a.Name(), "env", line,
			"Environment variable accessed: "+name, sev, ""))
	}

	for _, m := range ctx.Ast.MemberAccesses {
		if m.RootIdentifier == "process" && len(m.PropertyChain) >= 2 && m.PropertyChain[0] == "env" {
			emit(m.PropertyChain[1], m.Line)
		}
	}
	for _, d := range ctx.Ast.Destructures {
		if d.SourceName == "process" && d.Property == "env" {
			for _, n := range d.BoundNames {
				emit(n, d.Line)
			}
		}
	}
	return issues
}
