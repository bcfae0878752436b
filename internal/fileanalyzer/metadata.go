package fileanalyzer

import (
	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

var metadataTrigger = NewTriggerMatcher("os.userInfo", "os.networkInterfaces", "os.platform",
	"os.hostname", "os.release", "os.arch", "os.cpus", "os.totalmem", "os.freemem",
	"os.homedir", "os.tmpdir")

var osMetadataMethods = map[string]bool{
	"userInfo": true, "networkInterfaces": true, "platform": true, "hostname": true,
	"release": true, "arch": true, "cpus": true, "totalmem": true, "freemem": true,
	"homedir": true, "tmpdir": true,
}

// MetadataAnalyzer flags host-fingerprinting calls on the os module.
type MetadataAnalyzer struct{}

func (a *MetadataAnalyzer) Name() string                   { return "metadata" }
func (a *MetadataAnalyzer) UsesAST() bool                   { return true }
func (a *MetadataAnalyzer) RequiresNetwork() bool           { return false }
func (a *MetadataAnalyzer) Interest() astindex.NodeInterest { return astindex.InterestCalls }

func (a *MetadataAnalyzer) Analyze(ctx *FileContext) []types.Issue {
	if !ctx.Config.isEnabled() || !metadataTrigger.Match(ctx.Source) || ctx.Ast == nil {
		return nil
	}
	var issues []types.Issue
	for _, call := range ctx.Ast.Calls {
		if call.ObjectName != "os" || len(call.PropertyChain) == 0 {
			continue
		}
		method := call.PropertyChain[len(call.PropertyChain)-1]
		if osMetadataMethods[method] {
			issues = append(issues, newIssue(ctx, a.Name(), "metadata", call.Line,
				"Host fingerprinting via os."+method+"()", types.SeverityLow, ""))
		}
	}
	return issues
}
