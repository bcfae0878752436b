package fileanalyzer

import (
	"strings"

	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

var networkTrigger = NewTriggerMatcher("fetch(", "axios", "got(", "request(", "WebSocket",
	"http.", "https.", "net.connect", "socket.connect", "net.createConnection")

var defaultAllowedHosts = map[string]bool{
	"localhost": true, "127.0.0.1": true, "registry.npmjs.org": true,
	"github.com": true, "raw.githubusercontent.com": true, "api.github.com": true,
	"unpkg.com": true, "cdn.jsdelivr.net": true, "npmjs.com": true,
}

var httpVerbMethods = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true, "patch": true,
	"request": true, "head": true, "options": true,
}

var httpFetchLikeCallees = map[string]bool{
	"fetch": true, "axios": true, "got": true, "request": true,
}

// NetworkAnalyzer flags outbound network calls to non-allowlisted hosts
// and raw socket/WebSocket construction.
type NetworkAnalyzer struct{}

func (a *NetworkAnalyzer) Name() string                   { return "network" }
func (a *NetworkAnalyzer) UsesAST() bool                   { return true }
func (a *NetworkAnalyzer) RequiresNetwork() bool           { return false }
func (a *NetworkAnalyzer) Interest() astindex.NodeInterest { return astindex.InterestCalls }

func hostAllowed(cfg *Config, host string) bool {
	if defaultAllowedHosts[host] {
		return true
	}
	if cfg == nil {
		return false
	}
	for _, h := range cfg.AllowedHosts {
		if h == host {
			return true
		}
	}
	return false
}

func extractHost(url string) string {
	rest := url
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}
	for i, c := range rest {
		if c == '/' || c == ':' || c == '?' {
			return rest[:i]
		}
	}
	return rest
}

func (a *NetworkAnalyzer) Analyze(ctx *FileContext) []types.Issue {
	if !ctx.Config.isEnabled() || !networkTrigger.Match(ctx.Source) || ctx.Ast == nil {
		return nil
	}
	vm := ctx.Ast.Variables
	var issues []types.Issue

	for _, call := range ctx.Ast.Calls {
		if call.ObjectName == "" && httpFetchLikeCallees[call.CalleeName] && len(call.Arguments) > 0 {
			if url, ok := resolveArgString(call.Arguments[0], vm); ok {
				if isHTTPURL(url) {
					host := extractHost(url)
					if !hostAllowed(ctx.Config, host) {
						issues = append(issues, newIssue(ctx, a.Name(), "network", call.Line,
							call.CalleeName+"() request to "+url, types.SeverityMedium, url))
					}
				}
			}
			continue
		}
		if call.CalleeName == "WebSocket" {
			issues = append(issues, newIssue(ctx, a.Name(), "network", call.Line,
				"new WebSocket() connection", types.SeverityHigh, ""))
			continue
		}
		if call.ObjectName == "http" || call.ObjectName == "https" {
			if len(call.PropertyChain) > 0 && httpVerbMethods[call.PropertyChain[len(call.PropertyChain)-1]] {
				issues = append(issues, newIssue(ctx, a.Name(), "network", call.Line,
					call.ObjectName+"."+call.PropertyChain[len(call.PropertyChain)-1]+"() network call", types.SeverityMedium, ""))
			}
			continue
		}
		if (call.ObjectName == "net" && (call.CalleeName == "connect" || call.CalleeName == "createConnection")) ||
			(call.ObjectName == "socket" && call.CalleeName == "connect") {
			issues = append(issues, newIssue(ctx, a.Name(), "network", call.Line,
				"Raw socket connection via "+call.ObjectName+"."+call.CalleeName+"()", types.SeverityHigh, ""))
		}
	}
	return issues
}

func isHTTPURL(s string) bool {
	for _, p := range []string{"http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
