package pkganalyzer

import (
	"strings"

	"github.com/drodil/depspector/pkg/types"
)

var lifecycleScriptKeys = []string{
	"preinstall", "install", "postinstall", "prepublish", "prepare", "prepack", "postpack",
}

var safeScriptPrefixes = []string{
	"npm ", "npx ", "yarn ", "pnpm ", "node ", "tsc", "babel", "webpack", "rollup", "vite",
	"jest", "mocha", "eslint", "prettier", "husky", "node-gyp", "lerna", "turbo",
}

// ScriptsAnalyzer classifies npm lifecycle scripts by the danger of the
// command they run, skipping configured and built-in safe prefixes.
type ScriptsAnalyzer struct{}

func (a *ScriptsAnalyzer) Name() string         { return "scripts" }
func (a *ScriptsAnalyzer) RequiresNetwork() bool { return false }

func scriptAllowed(cfg *Config, key, cmd string) bool {
	if cfg != nil {
		for _, allowed := range cfg.AllowedScripts {
			if allowed == key {
				return true
			}
		}
		for _, prefix := range cfg.AllowedCommands {
			if strings.HasPrefix(cmd, prefix) {
				return true
			}
		}
	}
	for _, prefix := range safeScriptPrefixes {
		if strings.HasPrefix(cmd, prefix) {
			return true
		}
	}
	return false
}

func classifyScriptCommand(cmd string) types.Severity {
	switch {
	case strings.Contains(cmd, "curl") || strings.Contains(cmd, "wget") ||
		strings.Contains(cmd, "://") || strings.Contains(cmd, "| bash") ||
		strings.Contains(cmd, "| sh") || strings.Contains(cmd, "eval ") ||
		strings.Contains(cmd, "`") || strings.Contains(cmd, "$("):
		return types.SeverityCritical
	case strings.Contains(cmd, "bash") || strings.Contains(cmd, "sh ") ||
		strings.HasPrefix(cmd, "sh") || strings.Contains(cmd, "node ") ||
		strings.HasSuffix(cmd, ".sh") || strings.HasSuffix(cmd, ".js"):
		return types.SeverityHigh
	default:
		return types.SeverityMedium
	}
}

func (a *ScriptsAnalyzer) Analyze(ctx *PackageContext) []types.Issue {
	if !ctx.Config.isEnabled() {
		return nil
	}
	scripts := manifestStringMap(ctx.Manifest, "scripts")
	if len(scripts) == 0 {
		return nil
	}
	var issues []types.Issue
	for _, key := range lifecycleScriptKeys {
		cmd, ok := scripts[key]
		if !ok || cmd == "" {
			continue
		}
		if scriptAllowed(ctx.Config, key, cmd) {
			continue
		}
		sev := classifyScriptCommand(cmd)
		issues = append(issues, newIssue(ctx, a.Name(), "scripts", 0,
			"Lifecycle script "+key+" runs: "+cmd, sev, cmd))
	}
	return issues
}
