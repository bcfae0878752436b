package fileanalyzer

import (
	"strings"

	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

var processTrigger = NewTriggerMatcher("child_process", "exec(", "execSync(", "spawn(",
	"spawnSync(", "execFile(", "fork(", "process.binding")

var childProcessMethods = map[string]bool{
	"exec": true, "execSync": true, "spawn": true, "spawnSync": true,
	"execFile": true, "execFileSync": true, "fork": true,
}

var criticalCommands = map[string]bool{
	"curl": true, "wget": true, "nc": true, "netcat": true, "bash": true, "sh": true,
	"zsh": true, "fish": true, "cmd": true, "powershell": true, "pwsh": true,
	"python": true, "python3": true, "perl": true, "ruby": true, "php": true, "eval": true,
}

var highCommands = map[string]bool{
	"node": true, "npm": true, "npx": true, "yarn": true, "pnpm": true, "bun": true,
	"deno": true, "git": true, "make": true, "cmake": true, "cargo": true, "go": true,
	"rustc": true, "gcc": true, "g++": true, "clang": true, "javac": true, "java": true,
}

// ProcessAnalyzer flags child-process spawning, classifying severity by the
// invoked command and flagging raw process.binding('spawn_sync') access.
type ProcessAnalyzer struct{}

func (a *ProcessAnalyzer) Name() string                   { return "process" }
func (a *ProcessAnalyzer) UsesAST() bool                   { return true }
func (a *ProcessAnalyzer) RequiresNetwork() bool           { return false }
func (a *ProcessAnalyzer) Interest() astindex.NodeInterest { return astindex.InterestCalls }

func firstCommandToken(cmd string) string {
	cmd = strings.TrimSpace(cmd)
	for i, c := range cmd {
		if c == ' ' || c == '\t' {
			return cmd[:i]
		}
	}
	return cmd
}

func commandAllowed(cfg *Config, cmd string) bool {
	if cfg == nil {
		return false
	}
	for _, allowed := range cfg.allowedCommands() {
		if allowed == cmd {
			return true
		}
	}
	return false
}

func (a *ProcessAnalyzer) Analyze(ctx *FileContext) []types.Issue {
	if !ctx.Config.isEnabled() || !processTrigger.Match(ctx.Source) || ctx.Ast == nil {
		return nil
	}
	vm := ctx.Ast.Variables
	var issues []types.Issue

	for _, call := range ctx.Ast.Calls {
		if call.ObjectName == "process" && call.CalleeName == "binding" {
			if len(call.Arguments) > 0 && call.Arguments[0].Value == "spawn_sync" {
				issues = append(issues, newIssue(ctx, a.Name(), "process", call.Line,
					"Direct process.binding('spawn_sync') access bypasses child_process", types.SeverityCritical, ""))
			}
			continue
		}

		isChildProcessCall := call.ObjectName == "child_process" || call.ObjectName == ""
		if !isChildProcessCall || !childProcessMethods[call.CalleeName] {
			continue
		}
		if len(call.Arguments) == 0 {
			continue
		}
		cmd, ok := resolveArgString(call.Arguments[0], vm)
		if !ok {
			continue
		}
		token := firstCommandToken(cmd)
		if commandAllowed(ctx.Config, token) {
			continue
		}

		sev := types.SeverityMedium
		switch {
		case criticalCommands[token] || strings.Contains(cmd, "://") || strings.Contains(cmd, " | ") || strings.Contains(cmd, "|bash"):
			sev = types.SeverityCritical
		case highCommands[token]:
			sev = types.SeverityHigh
		}
		issues = append(issues, newIssue(ctx, a.Name(), "process", call.Line,
			"Child process spawned via "+call.CalleeName+"(): "+cmd, sev, cmd))
	}

	if strings.Contains(ctx.Source, "shell: true") || strings.Contains(ctx.Source, "shell:true") {
		line := astindex.LineFromOffset(ctx.Source, strings.Index(ctx.Source, "shell:"))
		issues = append(issues, newIssue(ctx, a.Name(), "process", line,
			"Child process invoked with shell: true, enabling shell metacharacter injection", types.SeverityHigh, ""))
	}
	return issues
}
