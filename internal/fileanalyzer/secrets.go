package fileanalyzer

import (
	"regexp"

	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

// genericSecretMinLength is the minimum value length for the catch-all
// key/secret/token pattern. The original Rust implementation used 20; this
// is raised to 32 per the spec's recommendation to cut noise on short
// config-flag-like names that happen to contain "key" or "token".
const genericSecretMinLength = 32

type secretPattern struct {
	name string
	re   *regexp.Regexp
	sev  types.Severity
}

var secretPatterns = []secretPattern{
	{"AWS Access Key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`), types.SeverityCritical},
	{"Private Key", regexp.MustCompile(`-----BEGIN (RSA|EC|DSA|OPENSSH) PRIVATE KEY-----`), types.SeverityCritical},
	{"Stripe Live Key", regexp.MustCompile(`sk_live_[0-9a-zA-Z]{24,}`), types.SeverityCritical},
	{"GitHub Token", regexp.MustCompile(`gh[pousr]_[0-9a-zA-Z]{36,}`), types.SeverityCritical},
	{"npm Token", regexp.MustCompile(`npm_[0-9a-zA-Z]{36,}`), types.SeverityCritical},
	{"Slack Token", regexp.MustCompile(`xox[baprs]-[0-9a-zA-Z-]{10,}`), types.SeverityCritical},
	{"Google API Key", regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`), types.SeverityHigh},
	{"Twilio API Key", regexp.MustCompile(`SK[0-9a-fA-F]{32}`), types.SeverityHigh},
}

var genericSecretPattern = regexp.MustCompile(`(?i)(api[_-]?key|secret[_-]?key|access[_-]?token)["']?\s*[:=]\s*["']([^"']{` +
	itoa(genericSecretMinLength) + `,})["']`)

// SecretsAnalyzer scans the raw source text (no AST) for hardcoded
// credential material, redacting long matches in the reported message.
type SecretsAnalyzer struct{}

func (a *SecretsAnalyzer) Name() string                   { return "secrets" }
func (a *SecretsAnalyzer) UsesAST() bool                   { return false }
func (a *SecretsAnalyzer) RequiresNetwork() bool           { return false }
func (a *SecretsAnalyzer) Interest() astindex.NodeInterest { return 0 }

func redactSecret(s string) string {
	if len(s) > 80 {
		return s[:40] + "...[REDACTED]"
	}
	return s
}

func (a *SecretsAnalyzer) Analyze(ctx *FileContext) []types.Issue {
	if !ctx.Config.isEnabled() {
		return nil
	}
	var issues []types.Issue

	for _, p := range secretPatterns {
		for _, loc := range p.re.FindAllStringIndex(ctx.Source, -1) {
			match := ctx.Source[loc[0]:loc[1]]
			line := astindex.LineFromOffset(ctx.Source, loc[0])
			issues = append(issues, newIssue(ctx, a.Name(), "secrets", line,
				"Hardcoded "+p.name+" detected: "+redactSecret(match), p.sev, redactSecret(match)))
		}
	}

	for _, loc := range genericSecretPattern.FindAllStringSubmatchIndex(ctx.Source, -1) {
		if len(loc) < 4 {
			continue
		}
		value := ctx.Source[loc[2]:loc[3]]
		line := astindex.LineFromOffset(ctx.Source, loc[0])
		issues = append(issues, newIssue(ctx, a.Name(), "secrets", line,
			"Hardcoded credential-like value detected: "+redactSecret(value), types.SeverityHigh, redactSecret(value)))
	}

	return issues
}
