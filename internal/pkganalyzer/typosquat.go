package pkganalyzer

import (
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/drodil/depspector/pkg/types"
)

// popularPackages is a built-in sample of the npm registry's most-depended
// packages, used as the typosquat candidate set alongside any per-analyzer
// additions.
var popularPackages = []string{
	"react", "lodash", "express", "axios", "chalk", "commander", "request",
	"moment", "webpack", "babel-core", "react-dom", "jquery", "vue", "typescript",
	"eslint", "jest", "mocha", "yargs", "debug", "async", "underscore", "uuid",
	"classnames", "prop-types", "redux", "dotenv", "glob", "rimraf", "semver",
	"minimist", "colors", "fs-extra", "cross-env", "body-parser", "cors",
}

// TyposquatAnalyzer flags non-ASCII package names outright, and otherwise
// reports a high-confidence match when a name is within Levenshtein
// distance 2 and similarity > 0.8 of a well-known package.
type TyposquatAnalyzer struct{}

func (a *TyposquatAnalyzer) Name() string         { return "typosquat" }
func (a *TyposquatAnalyzer) RequiresNetwork() bool { return false }

func hasNonASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return true
		}
	}
	return false
}

func (a *TyposquatAnalyzer) Analyze(ctx *PackageContext) []types.Issue {
	if !ctx.Config.isEnabled() {
		return nil
	}
	if hasNonASCII(ctx.Name) {
		return []types.Issue{newIssue(ctx, a.Name(), "typosquat", 0,
			ctx.Name+" contains non-ASCII characters", types.SeverityHigh, "")}
	}

	candidates := append([]string{}, popularPackages...)
	if ctx.Config != nil {
		candidates = append(candidates, ctx.Config.TyposquatAdditions...)
	}

	for _, candidate := range candidates {
		if candidate == ctx.Name {
			continue
		}
		dist := levenshtein.ComputeDistance(ctx.Name, candidate)
		maxLen := len(ctx.Name)
		if len(candidate) > maxLen {
			maxLen = len(candidate)
		}
		if maxLen == 0 {
			continue
		}
		similarity := 1 - float64(dist)/float64(maxLen)
		if dist <= 2 && similarity > 0.8 {
			return []types.Issue{newIssue(ctx, a.Name(), "typosquat", 0,
				ctx.Name+" closely resembles popular package "+candidate, types.SeverityHigh, candidate)}
		}
	}
	return nil
}
