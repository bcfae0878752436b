package pkganalyzer

import (
	"strings"

	"github.com/drodil/depspector/pkg/types"
)

// CVEAnalyzer emits one issue per vulnerability the prefetch store has
// recorded for (name, version), mapping CVSS or qualitative severity.
type CVEAnalyzer struct{}

func (a *CVEAnalyzer) Name() string         { return "cve" }
func (a *CVEAnalyzer) RequiresNetwork() bool { return true }

func cvssSeverity(score float64) types.Severity {
	switch {
	case score >= 9:
		return types.SeverityCritical
	case score >= 7:
		return types.SeverityHigh
	case score >= 4:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

func qualitativeSeverity(s string) types.Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return types.SeverityCritical
	case "high":
		return types.SeverityHigh
	case "medium", "moderate":
		return types.SeverityMedium
	case "low":
		return types.SeverityLow
	default:
		return types.SeverityHigh
	}
}

func advisoryURL(id string) string {
	switch {
	case strings.HasPrefix(id, "CVE-"):
		return "https://nvd.nist.gov/vuln/detail/" + id
	case strings.HasPrefix(id, "GHSA-"):
		return "https://github.com/advisories/" + id
	case strings.HasPrefix(id, "RUSTSEC-"):
		return "https://rustsec.org/advisories/" + id + ".html"
	case strings.HasPrefix(id, "PYSEC-"), strings.HasPrefix(id, "OSV-"):
		return "https://osv.dev/vulnerability/" + id
	case strings.HasPrefix(id, "GO-"):
		return "https://pkg.go.dev/vuln/" + id
	default:
		return "https://api.osv.dev/v1/vulns/" + id
	}
}

func (a *CVEAnalyzer) Analyze(ctx *PackageContext) []types.Issue {
	if !ctx.Config.isEnabled() || ctx.Offline || ctx.IsLocal || ctx.Prefetched == nil {
		return nil
	}
	vulns, ok := ctx.Prefetched.GetVulnerabilities(ctx.Name, ctx.Version)
	if !ok {
		return nil
	}
	var issues []types.Issue
	for _, v := range vulns {
		var sev types.Severity
		if v.SeverityType == "cvss3" && v.Score > 0 {
			sev = cvssSeverity(v.Score)
		} else {
			sev = qualitativeSeverity(v.DatabaseSeverity)
		}
		issue := newIssue(ctx, a.Name(), "cve", 0, v.ID+": "+v.Summary, sev, v.Details)
		issue.URL = advisoryURL(v.ID)
		issues = append(issues, issue)
	}
	return issues
}
