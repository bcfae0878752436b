package pkganalyzer

import (
	"encoding/json"
	"strings"

	"github.com/drodil/depspector/pkg/types"
)

var restrictiveLicenses = []string{
	"GPL", "AGPL", "GPLV2", "GPLV3", "GPL-2.0", "GPL-3.0", "AGPL-3.0", "SSPL", "EUPL-1.2",
}

var moderateLicenses = []string{"MPL", "MPL-2.0", "CDDL", "CPAL"}

// LicenseAnalyzer flags restrictive or moderate-risk license identifiers
// declared in the manifest, case-insensitively.
type LicenseAnalyzer struct{}

func (a *LicenseAnalyzer) Name() string         { return "license" }
func (a *LicenseAnalyzer) RequiresNetwork() bool { return false }

func resolveLicenseString(manifest map[string]interface{}) string {
	if s, ok := manifestString(manifest, "license"); ok {
		return s
	}
	if obj, ok := manifest["license"].(map[string]interface{}); ok {
		if t, ok := obj["type"].(string); ok {
			return t
		}
	}
	return ""
}

func licenseLine(manifest map[string]interface{}) int {
	pretty, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return 0
	}
	lines := strings.Split(string(pretty), "\n")
	for i, line := range lines {
		if strings.Contains(line, `"license"`) {
			return i + 1
		}
	}
	return 0
}

func (a *LicenseAnalyzer) Analyze(ctx *PackageContext) []types.Issue {
	if !ctx.Config.isEnabled() {
		return nil
	}
	license := resolveLicenseString(ctx.Manifest)
	if license == "" {
		return nil
	}

	if ctx.Config != nil {
		for _, allowed := range ctx.Config.AllowedLicenses {
			if strings.EqualFold(allowed, license) {
				return nil
			}
		}
	}

	upper := strings.ToUpper(license)
	line := licenseLine(ctx.Manifest)
	for _, restrictive := range restrictiveLicenses {
		if strings.Contains(upper, restrictive) {
			return []types.Issue{newIssue(ctx, a.Name(), "license", line,
				ctx.Name+" is licensed under "+license+", a restrictive license", types.SeverityHigh, license)}
		}
	}
	for _, moderate := range moderateLicenses {
		if strings.Contains(upper, moderate) {
			return []types.Issue{newIssue(ctx, a.Name(), "license", line,
				ctx.Name+" is licensed under "+license+", a moderate-risk license", types.SeverityMedium, license)}
		}
	}
	return nil
}
