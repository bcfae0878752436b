package pkganalyzer

import "github.com/drodil/depspector/pkg/types"

// DeprecatedAnalyzer flags a version record carrying a non-empty
// deprecated string in registry metadata.
type DeprecatedAnalyzer struct{}

func (a *DeprecatedAnalyzer) Name() string         { return "deprecated" }
func (a *DeprecatedAnalyzer) RequiresNetwork() bool { return true }

func (a *DeprecatedAnalyzer) Analyze(ctx *PackageContext) []types.Issue {
	if !ctx.Config.isEnabled() || ctx.Offline || ctx.IsLocal || ctx.Prefetched == nil {
		return nil
	}
	meta, ok := ctx.Prefetched.GetMetadata(ctx.Name, ctx.Version)
	if !ok {
		return nil
	}
	v, ok := meta.Versions[ctx.Version]
	if !ok || v.Deprecated == "" {
		return nil
	}
	return []types.Issue{newIssue(ctx, a.Name(), "deprecated", 0,
		"Version "+ctx.Version+" is deprecated: "+v.Deprecated, types.SeverityMedium, v.Deprecated)}
}
