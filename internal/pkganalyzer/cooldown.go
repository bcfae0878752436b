package pkganalyzer

import (
	"time"

	"github.com/drodil/depspector/pkg/types"
)

// CooldownAnalyzer flags packages whose current version was published very
// recently, a weak signal for compromised-publish or rushed releases.
type CooldownAnalyzer struct{}

func (a *CooldownAnalyzer) Name() string         { return "cooldown" }
func (a *CooldownAnalyzer) RequiresNetwork() bool { return true }

func (a *CooldownAnalyzer) Analyze(ctx *PackageContext) []types.Issue {
	if !ctx.Config.isEnabled() || ctx.Offline || ctx.IsLocal || ctx.Prefetched == nil {
		return nil
	}
	meta, ok := ctx.Prefetched.GetMetadata(ctx.Name, ctx.Version)
	if !ok {
		return nil
	}
	v, ok := meta.Versions[ctx.Version]
	if !ok || v.PublishedAt.IsZero() {
		return nil
	}
	threshold := time.Duration(ctx.Config.hoursSincePublish()) * time.Hour
	if time.Since(v.PublishedAt) < threshold {
		return []types.Issue{newIssue(ctx, a.Name(), "cooldown", 0,
			"Version "+ctx.Version+" was published less than the configured cooldown window ago", types.SeverityMedium, "")}
	}
	return nil
}
