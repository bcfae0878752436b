package pkganalyzer

import (
	"time"

	"github.com/drodil/depspector/pkg/types"
)

// DormantAnalyzer flags a long gap since the previous release before the
// current version, a signal for a long-unmaintained package suddenly
// resuming publication (or a compromised maintainer account).
type DormantAnalyzer struct{}

func (a *DormantAnalyzer) Name() string         { return "dormant" }
func (a *DormantAnalyzer) RequiresNetwork() bool { return true }

func (a *DormantAnalyzer) Analyze(ctx *PackageContext) []types.Issue {
	if !ctx.Config.isEnabled() || ctx.Offline || ctx.IsLocal || ctx.Prefetched == nil {
		return nil
	}
	meta, ok := ctx.Prefetched.GetMetadata(ctx.Name, ctx.Version)
	if !ok {
		return nil
	}
	cur, ok := meta.Versions[ctx.Version]
	if !ok || cur.PublishedAt.IsZero() {
		// No timestamp for the current version; skip silently, matching
		// original_source's early return rather than reporting a false dormancy.
		return nil
	}
	prev, ok := meta.LatestPriorTo(ctx.Version)
	if !ok {
		return nil
	}
	threshold := time.Duration(ctx.Config.daysSincePreviousPublish()) * 24 * time.Hour
	if cur.PublishedAt.Sub(prev.PublishedAt) > threshold {
		return []types.Issue{newIssue(ctx, a.Name(), "dormant", 0,
			"Previous release of "+ctx.Name+" was published more than the configured dormancy window before "+ctx.Version,
			types.SeverityHigh, "")}
	}
	return nil
}
