package pkganalyzer

import "github.com/drodil/depspector/pkg/types"

// ReputationAnalyzer flags publisher anomalies: a sole maintainer, or a
// publish from an account that isn't a listed maintainer.
type ReputationAnalyzer struct{}

func (a *ReputationAnalyzer) Name() string         { return "reputation" }
func (a *ReputationAnalyzer) RequiresNetwork() bool { return true }

func (a *ReputationAnalyzer) Analyze(ctx *PackageContext) []types.Issue {
	if !ctx.Config.isEnabled() || ctx.Offline || ctx.IsLocal || ctx.Prefetched == nil {
		return nil
	}
	meta, ok := ctx.Prefetched.GetMetadata(ctx.Name, ctx.Version)
	if !ok {
		return nil
	}
	v, ok := meta.Versions[ctx.Version]
	if !ok || v.Publisher == "" {
		return nil
	}
	if ctx.Config.whitelistedPublisher(v.Publisher) {
		return nil
	}
	if len(meta.Maintainers) == 1 {
		return []types.Issue{newIssue(ctx, a.Name(), "reputation", 0,
			ctx.Name+" has exactly one maintainer", types.SeverityLow, v.Publisher)}
	}

	isMaintainer := false
	for _, m := range meta.Maintainers {
		if m == v.Publisher {
			isMaintainer = true
			break
		}
	}
	if isMaintainer {
		return nil
	}

	appearsElsewhere := false
	for ver, vm := range meta.Versions {
		if ver != ctx.Version && vm.Publisher == v.Publisher {
			appearsElsewhere = true
			break
		}
	}
	sev := types.SeverityMedium
	if appearsElsewhere {
		sev = types.SeverityLow
	}
	return []types.Issue{newIssue(ctx, a.Name(), "reputation", 0,
		"Version "+ctx.Version+" was published by "+v.Publisher+", who is not a listed maintainer of "+ctx.Name,
		sev, v.Publisher)}
}
