package pkganalyzer

import (
	"os"
	"path/filepath"

	"github.com/drodil/depspector/pkg/types"
)

var nativeBuildTools = map[string]bool{
	"node-gyp": true, "node-pre-gyp": true, "prebuild": true, "prebuild-install": true,
	"cmake-js": true, "bindings": true, "nan": true, "node-addon-api": true,
}

// NativeAnalyzer flags packages that compile native code at install time:
// presence of build-tool config files, or a manifest dependency on a known
// native-build-tool package.
type NativeAnalyzer struct{}

func (a *NativeAnalyzer) Name() string         { return "native" }
func (a *NativeAnalyzer) RequiresNetwork() bool { return false }

func (a *NativeAnalyzer) Analyze(ctx *PackageContext) []types.Issue {
	if !ctx.Config.isEnabled() {
		return nil
	}
	var issues []types.Issue

	if _, err := os.Stat(filepath.Join(ctx.Path, "binding.gyp")); err == nil {
		issues = append(issues, newIssue(ctx, a.Name(), "native", 0,
			ctx.Name+" builds native code via binding.gyp", types.SeverityMedium, ""))
	}
	if _, err := os.Stat(filepath.Join(ctx.Path, "CMakeLists.txt")); err == nil {
		issues = append(issues, newIssue(ctx, a.Name(), "native", 0,
			ctx.Name+" builds native code via CMakeLists.txt", types.SeverityMedium, ""))
	}

	deps := manifestStringMap(ctx.Manifest, "dependencies")
	devDeps := manifestStringMap(ctx.Manifest, "devDependencies")
	for dep := range deps {
		if nativeBuildTools[dep] {
			issues = append(issues, newIssue(ctx, a.Name(), "native", 0,
				ctx.Name+" depends on native build tool "+dep, types.SeverityMedium, dep))
		}
	}
	for dep := range devDeps {
		if nativeBuildTools[dep] {
			issues = append(issues, newIssue(ctx, a.Name(), "native", 0,
				ctx.Name+" depends on native build tool "+dep, types.SeverityMedium, dep))
		}
	}
	return issues
}
