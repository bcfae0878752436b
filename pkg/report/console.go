package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/drodil/depspector/pkg/types"
)

const maxCodeLinePreview = 114

var (
	colorCritical = color.New(color.FgRed, color.Bold)
	colorHigh     = color.New(color.FgRed)
	colorMedium   = color.New(color.FgYellow)
	colorLow      = color.New(color.FgWhite)
	colorDim      = color.New(color.Faint)
	colorPackage  = color.New(color.FgCyan, color.Bold)
	colorHeading  = color.New(color.Bold, color.Underline)
	colorGood     = color.New(color.FgGreen, color.Bold)
)

func severityColor(s types.Severity) *color.Color {
	switch s {
	case types.SeverityCritical:
		return colorCritical
	case types.SeverityHigh:
		return colorHigh
	case types.SeverityMedium:
		return colorMedium
	default:
		return colorLow
	}
}

func truncateLine(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// PrintConsole renders filtered results grouped by package@version with
// colored severity markers, a trailing summary, a "most untrusted"
// section, and any unused ignore IDs — grounded on
// _examples/original_source/src/report.rs's print_console, extended per
// SPEC_FULL.md §4.12 with the most-untrusted section and unused-ignores
// line (both named in spec.md §6/§7 but not in this particular source cut).
func PrintConsole(w io.Writer, results []types.AnalysisResult, opts Options) {
	if opts.NoColor {
		color.NoColor = true
	}

	if len(results) == 0 {
		colorGood.Fprintln(w, "✓ No issues found")
		return
	}

	colorHeading.Fprintln(w, "Security Analysis Report")
	fmt.Fprintln(w)

	sorted := make([]types.AnalysisResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Package != sorted[j].Package {
			return sorted[i].Package < sorted[j].Package
		}
		return sorted[i].Version < sorted[j].Version
	})

	var totalIssues, critical, high int
	for _, result := range sorted {
		label := result.Package
		if result.Version != "" {
			label = label + "@" + result.Version
		}
		colorPackage.Fprintf(w, "📦 %s\n", label)

		for _, issue := range result.Issues {
			if issue.Severity < opts.MinSeverity {
				continue
			}
			totalIssues++
			switch issue.Severity {
			case types.SeverityCritical:
				critical++
			case types.SeverityHigh:
				high++
			}

			file := issue.File
			if file == "" {
				file = result.PackagePath
			}
			location := fmt.Sprintf("%s:%d", file, issue.Line)
			if result.IsFromCache {
				colorDim.Fprintf(w, "  ↺ %s", location)
			} else {
				fmt.Fprintf(w, "  %s", location)
			}
			fmt.Fprint(w, ": ")
			severityColor(issue.Severity).Fprint(w, issue.Severity.String())
			colorDim.Fprintf(w, " [%s] ", issue.IssueType)
			fmt.Fprintln(w, issue.Message)

			if issue.Code != "" {
				colorDim.Fprintf(w, "      %s\n", truncateLine(issue.Code, maxCodeLinePreview))
			}
			if issue.ID != "" {
				colorDim.Fprintf(w, "      ID: %s\n", issue.ID)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Found %d issues (%d critical, %d high)\n", totalIssues, critical, high)

	if untrusted := MostUntrusted(sorted, 3); len(untrusted) > 0 {
		fmt.Fprintln(w)
		colorHeading.Fprintln(w, "Most untrusted packages")
		for _, result := range untrusted {
			fmt.Fprintf(w, "  %s@%s — trust %.1f (%s)\n",
				result.Package, result.Version, result.TrustScore.Score, result.TrustScore.Level())
		}
	}

	if len(opts.UnusedIgnores) > 0 {
		fmt.Fprintln(w)
		colorDim.Fprintln(w, "Unused ignore IDs (matched no issue):")
		for _, id := range opts.UnusedIgnores {
			colorDim.Fprintf(w, "  %s\n", id)
		}
	}
}
