// Command depspector scans an installed npm dependency tree for suspicious
// or malicious patterns and reports per-package issues and trust scores.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/drodil/depspector/internal/depgraph"
	"github.com/drodil/depspector/internal/pipeline"
	"github.com/drodil/depspector/internal/prefetch"
	"github.com/drodil/depspector/internal/resultcache"
	"github.com/drodil/depspector/pkg/config"
	"github.com/drodil/depspector/pkg/logger"
	"github.com/drodil/depspector/pkg/report"
	"github.com/drodil/depspector/pkg/types"
)

// Version is set during build.
var Version = "dev"

const (
	defaultRegistryURL = "https://registry.npmjs.org"
	defaultVulnURL     = "https://api.osv.dev/v1/querybatch"
)

type scanFlags struct {
	configPath       string
	dir              string
	nodeModules      string
	concurrency      int
	offline          bool
	reportLevel      string
	formats          []string
	output           string
	ignore           []string
	only             []string
	noCache          bool
	benchmark        bool
	includeDev       bool
	includeOptional  bool
	includePeer      bool
	includeTransient bool
	includeLocal     bool
	failFast         bool
}

var rootCmd = &cobra.Command{
	Use:   "depspector",
	Short: "Post-install security analyzer for npm dependency trees",
	Long: `depspector scans an installed node_modules tree for suspicious or
malicious code patterns, known vulnerabilities, typosquatting, and other
supply-chain risk signals, reporting stable per-issue identifiers and a
per-package trust score.`,
}

func init() {
	flags := &scanFlags{}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a project's installed dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(flags)
		},
	}

	scanCmd.Flags().StringVar(&flags.configPath, "config", "", "path to JSON config file")
	scanCmd.Flags().StringVar(&flags.dir, "dir", ".", "project working directory")
	scanCmd.Flags().StringVar(&flags.nodeModules, "node-modules", "", "installed dependency directory (defaults to <dir>/node_modules)")
	scanCmd.Flags().IntVar(&flags.concurrency, "concurrency", 50, "bounded concurrency for per-package analysis")
	scanCmd.Flags().BoolVar(&flags.offline, "offline", false, "skip the prefetch phase and every network-requiring analyzer")
	scanCmd.Flags().StringVar(&flags.reportLevel, "report-level", "", "minimum severity to include in the report (overrides config)")
	scanCmd.Flags().StringArrayVar(&flags.formats, "format", []string{"console"}, "report format: json, yaml, csv, console (repeatable)")
	scanCmd.Flags().StringVar(&flags.output, "output", "", "output file path (ignored for console format)")
	scanCmd.Flags().StringArrayVar(&flags.ignore, "ignore", nil, "ignore-ID pattern to suppress (repeatable)")
	scanCmd.Flags().StringArrayVar(&flags.only, "only", nil, "restrict analysis to these analyzer names (repeatable)")
	scanCmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "bypass the result cache entirely")
	scanCmd.Flags().BoolVar(&flags.benchmark, "benchmark", false, "collect and print per-analyzer timing")
	scanCmd.Flags().BoolVar(&flags.includeDev, "include-dev", false, "include devDependencies")
	scanCmd.Flags().BoolVar(&flags.includeOptional, "include-optional", true, "include optionalDependencies")
	scanCmd.Flags().BoolVar(&flags.includePeer, "include-peer", true, "include peerDependencies")
	scanCmd.Flags().BoolVar(&flags.includeTransient, "include-transient", true, "include transient (indirect) dependencies")
	scanCmd.Flags().BoolVar(&flags.includeLocal, "include-local", false, "include local workspace packages in the report")
	scanCmd.Flags().BoolVar(&flags.failFast, "fail-fast", false, "stop at the first package with any issue")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("depspector %s\n", Version)
		},
	})
}

func runScan(flags *scanFlags) error {
	log := logger.New()

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		log.ErrorWithExit(fmt.Sprintf("configuration error: %v", err), 1)
		return err
	}

	projectDir, err := filepath.Abs(flags.dir)
	if err != nil {
		log.ErrorWithExit(fmt.Sprintf("invalid project directory: %v", err), 1)
		return err
	}
	nodeModulesDir := flags.nodeModules
	if nodeModulesDir == "" {
		nodeModulesDir = filepath.Join(projectDir, "node_modules")
	}

	graph, err := depgraph.Build(depgraph.BuildOptions{
		ProjectDir:        projectDir,
		NodeModulesDir:    nodeModulesDir,
		IncludeWorkspaces: flags.includeLocal,
		IncludeExternal:   true,
		IncludeDev:        flags.includeDev,
		IncludeOptional:   flags.includeOptional,
		IncludePeer:       flags.includePeer,
		IncludeTransient:  flags.includeTransient,
		ExcludeSubstrings: cfg.ExcludePaths,
	})
	if err != nil {
		log.ErrorWithExit(fmt.Sprintf("dependency discovery failed: %v", err), 1)
		return err
	}
	graph.Classify()

	var cache *resultcache.Cache
	if !flags.noCache {
		namespace := resultcache.Namespace(projectDir, nodeModulesDir)
		cache, err = resultcache.Open(cfg.CacheDir, namespace)
		if err != nil {
			log.WithFields(map[string]interface{}{"error": err.Error()}).Warn("result cache unavailable; continuing without it")
		} else {
			defer cache.Close()
		}
	}

	var prefetcher *prefetch.Prefetcher
	if !flags.offline {
		httpClient := &http.Client{Timeout: 30 * time.Second}
		registryURL := cfg.NPM.Registry
		if registryURL == "" {
			registryURL = defaultRegistryURL
		}
		registryClient := &prefetch.RegistryClient{
			HTTPClient:  httpClient,
			BaseURL:     registryURL,
			BearerToken: cfg.NPM.Token,
			BasicUser:   cfg.NPM.Username,
			BasicPass:   cfg.NPM.Password,
			UserAgent:   "depspector/" + Version,
		}
		store := prefetch.NewStore(registryClient, cfg.CacheDir)
		vulnClient := &prefetch.VulnClient{
			HTTPClient: httpClient,
			BaseURL:    defaultVulnURL,
			Ecosystem:  "npm",
		}
		prefetcher = &prefetch.Prefetcher{
			Store:       store,
			VulnClient:  vulnClient,
			Concurrency: int64(flags.concurrency),
		}
	}

	var benchmark *pipeline.Benchmark
	if flags.benchmark {
		benchmark = pipeline.NewBenchmark()
	}

	driver := &pipeline.Driver{
		Graph:                 graph,
		Cache:                 cache,
		Prefetcher:            prefetcher,
		FileAnalyzerConfig:    cfg.FileAnalyzerConfig,
		PackageAnalyzerConfig: cfg.PackageAnalyzerConfig,
		Log:                   log,
		Benchmark:             benchmark,
		Options: pipeline.Options{
			Concurrency:    int64(flags.concurrency),
			Offline:        flags.offline,
			FailFast:       flags.failFast,
			NoCache:        flags.noCache || cache == nil,
			Exclude:        cfg.Exclude,
			ExcludePaths:   cfg.ExcludePaths,
			IgnorePatterns: append(append([]string{}, cfg.IgnoreIssues...), flags.ignore...),
			OnlyAnalyzers:  flags.only,
		},
	}

	results, err := driver.Run(context.Background())
	if err != nil {
		log.ErrorWithExit(fmt.Sprintf("scan failed: %v", err), 1)
		return err
	}

	reportLevel := cfg.ReportLevel
	if flags.reportLevel != "" {
		reportLevel = flags.reportLevel
	}
	opts := report.Options{
		MinSeverity:   types.ParseSeverity(reportLevel),
		UnusedIgnores: driver.Unused(),
	}
	filtered := report.Filter(results, opts)

	if err := writeReports(flags, filtered, opts, benchmark); err != nil {
		log.ErrorWithExit(fmt.Sprintf("failed to write report: %v", err), 1)
		return err
	}

	failLevel := cfg.ExitWithFailureOnLevel
	if failLevel != "off" && report.HasIssuesAtLevel(filtered, failLevel) {
		os.Exit(1)
	}
	return nil
}

func writeReports(flags *scanFlags, results []types.AnalysisResult, opts report.Options, benchmark *pipeline.Benchmark) error {
	for _, format := range flags.formats {
		switch format {
		case "json":
			if err := report.WriteJSON(results, outputPath(flags.output, "json")); err != nil {
				return err
			}
		case "yaml":
			if err := report.WriteYAML(results, outputPath(flags.output, "yaml")); err != nil {
				return err
			}
		case "csv":
			if err := report.WriteCSV(results, outputPath(flags.output, "csv")); err != nil {
				return err
			}
		case "console":
			report.PrintConsole(os.Stdout, results, opts)
			if benchmark != nil {
				printBenchmark(benchmark.Snapshot())
			}
		default:
			return fmt.Errorf("unknown report format: %s", format)
		}
	}
	return nil
}

func outputPath(output, format string) string {
	if output != "" {
		return output
	}
	return "depspector-report." + format
}

func printBenchmark(snap pipeline.Snapshot) {
	fmt.Printf("\nBenchmark: %d packages, %d files, %d bytes read\n", snap.TotalPackages, snap.TotalFiles, snap.TotalBytes)
	fmt.Printf("  discovery: %s  prefetch: %s\n", snap.DiscoveryTime, snap.PrefetchTime)
	for name, stats := range snap.Analyzers {
		fmt.Printf("  %-14s invocations=%-6d issues=%-4d avg=%s\n", name, stats.Invocations, stats.IssuesFound, stats.AvgTime())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
