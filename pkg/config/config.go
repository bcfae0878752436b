// Package config loads depspector's JSON scanner configuration: ignore
// patterns, cache and reporting behavior, registry credentials, and
// per-analyzer tunables. Structural idiom (Load/setDefaults/Validate)
// follows the teacher's pkg/config/config.go, adapted from YAML to JSON
// per SPEC_FULL.md §4.10.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/drodil/depspector/internal/fileanalyzer"
	"github.com/drodil/depspector/internal/pkganalyzer"
	"github.com/drodil/depspector/pkg/types"
)

// defaultSearchPaths is the order Load checks when no explicit path is
// given, per §4.10.
var defaultSearchPaths = []string{
	".depspectorrc", ".depspectorrc.json", "depspector.config.json",
}

// NPMAuth carries registry credentials for the prefetcher's registry
// client.
type NPMAuth struct {
	Registry string `json:"registry"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// AnalyzerConfig is a per-analyzer optional tunables bag mirroring
// original_source/src/config.rs's field set; unrecognized analyzer names
// are accepted and ignored.
type AnalyzerConfig struct {
	Enabled                  *bool           `json:"enabled,omitempty"`
	Severity                 *string         `json:"severity,omitempty"`
	MinBufferLength          int             `json:"min_buffer_length,omitempty"`
	HoursSincePublish        int             `json:"hours_since_publish,omitempty"`
	DaysSincePreviousPublish int             `json:"days_since_previous_publish,omitempty"`
	AllowedEnvVars           []string        `json:"allowed_env_vars,omitempty"`
	AdditionalDangerousPaths []string        `json:"additional_dangerous_paths,omitempty"`
	AllowedIPs               []string        `json:"allowed_ips,omitempty"`
	AllowedHosts              []string        `json:"allowed_hosts,omitempty"`
	MinStringLength           int             `json:"min_string_length,omitempty"`
	AllowedScripts            []string        `json:"allowed_scripts,omitempty"`
	AllowedCommands           []string        `json:"allowed_commands,omitempty"`
	PopularPackages           []string        `json:"popular_packages,omitempty"`
	WhitelistedPublishers     []string        `json:"whitelisted_publishers,omitempty"`
	AllowedLicenses           []string        `json:"allowed_licenses,omitempty"`
}

// Config is depspector's top-level scanner configuration.
type Config struct {
	Exclude                []string                  `json:"exclude"`
	ExcludePaths           []string                  `json:"excludePaths"`
	IgnoreIssues           []string                  `json:"ignoreIssues"`
	CacheDir               string                    `json:"cacheDir"`
	ReportLevel            string                    `json:"reportLevel"`
	ExitWithFailureOnLevel string                    `json:"exitWithFailureOnLevel"`
	FailFast               bool                      `json:"failFast"`
	NPM                    NPMAuth                    `json:"npm"`
	Analyzers              map[string]AnalyzerConfig `json:"analyzers"`
}

func (c *Config) setDefaults() {
	if c.CacheDir == "" {
		c.CacheDir = ".depspector-cache"
	}
	if c.ReportLevel == "" {
		c.ReportLevel = "low"
	}
	if c.ExitWithFailureOnLevel == "" {
		c.ExitWithFailureOnLevel = "high"
	}
	if c.Analyzers == nil {
		c.Analyzers = make(map[string]AnalyzerConfig)
	}
}

// Validate rejects structurally invalid configuration.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"low": true, "medium": true, "high": true, "critical": true}
	if !validLevels[c.ReportLevel] {
		return fmt.Errorf("invalid reportLevel: %s", c.ReportLevel)
	}
	if c.ExitWithFailureOnLevel != "off" && !validLevels[c.ExitWithFailureOnLevel] {
		return fmt.Errorf("invalid exitWithFailureOnLevel: %s", c.ExitWithFailureOnLevel)
	}
	return nil
}

// Load reads and parses the JSON config at path. If path is empty, Load
// searches defaultSearchPaths in order and falls back to an all-defaults
// Config if none exist.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	candidates := []string{path}
	if path == "" {
		candidates = defaultSearchPaths
	}

	var data []byte
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		b, err := os.ReadFile(candidate)
		if err == nil {
			data = b
			break
		}
	}

	if data != nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func severityPtr(s *string) *types.Severity {
	if s == nil {
		return nil
	}
	sev := types.ParseSeverity(*s)
	return &sev
}

// FileAnalyzerConfig builds a fileanalyzer.Config from the named
// analyzer's AnalyzerConfig entry, or nil defaults if unconfigured.
func (c *Config) FileAnalyzerConfig(name string) *fileanalyzer.Config {
	ac, ok := c.Analyzers[name]
	if !ok {
		return nil
	}
	return &fileanalyzer.Config{
		Enabled:               ac.Enabled,
		SeverityOverride:      severityPtr(ac.Severity),
		MinBufferLength:       ac.MinBufferLength,
		AllowedEnvVars:        ac.AllowedEnvVars,
		AdditionalDangerPaths: ac.AdditionalDangerousPaths,
		AllowedIPs:            ac.AllowedIPs,
		AllowedHosts:          ac.AllowedHosts,
		MinStringLength:       ac.MinStringLength,
		AllowedCommands:       ac.AllowedCommands,
	}
}

// PackageAnalyzerConfig builds a pkganalyzer.Config from the named
// analyzer's AnalyzerConfig entry, or nil defaults if unconfigured.
func (c *Config) PackageAnalyzerConfig(name string) *pkganalyzer.Config {
	ac, ok := c.Analyzers[name]
	if !ok {
		return nil
	}
	return &pkganalyzer.Config{
		Enabled:                  ac.Enabled,
		SeverityOverride:         severityPtr(ac.Severity),
		HoursSincePublish:        ac.HoursSincePublish,
		DaysSincePreviousPublish: ac.DaysSincePreviousPublish,
		WhitelistedPublishers:    ac.WhitelistedPublishers,
		AllowedScripts:           ac.AllowedScripts,
		AllowedCommands:          ac.AllowedCommands,
		TyposquatAdditions:       ac.PopularPackages,
		AllowedLicenses:          ac.AllowedLicenses,
	}
}
