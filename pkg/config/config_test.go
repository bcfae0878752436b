package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Load(t *testing.T) {
	tests := []struct {
		name         string
		configData   string
		expectError  bool
		validateFunc func(*testing.T, *Config)
	}{
		{
			name:        "load with empty path falls back to defaults",
			configData:  "",
			expectError: false,
			validateFunc: func(t *testing.T, c *Config) {
				assert.Equal(t, ".depspector-cache", c.CacheDir)
				assert.Equal(t, "low", c.ReportLevel)
				assert.Equal(t, "high", c.ExitWithFailureOnLevel)
				assert.NotNil(t, c.Analyzers)
			},
		},
		{
			name: "load valid config",
			configData: `{
				"exclude": ["sandbox"],
				"excludePaths": ["/fixtures/"],
				"ignoreIssues": ["lodash-eval-AB12CD"],
				"cacheDir": "/tmp/cache",
				"reportLevel": "medium",
				"exitWithFailureOnLevel": "critical",
				"failFast": true,
				"npm": {"registry": "https://registry.npmjs.org", "token": "abc"},
				"analyzers": {"eval": {"enabled": false}}
			}`,
			expectError: false,
			validateFunc: func(t *testing.T, c *Config) {
				assert.Equal(t, []string{"sandbox"}, c.Exclude)
				assert.Equal(t, "medium", c.ReportLevel)
				assert.True(t, c.FailFast)
				assert.Equal(t, "https://registry.npmjs.org", c.NPM.Registry)
				assert.False(t, *c.Analyzers["eval"].Enabled)
			},
		},
		{
			name:        "invalid json",
			configData:  `{"reportLevel": `,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var configFile string

			if tt.configData != "" {
				tmpDir := t.TempDir()
				configFile = filepath.Join(tmpDir, "depspector.config.json")
				err := os.WriteFile(configFile, []byte(tt.configData), 0644)
				require.NoError(t, err)
			}

			cfg, err := Load(configFile)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				if tt.validateFunc != nil {
					tt.validateFunc(t, cfg)
				}
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectError bool
	}{
		{name: "defaults are valid", config: &Config{}, expectError: false},
		{
			name: "invalid report level",
			config: func() *Config {
				c := &Config{}
				c.setDefaults()
				c.ReportLevel = "extreme"
				return c
			}(),
			expectError: true,
		},
		{
			name: "invalid exit-with-failure level",
			config: func() *Config {
				c := &Config{}
				c.setDefaults()
				c.ExitWithFailureOnLevel = "extreme"
				return c
			}(),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.setDefaults()
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileAnalyzerConfig_UnconfiguredReturnsNil(t *testing.T) {
	c := &Config{Analyzers: map[string]AnalyzerConfig{}}
	assert.Nil(t, c.FileAnalyzerConfig("eval"))
}

func TestPackageAnalyzerConfig_MapsFields(t *testing.T) {
	hours := 48
	c := &Config{Analyzers: map[string]AnalyzerConfig{
		"cooldown": {HoursSincePublish: hours},
	}}
	ac := c.PackageAnalyzerConfig("cooldown")
	require.NotNil(t, ac)
	assert.Equal(t, hours, ac.HoursSincePublish)
}
