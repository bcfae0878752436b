package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuditLogger(t *testing.T) {
	auditLogger, err := NewAuditLogger()
	require.NoError(t, err)
	assert.NotNil(t, auditLogger)
	assert.NotNil(t, auditLogger.Logger)
	assert.False(t, auditLogger.enableFileLog)
	assert.Equal(t, "logs/audit", auditLogger.logRotation.LogDirectory)
	assert.Equal(t, int64(100*1024*1024), auditLogger.logRotation.MaxFileSize)
	assert.Equal(t, 10, auditLogger.logRotation.MaxFiles)
	assert.True(t, auditLogger.logRotation.RotateDaily)
}

func TestNewAuditLoggerWithFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "audit-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	auditLogger, err := NewAuditLoggerWithFile(tempDir)
	require.NoError(t, err)
	defer auditLogger.Close()

	assert.NotNil(t, auditLogger)
	assert.True(t, auditLogger.enableFileLog)
	assert.Equal(t, tempDir, auditLogger.logRotation.LogDirectory)
	assert.NotNil(t, auditLogger.auditFile)

	_, err = os.Stat(tempDir)
	assert.NoError(t, err)
}

func TestLogScanEvent(t *testing.T) {
	auditLogger, err := NewAuditLogger()
	require.NoError(t, err)

	tests := []struct {
		name   string
		event  ScanEvent
		fields map[string]interface{}
	}{
		{
			name:  "scan complete",
			event: ScanComplete,
			fields: map[string]interface{}{
				"packages": 42,
				"duration": 5.2,
			},
		},
		{
			name:  "analyzer panic",
			event: AnalyzerPanic,
			fields: map[string]interface{}{
				"analyzer": "eval",
				"package":  "left-pad",
			},
		},
		{
			name:  "prefetch failure",
			event: PrefetchFailure,
			fields: map[string]interface{}{
				"package": "chalk",
				"error":   "timeout",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				auditLogger.LogScanEvent(tt.event, tt.fields)
			})
		})
	}
}

func TestLogCacheOutcome(t *testing.T) {
	auditLogger, err := NewAuditLogger()
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		auditLogger.LogCacheOutcome("left-pad", "1.0.0", true)
		auditLogger.LogCacheOutcome("chalk", "2.0.0", false)
	})
}

func TestLogAnalyzerPanic(t *testing.T) {
	auditLogger, err := NewAuditLogger()
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		auditLogger.LogAnalyzerPanic("eval", "evil-pkg", "index.js", "runtime error: index out of range")
	})
}

func TestSanitizeFields(t *testing.T) {
	auditLogger, err := NewAuditLogger()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    map[string]interface{}
		expected map[string]interface{}
	}{
		{
			name: "normal fields",
			input: map[string]interface{}{
				"package":  "left-pad",
				"duration": 5.2,
				"success":  true,
			},
			expected: map[string]interface{}{
				"package":  "left-pad",
				"duration": 5.2,
				"success":  true,
			},
		},
		{
			name: "sensitive key names",
			input: map[string]interface{}{
				"password":     "secret123",
				"api_token":    "abc123",
				"secret_key":   "xyz789",
				"normal_field": "normal_value",
			},
			expected: map[string]interface{}{
				"password":     "[REDACTED]",
				"api_token":    "[REDACTED]",
				"secret_key":   "[REDACTED]",
				"normal_field": "normal_value",
			},
		},
		{
			name: "sensitive string values",
			input: map[string]interface{}{
				"command":    "mysql -u user -ppassword123",
				"url":        "https://api.github.com/token/abc123",
				"normal_cmd": "ls -la",
			},
			expected: map[string]interface{}{
				"command":    "[REDACTED SENSITIVE CONTENT]",
				"url":        "[REDACTED SENSITIVE CONTENT]",
				"normal_cmd": "ls -la",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := auditLogger.sanitizeFields(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSanitizeStringValue(t *testing.T) {
	auditLogger, err := NewAuditLogger()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normal string",
			input:    "https://registry.npmjs.org/left-pad",
			expected: "https://registry.npmjs.org/left-pad",
		},
		{
			name:     "string with password",
			input:    "mysql -u user -ppassword123",
			expected: "[REDACTED SENSITIVE CONTENT]",
		},
		{
			name:     "string with token",
			input:    "curl -H 'Authorization: token abc123'",
			expected: "[REDACTED SENSITIVE CONTENT]",
		},
		{
			name:     "string with secret",
			input:    "export SECRET=mysecret123",
			expected: "[REDACTED SENSITIVE CONTENT]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := auditLogger.sanitizeStringValue(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestScanEventTypes(t *testing.T) {
	events := []ScanEvent{
		ScanStart, ScanComplete, ScanFailure,
		AnalyzerPanic, ParseTimeout, PrefetchFailure, NetworkFailure,
		CacheHit, CacheMiss, CacheReadFail, CacheWriteFail,
		ConfigError, PathRejected,
	}

	for _, event := range events {
		assert.NotEmpty(t, string(event))
	}
}

func TestLogRotationConfig(t *testing.T) {
	auditLogger, err := NewAuditLogger()
	require.NoError(t, err)

	config := auditLogger.logRotation
	assert.Equal(t, int64(100*1024*1024), config.MaxFileSize)
	assert.Equal(t, 10, config.MaxFiles)
	assert.True(t, config.RotateDaily)
	assert.Equal(t, "logs/audit", config.LogDirectory)

	newConfig := LogRotationConfig{
		MaxFileSize:  50 * 1024 * 1024, // 50MB
		MaxFiles:     5,
		RotateDaily:  false,
		LogDirectory: "/custom/log/path",
	}

	auditLogger.SetLogRotation(newConfig)
	updatedConfig := auditLogger.logRotation

	assert.Equal(t, int64(50*1024*1024), updatedConfig.MaxFileSize)
	assert.Equal(t, 5, updatedConfig.MaxFiles)
	assert.False(t, updatedConfig.RotateDaily)
	assert.Equal(t, "/custom/log/path", updatedConfig.LogDirectory)
}

func TestGetLogDirectory(t *testing.T) {
	auditLogger, err := NewAuditLogger()
	require.NoError(t, err)

	assert.Equal(t, "logs/audit", auditLogger.GetLogDirectory())

	customDir := "/tmp/custom-audit"
	auditLogger.logRotation.LogDirectory = customDir
	assert.Equal(t, customDir, auditLogger.GetLogDirectory())
}

func TestAuditLoggerClose(t *testing.T) {
	auditLogger, err := NewAuditLogger()
	require.NoError(t, err)

	err = auditLogger.Close()
	assert.NoError(t, err)

	tempDir, err := os.MkdirTemp("", "audit-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	auditLoggerWithFile, err := NewAuditLoggerWithFile(tempDir)
	require.NoError(t, err)

	err = auditLoggerWithFile.Close()
	assert.NoError(t, err)
}

func TestFileLoggingIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping file logging integration test in short mode")
	}

	tempDir, err := os.MkdirTemp("", "audit-integration-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	auditLogger, err := NewAuditLoggerWithFile(tempDir)
	require.NoError(t, err)
	defer auditLogger.Close()

	auditLogger.LogScanEvent(ScanStart, map[string]interface{}{
		"dir": "/tmp/project",
	})

	auditLogger.LogCacheOutcome("left-pad", "1.0.0", true)

	files, err := filepath.Glob(filepath.Join(tempDir, "audit-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 1)

	fileInfo, err := os.Stat(files[0])
	require.NoError(t, err)
	assert.Greater(t, fileInfo.Size(), int64(0))
}
