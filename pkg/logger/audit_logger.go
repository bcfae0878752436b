// Package logger provides enhanced audit logging capabilities for scan
// events, with structured logging, sensitive-field redaction, and rotating
// file storage.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AuditLogger provides scan-focused logging with enhanced capabilities.
type AuditLogger struct {
	*Logger
	logRotation   LogRotationConfig
	sensitiveKeys []string
	auditFile     *os.File
	enableFileLog bool
}

// LogRotationConfig represents log rotation configuration.
type LogRotationConfig struct {
	MaxFileSize  int64  // Maximum file size in bytes before rotation
	MaxFiles     int    // Maximum number of log files to keep
	RotateDaily  bool   // Whether to rotate logs daily
	LogDirectory string // Directory to store audit logs
}

// ScanEvent represents one auditable event in a scan's lifecycle.
type ScanEvent string

const (
	// Scan lifecycle
	ScanStart    ScanEvent = "scan_start"
	ScanComplete ScanEvent = "scan_complete"
	ScanFailure  ScanEvent = "scan_failure"

	// Analysis events
	AnalyzerPanic   ScanEvent = "analyzer_panic"
	ParseTimeout    ScanEvent = "parse_timeout"
	PrefetchFailure ScanEvent = "prefetch_failure"
	NetworkFailure  ScanEvent = "network_failure"

	// Cache events
	CacheHit       ScanEvent = "cache_hit"
	CacheMiss      ScanEvent = "cache_miss"
	CacheReadFail  ScanEvent = "cache_read_fail"
	CacheWriteFail ScanEvent = "cache_write_fail"

	// Config/path events
	ConfigError  ScanEvent = "config_error"
	PathRejected ScanEvent = "path_rejected"
)

// NewAuditLogger creates a new audit logger with enhanced security features.
func NewAuditLogger() (*AuditLogger, error) {
	baseLogger := New()

	rotationConfig := LogRotationConfig{
		MaxFileSize:  100 * 1024 * 1024, // 100MB
		MaxFiles:     10,
		RotateDaily:  true,
		LogDirectory: "logs/audit",
	}

	sensitiveKeys := []string{
		"password", "token", "key", "secret", "credential",
		"auth", "bearer", "api_key", "access_token", "refresh_token",
	}

	auditLogger := &AuditLogger{
		Logger:        baseLogger,
		logRotation:   rotationConfig,
		sensitiveKeys: sensitiveKeys,
		enableFileLog: false,
	}

	return auditLogger, nil
}

// NewAuditLoggerWithFile creates an audit logger with file output enabled.
func NewAuditLoggerWithFile(logDir string) (*AuditLogger, error) {
	auditLogger, err := NewAuditLogger()
	if err != nil {
		return nil, err
	}

	auditLogger.logRotation.LogDirectory = logDir

	if err := auditLogger.enableFileLogging(); err != nil {
		return nil, fmt.Errorf("failed to enable file logging: %w", err)
	}

	return auditLogger, nil
}

// enableFileLogging sets up file-based audit logging.
func (al *AuditLogger) enableFileLogging() error {
	if err := os.MkdirAll(al.logRotation.LogDirectory, 0750); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(al.logRotation.LogDirectory,
		fmt.Sprintf("audit-%s.log", time.Now().Format("2006-01-02")))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return fmt.Errorf("failed to open audit log file: %w", err)
	}

	al.auditFile = file
	al.enableFileLog = true
	al.Logger.SetOutput(file)

	return nil
}

// LogScanEvent logs a scan-lifecycle event with structured fields.
func (al *AuditLogger) LogScanEvent(event ScanEvent, fields map[string]interface{}) {
	sanitizedFields := al.sanitizeFields(fields)

	auditFields := map[string]interface{}{
		"audit_event": string(event),
		"timestamp":   time.Now().Unix(),
		"source":      "depspector",
	}

	for k, v := range sanitizedFields {
		auditFields[k] = v
	}

	switch event {
	case ScanFailure, AnalyzerPanic, ConfigError, PathRejected:
		al.WithFields(auditFields).Error("scan event occurred")
	case ParseTimeout, PrefetchFailure, NetworkFailure, CacheReadFail, CacheWriteFail:
		al.WithFields(auditFields).Warn("scan event occurred")
	default:
		al.WithFields(auditFields).Info("scan event occurred")
	}

	if al.enableFileLog {
		al.checkLogRotation()
	}
}

// LogCacheOutcome logs a cache lookup's hit/miss outcome for one package.
func (al *AuditLogger) LogCacheOutcome(pkgName, version string, hit bool) {
	fields := map[string]interface{}{
		"package": pkgName,
		"version": version,
	}
	if hit {
		al.LogScanEvent(CacheHit, fields)
	} else {
		al.LogScanEvent(CacheMiss, fields)
	}
}

// LogAnalyzerPanic logs a recovered analyzer panic, identifying the analyzer
// and package so the failure can be isolated without crashing the scan.
func (al *AuditLogger) LogAnalyzerPanic(analyzer, pkgName, file string, recovered interface{}) {
	al.LogScanEvent(AnalyzerPanic, map[string]interface{}{
		"analyzer":  analyzer,
		"package":   pkgName,
		"file":      file,
		"recovered": fmt.Sprintf("%v", recovered),
	})
}

// sanitizeFields removes or redacts sensitive information from log fields.
func (al *AuditLogger) sanitizeFields(fields map[string]interface{}) map[string]interface{} {
	sanitized := make(map[string]interface{})

	for key, value := range fields {
		keyLower := strings.ToLower(key)

		isSensitive := false
		for _, sensitiveKey := range al.sensitiveKeys {
			if strings.Contains(keyLower, sensitiveKey) {
				isSensitive = true
				break
			}
		}

		if isSensitive {
			sanitized[key] = "[REDACTED]"
		} else if str, ok := value.(string); ok {
			sanitized[key] = al.sanitizeStringValue(str)
		} else {
			sanitized[key] = value
		}
	}

	return sanitized
}

// sanitizeStringValue sanitizes string values to remove sensitive information.
func (al *AuditLogger) sanitizeStringValue(value string) string {
	valueLower := strings.ToLower(value)

	for _, sensitiveKey := range al.sensitiveKeys {
		if strings.Contains(valueLower, sensitiveKey) {
			return "[REDACTED SENSITIVE CONTENT]"
		}
	}

	return value
}

// checkLogRotation checks if log rotation is needed and performs it.
func (al *AuditLogger) checkLogRotation() {
	if !al.enableFileLog || al.auditFile == nil {
		return
	}

	fileInfo, err := al.auditFile.Stat()
	if err != nil {
		al.WithFields(map[string]interface{}{
			"error": err.Error(),
		}).Error("failed to get audit log file info")
		return
	}

	if fileInfo.Size() >= al.logRotation.MaxFileSize {
		al.rotateLogFile()
	}

	if al.logRotation.RotateDaily {
		today := time.Now().Format("2006-01-02")
		if !strings.Contains(fileInfo.Name(), today) {
			al.rotateLogFile()
		}
	}
}

// rotateLogFile performs log file rotation.
func (al *AuditLogger) rotateLogFile() {
	if al.auditFile != nil {
		al.auditFile.Close()
	}

	logPath := filepath.Join(al.logRotation.LogDirectory,
		fmt.Sprintf("audit-%s.log", time.Now().Format("2006-01-02-150405")))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		al.Error("failed to create new audit log file: " + err.Error())
		return
	}

	al.auditFile = file
	al.Logger.SetOutput(file)

	al.cleanupOldLogFiles()
}

// cleanupOldLogFiles removes old log files based on retention policy.
func (al *AuditLogger) cleanupOldLogFiles() {
	files, err := filepath.Glob(filepath.Join(al.logRotation.LogDirectory, "audit-*.log"))
	if err != nil {
		al.Error("failed to list audit log files: " + err.Error())
		return
	}

	if len(files) > al.logRotation.MaxFiles {
		for i := 0; i < len(files)-al.logRotation.MaxFiles; i++ {
			if err := os.Remove(files[i]); err != nil {
				al.WithFields(map[string]interface{}{
					"file":  files[i],
					"error": err.Error(),
				}).Error("failed to remove old audit log file")
			}
		}
	}
}

// Close properly closes the audit logger and its resources.
func (al *AuditLogger) Close() error {
	if al.auditFile != nil {
		return al.auditFile.Close()
	}
	return nil
}

// GetLogDirectory returns the current log directory.
func (al *AuditLogger) GetLogDirectory() string {
	return al.logRotation.LogDirectory
}

// SetLogRotation updates log rotation configuration.
func (al *AuditLogger) SetLogRotation(config LogRotationConfig) {
	al.logRotation = config
}
