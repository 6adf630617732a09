package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdclab/mdc-service/internal/platform/mdc"
)

// Context tests

func TestFromContext_NilContext(t *testing.T) {
	logger := FromContext(nil) //nolint:staticcheck // Testing nil guard intentionally
	assert.NotNil(t, logger)
	assert.Equal(t, defaultLogger, logger)
}

func TestFromContext_NoLogger(t *testing.T) {
	logger := FromContext(context.Background())
	assert.NotNil(t, logger)
	assert.Equal(t, defaultLogger, logger)
}

func TestFromContext_WithLogger(t *testing.T) {
	customLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := WithContext(context.Background(), customLogger)
	assert.Equal(t, customLogger, FromContext(ctx))
}

func TestSetDefault(t *testing.T) {
	originalDefault := defaultLogger

	customLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	SetDefault(customLogger)

	assert.Equal(t, customLogger, FromContext(context.Background()))
	assert.Equal(t, customLogger, defaultLogger)

	SetDefault(originalDefault)
}

// MDC handler tests

func TestMDCHandler_AttachesDiagnosticContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewMDCHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := mdc.NewContext(context.Background())
	mdc.Put(ctx, mdc.KeyRequestID, "abc123")
	mdc.Put(ctx, mdc.KeyUserID, "user-7")

	logger.InfoContext(ctx, "processing order")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc123", entry["requestId"])
	assert.Equal(t, "user-7", entry["userId"])
	assert.Equal(t, "processing order", entry["msg"])
}

func TestMDCHandler_ReadsStoreAtEmissionTime(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewMDCHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := mdc.NewContext(context.Background())
	mdc.Put(ctx, mdc.KeyRequestID, "r1")

	logger.InfoContext(ctx, "first")

	mdc.Put(ctx, "orderId", "ORD-1")
	logger.InfoContext(ctx, "second")

	mdc.Remove(ctx, "orderId")
	logger.InfoContext(ctx, "third")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	assert.NotContains(t, lines[0], "orderId")
	assert.Contains(t, lines[1], `"orderId":"ORD-1"`)
	assert.NotContains(t, lines[2], "orderId")

	for _, line := range lines {
		assert.Contains(t, line, `"requestId":"r1"`)
	}
}

func TestMDCHandler_NoStoreNoFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewMDCHandler(slog.NewJSONHandler(&buf, nil)))

	logger.InfoContext(context.Background(), "no diagnostic context")

	assert.NotContains(t, buf.String(), "requestId")
}

func TestMDCHandler_WithAttrsPreservesEnrichment(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewMDCHandler(slog.NewJSONHandler(&buf, nil))).
		With(slog.String("component", "test"))

	ctx := mdc.NewContext(context.Background())
	mdc.Put(ctx, mdc.KeyRequestID, "r2")

	logger.InfoContext(ctx, "message")

	output := buf.String()
	assert.Contains(t, output, `"component":"test"`)
	assert.Contains(t, output, `"requestId":"r2"`)
}

// Logger tests

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{
		Level:   "info",
		Format:  "json",
		Service: "test-service",
		Version: "1.0.0",
	}

	logger := NewWithWriter(cfg, &buf)
	require.NotNil(t, logger)

	logger.Info("test message", slog.String("key", "value"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "test-service", entry["service_name"])
	assert.Equal(t, "1.0.0", entry["service_version"])
}

func TestNewWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{
		Level:   "debug",
		Format:  "text",
		Service: "test-service",
		Version: "1.0.0",
	}

	logger := NewWithWriter(cfg, &buf)
	require.NotNil(t, logger)

	logger.Debug("debug message")

	output := buf.String()
	assert.Contains(t, output, "debug message")
	assert.Contains(t, output, "test-service")
}

func TestNewWithWriter_PrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{
		Level:   "info",
		Format:  "pretty",
		Service: "test-service",
		Version: "1.0.0",
	}

	logger := NewWithWriter(cfg, &buf)
	require.NotNil(t, logger)

	logger.Info("pretty message")

	assert.Contains(t, buf.String(), "pretty message")
}

func TestNewWithWriter_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{
		Level:  "info",
		Format: "json",
	}

	logger := NewWithWriter(cfg, &buf)
	logger.Info("login", slog.String("password", "hunter2"))

	assert.NotContains(t, buf.String(), "hunter2")
}

func TestNewWithWriter_WithFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "test.log")

	var buf bytes.Buffer
	cfg := &Config{
		Level:   "info",
		Format:  "json",
		Service: "test-service",
		Version: "1.0.0",
		File: FileConfig{
			Enabled:    true,
			Path:       logFile,
			MaxSizeMB:  1,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}

	logger := NewWithWriter(cfg, &buf)
	require.NotNil(t, logger)

	logger.Info("test message to file")

	assert.Contains(t, buf.String(), "test message to file")

	require.FileExists(t, logFile)

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "test message to file")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{name: "trace level", input: "trace", expected: LevelTrace},
		{name: "debug level", input: "debug", expected: slog.LevelDebug},
		{name: "info level", input: "info", expected: slog.LevelInfo},
		{name: "warn level", input: "warn", expected: slog.LevelWarn},
		{name: "warning level", input: "warning", expected: slog.LevelWarn},
		{name: "error level", input: "error", expected: slog.LevelError},
		{name: "unknown level defaults to info", input: "unknown", expected: slog.LevelInfo},
		{name: "empty string defaults to info", input: "", expected: slog.LevelInfo},
		{name: "case insensitive DEBUG", input: "DEBUG", expected: slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestSlogToCharmLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    slog.Level
		expected log.Level
	}{
		{name: "trace maps to debug", input: LevelTrace, expected: log.DebugLevel},
		{name: "debug level", input: slog.LevelDebug, expected: log.DebugLevel},
		{name: "info level", input: slog.LevelInfo, expected: log.InfoLevel},
		{name: "warn level", input: slog.LevelWarn, expected: log.WarnLevel},
		{name: "error level", input: slog.LevelError, expected: log.ErrorLevel},
		{name: "very high level maps to error", input: slog.Level(12), expected: log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, slogToCharmLevel(tt.input))
		})
	}
}
