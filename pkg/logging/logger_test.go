// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
		{Level(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo}, // Unknown defaults to Info
		{Level(-1), slog.LevelInfo}, // Unknown defaults to Info
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			got := tt.level.toSlogLevel()
			if got != tt.want {
				t.Errorf("Level.toSlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_Constants(t *testing.T) {
	// Verify ordering: Debug < Info < Warn < Error
	if LevelDebug >= LevelInfo {
		t.Error("LevelDebug should be < LevelInfo")
	}
	if LevelInfo >= LevelWarn {
		t.Error("LevelInfo should be < LevelWarn")
	}
	if LevelWarn >= LevelError {
		t.Error("LevelWarn should be < LevelError")
	}
}

// =============================================================================
// Logger Constructor Tests
// =============================================================================

func TestNew_DefaultConfig(t *testing.T) {
	logger := New(Config{})
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.slog == nil {
		t.Error("logger.slog is nil")
	}
	defer logger.Close()
}

func TestNew_AllLevels(t *testing.T) {
	levels := []Level{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for _, level := range levels {
		t.Run(level.String(), func(t *testing.T) {
			logger := New(Config{Level: level, Quiet: true})
			if logger == nil {
				t.Fatal("New() returned nil")
			}
			defer logger.Close()
		})
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("Default() returned nil")
	}
	if logger.config.Service != "compass" {
		t.Errorf("Default() service = %q, want %q", logger.config.Service, "compass")
	}
	defer logger.Close()
}

// =============================================================================
// File Logging Tests
// =============================================================================

func TestNew_FileLogging(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelInfo,
		LogDir:  dir,
		Service: "test",
		Quiet:   true,
	})
	if logger.file == nil {
		t.Fatal("expected log file to be opened")
	}

	logger.Info("hello file", "key", "value")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 log file, got %d", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "test_") || !strings.HasSuffix(name, ".log") {
		t.Errorf("unexpected log file name %q", name)
	}

	content, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "hello file") {
		t.Errorf("log file missing message, got: %s", content)
	}
	// File logs are always JSON
	if !strings.Contains(string(content), `"key":"value"`) {
		t.Errorf("log file missing JSON attrs, got: %s", content)
	}
}

func TestNew_FileLoggingCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	logger := New(Config{LogDir: dir, Service: "test", Quiet: true})
	defer logger.Close()

	if logger.file == nil {
		t.Fatal("expected nested log directory to be created")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("log directory not created: %v", err)
	}
}

func TestNew_QuietWithoutFileFallsBackToStderr(t *testing.T) {
	// Quiet with no file still produces a usable logger.
	logger := New(Config{Quiet: true})
	defer logger.Close()
	logger.Info("should not panic")
}

// =============================================================================
// Level Filtering Tests
// =============================================================================

func TestLogger_LevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelWarn,
		LogDir:  dir,
		Service: "filter",
		Quiet:   true,
	})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")
	logger.Close()

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatal("expected log file")
	}
	content, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	text := string(content)

	if strings.Contains(text, "debug message") {
		t.Error("debug message should be filtered at Warn level")
	}
	if strings.Contains(text, "info message") {
		t.Error("info message should be filtered at Warn level")
	}
	if !strings.Contains(text, "warn message") {
		t.Error("warn message missing")
	}
	if !strings.Contains(text, "error message") {
		t.Error("error message missing")
	}
}

// =============================================================================
// With / Service Attribute Tests
// =============================================================================

func TestLogger_With(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Service: "with", Quiet: true})

	child := logger.With("session_id", "abc-123")
	child.Info("child message")
	logger.Info("parent message")
	logger.Close()

	entries, _ := os.ReadDir(dir)
	content, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "abc-123") {
		t.Error("child log missing inherited attribute")
	}
	if strings.Contains(lines[1], "abc-123") {
		t.Error("parent log should not carry child attribute")
	}
}

func TestLogger_ServiceAttribute(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Service: "tagged", Quiet: true})
	logger.Info("message")
	logger.Close()

	entries, _ := os.ReadDir(dir)
	content, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if !strings.Contains(string(content), `"service":"tagged"`) {
		t.Errorf("log missing service attribute, got: %s", content)
	}
}

func TestLogger_Slog(t *testing.T) {
	logger := New(Config{Quiet: true})
	defer logger.Close()
	if logger.Slog() == nil {
		t.Error("Slog() returned nil")
	}
}

// =============================================================================
// Multi-Handler Tests
// =============================================================================

func TestMultiHandler_FansOut(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&buf1, nil),
		slog.NewJSONHandler(&buf2, nil),
	}}
	logger := slog.New(h)

	logger.Info("fan out", "n", 1)

	if !strings.Contains(buf1.String(), "fan out") {
		t.Error("text handler missed record")
	}
	if !strings.Contains(buf2.String(), `"fan out"`) {
		t.Error("json handler missed record")
	}
}

func TestMultiHandler_RespectsPerHandlerLevels(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("multi handler should be enabled when any handler is")
	}

	logger := slog.New(h)
	logger.Debug("debug only")

	if !strings.Contains(debugBuf.String(), "debug only") {
		t.Error("debug handler missed record")
	}
	if warnBuf.Len() != 0 {
		t.Error("warn handler should have filtered the debug record")
	}
}

func TestMultiHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&buf, nil),
	}}
	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("app", "compass")}))

	logger.Info("attred")
	if !strings.Contains(buf.String(), `"app":"compass"`) {
		t.Errorf("WithAttrs attribute missing, got: %s", buf.String())
	}
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func TestLogger_ConcurrentUse(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Service: "conc", Quiet: true})
	defer logger.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				logger.Info("concurrent", "goroutine", n, "iter", j)
			}
		}(i)
	}
	wg.Wait()
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/logs", filepath.Join(home, "logs")},
		{"/var/log", "/var/log"},
		{"relative/path", "relative/path"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClose_Idempotent(t *testing.T) {
	logger := New(Config{Quiet: true})
	if err := logger.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
}
