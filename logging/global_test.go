package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseLevel(tt.input)
			if got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPackageFunctionsWithoutInit(t *testing.T) {
	// Package level helpers must not panic before InitLogger runs,
	// they fall back to a stderr logger.
	saved := DefaultLoggingService
	DefaultLoggingService = nil
	defer func() { DefaultLoggingService = saved }()

	Info("info without init", "key", "value")
	Warn("warn without init")
	Error("error without init")
	Debug("debug without init")
}

func TestInitLogger(t *testing.T) {
	saved := DefaultLoggingService
	defer func() { DefaultLoggingService = saved }()

	InitLogger(t.TempDir(), slog.LevelInfo, 1, 1024*1024)

	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		t.Fatal("InitLogger did not set the default logging service")
	}

	Info("logger initialized")
}
