package logging

import (
	"log/slog"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"  error  ", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := levelFromString(tt.input); got != tt.want {
			t.Errorf("levelFromString(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewReturnsLogger(t *testing.T) {
	if New("debug") == nil {
		t.Fatal("expected a logger")
	}
}
