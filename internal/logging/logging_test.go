package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		logger, err := New(tt.level)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", tt.level, err)
		}
		if !logger.Core().Enabled(tt.want) {
			t.Errorf("New(%q): expected %v to be enabled", tt.level, tt.want)
		}
		if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
			t.Errorf("New(%q): expected %v to be disabled", tt.level, tt.want-1)
		}
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("verbose"); err == nil {
		t.Error("Expected unknown level to fail")
	}
}
