package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	for _, tc := range []struct {
		level   string
		verbose bool
		want    zapcore.Level
	}{
		{level: "", want: zapcore.InfoLevel},
		{level: "warn", want: zapcore.WarnLevel},
		{level: " error ", want: zapcore.ErrorLevel},
		{level: "error", verbose: true, want: zapcore.DebugLevel},
	} {
		logger, err := New(tc.level, tc.verbose)
		if err != nil {
			t.Fatalf("New(%q, %v): %v", tc.level, tc.verbose, err)
		}
		if !logger.Core().Enabled(tc.want) {
			t.Fatalf("New(%q, %v): expected %s enabled", tc.level, tc.verbose, tc.want)
		}
		if tc.want > zapcore.DebugLevel && logger.Core().Enabled(tc.want-1) {
			t.Fatalf("New(%q, %v): expected %s disabled", tc.level, tc.verbose, tc.want-1)
		}
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New("chatty", false); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
