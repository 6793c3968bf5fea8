package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   zapcore.Level
		wantOK bool
	}{
		{"debug", zapcore.DebugLevel, true},
		{"INFO", zapcore.InfoLevel, true},
		{" warn ", zapcore.WarnLevel, true},
		{"error", zapcore.ErrorLevel, true},
		{"", zapcore.InfoLevel, false},
		{"verbose", zapcore.InfoLevel, false},
	}

	for _, tt := range tests {
		got, ok := parseLevel(tt.in)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("parseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestWithCarriesFields(t *testing.T) {
	log, logs := NewObserved(zapcore.InfoLevel)

	log.With(String("session", "abc")).Info("frame sent", Int("count", 3))
	log.Debug("dropped below level")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["session"] != "abc" || ctx["count"] != int64(3) {
		t.Errorf("context = %v", ctx)
	}
}

func TestNewBuildsAtLevel(t *testing.T) {
	log := New("error", false, String("service", "smartmark"))
	if log == nil {
		t.Fatal("New() returned nil")
	}
	log.Info("not emitted")
	_ = log.Sync()
}
