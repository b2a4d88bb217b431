package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)
	log.Info("hidden")
	log.Warn("shown", "module", "module_0")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line written at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "module=module_0") {
		t.Errorf("output = %q", out)
	}
}

func TestNewReportsUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	New("chatty", &buf)
	if !strings.Contains(buf.String(), "chatty") {
		t.Errorf("unknown level not reported: %q", buf.String())
	}
}
