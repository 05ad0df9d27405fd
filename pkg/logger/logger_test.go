package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T, format Format) (Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	l, err := NewLogger(&Config{
		Level:            DebugLevel,
		Format:           format,
		Output:           WriterOutput,
		Writer:           buf,
		DisableTimestamp: true,
	})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	return l, buf
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", *DefaultConfig(), false},
		{"server", *ServerConfig(), false},
		{"bad level", Config{Level: "loud", Format: TextFormat, Output: StderrOutput}, true},
		{"bad format", Config{Level: InfoLevel, Format: "xml", Output: StderrOutput}, true},
		{"file without path", Config{Level: InfoLevel, Format: TextFormat, Output: FileOutput}, true},
		{"writer without writer", Config{Level: InfoLevel, Format: TextFormat, Output: WriterOutput}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestComponentFieldsAccumulate(t *testing.T) {
	l, buf := newBufferLogger(t, JSONFormat)

	l.WithComponent("matcher").WithField("account_id", "ACC123").Info("matched")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["component"] != "matcher" {
		t.Errorf("expected component matcher, got %v", entry["component"])
	}
	if entry["account_id"] != "ACC123" {
		t.Errorf("expected account_id ACC123, got %v", entry["account_id"])
	}
	if entry["msg"] != "matched" {
		t.Errorf("expected msg matched, got %v", entry["msg"])
	}
}

func TestWithErrorAddsErrorField(t *testing.T) {
	l, buf := newBufferLogger(t, TextFormat)

	l.WithError(errors.New("boom")).Error("failed")

	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected error text in output, got %s", buf.String())
	}
}

func TestConfigureRejectsUnknownLevel(t *testing.T) {
	previous := GetGlobalLogger()
	defer SetGlobalLogger(previous)

	if err := Configure("verbose", "text"); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := Configure("DEBUG", "json"); err != nil {
		t.Errorf("expected upper case level to be accepted, got %v", err)
	}
}

func TestProgressTrackerStages(t *testing.T) {
	l, _ := newBufferLogger(t, TextFormat)

	tracker := NewProgressTracker("reconciliation", 10, l)
	tracker.Stage("index", 4)
	tracker.Stage("match", 6)

	stats := tracker.Complete()
	if stats.Current != 10 {
		t.Errorf("expected 10 processed, got %d", stats.Current)
	}
	if stats.Percentage != 100 {
		t.Errorf("expected 100%%, got %.1f", stats.Percentage)
	}
	if len(stats.Stages) != 2 || stats.Stages[1].Name != "match" {
		t.Errorf("unexpected stages: %+v", stats.Stages)
	}
	if !strings.Contains(stats.String(), "reconciliation: 10/10") {
		t.Errorf("unexpected summary %q", stats.String())
	}
}

func TestTimedOperationReturnsError(t *testing.T) {
	l, buf := newBufferLogger(t, TextFormat)
	want := errors.New("store unavailable")

	got := TimedOperation("save", l, func() error { return want })

	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !strings.Contains(buf.String(), "Operation failed") {
		t.Errorf("expected failure log, got %s", buf.String())
	}
}
