package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "habitflow.log")

	log, err := New(Config{Level: "debug", Format: "console", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("hello from test")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing message: %s", data)
	}
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := New(Config{Level: "loud", Format: "json"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.Core().Enabled(-1) {
		t.Error("debug should be disabled at the fallback level")
	}
}
