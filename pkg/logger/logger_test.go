package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chatcal/chatcal-go/internal/config"
	"go.uber.org/zap"
)

func TestNewLoggerWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chatcal.log")

	log, err := NewLogger(config.LogConfig{Level: "debug", File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	log.Debug("일정 추가", zap.String("title", "회의"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
	if !strings.Contains(string(data), `"title":"회의"`) {
		t.Fatalf("expected structured field in log file, got %s", data)
	}
}

func TestNewLoggerUnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := NewLogger(config.LogConfig{Level: "verbose"})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if log.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("expected debug to be disabled for unknown level")
	}
	if !log.Core().Enabled(zap.InfoLevel) {
		t.Fatalf("expected info to be enabled")
	}
}
