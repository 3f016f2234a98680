package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	dnspkg "dnsprop/dns"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(dnspkg.LogConfig{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dnsprop.log")
	logger, err := New(dnspkg.LogConfig{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("probe finished")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "probe finished") {
		t.Fatalf("log file missing entry: %s", data)
	}
}

func TestForTUIWithoutFileIsSilent(t *testing.T) {
	logger, err := ForTUI(dnspkg.LogConfig{Level: "info"})
	if err != nil {
		t.Fatalf("ForTUI returned error: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected no-op logger")
	}
}
