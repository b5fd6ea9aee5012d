package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitFileOutput(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "test.log")

	cfg := DefaultFileConfig(logFile)
	if err := InitWithFileConfig("debug", cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer Sync()

	Sugar.Infof("hello %s", "world")
	Sync()

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}

func TestNamedBeforeInit(t *testing.T) {
	saved := Log
	Log = nil
	defer func() { Log = saved }()

	// Must not panic, returns a nop logger
	Named("output").Info("dropped")
}
