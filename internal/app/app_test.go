package app

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lumigrid/lumigrid/internal/config"
)

func writeProject(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "show.yaml")
	project := `version: 1
fixtures:
  - name: strip
    kind: strip
    enabled: true
    brightness: 1
    strip: {num_points: 4, spacing: 1}
    protocol: ddp
    host: 127.0.0.1
`
	require.NoError(t, os.WriteFile(path, []byte(project), 0644))
	return path
}

func TestRunSurvivesWatcherShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Project = writeProject(t)
	cfg.Output.FPS = 100

	a, err := New(cfg)
	require.NoError(t, err)
	defer a.Close()

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	// Kill the watcher out from under the loop. The loop must disable
	// the closed channel and keep ticking normally.
	require.NoError(t, a.watcher.Close())
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("output loop did not stop on signal")
	}
}

func TestNewRejectsMissingProject(t *testing.T) {
	cfg := config.Default()
	cfg.Project = filepath.Join(t.TempDir(), "absent.yaml")

	_, err := New(cfg)
	require.Error(t, err)
}
