// Package app implements the main output loop and lifecycle.
package app

import (
	"fmt"
	stdmath "math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lumigrid/lumigrid/internal/config"
	"github.com/lumigrid/lumigrid/internal/fixture"
	"github.com/lumigrid/lumigrid/internal/logger"
	"github.com/lumigrid/lumigrid/internal/output"
	"github.com/lumigrid/lumigrid/internal/structure"
)

// App is the main application instance.
type App struct {
	config    *config.Config
	structure *structure.Structure
	sender    *output.Sender
	watcher   *structure.ProjectWatcher

	colors     []uint32
	generation uint64

	log *zap.Logger
}

// New creates a new application instance and loads the project.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		config:    cfg,
		structure: structure.New(),
		log:       logger.Named("app"),
	}

	a.log.Info("loading project", zap.String("path", cfg.Project))
	if err := a.structure.Load(cfg.Project); err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	a.log.Info("project loaded",
		zap.Int("fixtures", len(a.structure.Fixtures())),
		zap.Int("points", a.structure.TotalSize()),
	)

	var err error
	a.sender, err = output.NewSender(cfg.Output.Bind)
	if err != nil {
		return nil, fmt.Errorf("failed to create sender: %w", err)
	}

	// Watch the project file so edits show up without a restart.
	a.watcher, err = structure.WatchProject(cfg.Project)
	if err != nil {
		a.sender.Close()
		return nil, fmt.Errorf("failed to watch project: %w", err)
	}

	return a, nil
}

// Run starts the main output loop. It returns when an interrupt or
// termination signal arrives.
func (a *App) Run() error {
	fps := a.config.Output.FPS
	if fps <= 0 {
		fps = 40
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	a.log.Info("starting output loop", zap.Int("fps", fps))

	start := time.Now()
	frameCount := 0
	packetCount := 0
	statsTimer := time.Now()

	// Once Changes closes, a closed channel would win every select; a nil
	// channel blocks forever instead.
	changes := a.watcher.Changes

	for {
		select {
		case sig := <-sigCh:
			a.log.Info("signal received", zap.String("signal", sig.String()))
			return nil

		case _, ok := <-changes:
			if !ok {
				a.log.Warn("project watcher stopped, hot reload disabled")
				changes = nil
				continue
			}
			if err := a.structure.Load(a.config.Project); err != nil {
				// Keep running against the previous tree.
				a.log.Warn("project reload failed", zap.Error(err))
				continue
			}
			a.log.Info("project reloaded",
				zap.Int("fixtures", len(a.structure.Fixtures())),
				zap.Int("points", a.structure.TotalSize()),
			)

		case <-ticker.C:
			elapsed := time.Since(start).Seconds()
			a.renderFrame(elapsed)
			packetCount += a.structure.Output(a.sender, a.colors)

			frameCount++
			if time.Since(statsTimer) >= 10*time.Second {
				a.log.Debug("output stats",
					zap.Int("frames", frameCount),
					zap.Int("packets", packetCount),
				)
				frameCount = 0
				packetCount = 0
				statsTimer = time.Now()
			}
		}
	}
}

// renderFrame fills the color buffer with a slow hue sweep across the
// installation's x extent. This is the built-in pattern used when no
// external color source drives the structure.
func (a *App) renderFrame(elapsed float64) {
	if gen := a.structure.Generation(); gen != a.generation || a.colors == nil {
		a.colors = make([]uint32, a.structure.TotalSize())
		a.generation = gen
	}

	a.structure.RenderIterate(func(m *fixture.Model) {
		if m == nil {
			return
		}
		for _, p := range m.Points {
			if p.Index < 0 || p.Index >= len(a.colors) {
				continue
			}
			hue := stdmath.Mod(elapsed*0.1+float64(p.Position.X)*0.05, 1)
			a.colors[p.Index] = hueToColor(hue)
		}
	})
}

// hueToColor converts a hue in [0, 1) at full saturation and value to
// a packed 0xAARRGGBB color.
func hueToColor(h float64) uint32 {
	h = stdmath.Mod(h, 1) * 6
	sector := int(h)
	frac := h - float64(sector)

	ramp := func(f float64) uint32 { return uint32(f * 255) }
	var r, g, b uint32
	switch sector {
	case 0:
		r, g, b = 255, ramp(frac), 0
	case 1:
		r, g, b = ramp(1-frac), 255, 0
	case 2:
		r, g, b = 0, 255, ramp(frac)
	case 3:
		r, g, b = 0, ramp(1-frac), 255
	case 4:
		r, g, b = ramp(frac), 0, 255
	default:
		r, g, b = 255, 0, ramp(1-frac)
	}
	return 0xFF000000 | r<<16 | g<<8 | b
}

// Close cleans up application resources.
func (a *App) Close() {
	a.log.Info("closing")

	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.sender != nil {
		a.sender.Close()
	}
}
