// Package structure owns the root of the fixture tree: the ordered list
// of top-level fixtures, global point-index allocation, the
// whole-installation model snapshot, and project persistence.
//
// All structural mutation must happen on a single context. The render
// and output contexts only ever see model snapshots and atomically
// published index buffers.
package structure

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/lumigrid/lumigrid/internal/fixture"
	"github.com/lumigrid/lumigrid/internal/logger"
	"github.com/lumigrid/lumigrid/internal/output"
)

// Transport sends one encoded packet spec. Implemented by output.Sender.
type Transport interface {
	Send(spec *output.PacketSpec, colors []uint32) bool
}

// Structure is the root container of the installation.
type Structure struct {
	fixtures []*fixture.Fixture

	model      *fixture.Model
	iterating  atomic.Bool
	generation atomic.Uint64

	log *zap.Logger
}

// New creates an empty structure.
func New() *Structure {
	return &Structure{log: logger.Named("structure")}
}

// Fixtures returns the ordered top-level fixtures. The slice must not be
// modified.
func (s *Structure) Fixtures() []*fixture.Fixture { return s.fixtures }

// Model returns the current whole-installation snapshot, or nil before
// the first fixture is attached.
func (s *Structure) Model() *fixture.Model { return s.model }

// Generation is a counter bumped on every structural rebuild. Consumers
// holding index buffers can use it to detect staleness cheaply.
func (s *Structure) Generation() uint64 { return s.generation.Load() }

// TotalSize is the point count across all fixtures.
func (s *Structure) TotalSize() int {
	sum := 0
	for _, f := range s.fixtures {
		sum += f.TotalSize()
	}
	return sum
}

// Iterating implements fixture.Container.
func (s *Structure) Iterating() bool { return s.iterating.Load() }

// FixtureGenerationChanged implements fixture.Container: any point-count
// or layout change anywhere in the tree triggers one global reindex and
// a fresh model.
func (s *Structure) FixtureGenerationChanged(f *fixture.Fixture) {
	if err := s.rebuild(); err != nil {
		// Callback path: the originating mutation already returned; a
		// failure here is logged, not lost in a half-built state, since
		// rebuild only publishes the model on success.
		s.log.Error("structure rebuild failed", zap.String("fixture", f.Name), zap.Error(err))
	}
}

// FixtureGeometryChanged implements fixture.Container. Positions were
// already written through to the live snapshots; nothing structural to
// do.
func (s *Structure) FixtureGeometryChanged(f *fixture.Fixture) {}

// rebuild reindexes every fixture from zero and constructs a new
// whole-installation model.
func (s *Structure) rebuild() error {
	start := 0
	for _, f := range s.fixtures {
		if _, err := f.Reindex(start); err != nil {
			return err
		}
		start += f.TotalSize()
	}

	var points []*fixture.Point
	var children []*fixture.Model
	for _, f := range s.fixtures {
		m, err := f.ToModel()
		if err != nil {
			return err
		}
		points = append(points, m.Points...)
		children = append(children, m)
	}

	s.model = &fixture.Model{
		Keys:     []string{"structure"},
		Points:   points,
		Children: children,
	}
	s.generation.Add(1)
	return nil
}

func (s *Structure) guardMutate() error {
	if s.Iterating() {
		return fmt.Errorf("structure: %w", fixture.ErrReentrancy)
	}
	return nil
}

// AddFixture appends a top-level fixture and generates it.
func (s *Structure) AddFixture(f *fixture.Fixture) error {
	return s.InsertFixture(len(s.fixtures), f)
}

// InsertFixture attaches a top-level fixture at the given position.
// Later fixtures shift toward higher point indices.
func (s *Structure) InsertFixture(index int, f *fixture.Fixture) error {
	if err := s.guardMutate(); err != nil {
		return err
	}
	if f == nil {
		return fmt.Errorf("structure: nil fixture: %w", fixture.ErrStructural)
	}
	if index < 0 || index > len(s.fixtures) {
		return fmt.Errorf("structure: fixture position %d out of range: %w", index, fixture.ErrStructural)
	}
	for _, existing := range s.fixtures {
		if existing == f {
			return fmt.Errorf("structure: %q: %w", f.Name, fixture.ErrDuplicateChild)
		}
	}

	s.fixtures = append(s.fixtures, nil)
	copy(s.fixtures[index+1:], s.fixtures[index:])
	s.fixtures[index] = f

	if err := f.Attach(s); err != nil {
		s.fixtures = append(s.fixtures[:index], s.fixtures[index+1:]...)
		// The generation callback may have published a model containing
		// the failed fixture; rebuild without it.
		if rerr := s.rebuild(); rerr != nil {
			s.log.Error("structure rebuild failed", zap.Error(rerr))
		}
		return err
	}
	return nil
}

// RemoveFixture detaches and disposes a top-level fixture.
func (s *Structure) RemoveFixture(f *fixture.Fixture) error {
	if err := s.guardMutate(); err != nil {
		return err
	}
	found := -1
	for i, existing := range s.fixtures {
		if existing == f {
			found = i
			break
		}
	}
	if found < 0 {
		return fmt.Errorf("structure: %q: %w", f.Name, fixture.ErrUnknownChild)
	}

	s.fixtures = append(s.fixtures[:found], s.fixtures[found+1:]...)
	if err := f.Dispose(); err != nil {
		return err
	}
	return s.rebuild()
}

// Clear disposes every fixture.
func (s *Structure) Clear() error {
	if err := s.guardMutate(); err != nil {
		return err
	}
	for _, f := range s.fixtures {
		if err := f.Dispose(); err != nil {
			return err
		}
	}
	s.fixtures = nil
	return s.rebuild()
}

// SoloFixture makes f the only soloed fixture in the structure.
func (s *Structure) SoloFixture(f *fixture.Fixture) {
	clearSolo(s.fixtures, f)
	f.Solo = true
}

func clearSolo(fixtures []*fixture.Fixture, except *fixture.Fixture) {
	for _, f := range fixtures {
		if f != except {
			f.Solo = false
		}
		clearSolo(f.Children(), except)
	}
}

// RenderIterate runs fn against the current model with the reentrancy
// guard held: any structural mutation attempted from within fn fails
// with a structural violation instead of corrupting the pass.
func (s *Structure) RenderIterate(fn func(m *fixture.Model)) {
	s.iterating.Store(true)
	defer s.iterating.Store(false)
	fn(s.model)
}

// Output walks the tree and sends every enabled fixture's packet specs
// against the shared color buffer, honoring solo and mute. Send failures
// are the transport's concern and never interrupt the walk; the return
// value is the number of packets sent.
func (s *Structure) Output(transport Transport, colors []uint32) int {
	s.iterating.Store(true)
	defer s.iterating.Store(false)

	anySolo := false
	walkFixtures(s.fixtures, func(f *fixture.Fixture) {
		anySolo = anySolo || f.Solo
	})

	var black []uint32
	sent := 0
	walkFixtures(s.fixtures, func(f *fixture.Fixture) {
		if !f.Enabled || (anySolo && !f.Solo) {
			return
		}
		buf := colors
		if f.Mute {
			if black == nil {
				black = make([]uint32, len(colors))
			}
			buf = black
		}
		for _, spec := range f.PacketSpecs() {
			if transport.Send(spec, buf) {
				sent++
			}
		}
	})
	return sent
}

func walkFixtures(fixtures []*fixture.Fixture, fn func(*fixture.Fixture)) {
	for _, f := range fixtures {
		fn(f)
		walkFixtures(f.Children(), fn)
	}
}
