package fixture

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumigrid/lumigrid/internal/output"
)

// testContainer stands in for the root structure: it reindexes the tree
// from zero whenever a generation change is reported.
type testContainer struct {
	root            *Fixture
	iterating       bool
	generations     int
	geometryChanges int
}

func (c *testContainer) FixtureGenerationChanged(f *Fixture) {
	c.generations++
	if c.root != nil {
		if _, err := c.root.Reindex(0); err != nil {
			panic(err)
		}
	}
}

func (c *testContainer) FixtureGeometryChanged(f *Fixture) {
	c.geometryChanges++
}

func (c *testContainer) Iterating() bool { return c.iterating }

func attach(t *testing.T, f *Fixture) *testContainer {
	t.Helper()
	c := &testContainer{root: f}
	require.NoError(t, f.Attach(c))
	return c
}

func collectIndices(f *Fixture) []int {
	var indices []int
	for _, p := range f.Points() {
		indices = append(indices, p.Index)
	}
	for _, child := range f.Children() {
		indices = append(indices, collectIndices(child)...)
	}
	return indices
}

func newTree(t *testing.T) (*Fixture, *testContainer) {
	t.Helper()
	root := New("root", &StripKind{NumPoints: 4, Spacing: 1})
	c := attach(t, root)
	require.NoError(t, root.AddChild(New("grid", &GridKind{
		NumRows: 2, NumColumns: 3, RowSpacing: 1, ColumnSpacing: 1,
	})))
	require.NoError(t, root.AddChild(New("tail", &StripKind{NumPoints: 2, Spacing: 1})))
	return root, c
}

func TestReindexPartitionInvariant(t *testing.T) {
	root, _ := newTree(t)

	require.Equal(t, 12, root.TotalSize())

	indices := collectIndices(root)
	require.Len(t, indices, 12)

	// Pre-order indices must be exactly {0..total-1}, no gaps, no dups
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)
	for i, idx := range sorted {
		assert.Equal(t, i, idx)
	}

	// And pre-order assignment means the unsorted walk is already sorted
	assert.Equal(t, sorted, indices)
}

func TestReindexIdempotent(t *testing.T) {
	root, _ := newTree(t)

	changed, err := root.Reindex(0)
	require.NoError(t, err)
	assert.False(t, changed, "second reindex with same start must report no change")

	changed, err = root.Reindex(5)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = root.Reindex(5)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRegenerateDeterministicGeometry(t *testing.T) {
	root := New("root", &StripKind{NumPoints: 3, Spacing: 2})
	attach(t, root)
	root.SetPosition(1, 2, 3)
	root.SetRotation(45, 30, 10)

	snapshot := func() []Point {
		out := make([]Point, 0, len(root.Points()))
		for _, p := range root.Points() {
			out = append(out, *p)
		}
		return out
	}

	first := snapshot()
	require.NoError(t, root.Regenerate())
	second := snapshot()

	// Bit-for-bit reproducible across regenerates
	assert.Equal(t, first, second)
}

func TestGeometryChangeKeepsIndices(t *testing.T) {
	root, c := newTree(t)

	before := collectIndices(root)
	sizeBefore := root.TotalSize()
	generationsBefore := c.generations

	root.SetPosition(10, 0, -4)
	root.SetRotation(90, 0, 0)
	root.Children()[0].SetPosition(0, 5, 0)

	assert.Equal(t, before, collectIndices(root))
	assert.Equal(t, sizeBefore, root.TotalSize())
	assert.Equal(t, generationsBefore, c.generations,
		"geometry-only change must not escalate to a generation change")
	assert.Equal(t, 3, c.geometryChanges)
}

func TestGeometryMatrixOrder(t *testing.T) {
	root := New("root", &StripKind{NumPoints: 2, Spacing: 1})
	attach(t, root)

	// Only yaw: local X axis rotates toward -Z
	root.SetRotation(90, 0, 0)
	p := root.Points()[1].Position
	assert.InDelta(t, 0, p.X, 1e-5)
	assert.InDelta(t, 0, p.Y, 1e-5)
	assert.InDelta(t, -1, p.Z, 1e-5)

	// Translation applies in parent space, after rotation
	root.SetPosition(5, 0, 0)
	p = root.Points()[1].Position
	assert.InDelta(t, 5, p.X, 1e-5)
	assert.InDelta(t, -1, p.Z, 1e-5)
}

func TestChildInheritsParentTransform(t *testing.T) {
	root := New("root", &StripKind{NumPoints: 1, Spacing: 1})
	attach(t, root)
	child := New("child", &StripKind{NumPoints: 1, Spacing: 1})
	require.NoError(t, root.AddChild(child))

	root.SetPosition(0, 7, 0)
	child.SetPosition(3, 0, 0)

	p := child.Points()[0].Position
	assert.InDelta(t, 3, p.X, 1e-5)
	assert.InDelta(t, 7, p.Y, 1e-5)
}

func TestAddChildDuplicate(t *testing.T) {
	root, _ := newTree(t)
	child := root.Children()[0]
	assert.ErrorIs(t, root.AddChild(child), ErrDuplicateChild)
}

func TestRemoveChildUnknown(t *testing.T) {
	root, _ := newTree(t)
	stranger := New("stranger", &StripKind{NumPoints: 1, Spacing: 1})
	assert.ErrorIs(t, root.RemoveChild(stranger), ErrUnknownChild)
}

func TestRemoveChildReindexes(t *testing.T) {
	root, _ := newTree(t)
	grid := root.Children()[0]
	tail := root.Children()[1]

	require.NoError(t, root.RemoveChild(grid))

	assert.Equal(t, 6, root.TotalSize())
	assert.Equal(t, 4, tail.FirstPointIndex())
	assert.Equal(t, 0, tail.ChildIndex())
	assert.Nil(t, grid.container)
}

func TestReentrancyGuard(t *testing.T) {
	root, c := newTree(t)

	c.iterating = true
	assert.ErrorIs(t, root.Regenerate(), ErrReentrancy)
	assert.ErrorIs(t, root.AddChild(New("x", &StripKind{NumPoints: 1})), ErrReentrancy)
	assert.ErrorIs(t, root.RemoveChild(root.Children()[0]), ErrReentrancy)
	assert.ErrorIs(t, root.Children()[0].Regenerate(), ErrReentrancy,
		"guard must reach nested fixtures through the container chain")

	c.iterating = false
	assert.NoError(t, root.Regenerate())
}

func TestPointAtDescendsChildren(t *testing.T) {
	root, _ := newTree(t)

	// Offset 4 is the first grid point
	p, err := root.PointAt(4)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Index)

	// Offset 11 is the last tail point
	p, err = root.PointAt(11)
	require.NoError(t, err)
	assert.Equal(t, 11, p.Index)

	_, err = root.PointAt(12)
	assert.ErrorIs(t, err, ErrAddressing)
}

func TestToIndexBuffer(t *testing.T) {
	root, _ := newTree(t)

	indices := root.ToIndexBuffer().Indices()
	require.Len(t, indices, 12)
	for i, idx := range indices {
		assert.Equal(t, int32(i), idx)
	}
}

func TestMetricsChangeRegenerates(t *testing.T) {
	root, _ := newTree(t)
	tail := root.Children()[1]

	kind := tail.Kind().(*StripKind)
	kind.NumPoints = 5
	require.NoError(t, tail.InvalidateMetrics())

	assert.Equal(t, 15, root.TotalSize())
	assert.Equal(t, []int{10, 11, 12, 13, 14}, collectIndices(tail))
}

func TestAddPacketSpecOutsideRebuild(t *testing.T) {
	root, _ := newTree(t)
	spec, err := output.NewOPCPacket(output.StaticIndexBuffer{0}, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, root.AddPacketSpec(spec), ErrStructural)
	assert.ErrorIs(t, root.RemovePacketSpec(spec), ErrStructural)
}

func TestDefaultPacketSpecBuild(t *testing.T) {
	root := New("root", &StripKind{NumPoints: 10, Spacing: 1})
	attach(t, root)
	require.NoError(t, root.SetOutput(output.ProtocolKinet, "10.0.0.5", 0))

	specs := root.PacketSpecs()
	require.Len(t, specs, 1)
	assert.Equal(t, output.ProtocolKinet, specs[0].Protocol)
	assert.Equal(t, "10.0.0.5:6038", specs[0].Destination())
	assert.Len(t, specs[0].Indices(), 10)
}

func TestDatagramTierDoesNotReindex(t *testing.T) {
	root, c := newTree(t)

	before := collectIndices(root)
	generations := c.generations

	require.NoError(t, root.SetOutput(output.ProtocolArtNet, "10.0.0.9", 0))
	require.NoError(t, root.SetUniverse(4))
	require.NoError(t, root.SetKinetPort(2))

	assert.Equal(t, before, collectIndices(root))
	assert.Equal(t, generations, c.generations)
}

func TestDisposeReleasesTree(t *testing.T) {
	root, _ := newTree(t)
	grid := root.Children()[0]

	require.NoError(t, root.Dispose())
	assert.Nil(t, root.Children())
	assert.Nil(t, root.PacketSpecs())
	assert.Nil(t, grid.container)
}
