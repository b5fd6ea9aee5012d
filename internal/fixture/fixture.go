// Package fixture maintains the hierarchical geometric description of a
// lighting installation: the mutable fixture tree, global point-index
// allocation, immutable model snapshots, and the live index buffers that
// keep downstream packet specs valid across structural edits.
//
// All structural mutation must come from a single context; the package
// does no internal locking. Model snapshots and dynamic index buffers
// are the two safe hand-off mechanisms to other contexts.
package fixture

import (
	"fmt"
	stdmath "math"

	"github.com/google/uuid"

	"github.com/lumigrid/lumigrid/internal/output"
	"github.com/lumigrid/lumigrid/pkg/math"
)

const degToRad = float32(stdmath.Pi / 180)

// Container receives change notifications from a fixture. The parent
// fixture is the container for its children; the root structure is the
// container for top-level fixtures. A container reference never manages
// lifetime.
type Container interface {
	// FixtureGenerationChanged means the fixture's point count or
	// layout changed and a global reindex is required.
	FixtureGenerationChanged(f *Fixture)

	// FixtureGeometryChanged means only point positions moved.
	FixtureGeometryChanged(f *Fixture)

	// Iterating reports whether the render loop is currently walking
	// the tree. Structural mutators fail while it is.
	Iterating() bool
}

// Fixture is one node of the installation tree. It owns its points, its
// children and its packet specs, and carries the three classes of
// parameters that drive the invalidation tiers:
//
//   - metrics (point count, on the Kind)  -> full Regenerate
//   - geometry (x/y/z/yaw/pitch/roll)     -> position recompute only
//   - output addressing (protocol, destination, universe, kinet port)
//     -> packet spec rebuild only
type Fixture struct {
	ID   uuid.UUID
	Name string

	kind Kind

	// Geometry parameters. Angles in degrees.
	x, y, z          float32
	yaw, pitch, roll float32

	// Output parameters, informational for the addressing pipeline.
	Enabled    bool
	Brightness float32
	Mute       bool
	Solo       bool

	// Output addressing parameters.
	protocol  output.Protocol
	host      string
	port      int
	kinetPort int
	universe  int

	container  Container
	children   []*Fixture
	childIndex int

	points          []*Point
	firstPointIndex int

	parentTransform math.Mat4
	geometryMatrix  math.Mat4

	packetSpecs  []*output.PacketSpec
	inBuildSpecs bool

	dynamicBuffers []*DynamicIndexBuffer

	// Deep-copied points backing the most recent model snapshot.
	// Geometry-only recomputes write through to these so a distributed
	// snapshot tracks positions without ever changing identity.
	model       *Model
	modelPoints []*Point
}

// New creates a detached fixture of the given kind. It owns no points
// until it is attached to a container or regenerated.
func New(name string, kind Kind) *Fixture {
	return &Fixture{
		ID:              uuid.New(),
		Name:            name,
		kind:            kind,
		Brightness:      1,
		parentTransform: math.Identity(),
		geometryMatrix:  math.Identity(),
	}
}

// Kind returns the fixture's shape behavior.
func (f *Fixture) Kind() Kind { return f.kind }

// Size is the number of points the fixture directly owns.
func (f *Fixture) Size() int { return len(f.points) }

// TotalSize is the number of points in the fixture and all descendants.
func (f *Fixture) TotalSize() int {
	sum := len(f.points)
	for _, child := range f.children {
		sum += child.TotalSize()
	}
	return sum
}

// Children returns the ordered child fixtures. The slice must not be
// modified.
func (f *Fixture) Children() []*Fixture { return f.children }

// ChildIndex is the fixture's position among its siblings.
func (f *Fixture) ChildIndex() int { return f.childIndex }

// Points returns the fixture's own points. The slice must not be
// modified.
func (f *Fixture) Points() []*Point { return f.points }

// FirstPointIndex is the global index of the fixture's first own point.
func (f *Fixture) FirstPointIndex() int { return f.firstPointIndex }

// GeometryMatrix returns the fixture's composed transform.
func (f *Fixture) GeometryMatrix() math.Mat4 { return f.geometryMatrix }

// PacketSpecs returns the fixture's current packet specs. The slice must
// not be modified.
func (f *Fixture) PacketSpecs() []*output.PacketSpec { return f.packetSpecs }

// Position returns the geometry translation parameters.
func (f *Fixture) Position() (x, y, z float32) { return f.x, f.y, f.z }

// Rotation returns the geometry rotation parameters in degrees.
func (f *Fixture) Rotation() (yaw, pitch, roll float32) { return f.yaw, f.pitch, f.roll }

// Protocol returns the output protocol.
func (f *Fixture) Protocol() output.Protocol { return f.protocol }

// Destination returns the configured output host and port.
func (f *Fixture) Destination() (host string, port int) { return f.host, f.port }

// KinetPort returns the configured KiNET physical output port.
func (f *Fixture) KinetPort() int { return f.kinetPort }

// Universe returns the configured universe. Art-Net and sACN use it as
// the DMX universe, OPC as the channel, DDP as the data offset.
func (f *Fixture) Universe() int { return f.universe }

// Iterating implements Container for child fixtures, forwarding to the
// root.
func (f *Fixture) Iterating() bool {
	return f.container != nil && f.container.Iterating()
}

// FixtureGenerationChanged implements Container, forwarding the
// notification toward the root structure.
func (f *Fixture) FixtureGenerationChanged(fixture *Fixture) {
	if f.container != nil {
		f.container.FixtureGenerationChanged(fixture)
	}
}

// FixtureGeometryChanged implements Container, forwarding the
// notification toward the root structure.
func (f *Fixture) FixtureGeometryChanged(fixture *Fixture) {
	if f.container != nil {
		f.container.FixtureGeometryChanged(fixture)
	}
}

func (f *Fixture) guardMutate() error {
	if f.Iterating() {
		return fmt.Errorf("fixture %q: %w", f.Name, ErrReentrancy)
	}
	return nil
}

// Attach binds a detached fixture to its container and generates it.
// The back-reference is plain: it is set here, cleared on Detach, and
// never used to manage lifetime.
func (f *Fixture) Attach(container Container) error {
	if container == nil {
		return fmt.Errorf("fixture %q: nil container: %w", f.Name, ErrStructural)
	}
	if f.container != nil && f.container != container {
		return fmt.Errorf("fixture %q already has a container: %w", f.Name, ErrStructural)
	}
	f.container = container
	if err := f.Regenerate(); err != nil {
		// A failed attach must leave the fixture re-attachable.
		f.container = nil
		return err
	}
	return nil
}

// Detach clears the container back-reference.
func (f *Fixture) Detach() {
	f.container = nil
}

func (f *Fixture) reindexChildren() {
	for i, child := range f.children {
		child.childIndex = i
	}
}

// AddChild transfers ownership of child to this fixture, appending it to
// the sibling order and generating it in place.
func (f *Fixture) AddChild(child *Fixture) error {
	if err := f.guardMutate(); err != nil {
		return err
	}
	if child == nil {
		return fmt.Errorf("fixture %q: nil child: %w", f.Name, ErrStructural)
	}
	for _, c := range f.children {
		if c == child {
			return fmt.Errorf("fixture %q: %q: %w", f.Name, child.Name, ErrDuplicateChild)
		}
	}
	if child.container != nil && child.container != f {
		return fmt.Errorf("fixture %q already has a container: %w", child.Name, ErrStructural)
	}

	f.children = append(f.children, child)
	f.reindexChildren()

	child.parentTransform = f.geometryMatrix
	child.container = f

	return child.Regenerate()
}

// InsertChild transfers ownership of child to this fixture at the given
// sibling position, shifting later siblings (and their point ranges,
// after the reindex that follows) toward higher indices.
func (f *Fixture) InsertChild(index int, child *Fixture) error {
	if err := f.guardMutate(); err != nil {
		return err
	}
	if child == nil {
		return fmt.Errorf("fixture %q: nil child: %w", f.Name, ErrStructural)
	}
	if index < 0 || index > len(f.children) {
		return fmt.Errorf("fixture %q: child position %d out of range: %w", f.Name, index, ErrStructural)
	}
	for _, c := range f.children {
		if c == child {
			return fmt.Errorf("fixture %q: %q: %w", f.Name, child.Name, ErrDuplicateChild)
		}
	}
	if child.container != nil && child.container != f {
		return fmt.Errorf("fixture %q already has a container: %w", child.Name, ErrStructural)
	}

	f.children = append(f.children, nil)
	copy(f.children[index+1:], f.children[index:])
	f.children[index] = child
	f.reindexChildren()

	child.parentTransform = f.geometryMatrix
	child.container = f

	return child.Regenerate()
}

// RemoveChild detaches child from this fixture. The caller owns the
// returned-to-detached child again; its packet specs are dropped.
func (f *Fixture) RemoveChild(child *Fixture) error {
	if err := f.guardMutate(); err != nil {
		return err
	}
	found := -1
	for i, c := range f.children {
		if c == child {
			found = i
			break
		}
	}
	if found < 0 {
		return fmt.Errorf("fixture %q: %q: %w", f.Name, child.Name, ErrUnknownChild)
	}

	f.children = append(f.children[:found], f.children[found+1:]...)
	f.reindexChildren()
	child.Detach()
	child.clearPacketSpecs()

	f.FixtureGenerationChanged(f)
	return nil
}

// Regenerate performs a full structural rebuild: the point array is
// reallocated to the kind's current size, any cached model snapshot is
// forgotten, geometry is recomputed top-down, packet specs are rebuilt,
// and the container is notified so a global reindex follows.
func (f *Fixture) Regenerate() error {
	if err := f.guardMutate(); err != nil {
		return err
	}

	numPoints := f.kind.Size()
	f.points = make([]*Point, numPoints)
	for i := range f.points {
		f.points[i] = &Point{Index: f.firstPointIndex + i}
	}

	// A new model will have to be created, forget these points
	f.model = nil
	f.modelPoints = nil

	// Bypass the container geometry notification; the generation-change
	// notification below supersedes it.
	f.regenerateGeometry()

	err := f.rebuildPacketSpecs()

	if f.container != nil {
		f.container.FixtureGenerationChanged(f)
	}
	return err
}

// InvalidateMetrics must be called after mutating a count-affecting
// field on the fixture's kind. It is the metrics invalidation tier: a
// full regenerate.
func (f *Fixture) InvalidateMetrics() error {
	return f.Regenerate()
}

// SetPosition updates the translation parameters. Geometry tier: point
// positions and child transforms are recomputed in place, no indices
// move, no packet specs rebuild.
func (f *Fixture) SetPosition(x, y, z float32) {
	if f.x == x && f.y == y && f.z == z {
		return
	}
	f.x, f.y, f.z = x, y, z
	f.geometryChanged()
}

// SetRotation updates the rotation parameters in degrees. Geometry tier.
func (f *Fixture) SetRotation(yaw, pitch, roll float32) {
	if f.yaw == yaw && f.pitch == pitch && f.roll == roll {
		return
	}
	f.yaw, f.pitch, f.roll = yaw, pitch, roll
	f.geometryChanged()
}

func (f *Fixture) geometryChanged() {
	if f.container == nil {
		return
	}
	f.regenerateGeometry()
	f.container.FixtureGeometryChanged(f)
}

// regenerateGeometry recomputes the transform chain and every point
// position in the subtree, writing through to the live model snapshots.
func (f *Fixture) regenerateGeometry() {
	if mc, ok := f.kind.(MatrixComputer); ok {
		f.geometryMatrix = mc.ComputeGeometryMatrix(f.parentTransform,
			f.x, f.y, f.z, f.yaw, f.pitch, f.roll)
	} else {
		// Fixed transform order: translate, then yaw about Y, pitch
		// about X, roll about Z.
		f.geometryMatrix = f.parentTransform.
			Mul(math.Translate(f.x, f.y, f.z)).
			Mul(math.RotateY(f.yaw * degToRad)).
			Mul(math.RotateX(f.pitch * degToRad)).
			Mul(math.RotateZ(f.roll * degToRad))
	}

	f.kind.ComputePointGeometry(f.geometryMatrix, f.points)

	for _, child := range f.children {
		child.parentTransform = f.geometryMatrix
		child.regenerateGeometry()
	}

	// Indices are untouched, but a snapshot already handed out needs the
	// new positions reflected into its deep-copied points.
	if f.model != nil {
		f.model.Transform = f.geometryMatrix
	}
	for i, p := range f.points {
		if i < len(f.modelPoints) {
			f.modelPoints[i].set(p)
		}
	}
}

// Reindex assigns global indices across the subtree in pre-order, own
// points first, then children in sibling order. It reports whether any
// index actually changed; when one did, every dynamic index buffer in
// the subtree has been refreshed.
func (f *Fixture) Reindex(startIndex int) (bool, error) {
	changed := false
	if f.firstPointIndex != startIndex {
		changed = true
		f.firstPointIndex = startIndex
		idx := startIndex
		for _, p := range f.points {
			p.Index = idx
			idx++
		}
	}

	childStart := f.firstPointIndex + len(f.points)
	for _, child := range f.children {
		childChanged, err := child.Reindex(childStart)
		if err != nil {
			return changed, err
		}
		changed = changed || childChanged
		childStart += child.TotalSize()
	}

	if changed {
		for _, b := range f.dynamicBuffers {
			if err := b.refresh(); err != nil {
				return true, fmt.Errorf("fixture %q: refreshing index buffer: %w", f.Name, err)
			}
		}
	}
	return changed, nil
}

// PointAt resolves an offset relative to this fixture, descending into
// children by cumulative size past the fixture's own points.
func (f *Fixture) PointAt(i int) (*Point, error) {
	if i >= 0 && i < len(f.points) {
		return f.points[i], nil
	}
	ci := i - len(f.points)
	for _, child := range f.children {
		total := child.TotalSize()
		if ci < total {
			return child.PointAt(ci)
		}
		ci -= total
	}
	return nil, fmt.Errorf("fixture %q: point offset %d exceeds total size %d: %w",
		f.Name, i, f.TotalSize(), ErrAddressing)
}

// ToIndexBuffer returns a static snapshot of the subtree's global point
// indices in pre-order. It does not track later reindexing.
func (f *Fixture) ToIndexBuffer() output.StaticIndexBuffer {
	indices := make([]int32, 0, f.TotalSize())
	return output.StaticIndexBuffer(f.appendIndices(indices))
}

func (f *Fixture) appendIndices(indices []int32) []int32 {
	for _, p := range f.points {
		indices = append(indices, int32(p.Index))
	}
	for _, child := range f.children {
		indices = child.appendIndices(indices)
	}
	return indices
}

// ToDynamicIndexBuffer returns a live index-buffer view over num points
// starting at the given subtree-relative offset with the given stride.
// The view refreshes automatically on reindex and is invalidated when
// this fixture regenerates.
func (f *Fixture) ToDynamicIndexBuffer(start, num, stride int) (*DynamicIndexBuffer, error) {
	b, err := newDynamicIndexBuffer(f, start, num, stride)
	if err != nil {
		return nil, err
	}
	f.dynamicBuffers = append(f.dynamicBuffers, b)
	return b, nil
}

func (f *Fixture) clearPacketSpecs() {
	f.packetSpecs = nil
	for _, b := range f.dynamicBuffers {
		b.invalidate()
	}
	f.dynamicBuffers = nil
}

// rebuildPacketSpecs drops the current packet specs and dynamic index
// buffers and builds fresh ones. The datagram invalidation tier.
func (f *Fixture) rebuildPacketSpecs() error {
	f.clearPacketSpecs()

	f.inBuildSpecs = true
	defer func() { f.inBuildSpecs = false }()

	if builder, ok := f.kind.(PacketSpecBuilder); ok {
		return builder.BuildPacketSpecs(f)
	}
	return f.buildDefaultPacketSpec()
}

// buildDefaultPacketSpec emits one packet spec covering the whole
// subtree for fixtures whose kind does not build its own.
func (f *Fixture) buildDefaultPacketSpec() error {
	if f.protocol == output.ProtocolNone || f.host == "" {
		return nil
	}

	indices, err := f.ToDynamicIndexBuffer(0, f.TotalSize(), 1)
	if err != nil {
		return err
	}

	var spec *output.PacketSpec
	switch f.protocol {
	case output.ProtocolKinet:
		spec, err = output.NewKinetPacket(indices, f.kinetPort, output.KinetPortOut)
	case output.ProtocolArtNet:
		spec, err = output.NewArtNetPacket(indices, f.universe)
	case output.ProtocolSACN:
		spec, err = output.NewSACNPacket(indices, f.universe, f.ID)
	case output.ProtocolOPC:
		spec, err = output.NewOPCPacket(indices, f.universe)
	case output.ProtocolDDP:
		spec, err = output.NewDDPPacket(indices, f.universe)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("fixture %q: building %s packet: %w", f.Name, f.protocol, err)
	}

	spec.SetDestination(f.host, f.port)
	return f.AddPacketSpec(spec)
}

// AddPacketSpec registers a packet spec. Only legal during the packet
// spec rebuild; calls from anywhere else are structural violations.
func (f *Fixture) AddPacketSpec(spec *output.PacketSpec) error {
	if !f.inBuildSpecs {
		return fmt.Errorf("fixture %q: packet spec added outside rebuild: %w", f.Name, ErrStructural)
	}
	if spec == nil {
		return fmt.Errorf("fixture %q: nil packet spec: %w", f.Name, ErrStructural)
	}
	for _, s := range f.packetSpecs {
		if s == spec {
			return fmt.Errorf("fixture %q: duplicate packet spec: %w", f.Name, ErrStructural)
		}
	}
	f.packetSpecs = append(f.packetSpecs, spec)
	return nil
}

// RemovePacketSpec removes a packet spec. Only legal during the packet
// spec rebuild.
func (f *Fixture) RemovePacketSpec(spec *output.PacketSpec) error {
	if !f.inBuildSpecs {
		return fmt.Errorf("fixture %q: packet spec removed outside rebuild: %w", f.Name, ErrStructural)
	}
	for i, s := range f.packetSpecs {
		if s == spec {
			f.packetSpecs = append(f.packetSpecs[:i], f.packetSpecs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("fixture %q: packet spec not registered: %w", f.Name, ErrStructural)
}

// SetOutput updates the protocol and destination. Datagram tier: only
// packet specs rebuild; geometry and indices are untouched.
func (f *Fixture) SetOutput(protocol output.Protocol, host string, port int) error {
	f.protocol = protocol
	f.host = host
	f.port = port
	return f.datagramChanged()
}

// SetKinetPort updates the KiNET physical output port. Datagram tier.
func (f *Fixture) SetKinetPort(port int) error {
	f.kinetPort = port
	return f.datagramChanged()
}

// SetUniverse updates the universe/channel/offset parameter. Datagram
// tier.
func (f *Fixture) SetUniverse(universe int) error {
	f.universe = universe
	return f.datagramChanged()
}

func (f *Fixture) datagramChanged() error {
	if f.container == nil {
		return nil
	}
	return f.rebuildPacketSpecs()
}

// Dispose detaches and releases the subtree: children first, then the
// fixture's own packet specs, then the container back-reference.
func (f *Fixture) Dispose() error {
	if err := f.guardMutate(); err != nil {
		return err
	}
	for _, child := range f.children {
		child.container = nil
		if err := child.Dispose(); err != nil {
			return err
		}
	}
	f.children = nil
	f.clearPacketSpecs()
	f.points = nil
	f.model = nil
	f.modelPoints = nil
	f.container = nil
	return nil
}
