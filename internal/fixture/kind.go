package fixture

import "github.com/lumigrid/lumigrid/pkg/math"

// Kind defines the shape-specific behavior of a fixture: how many points
// it owns and where they sit. A Kind's count-affecting fields are metrics
// parameters: after changing one, call the fixture's InvalidateMetrics to
// rebuild the point array.
type Kind interface {
	// Key is the model type key this kind tags its models with.
	Key() string

	// Size is the number of points the fixture directly owns, not
	// counting children.
	Size() int

	// ComputePointGeometry sets the position of every point. The point
	// slice already has Size() entries; only positions need to be
	// written, by transforming each local position through transform.
	ComputePointGeometry(transform math.Mat4, points []*Point)
}

// Submodel describes a tagged read-only view over a contiguous or
// strided subset of a fixture's model points. Start and Stride address
// the fixture's full pre-order point sequence, own points first.
type Submodel struct {
	Start  int
	Num    int
	Stride int
	Keys   []string
}

// Submodeler is implemented by kinds that declare submodel groupings
// (rows and columns of a grid, for example).
type Submodeler interface {
	Submodels() []Submodel
}

// PacketSpecBuilder is implemented by kinds that need custom packet
// specs. The implementation must register every spec with
// Fixture.AddPacketSpec before returning. Kinds without this interface
// get the fixture's default single-spec build.
type PacketSpecBuilder interface {
	BuildPacketSpecs(f *Fixture) error
}

// MatrixComputer is implemented by kinds that need a transform chain
// other than the fixed translate/yaw/pitch/roll order. base is the
// parent transform.
type MatrixComputer interface {
	ComputeGeometryMatrix(base math.Mat4, x, y, z, yaw, pitch, roll float32) math.Mat4
}
