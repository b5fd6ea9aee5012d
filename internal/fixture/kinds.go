package fixture

import (
	stdmath "math"

	"github.com/lumigrid/lumigrid/pkg/math"
)

// StripKind is a straight run of evenly spaced points along the
// fixture's local X axis. NumPoints is a metrics parameter; Spacing only
// moves points, so it is geometry-tier and safe to change without a
// rebuild (call SetPosition/SetRotation or InvalidateMetrics as
// appropriate after edits).
type StripKind struct {
	NumPoints int
	Spacing   float32
}

// Key implements Kind.
func (k *StripKind) Key() string { return "strip" }

// Size implements Kind.
func (k *StripKind) Size() int { return k.NumPoints }

// ComputePointGeometry implements Kind.
func (k *StripKind) ComputePointGeometry(transform math.Mat4, points []*Point) {
	for i, p := range points {
		p.Position = transform.TransformVec3(math.Vec3{X: float32(i) * k.Spacing})
	}
}

// GridKind is a row-major planar grid in the fixture's local XY plane.
// NumRows and NumColumns are metrics parameters. Each row and each
// column is declared as a tagged submodel.
type GridKind struct {
	NumRows       int
	NumColumns    int
	RowSpacing    float32
	ColumnSpacing float32
}

// Key implements Kind.
func (k *GridKind) Key() string { return "grid" }

// Size implements Kind.
func (k *GridKind) Size() int { return k.NumRows * k.NumColumns }

// ComputePointGeometry implements Kind.
func (k *GridKind) ComputePointGeometry(transform math.Mat4, points []*Point) {
	for i, p := range points {
		row := i / k.NumColumns
		col := i % k.NumColumns
		p.Position = transform.TransformVec3(math.Vec3{
			X: float32(col) * k.ColumnSpacing,
			Y: float32(row) * k.RowSpacing,
		})
	}
}

// Submodels implements Submodeler: one contiguous "row" view per row,
// one strided "column" view per column.
func (k *GridKind) Submodels() []Submodel {
	subs := make([]Submodel, 0, k.NumRows+k.NumColumns)
	for r := 0; r < k.NumRows; r++ {
		subs = append(subs, Submodel{
			Start:  r * k.NumColumns,
			Num:    k.NumColumns,
			Stride: 1,
			Keys:   []string{"row"},
		})
	}
	for c := 0; c < k.NumColumns; c++ {
		subs = append(subs, Submodel{
			Start:  c,
			Num:    k.NumRows,
			Stride: k.NumColumns,
			Keys:   []string{"column"},
		})
	}
	return subs
}

// ArcKind is a partial circle of points in the fixture's local XY plane,
// starting at the origin and bending upward. NumPoints is a metrics
// parameter.
type ArcKind struct {
	NumPoints       int
	Radius          float32
	DegreesPerPoint float32
}

// Key implements Kind.
func (k *ArcKind) Key() string { return "arc" }

// Size implements Kind.
func (k *ArcKind) Size() int { return k.NumPoints }

// ComputePointGeometry implements Kind.
func (k *ArcKind) ComputePointGeometry(transform math.Mat4, points []*Point) {
	for i, p := range points {
		theta := float32(i) * k.DegreesPerPoint * degToRad
		p.Position = transform.TransformVec3(math.Vec3{
			X: k.Radius * sin32(theta),
			Y: k.Radius * (1 - cos32(theta)),
		})
	}
}

func sin32(x float32) float32 { return float32(stdmath.Sin(float64(x))) }

func cos32(x float32) float32 { return float32(stdmath.Cos(float64(x))) }
