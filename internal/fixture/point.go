package fixture

import "github.com/lumigrid/lumigrid/pkg/math"

// Point is one addressable light-emitting unit. Index is its globally
// unique position in the installation's color buffer, reassigned on
// reindex; Position is recomputed on any geometry change. A Point is
// owned by exactly one fixture at a time.
type Point struct {
	Index    int
	Position math.Vec3
}

// set copies another point's index and position into this one.
func (p *Point) set(other *Point) {
	p.Index = other.Index
	p.Position = other.Position
}
