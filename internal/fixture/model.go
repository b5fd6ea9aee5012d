package fixture

import (
	"fmt"

	"github.com/lumigrid/lumigrid/internal/output"
	"github.com/lumigrid/lumigrid/pkg/math"
)

// Model is an immutable snapshot of a fixture subtree, safe to hand to
// the rendering/UI context. Its point count and point identities never
// change after construction; a later geometry-only recompute updates the
// positions of these copies in place, and any structural change produces
// a brand-new Model instead of touching this one.
type Model struct {
	Keys      []string
	Points    []*Point
	Children  []*Model
	Transform math.Mat4
}

// Size is the number of points in the model.
func (m *Model) Size() int { return len(m.Points) }

// HasKey reports whether the model is tagged with key.
func (m *Model) HasKey(key string) bool {
	for _, k := range m.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Sub collects every descendant model tagged with key, depth-first.
func (m *Model) Sub(key string) []*Model {
	var matches []*Model
	for _, child := range m.Children {
		if child.HasKey(key) {
			matches = append(matches, child)
		}
		matches = append(matches, child.Sub(key)...)
	}
	return matches
}

// ToIndexBuffer returns the model's point indices as a static index
// buffer.
func (m *Model) ToIndexBuffer() output.StaticIndexBuffer {
	indices := make([]int32, len(m.Points))
	for i, p := range m.Points {
		indices[i] = int32(p.Index)
	}
	return output.StaticIndexBuffer(indices)
}

// ToModel deep-copies the subtree into a fresh Model. Every point owned
// directly or by a descendant is copied in pre-order, so the snapshot is
// never mutated by later tree edits. Kind-declared submodels become
// tagged non-owning views over the copied points, each capturing the
// fixture's transform at construction time.
func (f *Fixture) ToModel() (*Model, error) {
	// A change to the point count of one fixture shifts indices in every
	// fixture after it, and an already-distributed snapshot may be in
	// use on another thread. Copies keep those snapshots frozen.
	f.modelPoints = make([]*Point, 0, f.TotalSize())
	for _, p := range f.points {
		f.modelPoints = append(f.modelPoints, &Point{Index: p.Index, Position: p.Position})
	}

	var children []*Model
	for _, child := range f.children {
		childModel, err := child.ToModel()
		if err != nil {
			return nil, err
		}
		f.modelPoints = append(f.modelPoints, childModel.Points...)
		children = append(children, childModel)
	}

	if sub, ok := f.kind.(Submodeler); ok {
		for _, desc := range sub.Submodels() {
			view, err := f.submodelView(desc)
			if err != nil {
				return nil, err
			}
			children = append(children, view)
		}
	}

	model := &Model{
		Keys:      []string{f.kind.Key()},
		Points:    f.modelPoints,
		Children:  children,
		Transform: f.geometryMatrix,
	}
	f.model = model
	return model, nil
}

// submodelView builds a tagged view over a strided subset of the
// snapshot's points. Views alias the copied points, they do not own them.
func (f *Fixture) submodelView(desc Submodel) (*Model, error) {
	if desc.Start < 0 || desc.Num < 0 || desc.Stride < 1 ||
		desc.Start+(desc.Num-1)*desc.Stride >= len(f.modelPoints) {
		return nil, fmt.Errorf("fixture %q: submodel (start %d, num %d, stride %d) exceeds %d points: %w",
			f.Name, desc.Start, desc.Num, desc.Stride, len(f.modelPoints), ErrAddressing)
	}
	points := make([]*Point, desc.Num)
	for i := range points {
		points[i] = f.modelPoints[desc.Start+i*desc.Stride]
	}
	return &Model{
		Keys:      desc.Keys,
		Points:    points,
		Transform: f.geometryMatrix,
	}, nil
}
