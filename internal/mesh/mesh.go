package mesh

import "gonum.org/v1/gonum/spatial/r3"

// Bounds is an axis-aligned bounding box in world coordinates. All
// grids for one scene share the same global coordinates.
type Bounds struct {
	Min, Max r3.Vec
}

func (b Bounds) Extent() r3.Vec {
	return r3.Sub(b.Max, b.Min)
}

func (b Bounds) Contains(p r3.Vec) bool {
	return p.X >= b.Min.X && p.X < b.Max.X &&
		p.Y >= b.Min.Y && p.Y < b.Max.Y &&
		p.Z >= b.Min.Z && p.Z < b.Max.Z
}

func axisComponent(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
