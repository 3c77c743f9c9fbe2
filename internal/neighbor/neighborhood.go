package neighbor

import "gonum.org/v1/gonum/spatial/r3"

// Neighborhood is the neighbor relation of one source particle:
// parallel arrays of neighbor index, unit direction (pointing from the
// neighbor toward the source), distance, kernel value and kernel
// gradient magnitude. It is rebuilt from scratch every step and never
// persisted; Reset keeps the allocations.
type Neighborhood struct {
	Indices []int
	Dir     []r3.Vec
	Dist    []float64
	W       []float64
	DW      []float64
}

func (n *Neighborhood) Len() int { return len(n.Indices) }

func (n *Neighborhood) Reset() {
	n.Indices = n.Indices[:0]
	n.Dir = n.Dir[:0]
	n.Dist = n.Dist[:0]
	n.W = n.W[:0]
	n.DW = n.DW[:0]
}

func (n *Neighborhood) add(j int, dir r3.Vec, dist, w, dw float64) {
	n.Indices = append(n.Indices, j)
	n.Dir = append(n.Dir, dir)
	n.Dist = append(n.Dist, dist)
	n.W = append(n.W, w)
	n.DW = append(n.DW, dw)
}

// Alloc returns n empty neighborhoods, one per source particle.
func Alloc(n int) []Neighborhood {
	return make([]Neighborhood, n)
}
