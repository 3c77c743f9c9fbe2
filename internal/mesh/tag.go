package mesh

import "gonum.org/v1/gonum/spatial/r3"

// CellsMatching returns every cell whose representative point
// satisfies the predicate. The representative is the cell's geometric
// center: a cell belongs to a region exactly when its center does.
// Evaluation is eager; the result may be empty.
func (l *CellLinkedList) CellsMatching(pred func(center r3.Vec, spacing float64) bool) []*CellList {
	var out []*CellList
	for z := 0; z < l.dims[2]; z++ {
		for y := 0; y < l.dims[1]; y++ {
			for x := 0; x < l.dims[0]; x++ {
				center := l.CellCenter([3]int{x, y, z})
				if pred(center, l.spacing) {
					out = append(out, &l.cells[l.linear([3]int{x, y, z})])
				}
			}
		}
	}
	return out
}

// CellCenter returns the geometric center of the cell at coord.
func (l *CellLinkedList) CellCenter(coord [3]int) r3.Vec {
	return r3.Vec{
		X: l.bounds.Min.X + (float64(coord[0])+0.5)*l.spacing,
		Y: l.bounds.Min.Y + (float64(coord[1])+0.5)*l.spacing,
		Z: l.bounds.Min.Z + (float64(coord[2])+0.5)*l.spacing,
	}
}

// BoundingCells selects the cells within one cell-depth of the domain
// boundary along axis, on the upper or lower side. Boundary-condition
// collaborators use the selection to locate ghost source particles.
func (l *CellLinkedList) BoundingCells(axis int, upper bool) []*CellList {
	layer := 0
	if upper {
		layer = l.dims[axis] - 1
	}

	var out []*CellList
	for z := 0; z < l.dims[2]; z++ {
		for y := 0; y < l.dims[1]; y++ {
			for x := 0; x < l.dims[0]; x++ {
				coord := [3]int{x, y, z}
				if coord[axis] == layer {
					out = append(out, &l.cells[l.linear(coord)])
				}
			}
		}
	}
	return out
}
