package mesh

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/meshfree/internal/compute"
	"github.com/san-kum/meshfree/internal/particles"
)

// NoParticle is the sentinel returned by FindNearest when the probed
// cell block holds no particles. Callers must branch on it.
const NoParticle = -1

const rebuildGrain = 256

// ListEntry pairs a real-particle index with the position it was
// inserted at, so distance tests run without touching the store.
type ListEntry struct {
	Index int
	Pos   r3.Vec
}

// CellList is one grid cell's bucket of real-particle indices.
// Insertion from concurrent workers is serialized per cell; each index
// is inserted exactly once per rebuild, so order is irrelevant and no
// duplicate suppression is needed.
type CellList struct {
	mu      sync.Mutex
	entries []ListEntry
}

func (c *CellList) Entries() []ListEntry { return c.entries }
func (c *CellList) Len() int             { return len(c.entries) }

// Indices copies out the particle indices currently in the cell.
func (c *CellList) Indices() []int {
	out := make([]int, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Index
	}
	return out
}

func (c *CellList) insert(i int, pos r3.Vec) {
	c.mu.Lock()
	c.entries = append(c.entries, ListEntry{Index: i, Pos: pos})
	c.mu.Unlock()
}

func (c *CellList) clear() {
	c.entries = c.entries[:0]
}

// CellLinkedList buckets real particles into a uniform grid with cell
// spacing equal to the reference interaction cutoff. The cell array is
// allocated once and reused; Rebuild clears and refills it every step.
type CellLinkedList struct {
	bounds  Bounds
	spacing float64
	dims    [3]int
	cells   []CellList
}

func NewCellLinkedList(bounds Bounds, spacing float64) *CellLinkedList {
	if spacing <= 0 {
		panic(fmt.Sprintf("mesh: non-positive grid spacing %g", spacing))
	}
	l := &CellLinkedList{bounds: bounds, spacing: spacing}
	ext := bounds.Extent()
	for axis := 0; axis < 3; axis++ {
		n := int(math.Ceil(axisComponent(ext, axis) / spacing))
		if n < 1 {
			n = 1
		}
		l.dims[axis] = n
	}
	l.cells = make([]CellList, l.dims[0]*l.dims[1]*l.dims[2])
	return l
}

func (l *CellLinkedList) Bounds() Bounds   { return l.bounds }
func (l *CellLinkedList) Spacing() float64 { return l.spacing }
func (l *CellLinkedList) Dims() [3]int     { return l.dims }
func (l *CellLinkedList) NumCells() int    { return len(l.cells) }

// cellCoord clamps, so particles straying outside the tentative
// bounds land in the border cells instead of out of range.
func (l *CellLinkedList) cellCoord(pos r3.Vec) [3]int {
	rel := r3.Sub(pos, l.bounds.Min)
	var c [3]int
	for axis := 0; axis < 3; axis++ {
		v := int(math.Floor(axisComponent(rel, axis) / l.spacing))
		if v < 0 {
			v = 0
		}
		if v >= l.dims[axis] {
			v = l.dims[axis] - 1
		}
		c[axis] = v
	}
	return c
}

func (l *CellLinkedList) linear(c [3]int) int {
	return c[0] + l.dims[0]*(c[1]+l.dims[1]*c[2])
}

// Clear empties every cell, keeping its allocation.
func (l *CellLinkedList) Clear() {
	for i := range l.cells {
		l.cells[i].clear()
	}
}

// Insert appends one real-particle index to the cell covering pos.
// Safe for concurrent use.
func (l *CellLinkedList) Insert(i int, pos r3.Vec) {
	l.cells[l.linear(l.cellCoord(pos))].insert(i, pos)
}

// Rebuild clears the grid and reinserts every real particle at its
// current position, in parallel over the particle range.
func (l *CellLinkedList) Rebuild(be compute.Backend, st *particles.Store) {
	l.Clear()
	pos := st.Positions()
	be.ParallelFor(st.TotalReal(), rebuildGrain, func(start, end int) {
		for i := start; i < end; i++ {
			l.Insert(i, pos[i])
		}
	})
}

// FindNearest scans the 3x3x3 cell block around pos and returns the
// closest inserted particle and its recorded position. ok is false
// when the block is empty (including before the first Rebuild).
func (l *CellLinkedList) FindNearest(pos r3.Vec) (index int, at r3.Vec, ok bool) {
	index = NoParticle
	best := math.Inf(1)
	l.VisitBlock(pos, 1, func(cell *CellList) {
		for _, e := range cell.entries {
			d := r3.Norm(r3.Sub(pos, e.Pos))
			if d < best {
				best = d
				index = e.Index
				at = e.Pos
			}
		}
	})
	return index, at, index != NoParticle
}

// SequenceOf returns the flattened linear index of the cell covering
// pos. It is a sort key only; values are not stable across grids of
// different dimensions.
func (l *CellLinkedList) SequenceOf(pos r3.Vec) int {
	return l.linear(l.cellCoord(pos))
}

// VisitBlock calls fn for every cell within depth rings of the cell
// covering pos, clamped at the grid edge.
func (l *CellLinkedList) VisitBlock(pos r3.Vec, depth int, fn func(cell *CellList)) {
	c := l.cellCoord(pos)
	var lo, hi [3]int
	for axis := 0; axis < 3; axis++ {
		lo[axis] = c[axis] - depth
		if lo[axis] < 0 {
			lo[axis] = 0
		}
		hi[axis] = c[axis] + depth
		if hi[axis] >= l.dims[axis] {
			hi[axis] = l.dims[axis] - 1
		}
	}
	for z := lo[2]; z <= hi[2]; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				fn(&l.cells[l.linear([3]int{x, y, z})])
			}
		}
	}
}
