package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/meshfree/internal/compute"
	"github.com/san-kum/meshfree/internal/particles"
)

// MultilevelList stacks cell-linked lists at geometrically refined
// spacings refSpacing/2^k, for bodies whose particles carry
// heterogeneous cutoff radii. Each particle is inserted into exactly
// one level, the finest whose spacing still covers its cutoff;
// cross-level probing during neighbor search is the searcher's
// responsibility.
type MultilevelList struct {
	refSpacing float64
	levels     []*CellLinkedList
}

func NewMultilevelList(bounds Bounds, refSpacing float64, totalLevels int) *MultilevelList {
	if totalLevels < 1 {
		panic(fmt.Sprintf("mesh: multilevel list needs at least one level, got %d", totalLevels))
	}
	m := &MultilevelList{refSpacing: refSpacing}
	spacing := refSpacing
	for k := 0; k < totalLevels; k++ {
		m.levels = append(m.levels, NewCellLinkedList(bounds, spacing))
		spacing /= 2
	}
	return m
}

func (m *MultilevelList) NumLevels() int { return len(m.levels) }

func (m *MultilevelList) Level(k int) *CellLinkedList { return m.levels[k] }

// LevelFor maps a cutoff radius to the finest level whose spacing is
// still >= the radius. Larger radii map to coarser levels (smaller k);
// radii outside the ladder clamp to the end levels.
func (m *MultilevelList) LevelFor(cutoff float64) int {
	if cutoff >= m.refSpacing {
		return 0
	}
	k := int(math.Floor(math.Log2(m.refSpacing / cutoff)))
	if k > len(m.levels)-1 {
		k = len(m.levels) - 1
	}
	return k
}

// Insert places one particle into its own level.
func (m *MultilevelList) Insert(i int, pos r3.Vec, cutoff float64) {
	m.levels[m.LevelFor(cutoff)].Insert(i, pos)
}

// Rebuild clears every level and reinserts all real particles, each
// into the level matching its cutoff radius.
func (m *MultilevelList) Rebuild(be compute.Backend, st *particles.Store, cutoffs []float64) {
	for _, l := range m.levels {
		l.Clear()
	}
	pos := st.Positions()
	be.ParallelFor(st.TotalReal(), rebuildGrain, func(start, end int) {
		for i := start; i < end; i++ {
			m.Insert(i, pos[i], cutoffs[i])
		}
	})
}
