// Package boundary realizes domain boundary conditions through the
// particle store's ghost lifecycle: each step the previous ghost
// ranges are invalidated wholesale, source particles near the domain
// faces are located through the grid's bounding-cell selection, and
// fresh ghosts are written as transformed copies of their sources.
package boundary

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/meshfree/internal/mesh"
	"github.com/san-kum/meshfree/internal/particles"
)

// Periodic wraps one axis of the domain: particles leaving through one
// face re-enter through the opposite one, and each face sees ghost
// images of the particles near the other. The bounding-cell selection
// is computed once; cell handles are stable, only their contents
// change between rebuilds.
type Periodic struct {
	axis   int
	bounds mesh.Bounds
	width  float64
	lower  []*mesh.CellList
	upper  []*mesh.CellList

	ghostStart int
	ghostSrc   []int
	ghostShift []float64
}

func NewPeriodic(grid *mesh.CellLinkedList, axis int) *Periodic {
	b := grid.Bounds()
	return &Periodic{
		axis:   axis,
		bounds: b,
		width:  axisSpan(b, axis),
		lower:  grid.BoundingCells(axis, false),
		upper:  grid.BoundingCells(axis, true),
	}
}

func axisSpan(b mesh.Bounds, axis int) float64 {
	e := b.Extent()
	switch axis {
	case 0:
		return e.X
	case 1:
		return e.Y
	default:
		return e.Z
	}
}

func component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func addComponent(v r3.Vec, axis int, d float64) r3.Vec {
	switch axis {
	case 0:
		v.X += d
	case 1:
		v.Y += d
	default:
		v.Z += d
	}
	return v
}

// WrapPositions folds real particles that crossed the periodic faces
// back into the domain. Runs before the grid rebuild.
func (p *Periodic) WrapPositions(st *particles.Store) {
	pos := st.Positions()
	lo := component(p.bounds.Min, p.axis)
	hi := component(p.bounds.Max, p.axis)
	for i := 0; i < st.TotalReal(); i++ {
		if p.bounds.Contains(pos[i]) {
			continue
		}
		c := component(pos[i], p.axis)
		switch {
		case c < lo:
			pos[i] = addComponent(pos[i], p.axis, p.width)
		case c >= hi:
			pos[i] = addComponent(pos[i], p.axis, -p.width)
		}
	}
}

// UpdateGhosts rebuilds the ghost population from the current grid
// contents: every real particle in a bounding layer spawns one image
// translated by the domain width. The border cells may still hold the
// previous step's ghost entries (their positions clamp into the
// boundary layer), so only indices below totalReal qualify as sources.
// The previous ghost range is invalidated first; allocation may grow
// the store, so field slices are re-fetched afterwards.
func (p *Periodic) UpdateGhosts(st *particles.Store) error {
	st.ResetGhosts()

	p.ghostSrc = p.ghostSrc[:0]
	p.ghostShift = p.ghostShift[:0]
	for _, cell := range p.lower {
		for _, idx := range cell.Indices() {
			if idx >= st.TotalReal() {
				continue
			}
			p.ghostSrc = append(p.ghostSrc, idx)
			p.ghostShift = append(p.ghostShift, p.width)
		}
	}
	for _, cell := range p.upper {
		for _, idx := range cell.Indices() {
			if idx >= st.TotalReal() {
				continue
			}
			p.ghostSrc = append(p.ghostSrc, idx)
			p.ghostShift = append(p.ghostShift, -p.width)
		}
	}

	start, err := st.AllocateGhosts(len(p.ghostSrc))
	if err != nil {
		return err
	}
	p.ghostStart = start

	pos := st.Positions()
	for k, src := range p.ghostSrc {
		g := start + k
		st.RefreshGhost(g, src)
		pos[g] = addComponent(pos[g], p.axis, p.ghostShift[k])
	}
	return nil
}

// InsertGhostEntries registers the current ghosts with the grid so the
// neighbor search can see them. The grid rebuild indexes real
// particles only; ghost entries are appended on top, after both the
// rebuild and UpdateGhosts completed. Ghost positions sit just outside
// the domain faces; cell lookup clamps them into the border cells,
// while the recorded positions keep distance tests exact.
func (p *Periodic) InsertGhostEntries(grid *mesh.CellLinkedList, st *particles.Store) {
	pos := st.Positions()
	for k := range p.ghostSrc {
		g := p.ghostStart + k
		grid.Insert(g, pos[g])
	}
}

// GhostCount reports the size of the live ghost range.
func (p *Periodic) GhostCount() int { return len(p.ghostSrc) }

// SourceOf maps a ghost index back to its source real particle.
func (p *Periodic) SourceOf(ghost int) int { return p.ghostSrc[ghost-p.ghostStart] }
