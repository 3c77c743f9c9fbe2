package neighbor

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/meshfree/internal/compute"
	"github.com/san-kum/meshfree/internal/kernel"
	"github.com/san-kum/meshfree/internal/mesh"
	"github.com/san-kum/meshfree/internal/particles"
)

const searchGrain = 64

// Config parameterizes a search pass. SmoothingLength is mandatory;
// Cutoff defaults to the kernel's support radius of the smoothing
// length, and Depth to the cell-ring count covering the cutoff at the
// grid's spacing.
type Config struct {
	Kernel          kernel.Kernel
	SmoothingLength func(i int) float64
	Cutoff          func(i int) float64
	Depth           func(i int) int
}

// Uniform builds a config for a body whose particles share one
// smoothing length.
func Uniform(k kernel.Kernel, h float64) Config {
	return Config{
		Kernel:          k,
		SmoothingLength: func(int) float64 { return h },
	}
}

func (c Config) cutoff(i int) float64 {
	if c.Cutoff != nil {
		return c.Cutoff(i)
	}
	return c.Kernel.SupportRadius(c.SmoothingLength(i))
}

func (c Config) depth(i int, spacing, cutoff float64) int {
	if c.Depth != nil {
		return c.Depth(i)
	}
	d := int(math.Ceil(cutoff / spacing))
	if d < 1 {
		d = 1
	}
	return d
}

// BuildInner fills out[i] with every other particle of the same body
// within particle i's cutoff. out must hold at least TotalReal
// neighborhoods; each source particle is independent, so the pass runs
// parallel with per-index writes only.
func BuildInner(be compute.Backend, grid *mesh.CellLinkedList, st *particles.Store, cfg Config, out []Neighborhood) {
	pos := st.Positions()
	be.ParallelFor(st.TotalReal(), searchGrain, func(start, end int) {
		for i := start; i < end; i++ {
			searchCells(grid, i, pos[i], true, cfg, &out[i], true)
		}
	})
}

// BuildContact fills out[i] with the particles of a different body
// (indexed by contactGrid) within particle i's cutoff. Index equality
// carries no self meaning across bodies, so nothing is excluded.
func BuildContact(be compute.Backend, contactGrid *mesh.CellLinkedList, src *particles.Store, cfg Config, out []Neighborhood) {
	pos := src.Positions()
	be.ParallelFor(src.TotalReal(), searchGrain, func(start, end int) {
		for i := start; i < end; i++ {
			searchCells(contactGrid, i, pos[i], false, cfg, &out[i], true)
		}
	})
}

// BuildInnerMultilevel searches an adaptive-resolution body. Each
// source probes its own level plus the immediately finer and coarser
// levels over the cells overlapping its cutoff; a particle lives on
// exactly one level, so no candidate is seen twice.
func BuildInnerMultilevel(be compute.Backend, ml *mesh.MultilevelList, st *particles.Store, cfg Config, out []Neighborhood) {
	pos := st.Positions()
	be.ParallelFor(st.TotalReal(), searchGrain, func(start, end int) {
		for i := start; i < end; i++ {
			out[i].Reset()
			own := ml.LevelFor(cfg.cutoff(i))
			for k := own - 1; k <= own+1; k++ {
				if k < 0 || k >= ml.NumLevels() {
					continue
				}
				searchCells(ml.Level(k), i, pos[i], true, cfg, &out[i], false)
			}
		}
	})
}

// searchCells scans the candidate cells of one grid around the source
// and appends accepted pairs. Completeness (every particle within the
// cutoff) and correctness (none beyond it) are the only guarantees;
// entry order follows cell iteration and is not canonical.
func searchCells(grid *mesh.CellLinkedList, i int, posI r3.Vec, excludeSelf bool, cfg Config, nb *Neighborhood, reset bool) {
	if reset {
		nb.Reset()
	}
	h := cfg.SmoothingLength(i)
	cutoff := cfg.cutoff(i)
	depth := cfg.depth(i, grid.Spacing(), cutoff)

	grid.VisitBlock(posI, depth, func(cell *mesh.CellList) {
		for _, e := range cell.Entries() {
			if excludeSelf && e.Index == i {
				continue
			}
			disp := r3.Sub(posI, e.Pos)
			dist := r3.Norm(disp)
			if dist >= cutoff {
				continue
			}
			dir := r3.Vec{}
			if dist > 0 {
				dir = r3.Scale(1/dist, disp)
			}
			nb.add(e.Index, dir, dist, cfg.Kernel.W(dist, h), cfg.Kernel.GradW(dist, h))
		}
	})
}
