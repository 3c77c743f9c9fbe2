package boundary

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/meshfree/internal/compute"
	"github.com/san-kum/meshfree/internal/kernel"
	"github.com/san-kum/meshfree/internal/mesh"
	"github.com/san-kum/meshfree/internal/neighbor"
	"github.com/san-kum/meshfree/internal/particles"
)

const spacing = 0.5

func periodicScene(positions []r3.Vec) (*mesh.CellLinkedList, *particles.Store) {
	st := particles.New(0)
	st.InitializeBounds(len(positions))
	copy(st.Positions(), positions)
	mass := st.Masses()
	for i := range mass {
		mass[i] = float64(i + 1)
	}
	grid := mesh.NewCellLinkedList(
		mesh.Bounds{Max: r3.Vec{X: 4, Y: 4, Z: spacing}}, spacing)
	grid.Rebuild(compute.NewSerialBackend(), st)
	return grid, st
}

func TestWrapPositions(t *testing.T) {
	grid, st := periodicScene([]r3.Vec{
		{X: -0.1, Y: 1},
		{X: 4.2, Y: 1},
		{X: 2, Y: 2},
	})
	p := NewPeriodic(grid, 0)

	p.WrapPositions(st)

	pos := st.Positions()
	if math.Abs(pos[0].X-3.9) > 1e-12 {
		t.Errorf("under-run particle at x=%g, want 3.9", pos[0].X)
	}
	if math.Abs(pos[1].X-0.2) > 1e-12 {
		t.Errorf("over-run particle at x=%g, want 0.2", pos[1].X)
	}
	if pos[2].X != 2 {
		t.Error("interior particle moved")
	}
}

func TestUpdateGhostsMirrorsBoundaryLayers(t *testing.T) {
	grid, st := periodicScene([]r3.Vec{
		{X: 0.2, Y: 1},  // lower layer
		{X: 3.8, Y: 2},  // upper layer
		{X: 2.0, Y: 2},  // interior
	})
	p := NewPeriodic(grid, 0)

	if err := p.UpdateGhosts(st); err != nil {
		t.Fatal(err)
	}

	if p.GhostCount() != 2 {
		t.Fatalf("ghost count = %d, want 2", p.GhostCount())
	}
	if st.Bound() != st.RealBound()+2 {
		t.Error("particle bound does not cover the ghost range")
	}

	pos := st.Positions()
	mass := st.Masses()
	for g := st.RealBound(); g < st.Bound(); g++ {
		src := p.SourceOf(g)
		if mass[g] != mass[src] {
			t.Errorf("ghost %d mass %g differs from source %g", g, mass[g], mass[src])
		}
		shift := math.Abs(pos[g].X - pos[src].X)
		if math.Abs(shift-4) > 1e-12 {
			t.Errorf("ghost %d shifted by %g, want the domain width 4", g, shift)
		}
		if pos[g].Y != pos[src].Y {
			t.Error("ghost moved along a non-periodic axis")
		}
	}
}

func TestGhostRangeReusedAcrossSteps(t *testing.T) {
	grid, st := periodicScene([]r3.Vec{
		{X: 0.2, Y: 1},
		{X: 3.8, Y: 2},
	})
	p := NewPeriodic(grid, 0)

	if err := p.UpdateGhosts(st); err != nil {
		t.Fatal(err)
	}
	boundAfterFirst := st.Bound()

	// next step: same boundary population, range must not leak
	grid.Rebuild(compute.NewSerialBackend(), st)
	if err := p.UpdateGhosts(st); err != nil {
		t.Fatal(err)
	}
	if st.Bound() != boundAfterFirst {
		t.Errorf("ghost range grew from %d to %d across steps", boundAfterFirst, st.Bound())
	}
}

// After InsertGhostEntries the border cells hold ghost entries on top
// of the real ones. The next step's ghost refresh runs before the grid
// rebuild, so it reads those cells as-is and must not treat last
// step's ghosts as sources.
func TestUpdateGhostsIgnoresStaleGhostEntries(t *testing.T) {
	grid, st := periodicScene([]r3.Vec{
		{X: 0.2, Y: 1},
		{X: 3.8, Y: 2},
	})
	p := NewPeriodic(grid, 0)

	// first step: refresh, rebuild, re-register ghosts with the grid
	if err := p.UpdateGhosts(st); err != nil {
		t.Fatal(err)
	}
	grid.Rebuild(compute.NewSerialBackend(), st)
	p.InsertGhostEntries(grid, st)

	// second step: refresh again against the ghost-laden grid
	if err := p.UpdateGhosts(st); err != nil {
		t.Fatal(err)
	}

	if p.GhostCount() != 2 {
		t.Fatalf("ghost count = %d after second refresh, want 2", p.GhostCount())
	}
	for g := st.RealBound(); g < st.Bound(); g++ {
		if src := p.SourceOf(g); src >= st.TotalReal() {
			t.Errorf("ghost %d sourced from non-real index %d", g, src)
		}
	}
}

// A particle near the upper face must see the lower-face particle
// through its ghost image.
func TestNeighborSearchSeesPeriodicImages(t *testing.T) {
	const h = 0.25 // support 0.5 = spacing

	grid, st := periodicScene([]r3.Vec{
		{X: 0.1, Y: 1},
		{X: 3.9, Y: 1}, // 0.2 away through the periodic face
	})
	p := NewPeriodic(grid, 0)

	if err := p.UpdateGhosts(st); err != nil {
		t.Fatal(err)
	}
	grid.Rebuild(compute.NewSerialBackend(), st)
	p.InsertGhostEntries(grid, st)

	out := neighbor.Alloc(st.TotalReal())
	neighbor.BuildInner(compute.NewSerialBackend(), grid, st,
		neighbor.Uniform(kernel.NewCubicSpline(2), h), out)

	sawImageOfLower := false
	for k, j := range out[1].Indices {
		if j >= st.RealBound() && p.SourceOf(j) == 0 {
			sawImageOfLower = true
			if math.Abs(out[1].Dist[k]-0.2) > 1e-12 {
				t.Errorf("image distance = %g, want 0.2", out[1].Dist[k])
			}
		}
	}
	if !sawImageOfLower {
		t.Error("upper-face particle does not see the periodic image of the lower-face particle")
	}
}
