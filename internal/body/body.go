package body

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/meshfree/internal/compute"
	"github.com/san-kum/meshfree/internal/kernel"
	"github.com/san-kum/meshfree/internal/mesh"
	"github.com/san-kum/meshfree/internal/neighbor"
	"github.com/san-kum/meshfree/internal/particles"
)

const advanceGrain = 256

// Body is one simulated particle population: its store, the spatial
// grid indexing it, and the inner neighbor relations rebuilt for it
// every step.
type Body struct {
	Store  *particles.Store
	Grid   *mesh.CellLinkedList
	Inner  []neighbor.Neighborhood
	Kernel kernel.Kernel
	H      float64 // reference smoothing length
}

// NewBody wires a store to a fresh grid over bounds. The grid spacing
// is the kernel's support radius of h, so one cell ring covers the
// interaction cutoff.
func NewBody(st *particles.Store, bounds mesh.Bounds, k kernel.Kernel, h float64) *Body {
	return &Body{
		Store:  st,
		Grid:   mesh.NewCellLinkedList(bounds, k.SupportRadius(h)),
		Kernel: k,
		H:      h,
	}
}

// SearchConfig is the neighbor-search parameterization for this
// body's uniform resolution.
func (b *Body) SearchConfig() neighbor.Config {
	return neighbor.Uniform(b.Kernel, b.H)
}

// ensureNeighborhoods sizes the relation array to the real population.
func (b *Body) ensureNeighborhoods() {
	if n := b.Store.TotalReal(); len(b.Inner) < n {
		b.Inner = append(b.Inner, neighbor.Alloc(n-len(b.Inner))...)
	}
}

// Interaction is the capability external physics expose to the step
// pipeline: evaluate forces or fluxes for one body from its neighbor
// relations and attribute arrays.
type Interaction interface {
	Name() string
	Apply(be compute.Backend, b *Body)
}

// Boundary drives the ghost lifecycle for one domain boundary.
type Boundary interface {
	WrapPositions(st *particles.Store)
	UpdateGhosts(st *particles.Store) error
	InsertGhostEntries(grid *mesh.CellLinkedList, st *particles.Store)
}

// Integrator advances positions (and whatever state it owns) by dt.
// The outer time integration is a collaborator, not part of the core;
// this hook is where it plugs in.
type Integrator func(be compute.Backend, b *Body, dt float64)

// Metric observes the body once per step and reduces to one value.
type Metric interface {
	Name() string
	Observe(b *Body, t float64)
	Value() float64
	Reset()
}

// Observer receives the body after each completed step.
type Observer interface {
	OnStep(b *Body, step int, t float64)
}

// SymplecticEuler is the demo integrator: kick velocities by the
// accumulated acceleration, then drift positions.
func SymplecticEuler(vel, acc *particles.Field[r3.Vec]) Integrator {
	return func(be compute.Backend, b *Body, dt float64) {
		v := vel.Data()
		a := acc.Data()
		pos := b.Store.Positions()
		be.ParallelFor(b.Store.TotalReal(), advanceGrain, func(start, end int) {
			for i := start; i < end; i++ {
				v[i].X += dt * a[i].X
				v[i].Y += dt * a[i].Y
				v[i].Z += dt * a[i].Z
				pos[i].X += dt * v[i].X
				pos[i].Y += dt * v[i].Y
				pos[i].Z += dt * v[i].Z
			}
		})
	}
}
