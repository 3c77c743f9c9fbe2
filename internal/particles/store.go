package particles

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Names of the geometric fields every store carries.
const (
	PositionName   = "Position"
	VolumeName     = "Volume"
	DensityName    = "Density"
	MassName       = "Mass"
	OriginalIDName = "OriginalID"
	SortedIDName   = "SortedID"
)

// DefaultCeiling bounds capacity growth when no explicit ceiling is
// configured.
const DefaultCeiling = 1 << 22

// Store is the particle arena for one simulated body. All attribute
// arrays share the slot range [0, Capacity) and are partitioned by
// three monotone bounds:
//
//	[0, TotalReal)        real particles, advanced by physics
//	[TotalReal, RealBound) buffer particles, reserved for promotion
//	[RealBound, Bound)     ghost particles, recomputed each step
//
// The real region is contiguous and starts at zero; demotion swaps
// with the tail and promotion appends, so no hole ever forms.
type Store struct {
	totalReal int
	realBound int
	bound     int
	capacity  int
	ceiling   int

	fields map[string]field
	order  []field

	pos        *Field[r3.Vec]
	vol        *Field[float64]
	rho        *Field[float64]
	mass       *Field[float64]
	originalID *Field[int]
	sortedID   *Field[int]
}

// New creates an empty store with the given capacity ceiling
// (DefaultCeiling when <= 0) and registers the geometric fields.
func New(ceiling int) *Store {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	s := &Store{
		ceiling: ceiling,
		fields:  make(map[string]field),
	}
	s.pos = mustRegister[r3.Vec](s, PositionName)
	s.vol = mustRegister[float64](s, VolumeName)
	s.rho = mustRegister[float64](s, DensityName)
	s.mass = mustRegister[float64](s, MassName)
	s.originalID = mustRegister[int](s, OriginalIDName)
	s.sortedID = mustRegister[int](s, SortedIDName)
	return s
}

func (s *Store) TotalReal() int { return s.totalReal }
func (s *Store) RealBound() int { return s.realBound }
func (s *Store) Bound() int     { return s.bound }
func (s *Store) Capacity() int  { return s.capacity }

func (s *Store) Positions() []r3.Vec  { return s.pos.Data() }
func (s *Store) Volumes() []float64   { return s.vol.Data() }
func (s *Store) Densities() []float64 { return s.rho.Data() }
func (s *Store) Masses() []float64    { return s.mass.Data() }
func (s *Store) OriginalIDs() []int   { return s.originalID.Data() }
func (s *Store) SortedIDs() []int     { return s.sortedID.Data() }

// FieldNames returns every registered field name in registration
// order.
func (s *Store) FieldNames() []string {
	names := make([]string, len(s.order))
	for i, f := range s.order {
		names[i] = f.fieldName()
	}
	return names
}

// InitializeBounds sets all three bounds to totalReal, sizes every
// registered field to that length and assigns identity particle ids.
// Buffer and ghost headroom are added afterwards via AddBuffer and
// AllocateGhosts.
func (s *Store) InitializeBounds(totalReal int) {
	if totalReal < 0 {
		panic(fmt.Sprintf("particles: negative particle count %d", totalReal))
	}
	s.totalReal = totalReal
	s.realBound = totalReal
	s.bound = totalReal
	s.capacity = totalReal
	for _, f := range s.order {
		f.resize(totalReal)
	}
	ids := s.originalID.Data()
	sorted := s.sortedID.Data()
	for i := range ids {
		ids[i] = i
		sorted[i] = i
	}
}

// Grow reallocates every field to Bound()+extra slots, preserving
// existing contents at their original indices. The bounds themselves
// do not move; the new slots are headroom for ghost allocation.
func (s *Store) Grow(extra int) error {
	newCap := s.bound + extra
	if newCap > s.ceiling {
		return &CapacityError{Requested: newCap, Ceiling: s.ceiling}
	}
	if newCap <= s.capacity {
		return nil
	}
	for _, f := range s.order {
		f.resize(newCap)
	}
	s.capacity = newCap
	return nil
}

// AddBuffer reserves extra buffer slots behind the real region for
// future promotion. It must run while no ghost range is live (ghosts
// sit behind the buffer region and would be displaced).
func (s *Store) AddBuffer(extra int) error {
	if s.bound != s.realBound {
		panic("particles: buffer reservation with live ghost particles")
	}
	newBound := s.realBound + extra
	if newBound > s.ceiling {
		return &CapacityError{Requested: newBound, Ceiling: s.ceiling}
	}
	if newBound > s.capacity {
		for _, f := range s.order {
			f.resize(newBound)
		}
		s.capacity = newBound
	}
	s.realBound = newBound
	s.bound = newBound
	s.assignIdentity(s.totalReal, newBound)
	return nil
}

func (s *Store) assignIdentity(from, to int) {
	ids := s.originalID.Data()
	sorted := s.sortedID.Data()
	for i := from; i < to; i++ {
		ids[i] = i
		sorted[i] = i
	}
}

// CopyParticle copies every attribute array's value at src into dst.
// Both indices must lie below the particle bound; violations are
// programming errors and panic.
func (s *Store) CopyParticle(dst, src int) {
	if dst < 0 || dst >= s.bound || src < 0 || src >= s.bound {
		panic(fmt.Sprintf("particles: copy %d <- %d outside bound %d", dst, src, s.bound))
	}
	for _, f := range s.order {
		f.copyWithin(dst, src)
	}
}

// SwapParticle exchanges every attribute array's values at a and b.
func (s *Store) SwapParticle(a, b int) {
	if a < 0 || a >= s.bound || b < 0 || b >= s.bound {
		panic(fmt.Sprintf("particles: swap %d <-> %d outside bound %d", a, b, s.bound))
	}
	for _, f := range s.order {
		f.swapWithin(a, b)
	}
}

// BoundsOrdered reports the structural invariant
// 0 <= TotalReal <= RealBound <= Bound <= Capacity.
func (s *Store) BoundsOrdered() bool {
	return 0 <= s.totalReal && s.totalReal <= s.realBound &&
		s.realBound <= s.bound && s.bound <= s.capacity
}
