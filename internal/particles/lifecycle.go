package particles

import "fmt"

// DemoteToBuffer deactivates the real particle at index by swapping it
// with the last real particle and shrinking the real region by one.
// The particle formerly at the tail now lives at index; the demoted
// one survives in the first buffer slot, so an immediate promotion of
// that slot restores the population. Any external cache of the old
// tail index is invalid after this call.
func (s *Store) DemoteToBuffer(index int) {
	if index < 0 || index >= s.totalReal {
		panic(fmt.Sprintf("particles: demote of %d outside real region [0,%d)", index, s.totalReal))
	}
	s.SwapParticle(index, s.totalReal-1)
	s.totalReal--
}

// PromoteFromBuffer activates one buffer slot by copying the particle
// at sourceIndex onto the first buffer position and growing the real
// region by one. Requires reserved buffer headroom (AddBuffer).
func (s *Store) PromoteFromBuffer(sourceIndex int) {
	if s.totalReal >= s.realBound {
		panic(fmt.Sprintf("particles: promote with no buffer headroom (real bound %d)", s.realBound))
	}
	s.CopyParticle(s.totalReal, sourceIndex)
	s.totalReal++
}

// AllocateGhosts reserves size ghost slots at the current particle
// bound, growing capacity first when the headroom is exhausted, and
// returns the start index of the range. Ghost ranges are not freed
// individually; ResetGhosts invalidates them wholesale.
func (s *Store) AllocateGhosts(size int) (int, error) {
	if size < 0 {
		panic(fmt.Sprintf("particles: negative ghost range size %d", size))
	}
	start := s.bound
	need := start + size
	if need > s.capacity {
		if err := s.Grow(need - s.bound); err != nil {
			return 0, err
		}
	}
	s.bound = need
	s.assignIdentity(start, need)
	return start, nil
}

// ResetGhosts invalidates every ghost range. Boundary collaborators
// call it once per step before re-allocating.
func (s *Store) ResetGhosts() {
	s.bound = s.realBound
}

// RefreshGhost overwrites the ghost slot with its source real
// particle. The caller applies any boundary transform (e.g. a periodic
// translation of the position) afterwards; once both are done the
// ghost fully reflects its source for the current step.
func (s *Store) RefreshGhost(ghostIndex, sourceIndex int) {
	if ghostIndex < s.realBound || ghostIndex >= s.bound {
		panic(fmt.Sprintf("particles: ghost refresh of %d outside ghost region [%d,%d)",
			ghostIndex, s.realBound, s.bound))
	}
	if sourceIndex < 0 || sourceIndex >= s.totalReal {
		panic(fmt.Sprintf("particles: ghost source %d outside real region [0,%d)",
			sourceIndex, s.totalReal))
	}
	s.CopyParticle(ghostIndex, sourceIndex)
}

// ApplyPermutation reorders the real region of every field in
// lockstep: slot i receives the values previously at perm[i]. The
// sorted-id map is rebuilt so SortedIDs()[originalID] tracks the
// current slot of each original particle. Neighbor relations computed
// before the call are invalid afterwards.
func (s *Store) ApplyPermutation(perm []int) {
	if len(perm) != s.totalReal {
		panic(fmt.Sprintf("particles: permutation length %d, real count %d", len(perm), s.totalReal))
	}
	seen := make([]bool, s.totalReal)
	for _, p := range perm {
		if p < 0 || p >= s.totalReal || seen[p] {
			panic(fmt.Sprintf("particles: invalid permutation entry %d", p))
		}
		seen[p] = true
	}

	for _, f := range s.order {
		f.permuteReal(perm)
	}

	ids := s.originalID.Data()
	sorted := s.sortedID.Data()
	for i := 0; i < s.totalReal; i++ {
		sorted[ids[i]] = i
	}
}

// ExportReal copies the real region of every field, keyed by field
// name. Together with TotalReal it is the complete restart state.
func (s *Store) ExportReal() map[string]any {
	out := make(map[string]any, len(s.order))
	for _, f := range s.order {
		out[f.fieldName()] = f.exportPrefix(s.totalReal)
	}
	return out
}

// ImportReal resets the store to totalReal particles and restores
// field contents by name. Fields present in data but never registered
// on this store are an error; registered fields missing from data keep
// their defaults.
func (s *Store) ImportReal(totalReal int, data map[string]any) error {
	for name := range data {
		if _, ok := s.fields[name]; !ok {
			return fmt.Errorf("particles: restored data contains unregistered field %q", name)
		}
	}
	s.InitializeBounds(totalReal)
	for name, v := range data {
		if err := s.fields[name].importPrefix(totalReal, v); err != nil {
			return err
		}
	}
	return nil
}
