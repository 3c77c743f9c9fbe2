// Package sorting derives a cache-friendly particle ordering from
// grid-cell occupancy and applies it to every attribute array in
// lockstep. Resorting runs periodically, not every step; any neighbor
// relation computed before a resort is invalid afterwards.
package sorting

import (
	"sort"

	"github.com/san-kum/meshfree/internal/mesh"
	"github.com/san-kum/meshfree/internal/particles"
)

// ComputeSequence returns, for every real particle, the linear index
// of its current grid cell, the sort key for memory reordering.
func ComputeSequence(grid *mesh.CellLinkedList, st *particles.Store) []int {
	pos := st.Positions()
	seq := make([]int, st.TotalReal())
	for i := range seq {
		seq[i] = grid.SequenceOf(pos[i])
	}
	return seq
}

// SortByCell reorders the store's real region so particles of one cell
// become contiguous in memory, and returns the applied permutation
// (new slot i holds the particle formerly at perm[i]). The relative
// order within a cell is preserved, which keeps repeated resorts
// cheap on an already mostly-ordered population.
func SortByCell(grid *mesh.CellLinkedList, st *particles.Store) []int {
	seq := ComputeSequence(grid, st)
	perm := make([]int, len(seq))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return seq[perm[a]] < seq[perm[b]]
	})
	st.ApplyPermutation(perm)
	return perm
}
