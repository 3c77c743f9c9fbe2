// Package neighbor builds per-particle neighbor relations from a
// rebuilt spatial grid: for each source particle, every other particle
// within its cutoff radius together with precomputed direction,
// distance and kernel data.
//
// The search is parameterized by per-particle smoothing length, cutoff
// and cell-ring depth, so one algorithm serves uniform bodies,
// body-to-body contact and adaptive-resolution (multilevel) bodies.
package neighbor
