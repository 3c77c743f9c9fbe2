// Package particles implements the particle arena: named attribute
// arrays over a shared slot range, partitioned into real, buffer and
// ghost regions by three monotone bounds.
//
// Attribute arrays are registered by name and element type:
//
//	vel, err := particles.Register[r3.Vec](store, "Velocity")
//
// Registration is idempotent; a name re-registered with a different
// element type fails with a *TypeConflictError. Every array grows and
// shrinks together, so a particle index is valid across all of them.
//
// Lifecycle transitions (DemoteToBuffer, PromoteFromBuffer, ghost
// allocation and refresh) restructure the arena and must never overlap
// a parallel pass over the arrays. Index misuse on the lifecycle
// operations panics: these are hot-path contracts, not validated
// input.
package particles
