// Package body ties the particle store, the spatial grid and the
// neighbor relations into one simulated body, and owns the per-step
// pipeline that keeps them consistent: advance, wrap, ghost refresh,
// grid rebuild, ghost re-registration, neighbor search, interactions.
// Physics, boundaries, integrators and metrics plug in through small
// interfaces; the pipeline ordering itself is fixed.
package body
