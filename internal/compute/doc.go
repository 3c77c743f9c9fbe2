// Package compute provides the parallel execution backends for the
// per-step particle passes.
//
// The package auto-selects a backend at startup:
//
//   - cpu: chunked goroutines over the index range
//   - serial: single-goroutine fallback
//
// Passes receive the backend as an argument rather than reaching for a
// global, so a scene can pin the serial backend for reproducibility:
//
//	be := compute.NewSerialBackend()
//	grid.Rebuild(be, store)
package compute
