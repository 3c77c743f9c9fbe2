package compute

// Backend is the execution strategy injected into the per-step passes
// (grid rebuild, ghost refresh, neighbor search, interactions). A pass
// hands ParallelFor a body that only writes state owned by the indices
// it receives, so backends never need to lock on behalf of callers.
type Backend interface {
	Name() string
	Available() bool
	// ParallelFor covers [0, n) with contiguous chunks of at least
	// minGrain indices. It returns only after every chunk completed.
	ParallelFor(n, minGrain int, fn func(start, end int))
	Cleanup()
}

var activeBackend Backend

func init() {
	activeBackend = AutoSelectBackend()
}

func SetBackend(b Backend) {
	if activeBackend != nil {
		activeBackend.Cleanup()
	}
	activeBackend = b
}

func GetBackend() Backend {
	return activeBackend
}

// AutoSelectBackend picks the parallel CPU backend when more than one
// core is present, the serial backend otherwise.
func AutoSelectBackend() Backend {
	cpu := NewCPUBackend()
	if cpu.Available() {
		return cpu
	}
	return NewSerialBackend()
}

// ByName resolves a backend from its config name. Unknown names fall
// back to auto-selection.
func ByName(name string) Backend {
	switch name {
	case "serial":
		return NewSerialBackend()
	case "cpu":
		return NewCPUBackend()
	default:
		return AutoSelectBackend()
	}
}
