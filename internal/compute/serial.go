package compute

// SerialBackend runs every pass on the calling goroutine. Useful for
// deterministic debugging and as the fallback on single-core hosts.
type SerialBackend struct{}

func NewSerialBackend() *SerialBackend { return &SerialBackend{} }

func (s *SerialBackend) Name() string    { return "serial" }
func (s *SerialBackend) Available() bool { return true }
func (s *SerialBackend) Cleanup()        {}

func (s *SerialBackend) ParallelFor(n, minGrain int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	fn(0, n)
}
