package compute

import (
	"sync/atomic"
	"testing"
)

func TestCPUBackendCoversRange(t *testing.T) {
	be := NewCPUBackend()

	tests := []struct {
		name     string
		n        int
		minGrain int
	}{
		{"empty", 0, 16},
		{"below grain", 10, 16},
		{"exact grain", 16, 16},
		{"many chunks", 1000, 16},
		{"grain one", 37, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visits := make([]int32, tt.n)
			be.ParallelFor(tt.n, tt.minGrain, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&visits[i], 1)
				}
			})

			for i, v := range visits {
				if v != 1 {
					t.Fatalf("index %d visited %d times, want 1", i, v)
				}
			}
		})
	}
}

func TestSerialBackendSingleChunk(t *testing.T) {
	be := NewSerialBackend()

	calls := 0
	be.ParallelFor(100, 8, func(start, end int) {
		calls++
		if start != 0 || end != 100 {
			t.Errorf("expected single chunk [0,100), got [%d,%d)", start, end)
		}
	})

	if calls != 1 {
		t.Errorf("expected 1 chunk, got %d", calls)
	}
}

func TestParallelForConcurrentAccumulate(t *testing.T) {
	be := NewCPUBackend()

	var sum int64
	n := 10000
	be.ParallelFor(n, 64, func(start, end int) {
		var local int64
		for i := start; i < end; i++ {
			local += int64(i)
		}
		atomic.AddInt64(&sum, local)
	})

	want := int64(n) * int64(n-1) / 2
	if sum != want {
		t.Errorf("sum = %d, want %d", sum, want)
	}
}

func TestAutoSelectBackend(t *testing.T) {
	be := AutoSelectBackend()
	if be == nil {
		t.Fatal("no backend selected")
	}
	if !be.Available() {
		t.Errorf("auto-selected backend %q not available", be.Name())
	}
}

func TestByName(t *testing.T) {
	if ByName("serial").Name() != "serial" {
		t.Error("serial not resolved")
	}
	if ByName("cpu").Name() != "cpu" {
		t.Error("cpu not resolved")
	}
	if ByName("") == nil {
		t.Error("default not resolved")
	}
}
