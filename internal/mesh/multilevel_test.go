package mesh

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/meshfree/internal/compute"
)

func TestLevelForMapping(t *testing.T) {
	m := NewMultilevelList(planarBounds(10), 0.4, 3) // spacings 0.4, 0.2, 0.1

	tests := []struct {
		cutoff float64
		want   int
	}{
		{0.8, 0},  // larger than the reference, clamp coarse
		{0.4, 0},  // exactly the reference spacing
		{0.35, 0}, // level 1 spacing would be too small
		{0.2, 1},
		{0.15, 1},
		{0.1, 2},
		{0.05, 2}, // finer than the ladder, clamp fine
	}

	for _, tt := range tests {
		if got := m.LevelFor(tt.cutoff); got != tt.want {
			t.Errorf("LevelFor(%g) = %d, want %d", tt.cutoff, got, tt.want)
		}
	}

	// monotone: larger cutoff never maps to a finer level
	prev := m.LevelFor(1.0)
	for _, c := range []float64{0.5, 0.3, 0.2, 0.12, 0.08} {
		k := m.LevelFor(c)
		if k < prev {
			t.Errorf("LevelFor not monotone at cutoff %g", c)
		}
		prev = k
	}
}

func TestLevelSpacingsHalve(t *testing.T) {
	m := NewMultilevelList(planarBounds(10), 0.4, 3)
	for k := 0; k < m.NumLevels(); k++ {
		want := 0.4 / float64(int(1)<<k)
		if got := m.Level(k).Spacing(); got != want {
			t.Errorf("level %d spacing = %g, want %g", k, got, want)
		}
	}
}

func TestMultilevelRebuildOneLevelPerParticle(t *testing.T) {
	st := randomStore(300, 10, 11)
	cutoffs := make([]float64, st.TotalReal())
	for i := range cutoffs {
		switch i % 3 {
		case 0:
			cutoffs[i] = 0.4
		case 1:
			cutoffs[i] = 0.2
		default:
			cutoffs[i] = 0.1
		}
	}

	m := NewMultilevelList(planarBounds(10), 0.4, 3)
	m.Rebuild(compute.NewCPUBackend(), st, cutoffs)

	counts := make(map[int]int) // particle -> insertions across levels
	perLevel := make([]int, m.NumLevels())
	for k := 0; k < m.NumLevels(); k++ {
		l := m.Level(k)
		for c := 0; c < l.NumCells(); c++ {
			for _, e := range l.cells[c].Entries() {
				counts[e.Index]++
				perLevel[k]++
				if want := m.LevelFor(cutoffs[e.Index]); want != k {
					t.Errorf("particle %d on level %d, want %d", e.Index, k, want)
				}
			}
		}
	}

	if len(counts) != st.TotalReal() {
		t.Fatalf("%d particles indexed, want %d", len(counts), st.TotalReal())
	}
	for i, n := range counts {
		if n != 1 {
			t.Errorf("particle %d inserted into %d levels", i, n)
		}
	}
	for k, n := range perLevel {
		if n != 100 {
			t.Errorf("level %d holds %d particles, want 100", k, n)
		}
	}
}

func TestMultilevelInsertPosition(t *testing.T) {
	m := NewMultilevelList(planarBounds(10), 0.4, 2)
	m.Insert(0, r3.Vec{X: 1, Y: 1}, 0.2)

	if got, _, ok := m.Level(1).FindNearest(r3.Vec{X: 1, Y: 1}); !ok || got != 0 {
		t.Error("particle missing from its own level")
	}
	if _, _, ok := m.Level(0).FindNearest(r3.Vec{X: 1, Y: 1}); ok {
		t.Error("particle leaked into a coarser level")
	}
}
