package kernel

import (
	"math"
	"testing"
)

func kernels() map[string]Kernel {
	return map[string]Kernel{
		"cubic2d":    NewCubicSpline(2),
		"cubic3d":    NewCubicSpline(3),
		"wendland2d": NewWendlandC2(2),
		"wendland3d": NewWendlandC2(3),
	}
}

func TestKernelShape(t *testing.T) {
	h := 0.15

	for name, k := range kernels() {
		t.Run(name, func(t *testing.T) {
			if k.W(0, h) <= 0 {
				t.Error("W(0) should be positive")
			}
			support := k.SupportRadius(h)
			if k.W(support, h) != 0 {
				t.Errorf("W at support radius = %g, want 0", k.W(support, h))
			}
			if k.W(support*1.5, h) != 0 {
				t.Error("W beyond support should be 0")
			}

			// monotone decrease over the support
			prev := k.W(0, h)
			for i := 1; i <= 20; i++ {
				r := support * float64(i) / 20
				w := k.W(r, h)
				if w > prev+1e-12 {
					t.Errorf("W not monotone at r=%g: %g > %g", r, w, prev)
				}
				prev = w
			}
		})
	}
}

func TestKernelGradientSign(t *testing.T) {
	h := 0.15

	for name, k := range kernels() {
		t.Run(name, func(t *testing.T) {
			support := k.SupportRadius(h)
			for i := 1; i < 20; i++ {
				r := support * float64(i) / 20
				if dw := k.GradW(r, h); dw > 0 {
					t.Errorf("GradW(%g) = %g, want <= 0", r, dw)
				}
			}
			if k.GradW(support*1.1, h) != 0 {
				t.Error("GradW beyond support should be 0")
			}
		})
	}
}

// The kernel must integrate to one over its support. Midpoint
// quadrature over radial shells is accurate enough for a 1% check.
func TestKernelNormalization(t *testing.T) {
	h := 1.0
	steps := 2000

	tests := []struct {
		name string
		k    Kernel
		dim  int
	}{
		{"cubic2d", NewCubicSpline(2), 2},
		{"cubic3d", NewCubicSpline(3), 3},
		{"wendland2d", NewWendlandC2(2), 2},
		{"wendland3d", NewWendlandC2(3), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			support := tt.k.SupportRadius(h)
			dr := support / float64(steps)
			sum := 0.0
			for i := 0; i < steps; i++ {
				r := (float64(i) + 0.5) * dr
				shell := 2 * math.Pi * r // 2D ring
				if tt.dim == 3 {
					shell = 4 * math.Pi * r * r
				}
				sum += tt.k.W(r, h) * shell * dr
			}
			if math.Abs(sum-1) > 0.01 {
				t.Errorf("kernel integral = %g, want 1 within 1%%", sum)
			}
		})
	}
}

func TestGradWMatchesFiniteDifference(t *testing.T) {
	h := 0.2
	eps := 1e-7

	for name, k := range kernels() {
		t.Run(name, func(t *testing.T) {
			for _, q := range []float64{0.3, 0.8, 1.2, 1.7} {
				r := q * h
				numeric := (k.W(r+eps, h) - k.W(r-eps, h)) / (2 * eps)
				analytic := k.GradW(r, h)
				if math.Abs(numeric-analytic) > 1e-3*math.Abs(analytic)+1e-6 {
					t.Errorf("q=%g: GradW=%g, finite difference=%g", q, analytic, numeric)
				}
			}
		})
	}
}
