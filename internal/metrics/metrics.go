// Package metrics provides per-step reductions over a body's real
// particles for monitoring runs: kinetic energy, peak speed and the
// mean neighborhood size.
package metrics

import (
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/meshfree/internal/body"
	"github.com/san-kum/meshfree/internal/particles"
)

type KineticEnergy struct {
	name  string
	vel   *particles.Field[r3.Vec]
	value float64
}

func NewKineticEnergy(vel *particles.Field[r3.Vec]) *KineticEnergy {
	return &KineticEnergy{
		name: "kinetic_energy",
		vel:  vel,
	}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(b *body.Body, t float64) {
	mass := b.Store.Masses()
	vel := k.vel.Data()
	sum := 0.0
	for i := 0; i < b.Store.TotalReal(); i++ {
		v2 := vel[i].X*vel[i].X + vel[i].Y*vel[i].Y + vel[i].Z*vel[i].Z
		sum += 0.5 * mass[i] * v2
	}
	k.value = sum
}

func (k *KineticEnergy) Value() float64 { return k.value }

func (k *KineticEnergy) Reset() { k.value = 0 }

type MaxSpeed struct {
	name  string
	vel   *particles.Field[r3.Vec]
	value float64
}

func NewMaxSpeed(vel *particles.Field[r3.Vec]) *MaxSpeed {
	return &MaxSpeed{
		name: "max_speed",
		vel:  vel,
	}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(b *body.Body, t float64) {
	vel := m.vel.Data()
	vmax := 0.0
	for i := 0; i < b.Store.TotalReal(); i++ {
		if v := r3.Norm(vel[i]); v > vmax {
			vmax = v
		}
	}
	m.value = vmax
}

func (m *MaxSpeed) Value() float64 { return m.value }

func (m *MaxSpeed) Reset() { m.value = 0 }

// MeanNeighbors tracks the average neighborhood size, a resolution
// health indicator: values collapsing toward zero mean the particle
// distribution tore apart or the cutoff is mis-sized.
type MeanNeighbors struct {
	name  string
	value float64
	buf   []float64
}

func NewMeanNeighbors() *MeanNeighbors {
	return &MeanNeighbors{name: "mean_neighbors"}
}

func (m *MeanNeighbors) Name() string { return m.name }

func (m *MeanNeighbors) Observe(b *body.Body, t float64) {
	n := b.Store.TotalReal()
	if n == 0 {
		m.value = 0
		return
	}
	m.buf = m.buf[:0]
	for i := 0; i < n; i++ {
		m.buf = append(m.buf, float64(b.Inner[i].Len()))
	}
	m.value = stat.Mean(m.buf, nil)
}

func (m *MeanNeighbors) Value() float64 { return m.value }

func (m *MeanNeighbors) Reset() { m.value = 0 }
