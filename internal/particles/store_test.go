package particles_test

import (
	"errors"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/meshfree/internal/particles"
)

// realMasses snapshots the multiset of mass values held by real
// particles.
func realMasses(st *particles.Store) []float64 {
	out := make([]float64, st.TotalReal())
	copy(out, st.Masses()[:st.TotalReal()])
	sort.Float64s(out)
	return out
}

var _ = Describe("Store", func() {
	var st *particles.Store

	BeforeEach(func() {
		st = particles.New(0)
		st.InitializeBounds(10)

		pos := st.Positions()
		mass := st.Masses()
		for i := 0; i < 10; i++ {
			pos[i] = r3.Vec{X: float64(i), Y: float64(i) * 2}
			mass[i] = 1 + float64(i)
		}
	})

	Describe("field registration", func() {
		It("is idempotent per name and type", func() {
			a, err := particles.Register[float64](st, "Pressure")
			Expect(err).NotTo(HaveOccurred())
			b, err := particles.Register[float64](st, "Pressure")
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(BeIdenticalTo(a))
		})

		It("rejects a name re-registered with another type", func() {
			_, err := particles.Register[float64](st, "Flag")
			Expect(err).NotTo(HaveOccurred())

			_, err = particles.Register[int](st, "Flag")
			var conflict *particles.TypeConflictError
			Expect(errors.As(err, &conflict)).To(BeTrue())
			Expect(conflict.Name).To(Equal("Flag"))
		})

		It("sizes late-registered fields to the current bound", func() {
			f, err := particles.Register[float64](st, "Late")
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Len()).To(Equal(10))
		})

		It("applies the initializer exactly once", func() {
			f, err := particles.RegisterFunc(st, "Scaled", func(i int) float64 {
				return float64(i) * 10
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Data()[3]).To(Equal(30.0))

			again, err := particles.RegisterFunc(st, "Scaled", func(i int) float64 {
				return -1
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Data()[3]).To(Equal(30.0))
		})
	})

	Describe("capacity model", func() {
		It("starts with all bounds equal", func() {
			Expect(st.TotalReal()).To(Equal(10))
			Expect(st.RealBound()).To(Equal(10))
			Expect(st.Bound()).To(Equal(10))
		})

		It("keeps the bounds ordered through the whole lifecycle", func() {
			Expect(st.AddBuffer(4)).To(Succeed())
			st.DemoteToBuffer(1)
			_, err := st.AllocateGhosts(7)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.BoundsOrdered()).To(BeTrue())

			st.ResetGhosts()
			st.PromoteFromBuffer(st.TotalReal())
			Expect(st.BoundsOrdered()).To(BeTrue())
		})

		It("preserves real values bit-for-bit across growth", func() {
			before := make([]r3.Vec, 10)
			copy(before, st.Positions()[:10])

			Expect(st.Grow(500)).To(Succeed())
			Expect(st.Capacity()).To(Equal(510))
			Expect(st.Positions()[:10]).To(Equal(before))
			Expect(st.Bound()).To(Equal(10), "growth must not move the particle bound")
		})

		It("reports growth past the ceiling", func() {
			small := particles.New(100)
			small.InitializeBounds(90)

			err := small.Grow(50)
			var capErr *particles.CapacityError
			Expect(errors.As(err, &capErr)).To(BeTrue())
			Expect(capErr.Ceiling).To(Equal(100))
			Expect(small.Capacity()).To(Equal(90), "failed growth must not lose state")
		})

		It("reserves buffer headroom behind the real region", func() {
			Expect(st.AddBuffer(5)).To(Succeed())
			Expect(st.TotalReal()).To(Equal(10))
			Expect(st.RealBound()).To(Equal(15))
			Expect(st.Bound()).To(Equal(15))
		})
	})

	Describe("demotion and promotion", func() {
		BeforeEach(func() {
			Expect(st.AddBuffer(5)).To(Succeed())
		})

		It("keeps the real region contiguous on demotion", func() {
			tailMass := st.Masses()[st.TotalReal()-1]
			st.DemoteToBuffer(2)

			Expect(st.TotalReal()).To(Equal(9))
			Expect(st.Masses()[2]).To(Equal(tailMass))
		})

		It("preserves the real value multiset up to the demoted one", func() {
			before := realMasses(st)
			demoted := st.Masses()[4]
			st.DemoteToBuffer(4)
			after := realMasses(st)

			Expect(after).To(HaveLen(len(before) - 1))
			rejoined := append(append([]float64{}, after...), demoted)
			sort.Float64s(rejoined)
			Expect(rejoined).To(Equal(before))
		})

		It("restores the population on an immediate round trip", func() {
			before := realMasses(st)

			// The demoted particle's values land on the old tail slot.
			st.DemoteToBuffer(3)
			st.PromoteFromBuffer(st.TotalReal())

			Expect(realMasses(st)).To(Equal(before))
		})

		It("survives a random demote/promote sequence without loss", func() {
			before := realMasses(st)

			st.DemoteToBuffer(0)
			st.DemoteToBuffer(5)
			st.PromoteFromBuffer(st.TotalReal())
			st.PromoteFromBuffer(st.TotalReal())

			Expect(realMasses(st)).To(Equal(before))
		})

		It("panics on a demote outside the real region", func() {
			Expect(func() { st.DemoteToBuffer(st.TotalReal()) }).To(Panic())
		})

		It("panics on promotion without buffer headroom", func() {
			flat := particles.New(0)
			flat.InitializeBounds(3)
			Expect(func() { flat.PromoteFromBuffer(0) }).To(Panic())
		})
	})

	Describe("ghost particles", func() {
		It("allocates ranges behind the real bound", func() {
			start, err := st.AllocateGhosts(50)
			Expect(err).NotTo(HaveOccurred())
			Expect(start).To(Equal(10))
			Expect(st.Bound()).To(Equal(60))
		})

		It("refreshes every ghost from its source", func() {
			start, err := st.AllocateGhosts(50)
			Expect(err).NotTo(HaveOccurred())

			for g := 0; g < 50; g++ {
				st.RefreshGhost(start+g, g%st.TotalReal())
			}

			pos := st.Positions()
			mass := st.Masses()
			for g := 0; g < 50; g++ {
				src := g % st.TotalReal()
				Expect(pos[start+g]).To(Equal(pos[src]))
				Expect(mass[start+g]).To(Equal(mass[src]))
			}
		})

		It("reuses the range wholesale after a reset", func() {
			first, err := st.AllocateGhosts(20)
			Expect(err).NotTo(HaveOccurred())

			st.ResetGhosts()
			Expect(st.Bound()).To(Equal(st.RealBound()))

			second, err := st.AllocateGhosts(30)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})

		It("panics on a refresh outside the ghost region", func() {
			_, err := st.AllocateGhosts(5)
			Expect(err).NotTo(HaveOccurred())
			Expect(func() { st.RefreshGhost(0, 1) }).To(Panic())
		})
	})

	Describe("permutation", func() {
		It("reorders every field in lockstep", func() {
			perm := make([]int, st.TotalReal())
			for i := range perm {
				perm[i] = st.TotalReal() - 1 - i
			}
			before := realMasses(st)

			st.ApplyPermutation(perm)

			Expect(realMasses(st)).To(Equal(before))
			Expect(st.Masses()[0]).To(Equal(10.0))
			Expect(st.Positions()[0].X).To(Equal(9.0))
		})

		It("tracks original ids through the reorder", func() {
			perm := []int{1, 0, 2, 3, 4, 5, 6, 7, 8, 9}
			st.ApplyPermutation(perm)

			Expect(st.OriginalIDs()[0]).To(Equal(1))
			Expect(st.SortedIDs()[1]).To(Equal(0))
			Expect(st.SortedIDs()[0]).To(Equal(1))
		})

		It("rejects a malformed permutation", func() {
			Expect(func() { st.ApplyPermutation([]int{0, 0, 2, 3, 4, 5, 6, 7, 8, 9}) }).To(Panic())
		})
	})

	Describe("export and import", func() {
		It("round-trips the real region by field name", func() {
			data := st.ExportReal()

			restored := particles.New(0)
			Expect(restored.ImportReal(10, data)).To(Succeed())

			Expect(restored.TotalReal()).To(Equal(10))
			Expect(restored.Positions()[:10]).To(Equal(st.Positions()[:10]))
			Expect(restored.Masses()[:10]).To(Equal(st.Masses()[:10]))
		})

		It("rejects data for unregistered fields", func() {
			data := st.ExportReal()
			data["Mystery"] = []float64{1}

			restored := particles.New(0)
			Expect(restored.ImportReal(10, data)).NotTo(Succeed())
		})
	})
})
