package energy_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pairenergy/internal/atoms"
	"github.com/san-kum/pairenergy/internal/compute"
	"github.com/san-kum/pairenergy/internal/energy"
	"github.com/san-kum/pairenergy/internal/geom"
	"github.com/san-kum/pairenergy/internal/potential"
)

const tol = 1e-9

func relClose(want float64) OmegaMatcher {
	return BeNumerically("~", want, tol*math.Max(1, math.Abs(want)))
}

var _ = Describe("Evaluator", func() {
	var (
		ctx  context.Context
		eval *energy.Evaluator
	)

	BeforeEach(func() {
		ctx = context.Background()
		eval = energy.New(energy.WithBackend(compute.NewCPUBackend(4)))
	})

	Describe("two particles across a periodic boundary", func() {
		It("uses the minimum image", func() {
			sys, err := atoms.New([]string{"Ar", "Ar"}, []geom.Vec3{{0, 0, 0}, {0, 0, 9.5}}, geom.Cubic(10), geom.FullPBC)
			Expect(err).NotTo(HaveOccurred())

			want := 4 * (math.Pow(1/0.5, 12) - math.Pow(1/0.5, 6))
			got, err := eval.Interacting(ctx, sys, scalar(), energy.Whole(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(relClose(want))

			total, err := eval.Total(ctx, sys, scalar(), energy.Whole())
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(relClose(want))
		})
	})

	Describe("counts [2,3,1] with frozen [true,false,true]", func() {
		var (
			sys  *atoms.Atoms
			part energy.Partition
			box  geom.Box
		)

		BeforeEach(func() {
			sys = lattice(6, 7)
			part = energy.Partition{Counts: []int{2, 3, 1}, Frozen: []bool{true, false, true}}
			var err error
			box, err = geom.NewBox(sys.Cell(), sys.PBC())
			Expect(err).NotTo(HaveOccurred())
		})

		It("splits the blocks between frozen and interacting", func() {
			views, err := atoms.Split(sys, part.Counts)
			Expect(err).NotTo(HaveOccurred())
			b := compute.NewSerialBackend()
			e := unit.Energy

			wantFrozen := compute.Intra(b, box, views[0], e) + compute.Intra(b, box, views[2], e) +
				compute.Inter(b, box, views[0], views[2], e)
			wantInteracting := compute.Intra(b, box, views[1], e) +
				compute.Inter(b, box, views[0], views[1], e) + compute.Inter(b, box, views[1], views[2], e)

			frozen, err := eval.Frozen(ctx, sys, scalar(), part)
			Expect(err).NotTo(HaveOccurred())
			Expect(frozen).To(relClose(wantFrozen))

			interacting, err := eval.Interacting(ctx, sys, scalar(), part, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(interacting).To(relClose(wantInteracting))

			Expect(frozen + interacting).To(relClose(compute.Intra(b, box, sys, e)))
		})

		It("agrees with Decompose", func() {
			r, err := eval.Decompose(ctx, sys, mixed(3), part, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Components()).To(Equal(3))
			Expect(r.Blocks[2][2]).To(BeZero())
			for i := range r.Blocks {
				for j := range r.Blocks {
					Expect(r.Blocks[i][j]).To(Equal(r.Blocks[j][i]))
				}
			}

			frozen, _ := eval.Frozen(ctx, sys, mixed(3), part)
			interacting, _ := eval.Interacting(ctx, sys, mixed(3), part, nil)
			total, _ := eval.Total(ctx, sys, mixed(3), part)
			Expect(r.FrozenEnergy).To(relClose(frozen))
			Expect(r.InteractingEnergy).To(relClose(interacting))
			Expect(r.TotalEnergy).To(relClose(total))
		})

		It("reports the cell volume and number density", func() {
			r, err := eval.Decompose(ctx, sys, scalar(), part, nil)
			Expect(err).NotTo(HaveOccurred())

			l := sys.Cell()[0][0]
			Expect(r.Volume).To(relClose(l * l * l))
			Expect(r.Density).To(relClose(6 / (l * l * l)))
		})
	})

	DescribeTable("frozen plus interacting equals total",
		func(counts []int, frozen []bool, composite bool) {
			n := 0
			for _, c := range counts {
				n += c
			}
			sys := lattice(n, int64(n))
			part := energy.Partition{Counts: counts, Frozen: frozen}

			var pot potential.Potential = scalar()
			if composite {
				pot = mixed(len(counts))
			}

			c, err := eval.Verify(ctx, sys, pot, part)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Frozen + c.Interacting).To(relClose(c.Total))
			Expect(c.SiteSum / 2).To(relClose(c.Total))
			Expect(c.OK(tol)).To(BeTrue())
		},
		Entry("one free component", []int{27}, []bool{false}, false),
		Entry("one frozen component", []int{27}, []bool{true}, false),
		Entry("all frozen", []int{10, 10, 7}, []bool{true, true, true}, false),
		Entry("mixed scalar", []int{5, 12, 1, 9}, []bool{true, false, true, false}, false),
		Entry("mixed composite", []int{5, 12, 1, 9}, []bool{true, false, true, false}, true),
		Entry("empty component", []int{8, 0, 19}, []bool{false, true, true}, true),
		Entry("many singletons", []int{1, 1, 1, 1, 1, 1, 1, 1}, []bool{true, false, true, false, true, false, true, false}, true),
		Entry("large parallel", []int{150, 250, 100}, []bool{true, false, false}, true),
	)

	It("treats nil counts as one free component", func() {
		sys := lattice(20, 3)
		whole, err := eval.Interacting(ctx, sys, scalar(), energy.Whole(), nil)
		Expect(err).NotTo(HaveOccurred())
		explicit, err := eval.Interacting(ctx, sys, scalar(), energy.Partition{Counts: []int{20}, Frozen: []bool{false}}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(whole).To(Equal(explicit))

		frozen, err := eval.Frozen(ctx, sys, scalar(), energy.Whole())
		Expect(err).NotTo(HaveOccurred())
		Expect(frozen).To(BeZero())
	})

	It("gives the same result on every backend", func() {
		sys := lattice(300, 11)
		part := energy.Partition{Counts: []int{100, 200}, Frozen: []bool{true, false}}

		serial, err := energy.New(energy.WithBackend(compute.NewSerialBackend())).Interacting(ctx, sys, mixed(2), part, nil)
		Expect(err).NotTo(HaveOccurred())
		for _, w := range []int{1, 3, 8} {
			got, err := energy.New(energy.WithBackend(compute.NewCPUBackend(w))).Interacting(ctx, sys, mixed(2), part, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(relClose(serial))
		}
	})

	Describe("single-site energy", func() {
		It("picks composite entries by component", func() {
			sys := lattice(9, 5)
			part := energy.Partition{Counts: []int{4, 5}, Frozen: []bool{false, false}}
			pot := mixed(2)
			box, _ := geom.NewBox(sys.Cell(), sys.PBC())

			// particle 6 sits in component 1
			want := 0.0
			for j := 0; j < sys.Len(); j++ {
				if j == 6 {
					continue
				}
				cj := 0
				if j >= 4 {
					cj = 1
				}
				want += pot.Energy(1, cj, box.Distance(sys.Position(6), sys.Position(j)))
			}

			got, err := eval.SingleSite(ctx, 6, sys, pot, part, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(relClose(want))
		})

		It("rejects an index outside the system", func() {
			sys := lattice(4, 1)
			_, err := eval.SingleSite(ctx, 4, sys, scalar(), energy.Whole(), nil)
			Expect(err).To(MatchError(atoms.ErrIndexOutOfRange))
			_, err = eval.SingleSite(ctx, -1, sys, scalar(), energy.Whole(), nil)
			Expect(err).To(MatchError(atoms.ErrIndexOutOfRange))
		})
	})

	Describe("surface", func() {
		var (
			sys, surf *atoms.Atoms
			box       geom.Box
		)

		BeforeEach(func() {
			sys = lattice(8, 2)
			surf = slab(6, sys.Cell()[0][0])
			box, _ = geom.NewBox(sys.Cell(), sys.PBC())
		})

		It("adds free–surface pairs to the interacting energy", func() {
			b := compute.NewSerialBackend()
			want := compute.Intra(b, box, sys, unit.Energy) + compute.Inter(b, box, sys, surf, unit.Energy)

			got, err := eval.Interacting(ctx, sys, scalar(), energy.Whole(), surf)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(relClose(want))
		})

		It("leaves frozen–surface pairs out of the interacting energy", func() {
			part := energy.Partition{Counts: []int{3, 5}, Frozen: []bool{true, false}}
			views, _ := atoms.Split(sys, part.Counts)
			b := compute.NewSerialBackend()

			without, err := eval.Interacting(ctx, sys, scalar(), part, nil)
			Expect(err).NotTo(HaveOccurred())
			with, err := eval.Interacting(ctx, sys, scalar(), part, surf)
			Expect(err).NotTo(HaveOccurred())
			Expect(with - without).To(relClose(compute.Inter(b, box, views[1], surf, unit.Energy)))
		})

		It("uses the last matrix entry for single sites", func() {
			part := energy.Partition{Counts: []int{3, 5}, Frozen: []bool{true, false}}
			pot := mixed(3)

			got, err := eval.SingleSite(ctx, 1, sys, pot, part, surf)
			Expect(err).NotTo(HaveOccurred())

			want := 0.0
			for j := 0; j < sys.Len(); j++ {
				if j == 1 {
					continue
				}
				cj := 0
				if j >= 3 {
					cj = 1
				}
				want += pot.Energy(0, cj, box.Distance(sys.Position(1), sys.Position(j)))
			}
			for j := 0; j < surf.Len(); j++ {
				want += pot.Energy(0, 2, box.Distance(sys.Position(1), surf.Position(j)))
			}
			Expect(got).To(relClose(want))
		})

		It("adds the whole surface to a scalar single site", func() {
			part := energy.Partition{Counts: []int{3, 5}, Frozen: []bool{true, false}}
			b := compute.NewSerialBackend()

			for _, i := range []int{0, 3, 7} {
				pos := sys.Position(i)
				want := compute.SingleSite(b, box, pos, sys, i, unit.Energy) +
					compute.SingleSite(b, box, pos, surf, -1, unit.Energy)

				got, err := eval.SingleSite(ctx, i, sys, scalar(), part, surf)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(relClose(want), "particle %d", i)
			}
		})

		It("gives Sites entries equal to SingleSite with a surface", func() {
			part := energy.Partition{Counts: []int{3, 5}, Frozen: []bool{true, false}}

			for _, pot := range []potential.Potential{scalar(), mixed(3)} {
				sites, err := eval.Sites(ctx, sys, pot, part, surf)
				Expect(err).NotTo(HaveOccurred())
				Expect(sites).To(HaveLen(sys.Len()))

				for i := range sites {
					one, err := eval.SingleSite(ctx, i, sys, pot, part, surf)
					Expect(err).NotTo(HaveOccurred())
					Expect(sites[i]).To(relClose(one), "%s particle %d", pot.Kind(), i)
				}
			}
		})

		It("treats a nil or empty surface as no surface", func() {
			without, err := eval.Interacting(ctx, sys, scalar(), energy.Whole(), nil)
			Expect(err).NotTo(HaveOccurred())

			var none *atoms.Atoms
			got, err := eval.Interacting(ctx, sys, scalar(), energy.Whole(), none)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(relClose(without))

			empty, err := atoms.New(nil, nil, sys.Cell(), sys.PBC())
			Expect(err).NotTo(HaveOccurred())
			r, err := eval.Decompose(ctx, sys, scalar(), energy.Whole(), empty)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Surface).To(BeFalse())
			Expect(r.Counts).To(Equal([]int{sys.Len()}))
			Expect(r.TotalEnergy).To(relClose(without))
		})

		It("needs one more matrix row for the surface", func() {
			part := energy.Partition{Counts: []int{3, 5}, Frozen: []bool{true, false}}
			_, err := eval.Interacting(ctx, sys, mixed(2), part, surf)
			Expect(err).To(MatchError(energy.ErrConfigMismatch))
		})

		It("reports the surface as the last frozen row", func() {
			part := energy.Partition{Counts: []int{3, 5}, Frozen: []bool{false, false}}
			r, err := eval.Decompose(ctx, sys, mixed(3), part, surf)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Surface).To(BeTrue())
			Expect(r.Counts).To(Equal([]int{3, 5, 6}))
			Expect(r.Frozen).To(Equal([]bool{false, false, true}))
			Expect(r.Blocks[2][2]).To(BeZero())

			interacting, _ := eval.Interacting(ctx, sys, mixed(3), part, surf)
			Expect(r.InteractingEnergy).To(relClose(interacting))
		})
	})

	Describe("validation", func() {
		It("rejects mismatched counts and frozen mask before reading positions", func() {
			sys := &countingSystem{Atoms: lattice(6, 1)}
			part := energy.Partition{Counts: []int{2, 3, 1}, Frozen: []bool{true, false}}

			_, err := eval.Frozen(ctx, sys, scalar(), part)
			Expect(err).To(MatchError(energy.ErrConfigMismatch))

			var mm *energy.MismatchError
			Expect(errors.As(err, &mm)).To(BeTrue())
			Expect(mm.Got).To(Equal(2))
			Expect(mm.Want).To(Equal(3))
			Expect(err.Error()).To(ContainSubstring("frozen mask length"))

			_, err = eval.Interacting(ctx, sys, scalar(), part, nil)
			Expect(err).To(MatchError(energy.ErrConfigMismatch))
			_, err = eval.SingleSite(ctx, 0, sys, scalar(), part, nil)
			Expect(err).To(MatchError(energy.ErrConfigMismatch))

			Expect(sys.reads).To(BeZero())
		})

		It("rejects counts that do not add up to the particle count", func() {
			part := energy.Partition{Counts: []int{2, 2}, Frozen: []bool{true, false}}
			_, err := eval.Total(ctx, lattice(6, 1), scalar(), part)
			Expect(err).To(MatchError(energy.ErrConfigMismatch))
			Expect(err.Error()).To(ContainSubstring("particle count"))
		})

		It("rejects negative counts", func() {
			part := energy.Partition{Counts: []int{-1, 7}, Frozen: []bool{true, false}}
			_, err := eval.Frozen(ctx, lattice(6, 1), scalar(), part)
			Expect(err).To(MatchError(atoms.ErrPartition))
		})

		It("rejects a composite matrix of the wrong dimension", func() {
			part := energy.Partition{Counts: []int{2, 4}, Frozen: []bool{true, false}}
			_, err := eval.Frozen(ctx, lattice(6, 1), mixed(3), part)
			Expect(err).To(MatchError(energy.ErrConfigMismatch))
			Expect(err.Error()).To(ContainSubstring("potential matrix dimension"))
		})

		It("rejects a triclinic cell", func() {
			sys := lattice(4, 1)
			sys.CellVecs[1][0] = 0.5
			_, err := eval.Total(ctx, sys, scalar(), energy.Whole())
			Expect(err).To(MatchError(geom.ErrUnsupportedGeometry))
		})

		It("rejects a missing potential", func() {
			_, err := eval.Total(ctx, lattice(4, 1), nil, energy.Whole())
			Expect(err).To(MatchError(energy.ErrUnknownPotential))

			var none *potential.Scalar
			_, err = eval.Total(ctx, lattice(4, 1), none, energy.Whole())
			Expect(err).To(MatchError(energy.ErrUnknownPotential))
		})

		It("stops on a cancelled context", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := eval.Interacting(cctx, lattice(8, 1), scalar(), energy.Whole(), nil)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Describe("external calculator", func() {
		var (
			calls int
			ext   *potential.External
			log   *recordingLogger
		)

		BeforeEach(func() {
			calls = 0
			var err error
			ext, err = potential.NewExternal(potential.CalculatorFunc(func(_ context.Context, sys atoms.System) (float64, error) {
				calls++
				return -1.5 * float64(sys.Len()), nil
			}))
			Expect(err).NotTo(HaveOccurred())
			log = &recordingLogger{}
			eval = energy.New(energy.WithBackend(compute.NewSerialBackend()), energy.WithLogger(log))
		})

		It("reports zero frozen energy without calling the backend", func() {
			part := energy.Partition{Counts: []int{2, 2}, Frozen: []bool{true, true}}
			v, err := eval.Frozen(ctx, lattice(4, 1), ext, part)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(BeZero())
			Expect(calls).To(BeZero())
			Expect(log.lines).To(ContainElement(ContainSubstring("DEBUG")))
		})

		It("evaluates the whole system once for interacting and total", func() {
			sys := lattice(4, 1)
			part := energy.Partition{Counts: []int{2, 2}, Frozen: []bool{true, false}}

			v, err := eval.Interacting(ctx, sys, ext, part, slab(3, 4))
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(-6.0))
			Expect(calls).To(Equal(1))

			v, err = eval.Total(ctx, sys, ext, part)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(-6.0))
			Expect(calls).To(Equal(2))
		})

		It("approximates single sites with the whole-system energy", func() {
			v, err := eval.SingleSite(ctx, 2, lattice(4, 1), ext, energy.Whole(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(-6.0))
		})

		It("refuses to decompose", func() {
			_, err := eval.Decompose(ctx, lattice(4, 1), ext, energy.Whole(), nil)
			Expect(err).To(MatchError(energy.ErrNotDecomposable))
			_, err = eval.Verify(ctx, lattice(4, 1), ext, energy.Whole())
			Expect(err).To(MatchError(energy.ErrNotDecomposable))
		})

		It("wraps backend failures", func() {
			cause := errors.New("segfault")
			bad, _ := potential.NewExternal(potential.CalculatorFunc(func(context.Context, atoms.System) (float64, error) {
				return 0, cause
			}))

			_, err := eval.Total(ctx, lattice(4, 1), bad, energy.Whole())
			Expect(err).To(MatchError(energy.ErrBackend))
			Expect(errors.Is(err, cause)).To(BeTrue())

			var be *energy.BackendError
			Expect(errors.As(err, &be)).To(BeTrue())
			Expect(be.Particles).To(Equal(4))
		})
	})
})
