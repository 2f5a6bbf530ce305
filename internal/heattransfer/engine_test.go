package heattransfer_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/reactorsim/internal/geometry"
	"github.com/san-kum/reactorsim/internal/heattransfer"
	"github.com/san-kum/reactorsim/internal/thermo"
)

type spyWall struct {
	calls int
	inner heattransfer.WallSolver
}

func (s *spyWall) Solve(p heattransfer.WallProblem) heattransfer.WallSolution {
	s.calls++
	return s.inner.Solve(p)
}

type brokenFluid struct{}

func (brokenFluid) At(T float64) (thermo.Properties, error) {
	return thermo.Properties{}, errors.New("no data")
}

var _ = Describe("Engine", func() {
	var (
		vessel geometry.Vessel
		fluid  heattransfer.FixedFluid
		spy    *spyWall
		engine *heattransfer.Engine
		cond   heattransfer.Conditions
	)

	BeforeEach(func() {
		var err error
		vessel, err = geometry.New(geometry.Laboratory())
		Expect(err).NotTo(HaveOccurred())

		props, err := thermo.NewWater().Properties(315, thermo.Atmospheric)
		Expect(err).NotTo(HaveOccurred())
		fluid = heattransfer.FixedFluid{Props: props}

		spy = &spyWall{inner: heattransfer.NewSecantWall()}
		engine = heattransfer.NewEngine(vessel, heattransfer.DefaultConfig(), fluid, spy)
		cond = heattransfer.Conditions{
			Level:   0.1,
			RPS:     3,
			Polymer: 100,
			Reactor: 330,
			Jacket:  320,
		}
	})

	Context("in forced convection", func() {
		BeforeEach(func() {
			cond.JacketFlow = 1e-4
		})

		It("never invokes the wall solver", func() {
			for _, flow := range []float64{7.36e-5, 1e-4, 5e-4, 1e-3} {
				cond.JacketFlow = flow
				res, err := engine.Evaluate(cond)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Regime).To(BeAssignableToTypeOf(heattransfer.Forced{}))
				Expect(res.Wall).To(BeNil())
				Expect(math.IsNaN(res.WallTemperature)).To(BeTrue())
			}
			Expect(spy.calls).To(Equal(0))
		})

		It("returns finite positive conductances", func() {
			res, err := engine.Evaluate(cond)
			Expect(err).NotTo(HaveOccurred())
			for _, v := range []float64{res.UA, res.ReactorLoss, res.JacketLoss, res.ReactorFilm, res.JacketFilm} {
				Expect(v).To(BeNumerically(">", 0))
				Expect(math.IsInf(v, 0)).To(BeFalse())
			}
		})

		It("scales UA linearly with the forced adjustment", func() {
			base, err := engine.Evaluate(cond)
			Expect(err).NotTo(HaveOccurred())

			cfg := heattransfer.DefaultConfig()
			cfg.Adjustment.Forced *= 2
			doubled, err := heattransfer.NewEngine(vessel, cfg, fluid, spy).Evaluate(cond)
			Expect(err).NotTo(HaveOccurred())
			Expect(doubled.UA).To(BeNumerically("~", 2*base.UA, 1e-12*base.UA))
			Expect(doubled.ReactorLoss).To(Equal(base.ReactorLoss))
			Expect(doubled.JacketLoss).To(Equal(base.JacketLoss))
		})

		It("surfaces property failures", func() {
			_, err := heattransfer.NewEngine(vessel, heattransfer.DefaultConfig(), brokenFluid{}, spy).Evaluate(cond)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("in natural convection", func() {
		BeforeEach(func() {
			cond.JacketFlow = 1e-6
		})

		It("solves for the wall temperature exactly once", func() {
			res, err := engine.Evaluate(cond)
			Expect(err).NotTo(HaveOccurred())
			Expect(spy.calls).To(Equal(1))
			Expect(res.Regime).To(Equal(heattransfer.Regime(heattransfer.Natural{})))
			Expect(res.Wall).NotTo(BeNil())
		})

		It("places the wall between jacket and reactor temperatures", func() {
			res, err := engine.Evaluate(cond)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.WallTemperature).To(BeNumerically(">", cond.Jacket))
			Expect(res.WallTemperature).To(BeNumerically("<", cond.Reactor))
			Expect(res.UA).To(BeNumerically(">", 0))
		})

		It("uses the natural adjustment factor", func() {
			cfg := heattransfer.DefaultConfig()
			cfg.Adjustment.Forced = 1e6
			res, err := heattransfer.NewEngine(vessel, cfg, fluid, spy).Evaluate(cond)
			Expect(err).NotTo(HaveOccurred())

			base, err := engine.Evaluate(cond)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.UA).To(Equal(base.UA))
		})

		It("falls back to the midpoint when the solver fails", func() {
			failing := heattransfer.SecantWall{}
			failing.Method.MaxIter = 1
			failing.Method.Tol = 0

			res, err := heattransfer.NewEngine(vessel, heattransfer.DefaultConfig(), fluid, failing).Evaluate(cond)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Wall.FellBack).To(BeTrue())
			Expect(res.WallTemperature).To(Equal((cond.Reactor + cond.Jacket) / 2))
		})
	})

	It("has the film-temperature fluid source follow the provider", func() {
		film := heattransfer.FilmFluid{Provider: thermo.NewWater(), Pressure: thermo.Atmospheric}
		cold, err := film.At(290)
		Expect(err).NotTo(HaveOccurred())
		warm, err := film.At(340)
		Expect(err).NotTo(HaveOccurred())
		Expect(warm.Viscosity).To(BeNumerically("<", cold.Viscosity))
	})
})
