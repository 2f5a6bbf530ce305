package reactor_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/forcing"
	"github.com/san-kum/reactorsim/internal/geometry"
	"github.com/san-kum/reactorsim/internal/heattransfer"
	"github.com/san-kum/reactorsim/internal/integrators"
	"github.com/san-kum/reactorsim/internal/kinetics"
	"github.com/san-kum/reactorsim/internal/reactor"
	"github.com/san-kum/reactorsim/internal/thermo"
)

var _ = Describe("Reactor balances", func() {
	var (
		model reactor.Model
		x0    dynamo.State
		cfg   dynamo.Config
	)

	BeforeEach(func() {
		vessel, err := geometry.New(geometry.Laboratory())
		Expect(err).NotTo(HaveOccurred())
		props, err := thermo.NewWater().Properties(300, thermo.Atmospheric)
		Expect(err).NotTo(HaveOccurred())

		in, err := forcing.Constant(0, 2000, forcing.Sample{RPS: 3, T2: 300})
		Expect(err).NotTo(HaveOccurred())

		kin := kinetics.Default()
		kin.PropagationA, kin.PropagationB, kin.Redox, kin.Thermal = 0, 0, 0, 0

		model = reactor.Model{
			Vessel:   vessel,
			Engine:   heattransfer.NewEngine(vessel, heattransfer.DefaultConfig(), heattransfer.FixedFluid{Props: props}, nil),
			Kinetics: kin,
			Params:   reactor.DefaultParams(),
			Jacket: reactor.JacketStreams{
				InletDensity:      props.Density,
				InletHeatCapacity: props.HeatCapacity,
				BulkDensity:       props.Density,
				BulkHeatCapacity:  props.HeatCapacity,
			},
			Inputs: in,
		}

		x0 = reactor.Fields{
			Level:     0.04,
			VAM:       0.8,
			BA:        0.3,
			NaPS:      0.004,
			TBHP:      0.002,
			CRD:       0.003,
			Polymer:   120,
			Particles: 1e18,
			Reactor:   320,
			Jacket:    305,
		}.State()

		cfg = dynamo.DefaultConfig()
		cfg.T1 = 2000
		cfg.Dt = 10
	})

	Context("with no reaction and no flow", func() {
		It("keeps level and every concentration constant", func() {
			diag := reactor.NewDiagnostics()
			sys := reactor.NewAssembler(model, diag, nil)

			res, err := integrators.NewBDF().Solve(context.Background(), sys, x0, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Times).To(HaveLen(200))

			for _, x := range res.States {
				for i := reactor.Level; i <= reactor.Particles; i++ {
					Expect(x[i]).To(BeNumerically("~", x0[i], 1e-9*math.Abs(x0[i])))
				}
			}
			Expect(diag.Evaluations).To(Equal(res.Stats.Evaluations))
			Expect(diag.Natural).To(Equal(diag.Evaluations))
		})

		It("cools the reactor towards the jacket", func() {
			model.Params.Ambient = 305
			sys := reactor.NewAssembler(model, nil, nil)

			res, err := integrators.NewBDF().Solve(context.Background(), sys, x0, cfg)
			Expect(err).NotTo(HaveOccurred())

			last := res.States[len(res.States)-1]
			Expect(last[reactor.ReactorTemp]).To(BeNumerically("<", x0[reactor.ReactorTemp]))
			Expect(last[reactor.ReactorTemp]).To(BeNumerically(">=", 305-1e-6))
		})
	})

	It("keeps runs independent", func() {
		a := reactor.NewAssembler(model, nil, nil)
		b := reactor.NewAssembler(model, nil, nil)

		a.Derive(x0, 0)
		a.Derive(x0, 1)
		b.Derive(x0, 0)

		Expect(a.Diagnostics().Evaluations).To(Equal(2))
		Expect(b.Diagnostics().Evaluations).To(Equal(1))
	})
})
