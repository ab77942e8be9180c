package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tensegrity/internal/analysis"
	"github.com/san-kum/tensegrity/internal/sim"
	"github.com/san-kum/tensegrity/internal/structure"
	"github.com/san-kum/tensegrity/internal/vec"
)

var _ = Describe("pendulum drop", func() {
	// One free mass released a full rest length below its anchor:
	// m=1 kg, k=2000 N/m, dt=0.001 s, 2000 steps under gravity.
	var result *sim.Result

	BeforeEach(func() {
		st := structure.PendulumDrop()
		cfg := sim.DefaultConfig()
		cfg.Dt = 0.001
		cfg.MaxSteps = 2000

		var err error
		result, err = sim.New(st, nil).Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Errors).To(BeEmpty())
	})

	It("keeps energy drift under one percent", func() {
		Expect(result.MaxDrift).To(BeNumerically("<", 0.01))
	})

	It("oscillates about a new equilibrium below the anchor", func() {
		lengths := cableLengths(result)

		var slack, taut int
		for _, l := range lengths {
			if l < 0.5 {
				slack++
			} else {
				taut++
			}
		}
		// The cable disengages and re-engages as the mass swings.
		Expect(slack).To(BeNumerically(">", 0))
		Expect(taut).To(BeNumerically(">", 0))

		// The elastic energy budget bounds the stretch: the length
		// never exceeds roughly its initial 1.0 m.
		for _, l := range lengths {
			Expect(l).To(BeNumerically("<", 1.05))
		}
	})
})

var _ = Describe("undamped spring pair", func() {
	It("conserves energy over many periods", func() {
		st := structure.SpringPair(1.0, 100)
		st.Nodes[1].Position = vec.Vec3{X: 1.2}

		cfg := sim.DefaultConfig()
		cfg.Dt = 0.0005
		cfg.MaxSteps = 10000

		result, err := sim.New(st, nil).Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Errors).To(BeEmpty())
		Expect(result.MaxDrift).To(BeNumerically("<", 1e-3))
	})
})

var _ = Describe("damped prism", func() {
	// The three-strut prism with viscous member damping, nudged off
	// equilibrium, must return to rest: the claim a tensegrity
	// structure makes.
	var result *sim.Result

	BeforeEach(func() {
		st := structure.Prism(1.0, 1.0)
		structure.Perturb(st, vec.Vec3{X: 1e-4, Y: 1e-4})

		cfg := sim.DefaultConfig()
		cfg.Dt = 0.001
		cfg.MaxSteps = 5000

		var err error
		result, err = sim.New(st, nil).Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Errors).To(BeEmpty())
	})

	It("settles to static equilibrium", func() {
		report := analysis.Settle(result.Snapshots, 200, 1e-4)
		Expect(report.Settled).To(BeTrue())
		Expect(report.Time).To(BeNumerically("<", 5.0))
	})

	It("dissipates kinetic energy", func() {
		last := result.Last()
		Expect(last.Energy.Kinetic).To(BeNumerically("<", 1e-8))
	})

	It("never overloads a member", func() {
		Expect(result.Overloads).To(BeZero())
	})
})

func cableLengths(result *sim.Result) []float64 {
	lengths := make([]float64, len(result.Snapshots))
	for i, snap := range result.Snapshots {
		d := snap.Positions[1].Sub(snap.Positions[0])
		lengths[i] = math.Sqrt(d.Dot(d))
	}
	return lengths
}
