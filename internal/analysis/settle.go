package analysis

import (
	"math"

	"github.com/san-kum/tensegrity/internal/physics"
	"github.com/san-kum/tensegrity/internal/sim"
	"github.com/san-kum/tensegrity/internal/structure"
)

// Report summarizes whether and when a run returned to rest.
type Report struct {
	Settled bool
	Step    int     // first step at which the window criterion held
	Time    float64 // simulation time of that step
	// FinalSpeed is the largest node speed over the last window,
	// settled or not.
	FinalSpeed float64
}

// Settle scans a run for the first window of consecutive snapshots in
// which every node speed stays below vtol. A structure that oscillates
// through zero velocity must not count as settled, hence the window.
func Settle(snaps []sim.Snapshot, window int, vtol float64) Report {
	if window < 1 {
		window = 1
	}
	var report Report
	quiet := 0

	for _, snap := range snaps {
		if maxSpeed(snap) < vtol {
			quiet++
		} else {
			quiet = 0
		}
		if quiet == window && !report.Settled {
			report.Settled = true
			report.Step = snap.Step
			report.Time = snap.Time
		}
	}

	if n := len(snaps); n > 0 {
		tail := n - window
		if tail < 0 {
			tail = 0
		}
		for _, snap := range snaps[tail:] {
			if s := maxSpeed(snap); s > report.FinalSpeed {
				report.FinalSpeed = s
			}
		}
	}
	return report
}

func maxSpeed(snap sim.Snapshot) float64 {
	max := 0.0
	for _, v := range snap.Velocities {
		if s := v.Norm(); s > max {
			max = s
		}
	}
	return max
}

// Equilibrium reports whether every free node's net force magnitude is
// below tol at the current geometry: the discrete sum-of-forces-zero
// condition.
func Equilibrium(s *structure.Structure, asm *physics.Assembler, tol float64) (bool, float64) {
	forces, _ := asm.Forces(s, 0)
	residual := 0.0
	for _, n := range s.Nodes {
		if n.Fixed {
			continue
		}
		if f := forces[n.ID].Norm(); f > residual {
			residual = f
		}
	}
	return residual < tol, residual
}

// StrainDistribution is the per-member stored elastic energy, split by
// kind. Inactive members report zero.
type StrainDistribution struct {
	Cables map[int]float64
	Struts map[int]float64
}

func StrainEnergy(s *structure.Structure) StrainDistribution {
	dist := StrainDistribution{
		Cables: make(map[int]float64),
		Struts: make(map[int]float64),
	}
	for _, m := range s.Members {
		switch m.Kind {
		case structure.Cable:
			dist.Cables[m.ID] = m.Energy()
		case structure.Strut:
			dist.Struts[m.ID] = m.Energy()
		}
	}
	return dist
}

// DominantPeriod estimates the oscillation period of a scalar series by
// averaging the spacing of its upward mean crossings. Returns 0 when
// fewer than two crossings exist.
func DominantPeriod(times, series []float64) float64 {
	if len(series) != len(times) || len(series) < 3 {
		return 0
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))

	var crossings []float64
	for i := 1; i < len(series); i++ {
		a, b := series[i-1]-mean, series[i]-mean
		if a < 0 && b >= 0 {
			// Linear interpolation between samples.
			frac := 0.0
			if b != a {
				frac = -a / (b - a)
			}
			crossings = append(crossings, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	if len(crossings) < 2 {
		return 0
	}

	total := crossings[len(crossings)-1] - crossings[0]
	period := total / float64(len(crossings)-1)
	if math.IsNaN(period) || period <= 0 {
		return 0
	}
	return period
}
