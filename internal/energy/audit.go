package energy

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/tensegrity/internal/structure"
)

// ErrDrift reports that total-energy drift crossed the watchdog
// threshold, the symptom of a timestep too large for the structure.
var ErrDrift = errors.New("energy: drift exceeds tolerance")

// Triple is the energy decomposition of one system state.
type Triple struct {
	Kinetic       float64
	Gravitational float64
	Elastic       float64
}

func (t Triple) Total() float64 {
	return t.Kinetic + t.Gravitational + t.Elastic
}

// Energies computes the energy triple of the current state.
//
// Kinetic and gravitational terms sum over free nodes only; anchors
// neither move nor trade energy. Gravitational potential is m*g*h with
// h the position component along -gravity, measured from the coordinate
// origin. The reference is therefore fixed for a run; only differences
// are meaningful. Elastic potential sums over active members only: a
// slack cable or an overlong strut stores nothing.
func Energies(s *structure.Structure) Triple {
	var tr Triple

	g := s.Gravity.Norm()
	var up = s.Gravity.Scale(-1)
	if g > 0 {
		up = up.Scale(1 / g)
	}

	for _, n := range s.Nodes {
		if n.Fixed {
			continue
		}
		tr.Kinetic += 0.5 * n.Mass * n.Velocity.NormSq()
		if g > 0 {
			tr.Gravitational += n.Mass * g * n.Position.Dot(up)
		}
	}

	for _, m := range s.Members {
		tr.Elastic += m.Energy()
	}

	return tr
}

// Auditor tracks total-energy drift across a run relative to the first
// observed state. Drift is diagnostic only; it never feeds back into
// integration.
type Auditor struct {
	initial     float64
	initialized bool
	maxDrift    float64
	samples     int
}

// Observe records one energy triple and returns the relative drift
// |E - E0| / max(|E0|, 1) of this sample. The first observation defines
// E0 and reports zero drift.
func (a *Auditor) Observe(tr Triple) float64 {
	e := tr.Total()
	if !a.initialized {
		a.initial = e
		a.initialized = true
	}
	a.samples++

	drift := relativeDrift(e, a.initial)
	if drift > a.maxDrift {
		a.maxDrift = drift
	}
	return drift
}

func (a *Auditor) Initial() float64  { return a.initial }
func (a *Auditor) MaxDrift() float64 { return a.maxDrift }
func (a *Auditor) Samples() int      { return a.samples }

func (a *Auditor) Reset() {
	*a = Auditor{}
}

// relativeDrift normalizes by |E0| but falls back to an absolute scale
// when the initial energy is near zero, where a relative measure blows
// up on harmless rounding.
func relativeDrift(e, e0 float64) float64 {
	denom := math.Abs(e0)
	if denom < 1 {
		denom = 1
	}
	return math.Abs(e-e0) / denom
}

// Watchdog trips when drift stays above Tolerance once Window samples
// have been seen. The warm-up window keeps transient start-of-run
// accounting (a perturbation kick, cable engagement) from tripping it.
type Watchdog struct {
	Tolerance float64
	Window    int

	auditor Auditor
}

func NewWatchdog(tolerance float64, window int) *Watchdog {
	return &Watchdog{Tolerance: tolerance, Window: window}
}

// Check observes one sample and returns that sample's relative drift,
// plus an error wrapping ErrDrift when the watchdog trips. A zero
// tolerance disables tripping but drift is still tracked.
func (w *Watchdog) Check(tr Triple) (float64, error) {
	drift := w.auditor.Observe(tr)
	if w.Tolerance <= 0 {
		return drift, nil
	}
	if w.auditor.Samples() <= w.Window {
		return drift, nil
	}
	if drift > w.Tolerance {
		return drift, fmt.Errorf("%w: relative drift %.3g after %d samples (tolerance %.3g)",
			ErrDrift, drift, w.auditor.Samples(), w.Tolerance)
	}
	return drift, nil
}

func (w *Watchdog) MaxDrift() float64 { return w.auditor.MaxDrift() }
