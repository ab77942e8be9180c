package sim

import (
	"context"
	"errors"

	"github.com/san-kum/tensegrity/internal/energy"
	"github.com/san-kum/tensegrity/internal/integrator"
	"github.com/san-kum/tensegrity/internal/physics"
	"github.com/san-kum/tensegrity/internal/structure"
	"github.com/san-kum/tensegrity/internal/vec"
)

// Driver owns the node/member collection and the step loop. It advances
// the structure one Verlet step at a time, audits energy after every
// step, and hands a Snapshot to the consumer. A driver runs once:
// restart means constructing a fresh one from the structure definition.
//
// Drivers are not safe for concurrent use; stepping is strictly
// sequential and no consumer ever observes a snapshot mid-step.
type Driver struct {
	st    *structure.Structure
	asm   *physics.Assembler
	integ integrator.Integrator

	phase Phase
	step  int
	time  float64
}

// New builds a driver for st. A nil integ defaults to velocity Verlet.
func New(st *structure.Structure, integ integrator.Integrator) *Driver {
	if integ == nil {
		integ = integrator.NewVerlet()
	}
	return &Driver{
		st:    st,
		asm:   physics.NewAssembler(),
		integ: integ,
	}
}

func (d *Driver) Phase() Phase                    { return d.phase }
func (d *Driver) Structure() *structure.Structure { return d.st }

// AddExternalForce registers a time-varying force on node id, applied on
// every force assembly. Must be called before the run starts.
func (d *Driver) AddExternalForce(id int, fn physics.ExternalForce) {
	d.asm.AddExternalForce(id, fn)
}

// Run steps the structure cfg.MaxSteps times and collects every
// snapshot. Configuration errors surface before any stepping; a fatal
// in-run failure stops early with the reason in Result.Errors and the
// last valid snapshot retained.
func (d *Driver) Run(ctx context.Context, cfg Config) (*Result, error) {
	result := &Result{Snapshots: make([]Snapshot, 0, cfg.MaxSteps)}
	err := d.Stream(ctx, cfg, func(snap Snapshot) bool {
		result.Snapshots = append(result.Snapshots, snap)
		result.Overloads += len(snap.Overloads)
		if snap.Drift > result.MaxDrift {
			result.MaxDrift = snap.Drift
		}
		return true
	})
	result.StepsTaken = d.step

	// Fatal numeric failures terminate the run but still hand the
	// caller everything observed up to the failure. Anything else
	// (bad config, bad structure, cancellation) propagates as-is.
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		result.Errors = append(result.Errors, err)
		return result, nil
	}
	return result, err
}

// Stream is the lazy entry point: one snapshot per step, delivered in
// order to fn. Returning false from fn stops the run cleanly. Stream
// drives the same loop as Run and is the surface the live view uses.
func (d *Driver) Stream(ctx context.Context, cfg Config, fn func(Snapshot) bool) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if err := d.st.Validate(); err != nil {
		return err
	}
	if d.phase == Stopped {
		return ErrStopped
	}

	d.asm.Parallel = cfg.Parallel

	watchdog := energy.NewWatchdog(cfg.DriftTolerance, cfg.DriftWindow)
	if d.st.Damped() {
		// Damping makes energy decay physical, not numerical.
		watchdog.Tolerance = 0
	}

	if d.phase == Initialized {
		integrator.Prime(d.st, d.asm, d.time)
		watchdog.Check(energy.Energies(d.st))
		d.phase = Running
	}

	defer func() { d.phase = Stopped }()

	for d.step < cfg.MaxSteps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		over := d.integ.Step(d.st, d.asm, d.time, cfg.Dt)
		d.step++
		d.time += cfg.Dt

		if cfg.ValidateState && !d.stateValid() {
			return &StepError{Step: d.step, Time: d.time, Wrapped: ErrInvalidState}
		}

		tr := energy.Energies(d.st)
		drift, err := watchdog.Check(tr)

		snap := d.snapshot(tr, drift, over)
		if err != nil {
			// Report the offending state, then terminate.
			fn(snap)
			return &StepError{Step: d.step, Time: d.time, Wrapped: err}
		}
		if !fn(snap) {
			return nil
		}
	}

	return nil
}

func (d *Driver) snapshot(tr energy.Triple, drift float64, over []physics.Overload) Snapshot {
	n := len(d.st.Nodes)
	snap := Snapshot{
		Step:          d.step,
		Time:          d.time,
		Positions:     make([]vec.Vec3, n),
		Velocities:    make([]vec.Vec3, n),
		Accelerations: make([]vec.Vec3, n),
		Energy:        tr,
		Drift:         drift,
		Overloads:     over,
	}
	for i, node := range d.st.Nodes {
		snap.Positions[i] = node.Position
		snap.Velocities[i] = node.Velocity
		snap.Accelerations[i] = node.Acceleration
	}
	return snap
}

func (d *Driver) stateValid() bool {
	for _, n := range d.st.Nodes {
		if !n.Position.IsValid() || !n.Velocity.IsValid() {
			return false
		}
	}
	return true
}
