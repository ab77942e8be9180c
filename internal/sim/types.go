package sim

import (
	"fmt"

	"github.com/san-kum/tensegrity/internal/energy"
	"github.com/san-kum/tensegrity/internal/physics"
	"github.com/san-kum/tensegrity/internal/vec"
)

// Phase is the driver lifecycle state. Transitions only move forward:
// Initialized -> Running on the first step, Running -> Stopped on
// max-steps, a fatal failure, or cancellation. Stopped is terminal.
type Phase int

const (
	Initialized Phase = iota
	Running
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Config holds the per-run stepping parameters.
type Config struct {
	Dt       float64
	MaxSteps int

	// ValidateState stops the run when a non-finite value appears.
	ValidateState bool

	// DriftTolerance arms the energy watchdog; zero disables it. The
	// watchdog is also ignored for damped structures, where energy
	// decay is physical.
	DriftTolerance float64
	DriftWindow    int

	// Parallel enables within-step parallel force summation.
	Parallel bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.001,
		MaxSteps:      5000,
		ValidateState: true,
		DriftWindow:   10,
	}
}

func (c Config) validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("sim: dt must be positive, got %g", c.Dt)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("sim: max steps must be positive, got %d", c.MaxSteps)
	}
	if c.DriftTolerance < 0 {
		return fmt.Errorf("sim: drift tolerance must not be negative, got %g", c.DriftTolerance)
	}
	return nil
}

// Snapshot is the full per-step state handed to external consumers:
// visualization, storage, analysis. It is a copy; later steps never
// mutate it.
type Snapshot struct {
	Step          int
	Time          float64
	Positions     []vec.Vec3
	Velocities    []vec.Vec3
	Accelerations []vec.Vec3
	Energy        energy.Triple
	Drift         float64
	Overloads     []physics.Overload
}

// Result collects a full run. Errors holds the fatal stop reason, if
// any; per-step overloads stay attached to their snapshots.
type Result struct {
	Snapshots  []Snapshot
	StepsTaken int
	MaxDrift   float64
	Overloads  int
	Errors     []error
}

// Last returns the final (latest valid) snapshot, or nil for an empty
// run.
func (r *Result) Last() *Snapshot {
	if len(r.Snapshots) == 0 {
		return nil
	}
	return &r.Snapshots[len(r.Snapshots)-1]
}
