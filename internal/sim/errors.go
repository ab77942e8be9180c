package sim

import (
	"errors"
	"fmt"
)

// Domain errors for simulation runs.
var (
	// ErrInvalidState indicates a non-finite position or velocity
	// appeared during integration.
	ErrInvalidState = errors.New("sim: non-finite state (NaN or Inf detected)")

	// ErrStopped indicates a run was requested on a driver that has
	// already terminated; build a fresh driver instead.
	ErrStopped = errors.New("sim: driver already stopped")
)

// StepError carries the step context of a fatal in-run failure.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
