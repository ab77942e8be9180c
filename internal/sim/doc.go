// Package sim drives tensegrity simulation runs.
//
// [Driver] owns the step loop: velocity Verlet integration via
// [integrator], force assembly via [physics], and per-step energy
// auditing via [energy]. Each step yields one [Snapshot]; [Driver.Run]
// collects them into a [Result] while [Driver.Stream] hands them to a
// callback one at a time.
//
// # Lifecycle
//
// A driver moves Initialized -> Running -> Stopped and never back;
// restarting means building a new driver from the structure definition.
// Configuration errors (an invalid structure or config) surface before
// any stepping. During a run only two conditions are fatal: a non-finite
// position or velocity, and the energy watchdog tripping. Both stop the
// run with a [StepError] while retaining everything observed so far;
// member overloads are reported in snapshots and never interrupt
// stepping.
package sim
