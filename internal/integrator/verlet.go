package integrator

import (
	"github.com/san-kum/tensegrity/internal/physics"
	"github.com/san-kum/tensegrity/internal/structure"
	"github.com/san-kum/tensegrity/internal/vec"
)

// Assembler is the force callback an integrator drives. t is the time at
// which the forces are evaluated.
type Assembler interface {
	Forces(s *structure.Structure, t float64) ([]vec.Vec3, []physics.Overload)
}

// Integrator advances node kinematics in place by one step of size dt,
// starting at time t. Node accelerations must hold the forces of the
// current positions on entry (see Prime). Fixed nodes are never touched.
// Returned overloads are the ones raised at the end-of-step geometry.
type Integrator interface {
	Step(s *structure.Structure, asm Assembler, t, dt float64) []physics.Overload
}

// Prime seeds node accelerations from the current positions. Call once
// before the first Step; both integrators assume accelerations are
// consistent with positions.
func Prime(s *structure.Structure, asm Assembler, t float64) []physics.Overload {
	forces, over := asm.Forces(s, t)
	for _, n := range s.Nodes {
		if !n.Fixed {
			n.Acceleration = forces[n.ID].Scale(1 / n.Mass)
		}
	}
	return over
}

// Verlet is the velocity Verlet scheme: symplectic, second order, with
// the long-term energy behavior that makes drift a meaningful
// diagnostic. Given identical state and dt it is bit-for-bit
// deterministic.
type Verlet struct{}

func NewVerlet() *Verlet { return &Verlet{} }

func (v *Verlet) Step(s *structure.Structure, asm Assembler, t, dt float64) []physics.Overload {
	// Position update uses the acceleration stored from the previous
	// step; the order of the four stages is load-bearing.
	for _, n := range s.Nodes {
		if n.Fixed {
			continue
		}
		n.Position = n.Position.
			Add(n.Velocity.Scale(dt)).
			Add(n.Acceleration.Scale(0.5 * dt * dt))
	}

	forces, over := asm.Forces(s, t+dt)

	halfDt := 0.5 * dt
	for _, n := range s.Nodes {
		if n.Fixed {
			continue
		}
		aNew := forces[n.ID].Scale(1 / n.Mass)
		n.Velocity = n.Velocity.Add(n.Acceleration.Add(aNew).Scale(halfDt))
		n.Acceleration = aNew
	}

	return over
}

// Leapfrog is the kick-drift-kick variant. It produces the same
// trajectory as Verlet for velocity-independent forces and is kept as a
// cross-check integrator.
type Leapfrog struct{}

func NewLeapfrog() *Leapfrog { return &Leapfrog{} }

func (l *Leapfrog) Step(s *structure.Structure, asm Assembler, t, dt float64) []physics.Overload {
	halfDt := 0.5 * dt

	for _, n := range s.Nodes {
		if n.Fixed {
			continue
		}
		n.Velocity = n.Velocity.Add(n.Acceleration.Scale(halfDt))
		n.Position = n.Position.Add(n.Velocity.Scale(dt))
	}

	forces, over := asm.Forces(s, t+dt)

	for _, n := range s.Nodes {
		if n.Fixed {
			continue
		}
		n.Acceleration = forces[n.ID].Scale(1 / n.Mass)
		n.Velocity = n.Velocity.Add(n.Acceleration.Scale(halfDt))
	}

	return over
}
