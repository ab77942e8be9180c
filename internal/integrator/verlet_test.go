package integrator

import (
	"math"
	"testing"

	"github.com/san-kum/tensegrity/internal/physics"
	"github.com/san-kum/tensegrity/internal/structure"
	"github.com/san-kum/tensegrity/internal/vec"
)

func TestVerlet_EquilibriumIsFixedPoint(t *testing.T) {
	// Two nodes exactly at rest length under no gravity: zero net
	// force, so position and velocity must stay constant to the bit.
	s := structure.SpringPair(1.0, 100)
	free := s.Nodes[1]
	p0, v0 := free.Position, free.Velocity

	asm := physics.NewAssembler()
	integ := NewVerlet()
	Prime(s, asm, 0)

	for i := 0; i < 1000; i++ {
		integ.Step(s, asm, float64(i)*0.001, 0.001)
	}

	if free.Position != p0 || free.Velocity != v0 {
		t.Errorf("equilibrium drifted: pos %v vel %v", free.Position, free.Velocity)
	}
}

func TestVerlet_FixedNodesNeverMove(t *testing.T) {
	s := structure.PendulumDrop()
	anchor := s.Nodes[0]
	p0 := anchor.Position

	asm := physics.NewAssembler()
	integ := NewVerlet()
	Prime(s, asm, 0)

	for i := 0; i < 500; i++ {
		integ.Step(s, asm, float64(i)*0.001, 0.001)
	}

	if anchor.Position != p0 {
		t.Errorf("fixed node moved to %v", anchor.Position)
	}
	if !anchor.Velocity.IsZero() || !anchor.Acceleration.IsZero() {
		t.Errorf("fixed node gained kinematics: v=%v a=%v", anchor.Velocity, anchor.Acceleration)
	}
}

func TestVerlet_HarmonicOscillator(t *testing.T) {
	// The cable-strut pair acts as a two-sided spring: x(t) follows
	// x0 + A*cos(w*t) with w = sqrt(k/m).
	const (
		k       = 100.0
		amp     = 0.1
		dt      = 0.0005
		periods = 3
	)
	s := structure.SpringPair(1.0, k)
	free := s.Nodes[1]
	free.Position = vec.Vec3{X: 1.0 + amp}

	asm := physics.NewAssembler()
	integ := NewVerlet()
	Prime(s, asm, 0)

	w := math.Sqrt(k)
	steps := int(periods * 2 * math.Pi / w / dt)
	for i := 0; i < steps; i++ {
		integ.Step(s, asm, float64(i)*dt, dt)
	}

	elapsed := float64(steps) * dt
	want := 1.0 + amp*math.Cos(w*elapsed)
	if math.Abs(free.Position.X-want) > 1e-3 {
		t.Errorf("after %d steps x = %.6f, want %.6f", steps, free.Position.X, want)
	}
}

func TestVerlet_Deterministic(t *testing.T) {
	run := func() vec.Vec3 {
		s := structure.PendulumDrop()
		asm := physics.NewAssembler()
		integ := NewVerlet()
		Prime(s, asm, 0)
		for i := 0; i < 200; i++ {
			integ.Step(s, asm, float64(i)*0.001, 0.001)
		}
		return s.Nodes[1].Position
	}

	if a, b := run(), run(); a != b {
		t.Errorf("identical runs diverged: %v vs %v", a, b)
	}
}

func TestLeapfrog_MatchesVerletTrajectory(t *testing.T) {
	// For velocity-independent forces the two schemes generate the
	// same discrete trajectory.
	step := func(integ Integrator) vec.Vec3 {
		s := structure.PendulumDrop()
		asm := physics.NewAssembler()
		Prime(s, asm, 0)
		for i := 0; i < 300; i++ {
			integ.Step(s, asm, float64(i)*0.0005, 0.0005)
		}
		return s.Nodes[1].Position
	}

	v := step(NewVerlet())
	l := step(NewLeapfrog())
	if v.Sub(l).Norm() > 1e-9 {
		t.Errorf("trajectories diverged: verlet %v leapfrog %v", v, l)
	}
}

func TestVerlet_ReportsOverloads(t *testing.T) {
	s := structure.New(vec.Vec3{})
	a := s.AddNode(vec.Vec3{}, 1.0, true)
	b := s.AddNode(vec.Vec3{X: 1}, 1.0, false)
	s.AddCable(a, b, 0.95, 100, 1.0) // 5 N against a 1 N limit

	asm := physics.NewAssembler()
	integ := NewVerlet()
	Prime(s, asm, 0)

	over := integ.Step(s, asm, 0, 1e-4)
	if len(over) != 1 {
		t.Fatalf("expected overload report, got %v", over)
	}
	if over[0].Force <= over[0].Limit {
		t.Errorf("reported force %g should exceed limit %g", over[0].Force, over[0].Limit)
	}
}

func TestStableDt(t *testing.T) {
	s := structure.PendulumDrop() // m=1, k=2000
	want := 2 * math.Sqrt(1.0/2000.0)
	if got := StableDt(s); math.Abs(got-want) > 1e-12 {
		t.Errorf("StableDt = %g, want %g", got, want)
	}

	empty := structure.New(structure.StandardGravity)
	empty.AddNode(vec.Vec3{}, 1.0, false)
	if got := StableDt(empty); !math.IsInf(got, 1) {
		t.Errorf("memberless structure should have no bound, got %g", got)
	}
}
