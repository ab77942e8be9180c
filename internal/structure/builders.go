package structure

import "github.com/san-kum/tensegrity/internal/vec"

// Canonical example structures. Each builder returns a fully wired
// Structure ready for Validate and stepping.

const (
	prismStrutStiffness = 50.0
	prismCableStiffness = 25.0
	prismStrutMaxForce  = 1000.0
	prismCableMaxForce  = 500.0
	prismDamping        = 2.0

	// Cable rest lengths are shortened slightly below the as-built
	// distance so the prism starts under pre-tension.
	prismTensionFactor = 0.99
)

// Prism builds the classic three-strut tensegrity prism: a fixed bottom
// triangle, a light free top triangle rotated against it, three struts
// and nine cables.
func Prism(height, radius float64) *Structure {
	s := New(StandardGravity)

	top1 := s.AddNode(vec.Vec3{X: radius, Z: height}, 0.01, false)
	top2 := s.AddNode(vec.Vec3{X: -radius / 2, Y: radius * 0.866, Z: height}, 0.01, false)
	top3 := s.AddNode(vec.Vec3{X: -radius / 2, Y: -radius * 0.866, Z: height}, 0.01, false)

	bot1 := s.AddNode(vec.Vec3{X: radius * 0.866, Y: radius / 2}, 1.0, true)
	bot2 := s.AddNode(vec.Vec3{X: -radius}, 1.0, true)
	bot3 := s.AddNode(vec.Vec3{X: radius * 0.134, Y: -radius * 0.5}, 1.0, true)

	for _, pair := range [][2]*Node{{top1, bot2}, {top2, bot3}, {top3, bot1}} {
		m := s.AddStrut(pair[0], pair[1], 0, prismStrutStiffness, prismStrutMaxForce)
		m.Damping = prismDamping
	}

	cables := [][2]*Node{
		{top1, top2}, {top2, top3}, {top3, top1},
		{bot1, bot2}, {bot2, bot3}, {bot3, bot1},
		{top1, bot1}, {top2, bot2}, {top3, bot3},
	}
	for _, pair := range cables {
		rest := pair[1].Position.Sub(pair[0].Position).Norm() * prismTensionFactor
		m := s.AddCable(pair[0], pair[1], rest, prismCableStiffness, prismCableMaxForce)
		m.Damping = prismDamping
	}

	return s
}

// PendulumDrop builds a single mass hanging from a fixed anchor by a
// cable pre-stretched to twice its rest length. Released under gravity
// it oscillates about the static equilibrium stretch mg/k.
func PendulumDrop() *Structure {
	s := New(StandardGravity)
	anchor := s.AddNode(vec.Vec3{}, 1.0, true)
	mass := s.AddNode(vec.Vec3{Z: -1}, 1.0, false)
	s.AddCable(anchor, mass, 0.5, 2000, 1500)
	return s
}

// SpringPair builds two free masses joined by a cable-strut pair sharing
// endpoints, rest length, and stiffness. The pair acts as a two-sided
// linear spring, useful for oscillator and round-trip checks. Gravity is
// off.
func SpringPair(separation, stiffness float64) *Structure {
	s := New(vec.Vec3{})
	a := s.AddNode(vec.Vec3{}, 1.0, true)
	b := s.AddNode(vec.Vec3{X: separation}, 1.0, false)
	s.AddCable(a, b, separation, stiffness, 1e6)
	s.AddStrut(a, b, separation, stiffness, 1e6)
	return s
}

// Perturb adds a velocity kick to every free node, the usual way to
// knock a structure out of equilibrium before a run.
func Perturb(s *Structure, kick vec.Vec3) {
	for _, n := range s.Nodes {
		if !n.Fixed {
			n.Velocity = n.Velocity.Add(kick)
		}
	}
}
