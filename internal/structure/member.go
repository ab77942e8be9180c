package structure

import "github.com/san-kum/tensegrity/internal/vec"

// Epsilon guards length and direction computations against degenerate
// (near-coincident) node positions.
const Epsilon = 1e-10

// Kind discriminates the two member variants. There are exactly two:
// cables carry tension only, struts carry compression only.
type Kind int

const (
	Cable Kind = iota
	Strut
)

func (k Kind) String() string {
	switch k {
	case Cable:
		return "cable"
	case Strut:
		return "strut"
	}
	return "unknown"
}

// Member is a one-sided linear-elastic connector between two nodes.
// It references its endpoints but does not own them. Geometry is derived
// from the endpoint positions on every call; members hold no per-step state.
type Member struct {
	ID         int
	Kind       Kind
	A, B       *Node
	RestLength float64 // meters, > 0
	Stiffness  float64 // N/m, > 0
	Damping    float64 // N·s/m, >= 0
	MaxForce   float64 // N, > 0; reporting threshold, not a clamp
}

// Length returns the current distance between the endpoints, floored at
// Epsilon.
func (m *Member) Length() float64 {
	l := m.B.Position.Sub(m.A.Position).Norm()
	if l < Epsilon {
		return Epsilon
	}
	return l
}

// Direction returns the unit vector from A toward B. For degenerate
// geometry it falls back to +X so callers never divide by zero.
func (m *Member) Direction() vec.Vec3 {
	d := m.B.Position.Sub(m.A.Position)
	if d.Norm() < Epsilon {
		return vec.Vec3{X: 1}
	}
	return d.Unit()
}

// Strain is the signed deviation of the current length from the rest
// length: positive when stretched, negative when shortened.
func (m *Member) Strain() float64 {
	return m.Length() - m.RestLength
}

// Active reports whether the member currently resists: a stretched cable
// or a shortened strut. An inactive member exerts no force and stores no
// energy (a slack cable buckles rather than pushes).
func (m *Member) Active() bool {
	switch m.Kind {
	case Cable:
		return m.Strain() > 0
	case Strut:
		return m.Strain() < 0
	}
	return false
}

// AxialForce returns the signed scalar elastic force along the A-B axis,
// positive in tension. One-sided activation is applied: a slack cable or
// an overlong strut returns 0.
func (m *Member) AxialForce() float64 {
	f := m.Stiffness * m.Strain()
	switch m.Kind {
	case Cable:
		if f < 0 {
			return 0
		}
	case Strut:
		if f > 0 {
			return 0
		}
	}
	return f
}

// AxialDamping returns the signed scalar viscous force along the axis,
// opposing relative endpoint motion. The magnitude is clamped to ten
// times the current elastic force so damping alone cannot destabilize
// the step; in particular an inactive member contributes no damping.
func (m *Member) AxialDamping() float64 {
	if m.Damping == 0 {
		return 0
	}
	dir := m.Direction()
	rel := m.B.Velocity.Sub(m.A.Velocity).Dot(dir)
	d := m.Damping * rel

	limit := 10 * m.absAxialForce()
	if d > limit {
		d = limit
	} else if d < -limit {
		d = -limit
	}
	return d
}

func (m *Member) absAxialForce() float64 {
	f := m.AxialForce()
	if f < 0 {
		return -f
	}
	return f
}

// Energy returns the elastic potential energy stored in the member:
// 0.5*k*strain^2 while active, zero otherwise.
func (m *Member) Energy() float64 {
	if !m.Active() {
		return 0
	}
	s := m.Strain()
	return 0.5 * m.Stiffness * s * s
}
