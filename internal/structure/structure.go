package structure

import (
	"errors"
	"fmt"

	"github.com/san-kum/tensegrity/internal/vec"
)

// ErrInvalid is wrapped by every validation failure so callers can
// distinguish configuration errors from runtime ones with errors.Is.
var ErrInvalid = errors.New("structure: invalid configuration")

// Structure is the full connectivity graph: nodes, members, and the
// gravity vector acting on it. Members are created through AddCable and
// AddStrut so endpoint wiring and IDs stay consistent.
type Structure struct {
	Nodes   []*Node
	Members []*Member
	Gravity vec.Vec3
}

// StandardGravity is the default gravity vector, -Z at 9.81 m/s^2.
var StandardGravity = vec.Vec3{Z: -9.81}

func New(gravity vec.Vec3) *Structure {
	return &Structure{Gravity: gravity}
}

// AddNode appends a node at pos and returns it. Nodes are identified by
// insertion order.
func (s *Structure) AddNode(pos vec.Vec3, mass float64, fixed bool) *Node {
	n := &Node{ID: len(s.Nodes), Position: pos, Mass: mass, Fixed: fixed}
	s.Nodes = append(s.Nodes, n)
	return n
}

// AddCable connects a and b with a tension-only member. A restLength of
// zero means "as built": the current distance between the endpoints.
func (s *Structure) AddCable(a, b *Node, restLength, stiffness, maxForce float64) *Member {
	return s.addMember(Cable, a, b, restLength, stiffness, maxForce)
}

// AddStrut connects a and b with a compression-only member. A restLength
// of zero means "as built".
func (s *Structure) AddStrut(a, b *Node, restLength, stiffness, maxForce float64) *Member {
	return s.addMember(Strut, a, b, restLength, stiffness, maxForce)
}

func (s *Structure) addMember(kind Kind, a, b *Node, restLength, stiffness, maxForce float64) *Member {
	if restLength == 0 && a != nil && b != nil {
		restLength = b.Position.Sub(a.Position).Norm()
	}
	m := &Member{
		ID:         len(s.Members),
		Kind:       kind,
		A:          a,
		B:          b,
		RestLength: restLength,
		Stiffness:  stiffness,
		MaxForce:   maxForce,
	}
	s.Members = append(s.Members, m)
	return m
}

// FreeNodes returns the nodes the integrator is allowed to move.
func (s *Structure) FreeNodes() []*Node {
	free := make([]*Node, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		if !n.Fixed {
			free = append(free, n)
		}
	}
	return free
}

// Validate checks every invariant the engine relies on. It must pass
// before any stepping begins; a failure here is a configuration error,
// never a runtime one.
func (s *Structure) Validate() error {
	if len(s.Nodes) == 0 {
		return fmt.Errorf("%w: no nodes", ErrInvalid)
	}
	for _, n := range s.Nodes {
		if n == nil {
			return fmt.Errorf("%w: nil node", ErrInvalid)
		}
		if n.Mass <= 0 {
			return fmt.Errorf("%w: node %d: mass must be positive, got %g", ErrInvalid, n.ID, n.Mass)
		}
		if !n.Position.IsValid() || !n.Velocity.IsValid() {
			return fmt.Errorf("%w: node %d: non-finite initial state", ErrInvalid, n.ID)
		}
	}
	for _, m := range s.Members {
		if m.A == nil || m.B == nil {
			return fmt.Errorf("%w: member %d: missing endpoint", ErrInvalid, m.ID)
		}
		if !s.owns(m.A) || !s.owns(m.B) {
			return fmt.Errorf("%w: member %d: references unknown node", ErrInvalid, m.ID)
		}
		if m.A == m.B {
			return fmt.Errorf("%w: member %d: connects node %d to itself", ErrInvalid, m.ID, m.A.ID)
		}
		if m.RestLength <= 0 {
			return fmt.Errorf("%w: member %d: rest length must be positive, got %g", ErrInvalid, m.ID, m.RestLength)
		}
		if m.Stiffness <= 0 {
			return fmt.Errorf("%w: member %d: stiffness must be positive, got %g", ErrInvalid, m.ID, m.Stiffness)
		}
		if m.Damping < 0 {
			return fmt.Errorf("%w: member %d: damping must not be negative, got %g", ErrInvalid, m.ID, m.Damping)
		}
		if m.MaxForce <= 0 {
			return fmt.Errorf("%w: member %d: max force must be positive, got %g", ErrInvalid, m.ID, m.MaxForce)
		}
		if m.B.Position.Sub(m.A.Position).Norm() < Epsilon {
			return fmt.Errorf("%w: member %d: degenerate zero-length geometry", ErrInvalid, m.ID)
		}
	}
	return nil
}

func (s *Structure) owns(n *Node) bool {
	return n.ID >= 0 && n.ID < len(s.Nodes) && s.Nodes[n.ID] == n
}

// Damped reports whether any member dissipates energy. Energy-drift
// watchdogs only make sense on conservative structures.
func (s *Structure) Damped() bool {
	for _, m := range s.Members {
		if m.Damping > 0 {
			return true
		}
	}
	return false
}
