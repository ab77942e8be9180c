package physics

import (
	"github.com/san-kum/tensegrity/internal/structure"
	"github.com/san-kum/tensegrity/internal/vec"
)

// Overload reports a member whose elastic force magnitude exceeded its
// MaxForce on a step. The force is reported uncapped: clamping would
// hide non-physical input and corrupt the energy accounting.
type Overload struct {
	Member int
	Kind   structure.Kind
	Force  float64
	Limit  float64
}

// ExternalForce is a time-varying nodal force, such as an actuator or a
// test load.
type ExternalForce func(t float64) vec.Vec3

// Assembler computes the net force on every node: gravity on free nodes,
// the one-sided elastic (plus viscous) member forces, and any registered
// external forces. Aside from registered configuration it is a pure
// function of the current node state.
type Assembler struct {
	// Parallel distributes the per-node summation across workers.
	// Accumulation order per node is fixed by the adjacency list, so
	// results are identical to the sequential path.
	Parallel bool

	external map[int]ExternalForce

	incident     [][]incidence
	incidentFor  *structure.Structure
	incidentSize int
}

type incidence struct {
	member *structure.Member
	atB    bool
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// AddExternalForce registers fn as an extra force on node id. A nil fn
// removes the registration.
func (a *Assembler) AddExternalForce(id int, fn ExternalForce) {
	if a.external == nil {
		a.external = make(map[int]ExternalForce)
	}
	if fn == nil {
		delete(a.external, id)
		return
	}
	a.external[id] = fn
}

// Forces returns the net force per node (indexed by node ID) and the
// overload reports raised at the current geometry. Forces on fixed nodes
// are accumulated like any other but carry no meaning for integration;
// the integrator never reads them.
func (a *Assembler) Forces(s *structure.Structure, t float64) ([]vec.Vec3, []Overload) {
	forces := make([]vec.Vec3, len(s.Nodes))

	if a.Parallel {
		a.ensureIncidence(s)
		ParallelFor(len(s.Nodes), minNodesPerWorker, func(start, end int) {
			for i := start; i < end; i++ {
				forces[i] = a.nodeForce(s, s.Nodes[i], t)
			}
		})
	} else {
		for _, n := range s.Nodes {
			if !n.Fixed {
				forces[n.ID] = s.Gravity.Scale(n.Mass)
			}
		}
		for _, m := range s.Members {
			f := axialVector(m)
			forces[m.A.ID] = forces[m.A.ID].Add(f)
			forces[m.B.ID] = forces[m.B.ID].Sub(f)
		}
		for id, fn := range a.external {
			if id >= 0 && id < len(forces) {
				forces[id] = forces[id].Add(fn(t))
			}
		}
	}

	return forces, a.overloads(s)
}

// axialVector returns the force a member exerts on its A endpoint; the B
// endpoint receives the exact negation. Tension pulls the endpoints
// together, compression pushes them apart.
func axialVector(m *structure.Member) vec.Vec3 {
	axial := m.AxialForce()
	if axial == 0 {
		return vec.Vec3{}
	}
	return m.Direction().Scale(axial + m.AxialDamping())
}

func (a *Assembler) nodeForce(s *structure.Structure, n *structure.Node, t float64) vec.Vec3 {
	var f vec.Vec3
	if !n.Fixed {
		f = s.Gravity.Scale(n.Mass)
	}
	for _, inc := range a.incident[n.ID] {
		mv := axialVector(inc.member)
		if inc.atB {
			f = f.Sub(mv)
		} else {
			f = f.Add(mv)
		}
	}
	if fn, ok := a.external[n.ID]; ok {
		f = f.Add(fn(t))
	}
	return f
}

// overloads scans members in ID order so reports are deterministic
// regardless of how the force summation was scheduled.
func (a *Assembler) overloads(s *structure.Structure) []Overload {
	var over []Overload
	for _, m := range s.Members {
		f := m.AxialForce()
		if f < 0 {
			f = -f
		}
		if f > m.MaxForce {
			over = append(over, Overload{Member: m.ID, Kind: m.Kind, Force: f, Limit: m.MaxForce})
		}
	}
	return over
}

func (a *Assembler) ensureIncidence(s *structure.Structure) {
	if a.incidentFor == s && a.incidentSize == len(s.Members) {
		return
	}
	a.incident = make([][]incidence, len(s.Nodes))
	for _, m := range s.Members {
		a.incident[m.A.ID] = append(a.incident[m.A.ID], incidence{member: m})
		a.incident[m.B.ID] = append(a.incident[m.B.ID], incidence{member: m, atB: true})
	}
	a.incidentFor = s
	a.incidentSize = len(s.Members)
}
