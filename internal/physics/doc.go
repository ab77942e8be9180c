// Package physics assembles nodal forces for a tensegrity structure.
//
// [Assembler.Forces] produces, for the current node state, the net force
// on every node: gravity on free nodes, the one-sided elastic and
// viscous member forces, and registered external forces. Member forces
// are applied equal and opposite to both endpoints, so the summed member
// contribution over the whole structure is zero (Newton's third law);
// static equilibrium is exactly the state where each free node's total
// vanishes.
//
// A member whose elastic force exceeds its MaxForce raises an [Overload]
// report. The force is still applied and reported uncapped: the model
// has no rupture behavior, so exceeding the limit is a diagnostic for
// the caller, never a silent clamp.
package physics
