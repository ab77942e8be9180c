// Package structure defines the tensegrity data model: point-mass nodes
// and one-sided elastic members (cables and struts) joined into a fixed
// connectivity graph.
//
// The two member kinds share one field set and are discriminated by
// [Kind] rather than by subtyping; [Member.Active] and
// [Member.AxialForce] dispatch on it. Cables resist only stretch, struts
// only shortening, and an inactive member exerts no force and stores no
// energy.
//
// [Structure.Validate] checks every invariant the physics engine assumes
// (positive masses, stiffnesses, rest lengths and force limits, distinct
// known endpoints, non-degenerate geometry) and must pass before
// stepping begins.
package structure
