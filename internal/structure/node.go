package structure

import "github.com/san-kum/tensegrity/internal/vec"

// Node is a point mass. Fixed nodes act as anchors: the integrator never
// moves them and their velocity and acceleration stay zero.
type Node struct {
	ID           int
	Position     vec.Vec3
	Velocity     vec.Vec3
	Acceleration vec.Vec3
	Mass         float64
	Fixed        bool
}
