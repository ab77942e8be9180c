// Package viz provides terminal-based visualization for tensegrity runs.
//
// The package renders the structure as a rotating 3D wireframe on a
// Braille pixel canvas inside a Bubble Tea TUI:
//
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - [Camera]: rotation, zoom and perspective projection
//   - [Model]: live view stepping the integrator at 60 frames per second
//
// Taut members draw as solid lines, slack ones as dashed lines, and
// nodes as square markers.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Rebuild the structure from scratch
//	X/Y/Z - Rotate the camera (shift reverses)
//	+/-   - Zoom
//	Q     - Quit
package viz
