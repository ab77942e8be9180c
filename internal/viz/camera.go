package viz

import (
	"math"
	"sort"

	"github.com/san-kum/tensegrity/internal/structure"
	"github.com/san-kum/tensegrity/internal/vec"
)

// Camera manages 3D projection to a 2D plane.
type Camera struct {
	Distance         float64
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 50, Near: 0.1, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// RotatePoint rotates a point around the camera's axes.
func (c *Camera) RotatePoint(p vec.Vec3) vec.Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project converts view coordinates to 2D screen coordinates.
// Returns x, y, depth, and visibility.
func (c *Camera) Project(p vec.Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.RotatePoint(p).Scale(c.Zoom)
	if rot.Z >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot.Z)
	minDim := float64(sh)
	if float64(sw) < minDim {
		minDim = float64(sw)
	}
	pScale := minDim / 3.0
	sx := int(rot.X*scale*pScale) + sw/2
	sy := int(-rot.Y*scale*pScale) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type EdgeStyle int

const (
	Solid EdgeStyle = iota
	Dashed
	Marker
)

type Edge struct {
	Start, End vec.Vec3
	Style      EdgeStyle
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe { return &Wireframe{Edges: make([]Edge, 0)} }

func (w *Wireframe) AddEdge(a, b vec.Vec3, style EdgeStyle) {
	w.Edges = append(w.Edges, Edge{a, b, style})
}

func (w *Wireframe) AddPoint(p vec.Vec3) {
	w.Edges = append(w.Edges, Edge{p, p, Marker})
}

func (w *Wireframe) Clear() { w.Edges = w.Edges[:0] }

// toView maps world coordinates (gravity along -Z) to view coordinates
// with height on the screen's vertical axis.
func toView(p vec.Vec3, center vec.Vec3, scale float64) vec.Vec3 {
	d := p.Sub(center).Scale(scale)
	return vec.Vec3{X: d.X, Y: d.Z, Z: d.Y}
}

// StructureWireframe builds a wireframe for the current member geometry.
// Taut members draw solid, slack ones dashed, nodes as markers.
func StructureWireframe(s *structure.Structure, scale float64) *Wireframe {
	center := boundsCenter(s)
	wf := NewWireframe()
	for _, m := range s.Members {
		a := toView(m.A.Position, center, scale)
		b := toView(m.B.Position, center, scale)
		if m.Active() {
			wf.AddEdge(a, b, Solid)
		} else {
			wf.AddEdge(a, b, Dashed)
		}
	}
	for _, n := range s.Nodes {
		wf.AddPoint(toView(n.Position, center, scale))
	}
	return wf
}

func boundsCenter(s *structure.Structure) vec.Vec3 {
	if len(s.Nodes) == 0 {
		return vec.Vec3{}
	}
	min, max := s.Nodes[0].Position, s.Nodes[0].Position
	for _, n := range s.Nodes[1:] {
		min.X = math.Min(min.X, n.Position.X)
		min.Y = math.Min(min.Y, n.Position.Y)
		min.Z = math.Min(min.Z, n.Position.Z)
		max.X = math.Max(max.X, n.Position.X)
		max.Y = math.Max(max.Y, n.Position.Y)
		max.Z = math.Max(max.Z, n.Position.Z)
	}
	return min.Add(max).Scale(0.5)
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
	style          EdgeStyle
}

// Render draws the wireframe to the canvas using a painter's algorithm.
func Render(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.Width*2, c.Height*4
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Style})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		switch {
		case e.style == Marker:
			c.DrawMarker(e.x1, e.y1, 1)
		case e.style == Dashed:
			c.DrawDashed(e.x1, e.y1, e.x2, e.y2)
		default:
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}
