package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/tensegrity/internal/structure"
	"github.com/san-kum/tensegrity/internal/vec"
)

func TestCanvas_SetAndClear(t *testing.T) {
	c := NewCanvas(4, 2)

	c.Set(0, 0)
	if c.Grid[0][0] == 0x2800 {
		t.Error("pixel not set")
	}

	// Out of bounds is a no-op.
	c.Set(-1, 0)
	c.Set(100, 100)

	c.Clear()
	for _, row := range c.Grid {
		for _, r := range row {
			if r != 0x2800 {
				t.Fatal("clear left pixels behind")
			}
		}
	}
}

func TestCanvas_DrawLine(t *testing.T) {
	c := NewCanvas(10, 10)
	c.DrawLine(0, 0, 19, 39)

	lit := 0
	for _, row := range c.Grid {
		for _, r := range row {
			if r != 0x2800 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("line drew nothing")
	}
}

func TestCanvas_String(t *testing.T) {
	c := NewCanvas(3, 2)
	s := c.String()
	if strings.Count(s, "\n") != 2 {
		t.Errorf("expected 2 rows, got %q", s)
	}
}

func TestCamera_ProjectCenter(t *testing.T) {
	cam := NewCamera()
	x, y, _, visible := cam.Project(vec.Vec3{}, 160, 96)
	if !visible {
		t.Fatal("origin should be visible")
	}
	if x != 80 || y != 48 {
		t.Errorf("origin projected to (%d, %d), want screen center", x, y)
	}
}

func TestCamera_ZoomBounds(t *testing.T) {
	cam := NewCamera()
	for i := 0; i < 100; i++ {
		cam.ZoomIn()
	}
	if cam.Zoom > 10 {
		t.Errorf("zoom exceeded cap: %g", cam.Zoom)
	}
	for i := 0; i < 100; i++ {
		cam.ZoomOut()
	}
	if cam.Zoom < 0.1 {
		t.Errorf("zoom under floor: %g", cam.Zoom)
	}
}

func TestStructureWireframe(t *testing.T) {
	st := structure.PendulumDrop()
	wf := StructureWireframe(st, 1.0)

	// One edge per member plus one marker per node.
	want := len(st.Members) + len(st.Nodes)
	if len(wf.Edges) != want {
		t.Fatalf("expected %d edges, got %d", want, len(wf.Edges))
	}

	// The drop cable starts stretched past its rest length.
	if wf.Edges[0].Style != Solid {
		t.Error("taut member should draw solid")
	}

	// A pair exactly at rest length engages neither side.
	pair := StructureWireframe(structure.SpringPair(1, 100), 1.0)
	if pair.Edges[0].Style != Dashed || pair.Edges[1].Style != Dashed {
		t.Error("members at rest length should draw dashed")
	}
}

func TestRender_DrawsSomething(t *testing.T) {
	st := structure.Prism(1, 1)
	c := NewCanvas(40, 20)
	Render(c, StructureWireframe(st, 0.6), NewCamera())

	lit := 0
	for _, row := range c.Grid {
		for _, r := range row {
			if r != 0x2800 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("render produced an empty canvas")
	}
}
