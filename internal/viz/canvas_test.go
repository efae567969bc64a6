package viz

import (
	"strings"
	"testing"
)

func TestCanvasDimensions(t *testing.T) {
	c := NewCanvas(10, 5)
	if c.DotWidth() != 20 || c.DotHeight() != 20 {
		t.Errorf("unexpected dot dimensions %dx%d", c.DotWidth(), c.DotHeight())
	}
	lines := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Errorf("expected 5 rows, got %d", len(lines))
	}
}

func TestCanvasDotAndClear(t *testing.T) {
	c := NewCanvas(4, 4)
	empty := c.String()

	c.Dot(0, 0)
	if c.String() == empty {
		t.Error("setting a dot should change the render")
	}

	c.Clear()
	if c.String() != empty {
		t.Error("clear should restore the empty render")
	}
}

func TestCanvasIgnoresOutOfRange(t *testing.T) {
	c := NewCanvas(2, 2)
	empty := c.String()

	c.Dot(-1, 0)
	c.Dot(0, -3)
	c.Dot(100, 100)
	if c.String() != empty {
		t.Error("out-of-range dots should be ignored")
	}
}

func TestCanvasLineEndpoints(t *testing.T) {
	c := NewCanvas(8, 8)
	c.Line(0, 0, 15, 31)
	got := c.String()

	// Endpoints are already lit, so re-setting them must not change
	// the render.
	c.Dot(0, 0)
	c.Dot(15, 31)
	if c.String() != got {
		t.Error("line should include both endpoints")
	}

	c2 := NewCanvas(8, 8)
	c2.Line(0, 0, 15, 31)
	if c2.String() != got {
		t.Error("line drawing should be deterministic")
	}
}
