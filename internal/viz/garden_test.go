package viz

import (
	"strings"
	"testing"

	"github.com/mtovar/labsim/internal/tomato"
)

func TestGardenViewRendersSeasonEnd(t *testing.T) {
	g, err := newGardenView(tomato.DefaultParams(), 42)
	if err != nil {
		t.Fatal(err)
	}
	g.cursor = len(g.days) - 1
	out := g.View()

	// a wrong fmt verb leaves a %!x(type=value) marker in the output
	if strings.Contains(out, "%!") {
		t.Fatalf("view contains a formatting error:\n%s", out)
	}
	for _, label := range []string{"Day", "Stage", "Height", "Leaves", "Fruits", "Health"} {
		if !strings.Contains(out, label) {
			t.Errorf("view missing %q stat line", label)
		}
	}
	if !strings.Contains(out, "SEASON END") {
		t.Error("view should flag the last day as season end")
	}
}

func TestPlantFitsRowBudget(t *testing.T) {
	last := tomato.DayState{Day: 90, Stage: tomato.Ripening, HeightCm: 400, Leaves: 40, Fruits: 6}
	out := plant(last, 18)
	// maxRows stem/padding lines plus the soil line
	if n := strings.Count(out, "\n"); n != 18 {
		t.Errorf("plant rendered %d newlines, want 18", n)
	}
}
