package tomato

import (
	"testing"

	"github.com/mtovar/labsim/internal/rng"
)

func TestStageOrderMonotonic(t *testing.T) {
	prev := Seed
	for gdd := 0.0; gdd <= 2000; gdd += 5 {
		s := StageFromGDD(gdd, true)
		if s < prev {
			t.Fatalf("stage regressed from %s to %s at gdd=%.0f", prev, s, gdd)
		}
		prev = s
	}
	if prev != Ripening {
		t.Errorf("expected to reach ripening by 2000 GDD, got %s", prev)
	}
}

func TestUngerminatedStaysSeed(t *testing.T) {
	if s := StageFromGDD(5000, false); s != Seed {
		t.Errorf("ungerminated plant must stay at seed, got %s", s)
	}
}

func TestDayCountAndHeight(t *testing.T) {
	p := DefaultParams()
	p.Days = 150

	days, err := Simulate(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != p.Days {
		t.Fatalf("expected %d day states, got %d", p.Days, len(days))
	}

	for i := 1; i < len(days); i++ {
		if days[i].HeightCm < days[i-1].HeightCm {
			t.Fatalf("height decreased on day %d: %.2f -> %.2f",
				days[i].Day, days[i-1].HeightCm, days[i].HeightCm)
		}
		if days[i].GDD < days[i-1].GDD {
			t.Fatalf("cumulative GDD decreased on day %d", days[i].Day)
		}
	}

	last := days[len(days)-1]
	if last.HeightCm <= 0 || last.HeightCm > maxHeightCm {
		t.Errorf("final height %.2f outside (0, %.0f]", last.HeightCm, maxHeightCm)
	}
	if last.Stage != Ripening {
		t.Errorf("expected ripening after 150 warm days, got %s", last.Stage)
	}
}

func TestFruitBounds(t *testing.T) {
	p := DefaultParams()
	p.Days = 200
	p.PestPressure = 0.8

	days, err := Simulate(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range days {
		if d.Fruits < 0 || d.Fruits > fruitCap {
			t.Fatalf("day %d fruit count %.2f outside [0, %.0f]", d.Day, d.Fruits, fruitCap)
		}
	}
}

// The worksheet applies pest attrition on the same day as fruit-set
// accrual without reconciling the two. The net count can therefore dip
// day over day in late stages; only the hard bounds are guaranteed.
func TestFruitAttritionQuirk(t *testing.T) {
	p := DefaultParams()
	p.Days = 200
	p.PestPressure = 1.0

	days, err := Simulate(p, nil)
	if err != nil {
		t.Fatal(err)
	}

	dipped := false
	for i := 1; i < len(days); i++ {
		if days[i].Fruits < days[i-1].Fruits {
			dipped = true
			break
		}
	}
	if !dipped {
		t.Log("no day-over-day fruit dip observed; attrition fully offset by accrual")
	}
}

func TestColdRunNeverGerminates(t *testing.T) {
	p := DefaultParams()
	p.AvgTempC = 4
	p.Days = 90

	days, err := Simulate(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	last := days[len(days)-1]
	if last.Stage != Seed {
		t.Errorf("expected seed stage at 4C, got %s", last.Stage)
	}
	if last.GDD != 0 {
		t.Errorf("expected zero GDD below base temperature, got %.2f", last.GDD)
	}
	if last.HeightCm != 0 {
		t.Errorf("expected zero height without germination, got %.2f", last.HeightCm)
	}
}

func TestJitterDeterminism(t *testing.T) {
	p := DefaultParams()
	p.TempJitterC = 2
	p.Days = 60

	a, err := Simulate(p, rng.New(7))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Simulate(p, rng.New(7))
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("day %d differs between identically seeded runs", a[i].Day)
		}
	}

	if _, err := Simulate(p, nil); err == nil {
		t.Error("expected error when jitter is enabled without a source")
	}
}

func TestValidation(t *testing.T) {
	cases := []func(*Params){
		func(p *Params) { p.Days = 0 },
		func(p *Params) { p.SoilMoisturePct = 120 },
		func(p *Params) { p.SunlightHours = 25 },
		func(p *Params) { p.NutrientIndex = -0.2 },
		func(p *Params) { p.PestPressure = 1.5 },
		func(p *Params) { p.AvgTempC = 60 },
	}
	for i, mutate := range cases {
		p := DefaultParams()
		mutate(&p)
		if _, err := Simulate(p, nil); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}
