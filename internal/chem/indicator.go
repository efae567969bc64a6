// Package chem computes acid-base indicator colors from pH.
//
// Two indicator families are supported: a two-state litmus model blended
// with a Henderson-Hasselbalch logistic between its acid and base colors,
// and a universal indicator interpolated over a fixed pH-to-color anchor
// table.
package chem

import (
	"errors"
	"fmt"
)

// Indicator selects the color model. It is a closed enum; every switch
// over it must handle all values and reject anything else.
type Indicator int

const (
	Litmus Indicator = iota
	Universal
)

var ErrUnknownIndicator = errors.New("chem: unknown indicator")

func (ind Indicator) String() string {
	switch ind {
	case Litmus:
		return "litmus"
	case Universal:
		return "universal"
	default:
		return fmt.Sprintf("Indicator(%d)", int(ind))
	}
}

// ParseIndicator maps the CLI/config spelling to the enum.
func ParseIndicator(s string) (Indicator, error) {
	switch s {
	case "litmus":
		return Litmus, nil
	case "universal":
		return Universal, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownIndicator, s)
	}
}

// RGB is a color with integer channels in [0, 255].
type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// litmusPKa places the 50/50 acid/base blend at neutral pH.
const litmusPKa = 7.0

var (
	litmusAcid = RGB{R: 228, G: 54, B: 56}  // protonated form, red
	litmusBase = RGB{R: 64, G: 72, B: 204}  // deprotonated form, blue
)

// anchor is one fixed point of the universal indicator chart.
type anchor struct {
	ph    float64
	color RGB
}

// universalTable is ordered by pH; lookups clamp to the endpoints.
var universalTable = []anchor{
	{0, RGB{196, 2, 51}},
	{2, RGB{232, 82, 44}},
	{4, RGB{255, 158, 23}},
	{6, RGB{243, 224, 0}},
	{7, RGB{76, 187, 23}},
	{8, RGB{0, 152, 136}},
	{10, RGB{0, 90, 158}},
	{12, RGB{63, 38, 131}},
	{14, RGB{46, 8, 84}},
}
