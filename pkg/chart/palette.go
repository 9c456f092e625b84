// Package chart turns a dataset snapshot and a user selection into a
// renderer-agnostic ChartSpec. Everything in here is pure: no I/O, no
// shared mutable state, safe to call from any number of goroutines.
package chart

import (
	"fmt"
	"image/color"

	"github.com/vanderheijden86/trackr/pkg/model"
)

// Band alpha values for the 65% and 95% credible intervals.
const (
	Band65Alpha = 0.12
	Band95Alpha = 0.06
)

// basePalette is CARTOColors Vivid_10.
var basePalette = [...]color.RGBA{
	{0xE5, 0x86, 0x06, 0xff},
	{0x5D, 0x69, 0xB1, 0xff},
	{0x52, 0xBC, 0xA3, 0xff},
	{0x99, 0xC9, 0x45, 0xff},
	{0xCC, 0x61, 0xB0, 0xff},
	{0x24, 0x79, 0x6C, 0xff},
	{0xDA, 0xA5, 0x1B, 0xff},
	{0x2F, 0x8A, 0xC4, 0xff},
	{0x76, 0x4E, 0x9F, 0xff},
	{0xED, 0x64, 0x5A, 0xff},
}

// PaletteSize is the length of the color cycle.
const PaletteSize = len(basePalette)

// Swatch holds the three color variants assigned to one selected entity.
type Swatch struct {
	Base   color.RGBA `json:"-"`
	Opaque string     `json:"opaque"`
	Band65 string     `json:"band_65"`
	Band95 string     `json:"band_95"`
}

// Band returns the fill color for a tier's band.
func (s Swatch) Band(t model.Tier) string {
	switch t {
	case model.Tier95:
		return s.Band95
	default:
		return s.Band65
	}
}

// ColorFor returns the swatch for the entity at position index of the
// selection. The cycle repeats every PaletteSize entries with no upper
// bound on the selection size.
func ColorFor(index int) Swatch {
	i := index % PaletteSize
	if i < 0 {
		i += PaletteSize
	}
	c := basePalette[i]
	return Swatch{
		Base:   c,
		Opaque: hexColor(c),
		Band65: rgbaColor(c, Band65Alpha),
		Band95: rgbaColor(c, Band95Alpha),
	}
}

// Palette returns the swatches for a selection, in selection order.
func Palette(n int) []Swatch {
	out := make([]Swatch, n)
	for i := range out {
		out[i] = ColorFor(i)
	}
	return out
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func rgbaColor(c color.RGBA, alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.R, c.G, c.B, alpha)
}
