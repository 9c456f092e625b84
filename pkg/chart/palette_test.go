package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/trackr/pkg/model"
)

func TestColorForFirstHue(t *testing.T) {
	sw := ColorFor(0)
	assert.Equal(t, "#E58606", sw.Opaque)
	assert.Equal(t, "rgba(229, 134, 6, 0.12)", sw.Band65)
	assert.Equal(t, "rgba(229, 134, 6, 0.06)", sw.Band95)
	assert.Equal(t, sw.Band65, sw.Band(model.Tier65))
	assert.Equal(t, sw.Band95, sw.Band(model.Tier95))
}

func TestColorForDistinctWithinCycle(t *testing.T) {
	seen := make(map[string]int)
	for i := 0; i < PaletteSize; i++ {
		c := ColorFor(i).Opaque
		if prev, ok := seen[c]; ok {
			t.Fatalf("index %d repeats color of index %d", i, prev)
		}
		seen[c] = i
	}
}

func TestColorForWrapsBeyondFifty(t *testing.T) {
	assert.Equal(t, ColorFor(7), ColorFor(57))
	assert.Equal(t, ColorFor(3), ColorFor(1003))
	assert.Equal(t, ColorFor(9), ColorFor(-1))
}

func TestColorForCyclic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		i := rapid.IntRange(0, 10_000).Draw(t, "index")
		if ColorFor(i) != ColorFor(i+PaletteSize) {
			t.Fatalf("ColorFor(%d) != ColorFor(%d)", i, i+PaletteSize)
		}
	})
}

func TestPalette(t *testing.T) {
	p := Palette(12)
	assert.Len(t, p, 12)
	assert.Equal(t, p[0], p[10])
	assert.NotEqual(t, p[0], p[1])
}
