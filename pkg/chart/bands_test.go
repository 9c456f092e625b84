package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/trackr/pkg/model"
	"github.com/vanderheijden86/trackr/pkg/testutil"
)

func worldSeries(t *testing.T) model.Series {
	t.Helper()
	ds := testutil.NewDefault().Dataset()
	s := Partition(ds, []string{"World"}, 7)["World"]
	require.False(t, s.Empty())
	return s
}

func TestBuildBandsBothTiersOrder(t *testing.T) {
	s := worldSeries(t)
	sw := ColorFor(0)
	layers := BuildBands(s, model.BoundsBoth, sw)
	require.Len(t, layers, 4)

	assert.Equal(t, s.Column(model.Tier95, model.BoundUpper), layers[0].Y)
	assert.Equal(t, s.Column(model.Tier95, model.BoundLower), layers[1].Y)
	assert.Equal(t, s.Column(model.Tier65, model.BoundUpper), layers[2].Y)
	assert.Equal(t, s.Column(model.Tier65, model.BoundLower), layers[3].Y)

	for i, l := range layers {
		upper := i%2 == 0
		assert.Equal(t, !upper, l.FillToPrevious, "layer %d fill flag", i)
		assert.False(t, l.ShowLegend)
		assert.Equal(t, BandWidth, l.Width)
		assert.Equal(t, s.Dates(), l.X)
	}
	assert.Equal(t, sw.Band95, layers[0].Color)
	assert.Equal(t, sw.Band95, layers[1].FillColor)
	assert.Equal(t, sw.Band65, layers[2].Color)
	assert.Equal(t, sw.Band65, layers[3].FillColor)
	assert.Empty(t, layers[0].FillColor)
}

func TestBuildBandsSingleTier(t *testing.T) {
	s := worldSeries(t)

	only65 := BuildBands(s, model.Bounds65, ColorFor(2))
	require.Len(t, only65, 2)
	assert.Contains(t, only65[0].HoverTemplate, "Upper Bound, 65% Credible Interval")
	assert.Contains(t, only65[1].HoverTemplate, "Lower Bound, 65% Credible Interval")

	only95 := BuildBands(s, model.Bounds95, ColorFor(2))
	require.Len(t, only95, 2)
	assert.Contains(t, only95[0].HoverTemplate, "Upper Bound, 95% Credible Interval")
}

func TestBuildBandsHoverTemplate(t *testing.T) {
	s := worldSeries(t)
	l := BuildBands(s, model.Bounds95, ColorFor(0))[1]
	assert.Equal(t,
		"<b>World: %{y:.2f}</b><br>Lower Bound, 95% Credible Interval<br>%{x|%d %b %y}<extra></extra>",
		l.HoverTemplate)
}

func TestBuildBandsEmpty(t *testing.T) {
	s := worldSeries(t)
	assert.Empty(t, BuildBands(s, model.BoundsNone, ColorFor(0)))
	assert.Empty(t, BuildBands(model.Series{EntityID: "X"}, model.BoundsBoth, ColorFor(0)))
}
