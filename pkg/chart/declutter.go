package chart

import (
	"fmt"
	"math"
	"sort"

	"github.com/vanderheijden86/trackr/pkg/model"
)

// Annotation placement constants.
const (
	labelX       = 1.01
	offsetSpread = 10.0
	lowQuantile  = 0.05
	highQuantile = 0.95
)

// lastValue pairs an entity with the R value at its latest date.
type lastValue struct {
	entity string
	value  float64
	index  int // position in the selection
}

// Declutter builds the right-edge value labels for the selection. Labels
// whose values sit closer than the offset are pushed upward so they do not
// overlap; the printed text always shows the true value.
//
// The offset is a tenth of the 5–95 percentile spread of every filtered
// value across the selection. When that pool is empty no labels are
// produced.
func Declutter(series map[string]model.Series, selection []string, colorFor func(int) Swatch) []model.Label {
	pool := pooledValues(series, selection)
	pool = dropNaN(pool)
	if len(pool) == 0 {
		return nil
	}
	offset := Offset(pool)

	var lasts []lastValue
	for i, id := range selection {
		r, ok := series[id].Last()
		if !ok || math.IsNaN(r.Value) {
			continue
		}
		lasts = append(lasts, lastValue{entity: id, value: r.Value, index: i})
	}
	if len(lasts) == 0 {
		return nil
	}

	sorted := make([]lastValue, len(lasts))
	copy(sorted, lasts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].value < sorted[j].value })

	values := make([]float64, len(sorted))
	for i, lv := range sorted {
		values[i] = lv.value
	}
	positions := Spread(values, offset)

	pos := make(map[string]float64, len(sorted))
	for i, lv := range sorted {
		pos[lv.entity] = positions[i]
	}

	labels := make([]model.Label, 0, len(lasts))
	for _, lv := range lasts {
		labels = append(labels, model.Label{
			EntityID:        lv.entity,
			RawValue:        lv.value,
			DisplayPosition: pos[lv.entity],
			Color:           colorFor(lv.index).Opaque,
			Text:            fmt.Sprintf("%.2f", lv.value),
			X:               labelX,
			XRef:            "paper",
			YRef:            "y",
			XAnchor:         "left",
		})
	}
	return labels
}

// Spread returns display positions for ascending values. A value closer
// than offset to the previous position is placed exactly offset above it,
// so clusters cascade upward. values is not modified.
func Spread(values []float64, offset float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	positions := make([]float64, len(values))
	positions[0] = values[0]
	for i := 1; i < len(values); i++ {
		if math.Abs(values[i]-positions[i-1]) < offset {
			positions[i] = positions[i-1] + offset
		} else {
			positions[i] = values[i]
		}
	}
	return positions
}

// Offset returns the minimum label separation for a value pool.
func Offset(pool []float64) float64 {
	if len(pool) == 0 {
		return 0
	}
	sorted := make([]float64, len(pool))
	copy(sorted, pool)
	sort.Float64s(sorted)
	return (Percentile(sorted, highQuantile) - Percentile(sorted, lowQuantile)) / offsetSpread
}

// Percentile returns the p-quantile of ascending data, interpolating
// linearly between the two closest ranks at (n-1)*p.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return math.NaN()
	case n == 1 || p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[n-1]
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= n {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

func dropNaN(xs []float64) []float64 {
	out := xs[:0:0]
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}
