package testutil

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/vanderheijden86/trackr/pkg/model"
)

// AssertLayerCount verifies the number of layers in a chart.
func AssertLayerCount(t *testing.T, spec model.ChartSpec, expected int) {
	t.Helper()
	if len(spec.Layers) != expected {
		t.Errorf("expected %d layers, got %d", expected, len(spec.Layers))
	}
}

// AssertFillPairs verifies that every layer filling to its predecessor
// follows a non-filling layer of the same color.
func AssertFillPairs(t *testing.T, spec model.ChartSpec) {
	t.Helper()
	for i, l := range spec.Layers {
		if !l.FillToPrevious {
			continue
		}
		if i == 0 {
			t.Errorf("layer 0 fills to a previous layer that does not exist")
			continue
		}
		prev := spec.Layers[i-1]
		if prev.FillToPrevious {
			t.Errorf("layer %d fills to layer %d which is itself a lower edge", i, i-1)
		}
		if prev.Color != l.Color {
			t.Errorf("layer %d (%s) pairs with layer %d of different color %s", i, l.Color, i-1, prev.Color)
		}
	}
}

// AssertSeriesAligned verifies every layer has as many x as y values.
func AssertSeriesAligned(t *testing.T, spec model.ChartSpec) {
	t.Helper()
	for i, l := range spec.Layers {
		if len(l.X) != len(l.Y) {
			t.Errorf("layer %d has %d x values and %d y values", i, len(l.X), len(l.Y))
		}
		for j := 1; j < len(l.X); j++ {
			if !l.X[j].After(l.X[j-1]) {
				t.Errorf("layer %d x values not strictly increasing at %d", i, j)
				break
			}
		}
	}
}

// AssertLabelSpacing verifies that, ordered by raw value, consecutive
// display positions are at least offset apart.
func AssertLabelSpacing(t *testing.T, labels []model.Label, offset float64) {
	t.Helper()
	if offset == 0 {
		return
	}
	sorted := append([]model.Label(nil), labels...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].RawValue < sorted[j].RawValue })
	const eps = 1e-9
	for i := 1; i < len(sorted); i++ {
		gap := math.Abs(sorted[i].DisplayPosition - sorted[i-1].DisplayPosition)
		if gap+eps < offset {
			t.Errorf("labels %s and %s only %.6f apart (offset %.6f)",
				sorted[i-1].EntityID, sorted[i].EntityID, gap, offset)
		}
	}
}

// LoadGolden reads testdata/<name>, or writes got there when the
// UPDATE_GOLDEN environment variable is set.
func LoadGolden(t *testing.T, name string, got []byte) []byte {
	t.Helper()
	path := filepath.Join("testdata", name)
	if os.Getenv("UPDATE_GOLDEN") != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir testdata: %v", err)
		}
		if err := os.WriteFile(path, got, 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		return got
	}
	want, err := os.ReadFile(path)
	if err != nil {
		t.Skipf("golden file %s missing (run with UPDATE_GOLDEN=1): %v", path, err)
	}
	return want
}
