package datasource

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/trackr/pkg/model"
)

// ParameterSummary holds descriptive statistics of R for one
// days-infectious value.
type ParameterSummary struct {
	Parameter int     `json:"days_infectious"`
	Entities  int     `json:"entities"`
	Count     int     `json:"count"`
	Missing   int     `json:"missing"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
	Min       float64 `json:"min"`
	Median    float64 `json:"median"`
	Max       float64 `json:"max"`
}

// Summarize returns one summary per parameter value, ascending. NaN
// values are counted as missing and excluded from the statistics.
func Summarize(ds *model.Dataset) []ParameterSummary {
	values := make(map[int][]float64)
	entities := make(map[int]map[string]struct{})
	missing := make(map[int]int)
	for _, r := range recordsOf(ds) {
		if entities[r.Parameter] == nil {
			entities[r.Parameter] = make(map[string]struct{})
		}
		entities[r.Parameter][r.EntityID] = struct{}{}
		if math.IsNaN(r.Value) {
			missing[r.Parameter]++
			continue
		}
		values[r.Parameter] = append(values[r.Parameter], r.Value)
	}

	params := make([]int, 0, len(entities))
	for p := range entities {
		params = append(params, p)
	}
	sort.Ints(params)

	out := make([]ParameterSummary, 0, len(params))
	for _, p := range params {
		xs := values[p]
		s := ParameterSummary{
			Parameter: p,
			Entities:  len(entities[p]),
			Count:     len(xs),
			Missing:   missing[p],
		}
		if len(xs) > 0 {
			sort.Float64s(xs)
			s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
			if len(xs) == 1 {
				s.StdDev = 0
			}
			s.Min = floats.Min(xs)
			s.Max = floats.Max(xs)
			s.Median = stat.Quantile(0.5, stat.Empirical, xs, nil)
		}
		out = append(out, s)
	}
	return out
}
