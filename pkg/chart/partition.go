package chart

import (
	"sort"
	"time"

	"github.com/vanderheijden86/trackr/pkg/model"
)

// Partition keeps the records of the selected entities at the given
// days-infectious value and groups them into chronological series.
// Every selected entity gets an entry; an entity with no rows maps to an
// empty Series.
func Partition(ds *model.Dataset, selection []string, parameter int) map[string]model.Series {
	out := make(map[string]model.Series, len(selection))
	for _, id := range selection {
		out[id] = model.Series{EntityID: id}
	}
	if ds == nil {
		return out
	}

	for _, r := range ds.Records {
		if r.Parameter != parameter {
			continue
		}
		s, ok := out[r.EntityID]
		if !ok {
			continue
		}
		s.Records = append(s.Records, r)
		out[r.EntityID] = s
	}

	for id, s := range out {
		sort.SliceStable(s.Records, func(i, j int) bool {
			return s.Records[i].Date.Before(s.Records[j].Date)
		})
		out[id] = s
	}
	return out
}

// pooledValues returns every R value across the partitioned series.
func pooledValues(series map[string]model.Series, selection []string) []float64 {
	var pool []float64
	for _, id := range selection {
		pool = append(pool, series[id].Values()...)
	}
	return pool
}

// observedDates returns the sorted unique dates across the selection.
func observedDates(series map[string]model.Series, selection []string) []time.Time {
	seen := make(map[int64]struct{})
	var dates []time.Time
	for _, id := range selection {
		for _, r := range series[id].Records {
			k := r.Date.UnixNano()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			dates = append(dates, r.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
