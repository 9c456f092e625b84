// Package model defines the data types shared by the loader, the chart
// engine and the renderers.
package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Record is one row of the estimates table: the R estimate for one
// entity on one date under one days-infectious assumption.
type Record struct {
	EntityID  string    `json:"entity_id"`
	Date      time.Time `json:"date"`
	Parameter int       `json:"days_infectious"`
	Value     float64   `json:"r"`
	CI65Lower float64   `json:"ci_65_l"`
	CI65Upper float64   `json:"ci_65_u"`
	CI95Lower float64   `json:"ci_95_l"`
	CI95Upper float64   `json:"ci_95_u"`
}

// Bound returns the credible-interval edge for the given tier and direction.
func (r Record) Bound(t Tier, b Bound) float64 {
	switch t {
	case Tier65:
		if b == BoundUpper {
			return r.CI65Upper
		}
		return r.CI65Lower
	case Tier95:
		if b == BoundUpper {
			return r.CI95Upper
		}
		return r.CI95Lower
	default:
		panic(fmt.Sprintf("model: unknown tier %d", t))
	}
}

// Dataset is an immutable snapshot of parsed records.
type Dataset struct {
	Records     []Record  `json:"records"`
	LastUpdated time.Time `json:"last_updated"`
	Source      string    `json:"source,omitempty"`
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Entities returns the sorted unique entity ids.
func (d *Dataset) Entities() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.Records {
		if _, ok := seen[r.EntityID]; ok {
			continue
		}
		seen[r.EntityID] = struct{}{}
		out = append(out, r.EntityID)
	}
	sort.Strings(out)
	return out
}

// Parameters returns the sorted unique days-infectious values.
func (d *Dataset) Parameters() []int {
	if d == nil {
		return nil
	}
	seen := make(map[int]struct{})
	var out []int
	for _, r := range d.Records {
		if _, ok := seen[r.Parameter]; ok {
			continue
		}
		seen[r.Parameter] = struct{}{}
		out = append(out, r.Parameter)
	}
	sort.Ints(out)
	return out
}

// HasParameter reports whether any record uses parameter p.
func (d *Dataset) HasParameter(p int) bool {
	if d == nil {
		return false
	}
	for _, r := range d.Records {
		if r.Parameter == p {
			return true
		}
	}
	return false
}

// HasEntity reports whether any record belongs to id.
func (d *Dataset) HasEntity(id string) bool {
	if d == nil {
		return false
	}
	for _, r := range d.Records {
		if r.EntityID == id {
			return true
		}
	}
	return false
}

// DateRange returns the earliest and latest record dates.
// ok is false for an empty dataset.
func (d *Dataset) DateRange() (first, last time.Time, ok bool) {
	if d.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last = d.Records[0].Date, d.Records[0].Date
	for _, r := range d.Records[1:] {
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last, true
}

// Validate checks the (entity, parameter, date) uniqueness invariant.
func (d *Dataset) Validate() error {
	if d == nil {
		return nil
	}
	type key struct {
		entity string
		param  int
		day    int64
	}
	seen := make(map[key]struct{}, len(d.Records))
	for i, r := range d.Records {
		if strings.TrimSpace(r.EntityID) == "" {
			return fmt.Errorf("record %d: empty entity id", i)
		}
		k := key{r.EntityID, r.Parameter, r.Date.Unix()}
		if _, ok := seen[k]; ok {
			return fmt.Errorf("record %d: duplicate date %s for %s at days_infectious=%d",
				i, r.Date.Format("2006-01-02"), r.EntityID, r.Parameter)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// Series is the chronological run of records for one entity at one
// parameter value.
type Series struct {
	EntityID string   `json:"entity_id"`
	Records  []Record `json:"records"`
}

// Empty reports whether the series has no rows.
func (s Series) Empty() bool { return len(s.Records) == 0 }

// Last returns the record with the latest date.
func (s Series) Last() (Record, bool) {
	if len(s.Records) == 0 {
		return Record{}, false
	}
	return s.Records[len(s.Records)-1], true
}

// Dates returns the x values of the series.
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Date
	}
	return out
}

// Values returns the R values of the series.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Value
	}
	return out
}

// Column returns one credible-interval edge across the series.
func (s Series) Column(t Tier, b Bound) []float64 {
	out := make([]float64, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Bound(t, b)
	}
	return out
}

// NormalizeSelection trims ids, drops blanks and removes duplicates while
// keeping the first occurrence, so order stays meaningful.
func NormalizeSelection(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
