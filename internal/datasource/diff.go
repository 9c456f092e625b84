package datasource

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/vanderheijden86/trackr/pkg/model"
)

// DatasetDiff describes what changed between two dataset snapshots
type DatasetDiff struct {
	// SourceA is the path of the older snapshot
	SourceA string `json:"source_a"`
	// SourceB is the path of the newer snapshot
	SourceB string `json:"source_b"`
	// AddedEntities are present in B but not in A
	AddedEntities []string `json:"added_entities,omitempty"`
	// RemovedEntities are present in A but not in B
	RemovedEntities []string `json:"removed_entities,omitempty"`
	// ChangedValues lists records whose R value differs
	ChangedValues []ValueDifference `json:"changed_values,omitempty"`
	// CountA is the number of records in A
	CountA int `json:"count_a"`
	// CountB is the number of records in B
	CountB int `json:"count_b"`
	// LastDateA and LastDateB are the latest observation dates
	LastDateA string `json:"last_date_a,omitempty"`
	LastDateB string `json:"last_date_b,omitempty"`
}

// ValueDifference is one revised estimate
type ValueDifference struct {
	EntityID  string  `json:"entity_id"`
	Date      string  `json:"date"`
	Parameter int     `json:"days_infectious"`
	ValueA    float64 `json:"r_a"`
	ValueB    float64 `json:"r_b"`
}

// HasChanges returns true if the snapshots differ in any tracked way
func (d DatasetDiff) HasChanges() bool {
	return len(d.AddedEntities) > 0 || len(d.RemovedEntities) > 0 ||
		len(d.ChangedValues) > 0 || d.CountA != d.CountB || d.LastDateA != d.LastDateB
}

// Summary returns a human-readable summary of the differences
func (d DatasetDiff) Summary() string {
	if !d.HasChanges() {
		return fmt.Sprintf("Snapshots match (%d records each)", d.CountA)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Changes between %s and %s:\n", d.SourceA, d.SourceB)
	if d.CountA != d.CountB {
		fmt.Fprintf(&b, "  - Record count: %d -> %d\n", d.CountA, d.CountB)
	}
	if d.LastDateA != d.LastDateB {
		fmt.Fprintf(&b, "  - Latest date: %s -> %s\n", d.LastDateA, d.LastDateB)
	}
	writeList(&b, "entities added", d.AddedEntities)
	writeList(&b, "entities removed", d.RemovedEntities)
	if len(d.ChangedValues) > 0 {
		fmt.Fprintf(&b, "  - %d revised estimates\n", len(d.ChangedValues))
		if len(d.ChangedValues) <= 5 {
			for _, c := range d.ChangedValues {
				fmt.Fprintf(&b, "    - %s %s (%d days): %.2f -> %.2f\n",
					c.EntityID, c.Date, c.Parameter, c.ValueA, c.ValueB)
			}
		}
	}
	return b.String()
}

func writeList(b *strings.Builder, what string, ids []string) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(b, "  - %d %s\n", len(ids), what)
	if len(ids) <= 5 {
		for _, id := range ids {
			fmt.Fprintf(b, "    - %s\n", id)
		}
	}
}

// DiffOptions configures the diff operation
type DiffOptions struct {
	// Tolerance is the absolute R change below which values count as equal
	Tolerance float64
	// MaxDifferences limits the number of value differences tracked (0 = unlimited)
	MaxDifferences int
}

// DefaultDiffOptions returns sensible default diff options
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{
		Tolerance:      1e-9,
		MaxDifferences: 100,
	}
}

type recordKey struct {
	entity string
	param  int
	date   string
}

// CompareDatasets compares two snapshots and returns their differences.
func CompareDatasets(a, b *model.Dataset, opts DiffOptions) DatasetDiff {
	diff := DatasetDiff{CountA: a.Len(), CountB: b.Len()}
	if a != nil {
		diff.SourceA = a.Source
	}
	if b != nil {
		diff.SourceB = b.Source
	}
	if _, last, ok := a.DateRange(); ok {
		diff.LastDateA = last.Format("2006-01-02")
	}
	if _, last, ok := b.DateRange(); ok {
		diff.LastDateB = last.Format("2006-01-02")
	}

	entitiesA := toSet(a.Entities())
	entitiesB := toSet(b.Entities())
	for id := range entitiesB {
		if _, ok := entitiesA[id]; !ok {
			diff.AddedEntities = append(diff.AddedEntities, id)
		}
	}
	for id := range entitiesA {
		if _, ok := entitiesB[id]; !ok {
			diff.RemovedEntities = append(diff.RemovedEntities, id)
		}
	}
	sort.Strings(diff.AddedEntities)
	sort.Strings(diff.RemovedEntities)

	valuesA := make(map[recordKey]float64, a.Len())
	for _, r := range recordsOf(a) {
		valuesA[keyOf(r)] = r.Value
	}
	for _, r := range recordsOf(b) {
		k := keyOf(r)
		va, ok := valuesA[k]
		if !ok || sameValue(va, r.Value, opts.Tolerance) {
			continue
		}
		if opts.MaxDifferences > 0 && len(diff.ChangedValues) >= opts.MaxDifferences {
			break
		}
		diff.ChangedValues = append(diff.ChangedValues, ValueDifference{
			EntityID: r.EntityID, Date: k.date, Parameter: r.Parameter,
			ValueA: va, ValueB: r.Value,
		})
	}
	sort.Slice(diff.ChangedValues, func(i, j int) bool {
		ci, cj := diff.ChangedValues[i], diff.ChangedValues[j]
		if ci.EntityID != cj.EntityID {
			return ci.EntityID < cj.EntityID
		}
		if ci.Parameter != cj.Parameter {
			return ci.Parameter < cj.Parameter
		}
		return ci.Date < cj.Date
	})
	return diff
}

func keyOf(r model.Record) recordKey {
	return recordKey{entity: r.EntityID, param: r.Parameter, date: r.Date.Format("2006-01-02")}
}

func sameValue(a, b, tol float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= tol
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
