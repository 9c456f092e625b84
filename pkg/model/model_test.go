package model

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestBoundsDrawOrder(t *testing.T) {
	cases := []struct {
		name   string
		bounds Bounds
		want   []Tier
	}{
		{"none", BoundsNone, nil},
		{"65", Bounds65, []Tier{Tier65}},
		{"95", Bounds95, []Tier{Tier95}},
		{"both", BoundsBoth, []Tier{Tier95, Tier65}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.bounds.DrawOrder()
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("DrawOrder() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseBounds(t *testing.T) {
	cases := []struct {
		in      []string
		want    Bounds
		wantErr bool
	}{
		{nil, BoundsNone, false},
		{[]string{"q65"}, Bounds65, false},
		{[]string{"Q95"}, Bounds95, false},
		{[]string{"q65,q95"}, BoundsBoth, false},
		{[]string{"95", "65%"}, BoundsBoth, false},
		{[]string{"none"}, BoundsNone, false},
		{[]string{"q80"}, BoundsNone, true},
	}
	for _, tc := range cases {
		got, err := ParseBounds(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownTier) {
				t.Errorf("ParseBounds(%v) error = %v, want ErrUnknownTier", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBounds(%v) unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseBounds(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBoundsToggle(t *testing.T) {
	b := BoundsBoth.Toggle(Tier65)
	if b != Bounds95 {
		t.Fatalf("toggle 65 off both = %v", b)
	}
	if b.Toggle(Tier65) != BoundsBoth {
		t.Fatalf("toggle back should restore both")
	}
	if BoundsBoth.String() != "q65,q95" {
		t.Errorf("String() = %q", BoundsBoth.String())
	}
}

func TestRecordBound(t *testing.T) {
	r := Record{CI65Lower: 1, CI65Upper: 2, CI95Lower: 0.5, CI95Upper: 3}
	if r.Bound(Tier65, BoundLower) != 1 || r.Bound(Tier65, BoundUpper) != 2 {
		t.Error("65% bounds mismatched")
	}
	if r.Bound(Tier95, BoundLower) != 0.5 || r.Bound(Tier95, BoundUpper) != 3 {
		t.Error("95% bounds mismatched")
	}
}

func TestDatasetHelpers(t *testing.T) {
	ds := &Dataset{Records: []Record{
		{EntityID: "World", Date: day(2), Parameter: 7},
		{EntityID: "Austria", Date: day(0), Parameter: 5},
		{EntityID: "World", Date: day(1), Parameter: 5},
	}}
	if got := ds.Entities(); !reflect.DeepEqual(got, []string{"Austria", "World"}) {
		t.Errorf("Entities() = %v", got)
	}
	if got := ds.Parameters(); !reflect.DeepEqual(got, []int{5, 7}) {
		t.Errorf("Parameters() = %v", got)
	}
	if !ds.HasParameter(7) || ds.HasParameter(99) {
		t.Error("HasParameter mismatch")
	}
	first, last, ok := ds.DateRange()
	if !ok || !first.Equal(day(0)) || !last.Equal(day(2)) {
		t.Errorf("DateRange() = %v %v %v", first, last, ok)
	}
	if err := ds.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	var nilDS *Dataset
	if nilDS.Len() != 0 || nilDS.Entities() != nil {
		t.Error("nil dataset should be empty")
	}
}

func TestDatasetValidateDuplicate(t *testing.T) {
	ds := &Dataset{Records: []Record{
		{EntityID: "World", Date: day(1), Parameter: 7},
		{EntityID: "World", Date: day(1), Parameter: 7},
	}}
	if err := ds.Validate(); err == nil {
		t.Fatal("expected duplicate date error")
	}
}

func TestNormalizeSelection(t *testing.T) {
	got := NormalizeSelection([]string{" World", "Italy", "", "World", "Spain "})
	want := []string{"World", "Italy", "Spain"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeSelection() = %v, want %v", got, want)
	}
}

func TestSeriesAccessors(t *testing.T) {
	s := Series{EntityID: "A", Records: []Record{
		{Date: day(0), Value: 1.1, CI95Upper: 2},
		{Date: day(1), Value: 1.2, CI95Upper: 2.5},
	}}
	last, ok := s.Last()
	if !ok || last.Value != 1.2 {
		t.Errorf("Last() = %v %v", last, ok)
	}
	if got := s.Column(Tier95, BoundUpper); !reflect.DeepEqual(got, []float64{2, 2.5}) {
		t.Errorf("Column() = %v", got)
	}
	if _, ok := (Series{}).Last(); ok {
		t.Error("empty series should have no last record")
	}
}
