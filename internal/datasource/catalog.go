package datasource

import (
	"strconv"

	"github.com/vanderheijden86/trackr/pkg/model"
)

// Defaults applied when the dataset carries them.
const (
	DefaultEntity     = "World"
	DefaultParameter  = 7
	sliderMarks       = 5
	lastUpdatedLayout = "02 January 2006"
)

// Option is one dropdown entry.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Catalog is everything a front end needs to build its selection controls.
type Catalog struct {
	Entities         []Option          `json:"entities"`
	DefaultSelection []string          `json:"default_selection"`
	ParameterMin     int               `json:"days_min"`
	ParameterMax     int               `json:"days_max"`
	Parameters       []int             `json:"days"`
	Marks            map[string]string `json:"marks"`
	DefaultParameter int               `json:"days_default"`
	DefaultBounds    model.Bounds      `json:"bounds_default"`
	LastUpdated      string            `json:"last_updated"`
}

// BuildCatalog derives the selection options from ds. An empty dataset
// yields an empty catalog with both-tier bounds.
func BuildCatalog(ds *model.Dataset) Catalog {
	c := Catalog{
		Marks:         map[string]string{},
		DefaultBounds: model.BoundsBoth,
	}
	entities := ds.Entities()
	for _, id := range entities {
		c.Entities = append(c.Entities, Option{Value: id, Label: id})
	}
	switch {
	case ds.HasEntity(DefaultEntity):
		c.DefaultSelection = []string{DefaultEntity}
	case len(entities) > 0:
		c.DefaultSelection = []string{entities[0]}
	default:
		c.DefaultSelection = []string{}
	}

	params := ds.Parameters()
	c.Parameters = params
	if len(params) > 0 {
		c.ParameterMin = params[0]
		c.ParameterMax = params[len(params)-1]
		c.DefaultParameter = params[len(params)/2]
		if ds.HasParameter(DefaultParameter) {
			c.DefaultParameter = DefaultParameter
		}
		step := len(params) / sliderMarks
		if step < 1 {
			step = 1
		}
		for i := 0; i < len(params); i += step {
			s := strconv.Itoa(params[i])
			c.Marks[s] = s
		}
	}

	if ds != nil && !ds.LastUpdated.IsZero() {
		c.LastUpdated = "Last updated on " + ds.LastUpdated.Format(lastUpdatedLayout)
	}
	return c
}

// HasParameter reports whether p is one of the catalog's parameter values.
func (c Catalog) HasParameter(p int) bool {
	for _, v := range c.Parameters {
		if v == p {
			return true
		}
	}
	return false
}

// EntityIDs returns the option values in order.
func (c Catalog) EntityIDs() []string {
	out := make([]string, len(c.Entities))
	for i, o := range c.Entities {
		out[i] = o.Value
	}
	return out
}
