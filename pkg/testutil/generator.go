// Package testutil provides deterministic dataset fixtures and assertions
// shared by the package tests.
package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/vanderheijden86/trackr/pkg/model"
)

// GeneratorConfig controls dataset generation.
type GeneratorConfig struct {
	Seed       int64     // Random seed for determinism (0 = use current time)
	Entities   []string  // Entity ids (default: World plus four countries)
	Parameters []int     // days_infectious values (default: 5..10)
	Days       int       // Number of dates per series (default: 30)
	Start      time.Time // First date (default: 2020-03-01)
	BaseR      float64   // Starting R (default: 2.5)
	Drift      float64   // Daily multiplicative drift of R (default: 0.97)
	Noise      float64   // Std deviation of daily noise (default: 0.05)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:       42, // Deterministic
		Entities:   []string{"World", "Germany", "Italy", "Spain", "United States"},
		Parameters: []int{5, 6, 7, 8, 9, 10},
		Days:       30,
		Start:      time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
		BaseR:      2.5,
		Drift:      0.97,
		Noise:      0.05,
	}
}

// Generator creates synthetic R estimate datasets.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config. Zero fields take the
// DefaultConfig values.
func New(cfg GeneratorConfig) *Generator {
	def := DefaultConfig()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if len(cfg.Entities) == 0 {
		cfg.Entities = def.Entities
	}
	if len(cfg.Parameters) == 0 {
		cfg.Parameters = def.Parameters
	}
	if cfg.Days <= 0 {
		cfg.Days = def.Days
	}
	if cfg.Start.IsZero() {
		cfg.Start = def.Start
	}
	if cfg.BaseR == 0 {
		cfg.BaseR = def.BaseR
	}
	if cfg.Drift == 0 {
		cfg.Drift = def.Drift
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Dataset generates a full dataset: one series per entity and parameter.
// Records are emitted grouped by entity, then parameter, then date, which
// is the order of the published CSV.
func (g *Generator) Dataset() *model.Dataset {
	ds := &model.Dataset{Source: "synthetic"}
	for e, id := range g.cfg.Entities {
		for _, p := range g.cfg.Parameters {
			ds.Records = append(ds.Records, g.series(id, e, p)...)
		}
	}
	ds.LastUpdated = g.cfg.Start.AddDate(0, 0, g.cfg.Days)
	return ds
}

func (g *Generator) series(id string, entityIdx, param int) []model.Record {
	out := make([]model.Record, 0, g.cfg.Days)
	// Longer infectious periods scale R up, as in the published estimates.
	r := g.cfg.BaseR * (1 + 0.08*float64(param-7)) * (1 + 0.05*float64(entityIdx))
	for d := 0; d < g.cfg.Days; d++ {
		r = math.Max(0.05, r*g.cfg.Drift+g.rng.NormFloat64()*g.cfg.Noise)
		w65 := 0.1 + 0.02*g.rng.Float64()
		w95 := 2.2 * w65
		out = append(out, model.Record{
			EntityID:  id,
			Date:      g.cfg.Start.AddDate(0, 0, d),
			Parameter: param,
			Value:     r,
			CI65Lower: r - w65,
			CI65Upper: r + w65,
			CI95Lower: r - w95,
			CI95Upper: r + w95,
		})
	}
	return out
}

// Shuffled returns a copy of ds with records in random order.
func (g *Generator) Shuffled(ds *model.Dataset) *model.Dataset {
	out := *ds
	out.Records = append([]model.Record(nil), ds.Records...)
	g.rng.Shuffle(len(out.Records), func(i, j int) {
		out.Records[i], out.Records[j] = out.Records[j], out.Records[i]
	})
	return &out
}

// Flat builds one series per entity holding the given values on
// consecutive days, with bands one unit either side.
func Flat(param int, values map[string][]float64) *model.Dataset {
	start := DefaultConfig().Start
	ds := &model.Dataset{Source: "flat"}
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for d, v := range values[id] {
			ds.Records = append(ds.Records, model.Record{
				EntityID:  id,
				Date:      start.AddDate(0, 0, d),
				Parameter: param,
				Value:     v,
				CI65Lower: v - 0.5,
				CI65Upper: v + 0.5,
				CI95Lower: v - 1,
				CI95Upper: v + 1,
			})
		}
	}
	return ds
}

// EntityNames returns n distinct entity ids.
func EntityNames(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("E%03d", i)
	}
	return out
}
