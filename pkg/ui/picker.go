package ui

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/vanderheijden86/trackr/internal/datasource"
	"github.com/vanderheijden86/trackr/pkg/chart"
	"github.com/vanderheijden86/trackr/pkg/model"
)

// ErrNoEntities is returned when the dataset offers nothing to pick.
var ErrNoEntities = errors.New("dataset has no entities to choose from")

// Picker asks for the chart selection with a huh form. It falls back to
// accessible (line based) prompts when stdin is not a terminal.
type Picker struct {
	catalog  datasource.Catalog
	entities []string
	days     int
	bounds   []string

	accessible bool
	input      io.Reader
	output     io.Writer
}

// NewPicker seeds the form with initial, falling back to the catalog
// defaults for anything unset.
func NewPicker(cat datasource.Catalog, initial chart.Request) *Picker {
	p := &Picker{
		catalog:    cat,
		entities:   initial.Selection,
		days:       initial.Parameter,
		bounds:     initial.Bounds.Keys(),
		accessible: !isTerminal(),
	}
	if len(p.entities) == 0 {
		p.entities = append([]string(nil), cat.DefaultSelection...)
	}
	if p.days == 0 || !cat.HasParameter(p.days) {
		p.days = cat.DefaultParameter
	}
	return p
}

// WithIO routes the form through r and w in accessible mode.
func (p *Picker) WithIO(r io.Reader, w io.Writer) *Picker {
	p.input, p.output = r, w
	p.accessible = true
	return p
}

// Form builds the huh form bound to the picker's fields.
func (p *Picker) Form() *huh.Form {
	entityOpts := make([]huh.Option[string], 0, len(p.catalog.Entities))
	selected := make(map[string]bool, len(p.entities))
	for _, id := range p.entities {
		selected[id] = true
	}
	for _, o := range p.catalog.Entities {
		entityOpts = append(entityOpts, huh.NewOption(o.Label, o.Value).Selected(selected[o.Value]))
	}

	dayOpts := make([]huh.Option[int], 0, len(p.catalog.Parameters))
	for _, d := range p.catalog.Parameters {
		dayOpts = append(dayOpts, huh.NewOption(strconv.Itoa(d)+" days", d))
	}

	boundOpts := []huh.Option[string]{
		huh.NewOption("65% credible interval", model.Tier65.Key()).Selected(slices.Contains(p.bounds, model.Tier65.Key())),
		huh.NewOption("95% credible interval", model.Tier95.Key()).Selected(slices.Contains(p.bounds, model.Tier95.Key())),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Countries / regions").
				Description("Order of selection sets the colors").
				Options(entityOpts...).
				Filterable(true).
				Height(12).
				Value(&p.entities),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Average serial interval").
				Description("Days infectious used by the estimates").
				Options(dayOpts...).
				Value(&p.days),
			huh.NewMultiSelect[string]().
				Title("Credible bounds").
				Options(boundOpts...).
				Value(&p.bounds),
		),
	).WithTheme(huh.ThemeDracula())

	if p.accessible {
		form = form.WithAccessible(true)
	}
	if p.input != nil {
		form = form.WithInput(p.input)
	}
	if p.output != nil {
		form = form.WithOutput(p.output)
	}
	return form
}

// Run shows the form and returns the chosen request.
func (p *Picker) Run() (chart.Request, error) {
	if len(p.catalog.Entities) == 0 {
		return chart.Request{}, ErrNoEntities
	}
	if err := p.Form().Run(); err != nil {
		return chart.Request{}, fmt.Errorf("selection form: %w", err)
	}
	return p.Request()
}

// Request converts the current field values into a chart request.
func (p *Picker) Request() (chart.Request, error) {
	bounds, err := model.ParseBounds(p.bounds)
	if err != nil {
		return chart.Request{}, err
	}
	return chart.Request{
		Selection: model.NormalizeSelection(p.entities),
		Parameter: p.days,
		Bounds:    bounds,
	}, nil
}
