package model

import "time"

// Dash is the stroke pattern of a layer.
type Dash string

const (
	DashSolid Dash = "solid"
	DashDot   Dash = "dot"
)

// Mode selects how a layer is drawn.
type Mode string

const (
	ModeLines Mode = "lines"
	ModeText  Mode = "text"
)

// Layer is one drawable trace of the chart. When FillToPrevious is set the
// area between this layer and the one before it in ChartSpec.Layers is
// filled with FillColor.
type Layer struct {
	Name           string      `json:"name,omitempty"`
	X              []time.Time `json:"x"`
	Y              []float64   `json:"y"`
	Mode           Mode        `json:"mode"`
	Text           string      `json:"text,omitempty"`
	Color          string      `json:"color,omitempty"`
	Width          float64     `json:"width,omitempty"`
	Dash           Dash        `json:"dash,omitempty"`
	FillToPrevious bool        `json:"fill_to_previous,omitempty"`
	FillColor      string      `json:"fill_color,omitempty"`
	ShowLegend     bool        `json:"show_legend"`
	HoverTemplate  string      `json:"hover_template,omitempty"`
	Hoverable      bool        `json:"hoverable"`
	Opacity        float64     `json:"opacity"`
}

// Label is a text annotation. Value labels carry the entity, the raw last
// value and the decluttered display position; the placeholder label only
// carries text.
type Label struct {
	EntityID        string  `json:"entity_id,omitempty"`
	RawValue        float64 `json:"raw_value"`
	DisplayPosition float64 `json:"display_position"`
	Color           string  `json:"color,omitempty"`
	Text            string  `json:"text"`
	X               float64 `json:"x"`
	XRef            string  `json:"xref"`
	YRef            string  `json:"yref"`
	XAnchor         string  `json:"xanchor"`
}

// Layout carries the figure-level styling the renderer needs.
type Layout struct {
	ShowLegend    bool   `json:"show_legend"`
	AxesVisible   bool   `json:"axes_visible"`
	XTickFormat   string `json:"x_tick_format,omitempty"`
	FontFamily    string `json:"font_family"`
	FontColor     string `json:"font_color"`
	Background    string `json:"background"`
	AxisLineColor string `json:"axis_line_color,omitempty"`
}

// ChartSpec is the complete, renderer-agnostic description of one chart.
type ChartSpec struct {
	Layers      []Layer `json:"layers"`
	Annotations []Label `json:"annotations"`
	Layout      Layout  `json:"layout"`
	Notice      string  `json:"notice,omitempty"`
}

// IsPlaceholder reports whether the spec is the empty-selection figure.
func (c ChartSpec) IsPlaceholder() bool {
	return !c.Layout.AxesVisible
}

// LegendLayers returns the layers shown in the legend.
func (c ChartSpec) LegendLayers() []Layer {
	var out []Layer
	for _, l := range c.Layers {
		if l.ShowLegend {
			out = append(out, l)
		}
	}
	return out
}
