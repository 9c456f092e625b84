package export

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/trackr/pkg/model"
)

// DateLayout is how x values appear in exported JSON.
const DateLayout = "2006-01-02"

// optFloat encodes NaN and infinities as null.
type optFloat float64

func (f optFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

type wireLayer struct {
	Name           string     `json:"name,omitempty"`
	X              []string   `json:"x"`
	Y              []optFloat `json:"y"`
	Mode           model.Mode `json:"mode"`
	Text           string     `json:"text,omitempty"`
	Color          string     `json:"color,omitempty"`
	Width          float64    `json:"width,omitempty"`
	Dash           model.Dash `json:"dash,omitempty"`
	FillToPrevious bool       `json:"fill_to_previous,omitempty"`
	FillColor      string     `json:"fill_color,omitempty"`
	ShowLegend     bool       `json:"show_legend"`
	HoverTemplate  string     `json:"hover_template,omitempty"`
	Hoverable      bool       `json:"hoverable"`
	Opacity        float64    `json:"opacity"`
}

type wireLabel struct {
	EntityID        string   `json:"entity_id,omitempty"`
	RawValue        optFloat `json:"raw_value"`
	DisplayPosition optFloat `json:"display_position"`
	Color           string   `json:"color,omitempty"`
	Text            string   `json:"text"`
	X               float64  `json:"x"`
	XRef            string   `json:"xref"`
	YRef            string   `json:"yref"`
	XAnchor         string   `json:"xanchor"`
}

type wireSpec struct {
	Layers      []wireLayer  `json:"layers"`
	Annotations []wireLabel  `json:"annotations"`
	Layout      model.Layout `json:"layout"`
	Notice      string       `json:"notice,omitempty"`
}

func toWire(spec model.ChartSpec) wireSpec {
	out := wireSpec{
		Layers:      make([]wireLayer, 0, len(spec.Layers)),
		Annotations: make([]wireLabel, 0, len(spec.Annotations)),
		Layout:      spec.Layout,
		Notice:      spec.Notice,
	}
	for _, l := range spec.Layers {
		out.Layers = append(out.Layers, wireLayer{
			Name:           l.Name,
			X:              formatDates(l.X),
			Y:              optFloats(l.Y),
			Mode:           l.Mode,
			Text:           l.Text,
			Color:          l.Color,
			Width:          l.Width,
			Dash:           l.Dash,
			FillToPrevious: l.FillToPrevious,
			FillColor:      l.FillColor,
			ShowLegend:     l.ShowLegend,
			HoverTemplate:  l.HoverTemplate,
			Hoverable:      l.Hoverable,
			Opacity:        l.Opacity,
		})
	}
	for _, a := range spec.Annotations {
		out.Annotations = append(out.Annotations, wireLabel{
			EntityID:        a.EntityID,
			RawValue:        optFloat(a.RawValue),
			DisplayPosition: optFloat(a.DisplayPosition),
			Color:           a.Color,
			Text:            a.Text,
			X:               a.X,
			XRef:            a.XRef,
			YRef:            a.YRef,
			XAnchor:         a.XAnchor,
		})
	}
	return out
}

func formatDates(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Format(DateLayout)
	}
	return out
}

func optFloats(vs []float64) []optFloat {
	out := make([]optFloat, len(vs))
	for i, v := range vs {
		out[i] = optFloat(v)
	}
	return out
}

// MarshalSpec encodes the chart description. Missing values become null
// and dates are written as YYYY-MM-DD.
func MarshalSpec(spec model.ChartSpec) ([]byte, error) {
	data, err := json.Marshal(toWire(spec))
	if err != nil {
		return nil, fmt.Errorf("marshal chart: %w", err)
	}
	return data, nil
}

// WriteJSON writes the indented chart description to w.
func WriteJSON(w io.Writer, spec model.ChartSpec) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toWire(spec)); err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	return nil
}
