package chart

import (
	"fmt"
	"time"

	"github.com/vanderheijden86/trackr/pkg/debug"
	"github.com/vanderheijden86/trackr/pkg/metrics"
	"github.com/vanderheijden86/trackr/pkg/model"
)

// Text and styling shared by every figure.
const (
	PlaceholderText = "No data to display"
	NoticeNoData    = "No data for the selected parameter"

	MainWidth     = 3.0
	BaselineWidth = 1.0
	BaselineColor = "#737373"
	FontColor     = "#737373"
	FontFamily    = "Open Sans"
	AxisLineColor = "#d9d9d9"
	TickFormat    = "%d %b %y"
)

// placeholderEpoch anchors the x values of the placeholder layers.
var placeholderEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Assemble composes the chart for one selection. The result always holds,
// in order: the y=0 and y=1 reference lines, the band layers of every
// entity, then one value line per entity, plus the decluttered labels.
// An empty selection yields the placeholder figure. Bits outside
// model.BoundsBoth are ignored, so Assemble never fails.
func Assemble(ds *model.Dataset, selection []string, parameter int, bounds model.Bounds) model.ChartSpec {
	selection = model.NormalizeSelection(selection)
	if len(selection) == 0 {
		return Placeholder()
	}
	bounds &= model.BoundsBoth
	swatches := Palette(len(selection))

	series := Partition(ds, selection, parameter)
	dates := observedDates(series, selection)

	spec := model.ChartSpec{
		Layout: chartLayout(),
	}
	spec.Layers = append(spec.Layers, baseline(dates, 0), baseline(dates, 1))

	for i, id := range selection {
		spec.Layers = append(spec.Layers, BuildBands(series[id], bounds, swatches[i])...)
	}
	for i, id := range selection {
		s := series[id]
		if s.Empty() {
			continue
		}
		spec.Layers = append(spec.Layers, mainLayer(s, swatches[i]))
	}

	spec.Annotations = Declutter(series, selection, ColorFor)
	if len(dates) == 0 {
		spec.Notice = NoticeNoData
	}
	return spec
}

// Placeholder returns the figure shown when nothing is selected: an
// invisible three-point layer that gives the canvas a range, a text layer
// and a centered notice, with axes and legend hidden.
func Placeholder() model.ChartSpec {
	x := []time.Time{placeholderEpoch, placeholderEpoch.AddDate(0, 0, 1), placeholderEpoch.AddDate(0, 0, 2)}
	return model.ChartSpec{
		Layers: []model.Layer{
			{
				X:       x,
				Y:       []float64{1, 2, 3},
				Mode:    model.ModeLines,
				Opacity: 0,
			},
			{
				X:       x[1:2],
				Y:       []float64{2},
				Mode:    model.ModeText,
				Text:    PlaceholderText,
				Opacity: 1,
			},
		},
		Annotations: []model.Label{{
			Text:            PlaceholderText,
			X:               0.5,
			DisplayPosition: 0.5,
			XRef:            "paper",
			YRef:            "paper",
			XAnchor:         "center",
			Color:           FontColor,
		}},
		Layout: model.Layout{
			ShowLegend:  false,
			AxesVisible: false,
			FontFamily:  FontFamily,
			FontColor:   FontColor,
			Background:  "white",
		},
	}
}

func chartLayout() model.Layout {
	return model.Layout{
		ShowLegend:    true,
		AxesVisible:   true,
		XTickFormat:   TickFormat,
		FontFamily:    FontFamily,
		FontColor:     FontColor,
		Background:    "white",
		AxisLineColor: AxisLineColor,
	}
}

func baseline(dates []time.Time, y float64) model.Layer {
	ys := make([]float64, len(dates))
	for i := range ys {
		ys[i] = y
	}
	return model.Layer{
		X:       dates,
		Y:       ys,
		Mode:    model.ModeLines,
		Color:   BaselineColor,
		Width:   BaselineWidth,
		Dash:    model.DashDot,
		Opacity: 1,
	}
}

func mainLayer(s model.Series, sw Swatch) model.Layer {
	return model.Layer{
		Name:          s.EntityID,
		X:             s.Dates(),
		Y:             s.Values(),
		Mode:          model.ModeLines,
		Color:         sw.Opaque,
		Width:         MainWidth,
		Dash:          model.DashSolid,
		ShowLegend:    true,
		HoverTemplate: fmt.Sprintf("<b>%s: %%{y:.2f}</b><br>%%{x|%%d %%b %%y}<br><extra></extra>", s.EntityID),
		Hoverable:     true,
		Opacity:       1,
	}
}

// Request is one chart query.
type Request struct {
	Selection []string     `json:"selection"`
	Parameter int          `json:"days_infectious"`
	Bounds    model.Bounds `json:"bounds"`
}

// Assembler runs Assemble with timing and debug logging. It holds no
// chart state, so one value can serve concurrent callers.
type Assembler struct {
	timer *metrics.TimingMetric
}

// NewAssembler returns an Assembler that records into metrics.Assemble.
func NewAssembler() *Assembler {
	return &Assembler{timer: metrics.Assemble}
}

// Build assembles the chart for req against ds.
func (a *Assembler) Build(ds *model.Dataset, req Request) model.ChartSpec {
	var timer *metrics.TimingMetric
	if a != nil {
		timer = a.timer
	}
	defer metrics.Timer(timer)()

	start := time.Now()
	spec := Assemble(ds, req.Selection, req.Parameter, req.Bounds)
	debug.Log("assemble: entities=%d days=%d bounds=%s layers=%d labels=%d",
		len(req.Selection), req.Parameter, req.Bounds, len(spec.Layers), len(spec.Annotations))
	debug.LogTiming("assemble", time.Since(start))
	return spec
}
