package export

import (
	"image/color"
	"math"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/trackr/pkg/model"
)

// Page geometry in pixels.
const (
	marginLeft   = 48.0
	marginRight  = 190.0
	marginTop    = 44.0
	marginBottom = 40.0
	labelGap     = 6.0
	legendInset  = 72.0
	legendRow    = 16.0
	legendWidth  = 16 // cells
	fontSize     = 13.0
	xTickCount   = 6
	yTickCount   = 5
	xTickLayout  = "02 Jan 06"
)

type point struct{ X, Y float64 }

type lineShape struct {
	Runs   [][]point
	Color  color.NRGBA
	Width  float64
	Dotted bool
}

type fillShape struct {
	Polygons [][]point
	Color    color.NRGBA
}

type textShape struct {
	X, Y   float64
	Text   string
	Color  color.NRGBA
	Anchor float64 // 0 left, 0.5 centered
}

type tick struct {
	Pos   float64
	Label string
}

type legendEntry struct {
	Label string
	Color color.NRGBA
}

type plotArea struct {
	Left, Top, Right, Bottom float64
}

func (p plotArea) width() float64  { return p.Right - p.Left }
func (p plotArea) height() float64 { return p.Bottom - p.Top }

// chartLayout is the chart projected into pixel space. Shapes are kept in
// draw order: fills and lines interleave exactly as the layers do.
type chartLayout struct {
	Width, Height int
	Title         string
	Plot          plotArea
	Background    color.NRGBA
	Font          color.NRGBA
	AxisColor     color.NRGBA
	Axes          bool
	Shapes        []any // fillShape or lineShape
	Texts         []textShape
	XTicks        []tick
	YTicks        []tick
	Legend        []legendEntry
	Notice        string
}

type scale struct {
	min, max float64
	lo, hi   float64 // pixel range
}

func (s scale) at(v float64) float64 {
	if s.max == s.min {
		return (s.lo + s.hi) / 2
	}
	return s.lo + (v-s.min)/(s.max-s.min)*(s.hi-s.lo)
}

func buildChartLayout(spec model.ChartSpec, width, height int, title string) chartLayout {
	gray := color.NRGBA{0x73, 0x73, 0x73, 0xff}
	lay := chartLayout{
		Width:      width,
		Height:     height,
		Title:      title,
		Background: mustColor(spec.Layout.Background, color.NRGBA{255, 255, 255, 255}),
		Font:       mustColor(spec.Layout.FontColor, gray),
		AxisColor:  mustColor(spec.Layout.AxisLineColor, color.NRGBA{0xd9, 0xd9, 0xd9, 0xff}),
		Axes:       spec.Layout.AxesVisible,
		Notice:     spec.Notice,
		Plot: plotArea{
			Left:   marginLeft,
			Top:    marginTop,
			Right:  float64(width) - marginRight,
			Bottom: float64(height) - marginBottom,
		},
	}
	if lay.Plot.Right <= lay.Plot.Left {
		lay.Plot.Right = lay.Plot.Left + 1
	}
	if lay.Plot.Bottom <= lay.Plot.Top {
		lay.Plot.Bottom = lay.Plot.Top + 1
	}

	xs, ys := dataRanges(spec)
	xs.lo, xs.hi = lay.Plot.Left, lay.Plot.Right
	ys.lo, ys.hi = lay.Plot.Bottom, lay.Plot.Top

	project := func(t time.Time, v float64) point {
		return point{X: xs.at(float64(t.Unix())), Y: ys.at(v)}
	}

	annotated := make(map[string]bool, len(spec.Annotations))
	for _, a := range spec.Annotations {
		annotated[a.Text] = true
	}

	for i, l := range spec.Layers {
		if l.FillToPrevious && i > 0 && l.FillColor != "" {
			if fill := fillBetween(spec.Layers[i-1], l, project, l.FillColor); len(fill.Polygons) > 0 {
				lay.Shapes = append(lay.Shapes, fill)
			}
		}
		if l.Opacity <= 0 {
			continue
		}
		switch l.Mode {
		case model.ModeText:
			if l.Text == "" || annotated[l.Text] || len(l.X) == 0 || len(l.Y) == 0 {
				continue
			}
			p := project(l.X[0], l.Y[0])
			lay.Texts = append(lay.Texts, textShape{X: p.X, Y: p.Y, Text: l.Text, Color: lay.Font, Anchor: 0.5})
		default:
			line := lineShape{
				Runs:   runs(l, project),
				Color:  mustColor(l.Color, gray),
				Width:  math.Max(l.Width, 0.5),
				Dotted: l.Dash == model.DashDot,
			}
			if len(line.Runs) > 0 {
				lay.Shapes = append(lay.Shapes, line)
			}
		}
	}

	for _, a := range spec.Annotations {
		lay.Texts = append(lay.Texts, annotationText(a, lay, ys))
	}

	if spec.Layout.ShowLegend {
		for _, l := range spec.LegendLayers() {
			lay.Legend = append(lay.Legend, legendEntry{
				Label: runewidth.Truncate(l.Name, legendWidth, "…"),
				Color: mustColor(l.Color, gray),
			})
		}
	}

	if lay.Axes {
		lay.XTicks = timeTicks(xs, xTickCount)
		lay.YTicks = valueTicks(ys, yTickCount)
	}
	return lay
}

// dataRanges spans every plotted point and every value label.
func dataRanges(spec model.ChartSpec) (scale, scale) {
	xs := scale{min: math.Inf(1), max: math.Inf(-1)}
	ys := scale{min: math.Inf(1), max: math.Inf(-1)}
	for _, l := range spec.Layers {
		for i, t := range l.X {
			if i >= len(l.Y) || math.IsNaN(l.Y[i]) || math.IsInf(l.Y[i], 0) {
				continue
			}
			x := float64(t.Unix())
			xs.min, xs.max = math.Min(xs.min, x), math.Max(xs.max, x)
			ys.min, ys.max = math.Min(ys.min, l.Y[i]), math.Max(ys.max, l.Y[i])
		}
	}
	for _, a := range spec.Annotations {
		if a.YRef != "y" || math.IsNaN(a.DisplayPosition) {
			continue
		}
		ys.min, ys.max = math.Min(ys.min, a.DisplayPosition), math.Max(ys.max, a.DisplayPosition)
	}
	if math.IsInf(xs.min, 0) {
		xs.min, xs.max = 0, 1
	}
	if math.IsInf(ys.min, 0) {
		ys.min, ys.max = 0, 1
	}
	if xs.min == xs.max {
		xs.min -= 86400
		xs.max += 86400
	}
	pad := (ys.max - ys.min) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	ys.min -= pad
	ys.max += pad
	return xs, ys
}

// runs splits a layer into drawable polylines, breaking at missing values.
func runs(l model.Layer, project func(time.Time, float64) point) [][]point {
	var out [][]point
	var cur []point
	for i, t := range l.X {
		if i >= len(l.Y) {
			break
		}
		v := l.Y[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, project(t, v))
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// fillBetween closes the area between two layers over the stretches where
// both have values.
func fillBetween(prev, cur model.Layer, project func(time.Time, float64) point, fill string) fillShape {
	shape := fillShape{Color: mustColor(fill, color.NRGBA{})}
	n := min(len(prev.X), len(prev.Y), len(cur.X), len(cur.Y))

	var top, bottom []point
	flush := func() {
		if len(top) > 1 {
			poly := make([]point, 0, 2*len(top))
			poly = append(poly, top...)
			for i := len(bottom) - 1; i >= 0; i-- {
				poly = append(poly, bottom[i])
			}
			shape.Polygons = append(shape.Polygons, poly)
		}
		top, bottom = nil, nil
	}
	for i := 0; i < n; i++ {
		a, b := prev.Y[i], cur.Y[i]
		if math.IsNaN(a) || math.IsNaN(b) {
			flush()
			continue
		}
		top = append(top, project(prev.X[i], a))
		bottom = append(bottom, project(cur.X[i], b))
	}
	flush()
	return shape
}

func annotationText(a model.Label, lay chartLayout, ys scale) textShape {
	p := lay.Plot
	var x, y float64
	if a.XRef == "paper" {
		x = p.Left + a.X*p.width()
	} else {
		x = p.Left + a.X
	}
	if a.YRef == "paper" {
		y = p.Bottom - a.DisplayPosition*p.height()
	} else {
		y = ys.at(a.DisplayPosition)
	}
	anchor := 0.0
	switch a.XAnchor {
	case "center":
		anchor = 0.5
	case "right":
		anchor = 1
	default:
		x += labelGap
	}
	return textShape{
		X:      x,
		Y:      y,
		Text:   a.Text,
		Color:  mustColor(a.Color, lay.Font),
		Anchor: anchor,
	}
}

func timeTicks(xs scale, n int) []tick {
	if n < 2 {
		n = 2
	}
	span := xs.max - xs.min
	out := make([]tick, 0, n)
	last := ""
	for i := 0; i < n; i++ {
		v := xs.min + span*float64(i)/float64(n-1)
		label := time.Unix(int64(v), 0).UTC().Format(xTickLayout)
		if label == last {
			continue
		}
		last = label
		out = append(out, tick{Pos: xs.at(v), Label: label})
	}
	return out
}

func valueTicks(ys scale, n int) []tick {
	step := niceStep((ys.max - ys.min) / float64(n))
	if step <= 0 {
		return nil
	}
	var out []tick
	for v := math.Ceil(ys.min/step) * step; v <= ys.max+step*1e-9; v += step {
		out = append(out, tick{Pos: ys.at(v), Label: formatTick(v, step)})
	}
	return out
}

// niceStep rounds a raw step to 1, 2 or 5 times a power of ten.
func niceStep(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch f := raw / mag; {
	case f <= 1:
		return mag
	case f <= 2:
		return 2 * mag
	case f <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

func formatTick(v, step float64) string {
	decimals := 0
	if step < 1 {
		decimals = int(math.Ceil(-math.Log10(step)))
	}
	if math.Abs(v) < step*1e-9 {
		v = 0
	}
	return formatFixed(v, decimals)
}
