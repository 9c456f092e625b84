// Package export renders assembled charts to static files: SVG through
// svgo, PNG through gg, and JSON for the chart description itself.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/trackr/pkg/metrics"
	"github.com/vanderheijden86/trackr/pkg/model"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// Default canvas size.
const (
	DefaultWidth  = 900
	DefaultHeight = 450
)

// ErrUnsupportedFormat is returned for formats other than svg, png or json.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ChartOptions controls chart export.
type ChartOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg", "png" or "json" (case-insensitive)
	Title  string // Optional heading drawn above the plot
	Width  int
	Height int
	Spec   model.ChartSpec
}

func (o ChartOptions) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// ResolveFormat picks the output format from an explicit value or the
// path's extension, defaulting to svg.
func ResolveFormat(format, path string) (string, error) {
	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".png":
			format = FormatPNG
		case ".json":
			format = FormatJSON
		default:
			format = FormatSVG
		}
	}
	switch format {
	case FormatSVG, FormatPNG, FormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("%w %q (want svg, png or json)", ErrUnsupportedFormat, format)
	}
}

// SaveChart writes the chart to opts.Path.
func SaveChart(opts ChartOptions) error {
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	format, err := ResolveFormat(opts.Format, opts.Path)
	if err != nil {
		return err
	}
	if filepath.Ext(opts.Path) == "" {
		opts.Path += "." + format
	}
	opts.Format = format

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.Create(opts.Path)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.Path, err)
	}
	bw := bufio.NewWriter(f)
	if err := Render(bw, opts); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", opts.Path, err)
	}
	return f.Close()
}

// Render writes the chart in opts.Format (svg when empty) to w.
func Render(w io.Writer, opts ChartOptions) error {
	format, err := ResolveFormat(opts.Format, "")
	if err != nil {
		return err
	}
	switch format {
	case FormatPNG:
		return RenderPNGTo(w, opts)
	case FormatJSON:
		return WriteJSON(w, opts.Spec)
	default:
		return RenderSVGTo(w, opts)
	}
}

// RenderSVGTo draws the chart as an SVG document.
func RenderSVGTo(w io.Writer, opts ChartOptions) error {
	defer metrics.Timer(metrics.RenderSVG)()

	width, height := opts.size()
	lay := buildChartLayout(opts.Spec, width, height, opts.Title)

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(width, height)
	family := opts.Spec.Layout.FontFamily
	if family == "" {
		family = "sans-serif"
	}
	canvas.Gstyle(fmt.Sprintf("font-family:%s, sans-serif;font-size:%.0fpx", family, fontSize))

	bg, bgAlpha := css(lay.Background)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s;fill-opacity:%.2f", bg, bgAlpha))

	if lay.Axes {
		drawAxesSVG(canvas, lay)
	}

	for _, s := range lay.Shapes {
		switch s := s.(type) {
		case fillShape:
			c, a := css(s.Color)
			for _, poly := range s.Polygons {
				xs, ys := pixels(poly)
				canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;fill-opacity:%.2f;stroke:none", c, a))
			}
		case lineShape:
			c, a := css(s.Color)
			style := fmt.Sprintf("fill:none;stroke:%s;stroke-opacity:%.2f;stroke-width:%.1f;stroke-linejoin:round", c, a, s.Width)
			if s.Dotted {
				style += ";stroke-dasharray:2,4"
			}
			for _, run := range s.Runs {
				xs, ys := pixels(run)
				canvas.Polyline(xs, ys, style)
			}
		}
	}

	for _, t := range lay.Texts {
		c, _ := css(t.Color)
		canvas.Text(int(t.X), int(t.Y+fontSize/3), t.Text,
			fmt.Sprintf("fill:%s;text-anchor:%s", c, svgAnchor(t.Anchor)))
	}

	drawLegendSVG(canvas, lay)
	drawHeaderSVG(canvas, lay)

	canvas.Gend()
	canvas.End()
	return ew.err
}

func drawAxesSVG(canvas *svg.SVG, lay chartLayout) {
	p := lay.Plot
	axis, _ := css(lay.AxisColor)
	font, _ := css(lay.Font)
	canvas.Line(int(p.Left), int(p.Bottom), int(p.Right), int(p.Bottom), "stroke:"+axis)
	canvas.Line(int(p.Left), int(p.Top), int(p.Left), int(p.Bottom), "stroke:"+axis)
	for _, t := range lay.XTicks {
		canvas.Line(int(t.Pos), int(p.Bottom), int(t.Pos), int(p.Bottom)+4, "stroke:"+axis)
		canvas.Text(int(t.Pos), int(p.Bottom)+18, t.Label, "fill:"+font+";text-anchor:middle")
	}
	for _, t := range lay.YTicks {
		canvas.Line(int(p.Left)-4, int(t.Pos), int(p.Left), int(t.Pos), "stroke:"+axis)
		canvas.Text(int(p.Left)-8, int(t.Pos+fontSize/3), t.Label, "fill:"+font+";text-anchor:end")
	}
}

func drawLegendSVG(canvas *svg.SVG, lay chartLayout) {
	if len(lay.Legend) == 0 {
		return
	}
	font, _ := css(lay.Font)
	x := int(lay.Plot.Right + legendInset)
	y := int(lay.Plot.Top)
	for _, e := range lay.Legend {
		c, _ := css(e.Color)
		canvas.Line(x, y, x+18, y, fmt.Sprintf("stroke:%s;stroke-width:3", c))
		canvas.Text(x+24, y+4, e.Label, "fill:"+font)
		y += int(legendRow)
	}
}

func drawHeaderSVG(canvas *svg.SVG, lay chartLayout) {
	font, _ := css(lay.Font)
	if lay.Title != "" {
		canvas.Text(int(lay.Plot.Left), 22, lay.Title, "fill:"+font+";font-size:16px;font-weight:600")
	}
	if lay.Notice != "" {
		cx := int((lay.Plot.Left + lay.Plot.Right) / 2)
		cy := int((lay.Plot.Top + lay.Plot.Bottom) / 2)
		canvas.Text(cx, cy, lay.Notice, "fill:"+font+";text-anchor:middle")
	}
}

// RenderPNGTo rasterizes the chart and encodes it as PNG.
func RenderPNGTo(w io.Writer, opts ChartOptions) error {
	defer metrics.Timer(metrics.RenderPNG)()

	width, height := opts.size()
	lay := buildChartLayout(opts.Spec, width, height, opts.Title)

	dc := gg.NewContext(width, height)
	dc.SetColor(lay.Background)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	if lay.Axes {
		drawAxesPNG(dc, lay)
	}

	for _, s := range lay.Shapes {
		switch s := s.(type) {
		case fillShape:
			dc.SetColor(s.Color)
			for _, poly := range s.Polygons {
				tracePath(dc, poly, true)
				dc.Fill()
			}
		case lineShape:
			dc.SetColor(s.Color)
			dc.SetLineWidth(s.Width)
			if s.Dotted {
				dc.SetDash(2, 4)
			} else {
				dc.SetDash()
			}
			for _, run := range s.Runs {
				tracePath(dc, run, false)
				dc.Stroke()
			}
		}
	}
	dc.SetDash()

	for _, t := range lay.Texts {
		dc.SetColor(t.Color)
		dc.DrawStringAnchored(t.Text, t.X, t.Y, t.Anchor, 0.35)
	}

	if len(lay.Legend) > 0 {
		x := lay.Plot.Right + legendInset
		y := lay.Plot.Top
		for _, e := range lay.Legend {
			dc.SetColor(e.Color)
			dc.SetLineWidth(3)
			dc.DrawLine(x, y, x+18, y)
			dc.Stroke()
			dc.SetColor(lay.Font)
			dc.DrawStringAnchored(e.Label, x+24, y, 0, 0.35)
			y += legendRow
		}
	}

	dc.SetColor(lay.Font)
	if lay.Title != "" {
		dc.DrawStringAnchored(lay.Title, lay.Plot.Left, 22, 0, 0.5)
	}
	if lay.Notice != "" {
		dc.DrawStringAnchored(lay.Notice, (lay.Plot.Left+lay.Plot.Right)/2, (lay.Plot.Top+lay.Plot.Bottom)/2, 0.5, 0.5)
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func drawAxesPNG(dc *gg.Context, lay chartLayout) {
	p := lay.Plot
	dc.SetColor(lay.AxisColor)
	dc.SetLineWidth(1)
	dc.DrawLine(p.Left, p.Bottom, p.Right, p.Bottom)
	dc.DrawLine(p.Left, p.Top, p.Left, p.Bottom)
	dc.Stroke()

	for _, t := range lay.XTicks {
		dc.SetColor(lay.AxisColor)
		dc.DrawLine(t.Pos, p.Bottom, t.Pos, p.Bottom+4)
		dc.Stroke()
		dc.SetColor(lay.Font)
		dc.DrawStringAnchored(t.Label, t.Pos, p.Bottom+16, 0.5, 0.5)
	}
	for _, t := range lay.YTicks {
		dc.SetColor(lay.AxisColor)
		dc.DrawLine(p.Left-4, t.Pos, p.Left, t.Pos)
		dc.Stroke()
		dc.SetColor(lay.Font)
		dc.DrawStringAnchored(t.Label, p.Left-8, t.Pos, 1, 0.35)
	}
}

func tracePath(dc *gg.Context, pts []point, closed bool) {
	dc.NewSubPath()
	for i, p := range pts {
		if i == 0 {
			dc.MoveTo(p.X, p.Y)
			continue
		}
		dc.LineTo(p.X, p.Y)
	}
	if closed {
		dc.ClosePath()
	}
}

func pixels(pts []point) ([]int, []int) {
	xs := make([]int, len(pts))
	ys := make([]int, len(pts))
	for i, p := range pts {
		xs[i] = int(p.X + 0.5)
		ys[i] = int(p.Y + 0.5)
	}
	return xs, ys
}

func svgAnchor(a float64) string {
	switch {
	case a >= 1:
		return "end"
	case a > 0:
		return "middle"
	default:
		return "start"
	}
}

func formatFixed(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// errWriter remembers the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
