package presentation

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default PNG size.
const (
	DefaultChartWidth  = 1200
	DefaultChartHeight = 500
)

// ErrInvalidChartSize is returned for non-positive or oversized dimensions.
var ErrInvalidChartSize = errors.New("invalid chart size")

const maxChartDimension = 4096

var namedColors = map[string]drawing.Color{
	"blue":   drawing.ColorFromHex("0000FF"),
	"red":    drawing.ColorFromHex("FF0000"),
	"green":  drawing.ColorFromHex("008000"),
	"purple": drawing.ColorFromHex("800080"),
	"orange": drawing.ColorFromHex("FFA500"),
	"teal":   drawing.ColorFromHex("008080"),
	"brown":  drawing.ColorFromHex("A52A2A"),
}

func seriesColor(name string) drawing.Color {
	if c, ok := namedColors[strings.ToLower(name)]; ok {
		return c
	}
	return chart.ColorBlack
}

// RenderPNG draws spec as a PNG. A spec without points renders an empty frame with
// the title so the page always has an image to show.
func RenderPNG(spec ChartSpec, w io.Writer, width, height int) error {
	if width <= 0 || height <= 0 || width > maxChartDimension || height > maxChartDimension {
		return fmt.Errorf("%w: %dx%d", ErrInvalidChartSize, width, height)
	}

	graph := chart.Chart{
		Title:  spec.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           spec.XLabel,
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           spec.YLabel,
			ValueFormatter: axisFormatter(spec.Kind),
		},
	}

	xMin, xMax, yMin, yMax, ok := bounds(spec)
	if !ok {
		graph.XAxis.Range = &chart.ContinuousRange{Min: 0, Max: 1}
		graph.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: 1}
		graph.XAxis.ValueFormatter = nil
		graph.Series = []chart.Series{chart.ContinuousSeries{
			Style:   chart.Style{StrokeColor: drawing.ColorTransparent, StrokeWidth: 1},
			XValues: []float64{0, 1},
			YValues: []float64{0, 0},
		}}
		return graph.Render(chart.PNG, w)
	}
	graph.XAxis.Range = &chart.ContinuousRange{Min: xMin, Max: xMax}
	graph.YAxis.Range = &chart.ContinuousRange{Min: yMin, Max: yMax}

	for _, s := range spec.Series {
		if len(s.Points) == 0 {
			continue
		}
		color := seriesColor(s.Color)
		style := chart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
		}
		if spec.Kind == ChartArea {
			style.FillColor = color.WithAlpha(48)
		}
		if spec.Markers {
			style.DotColor = color
			style.DotWidth = 3
		}
		ts := chart.TimeSeries{Name: s.Label, Style: style}
		for _, p := range s.Points {
			ts.XValues = append(ts.XValues, p.Date)
			ts.YValues = append(ts.YValues, p.Y)
		}
		graph.Series = append(graph.Series, ts)
	}

	if a := visibleAnnotation(spec, xMin, xMax); a != nil {
		graph.Series = append(graph.Series, chart.AnnotationSeries{
			Annotations: []chart.Value2{{
				XValue: float64(a.Date.UnixNano()),
				YValue: a.Y,
				Label:  a.Text,
			}},
		})
	}

	if spec.ShowLegend {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	return graph.Render(chart.PNG, w)
}

// bounds spans every point, widening degenerate ranges so a single bucket still
// renders. The annotation does not extend the range.
func bounds(spec ChartSpec) (xMin, xMax, yMin, yMax float64, ok bool) {
	xMin, yMin = math.Inf(1), math.Inf(1)
	xMax, yMax = math.Inf(-1), math.Inf(-1)
	for _, s := range spec.Series {
		for _, p := range s.Points {
			x := float64(p.Date.UnixNano())
			xMin, xMax = math.Min(xMin, x), math.Max(xMax, x)
			yMin, yMax = math.Min(yMin, p.Y), math.Max(yMax, p.Y)
			ok = true
		}
	}
	if !ok {
		return 0, 0, 0, 0, false
	}
	yMin = math.Min(yMin, 0)
	if xMax == xMin {
		day := float64(24 * 60 * 60 * 1e9)
		xMin, xMax = xMin-day, xMax+day
	}
	if yMax == yMin {
		yMax = yMin + 1
	}
	return xMin, xMax, yMin, yMax + (yMax-yMin)*0.05, true
}

// visibleAnnotation returns the annotation when its date lies inside [xMin, xMax].
func visibleAnnotation(spec ChartSpec, xMin, xMax float64) *Annotation {
	a := spec.Annotation
	if a == nil {
		return nil
	}
	if x := float64(a.Date.UnixNano()); x < xMin || x > xMax {
		return nil
	}
	return a
}

func axisFormatter(kind ChartKind) chart.ValueFormatter {
	return func(v interface{}) string {
		f, ok := v.(float64)
		if !ok {
			return fmt.Sprintf("%v", v)
		}
		if kind == ChartLine {
			return fmt.Sprintf("%.0f%%", f)
		}
		return FormatValue(int64(f))
	}
}
