package presentation

import (
	"time"

	"mtapulse/pkg/contracts/domain"
)

// ChartKind selects how series are drawn.
type ChartKind string

const (
	ChartArea ChartKind = "area"
	ChartLine ChartKind = "line"
)

// Point is one bucket of a series.
type Point struct {
	Date time.Time `json:"-"`
	X    string    `json:"x"`
	Y    float64   `json:"y"`
}

// ChartSeries is one mode drawn in its fixed color.
type ChartSeries struct {
	Mode   domain.Mode `json:"mode"`
	Label  string      `json:"label"`
	Color  string      `json:"color"`
	Points []Point     `json:"points"`
}

// Annotation is a labelled marker on the chart.
type Annotation struct {
	Date time.Time `json:"-"`
	X    string    `json:"x"`
	Y    float64   `json:"y"`
	Text string    `json:"text"`
}

// ChartSpec is a renderer-neutral chart description.
type ChartSpec struct {
	Kind       ChartKind     `json:"kind"`
	Title      string        `json:"title"`
	XLabel     string        `json:"x_label"`
	YLabel     string        `json:"y_label"`
	ShowLegend bool          `json:"show_legend"`
	Markers    bool          `json:"markers"`
	Series     []ChartSeries `json:"series"`
	Annotation *Annotation   `json:"annotation,omitempty"`
}

// HasData reports whether any series has at least one point.
func (c ChartSpec) HasData() bool {
	for _, s := range c.Series {
		if len(s.Points) > 0 {
			return true
		}
	}
	return false
}

// AreaChart charts the resampled absolute table, titled with per-mode totals.
func AreaChart(result domain.PipelineResult, opts Options) ChartSpec {
	spec := ChartSpec{
		Kind:       ChartArea,
		Title:      FormatTitle(result.Absolute.Modes(), result.AbsoluteTotals),
		XLabel:     "Date",
		YLabel:     AreaChartYLabel,
		ShowLegend: true,
		Markers:    true,
		Series:     toSeries(result.Absolute),
	}
	spec.Annotation = annotate(spec.Series, opts)
	return spec
}

// PercentageChart charts the resampled percentage table without a legend.
func PercentageChart(result domain.PipelineResult, opts Options) ChartSpec {
	spec := ChartSpec{
		Kind:   ChartLine,
		Title:  FormatPercentageTitle(result.Percentage.Modes(), result.PercentageMeans),
		XLabel: "Date",
		YLabel: PercentageChartYLabel,
		Series: toSeries(result.Percentage),
	}
	spec.Annotation = annotate(spec.Series, opts)
	return spec
}

func toSeries(t domain.Table) []ChartSeries {
	out := make([]ChartSeries, 0, len(t.Columns))
	for _, col := range t.Columns {
		points := make([]Point, len(col.Values))
		for i, v := range col.Values {
			points[i] = Point{Date: t.Dates[i], X: t.Dates[i].Format(domain.DateLayout), Y: v}
		}
		out = append(out, ChartSeries{
			Mode:   col.Mode,
			Label:  col.Mode.Label(),
			Color:  col.Mode.Color(),
			Points: points,
		})
	}
	return out
}

// annotate places the pandemic marker at the mean of the per-series maxima. Charts
// with no points get no marker.
func annotate(series []ChartSeries, opts Options) *Annotation {
	var total float64
	var n int
	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		hi := s.Points[0].Y
		for _, p := range s.Points[1:] {
			if p.Y > hi {
				hi = p.Y
			}
		}
		total += hi
		n++
	}
	if n == 0 {
		return nil
	}
	return &Annotation{
		Date: opts.PandemicStart,
		X:    opts.PandemicStart.Format(domain.DateLayout),
		Y:    total / float64(n),
		Text: opts.AnnotationText,
	}
}
