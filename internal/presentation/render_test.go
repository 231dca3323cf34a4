package presentation

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtapulse/pkg/contracts/domain"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRenderPNG(t *testing.T) {
	tests := []struct {
		name string
		spec ChartSpec
	}{
		{name: "area", spec: AreaChart(sampleResult(), DefaultOptions())},
		{name: "line", spec: PercentageChart(sampleResult(), DefaultOptions())},
		{name: "empty", spec: ChartSpec{Kind: ChartArea, Title: "nothing selected"}},
		{
			name: "single bucket",
			spec: AreaChart(domain.PipelineResult{
				Absolute: domain.Table{
					Dates:   []time.Time{date("2021-06-30")},
					Columns: []domain.Series{{Mode: domain.ModeLIRR, Values: []float64{42}}},
				},
				AbsoluteTotals: map[domain.Mode]float64{domain.ModeLIRR: 42},
			}, DefaultOptions()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderPNG(tt.spec, &buf, 640, 320))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func laterResult() domain.PipelineResult {
	return domain.PipelineResult{
		Absolute: domain.Table{
			Dates:   []time.Time{date("2023-01-01"), date("2023-01-08")},
			Columns: []domain.Series{{Mode: domain.ModeSubways, Values: []float64{10, 30}}},
		},
		AbsoluteTotals: map[domain.Mode]float64{domain.ModeSubways: 40},
		RecordCount:    14,
	}
}

func TestBounds_IgnoresAnnotationOutsideData(t *testing.T) {
	spec := AreaChart(laterResult(), DefaultOptions())
	require.NotNil(t, spec.Annotation)

	xMin, xMax, _, _, ok := bounds(spec)
	require.True(t, ok)
	assert.Equal(t, float64(date("2023-01-01").UnixNano()), xMin)
	assert.Equal(t, float64(date("2023-01-08").UnixNano()), xMax)
	assert.Nil(t, visibleAnnotation(spec, xMin, xMax))

	var buf bytes.Buffer
	require.NoError(t, RenderPNG(spec, &buf, 640, 320))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestVisibleAnnotation_InsideData(t *testing.T) {
	spec := AreaChart(domain.PipelineResult{
		Absolute: domain.Table{
			Dates:   []time.Time{date("2020-02-23"), date("2020-03-01"), date("2020-03-08")},
			Columns: []domain.Series{{Mode: domain.ModeBuses, Values: []float64{50, 40, 10}}},
		},
		AbsoluteTotals: map[domain.Mode]float64{domain.ModeBuses: 100},
		RecordCount:    21,
	}, DefaultOptions())
	xMin, xMax, _, _, ok := bounds(spec)
	require.True(t, ok)
	assert.Same(t, spec.Annotation, visibleAnnotation(spec, xMin, xMax))
}

func TestRenderPNG_InvalidSize(t *testing.T) {
	var buf bytes.Buffer
	err := RenderPNG(ChartSpec{}, &buf, 0, 100)
	assert.ErrorIs(t, err, ErrInvalidChartSize)

	err = RenderPNG(ChartSpec{}, &buf, 100, 10_000)
	assert.ErrorIs(t, err, ErrInvalidChartSize)
	assert.Zero(t, buf.Len())
}
