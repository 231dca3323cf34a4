package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DashboardMetrics holds all application-specific instruments
type DashboardMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Pipeline metrics
	ComputationsTotal metric.Int64Counter
	ComputeDuration   metric.Float64Histogram
	CacheHits         metric.Int64Counter
	CacheMisses       metric.Int64Counter
	DatasetRecords    metric.Int64Gauge

	// Output metrics
	ChartRendersTotal metric.Int64Counter
	ExportsTotal      metric.Int64Counter

	// WebSocket metrics
	WebSocketConnections metric.Int64UpDownCounter
	WebSocketMessages    metric.Int64Counter

	SystemErrors metric.Int64Counter
}

// CreateDashboardMetrics registers every instrument on meter.
func CreateDashboardMetrics(meter metric.Meter) (*DashboardMetrics, error) {
	m := &DashboardMetrics{}
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.HTTPRequestsTotal, "http_requests_total", "Total number of HTTP requests"},
		{&m.ComputationsTotal, "dashboard_computations_total", "Pipeline computations served"},
		{&m.CacheHits, "dashboard_cache_hits_total", "Dashboard results served from cache"},
		{&m.CacheMisses, "dashboard_cache_misses_total", "Dashboard results computed on demand"},
		{&m.ChartRendersTotal, "chart_renders_total", "PNG charts rendered"},
		{&m.ExportsTotal, "exports_total", "Table exports written"},
		{&m.WebSocketMessages, "websocket_messages_total", "WebSocket messages handled"},
		{&m.SystemErrors, "system_errors_total", "Total number of system errors"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, err
		}
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.ComputeDuration, err = meter.Float64Histogram(
		"dashboard_compute_duration_seconds",
		metric.WithDescription("Pipeline computation duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.WebSocketConnections, err = meter.Int64UpDownCounter(
		"websocket_connections",
		metric.WithDescription("Open WebSocket connections"),
	); err != nil {
		return nil, err
	}

	if m.DatasetRecords, err = meter.Int64Gauge(
		"dataset_records",
		metric.WithDescription("Daily records in the loaded dataset"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordComputation records one pipeline run.
func (m *DashboardMetrics) RecordComputation(ctx context.Context, granularity string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("granularity", granularity))
	m.ComputationsTotal.Add(ctx, 1, attrs)
	m.ComputeDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCacheLookup counts a cache hit or miss.
func (m *DashboardMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Add(ctx, 1)
		return
	}
	m.CacheMisses.Add(ctx, 1)
}

// RecordDatasetSize publishes the number of loaded records.
func (m *DashboardMetrics) RecordDatasetSize(ctx context.Context, records int) {
	if m == nil {
		return
	}
	m.DatasetRecords.Record(ctx, int64(records))
}

// RecordChartRender counts a rendered chart by kind.
func (m *DashboardMetrics) RecordChartRender(ctx context.Context, chart string) {
	if m == nil {
		return
	}
	m.ChartRendersTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("chart", chart)))
}

// RecordExport counts an export by format.
func (m *DashboardMetrics) RecordExport(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

// RecordWebSocketConnection tracks connection opens (+1) and closes (-1).
func (m *DashboardMetrics) RecordWebSocketConnection(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.WebSocketConnections.Add(ctx, delta)
}

// RecordWebSocketMessage counts a handled message by type.
func (m *DashboardMetrics) RecordWebSocketMessage(ctx context.Context, msgType string) {
	if m == nil {
		return
	}
	m.WebSocketMessages.Add(ctx, 1, metric.WithAttributes(attribute.String("type", msgType)))
}

// RecordSystemError counts an unexpected failure by component.
func (m *DashboardMetrics) RecordSystemError(ctx context.Context, component string) {
	if m == nil {
		return
	}
	m.SystemErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("component", component)))
}
