package http

import (
	"context"
	"io"
	"net/url"

	"mtapulse/internal/exporter"
	"mtapulse/internal/presentation"
	"mtapulse/internal/services"
	"mtapulse/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations the handlers need
type DashboardServiceInterface interface {
	ParseFilter(q url.Values) (domain.FilterState, error)
	View(ctx context.Context, state domain.FilterState) (presentation.DashboardView, error)
	ChartSpec(ctx context.Context, state domain.FilterState, chart string) (presentation.ChartSpec, error)
	RenderChart(ctx context.Context, state domain.FilterState, chart string, w io.Writer, width, height int) error
	Export(ctx context.Context, state domain.FilterState, format exporter.Format, table exporter.TableKind, w io.Writer) error
	DatasetInfo() services.DatasetInfo
	CacheStats() services.CacheStats
}

var _ DashboardServiceInterface = (*services.DashboardService)(nil)
