package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/bluele/gcache"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"mtapulse/internal/dataprocessing"
	"mtapulse/internal/exporter"
	"mtapulse/internal/infrastructure"
	"mtapulse/internal/presentation"
	"mtapulse/pkg/contracts/domain"
)

// Chart names accepted by ChartSpec and RenderChart.
const (
	ChartArea       = "area"
	ChartPercentage = "percentage"
)

// FilterRequest is the raw filter sent by the page, either as query parameters or
// as a WebSocket message. A nil Modes slice selects the default modes; an empty
// non-nil slice selects none.
type FilterRequest struct {
	Modes       []string `json:"modes"`
	Granularity string   `json:"granularity"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
}

// FilterRequestFromQuery reads modes, granularity, start_date and end_date.
func FilterRequestFromQuery(q url.Values) FilterRequest {
	req := FilterRequest{
		Granularity: q.Get("granularity"),
		StartDate:   q.Get("start_date"),
		EndDate:     q.Get("end_date"),
	}
	if modes, ok := q["modes"]; ok {
		req.Modes = append([]string{}, modes...)
	}
	return req
}

// DashboardOptions configures caching and presentation.
type DashboardOptions struct {
	CacheEnabled bool
	CacheSize    int
	CacheTTL     time.Duration
	Presentation presentation.Options
	Metrics      *infrastructure.DashboardMetrics
}

// CacheStats reports the result cache counters.
type CacheStats struct {
	Enabled bool    `json:"enabled"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// DatasetInfo describes the loaded table and the selector choices.
type DatasetInfo struct {
	Source        string                     `json:"source"`
	Records       int                        `json:"records"`
	MinDate       string                     `json:"min_date"`
	MaxDate       string                     `json:"max_date"`
	LoadedAt      time.Time                  `json:"loaded_at"`
	Modes         []ModeOption               `json:"modes"`
	Granularities []domain.GranularityOption `json:"granularities"`
	Defaults      presentation.FilterView    `json:"defaults"`
}

// ModeOption is one entry of the mode checklist.
type ModeOption struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Color    string `json:"color"`
	Selected bool   `json:"selected"`
}

// DashboardService binds the pure pipeline to request handling. Results are
// memoized per normalized filter; cached results are shared and must be treated
// as read-only.
type DashboardService struct {
	dataset *dataprocessing.Dataset
	cache   gcache.Cache
	group   singleflight.Group
	options presentation.Options
	metrics *infrastructure.DashboardMetrics
	csv     *exporter.CSVWriter
	xlsx    *exporter.XLSXWriter
	logger  *slog.Logger
}

// NewDashboardService creates the service over an already loaded dataset.
func NewDashboardService(dataset *dataprocessing.Dataset, opts DashboardOptions, logger *slog.Logger) (*DashboardService, error) {
	if dataset == nil || dataset.Len() == 0 {
		return nil, ErrDatasetUnavailable
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Presentation.PandemicStart.IsZero() {
		opts.Presentation = presentation.DefaultOptions()
	}

	s := &DashboardService{
		dataset: dataset,
		options: opts.Presentation,
		metrics: opts.Metrics,
		csv:     exporter.NewCSVWriter(logger),
		xlsx:    exporter.NewXLSXWriter(logger),
		logger:  logger.With(slog.String("component", "dashboard_service")),
	}

	if opts.CacheEnabled {
		if opts.CacheSize <= 0 {
			return nil, fmt.Errorf("cache size must be positive, got %d", opts.CacheSize)
		}
		builder := gcache.New(opts.CacheSize).LRU()
		if opts.CacheTTL > 0 {
			builder = builder.Expiration(opts.CacheTTL)
		}
		s.cache = builder.Build()
	}

	s.metrics.RecordDatasetSize(context.Background(), dataset.Len())
	s.logger.Info("dashboard service ready",
		slog.Int("records", dataset.Len()),
		slog.Bool("cache_enabled", opts.CacheEnabled),
		slog.Int("cache_size", opts.CacheSize))

	return s, nil
}

// Dataset returns the shared read-only table.
func (s *DashboardService) Dataset() *dataprocessing.Dataset { return s.dataset }

// DefaultFilter is the filter the page opens with.
func (s *DashboardService) DefaultFilter() domain.FilterState {
	return s.dataset.DefaultFilter()
}

// ResolveFilter turns a raw request into a normalized FilterState, filling omitted
// fields with the dashboard defaults. Errors wrap ErrInvalidFilter.
func (s *DashboardService) ResolveFilter(req FilterRequest) (domain.FilterState, error) {
	state := s.DefaultFilter()

	if req.Modes != nil {
		modes, err := domain.ParseModes(req.Modes)
		if err != nil {
			return domain.FilterState{}, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
		}
		state.Modes = modes
	}

	if req.Granularity != "" {
		g, err := domain.ParseGranularity(req.Granularity)
		if err != nil {
			return domain.FilterState{}, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
		}
		state.Granularity = g
	}

	if req.StartDate != "" {
		d, err := domain.ParseDate(req.StartDate)
		if err != nil {
			return domain.FilterState{}, fmt.Errorf("%w: start_date: %v", ErrInvalidFilter, err)
		}
		state.StartDate = d
	}

	if req.EndDate != "" {
		d, err := domain.ParseDate(req.EndDate)
		if err != nil {
			return domain.FilterState{}, fmt.Errorf("%w: end_date: %v", ErrInvalidFilter, err)
		}
		state.EndDate = d
	}

	return state.Normalize(), nil
}

// ParseFilter resolves dashboard query parameters.
func (s *DashboardService) ParseFilter(q url.Values) (domain.FilterState, error) {
	return s.ResolveFilter(FilterRequestFromQuery(q))
}

// Result runs the pipeline for state, serving repeated filters from the cache and
// collapsing concurrent identical requests into one computation.
func (s *DashboardService) Result(ctx context.Context, state domain.FilterState) (domain.PipelineResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.PipelineResult{}, err
	}

	state = state.Normalize()
	key := state.Key()

	if s.cache != nil {
		if cached, err := s.cache.Get(key); err == nil {
			if result, ok := cached.(domain.PipelineResult); ok {
				s.metrics.RecordCacheLookup(ctx, true)
				infrastructure.AddSpanEvent(ctx, "dashboard.cache_hit", attribute.String("filter", key))
				return result, nil
			}
		}
		s.metrics.RecordCacheLookup(ctx, false)
	}

	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		start := time.Now()
		result := s.dataset.Compute(state)
		elapsed := time.Since(start)

		s.metrics.RecordComputation(ctx, string(state.Granularity), elapsed)
		s.logger.DebugContext(ctx, "pipeline computed",
			slog.String("filter", key),
			slog.Int("records", result.RecordCount),
			slog.Int("buckets", result.Absolute.Len()),
			slog.Duration("duration", elapsed))

		if s.cache != nil {
			if err := s.cache.Set(key, result); err != nil {
				s.logger.WarnContext(ctx, "cannot cache result",
					slog.String("filter", key),
					slog.String("error", err.Error()))
			}
		}
		return result, nil
	})
	if err != nil {
		return domain.PipelineResult{}, err
	}
	if shared {
		s.logger.DebugContext(ctx, "pipeline result shared", slog.String("filter", key))
	}
	return v.(domain.PipelineResult), nil
}

// View computes and formats everything the page shows for state.
func (s *DashboardService) View(ctx context.Context, state domain.FilterState) (presentation.DashboardView, error) {
	result, err := s.Result(ctx, state)
	if err != nil {
		return presentation.DashboardView{}, err
	}
	return presentation.BuildView(result, state.Normalize(), s.options), nil
}

// ChartSpec returns the named chart for state.
func (s *DashboardService) ChartSpec(ctx context.Context, state domain.FilterState, chart string) (presentation.ChartSpec, error) {
	build, ok := chartBuilders[chart]
	if !ok {
		return presentation.ChartSpec{}, fmt.Errorf("%w: %q", ErrChartNotFound, chart)
	}
	result, err := s.Result(ctx, state)
	if err != nil {
		return presentation.ChartSpec{}, err
	}
	return build(result, s.options), nil
}

var chartBuilders = map[string]func(domain.PipelineResult, presentation.Options) presentation.ChartSpec{
	ChartArea:       presentation.AreaChart,
	ChartPercentage: presentation.PercentageChart,
}

// RenderChart writes the named chart as a PNG.
func (s *DashboardService) RenderChart(ctx context.Context, state domain.FilterState, chart string, w io.Writer, width, height int) error {
	spec, err := s.ChartSpec(ctx, state, chart)
	if err != nil {
		return err
	}
	if err := presentation.RenderPNG(spec, w, width, height); err != nil {
		err = fmt.Errorf("render %s chart: %w", chart, err)
		infrastructure.RecordError(ctx, err)
		return err
	}
	s.metrics.RecordChartRender(ctx, chart)
	return nil
}

// Export writes the resampled tables for state. CSV carries the selected table,
// XLSX carries both tables and the summary.
func (s *DashboardService) Export(ctx context.Context, state domain.FilterState, format exporter.Format, table exporter.TableKind, w io.Writer) error {
	result, err := s.Result(ctx, state)
	if err != nil {
		return err
	}

	switch format {
	case exporter.FormatCSV:
		err = s.csv.WriteTable(w, table.Select(result), exporter.WriteOptions{})
	case exporter.FormatXLSX:
		err = s.xlsx.Write(w, result)
	default:
		return fmt.Errorf("%w: %q", exporter.ErrUnsupportedFormat, format)
	}
	if err != nil {
		err = fmt.Errorf("export %s: %w", format, err)
		infrastructure.RecordError(ctx, err)
		return err
	}

	s.metrics.RecordExport(ctx, string(format))
	s.logger.InfoContext(ctx, "dashboard exported",
		slog.String("format", string(format)),
		slog.String("table", string(table)),
		slog.String("filter", state.Key()))
	return nil
}

// DatasetInfo describes the table and the default selector state.
func (s *DashboardService) DatasetInfo() DatasetInfo {
	defaults := s.DefaultFilter()
	selected := make(map[domain.Mode]bool, len(defaults.Modes))
	for _, m := range defaults.Modes {
		selected[m] = true
	}

	modes := make([]ModeOption, 0, domain.ModeCount)
	for _, m := range domain.AllModes() {
		modes = append(modes, ModeOption{Key: m.Key(), Label: m.Label(), Color: m.Info().ColorHex, Selected: selected[m]})
	}

	return DatasetInfo{
		Source:        s.dataset.Source(),
		Records:       s.dataset.Len(),
		MinDate:       s.dataset.MinDate().Format(domain.DateLayout),
		MaxDate:       s.dataset.MaxDate().Format(domain.DateLayout),
		LoadedAt:      s.dataset.LoadedAt(),
		Modes:         modes,
		Granularities: domain.Granularities(),
		Defaults:      presentation.BuildView(domain.PipelineResult{}, defaults, s.options).Filter,
	}
}

// CacheStats returns the result cache counters.
func (s *DashboardService) CacheStats() CacheStats {
	if s.cache == nil {
		return CacheStats{}
	}
	return CacheStats{
		Enabled: true,
		Hits:    s.cache.HitCount(),
		Misses:  s.cache.MissCount(),
		HitRate: s.cache.HitRate(),
	}
}
