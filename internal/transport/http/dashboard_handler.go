package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "mtapulse/internal/errors"
	"mtapulse/internal/exporter"
	mw "mtapulse/internal/middleware"
	"mtapulse/internal/presentation"
	"mtapulse/pkg/contracts/domain"
)

// Chart image bounds in pixels.
const (
	minChartSize = 200
	maxChartSize = 4096
)

var (
	exportFormats = []string{string(exporter.FormatCSV), string(exporter.FormatXLSX)}
	exportTables  = []string{string(exporter.TableAbsolute), string(exporter.TablePercentage)}
)

// DashboardHandler serves the dashboard JSON, chart images and exports
type DashboardHandler struct {
	service      DashboardServiceInterface
	validation   *mw.ValidationMiddleware
	params       *mw.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validation:   mw.NewValidationMiddleware(logger, errorHandler),
		params:       mw.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/dataset", h.GetDataset)

	r.Group(func(r chi.Router) {
		r.Use(h.validation.ValidateFilterQuery)

		r.Get("/dashboard", h.GetDashboard)
		r.Get("/charts/{chart}", h.GetChart)
		r.Get("/charts/{chart}/png", h.GetChartImage)
		r.Get("/export", h.Export)
	})

	return r
}

// filter resolves the request's filter parameters, writing the error response on
// failure.
func (h *DashboardHandler) filter(w http.ResponseWriter, r *http.Request) (domain.FilterState, bool) {
	state, err := h.service.ParseFilter(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return domain.FilterState{}, false
	}
	return state, true
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	state, ok := h.filter(w, r)
	if !ok {
		return
	}

	view, err := h.service.View(r.Context(), state)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "dashboard served",
		slog.String("request_id", mw.GetReqID(r.Context())),
		slog.String("filter", state.Key()),
		slog.Int("records", view.RecordCount))

	render.JSON(w, r, view)
}

// GetChart handles GET /api/charts/{chart}
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	state, ok := h.filter(w, r)
	if !ok {
		return
	}

	spec, err := h.service.ChartSpec(r.Context(), state, chi.URLParam(r, "chart"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, spec)
}

// GetChartImage handles GET /api/charts/{chart}/png
func (h *DashboardHandler) GetChartImage(w http.ResponseWriter, r *http.Request) {
	width, ok := h.params.ValidateInt(w, r, "width", minChartSize, maxChartSize, presentation.DefaultChartWidth)
	if !ok {
		return
	}
	height, ok := h.params.ValidateInt(w, r, "height", minChartSize, maxChartSize, presentation.DefaultChartHeight)
	if !ok {
		return
	}
	state, ok := h.filter(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.RenderChart(r.Context(), state, chi.URLParam(r, "chart"), &buf, width, height); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Export handles GET /api/export?format=csv|xlsx&table=absolute|percentage
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	rawFormat, ok := h.params.ValidateEnum(w, r, "format", exportFormats, string(exporter.FormatCSV))
	if !ok {
		return
	}
	rawTable, ok := h.params.ValidateEnum(w, r, "table", exportTables, string(exporter.TableAbsolute))
	if !ok {
		return
	}

	format, err := exporter.ParseFormat(rawFormat)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	table, err := exporter.ParseTableKind(rawTable)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	state, ok := h.filter(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), state, format, table, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.Filename(table, state, format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// GetDataset handles GET /api/dataset
func (h *DashboardHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.DatasetInfo())
}
