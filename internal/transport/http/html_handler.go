package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apierrors "mtapulse/internal/errors"
	"mtapulse/internal/presentation"
	"mtapulse/internal/services"
	"mtapulse/pkg/contracts"
)

// IndexTemplate is the page template inside the frontend filesystem.
const IndexTemplate = "index.html"

// PageData is the data handed to the page template.
type PageData struct {
	Title           string
	Heading         string
	TrendsHeading   string
	RecoveryHeading string
	Tooltips        ControlTooltips
	Version         string
	Dataset         services.DatasetInfo
	View            presentation.DashboardView
}

// ControlTooltips are the hover texts of the three filter controls.
type ControlTooltips struct {
	Modes       string
	Granularity string
	DateRange   string
}

// PageHandler renders the dashboard page and serves its static assets. The first
// render is server side so the page shows the cards before the socket connects.
type PageHandler struct {
	service      DashboardServiceInterface
	tmpl         *template.Template
	static       fs.FS
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPageHandler parses the page template from frontend. Assets are served from
// the static directory of frontend when it exists.
func NewPageHandler(service DashboardServiceInterface, frontend fs.FS, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) (*PageHandler, error) {
	if frontend == nil {
		return nil, fmt.Errorf("frontend filesystem is required")
	}

	tmpl, err := template.New(IndexTemplate).Funcs(template.FuncMap{
		"join":     strings.Join,
		"contains": slices.Contains[[]string, string],
		"query":    filterQuery,
	}).ParseFS(frontend, IndexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}

	static, err := fs.Sub(frontend, "static")
	if err != nil {
		return nil, fmt.Errorf("open static assets: %w", err)
	}

	return &PageHandler{
		service:      service,
		tmpl:         tmpl,
		static:       static,
		logger:       logger.With(slog.String("handler", "page")),
		errorHandler: errorHandler,
	}, nil
}

// Routes registers the page and the asset tree.
func (h *PageHandler) Routes(r chi.Router) {
	r.Get("/", h.ServePage)
	r.Route("/static", func(r chi.Router) {
		r.Use(middleware.SetHeader("Cache-Control", "public, max-age=3600"))
		r.Handle("/*", http.StripPrefix("/static", http.FileServer(http.FS(h.static))))
	})
}

// ServePage handles GET /. Filter query parameters preselect the controls.
func (h *PageHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.ParseFilter(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.View(r.Context(), state)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data := PageData{
		Title:           presentation.AppTitle,
		Heading:         presentation.DashboardHeading,
		TrendsHeading:   presentation.TrendsHeading,
		RecoveryHeading: presentation.RecoveryHeading,
		Tooltips: ControlTooltips{
			Modes:       presentation.ModesTooltip,
			Granularity: presentation.GranularityTooltip,
			DateRange:   presentation.DateRangeTooltip,
		},
		Version:         contracts.Version,
		Dataset:         h.service.DatasetInfo(),
		View:            view,
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "page render failed", slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// filterQuery renders a filter as the query string the API endpoints accept.
func filterQuery(f presentation.FilterView) template.URL {
	q := url.Values{}
	q.Set("modes", strings.Join(f.Modes, ","))
	q.Set("granularity", string(f.Granularity))
	if f.StartDate != "" {
		q.Set("start_date", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("end_date", f.EndDate)
	}
	return template.URL(q.Encode())
}
