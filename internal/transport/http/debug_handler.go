package http

import (
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-chi/chi/v5"
)

// DebugHandler dumps internal state as plain text. Mounted in development only.
type DebugHandler struct {
	service DashboardServiceInterface
	dumper  *spew.ConfigState
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(service DashboardServiceInterface) *DebugHandler {
	return &DebugHandler{
		service: service,
		dumper: &spew.ConfigState{
			Indent:                  "  ",
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
			MaxDepth:                6,
		},
	}
}

// Routes returns the debug routes
func (h *DebugHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/dataset", h.Dataset)
	r.Get("/cache", h.Cache)
	r.Get("/dashboard", h.Dashboard)
	return r
}

// Dataset handles GET /debug/dataset
func (h *DebugHandler) Dataset(w http.ResponseWriter, r *http.Request) {
	h.write(w, h.service.DatasetInfo())
}

// Cache handles GET /debug/cache
func (h *DebugHandler) Cache(w http.ResponseWriter, r *http.Request) {
	h.write(w, h.service.CacheStats())
}

// Dashboard handles GET /debug/dashboard, dumping the raw view for the query's filter.
func (h *DebugHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.ParseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, err := h.service.View(r.Context(), state)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.write(w, state, view)
}

func (h *DebugHandler) write(w http.ResponseWriter, values ...interface{}) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	h.dumper.Fdump(w, values...)
}
