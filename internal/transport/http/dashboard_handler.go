package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "github.com/teozeng1205/brands-compare/internal/errors"
	"github.com/teozeng1205/brands-compare/internal/services"
	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

// Query parameter names
const (
	ParamFormat  = "format"
	ParamAll     = "all"
	ParamAirline = "airline"
	ParamSort    = "sort"
	ParamOrder   = "order"
)

// DashboardHandler serves the dashboard pages as JSON resources
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard API routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/datasets", h.GetDatasets)
	r.Route("/datasets/{dataset}", func(r chi.Router) {
		r.Get("/", h.GetRawData)
		r.Get("/export", h.ExportRawData)
	})

	r.Get("/overview", h.GetOverview)

	r.Get("/lowest-brands", h.GetLowestBrands)
	r.Get("/lowest-brands/export", h.ExportLowestBrands)

	return r
}

// GetDatasets handles GET /api/datasets
func (h *DashboardHandler) GetDatasets(w http.ResponseWriter, r *http.Request) {
	infos, err := h.service.Datasets(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"data":  infos,
		"count": len(infos),
	})
}

// GetRawData handles GET /api/datasets/{dataset}
func (h *DashboardHandler) GetRawData(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.RawData(r.Context(), rawDataQuery(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// ExportRawData handles GET /api/datasets/{dataset}/export
func (h *DashboardHandler) ExportRawData(w http.ResponseWriter, r *http.Request) {
	dl, err := h.service.ExportRawData(r.Context(), rawDataQuery(r), r.URL.Query().Get(ParamFormat))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeDownload(w, r, dl)
}

// GetOverview handles GET /api/overview
func (h *DashboardHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.service.Overview(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, ov)
}

// GetLowestBrands handles GET /api/lowest-brands
func (h *DashboardHandler) GetLowestBrands(w http.ResponseWriter, r *http.Request) {
	q, err := ComparisonQueryFromRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	cmp, err := h.service.LowestBrands(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, cmp)
}

// ExportLowestBrands handles GET /api/lowest-brands/export
func (h *DashboardHandler) ExportLowestBrands(w http.ResponseWriter, r *http.Request) {
	q, err := ComparisonQueryFromRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	dl, err := h.service.ExportLowestBrands(r.Context(), q, r.URL.Query().Get(ParamFormat))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeDownload(w, r, dl)
}

// writeDownload renders dl in memory before any byte of the response is sent
func (h *DashboardHandler) writeDownload(w http.ResponseWriter, r *http.Request, dl *services.Download) {
	w.Header().Set("ETag", dl.ETag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, dl.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	var buf bytes.Buffer
	if _, err := dl.WriteTo(r.Context(), &buf); err != nil {
		w.Header().Del("ETag")
		h.errorHandler.HandleError(w, r, err)
		return
	}

	size := buf.Len()
	w.Header().Set("Content-Type", dl.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(size))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "download interrupted",
			slog.String("file", dl.FileName),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		return
	}

	h.logger.InfoContext(r.Context(), "download served",
		slog.String("file", dl.FileName),
		slog.String("format", string(dl.Format)),
		slog.Int("rows", dl.Rows()),
		slog.Int("bytes", size))
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

func rawDataQuery(r *http.Request) services.RawDataQuery {
	q := r.URL.Query()
	return services.RawDataQuery{
		Dataset: domain.DatasetID(chi.URLParam(r, "dataset")),
		Carrier: q.Get(services.FilterCarrier),
		Source:  q.Get(services.FilterSource),
		Airline: q.Get(services.FilterAirline),
	}
}

// ComparisonQueryFromRequest reads the lowest brands selection from the query
// string. all defaults to true; airline may repeat or hold a comma-separated
// list; sort defaults to Airline and order to asc.
func ComparisonQueryFromRequest(r *http.Request) (domain.ComparisonQuery, error) {
	values := r.URL.Query()
	q := domain.DefaultComparisonQuery()

	if v := values.Get(ParamAll); v != "" {
		all, err := strconv.ParseBool(v)
		if err != nil {
			return q, apierrors.InvalidParameter(ParamAll, err)
		}
		q.ShowAll = all
	}

	for _, v := range values[ParamAirline] {
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				q.Airlines = append(q.Airlines, a)
			}
		}
	}

	if v := values.Get(ParamSort); v != "" {
		q.SortBy = v
	}

	switch order := strings.ToLower(values.Get(ParamOrder)); order {
	case "", "asc":
		q.Ascending = true
	case "desc":
		q.Ascending = false
	default:
		return q, apierrors.InvalidParameter(ParamOrder, fmt.Errorf("must be asc or desc, got %q", order))
	}

	return q, nil
}
