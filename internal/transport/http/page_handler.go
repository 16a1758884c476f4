package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	apierrors "github.com/teozeng1205/brands-compare/internal/errors"
	"github.com/teozeng1205/brands-compare/internal/exporter"
	"github.com/teozeng1205/brands-compare/internal/services"
	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Dashboard pages selected by the page query parameter
const (
	PageRaw      = "raw"
	PageOverview = "overview"
	PageLowest   = "lowest"
)

// ParamPage selects the dashboard page
const ParamPage = "page"

type navItem struct {
	Page   string
	Label  string
	Active bool
}

type exportLink struct {
	Format string
	URL    string
}

type pageData struct {
	Title string
	Page  string
	Nav   []navItem
	Error *apierrors.ProblemDetails

	Datasets []domain.DatasetInfo
	Dataset  domain.DatasetID
	Raw      *services.RawDataView

	Overview *domain.Overview

	Comparison *domain.Comparison
	SortKeys   []string
	Selected   map[string]bool

	Exports []exportLink
}

// PageHandler renders the server-side HTML dashboard
type PageHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	tmpl         *template.Template
}

// NewPageHandler parses the embedded templates and creates a page handler
func NewPageHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) (*PageHandler, error) {
	printer := message.NewPrinter(language.English)
	funcs := template.FuncMap{
		"count":   func(n int64) string { return printer.Sprintf("%d", n) },
		"percent": func(f float64) string { return printer.Sprintf("%.1f%%", f) },
		"share":   func(f float64) string { return printer.Sprintf("%.1f%%", f*100) },
		"decimal": func(f float64) string { return printer.Sprintf("%.2f", f) },
		"price": func(p *float64) string {
			if p == nil {
				return ""
			}
			return printer.Sprintf("%.2f", *p)
		},
		"filterValue": filterValue,
	}

	tmpl, err := template.New("dashboard").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse dashboard templates: %w", err)
	}

	return &PageHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "page_handler")),
		errorHandler: errorHandler,
		tmpl:         tmpl,
	}, nil
}

// ServeDashboard handles GET /
func (h *PageHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get(ParamPage)
	if page == "" {
		page = PageRaw
	}

	data := &pageData{Page: page, Nav: navigation(page)}
	var err error
	switch page {
	case PageRaw:
		data.Title = "Raw Data"
		err = h.rawPage(r, data)
	case PageOverview:
		data.Title = "Overview"
		data.Overview, err = h.service.Overview(r.Context())
	case PageLowest:
		data.Title = "Lowest Brands"
		err = h.lowestPage(r, data)
	default:
		h.errorHandler.NotFound(w, r)
		return
	}

	status := http.StatusOK
	if err != nil {
		data.Error = h.errorHandler.ErrorToProblem(err, r)
		status = data.Error.Status
		h.logger.WarnContext(r.Context(), "dashboard page failed",
			slog.String("page", page),
			slog.Int("status", status),
			slog.String("error", err.Error()))
	}

	h.render(w, r, status, data)
}

func (h *PageHandler) rawPage(r *http.Request, data *pageData) error {
	datasets, err := h.service.Datasets(r.Context())
	if err != nil {
		return err
	}
	data.Datasets = datasets

	values := r.URL.Query()
	q := services.RawDataQuery{
		Dataset: domain.DatasetID(values.Get("dataset")),
		Carrier: values.Get(services.FilterCarrier),
		Source:  values.Get(services.FilterSource),
		Airline: values.Get(services.FilterAirline),
	}
	if q.Dataset == "" {
		q.Dataset = domain.DatasetAirlineLevel
	}
	data.Dataset = q.Dataset

	view, err := h.service.RawData(r.Context(), q)
	if err != nil {
		return err
	}
	data.Raw = view

	params := url.Values{}
	for _, name := range view.Info.Filters {
		if v := values.Get(name); v != "" {
			params.Set(name, v)
		}
	}
	data.Exports = exportLinks("/api/datasets/"+url.PathEscape(string(q.Dataset))+"/export", params, exporter.TableFormats)
	return nil
}

func (h *PageHandler) lowestPage(r *http.Request, data *pageData) error {
	data.SortKeys = domain.ComparisonSortKeys

	q, err := ComparisonQueryFromRequest(r)
	if err != nil {
		return err
	}

	cmp, err := h.service.LowestBrands(r.Context(), q)
	if err != nil {
		return err
	}
	data.Comparison = cmp
	data.Selected = make(map[string]bool, len(cmp.Rows))
	if !q.ShowAll {
		for _, row := range cmp.Rows {
			data.Selected[row.Airline] = true
		}
	}

	params := url.Values{}
	for _, key := range []string{ParamAll, ParamAirline, ParamSort, ParamOrder} {
		if vs, ok := r.URL.Query()[key]; ok {
			params[key] = vs
		}
	}
	data.Exports = exportLinks("/api/lowest-brands/export", params, exporter.ComparisonFormats)
	return nil
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, data *pageData) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "dashboard", data); err != nil {
		h.logger.ErrorContext(r.Context(), "template execution failed",
			slog.String("page", data.Page),
			slog.String("error", err.Error()))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// filterValue returns the selected option of a raw data filter
func filterValue(q services.RawDataQuery, name string) string {
	var v string
	switch name {
	case services.FilterCarrier:
		v = q.Carrier
	case services.FilterSource:
		v = q.Source
	case services.FilterAirline:
		v = q.Airline
	}
	if v == "" {
		return domain.AllFilterValue
	}
	return v
}

func navigation(active string) []navItem {
	items := []navItem{
		{Page: PageRaw, Label: "Raw Data"},
		{Page: PageOverview, Label: "Overview"},
		{Page: PageLowest, Label: "Lowest Brands"},
	}
	for i := range items {
		items[i].Active = items[i].Page == active
	}
	return items
}

func exportLinks(path string, params url.Values, formats []exporter.Format) []exportLink {
	out := make([]exportLink, len(formats))
	for i, f := range formats {
		q := url.Values{}
		for k, v := range params {
			q[k] = v
		}
		q.Set(ParamFormat, string(f))
		out[i] = exportLink{Format: string(f), URL: path + "?" + q.Encode()}
	}
	return out
}
