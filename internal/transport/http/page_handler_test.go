package http

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "github.com/teozeng1205/brands-compare/internal/errors"
	"github.com/teozeng1205/brands-compare/internal/middleware"
	"github.com/teozeng1205/brands-compare/internal/services"
	"github.com/teozeng1205/brands-compare/internal/shared/testutil"
)

func newPageRouter(t *testing.T, svc DashboardServiceInterface) chi.Router {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	eh := apierrors.NewErrorHandler(logger, false)

	pages, err := NewPageHandler(svc, logger, eh)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/", pages.ServeDashboard)
	return r
}

func TestPageHandler_Pages(t *testing.T) {
	r := newPageRouter(t, fixtureService(t))

	tests := []struct {
		name     string
		target   string
		contains []string
		excludes []string
	}{
		{
			name:   "raw data is the default page",
			target: "/",
			contains: []string{
				`<a href="/?page=raw" class="active">Raw Data</a>`,
				"George Airline Level",
				"<td>Basic Economy</td>",
				"/api/datasets/airline-level/export?format=csv",
			},
		},
		{
			name:   "raw data filtered",
			target: "/?page=raw&dataset=source-level&carrier=BA",
			contains: []string{
				"1 of 5 rows",
				"<td>Economy Light</td>",
				`<option value="BA" selected>BA</option>`,
				"/api/datasets/source-level/export?carrier=BA&amp;format=xlsx",
			},
			excludes: []string{"<td>GDS</td>"},
		},
		{
			name:   "overview",
			target: "/?page=overview",
			contains: []string{
				`<div class="value">990</div>`,
				"<td>DL</td><td class=\"num\">500</td>",
				"AA - GDS",
				"Prices below the 95th percentile",
			},
		},
		{
			name:   "lowest brands",
			target: "/?page=lowest&all=false&airline=AA&airline=UA",
			contains: []string{
				"<td>AA</td><td>Main Cabin</td><td>Basic Economy</td><td>Not Identified</td>",
				`<option value="UA" selected>UA</option>`,
				`<option value="false" selected>no</option>`,
				"/api/lowest-brands/export?airline=AA&amp;airline=UA&amp;all=false&amp;format=pdf",
			},
			excludes: []string{"<td>DL</td>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, tt.target, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

			body := w.Body.String()
			for _, s := range tt.contains {
				assert.Contains(t, body, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, body, s)
			}
		})
	}
}

func TestPageHandler_Errors(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Overview").Return(nil, unavailable())
	svc.On("Datasets").Return(nil, unavailable())

	r := newPageRouter(t, svc)

	w := serve(r, http.MethodGet, "/?page=overview", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Datasets could not be loaded")
	assert.Contains(t, w.Body.String(), "george_airline_level.csv")

	w = serve(r, http.MethodGet, "/?page=raw", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = serve(r, http.MethodGet, "/?page=lowest&order=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "order")
	svc.AssertNotCalled(t, "LowestBrands", mock.Anything)

	w = serve(r, http.MethodGet, "/?page=charts", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFilterValue(t *testing.T) {
	q := services.RawDataQuery{Carrier: "AA"}
	assert.Equal(t, "AA", filterValue(q, services.FilterCarrier))
	assert.Equal(t, "All", filterValue(q, services.FilterSource))
	assert.Equal(t, "All", filterValue(q, "unknown"))
}
