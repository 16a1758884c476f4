package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teozeng1205/brands-compare/internal/dataprocessing"
	apierrors "github.com/teozeng1205/brands-compare/internal/errors"
	"github.com/teozeng1205/brands-compare/internal/middleware"
	"github.com/teozeng1205/brands-compare/internal/services"
	"github.com/teozeng1205/brands-compare/internal/shared/testutil"
	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Datasets(ctx context.Context) ([]domain.DatasetInfo, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DatasetInfo), args.Error(1)
}

func (m *MockDashboardService) RawData(ctx context.Context, q services.RawDataQuery) (*services.RawDataView, error) {
	args := m.Called(q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RawDataView), args.Error(1)
}

func (m *MockDashboardService) Overview(ctx context.Context) (*domain.Overview, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Overview), args.Error(1)
}

func (m *MockDashboardService) LowestBrands(ctx context.Context, q domain.ComparisonQuery) (*domain.Comparison, error) {
	args := m.Called(q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comparison), args.Error(1)
}

func (m *MockDashboardService) ExportRawData(ctx context.Context, q services.RawDataQuery, format string) (*services.Download, error) {
	args := m.Called(q, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Download), args.Error(1)
}

func (m *MockDashboardService) ExportLowestBrands(ctx context.Context, q domain.ComparisonQuery, format string) (*services.Download, error) {
	args := m.Called(q, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Download), args.Error(1)
}

func newTestRouter(t *testing.T, svc DashboardServiceInterface) chi.Router {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	eh := apierrors.NewErrorHandler(logger, false)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Mount("/api", NewDashboardHandler(svc, logger, eh).Routes())
	return r
}

func fixtureLoader(t *testing.T) *dataprocessing.Loader {
	t.Helper()
	dir := testutil.DatasetDir(t)
	logger, _ := testutil.NewTestLogger(t)
	return dataprocessing.NewLoader(dataprocessing.Files{
		AirlineLevel: filepath.Join(dir, domain.AirlineLevelSchema.FileName),
		SourceLevel:  filepath.Join(dir, domain.SourceLevelSchema.FileName),
		Detections:   filepath.Join(dir, domain.BrandDetectionSchema.FileName),
	}, logger, nil)
}

func fixtureService(t *testing.T) *services.DashboardService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return services.NewDashboardService(fixtureLoader(t), middleware.NewValidator(), nil, logger, nil)
}

func serve(r http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, vs := range header {
		req.Header[k] = vs
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func unavailable() error {
	cause := errors.New("open george_airline_level.csv: no such file or directory")
	return fmt.Errorf("%w: %w", services.ErrDataUnavailable, apierrors.DataUnavailable(cause))
}

func TestDashboardHandler_GetDatasets(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockDashboardService)
		expectedStatus int
		check          func(t *testing.T, body map[string]interface{})
	}{
		{
			name: "catalogue",
			setupMock: func(m *MockDashboardService) {
				m.On("Datasets").Return([]domain.DatasetInfo{
					{ID: domain.DatasetAirlineLevel, Rows: 6},
					{ID: domain.DatasetSourceLevel, Rows: 5},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, float64(2), body["count"])
			},
		},
		{
			name: "data unavailable",
			setupMock: func(m *MockDashboardService) {
				m.On("Datasets").Return(nil, unavailable())
			},
			expectedStatus: http.StatusServiceUnavailable,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, apierrors.TypeDataUnavailable, body["type"])
				assert.Contains(t, body["details"], "george_airline_level.csv")
				assert.NotEmpty(t, body["trace_id"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			tt.setupMock(svc)

			w := serve(newTestRouter(t, svc), http.MethodGet, "/api/datasets", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.check(t, decodeProblem(t, w))
			svc.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_GetRawData(t *testing.T) {
	svc := new(MockDashboardService)
	q := services.RawDataQuery{Dataset: domain.DatasetSourceLevel, Carrier: "AA", Source: "GDS"}
	svc.On("RawData", q).Return(&services.RawDataView{
		Columns:   []string{"carrier", "source", "outbound_fare_family", "ods"},
		Rows:      [][]string{{"AA", "GDS", "Basic Economy", "60"}},
		TotalRows: 1,
		Query:     q,
	}, nil)
	svc.On("RawData", services.RawDataQuery{Dataset: "fares"}).
		Return(nil, fmt.Errorf("%w: %w", services.ErrUnknownDataset, apierrors.DatasetNotFound("fares")))

	r := newTestRouter(t, svc)

	w := serve(r, http.MethodGet, "/api/datasets/source-level?carrier=AA&source=GDS", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view services.RawDataView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 1, view.TotalRows)
	assert.Equal(t, q, view.Query)

	w = serve(r, http.MethodGet, "/api/datasets/fares", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apierrors.TypeDatasetNotFound, decodeProblem(t, w)["type"])

	svc.AssertExpectations(t)
}

func TestComparisonQueryFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    domain.ComparisonQuery
		wantErr string
	}{
		{
			name:  "defaults",
			query: "",
			want:  domain.ComparisonQuery{ShowAll: true, SortBy: domain.CmpAirline, Ascending: true},
		},
		{
			name:  "selection",
			query: "all=false&airline=AA,BA&airline=UA&sort=Teo_Min_Price&order=desc",
			want: domain.ComparisonQuery{
				Airlines: []string{"AA", "BA", "UA"},
				SortBy:   domain.CmpDetectedPrice,
			},
		},
		{
			name:    "bad all",
			query:   "all=maybe",
			wantErr: ParamAll,
		},
		{
			name:    "bad order",
			query:   "order=up",
			wantErr: ParamOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/lowest-brands?"+tt.query, nil)
			got, err := ComparisonQueryFromRequest(req)
			if tt.wantErr != "" {
				var apiErr *apierrors.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, apierrors.CodeInvalidParameter, apiErr.ErrorCode)
				assert.Contains(t, apiErr.Message, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDashboardHandler_LowestBrands(t *testing.T) {
	r := newTestRouter(t, fixtureService(t))

	w := serve(r, http.MethodGet, "/api/lowest-brands?all=false&airline=F9&airline=AA&sort=Teo_Min_Price", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var cmp domain.Comparison
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cmp))
	require.Len(t, cmp.Brands, 2)
	assert.Equal(t, "F9", cmp.Brands[0].Airline)
	assert.Equal(t, "AA", cmp.Brands[1].Airline)

	w = serve(r, http.MethodGet, "/api/lowest-brands?sort=Price", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.TypeValidation, decodeProblem(t, w)["type"])

	w = serve(r, http.MethodGet, "/api/lowest-brands?order=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardHandler_Exports(t *testing.T) {
	r := newTestRouter(t, fixtureService(t))

	tests := []struct {
		name        string
		target      string
		status      int
		contentType string
		fileName    string
		prefix      string
	}{
		{
			name:        "raw csv",
			target:      "/api/datasets/airline-level/export?carrier=AA",
			status:      http.StatusOK,
			contentType: "text/csv; charset=utf-8",
			fileName:    "george_airline_level_filtered.csv",
			prefix:      "carrier,outbound_fare_family,ods\nAA,Basic Economy,100\n",
		},
		{
			name:        "raw xlsx",
			target:      "/api/datasets/brand-detection/export?format=xlsx",
			status:      http.StatusOK,
			contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			fileName:    "teo_brand_analysis_filtered.xlsx",
			prefix:      "PK",
		},
		{
			name:        "comparison csv",
			target:      "/api/lowest-brands/export",
			status:      http.StatusOK,
			contentType: "text/csv; charset=utf-8",
			fileName:    "lowest_brands_full_comparison.csv",
			prefix:      strings.Join(domain.ComparisonColumns, ","),
		},
		{
			name:        "comparison pdf",
			target:      "/api/lowest-brands/export?format=pdf",
			status:      http.StatusOK,
			contentType: "application/pdf",
			fileName:    "lowest_brands_full_comparison.pdf",
			prefix:      "%PDF",
		},
		{
			name:   "raw pdf is not offered",
			target: "/api/datasets/airline-level/export?format=pdf",
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown dataset",
			target: "/api/datasets/fares/export",
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, tt.target, nil)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status != http.StatusOK {
				assert.Empty(t, w.Header().Get("Content-Disposition"))
				return
			}

			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			assert.Equal(t, fmt.Sprintf("attachment; filename=%q", tt.fileName), w.Header().Get("Content-Disposition"))
			assert.True(t, strings.HasPrefix(w.Body.String(), tt.prefix))
			assert.Equal(t, fmt.Sprint(w.Body.Len()), w.Header().Get("Content-Length"))

			etag := w.Header().Get("ETag")
			require.NotEmpty(t, etag)

			cached := serve(r, http.MethodGet, tt.target, http.Header{"If-None-Match": {etag}})
			assert.Equal(t, http.StatusNotModified, cached.Code)
			assert.Zero(t, cached.Body.Len())
		})
	}
}

func TestEtagMatches(t *testing.T) {
	assert.True(t, etagMatches(`"abc"`, `"abc"`))
	assert.True(t, etagMatches(`"x", W/"abc"`, `"abc"`))
	assert.True(t, etagMatches(`*`, `"abc"`))
	assert.False(t, etagMatches(`"abd"`, `"abc"`))
}
