package http

import (
	"context"

	"github.com/teozeng1205/brands-compare/internal/services"
	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

// DashboardServiceInterface defines the page queries behind the dashboard
type DashboardServiceInterface interface {
	Datasets(ctx context.Context) ([]domain.DatasetInfo, error)
	RawData(ctx context.Context, q services.RawDataQuery) (*services.RawDataView, error)
	Overview(ctx context.Context) (*domain.Overview, error)
	LowestBrands(ctx context.Context, q domain.ComparisonQuery) (*domain.Comparison, error)
	ExportRawData(ctx context.Context, q services.RawDataQuery, format string) (*services.Download, error)
	ExportLowestBrands(ctx context.Context, q domain.ComparisonQuery, format string) (*services.Download, error)
}
