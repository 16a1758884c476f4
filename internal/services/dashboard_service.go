package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/teozeng1205/brands-compare/internal/dataprocessing"
	apperrors "github.com/teozeng1205/brands-compare/internal/errors"
	"github.com/teozeng1205/brands-compare/internal/exporter"
	"github.com/teozeng1205/brands-compare/internal/infrastructure"
	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

// DatasetLoader provides the loaded datasets
type DatasetLoader interface {
	Load(ctx context.Context) (*domain.Datasets, error)
}

// StructValidator validates tagged query structs
type StructValidator interface {
	ValidateStruct(v interface{}) error
}

// Filter parameter names of the raw data views
const (
	FilterCarrier = "carrier"
	FilterSource  = "source"
	FilterAirline = "airline"
)

// Export view names used in metrics and spans
const (
	ViewRawData      = "raw_data"
	ViewLowestBrands = "lowest_brands"
)

// RawDataQuery selects a dataset and filters it. Filters a dataset does not
// have are ignored; empty or "All" keeps every row.
type RawDataQuery struct {
	Dataset domain.DatasetID `json:"dataset" validate:"required"`
	Carrier string           `json:"carrier,omitempty" validate:"max=128"`
	Source  string           `json:"source,omitempty" validate:"max=128"`
	Airline string           `json:"airline,omitempty" validate:"max=128"`
}

// RawDataView is one filtered dataset page
type RawDataView struct {
	Info      domain.DatasetInfo  `json:"info"`
	Columns   []string            `json:"columns"`
	Rows      [][]string          `json:"rows"`
	TotalRows int                 `json:"total_rows"`
	Filters   map[string][]string `json:"filters"`
	Query     RawDataQuery        `json:"query"`
}

// Download is an export ready to be written
type Download struct {
	FileName string
	Format   exporter.Format
	ETag     string

	view     string
	sheet    exporter.Sheet
	exporter *exporter.Exporter
}

// NewDownload creates a download of sheet rendered by exp
func NewDownload(fileName string, f exporter.Format, etag, view string, sheet exporter.Sheet, exp *exporter.Exporter) *Download {
	return &Download{FileName: fileName, Format: f, ETag: etag, view: view, sheet: sheet, exporter: exp}
}

// ContentType returns the MIME type of the download
func (d *Download) ContentType() string {
	return d.Format.ContentType()
}

// Rows returns the number of data rows in the download
func (d *Download) Rows() int {
	return len(d.sheet.Rows)
}

// WriteTo renders the download into w
func (d *Download) WriteTo(ctx context.Context, w io.Writer) (int64, error) {
	return d.exporter.Export(ctx, w, d.Format, d.view, d.sheet)
}

// DashboardService answers the dashboard page queries
type DashboardService struct {
	loader     DatasetLoader
	validator  StructValidator
	summarizer *dataprocessing.Summarizer
	reconciler *dataprocessing.Reconciler
	exporter   *exporter.Exporter
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewDashboardService creates a dashboard service. A nil validator accepts
// every query and a nil exporter gets a default one.
func NewDashboardService(loader DatasetLoader, validator StructValidator, exp *exporter.Exporter, logger *slog.Logger, tel *infrastructure.Telemetry) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if tel == nil {
		tel = infrastructure.NoopTelemetry(logger)
	}
	if exp == nil {
		exp = exporter.NewExporter(logger, tel)
	}
	return &DashboardService{
		loader:     loader,
		validator:  validator,
		summarizer: dataprocessing.NewSummarizer(logger, tel),
		reconciler: dataprocessing.NewReconciler(logger, tel),
		exporter:   exp,
		logger:     infrastructure.WithComponent(logger, "dashboard_service"),
		tracer:     tel.Tracer,
	}
}

// Datasets returns the catalogue of loaded datasets in display order
func (s *DashboardService) Datasets(ctx context.Context) ([]domain.DatasetInfo, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DatasetInfo, 0, len(domain.AllDatasets))
	for _, id := range domain.AllDatasets {
		out = append(out, datasetInfo(ds, id))
	}
	return out, nil
}

// RawData returns the filtered rows of one dataset with its filter options
func (s *DashboardService) RawData(ctx context.Context, q RawDataQuery) (*RawDataView, error) {
	ctx, span := s.tracer.Start(ctx, "services.RawData",
		trace.WithAttributes(attribute.String("dataset", string(q.Dataset))))
	defer span.End()

	ds, err := s.prepareRaw(ctx, q)
	if err != nil {
		return nil, err
	}

	view := rawView(ds, q)
	span.SetAttributes(attribute.Int("rows", view.TotalRows))
	return view, nil
}

// Overview returns the headline metrics and per-dataset summaries
func (s *DashboardService) Overview(ctx context.Context) (*domain.Overview, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	ov := s.summarizer.Overview(ctx, ds)
	return &ov, nil
}

// LowestBrands reconciles every airline and applies q to the result
func (s *DashboardService) LowestBrands(ctx context.Context, q domain.ComparisonQuery) (*domain.Comparison, error) {
	if err := s.validate(q); err != nil {
		return nil, err
	}

	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.compare(ctx, ds, q), nil
}

// ExportRawData prepares a download of a filtered dataset view
func (s *DashboardService) ExportRawData(ctx context.Context, q RawDataQuery, format string) (*Download, error) {
	f, err := parseFormat(format, exporter.TableFormats)
	if err != nil {
		return nil, err
	}

	ds, err := s.prepareRaw(ctx, q)
	if err != nil {
		return nil, err
	}

	view := rawView(ds, q)
	schema, _ := domain.SchemaFor(q.Dataset)

	sheet := exporter.Sheet{
		Title:   schema.Title,
		Headers: view.Columns,
		Rows:    view.Rows,
		Numeric: exporter.NumericColumns(schema, view.Columns),
	}
	return NewDownload(exporter.DatasetFileName(q.Dataset, f), f, etag(ds), ViewRawData, sheet, s.exporter), nil
}

// ExportLowestBrands prepares a download of the full comparison selected by q
func (s *DashboardService) ExportLowestBrands(ctx context.Context, q domain.ComparisonQuery, format string) (*Download, error) {
	f, err := parseFormat(format, exporter.ComparisonFormats)
	if err != nil {
		return nil, err
	}

	if err := s.validate(q); err != nil {
		return nil, err
	}

	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	cmp := s.compare(ctx, ds, q)
	rows := make([][]string, len(cmp.Rows))
	for i, r := range cmp.Rows {
		rows[i] = r.Cells()
	}

	sheet := exporter.Sheet{
		Title:   "Lowest Brands Comparison",
		Headers: domain.ComparisonColumns,
		Rows:    rows,
		Numeric: exporter.ComparisonNumeric(),
	}
	return NewDownload(exporter.FileName(exporter.ComparisonFileName, f), f, etag(ds), ViewLowestBrands, sheet, s.exporter), nil
}

// prepareRaw validates q and loads the datasets it reads
func (s *DashboardService) prepareRaw(ctx context.Context, q RawDataQuery) (*domain.Datasets, error) {
	if err := s.validate(q); err != nil {
		return nil, err
	}
	if !q.Dataset.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrUnknownDataset, apperrors.DatasetNotFound(string(q.Dataset)))
	}
	return s.load(ctx)
}

func (s *DashboardService) compare(ctx context.Context, ds *domain.Datasets, q domain.ComparisonQuery) *domain.Comparison {
	all := s.reconciler.Reconcile(ctx, ds)
	rows := dataprocessing.ApplyQuery(all, q)

	universe := make([]string, len(all))
	for i, r := range all {
		universe[i] = r.Airline
	}
	brands := make([]domain.BrandRow, len(rows))
	for i, r := range rows {
		brands[i] = r.Brands()
	}
	return &domain.Comparison{Universe: universe, Rows: rows, Brands: brands, Query: q}
}

func (s *DashboardService) load(ctx context.Context) (*domain.Datasets, error) {
	ds, err := s.loader.Load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "datasets unavailable", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, apperrors.DataUnavailable(err))
	}
	return ds, nil
}

func (s *DashboardService) validate(q interface{}) error {
	if s.validator == nil {
		return nil
	}
	if err := s.validator.ValidateStruct(q); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return nil
}

func parseFormat(name string, offered []exporter.Format) (exporter.Format, error) {
	f, err := exporter.ParseFormat(name)
	if err != nil || !exporter.Supports(offered, f) {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedFormat,
			apperrors.UnsupportedFormat(name, exporter.FormatNames(offered)))
	}
	return f, nil
}

// etag is the strong validator of every export derived from ds
func etag(ds *domain.Datasets) string {
	return `"` + ds.Fingerprint + `"`
}

func rawView(ds *domain.Datasets, q RawDataQuery) *RawDataView {
	view := &RawDataView{Info: datasetInfo(ds, q.Dataset), Query: q}
	switch q.Dataset {
	case domain.DatasetAirlineLevel:
		t := dataprocessing.FilterAirlineLevel(ds.AirlineLevel, q.Carrier)
		view.Columns, view.Rows = ds.AirlineLevel.Columns, t.CellRows()
		view.Filters = map[string][]string{
			FilterCarrier: dataprocessing.FilterOptions(dataprocessing.Carriers(ds.AirlineLevel)),
		}
	case domain.DatasetSourceLevel:
		t := dataprocessing.FilterSourceLevel(ds.SourceLevel, q.Carrier, q.Source)
		view.Columns, view.Rows = ds.SourceLevel.Columns, t.CellRows()
		view.Filters = map[string][]string{
			FilterCarrier: dataprocessing.FilterOptions(dataprocessing.SourceCarriers(ds.SourceLevel)),
			FilterSource:  dataprocessing.FilterOptions(dataprocessing.Sources(ds.SourceLevel)),
		}
	case domain.DatasetBrandDetection:
		t := dataprocessing.FilterDetections(ds.Detections, q.Airline)
		view.Columns, view.Rows = ds.Detections.Columns, t.CellRows()
		view.Filters = map[string][]string{
			FilterAirline: dataprocessing.FilterOptions(dataprocessing.Airlines(ds.Detections)),
		}
	}
	if view.Rows == nil {
		view.Rows = [][]string{}
	}
	view.TotalRows = len(view.Rows)
	return view
}

func datasetInfo(ds *domain.Datasets, id domain.DatasetID) domain.DatasetInfo {
	schema, _ := domain.SchemaFor(id)
	info := domain.DatasetInfo{
		ID:          id,
		Title:       schema.Title,
		Description: schema.Description,
		FileName:    schema.FileName,
		LoadedAt:    ds.LoadedAt,
	}
	switch id {
	case domain.DatasetAirlineLevel:
		info.Rows, info.Columns = ds.AirlineLevel.Len(), ds.AirlineLevel.Columns
		info.Filters = []string{FilterCarrier}
	case domain.DatasetSourceLevel:
		info.Rows, info.Columns = ds.SourceLevel.Len(), ds.SourceLevel.Columns
		info.Filters = []string{FilterCarrier, FilterSource}
	case domain.DatasetBrandDetection:
		info.Rows, info.Columns = ds.Detections.Len(), ds.Detections.Columns
		info.Filters = []string{FilterAirline}
	}
	return info
}
