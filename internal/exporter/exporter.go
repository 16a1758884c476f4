package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/teozeng1205/brands-compare/internal/errors"
	"github.com/teozeng1205/brands-compare/internal/infrastructure"
)

// Exporter renders sheets in a requested format and records export metrics
type Exporter struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics

	csv  *CSVWriter
	xlsx *XLSXWriter
	pdf  *PDFWriter
	bom  bool
}

// NewExporter creates an exporter. A nil telemetry records nothing.
func NewExporter(logger *slog.Logger, tel *infrastructure.Telemetry) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if tel == nil {
		tel = infrastructure.NoopTelemetry(logger)
	}
	logger = infrastructure.WithComponent(logger, "exporter")
	return &Exporter{
		logger:  logger,
		tracer:  tel.Tracer,
		metrics: tel.Metrics,
		csv:     NewCSVWriter(),
		xlsx:    NewXLSXWriter(),
		pdf:     NewPDFWriter(),
	}
}

// WithCSVBOM makes CSV exports start with a UTF-8 byte order mark
func (e *Exporter) WithCSVBOM(on bool) *Exporter {
	e.bom = on
	return e
}

// Export writes sheet to w in format f. view names the exported page for metrics.
func (e *Exporter) Export(ctx context.Context, w io.Writer, f Format, view string, sheet Sheet) (int64, error) {
	ctx, span := e.tracer.Start(ctx, "exporter.Export",
		trace.WithAttributes(attribute.String("export.view", view), attribute.String("export.format", string(f))))
	defer span.End()

	var (
		n   int64
		err error
	)
	switch f {
	case FormatCSV:
		n, err = e.csv.Write(w, WriteOptions{Headers: sheet.Headers, Records: sheet.Rows, BOMPrefix: e.bom})
	case FormatXLSX:
		n, err = e.xlsx.Write(w, sheet)
	case FormatPDF:
		n, err = e.pdf.Write(w, sheet)
	default:
		err = fmt.Errorf("unknown export format %q", f)
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return n, apperrors.NewExportError(fmt.Sprintf("cannot export %s as %s", view, f), err).
			WithContext("view", view).
			WithContext("format", string(f))
	}

	infrastructure.RecordExport(ctx, e.metrics, view, string(f), n)
	e.logger.DebugContext(ctx, "export written",
		slog.String("view", view),
		slog.String("format", string(f)),
		slog.Int("rows", len(sheet.Rows)),
		slog.Int64("bytes", n))
	return n, nil
}

// ExportFile writes sheet into dir under name and returns the file path
func (e *Exporter) ExportFile(ctx context.Context, dir, name string, f Format, view string, sheet Sheet) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.NewExportError("cannot create output directory", err).WithContext("dir", dir)
	}

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", apperrors.NewExportError("cannot create output file", err).WithContext("file", path)
	}

	_, err = e.Export(ctx, file, f, view, sheet)
	if cerr := file.Close(); err == nil && cerr != nil {
		err = apperrors.NewExportError("cannot close output file", cerr).WithContext("file", path)
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}

	e.logger.InfoContext(ctx, "export file written", slog.String("file", path))
	return path, nil
}
