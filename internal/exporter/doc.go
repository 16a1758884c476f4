// Package exporter writes dashboard tables as downloadable files.
//
// This package contains three writers and a dispatcher:
//
// CSVWriter: comma-separated text with a header row, optionally prefixed with
// a UTF-8 BOM for Excel, to any io.Writer or to a file.
//
// XLSXWriter: a single-sheet workbook with a bold header and numeric cells
// typed as numbers.
//
// PDFWriter: a landscape table report that repeats the header on every page.
//
// Exporter picks the writer for a Format and records export metrics.
//
// Example usage:
//
//	exp := exporter.NewExporter(logger, telemetry)
//	sheet := exporter.Sheet{
//	    Title:   "Lowest Brands Comparison",
//	    Headers: domain.ComparisonColumns,
//	    Rows:    rows,
//	}
//	n, err := exp.Export(ctx, w, exporter.FormatCSV, "lowest-brands", sheet)
package exporter
