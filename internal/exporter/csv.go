package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct{}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // UTF-8 BOM for Excel
}

// Write writes the header and records to w and returns the number of bytes written
func (c *CSVWriter) Write(w io.Writer, options WriteOptions) (int64, error) {
	cw := &countingWriter{w: w}

	if options.BOMPrefix {
		if _, err := cw.Write(utf8BOM); err != nil {
			return cw.n, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(cw)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return cw.n, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return cw.n, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return cw.n, writer.Error()
}

// WriteTableCSV writes a header row and records as plain comma-separated text
func WriteTableCSV(w io.Writer, headers []string, records [][]string) (int64, error) {
	return NewCSVWriter().Write(w, WriteOptions{Headers: headers, Records: records})
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
