package exporter

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin     = 10.0
	pdfRowHeight  = 6.0
	pdfFontSize   = 8.0
	pdfTitleSize  = 14.0
	pdfFooterSize = 7.0
	pdfCellPad    = 3.0
)

// PDFWriter writes a Sheet as a landscape table report
type PDFWriter struct {
	now func() time.Time
}

// NewPDFWriter creates a new PDF writer
func NewPDFWriter() *PDFWriter {
	return &PDFWriter{now: time.Now}
}

// Write renders sheet into a PDF document written to w
func (p *PDFWriter) Write(w io.Writer, sheet Sheet) (int64, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle(sheet.Title, true)
	pdf.SetCreator("brands-compare", true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	generated := p.now().UTC().Format("2006-01-02 15:04 MST")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont("Helvetica", "I", pdfFooterSize)
		pdf.CellFormat(0, 4, fmt.Sprintf("Generated %s - page %d", generated, pdf.PageNo()),
			"", 0, "R", false, 0, "")
	})

	pdf.SetFont("Helvetica", "", pdfFontSize)
	widths := pdfColumnWidths(pdf, tr, sheet)

	header := func() {
		pdf.SetFont("Helvetica", "B", pdfFontSize)
		pdf.SetFillColor(221, 235, 247)
		for i, h := range sheet.Headers {
			pdf.CellFormat(widths[i], pdfRowHeight, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", pdfFontSize)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", pdfTitleSize)
	pdf.CellFormat(0, 10, tr(sheet.Title), "", 1, "L", false, 0, "")
	header()

	_, pageH := pdf.GetPageSize()
	limit := pageH - pdfMargin - pdfRowHeight
	for _, rec := range sheet.Rows {
		if pdf.GetY()+pdfRowHeight > limit {
			pdf.AddPage()
			header()
		}
		for i := range sheet.Headers {
			text := ""
			if i < len(rec) {
				text = rec[i]
			}
			align := "L"
			if sheet.numeric(i) {
				align = "R"
			}
			pdf.CellFormat(widths[i], pdfRowHeight, tr(text), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	cw := &countingWriter{w: w}
	if err := pdf.Output(cw); err != nil {
		return cw.n, fmt.Errorf("failed to render PDF: %w", err)
	}
	return cw.n, nil
}

// pdfColumnWidths sizes columns to their content and scales them to the page width
func pdfColumnWidths(pdf *gofpdf.Fpdf, tr func(string) string, sheet Sheet) []float64 {
	widths := make([]float64, len(sheet.Headers))
	if len(widths) == 0 {
		return widths
	}

	pdf.SetFont("Helvetica", "B", pdfFontSize)
	for i, h := range sheet.Headers {
		widths[i] = pdf.GetStringWidth(tr(h)) + pdfCellPad
	}
	pdf.SetFont("Helvetica", "", pdfFontSize)
	for _, rec := range sheet.Rows {
		for i := range widths {
			if i < len(rec) {
				widths[i] = max(widths[i], pdf.GetStringWidth(tr(rec[i]))+pdfCellPad)
			}
		}
	}

	pageW, _ := pdf.GetPageSize()
	usable := pageW - 2*pdfMargin
	var total float64
	for _, w := range widths {
		total += w
	}
	if total == 0 {
		return widths
	}
	scale := usable / total
	for i := range widths {
		widths[i] *= scale
	}
	return widths
}
