package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"doccompare/internal/model"
)

const (
	pdfMargin     = 15.0
	pdfLineHeight = 5.0
)

// RenderPDF renders the A4 report. Text is translated to the core-font code page;
// characters outside it are replaced.
func RenderPDF(res model.ComparisonResult, doc1Name, doc2Name string, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetCreationDate(now)
	pdf.SetTitle("Contract Comparison Report", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Contract Comparison Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Document 1: "+doc1Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Document 2: "+doc2Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Report Generated: "+now.Format(generatedLayout), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	addSection := func(title, body string, summary bool) {
		size, gap := 14.0, 7.0
		if summary {
			size, gap = 12.0, 6.0
		}
		pdf.SetFont("Helvetica", "B", size)
		pdf.CellFormat(0, gap, tr(title), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, pdfLineHeight, tr(body), "", "L", false)
		pdf.Ln(gap)
	}

	if strings.TrimSpace(res.ExecutiveSummary) != "" {
		addSection("Executive Summary", res.ExecutiveSummary, true)
	}
	for _, s := range sections(res, doc1Name, doc2Name, false) {
		addSection(s.title, s.body, false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
