// Package report renders a comparison result as a downloadable TXT or PDF report.
package report

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"doccompare/internal/model"
)

// ErrUnsupportedFormat is returned for formats other than txt and pdf.
var ErrUnsupportedFormat = errors.New("unsupported report format")

const (
	defaultDoc1Name = "Document1"
	defaultDoc2Name = "Document2"
	rule            = "----------------------------------------"
	banner          = "========================================"
	generatedLayout = "1/2/2006, 3:04:05 PM"
)

// Document is a rendered report ready to be sent or stored.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Options carries the document names and the generation time.
type Options struct {
	Doc1Name string
	Doc2Name string
	Now      time.Time
}

func (o Options) names() (string, string) {
	d1, d2 := o.Doc1Name, o.Doc2Name
	if strings.TrimSpace(d1) == "" {
		d1 = defaultDoc1Name
	}
	if strings.TrimSpace(d2) == "" {
		d2 = defaultDoc2Name
	}
	return d1, d2
}

// Render produces the report in the requested format.
func Render(res model.ComparisonResult, format string, opt Options) (*Document, error) {
	d1, d2 := opt.names()
	switch strings.ToLower(format) {
	case model.ReportFormatTXT:
		return &Document{
			Filename:    Filename(d1, d2, model.ReportFormatTXT, opt.Now),
			ContentType: "text/plain; charset=utf-8",
			Body:        RenderText(res, d1, d2, opt.Now),
		}, nil
	case model.ReportFormatPDF:
		body, err := RenderPDF(res, d1, d2, opt.Now)
		if err != nil {
			return nil, err
		}
		return &Document{
			Filename:    Filename(d1, d2, model.ReportFormatPDF, opt.Now),
			ContentType: "application/pdf",
			Body:        body,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

var (
	unsafeChars = regexp.MustCompile(`[^\w\s.-]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// Filename builds Comparison_<doc1>_vs_<doc2>_<YYYY-MM-DD>.<ext> from the upload names.
func Filename(doc1Name, doc2Name, ext string, now time.Time) string {
	return fmt.Sprintf("Comparison_%s_vs_%s_%s.%s",
		sanitize(stem(doc1Name)), sanitize(stem(doc2Name)), now.UTC().Format("2006-01-02"), ext)
}

func stem(name string) string {
	if s := strings.TrimSuffix(name, path.Ext(name)); s != "" {
		return s
	}
	return name
}

func sanitize(name string) string {
	return whitespace.ReplaceAllString(unsafeChars.ReplaceAllString(name, ""), "_")
}

// sectionText joins list items one per line, or returns def when there is nothing to show.
func sectionText(items []string, def string) string {
	joined := strings.Join(items, "\n")
	if strings.TrimSpace(joined) == "" {
		return def
	}
	return joined
}

type section struct {
	title string
	body  string
}

func sections(res model.ComparisonResult, d1, d2 string, upper bool) []section {
	title := func(s string) string {
		if upper {
			return strings.ToUpper(s)
		}
		return s
	}
	return []section{
		{title("Agreements"), sectionText(res.Agreements, "No specific agreements found.")},
		{title("Disputes / Differences"), sectionText(res.Disputes, "No specific disputes or differences found.")},
		{title("Unique to ") + title(d1), sectionText(res.UniqueDoc1, "No specific unique clauses found in "+d1+".")},
		{title("Unique to ") + title(d2), sectionText(res.UniqueDoc2, "No specific unique clauses found in "+d2+".")},
	}
}

// RenderText renders the plain-text report.
func RenderText(res model.ComparisonResult, doc1Name, doc2Name string, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("CONTRACT COMPARISON REPORT\n")
	b.WriteString(banner + "\n")
	b.WriteString("Document 1: " + doc1Name + "\n")
	b.WriteString("Document 2: " + doc2Name + "\n")
	b.WriteString("Report Generated: " + now.Format(generatedLayout) + "\n")
	b.WriteString(banner + "\n\n")

	if strings.TrimSpace(res.ExecutiveSummary) != "" {
		b.WriteString("EXECUTIVE SUMMARY:\n" + rule + "\n")
		b.WriteString(res.ExecutiveSummary + "\n\n")
	}
	for _, s := range sections(res, doc1Name, doc2Name, true) {
		b.WriteString(s.title + ":\n" + rule + "\n")
		b.WriteString(s.body + "\n\n")
	}
	return []byte(b.String())
}
