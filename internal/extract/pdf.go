package extract

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var spaceRun = regexp.MustCompile(`\s+`)

// parsePDF returns the plain text of every page, whitespace collapsed,
// pages separated by a blank line.
func parsePDF(data []byte) (text string, err error) {
	// the reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	if r.NumPage() == 0 {
		return "", errors.New("document has no pages")
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(strings.TrimSpace(spaceRun.ReplaceAllString(content, " ")))
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String()), nil
}
