package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// maxDocxBodySize caps the decompressed size of word/document.xml.
var maxDocxBodySize int64 = 50 << 20

func errBodyTooLarge() error {
	return fmt.Errorf("%s is larger than %d MB", docxBody, maxDocxBodySize>>20)
}

// parseDOCX walks word/document.xml and keeps the text runs. Paragraphs are
// separated by a blank line, tabs and breaks are kept as whitespace.
func parseDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBody {
			body = f
			break
		}
	}
	if body == nil {
		return "", errors.New("missing " + docxBody)
	}
	if body.UncompressedSize64 > uint64(maxDocxBodySize) {
		return "", errBodyTooLarge()
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxBody, err)
	}
	defer rc.Close()

	return limitedDocxText(rc)
}

// limitedDocxText stops reading past maxDocxBodySize whatever the archive header claims.
func limitedDocxText(r io.Reader) (string, error) {
	lr := &io.LimitedReader{R: r, N: maxDocxBodySize + 1}
	text, err := docxText(lr)
	if lr.N <= 0 {
		return "", errBodyTooLarge()
	}
	return text, err
}

func docxText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		b      strings.Builder
		para   strings.Builder
		inText bool
		paras  []string
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", docxBody, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				paras = append(paras, para.String())
				para.Reset()
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	if para.Len() > 0 {
		paras = append(paras, para.String())
	}

	for i, p := range paras {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p)
	}
	return strings.TrimSpace(b.String()), nil
}
