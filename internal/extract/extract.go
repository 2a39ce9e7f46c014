// Package extract pulls plain text out of uploaded .txt, .pdf and .docx files.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"doccompare/internal/model"
)

// ErrUnsupportedType is returned for files whose extension is not .txt, .pdf or .docx.
var ErrUnsupportedType = errors.New("extract: unsupported file type")

// UnsupportedTypeMessage is the user-facing text for ErrUnsupportedType.
const UnsupportedTypeMessage = "Unsupported file type. Please upload a .txt, .pdf, or .docx file."

// Supported formats.
const (
	FormatTXT  = "txt"
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// ParseError reports a file of a supported type that could not be read.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Error parsing %s file: %v", strings.ToUpper(e.Format), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extractor turns an uploaded file into text.
type Extractor interface {
	Extract(filename string, data []byte) (*model.ExtractionResult, error)
}

type parser func(data []byte) (string, error)

type extractor struct {
	parsers map[string]parser
}

// New returns an Extractor for the supported formats.
func New() Extractor {
	return &extractor{parsers: map[string]parser{
		FormatTXT:  parseText,
		FormatPDF:  parsePDF,
		FormatDOCX: parseDOCX,
	}}
}

// Format returns the lower-cased extension of filename without the dot.
func Format(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

func (e *extractor) Extract(filename string, data []byte) (*model.ExtractionResult, error) {
	format := Format(filename)
	parse, ok := e.parsers[format]
	if !ok {
		return nil, ErrUnsupportedType
	}
	text, err := parse(data)
	if err != nil {
		return nil, &ParseError{Format: format, Err: err}
	}
	return &model.ExtractionResult{
		Filename:   filename,
		Format:     format,
		Text:       text,
		Characters: utf8.RuneCountInString(text),
	}, nil
}
