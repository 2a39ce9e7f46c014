package model

import "time"

// Report formats.
const (
	ReportFormatTXT = "txt"
	ReportFormatPDF = "pdf"
)

// ReportRequest asks for a comparison result to be rendered as a downloadable report.
// Document names are the original upload names; they default to Document1/Document2.
type ReportRequest struct {
	Result   ComparisonResult `json:"result"`
	Doc1Name string           `json:"doc1Name"`
	Doc2Name string           `json:"doc2Name"`
	Format   string           `json:"format" validate:"required,oneof=txt pdf"`
}

// PublishedReport describes a report uploaded to object storage.
type PublishedReport struct {
	Key       string    `json:"key"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExtractionResult is the plain text pulled out of an uploaded file.
type ExtractionResult struct {
	Filename   string `json:"filename"`
	Format     string `json:"format"`
	Text       string `json:"text"`
	Characters int    `json:"characters"`
}
