package model

// ComparisonRequest is the body of POST /api/compare.
// It only lives for the duration of one request and is never persisted.
type ComparisonRequest struct {
	Doc1Text string `json:"doc1Text" validate:"required"`
	Doc2Text string `json:"doc2Text" validate:"required"`
}

// ComparisonResult is the structured comparison of two documents.
// The four list fields are always present; an empty category is an empty slice, never nil.
type ComparisonResult struct {
	ExecutiveSummary string   `json:"executiveSummary"`
	Agreements       []string `json:"agreements"`
	Disputes         []string `json:"disputes"`
	UniqueDoc1       []string `json:"uniqueDoc1"`
	UniqueDoc2       []string `json:"uniqueDoc2"`
	Error            string   `json:"error,omitempty"`
}

// Normalize replaces nil categories with empty slices.
func (r *ComparisonResult) Normalize() {
	if r.Agreements == nil {
		r.Agreements = []string{}
	}
	if r.Disputes == nil {
		r.Disputes = []string{}
	}
	if r.UniqueDoc1 == nil {
		r.UniqueDoc1 = []string{}
	}
	if r.UniqueDoc2 == nil {
		r.UniqueDoc2 = []string{}
	}
}
