package service

import "google.golang.org/genai"

func stringList(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Description: description,
		Items:       &genai.Schema{Type: genai.TypeString},
	}
}

// ComparisonSchema constrains the model to the comparison result shape.
var ComparisonSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"executiveSummary": {
			Type:        genai.TypeString,
			Description: "A very concise (2-4 sentences) overview of the most critical differences or significant unique clauses. " +
				"Highlight substantive issues like financial terms, liability, or scope. If documents are similar, state that.",
		},
		"agreements": stringList("Clauses or points that are substantially the same or convey the same meaning."),
		"disputes":   stringList("Clauses or points that are different, conflicting, or contradictory."),
		"uniqueDoc1": stringList("Significant clauses, provisions, or offerings present in Document 1 but entirely absent from Document 2."),
		"uniqueDoc2": stringList("Significant clauses, provisions, or requirements present in Document 2 but entirely absent from Document 1."),
		"error": {
			Type:        genai.TypeString,
			Description: "An error message if the input documents are not valid for comparison.",
		},
	},
	Required:         []string{"executiveSummary", "agreements", "disputes", "uniqueDoc1", "uniqueDoc2"},
	PropertyOrdering: []string{"executiveSummary", "agreements", "disputes", "uniqueDoc1", "uniqueDoc2", "error"},
}
