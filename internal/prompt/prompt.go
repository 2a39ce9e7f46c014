// Package prompt renders the comparison instruction sent to the generative model.
package prompt

import "strings"

// SystemPersona is sent as the system instruction of every comparison call.
// The refusal clause keeps the model to formal documents; it is a content guard, not a security boundary.
const SystemPersona = "You are a professional document analysis assistant specializing in legal and formal documents. " +
	"Do not engage in irrelevant, offensive, or inappropriate content. " +
	"If the input does not appear to be a contract, tender, bid, proposal, or similar formal document, " +
	"reply with a JSON object containing an 'error' key explaining the issue."

const instructions = `
You are a meticulous document comparison expert. You will be given the text content of two documents. Your task is to analyze these and provide a clear, concise, and non-repetitive comparison.

Structure your response STRICTLY according to the provided JSON schema.
- "executiveSummary": A concise (2-4 sentences) overview of the most critical differences OR very significant unique clauses.
- "agreements": Identify substantially similar points.
- "disputes": Identify different or conflicting points.
- "uniqueDoc1": Describe significant clauses present in Document 1 but absent in Document 2.
- "uniqueDoc2": Describe significant clauses present in Document 2 but absent in Document 1.

IMPORTANT:
1. Be Concise and Summarize. Do not repeat large blocks of text.
2. A point should only be in ONE category.
3. For any category with no findings, provide an empty array ([]).
4. If the input seems invalid, return a JSON with an 'error' key.
`

// Delimiter brackets each document body inside the prompt.
const Delimiter = "---"

// Prompt is a rendered comparison request.
type Prompt struct {
	System string
	Text   string
}

// Build renders both documents into the fixed instruction block. It is pure:
// the same inputs always produce the same Prompt.
func Build(persona, doc1Text, doc2Text string) Prompt {
	var b strings.Builder
	b.Grow(len(instructions) + len(doc1Text) + len(doc2Text) + 64)
	b.WriteString(instructions)
	writeDocument(&b, "Document 1", doc1Text)
	b.WriteString("\n")
	writeDocument(&b, "Document 2", doc2Text)
	return Prompt{System: persona, Text: b.String()}
}

func writeDocument(b *strings.Builder, title, body string) {
	b.WriteString("\n")
	b.WriteString(title)
	b.WriteString(":\n")
	b.WriteString(Delimiter)
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(Delimiter)
	b.WriteString("\n")
}
