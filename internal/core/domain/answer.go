package domain

// SynthesisMode records how an answer was produced.
type SynthesisMode string

// Synthesis modes.
const (
	// SynthesisLLM means the language model wrote the answer.
	SynthesisLLM SynthesisMode = "llm"

	// SynthesisExtractive means the answer quotes the documents directly.
	SynthesisExtractive SynthesisMode = "extractive"

	// SynthesisKnowledge means no documents matched and the answer came
	// from the static knowledge table.
	SynthesisKnowledge SynthesisMode = "knowledge"

	// SynthesisNone means nothing was found.
	SynthesisNone SynthesisMode = "none"
)

// NormalizedQuery is the search form of a question.
type NormalizedQuery struct {
	// Terms is the search string handed to connectors. Never empty
	// unless the original query was empty.
	Terms string

	// Entity is the canonical knowledge-table name when the query
	// matched one, otherwise "".
	Entity string

	// Strategy names the normalisation step that produced Terms.
	Strategy string
}

// Answer is the outcome of one question.
type Answer struct {
	// RequestID identifies the query in logs.
	RequestID string

	// Query is the question as asked.
	Query string

	// Terms are the normalised search terms.
	Terms string

	// User is the canonical user name.
	User string

	// Text is the answer shown or spoken to the user.
	Text string

	// Mode is how Text was produced.
	Mode SynthesisMode

	// AIEnabled records whether a language model was configured, even
	// when this answer fell back to extraction.
	AIEnabled bool

	// Documents are the ranked documents the answer was built from.
	Documents []Document
}
