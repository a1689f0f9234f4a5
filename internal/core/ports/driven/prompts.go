package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswerSystem is the system instruction for answer synthesis.
	// This prompt has no format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser frames the documents and the question.
	// The template expects %s (documents) and %s (query) placeholders.
	PromptAnswerUser = "answer_user"
)

// DefaultPrompts holds the built-in template for every well-known prompt.
// Prompt stores fall back to these; services use them when no store is set.
var DefaultPrompts = map[string]string{
	PromptAnswerSystem: `You are a helpful document analysis assistant.
Answer the user's specific question using only the documents provided.
Do not summarise all of the documents unless the user explicitly asks for a summary.
If quoting directly, mention which document the quote is from.
Keep the answer under 300 words and use natural language suitable for text-to-speech.`,

	PromptAnswerUser: `Here are the relevant documents:

%s
Based on the documents provided, give a clear, concise answer to this question: "%s"`,
}
