package ollama

import "fmt"

// buildAnswerPrompt instructs the model to answer only from the
// supplied documents and cite them by their context labels
// ("Document 1", "Document 2", ...), matching what the assembler
// rendered.
func buildAnswerPrompt(promptContext, question string) string {
	return fmt.Sprintf(`You are an assistant for NDIS pricing and claiming questions.
Answer the question using only the documents below.
Cite the documents you relied on by their labels, e.g. (Document 1).
Quote price limits exactly as written; never round or estimate them.
If the documents do not answer the question, say so directly.

Documents:
%s

Question:
%s
`, promptContext, question)
}
