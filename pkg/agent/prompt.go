package agent

import (
	"customer-service-be/pkg/catalog"
	"customer-service-be/pkg/history"
	"customer-service-be/pkg/llm"
)

const (
	contextHeader = "Catalog reference for the next question (not written by the customer):\n\n"
	noMatchNote   = "Catalog reference for the next question: no matching products were found."
)

// ContextBlock renders search hits as the reference block shown to the model.
// An empty hit list still yields a block so the model knows nothing matched.
func ContextBlock(docs []catalog.ProductDocument) string {
	if len(docs) == 0 {
		return noMatchNote
	}
	return contextHeader + catalog.FormatDocuments(docs)
}

// Compose builds the model input: the system instruction, the stored turns
// oldest first, the optional catalog block, then the new user message.
// It has no side effects.
func Compose(systemPrompt string, past []history.Message, retrievedContext string, userMessage string) []llm.Message {
	out := make([]llm.Message, 0, len(past)+3)
	out = append(out, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})

	for _, m := range past {
		switch m.Role {
		case history.RoleUser:
			out = append(out, llm.Message{Role: llm.RoleUser, Content: m.Content})
		case history.RoleAssistant:
			out = append(out, llm.Message{Role: llm.RoleAssistant, Content: m.Content})
		}
		// system entries are never replayed; the instruction above is the only one
	}

	if retrievedContext != "" {
		out = append(out, llm.Message{Role: llm.RoleUser, Content: retrievedContext})
	}

	out = append(out, llm.Message{Role: llm.RoleUser, Content: userMessage})
	return out
}
