package chat

import (
	"strings"

	"github.com/paperchat/paperchat/internal/domain/chatModel"
	"github.com/paperchat/paperchat/internal/domain/docModel"
)

const systemPrompt = "Use the following pieces of context (or previous conversation if needed) to answer the users question in markdown format."

// buildUserPrompt assembles the single user turn sent to the model: prior
// conversation, then the retrieved chunks in retrieval order, then the
// question. History must already be in ascending creation order.
func buildUserPrompt(history []chatModel.Message, chunks []docModel.ScoredChunk, question string) string {
	var b strings.Builder

	b.WriteString("Use the following pieces of context (or previous conversation if needed) to answer the users question in markdown format.\n")
	b.WriteString("If you don't know the answer, just say that you don't know, don't try to make up an answer.\n")

	b.WriteString("\n----------------\n\n")
	b.WriteString("PREVIOUS CONVERSATION:\n")
	for _, msg := range history {
		if msg.IsUserMessage {
			b.WriteString("User: ")
		} else {
			b.WriteString("Assistant: ")
		}
		b.WriteString(msg.Text)
		b.WriteString("\n")
	}

	b.WriteString("\n----------------\n\n")
	b.WriteString("CONTEXT:\n")
	for i, chunk := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(chunk.Text)
	}

	b.WriteString("\n\nUSER INPUT: ")
	b.WriteString(question)
	return b.String()
}
