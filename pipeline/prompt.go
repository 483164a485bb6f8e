package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/campusrag/campusrag/rag"
)

// Fixed phrases the templates instruct the model to use verbatim.
const (
	DontKnowPhrase = "I don't know"
	NotFoundPhrase = "Not found in records"
)

const knowledgeTemplate = `Use the following context to answer the question.
If it's small talk, respond naturally and friendly.
Answer in the same language as the question.
If you don't know, say '%s' - do not fabricate.

Context: %s
Question: %s
Answer:`

const chatTemplate = `You are a friendly campus assistant having an open conversation.
Respond naturally, empathetically, and concisely.
Answer in the same language as the message.

Message: %s
Answer:`

const recordTemplate = `Answer strictly using the structured records below.
Answer in the same language as the question.
If the answer is not present in the records, say '%s' - do not guess.

Records: %s
Question: %s
Answer:`

// RenderKnowledge fills the knowledge template with the retrieved
// chunks joined as context.
func RenderKnowledge(question string, chunks []rag.RetrievedChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, chunk.Content)
	}
	return fmt.Sprintf(knowledgeTemplate, DontKnowPhrase, strings.Join(parts, "\n\n"), question)
}

// RenderChat fills the open-conversation template.
func RenderChat(question string) string {
	return fmt.Sprintf(chatTemplate, question)
}

// RenderRecord fills the record template with the dataset serialized as
// JSON. An unserializable dataset degrades to an empty object.
func RenderRecord(question string, data map[string]any) string {
	serialized, err := json.Marshal(data)
	if err != nil {
		serialized = []byte("{}")
	}
	return fmt.Sprintf(recordTemplate, NotFoundPhrase, string(serialized), question)
}

// Render selects and fills the template for the route. Greeting has no
// template; callers must not ask for one.
func Render(route Route, question string, chunks []rag.RetrievedChunk, data map[string]any) string {
	switch route {
	case RouteKnowledge:
		return RenderKnowledge(question, chunks)
	case RouteRecord:
		return RenderRecord(question, data)
	case RouteChat, RouteGreeting:
		return RenderChat(question)
	default:
		return RenderChat(question)
	}
}
