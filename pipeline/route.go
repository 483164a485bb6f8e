// Package pipeline implements the query-routing and response-generation
// core: a question is classified onto one of four routes, dispatched to
// the matching handler, and turned into an answer with source
// attributions.
package pipeline

import "strings"

// Route selects which response strategy handles a question.
type Route int

const (
	RouteGreeting Route = iota
	RouteRecord
	RouteKnowledge
	RouteChat
)

func (r Route) String() string {
	switch r {
	case RouteGreeting:
		return "greeting"
	case RouteRecord:
		return "record"
	case RouteKnowledge:
		return "knowledge"
	case RouteChat:
		return "chat"
	default:
		return "unknown"
	}
}

// recordKeywords name structured-record fields. A question mentioning
// one is answered from the record store rather than the index.
var recordKeywords = []string{
	"cgpa",
	"gpa",
	"grade",
	"semester",
	"attendance",
	"registration number",
	"reg_id",
	"transcript",
	"credits",
}

// knowledgeKeywords are interrogative markers that suggest the question
// wants indexed document knowledge.
var knowledgeKeywords = []string{
	"what",
	"when",
	"where",
	"who",
	"why",
	"how",
	"which",
	"explain",
	"tell me",
	"define",
	"describe",
}

// Classify maps a question to exactly one route. Pure function of the
// lower-cased question text; keyword checks are substring matches.
// Priority is greeting > record > knowledge, and chat is the default
// when nothing matches.
func Classify(question string) Route {
	q := strings.ToLower(strings.TrimSpace(question))

	for _, entry := range greetingTable {
		if strings.Contains(q, entry.keyword) {
			return RouteGreeting
		}
	}
	for _, kw := range recordKeywords {
		if strings.Contains(q, kw) {
			return RouteRecord
		}
	}
	for _, kw := range knowledgeKeywords {
		if strings.Contains(q, kw) {
			return RouteKnowledge
		}
	}
	return RouteChat
}
