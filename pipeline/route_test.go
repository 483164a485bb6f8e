package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestClassify_Greeting(t *testing.T) {
	assert.Equal(t, RouteGreeting, Classify("hello, how are you?"))
	assert.Equal(t, RouteGreeting, Classify("HELLO THERE"))
	assert.Equal(t, RouteGreeting, Classify("good morning everyone"))
}

func TestClassify_Record(t *testing.T) {
	assert.Equal(t, RouteRecord, Classify("what is my CGPA"))
	assert.Equal(t, RouteRecord, Classify("show my attendance please"))
	assert.Equal(t, RouteRecord, Classify("my semester grade"))
}

func TestClassify_Knowledge(t *testing.T) {
	assert.Equal(t, RouteKnowledge, Classify("what is the capital of France?"))
	assert.Equal(t, RouteKnowledge, Classify("explain photosynthesis"))
	assert.Equal(t, RouteKnowledge, Classify("tell me about the library"))
}

func TestClassify_ChatDefault(t *testing.T) {
	assert.Equal(t, RouteChat, Classify("banana"))
	assert.Equal(t, RouteChat, Classify(""))
	assert.Equal(t, RouteChat, Classify("!!!"))
}

func TestClassify_GreetingBeatsRecord(t *testing.T) {
	// Matches both "hello" and "cgpa"; greeting has strict priority.
	assert.Equal(t, RouteGreeting, Classify("hello, what is my cgpa?"))
}

func TestClassify_RecordBeatsKnowledge(t *testing.T) {
	// "what" is interrogative but "cgpa" names a record field.
	assert.Equal(t, RouteRecord, Classify("tbh curious about cgpa"))
}

// Priority law: prefixing any question with a greeting keyword forces
// the greeting route.
func TestClassify_PriorityLaw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		suffix := rapid.StringMatching(`[a-z0-9 ?]{0,40}`).Draw(t, "suffix")
		assert.Equal(t, RouteGreeting, Classify("hello "+suffix))
	})
}

// Default law: questions built from an alphabet that cannot spell any
// keyword always fall through to chat.
func TestClassify_DefaultLaw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		q := rapid.StringMatching(`[zjq0-9 ]{0,40}`).Draw(t, "question")
		assert.Equal(t, RouteChat, Classify(q))
	})
}

// Idempotence: classification is a pure function.
func TestClassify_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		q := rapid.String().Draw(t, "question")
		assert.Equal(t, Classify(q), Classify(q))
	})
}

func TestRouteString(t *testing.T) {
	assert.Equal(t, "greeting", RouteGreeting.String())
	assert.Equal(t, "record", RouteRecord.String())
	assert.Equal(t, "knowledge", RouteKnowledge.String())
	assert.Equal(t, "chat", RouteChat.String())
	assert.Equal(t, "unknown", Route(42).String())
}
