package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusrag/campusrag/rag"
)

func TestRenderKnowledge(t *testing.T) {
	prompt := RenderKnowledge("what are the library hours?", []rag.RetrievedChunk{
		{Content: "The library opens at 8 AM.", DocID: "doc1", ChunkIndex: 0},
		{Content: "It closes at 10 PM.", DocID: "doc1", ChunkIndex: 1},
	})

	assert.Contains(t, prompt, "The library opens at 8 AM.")
	assert.Contains(t, prompt, "It closes at 10 PM.")
	assert.Contains(t, prompt, "what are the library hours?")
	assert.Contains(t, prompt, DontKnowPhrase)
	assert.Contains(t, prompt, "same language")
}

func TestRenderKnowledge_NoChunks(t *testing.T) {
	prompt := RenderKnowledge("anything?", nil)

	// Empty context still renders; the don't-know instruction covers it.
	assert.Contains(t, prompt, "Context: ")
	assert.Contains(t, prompt, DontKnowPhrase)
}

func TestRenderChat(t *testing.T) {
	prompt := RenderChat("I'm feeling nervous about exams")

	assert.Contains(t, prompt, "I'm feeling nervous about exams")
	assert.NotContains(t, prompt, "Context:")
	assert.NotContains(t, prompt, "Records:")
}

func TestRenderRecord(t *testing.T) {
	prompt := RenderRecord("what is my cgpa", map[string]any{
		"students": []any{map[string]any{"reg_id": "S001", "cgpa": 3.7}},
	})

	assert.Contains(t, prompt, `"cgpa":3.7`)
	assert.Contains(t, prompt, "what is my cgpa")
	assert.Contains(t, prompt, NotFoundPhrase)
}

func TestRenderRecord_EmptyDataset(t *testing.T) {
	prompt := RenderRecord("what is my cgpa", map[string]any{})

	assert.Contains(t, prompt, "Records: {}")
	assert.Contains(t, prompt, NotFoundPhrase)
}

func TestRender_SelectsByRoute(t *testing.T) {
	chunks := []rag.RetrievedChunk{{Content: "ctx", DocID: "d", ChunkIndex: 0}}

	assert.Contains(t, Render(RouteKnowledge, "q", chunks, nil), "Context:")
	assert.Contains(t, Render(RouteRecord, "q", nil, map[string]any{}), "Records:")
	assert.NotContains(t, Render(RouteChat, "q", nil, nil), "Context:")
}
