package rag

import (
	"context"

	"go.uber.org/zap"

	"github.com/campusrag/campusrag/embedding"
)

// RetrievedChunk is one scored fragment of source material returned for
// a question.
type RetrievedChunk struct {
	Content    string  `json:"content"`
	DocID      string  `json:"doc_id"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// Retriever finds the chunks most relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int) ([]RetrievedChunk, error)
}

// VectorRetriever embeds the question and searches a VectorStore.
type VectorRetriever struct {
	embedder embedding.Provider
	store    VectorStore
	logger   *zap.Logger
}

// NewVectorRetriever creates a retriever over the given embedder and store.
func NewVectorRetriever(embedder embedding.Provider, store VectorStore, logger *zap.Logger) *VectorRetriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VectorRetriever{
		embedder: embedder,
		store:    store,
		logger:   logger.With(zap.String("component", "vector_retriever")),
	}
}

// Retrieve returns up to topK chunks ranked by similarity. A question
// that matches nothing yields an empty slice, not an error.
func (r *VectorRetriever) Retrieve(ctx context.Context, question string, topK int) ([]RetrievedChunk, error) {
	if topK <= 0 {
		topK = 3
	}

	vec, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	results, err := r.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, err
	}

	chunks := make([]RetrievedChunk, 0, len(results))
	for _, res := range results {
		chunks = append(chunks, RetrievedChunk{
			Content:    res.Document.Content,
			DocID:      metadataString(res.Document.Metadata, metaDocIDField),
			ChunkIndex: metadataInt(res.Document.Metadata, metaChunkIndexField),
			Score:      res.Score,
		})
	}

	r.logger.Debug("chunks retrieved",
		zap.Int("count", len(chunks)),
		zap.Int("top_k", topK))

	return chunks, nil
}

func metadataString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

// metadataInt tolerates the float64 that JSON decoding produces for
// numeric metadata values.
func metadataInt(meta map[string]any, key string) int {
	if meta == nil {
		return 0
	}
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

var _ Retriever = (*VectorRetriever)(nil)
