// Package rag implements document ingestion and retrieval over a vector
// store. Chunks are embedded, upserted with document metadata, and looked
// up by cosine similarity at query time.
package rag

import (
	"context"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/campusrag/campusrag/types"
)

// Document is a single embedded chunk held by a vector store.
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float64      `json:"embedding,omitempty"`
}

// VectorSearchResult pairs a stored document with its similarity score.
type VectorSearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// VectorStore is the persistence contract for embedded chunks.
type VectorStore interface {
	// Upsert inserts or replaces documents by ID.
	Upsert(ctx context.Context, docs []Document) error

	// Search returns the topK most similar documents, best first.
	Search(ctx context.Context, queryEmbedding []float64, topK int) ([]VectorSearchResult, error)

	// Delete removes documents by ID.
	Delete(ctx context.Context, ids []string) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}

// InMemoryVectorStore keeps documents in process memory. It backs tests
// and single-node deployments that do not need Pinecone.
type InMemoryVectorStore struct {
	mu        sync.RWMutex
	documents map[string]Document
	logger    *zap.Logger
}

// NewInMemoryVectorStore creates an empty in-memory store.
func NewInMemoryVectorStore(logger *zap.Logger) *InMemoryVectorStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryVectorStore{
		documents: make(map[string]Document),
		logger:    logger.With(zap.String("component", "memory_store")),
	}
}

func (s *InMemoryVectorStore) Upsert(ctx context.Context, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		if doc.ID == "" {
			return types.NewError(types.ErrInvalidRequest, "document has empty id")
		}
		if len(doc.Embedding) == 0 {
			return types.NewError(types.ErrInvalidRequest, "document "+doc.ID+" has no embedding")
		}
		s.documents[doc.ID] = doc
	}

	s.logger.Debug("documents upserted",
		zap.Int("count", len(docs)),
		zap.Int("total", len(s.documents)))

	return nil
}

func (s *InMemoryVectorStore) Search(ctx context.Context, queryEmbedding []float64, topK int) ([]VectorSearchResult, error) {
	if topK <= 0 {
		return []VectorSearchResult{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]VectorSearchResult, 0, len(s.documents))
	for _, doc := range s.documents {
		results = append(results, VectorSearchResult{
			Document: doc,
			Score:    cosineSimilarity(queryEmbedding, doc.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func (s *InMemoryVectorStore) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.documents, id)
	}
	return nil
}

func (s *InMemoryVectorStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
