// Package embedding provides the embedding provider contract used by the
// retriever and the ingestion indexer.
package embedding

import "context"

// Provider maps text to fixed-length numeric vectors.
type Provider interface {
	// EmbedQuery embeds a single search query.
	EmbedQuery(ctx context.Context, query string) ([]float64, error)

	// EmbedDocuments embeds a batch of document chunks.
	EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error)

	// Name returns the provider name.
	Name() string

	// Dimensions returns the embedding dimensionality.
	Dimensions() int
}
