package rag

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/campusrag/campusrag/config"
	"github.com/campusrag/campusrag/embedding"
	"github.com/campusrag/campusrag/types"
)

// Indexer turns raw document text into embedded chunks and upserts them
// into the vector store.
type Indexer struct {
	cfg      config.IngestConfig
	embedder embedding.Provider
	store    VectorStore
	logger   *zap.Logger
}

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	DocID       string `json:"doc_id"`
	ChunkCount  int    `json:"chunk_count"`
	Truncated   int    `json:"truncated_chunks"`
	ElapsedMsec int64  `json:"elapsed_msec"`
}

// NewIndexer creates an indexer with the given ingestion policy.
func NewIndexer(cfg config.IngestConfig, embedder embedding.Provider, store VectorStore, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ChunkSizeWords <= 0 {
		cfg.ChunkSizeWords = 300
	}
	if cfg.MetadataMaxLen <= 0 {
		cfg.MetadataMaxLen = 3000
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 16
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 4
	}

	return &Indexer{
		cfg:      cfg,
		embedder: embedder,
		store:    store,
		logger:   logger.With(zap.String("component", "indexer")),
	}
}

// CleanText collapses whitespace runs into single spaces and trims the
// result. Chunking operates on cleaned text only.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ChunkText splits cleaned text into consecutive chunks of at most
// chunkSizeWords words. The last chunk may be shorter; empty input
// yields no chunks.
func ChunkText(text string, chunkSizeWords int) []string {
	if chunkSizeWords <= 0 {
		chunkSizeWords = 300
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+chunkSizeWords-1)/chunkSizeWords)
	for start := 0; start < len(words); start += chunkSizeWords {
		end := start + chunkSizeWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// truncateToRune cuts s to at most maxBytes without splitting a
// multibyte rune.
func truncateToRune(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Ingest chunks, embeds, and upserts one document. Vector IDs follow the
// "{docID}_chunk_{i}" scheme so re-ingesting a document overwrites its
// previous chunks. Chunk text longer than the metadata limit is either
// truncated or rejected, per policy.
func (ix *Indexer) Ingest(ctx context.Context, docID, text string) (*IngestResult, error) {
	if strings.TrimSpace(docID) == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "doc_id is required")
	}

	start := time.Now()

	chunks := ChunkText(CleanText(text), ix.cfg.ChunkSizeWords)
	if len(chunks) == 0 {
		return nil, types.NewError(types.ErrInvalidRequest, "document has no extractable text")
	}

	truncated := 0
	for i, chunk := range chunks {
		if len(chunk) <= ix.cfg.MetadataMaxLen {
			continue
		}
		if ix.cfg.RejectOversize {
			return nil, types.NewError(types.ErrIngestChunkTooLarge,
				fmt.Sprintf("chunk %d of %q exceeds %d bytes", i, docID, ix.cfg.MetadataMaxLen))
		}
		chunks[i] = truncateToRune(chunk, ix.cfg.MetadataMaxLen)
		truncated++
	}

	vectors, err := ix.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = Document{
			ID:        fmt.Sprintf("%s_chunk_%d", docID, i),
			Content:   chunk,
			Embedding: vectors[i],
			Metadata: map[string]any{
				metaTextField:       chunk,
				metaDocIDField:      docID,
				metaChunkIndexField: i,
			},
		}
	}

	if err := ix.store.Upsert(ctx, docs); err != nil {
		return nil, err
	}

	result := &IngestResult{
		DocID:       docID,
		ChunkCount:  len(chunks),
		Truncated:   truncated,
		ElapsedMsec: time.Since(start).Milliseconds(),
	}

	ix.logger.Info("document ingested",
		zap.String("doc_id", docID),
		zap.Int("chunks", result.ChunkCount),
		zap.Int("truncated", truncated),
		zap.Int64("elapsed_msec", result.ElapsedMsec))

	return result, nil
}

// embedChunks embeds batches concurrently, bounded by Parallelism.
func (ix *Indexer) embedChunks(ctx context.Context, chunks []string) ([][]float64, error) {
	vectors := make([][]float64, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.cfg.Parallelism)

	for start := 0; start < len(chunks); start += ix.cfg.EmbedBatchSize {
		end := start + ix.cfg.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		g.Go(func() error {
			batch, err := ix.embedder.EmbedDocuments(gctx, chunks[start:end])
			if err != nil {
				return err
			}
			// Each goroutine writes a disjoint region of vectors.
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
