package repository

import (
	"context"
	"fmt"

	"lexaid-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ChunkRepository handles database operations for RAG corpus chunks
type ChunkRepository struct {
	db *pgxpool.Pool
}

// NewChunkRepository creates a new chunk repository
func NewChunkRepository(db *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// Count returns the number of indexed corpus chunks. The answering
// engine uses this to fail fast when the offline indexer has not run.
func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM corpus_chunks").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count corpus chunks: %w", err)
	}
	return count, nil
}

// SearchNearest performs a vector search for the limit nearest chunks.
// embedding: Query embedding vector (768 dimensions)
// The stored embedding of each chunk is returned too, so the caller can
// run diversity selection over the candidate pool.
func (r *ChunkRepository) SearchNearest(
	ctx context.Context,
	embedding []float64,
	limit int,
) ([]models.CorpusChunk, error) {
	if len(embedding) != 768 {
		return nil, fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	vectorStr := formatVector(embedding)

	query := `
		SELECT
			id,
			source_document,
			page,
			chunk_index,
			chunk_text,
			embedding::text,
			embedding <=> $1::vector AS distance
		FROM corpus_chunks
		ORDER BY
			embedding <=> $1::vector
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, vectorStr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query corpus chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.CorpusChunk
	for rows.Next() {
		var chunk models.CorpusChunk
		var embeddingText string
		err := rows.Scan(
			&chunk.ID,
			&chunk.SourceDocument,
			&chunk.Page,
			&chunk.ChunkIndex,
			&chunk.Text,
			&embeddingText,
			&chunk.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan corpus chunk: %w", err)
		}
		chunk.Embedding, err = parseVector(embeddingText)
		if err != nil {
			return nil, fmt.Errorf("failed to parse chunk embedding: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating corpus chunks: %w", err)
	}

	return chunks, nil
}
