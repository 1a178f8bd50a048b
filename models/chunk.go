package models

import (
	"github.com/google/uuid"
)

// CorpusChunk is a chunk of legal text from the RAG knowledge base
type CorpusChunk struct {
	ID             uuid.UUID `json:"id"`
	SourceDocument string    `json:"source_document"`
	Page           int       `json:"page"`
	ChunkIndex     int       `json:"chunk_index"`
	Text           string    `json:"text"`
	Embedding      []float64 `json:"-"`
	Distance       float64   `json:"distance,omitempty"` // Vector similarity distance
}
