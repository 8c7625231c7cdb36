package models

import "time"

// Chunk is a persisted corpus unit: a slice of a source document together
// with its embedding vector. Embeddings are stored L2-normalized so the
// index can score with a plain dot product.
type Chunk struct {
	ID         string    `badgerhold:"key" json:"id"`
	DocumentID string    `badgerholdIndex:"DocumentID" json:"document_id"`
	Source     string    `json:"source"`
	Index      int       `json:"index"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
	CreatedAt  time.Time `json:"created_at"`
}
