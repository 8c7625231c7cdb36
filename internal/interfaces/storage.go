package interfaces

import "github.com/quaesitor-ai/quaesitor/internal/models"

// ChunkStorage persists corpus chunks with their embeddings.
type ChunkStorage interface {
	Upsert(chunk *models.Chunk) error
	UpsertBatch(chunks []models.Chunk) error
	Get(id string) (*models.Chunk, error)
	List() ([]models.Chunk, error)
	DeleteByDocument(documentID string) error
	Count() (int, error)
}

// StorageManager owns the underlying store lifecycle.
type StorageManager interface {
	Chunks() ChunkStorage
	Close() error
}
