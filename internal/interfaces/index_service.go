package interfaces

import (
	"context"

	"github.com/quaesitor-ai/quaesitor/internal/models"
)

// IndexService is the similarity search surface over the ingested corpus.
// Implementations must be safe for concurrent Search calls.
type IndexService interface {
	// Search embeds the query text and returns up to k passages scoring
	// at or above threshold, sorted by descending score. An empty result
	// is not an error.
	Search(ctx context.Context, query string, k int, threshold float64) ([]models.Passage, error)
	// Add embeds, persists and indexes the chunks.
	Add(ctx context.Context, chunks []models.Chunk) error
	// Count reports the number of indexed chunks.
	Count() int
}
