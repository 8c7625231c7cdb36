package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/quaesitor-ai/quaesitor/internal/interfaces"
	"github.com/quaesitor-ai/quaesitor/internal/models"
)

// Embedder is the slice of the LLM service the index needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service is an in-memory cosine similarity index over persisted chunks.
// Vectors are stored L2-normalized so similarity reduces to a dot product.
// Safe for concurrent Search; Add takes the write lock.
type Service struct {
	embedder Embedder
	storage  interfaces.ChunkStorage
	logger   arbor.ILogger

	mu     sync.RWMutex
	chunks []models.Chunk
}

// NewService creates an index backed by the given chunk storage.
func NewService(embedder Embedder, storage interfaces.ChunkStorage, logger arbor.ILogger) *Service {
	return &Service{
		embedder: embedder,
		storage:  storage,
		logger:   logger,
	}
}

// Load warm-starts the index from persisted chunks.
func (s *Service) Load() error {
	chunks, err := s.storage.List()
	if err != nil {
		return fmt.Errorf("failed to load chunks: %w", err)
	}

	s.mu.Lock()
	s.chunks = chunks
	s.mu.Unlock()

	s.logger.Info().Int("chunks", len(chunks)).Msg("Vector index loaded")
	return nil
}

// Add embeds chunks that lack vectors, persists them and indexes them.
// Indexed chunks belonging to the same documents are evicted first, so
// re-ingesting a document replaces its live entries instead of duplicating
// them.
func (s *Service) Add(ctx context.Context, chunks []models.Chunk) error {
	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			vec, err := s.embedder.Embed(ctx, chunks[i].Text)
			if err != nil {
				return fmt.Errorf("failed to embed chunk %s: %w", chunks[i].ID, err)
			}
			chunks[i].Embedding = vec
		}
	}

	if err := s.storage.UpsertBatch(chunks); err != nil {
		return fmt.Errorf("failed to persist chunks: %w", err)
	}

	replaced := make(map[string]struct{}, 1)
	for i := range chunks {
		if chunks[i].DocumentID != "" {
			replaced[chunks[i].DocumentID] = struct{}{}
		}
	}

	s.mu.Lock()
	if len(replaced) > 0 {
		kept := make([]models.Chunk, 0, len(s.chunks)+len(chunks))
		for _, c := range s.chunks {
			if _, stale := replaced[c.DocumentID]; !stale {
				kept = append(kept, c)
			}
		}
		s.chunks = kept
	}
	s.chunks = append(s.chunks, chunks...)
	s.mu.Unlock()

	return nil
}

// Search embeds the query and returns up to k passages scoring at or above
// threshold, sorted by descending score. An empty result is not an error.
func (s *Service) Search(ctx context.Context, query string, k int, threshold float64) ([]models.Passage, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	passages := make([]models.Passage, 0, k)
	for i := range s.chunks {
		score := dotProduct(queryVec, s.chunks[i].Embedding)
		if score < threshold {
			continue
		}
		passages = append(passages, models.Passage{
			ID:         s.chunks[i].ID,
			Source:     s.chunks[i].Source,
			ChunkIndex: s.chunks[i].Index,
			Text:       s.chunks[i].Text,
			Score:      score,
		})
	}

	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})

	if len(passages) > k {
		passages = passages[:k]
	}

	return passages, nil
}

// Count reports the number of indexed chunks.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// dotProduct scores two normalized vectors. Negative similarity is clamped
// to zero so passage scores stay in [0,1]. Mismatched dimensions score zero.
func dotProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	if sum < 0 {
		return 0
	}
	return sum
}
