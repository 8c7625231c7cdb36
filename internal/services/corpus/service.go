package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/quaesitor-ai/quaesitor/internal/common"
	"github.com/quaesitor-ai/quaesitor/internal/interfaces"
	"github.com/quaesitor-ai/quaesitor/internal/models"
)

// Service ingests corpus documents: load, clean, chunk, embed, index.
type Service struct {
	config  *common.CorpusConfig
	index   interfaces.IndexService
	storage interfaces.ChunkStorage
	chunker *SentenceChunker
	logger  arbor.ILogger
}

// NewService creates the corpus ingestion service.
func NewService(config *common.CorpusConfig, index interfaces.IndexService, storage interfaces.ChunkStorage, logger arbor.ILogger) *Service {
	return &Service{
		config:  config,
		index:   index,
		storage: storage,
		chunker: NewSentenceChunker(config.SentencesPerChunk, config.OverlapSentences),
		logger:  logger,
	}
}

// IngestDir loads, chunks, embeds and indexes every supported file under dir.
// Unsupported or unreadable files are skipped and reported, not fatal.
func (s *Service) IngestDir(ctx context.Context, dir string) (*models.IngestStats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory %s: %w", dir, err)
	}

	stats := &models.IngestStats{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !s.supported(name) {
			continue
		}

		path := filepath.Join(dir, name)
		chunks, err := s.ingestFile(ctx, path, name)
		if err != nil {
			s.logger.Warn().Err(err).Str("file", name).Msg("Skipping corpus file")
			stats.Skipped = append(stats.Skipped, name)
			continue
		}

		stats.Documents++
		stats.Chunks += chunks
		s.logger.Info().Str("file", name).Int("chunks", chunks).Msg("Ingested corpus document")
	}

	return stats, nil
}

func (s *Service) ingestFile(ctx context.Context, path, source string) (int, error) {
	raw, err := LoadFile(path)
	if err != nil {
		return 0, err
	}

	text := CleanText(raw)
	if text == "" {
		return 0, fmt.Errorf("document %s is empty after cleaning", source)
	}

	pieces := s.chunker.Chunk(text)
	if len(pieces) == 0 {
		return 0, fmt.Errorf("document %s produced no chunks", source)
	}

	// Deterministic document ID so re-ingestion replaces prior chunks
	docID := common.NewDocumentID(source)
	if err := s.storage.DeleteByDocument(docID); err != nil {
		return 0, fmt.Errorf("failed to clear prior chunks for %s: %w", source, err)
	}

	chunks := make([]models.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, models.Chunk{
			ID:         common.NewChunkID(docID, i),
			DocumentID: docID,
			Source:     source,
			Index:      i,
			Text:       piece,
		})
	}

	if err := s.index.Add(ctx, chunks); err != nil {
		return 0, err
	}

	return len(chunks), nil
}

func (s *Service) supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range s.config.Extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
