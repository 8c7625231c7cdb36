package interfaces

import (
	"context"

	"github.com/quaesitor-ai/quaesitor/internal/models"
)

// CorpusService ingests source documents into the index.
type CorpusService interface {
	// IngestDir loads, chunks, embeds and indexes every supported file
	// under dir.
	IngestDir(ctx context.Context, dir string) (*models.IngestStats, error)
}
