package interfaces

import (
	"context"

	"github.com/quaesitor-ai/quaesitor/internal/models"
)

// PipelineService runs the full classify/retrieve/generate/validate loop.
type PipelineService interface {
	ProcessQuery(ctx context.Context, query string) (*models.QueryResult, error)
	// ProcessBatch handles queries sequentially; one failure does not
	// abort the rest.
	ProcessBatch(ctx context.Context, queries []string) (*models.BatchResult, error)
}
