package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/quaesitor-ai/quaesitor/internal/common"
	"github.com/quaesitor-ai/quaesitor/internal/interfaces"
	"github.com/quaesitor-ai/quaesitor/internal/services/corpus"
	"github.com/quaesitor-ai/quaesitor/internal/services/events"
	"github.com/quaesitor-ai/quaesitor/internal/services/index"
	"github.com/quaesitor-ai/quaesitor/internal/services/llm"
	"github.com/quaesitor-ai/quaesitor/internal/services/pipeline"
	"github.com/quaesitor-ai/quaesitor/internal/storage/badger"
)

// App holds the wired service graph. Construction order matters: storage
// first, then the LLM client, then the index warm-started from storage,
// then everything that depends on them.
type App struct {
	Config   *common.Config
	Logger   arbor.ILogger
	Storage  interfaces.StorageManager
	LLM      interfaces.LLMService
	Index    interfaces.IndexService
	Corpus   interfaces.CorpusService
	Events   interfaces.EventService
	Pipeline interfaces.PipelineService
}

// New wires all services from configuration.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	storage, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	llmService := llm.NewService(cfg, logger)

	indexService := index.NewService(llmService, storage.Chunks(), logger)
	if err := indexService.Load(); err != nil {
		storage.Close()
		return nil, fmt.Errorf("failed to load vector index: %w", err)
	}

	corpusService := corpus.NewService(&cfg.Corpus, indexService, storage.Chunks(), logger)
	eventService := events.NewService(cfg.WebSocket.BufferSize, logger)
	pipelineService := pipeline.NewService(llmService, indexService, eventService, &cfg.Pipeline, logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Storage:  storage,
		LLM:      llmService,
		Index:    indexService,
		Corpus:   corpusService,
		Events:   eventService,
		Pipeline: pipelineService,
	}, nil
}

// Close releases resources in reverse dependency order.
func (a *App) Close() error {
	var firstErr error

	if a.LLM != nil {
		if err := a.LLM.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close LLM service: %w", err)
		}
	}

	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close storage: %w", err)
		}
	}

	return firstErr
}
