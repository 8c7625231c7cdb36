package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/quaesitor-ai/quaesitor/internal/common"
	"github.com/quaesitor-ai/quaesitor/internal/interfaces"
)

// CorpusHandler triggers corpus ingestion over HTTP.
type CorpusHandler struct {
	corpus interfaces.CorpusService
	config *common.Config
	logger arbor.ILogger
}

func NewCorpusHandler(corpus interfaces.CorpusService, config *common.Config, logger arbor.ILogger) *CorpusHandler {
	return &CorpusHandler{
		corpus: corpus,
		config: config,
		logger: logger,
	}
}

type ingestRequest struct {
	Dir string `json:"dir"`
}

// HandleIngest loads, chunks, embeds and indexes documents. The body is
// optional; without one the configured corpus directory is used.
// POST /api/corpus/ingest {"dir": "..."}
func (h *CorpusHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dir := strings.TrimSpace(req.Dir)
	if dir == "" {
		dir = h.config.Corpus.Dir
	}

	h.logger.Info().Str("dir", dir).Msg("Starting corpus ingestion")

	stats, err := h.corpus.IngestDir(r.Context(), dir)
	if err != nil {
		h.logger.Error().Err(err).Str("dir", dir).Msg("Corpus ingestion failed")
		writeError(w, http.StatusInternalServerError, "failed to ingest corpus")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}
