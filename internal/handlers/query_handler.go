package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/quaesitor-ai/quaesitor/internal/interfaces"
	"github.com/quaesitor-ai/quaesitor/internal/models"
	"github.com/quaesitor-ai/quaesitor/internal/services/pipeline"
)

// QueryHandler serves the question answering endpoints.
type QueryHandler struct {
	pipeline interfaces.PipelineService
	logger   arbor.ILogger
}

func NewQueryHandler(pipelineService interfaces.PipelineService, logger arbor.ILogger) *QueryHandler {
	return &QueryHandler{
		pipeline: pipelineService,
		logger:   logger,
	}
}

type queryRequest struct {
	Query string `json:"query"`
}

// queryResponse flattens the pipeline result into the success envelope.
type queryResponse struct {
	Success bool `json:"success"`
	*models.QueryResult
}

type batchRequest struct {
	Queries []string `json:"queries"`
}

// HandleQuery runs one query through the pipeline.
// POST /api/query {"query": "..."}
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	h.logger.Info().Str("query", req.Query).Msg("Processing query request")

	result, err := h.pipeline.ProcessQuery(r.Context(), req.Query)
	if err != nil {
		h.writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{Success: true, QueryResult: result})
}

// HandleBatch runs queries sequentially. Per-query failures are reported in
// the result items, so the endpoint only errors on malformed requests.
// POST /api/query/batch {"queries": ["...", "..."]}
func (h *QueryHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	queries := make([]string, 0, len(req.Queries))
	for _, q := range req.Queries {
		if trimmed := strings.TrimSpace(q); trimmed != "" {
			queries = append(queries, trimmed)
		}
	}
	if len(queries) == 0 {
		writeError(w, http.StatusBadRequest, "at least one query is required")
		return
	}

	h.logger.Info().Int("queries", len(queries)).Msg("Processing batch request")

	result, err := h.pipeline.ProcessBatch(r.Context(), queries)
	if err != nil {
		h.logger.Error().Err(err).Msg("Batch processing failed")
		writeError(w, http.StatusInternalServerError, "failed to process batch")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

// writePipelineError maps a pipeline failure onto the response envelope.
// Step errors mean an upstream provider or the index broke mid-pipeline, so
// they surface as 502 with the failing step named.
func (h *QueryHandler) writePipelineError(w http.ResponseWriter, err error) {
	var stepErr *pipeline.StepError
	if errors.As(err, &stepErr) {
		h.logger.Error().Err(err).
			Str("step", string(stepErr.Step)).
			Str("query", stepErr.Query).
			Msg("Pipeline step failed")
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"step":    string(stepErr.Step),
			"query":   stepErr.Query,
			"error":   stepErr.Err.Error(),
		})
		return
	}

	h.logger.Error().Err(err).Msg("Query processing failed")
	writeError(w, http.StatusInternalServerError, "failed to process query")
}
