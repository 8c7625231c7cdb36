package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/quaesitor-ai/quaesitor/internal/common"
	"github.com/quaesitor-ai/quaesitor/internal/interfaces"
)

// StatusHandler reports service health and index state.
type StatusHandler struct {
	llm       interfaces.LLMService
	index     interfaces.IndexService
	config    *common.Config
	logger    arbor.ILogger
	startTime time.Time
}

func NewStatusHandler(llm interfaces.LLMService, index interfaces.IndexService, config *common.Config, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		llm:       llm,
		index:     index,
		config:    config,
		logger:    logger,
		startTime: time.Now(),
	}
}

// HandleHealth is the liveness probe.
// GET /health
func (h *StatusHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"version":   common.GetVersion(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleStatus reports version, index size and provider reachability.
// GET /api/status
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	llmStatus := "ok"
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := h.llm.HealthCheck(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("LLM health check failed")
		llmStatus = "unavailable"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status": map[string]interface{}{
			"version":     common.GetFullVersion(),
			"environment": h.config.Environment,
			"uptime":      time.Since(h.startTime).Round(time.Second).String(),
			"index_size":  h.index.Count(),
			"llm":         llmStatus,
		},
	})
}
