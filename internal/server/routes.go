package server

import "net/http"

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health and status
	mux.HandleFunc("/health", s.statusHandler.HandleHealth)
	mux.HandleFunc("/api/status", s.statusHandler.HandleStatus)

	// Query pipeline
	mux.HandleFunc("/api/query", s.queryHandler.HandleQuery)
	mux.HandleFunc("/api/query/batch", s.queryHandler.HandleBatch)

	// Corpus management
	mux.HandleFunc("/api/corpus/ingest", s.corpusHandler.HandleIngest)

	// Step event stream
	mux.HandleFunc("/ws", s.wsHandler.HandleWebSocket)

	return mux
}
