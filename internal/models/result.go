package models

// QueryResult is the pipeline's terminal output for one query.
type QueryResult struct {
	Answer     string            `json:"answer"`
	Citations  []string          `json:"citations"`
	Intent     Intent            `json:"intent"`
	Strategy   Strategy          `json:"strategy"`
	Validation *ValidationResult `json:"validation,omitempty"`
	Attempts   int               `json:"attempts"`
	Accepted   bool              `json:"accepted"`
	Trace      *Trace            `json:"trace,omitempty"`
}

// BatchItem is the per-query outcome inside a batch run. A failed query
// records its error without aborting the remaining queries.
type BatchItem struct {
	Query  string       `json:"query"`
	Result *QueryResult `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// BatchResult summarizes a sequential batch run.
type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// IngestStats reports what a corpus ingestion pass accomplished.
type IngestStats struct {
	Documents int      `json:"documents"`
	Chunks    int      `json:"chunks"`
	Skipped   []string `json:"skipped,omitempty"`
}
