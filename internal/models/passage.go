package models

// Passage is a retrieved unit of source text with its relevance score.
// Retrieval returns passages sorted by descending Score; the slice and its
// elements are treated as immutable once returned.
type Passage struct {
	ID         string  `json:"id"`
	Source     string  `json:"source"`      // Source identifier (corpus file name)
	ChunkIndex int     `json:"chunk_index"` // Position of the chunk within its document
	Text       string  `json:"text"`
	Score      float64 `json:"score"` // Relevance in [0,1]
}

// SourceIDs returns the distinct source identifiers of the passages,
// preserving first-appearance order.
func SourceIDs(passages []Passage) []string {
	seen := make(map[string]bool, len(passages))
	ids := make([]string, 0, len(passages))
	for _, p := range passages {
		if !seen[p.Source] {
			seen[p.Source] = true
			ids = append(ids, p.Source)
		}
	}
	return ids
}
