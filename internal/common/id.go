package common

import (
	"fmt"

	"github.com/google/uuid"
)

// NewDocumentID derives a deterministic document ID from the source name.
// Re-ingesting the same source yields the same ID, so its prior chunks can
// be replaced instead of duplicated. Format: doc_<uuid>
func NewDocumentID(source string) string {
	return "doc_" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(source)).String()
}

// NewChunkID names a chunk by its position within a document.
func NewChunkID(docID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", docID, index)
}
