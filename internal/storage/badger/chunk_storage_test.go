package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaesitor-ai/quaesitor/internal/common"
	"github.com/quaesitor-ai/quaesitor/internal/models"
)

func newTestDB(t *testing.T) *BadgerDB {
	t.Helper()
	db, err := NewBadgerDB(common.GetLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestChunkStorage_UpsertAndGet(t *testing.T) {
	store := NewChunkStorage(newTestDB(t), common.GetLogger())

	chunk := &models.Chunk{
		ID:         "chunk_1",
		DocumentID: "doc_1",
		Source:     "velociraptor.md",
		Index:      0,
		Text:       "Velociraptor was a small dromaeosaurid.",
		Embedding:  []float32{0.1, 0.2, 0.3},
	}
	require.NoError(t, store.Upsert(chunk))

	got, err := store.Get("chunk_1")
	require.NoError(t, err)
	assert.Equal(t, chunk.Text, got.Text)
	assert.Equal(t, chunk.Embedding, got.Embedding)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestChunkStorage_GetMissing(t *testing.T) {
	store := NewChunkStorage(newTestDB(t), common.GetLogger())

	_, err := store.Get("chunk_missing")
	assert.Error(t, err)
}

func TestChunkStorage_UpsertRequiresID(t *testing.T) {
	store := NewChunkStorage(newTestDB(t), common.GetLogger())

	err := store.Upsert(&models.Chunk{Text: "no id"})
	assert.Error(t, err)
}

func TestChunkStorage_ListAndCount(t *testing.T) {
	store := NewChunkStorage(newTestDB(t), common.GetLogger())

	chunks := []models.Chunk{
		{ID: "chunk_a", DocumentID: "doc_1", Index: 0, Text: "a"},
		{ID: "chunk_b", DocumentID: "doc_1", Index: 1, Text: "b"},
		{ID: "chunk_c", DocumentID: "doc_2", Index: 0, Text: "c"},
	}
	require.NoError(t, store.UpsertBatch(chunks))

	all, err := store.List()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestChunkStorage_DeleteByDocument(t *testing.T) {
	store := NewChunkStorage(newTestDB(t), common.GetLogger())

	require.NoError(t, store.UpsertBatch([]models.Chunk{
		{ID: "chunk_a", DocumentID: "doc_1", Text: "a"},
		{ID: "chunk_b", DocumentID: "doc_2", Text: "b"},
	}))

	require.NoError(t, store.DeleteByDocument("doc_1"))

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = store.Get("chunk_b")
	assert.NoError(t, err)
}
