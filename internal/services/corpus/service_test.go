package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaesitor-ai/quaesitor/internal/common"
	"github.com/quaesitor-ai/quaesitor/internal/models"
	"github.com/quaesitor-ai/quaesitor/internal/services/index"
)

// fakeIndex records added chunks without embedding anything.
type fakeIndex struct {
	added []models.Chunk
}

func (f *fakeIndex) Search(context.Context, string, int, float64) ([]models.Passage, error) {
	return nil, nil
}

func (f *fakeIndex) Add(_ context.Context, chunks []models.Chunk) error {
	f.added = append(f.added, chunks...)
	return nil
}

func (f *fakeIndex) Count() int { return len(f.added) }

type fakeStorage struct {
	deletedDocs []string
}

func (f *fakeStorage) Upsert(*models.Chunk) error          { return nil }
func (f *fakeStorage) UpsertBatch([]models.Chunk) error    { return nil }
func (f *fakeStorage) Get(string) (*models.Chunk, error)   { return nil, nil }
func (f *fakeStorage) List() ([]models.Chunk, error)       { return nil, nil }
func (f *fakeStorage) Count() (int, error)                 { return 0, nil }
func (f *fakeStorage) DeleteByDocument(docID string) error {
	f.deletedDocs = append(f.deletedDocs, docID)
	return nil
}

func testConfig() *common.CorpusConfig {
	return &common.CorpusConfig{
		Extensions:        []string{".txt", ".md"},
		SentencesPerChunk: 2,
		OverlapSentences:  0,
	}
}

func TestIngestDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rex.md"),
		[]byte("Tyrannosaurus was huge. It lived in the Cretaceous. It was a predator."), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"),
		[]byte("Short note."), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.json"),
		[]byte("{}"), 0644))

	idx := &fakeIndex{}
	svc := NewService(testConfig(), idx, &fakeStorage{}, common.GetLogger())

	stats, err := svc.IngestDir(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 3, stats.Chunks)
	assert.Empty(t, stats.Skipped)

	sources := map[string]bool{}
	for _, c := range idx.added {
		sources[c.Source] = true
		assert.NotEmpty(t, c.ID)
		assert.NotEmpty(t, c.DocumentID)
	}
	assert.True(t, sources["rex.md"])
	assert.True(t, sources["notes.txt"])
	assert.False(t, sources["ignored.json"])
}

func TestIngestDir_SkipsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.txt"), []byte("  \n "), 0644))

	svc := NewService(testConfig(), &fakeIndex{}, &fakeStorage{}, common.GetLogger())

	stats, err := svc.IngestDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Documents)
	assert.Equal(t, []string{"empty.txt"}, stats.Skipped)
}

func TestIngestDir_MissingDir(t *testing.T) {
	svc := NewService(testConfig(), &fakeIndex{}, &fakeStorage{}, common.GetLogger())
	_, err := svc.IngestDir(context.Background(), "/nonexistent/corpus")
	assert.Error(t, err)
}

func TestIngestFile_DeterministicDocumentID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.txt"), []byte("First pass."), 0644))

	storage := &fakeStorage{}
	idx := &fakeIndex{}
	svc := NewService(testConfig(), idx, storage, common.GetLogger())

	_, err := svc.IngestDir(context.Background(), dir)
	require.NoError(t, err)
	_, err = svc.IngestDir(context.Background(), dir)
	require.NoError(t, err)

	// Same source deletes the same document ID on both passes
	require.Len(t, storage.deletedDocs, 2)
	assert.Equal(t, storage.deletedDocs[0], storage.deletedDocs[1])
}

// fixedEmbedder returns the same unit vector for every text.
type fixedEmbedder struct{}

func (fixedEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func TestIngestDir_ReingestReplacesIndexEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("First pass."), 0644))

	storage := &fakeStorage{}
	idx := index.NewService(fixedEmbedder{}, storage, common.GetLogger())
	svc := NewService(testConfig(), idx, storage, common.GetLogger())

	_, err := svc.IngestDir(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 1, idx.Count())

	require.NoError(t, os.WriteFile(path, []byte("Second pass."), 0644))
	_, err = svc.IngestDir(context.Background(), dir)
	require.NoError(t, err)

	// The live index replaces the document's entries, not duplicates them
	assert.Equal(t, 1, idx.Count())

	passages, err := idx.Search(context.Background(), "anything", 5, 0.0)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Contains(t, passages[0].Text, "Second pass")
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	_, err := LoadFile("something.docx")
	assert.Error(t, err)
}

func TestLoadHTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	html := `<html><head><script>var x = 1;</script></head>
<body><nav>menu</nav><h1>Triceratops</h1><p>A herbivore with three horns.</p></body></html>`
	require.NoError(t, os.WriteFile(path, []byte(html), 0644))

	text, err := LoadFile(path)
	require.NoError(t, err)

	assert.Contains(t, text, "Triceratops")
	assert.Contains(t, text, "three horns")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "menu")
}
