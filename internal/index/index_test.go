package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aumeinctutw1/cearch/internal/cas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) (*Index, string) {
	t.Helper()
	indexPath := t.TempDir()
	store := cas.New(indexPath)
	return New(indexPath, store), indexPath
}

func TestBuild_singleTextFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("The quick brown fox, the quick dog."), 0o644))

	idx, _ := newTestIndex(t)
	require.NoError(t, idx.Build(context.Background(), root, 2))

	assert.Equal(t, 1, idx.DocumentCount())
	assert.Equal(t, 7, idx.TotalTermCount())
	assert.Equal(t, 7, idx.AvgDocLength())

	docs := idx.Documents()
	require.Len(t, docs, 1)
	doc := docs[0]
	assert.Equal(t, 7, doc.TotalTermCount)
	assert.Equal(t, map[string]int{"the": 2, "quick": 2, "brown": 1, "fox": 1, "dog": 1}, doc.Concordance)
	assert.Len(t, doc.ContentHash, 64)
	assert.True(t, doc.DocID > 0)
}

func TestBuild_unsupportedFileSkipped(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello world"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.bin"), []byte{0x00, 0x01, 0x02}, 0o644))

	idx, _ := newTestIndex(t)
	require.NoError(t, idx.Build(context.Background(), root, 2))

	assert.Equal(t, 1, idx.DocumentCount())
}

func TestBuild_emptyDirectory(t *testing.T) {
	root := t.TempDir()
	idx, _ := newTestIndex(t)
	require.NoError(t, idx.Build(context.Background(), root, 2))
	assert.Equal(t, 0, idx.DocumentCount())
	assert.Equal(t, 0, idx.AvgDocLength())
}

func TestBuild_nonExistentRootFails(t *testing.T) {
	idx, _ := newTestIndex(t)
	err := idx.Build(context.Background(), filepath.Join(t.TempDir(), "missing"), 2)
	require.Error(t, err)
}

func TestBuild_contentAddressingDedupesIdenticalContent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("identical content here"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("identical content here"), 0o644))

	indexPath := t.TempDir()
	store := cas.New(indexPath)
	idx := New(indexPath, store)
	require.NoError(t, idx.Build(context.Background(), root, 2))

	docs := idx.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, docs[0].ContentHash, docs[1].ContentHash)

	blobs, err := filepath.Glob(filepath.Join(indexPath, "*.z"))
	require.NoError(t, err)
	assert.Len(t, blobs, 1)
}

func TestSnapshotAndRestore_roundTrip(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("apple apple banana"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("banana cherry"), 0o644))

	indexPath := t.TempDir()
	store := cas.New(indexPath)
	idx := New(indexPath, store)
	require.NoError(t, idx.Build(context.Background(), root, 2))

	wantDocCount := idx.DocumentCount()
	wantTotalTerms := idx.TotalTermCount()
	wantAvgLen := idx.AvgDocLength()

	restored := New(indexPath, cas.New(indexPath))
	require.True(t, restored.IsComplete())
	require.NoError(t, restored.Restore(context.Background()))

	assert.Equal(t, wantDocCount, restored.DocumentCount())
	assert.Equal(t, wantTotalTerms, restored.TotalTermCount())
	assert.Equal(t, wantAvgLen, restored.AvgDocLength())
}

func TestBuild_usesRestoreWhenMarkerPresent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello world"), 0o644))

	indexPath := t.TempDir()
	store := cas.New(indexPath)
	idx := New(indexPath, store)
	require.NoError(t, idx.Build(context.Background(), root, 2))

	// Remove the root directory's indexable file so a second crawl (if it
	// happened) would find nothing; Build should instead restore from disk.
	require.NoError(t, os.RemoveAll(root))

	reloaded := New(indexPath, cas.New(indexPath))
	require.NoError(t, reloaded.Build(context.Background(), root, 2))
	assert.Equal(t, 1, reloaded.DocumentCount())
}

func TestDocidCounterInvariant_afterBuild(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, string(rune('a'+i))+".txt"), []byte("text"), 0o644))
	}
	idx, _ := newTestIndex(t)
	require.NoError(t, idx.Build(context.Background(), root, 4))

	var maxDocID uint64
	for _, d := range idx.Documents() {
		if d.DocID > maxDocID {
			maxDocID = d.DocID
		}
	}
	assert.Greater(t, idx.docidCounter.Load(), maxDocID)
}

func TestGetDocument_notFound(t *testing.T) {
	idx, _ := newTestIndex(t)
	_, err := idx.GetDocument(999)
	require.Error(t, err)
}

func TestRestore_corruptDocidCounterFails(t *testing.T) {
	indexPath := t.TempDir()
	snapshot := `{"docid_counter": 1, "documents": [{"docid": 5, "filepath": "x.txt", "file_extension": ".txt", "total_term_count": 1, "concordance": {"x": 1}, "indexed_at": 1, "content_hash": "abc"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(indexPath, snapshotFileName), []byte(snapshot), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(indexPath, completionMarkerName), []byte("\n"), 0o644))

	idx := New(indexPath, cas.New(indexPath))
	err := idx.Restore(context.Background())
	require.Error(t, err)
}

func TestRestore_toleratesMissingFields(t *testing.T) {
	indexPath := t.TempDir()
	snapshot := `{"documents": [{"docid": 1, "filepath": "x.txt", "file_extension": ".txt", "total_term_count": 1, "concordance": {"x": 1}, "indexed_at": 1}]}`
	require.NoError(t, os.WriteFile(filepath.Join(indexPath, snapshotFileName), []byte(snapshot), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(indexPath, completionMarkerName), []byte("\n"), 0o644))

	idx := New(indexPath, cas.New(indexPath))
	require.NoError(t, idx.Restore(context.Background()))
	assert.Equal(t, uint64(2), idx.docidCounter.Load())

	doc, err := idx.GetDocument(1)
	require.NoError(t, err)
	assert.Equal(t, "", doc.ContentHash)
}

func TestWithStopwordsFile_overridesDefaultLocation(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("the quick fox"), 0o644))

	stopwordsDir := t.TempDir()
	stopwordsPath := filepath.Join(stopwordsDir, "custom-stopwords.txt")
	require.NoError(t, os.WriteFile(stopwordsPath, []byte("the a an"), 0o644))

	indexPath := t.TempDir()
	idx := New(indexPath, cas.New(indexPath), WithStopwordsFile(stopwordsPath))
	require.NoError(t, idx.Build(context.Background(), root, 1))

	assert.Equal(t, []string{"the", "a", "an"}, idx.Stopwords())
}
