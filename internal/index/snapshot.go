package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aumeinctutw1/cearch/internal/docmodel"
)

// snapshotFile is the top-level envelope written to index.json. docmodel.Document
// already round-trips via its own json tags, so no per-field mirroring is needed.
type snapshotFile struct {
	DocidCounter uint64               `json:"docid_counter"`
	Documents    []*docmodel.Document `json:"documents"`
}

// Snapshot writes index.json for the current in-memory state, then drops the
// completion marker. The marker is written last so a partially-written
// snapshot is never mistaken for a complete index (spec §4.5.1/§9).
func (idx *Index) Snapshot() error {
	idx.mu.Lock()
	docs := make([]*docmodel.Document, 0, len(idx.documents))
	for _, d := range idx.documents {
		docs = append(docs, d)
	}
	idx.mu.Unlock()

	snap := snapshotFile{
		DocidCounter: idx.docidCounter.Load(),
		Documents:    docs,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(idx.snapshotPath(), data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.WriteFile(idx.markerPath(), []byte("\n"), 0o644); err != nil {
		return fmt.Errorf("write completion marker: %w", err)
	}
	return nil
}

// rawSnapshotFile tolerates the reader-leniency requirements of spec §6.3:
// a missing docid_counter defaults to 1 (raised to one past the highest
// loaded docid when documents are present), a missing content_hash defaults
// to "", and unknown fields are ignored (the default behavior of
// encoding/json).
type rawSnapshotFile struct {
	DocidCounter *uint64           `json:"docid_counter"`
	Documents    []rawDocument     `json:"documents"`
}

type rawDocument struct {
	DocID          uint64         `json:"docid"`
	FilePath       string         `json:"filepath"`
	FileExtension  string         `json:"file_extension"`
	TotalTermCount int            `json:"total_term_count"`
	Concordance    map[string]int `json:"concordance"`
	IndexedAt      int64          `json:"indexed_at"`
	ContentHash    *string        `json:"content_hash"`
}

// Restore loads index.json and repopulates the in-memory index. When the
// snapshot carries a docid_counter, it asserts docid_counter > max(docid)
// across all loaded documents, failing with ErrCorruption otherwise.
func (idx *Index) Restore(ctx context.Context) error {
	data, err := os.ReadFile(idx.snapshotPath())
	if err != nil {
		return fmt.Errorf("%w: read snapshot: %v", ErrCorruption, err)
	}

	var raw rawSnapshotFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: parse snapshot: %v", ErrCorruption, err)
	}

	docidCounter := uint64(1)
	if raw.DocidCounter != nil {
		docidCounter = *raw.DocidCounter
	}

	documents := make(map[uint64]*docmodel.Document, len(raw.Documents))
	var maxDocID uint64
	var totalTermCount int
	for _, rd := range raw.Documents {
		contentHash := ""
		if rd.ContentHash != nil {
			contentHash = *rd.ContentHash
		}
		doc := &docmodel.Document{
			DocID:          rd.DocID,
			FilePath:       rd.FilePath,
			FileExtension:  rd.FileExtension,
			TotalTermCount: rd.TotalTermCount,
			Concordance:    rd.Concordance,
			IndexedAt:      rd.IndexedAt,
			ContentHash:    contentHash,
		}
		documents[doc.DocID] = doc
		totalTermCount += doc.TotalTermCount
		if doc.DocID > maxDocID {
			maxDocID = doc.DocID
		}
	}

	if raw.DocidCounter == nil && docidCounter <= maxDocID {
		docidCounter = maxDocID + 1
	}
	if docidCounter <= maxDocID {
		return fmt.Errorf("%w: docid_counter %d does not exceed max docid %d", ErrCorruption, docidCounter, maxDocID)
	}

	idx.mu.Lock()
	idx.documents = documents
	idx.totalTermCount = totalTermCount
	idx.mu.Unlock()
	idx.docidCounter.Store(docidCounter)
	idx.recomputeAvgDocLength()
	idx.loadStopwords()

	return nil
}
