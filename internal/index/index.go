// Package index implements the concurrent directory crawl, per-document
// indexing, corpus aggregation, and persistent snapshot/restore of cearch.
package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aumeinctutw1/cearch/internal/cas"
	"github.com/aumeinctutw1/cearch/internal/content"
	"github.com/aumeinctutw1/cearch/internal/crawl"
	"github.com/aumeinctutw1/cearch/internal/docmodel"
	"github.com/aumeinctutw1/cearch/internal/tokenize"
	"github.com/aumeinctutw1/cearch/pkg/logging"
	"go.uber.org/zap"
)

const (
	snapshotFileName    = "index.json"
	completionMarkerName = ".index_complete"
	stopwordsFileName   = "stopwords.txt"
)

// Index is the process-wide collection of indexed Documents plus corpus
// statistics. The documents map and total term count are guarded by mu; the
// docid counter is a separate atomic so allocation never needs the lock.
// Once a Build or Restore has completed, the Index is read-only and safe for
// concurrent queries without additional synchronization.
type Index struct {
	indexPath string
	store     *cas.Store
	logger    *zap.Logger

	mu             sync.Mutex
	documents      map[uint64]*docmodel.Document
	totalTermCount int

	docidCounter atomic.Uint64

	avgDocLength      int
	stopwords         []string
	stopwordsFilePath string
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets a logger for build/restore debug, info, and warning events.
func WithLogger(l *zap.Logger) Option {
	return func(idx *Index) { idx.logger = l }
}

// WithStopwordsFile overrides the default <indexPath>/stopwords.txt lookup
// with an explicit path, e.g. one supplied via config.IndexConfig.StopwordsFile.
func WithStopwordsFile(path string) Option {
	return func(idx *Index) { idx.stopwordsFilePath = path }
}

// New creates an empty Index rooted at indexPath, backed by store for extracted
// text. indexPath is also used for the snapshot file, completion marker, and
// optional stopwords file.
func New(indexPath string, store *cas.Store, opts ...Option) *Index {
	idx := &Index{
		indexPath: indexPath,
		store:     store,
		documents: make(map[uint64]*docmodel.Document),
	}
	idx.docidCounter.Store(1)
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

func (idx *Index) logf(level zapcoreLevel, msg string, fields ...zap.Field) {
	if idx.logger == nil {
		return
	}
	switch level {
	case levelDebug:
		idx.logger.Debug(msg, fields...)
	case levelWarn:
		idx.logger.Warn(msg, fields...)
	default:
		idx.logger.Info(msg, fields...)
	}
}

type zapcoreLevel int

const (
	levelInfo zapcoreLevel = iota
	levelDebug
	levelWarn
)

func (idx *Index) markerPath() string {
	return filepath.Join(idx.indexPath, completionMarkerName)
}

func (idx *Index) snapshotPath() string {
	return filepath.Join(idx.indexPath, snapshotFileName)
}

// IsComplete reports whether a prior build's completion marker is present.
func (idx *Index) IsComplete() bool {
	_, err := os.Stat(idx.markerPath())
	return err == nil
}

// Build performs a full build of the index by crawling root, or — if a
// completion marker from a prior run is present — loads the existing
// snapshot instead. maxWorkers bounds the concurrent per-file worker pool (0
// = runtime.NumCPU()).
func (idx *Index) Build(ctx context.Context, root string, maxWorkers int) error {
	if idx.IsComplete() {
		idx.logf(levelInfo, "loading existing index", zap.String("index_path", idx.indexPath))
		return idx.Restore(ctx)
	}

	idx.loadStopwords()

	idx.logf(levelInfo, "building new index", zap.String("root", root))
	start := time.Now()

	err := crawl.Walk(ctx, root, maxWorkers, func(ctx context.Context, path string) error {
		idx.indexFile(path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	idx.recomputeAvgDocLength()

	if err := idx.Snapshot(); err != nil {
		return fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	idx.logf(levelInfo, "index build complete",
		zap.Int("documents", idx.DocumentCount()),
		zap.Int("total_term_count", idx.TotalTermCount()),
		zap.Int("avg_doc_length", idx.AvgDocLength()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// indexFile extracts, tokenises, and stores one file's text, then records the
// resulting Document. Any failure is logged and the file is skipped; it is
// never fatal to the overall build.
func (idx *Index) indexFile(path string) {
	docid := idx.docidCounter.Add(1) - 1

	ext := strings.ToLower(filepath.Ext(path))
	strategy, err := content.NewStrategy(ext)
	if err != nil {
		idx.logf(levelWarn, "skipping unsupported file", zap.String("path", path), zap.Error(err))
		return
	}

	text, err := strategy.ReadContent(path)
	if err != nil {
		idx.logf(levelWarn, "skipping file: extraction failed", zap.String("path", path), zap.Error(err))
		return
	}

	hash, err := idx.store.Store(text)
	if err != nil {
		idx.logf(levelWarn, "skipping file: CAS store failed", zap.String("path", path), zap.Error(err))
		return
	}

	terms := tokenize.Tokenize(text)
	concordance := make(map[string]int, len(terms))
	for _, term := range terms {
		concordance[term]++
	}

	doc := &docmodel.Document{
		DocID:          docid,
		FilePath:       path,
		FileExtension:  ext,
		TotalTermCount: len(terms),
		Concordance:    concordance,
		IndexedAt:      time.Now().Unix(),
		ContentHash:    hash,
	}

	idx.mu.Lock()
	idx.documents[docid] = doc
	idx.totalTermCount += doc.TotalTermCount
	idx.mu.Unlock()

	idx.logf(levelDebug, "file indexed",
		zap.String("path", path),
		zap.Uint64("docid", docid),
		zap.String("preview", logging.Truncate(text, 80)),
	)
}

// GetDocument returns the Document for docid, or ErrDocumentNotFound.
func (idx *Index) GetDocument(docid uint64) (*docmodel.Document, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	doc, ok := idx.documents[docid]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrDocumentNotFound, docid)
	}
	return doc, nil
}

// Documents returns a snapshot slice of all indexed documents. Intended for
// the query engine, which only ever reads after build/restore has completed.
func (idx *Index) Documents() []*docmodel.Document {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	docs := make([]*docmodel.Document, 0, len(idx.documents))
	for _, d := range idx.documents {
		docs = append(docs, d)
	}
	return docs
}

// DocumentCount returns the number of indexed documents.
func (idx *Index) DocumentCount() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.documents)
}

// TotalTermCount returns the sum of total_term_count across all documents.
func (idx *Index) TotalTermCount() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.totalTermCount
}

// AvgDocLength returns total_term_count / document_count, truncated, or 0
// when the index is empty.
func (idx *Index) AvgDocLength() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.avgDocLength
}

func (idx *Index) recomputeAvgDocLength() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if len(idx.documents) == 0 {
		idx.avgDocLength = 0
		return
	}
	idx.avgDocLength = idx.totalTermCount / len(idx.documents)
}

func (idx *Index) loadStopwords() {
	path := idx.stopwordsFilePath
	if path == "" {
		path = filepath.Join(idx.indexPath, stopwordsFileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		// Absent or unreadable stopwords file is non-fatal (spec §6.2).
		return
	}
	idx.stopwords = strings.Fields(string(data))
}

// Stopwords returns the loaded stopword list (informational only; never
// consulted by tokenization or querying).
func (idx *Index) Stopwords() []string {
	return idx.stopwords
}
