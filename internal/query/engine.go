// Package query implements BM25 ranking over an in-memory index.
package query

import (
	"math"
	"sort"

	"github.com/aumeinctutw1/cearch/internal/docmodel"
)

const (
	k1 = 1.2
	b  = 0.75
)

// DocumentSource is the read-only view of the index that the query engine
// needs. *index.Index satisfies this.
type DocumentSource interface {
	Documents() []*docmodel.Document
	DocumentCount() int
	AvgDocLength() int
}

// Result is a single ranked hit.
type Result struct {
	DocID uint64  `json:"docid"`
	Score float64 `json:"score"`
}

// Engine scores documents from a DocumentSource using Okapi BM25 with
// k1=1.2, b=0.75.
type Engine struct {
	source DocumentSource
}

// New returns an Engine reading from source.
func New(source DocumentSource) *Engine {
	return &Engine{source: source}
}

// Query scores every document in the corpus against terms and returns hits
// sorted by score descending, ties broken by docid ascending. Repeated terms
// contribute additively. Returns nil for an empty term list, an empty
// corpus, or a zero average document length (guards division by zero).
func (e *Engine) Query(terms []string) []Result {
	if len(terms) == 0 {
		return nil
	}

	docs := e.source.Documents()
	n := e.source.DocumentCount()
	adl := e.source.AvgDocLength()
	if n == 0 || adl == 0 {
		return nil
	}

	scores := make(map[uint64]float64)
	for _, term := range terms {
		df := 0
		for _, doc := range docs {
			if doc.TermFrequency(term) > 0 {
				df++
			}
		}
		idf := computeIDF(n, df)

		for _, doc := range docs {
			tf := doc.TermFrequency(term)
			if tf == 0 {
				continue
			}
			dl := doc.TotalTermCount
			scores[doc.DocID] += computeBM25(tf, dl, float64(adl), idf)
		}
	}

	results := make([]Result, 0, len(scores))
	for docid, score := range scores {
		results = append(results, Result{DocID: docid, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	return results
}

// computeIDF returns ln((N - df + 0.5)/(df + 0.5) + 1), which is always >= 0.
func computeIDF(totalDocs, docFreq int) float64 {
	return math.Log((float64(totalDocs)-float64(docFreq)+0.5)/(float64(docFreq)+0.5) + 1)
}

// computeBM25 returns one term's contribution to a document's score.
func computeBM25(termFreq, docLength int, avgDocLen, idf float64) float64 {
	numerator := float64(termFreq) * (k1 + 1)
	denominator := float64(termFreq) + k1*(1-b+b*float64(docLength)/avgDocLen)
	return idf * (numerator / denominator)
}
