// Package docmodel defines the Document entity owned by the index.
package docmodel

// Document is one indexed file. It is created once by the Indexer during a
// build pass and never mutated afterward; the query path only reads it.
type Document struct {
	DocID          uint64         `json:"docid"`
	FilePath       string         `json:"filepath"`
	FileExtension  string         `json:"file_extension"`
	TotalTermCount int            `json:"total_term_count"`
	Concordance    map[string]int `json:"concordance"`
	IndexedAt      int64          `json:"indexed_at"`
	ContentHash    string         `json:"content_hash"`
}

// ContainsTerm reports whether term occurs at least once in the document.
func (d *Document) ContainsTerm(term string) bool {
	_, ok := d.Concordance[term]
	return ok
}

// TermFrequency returns the number of times term occurs in the document, or 0
// if the term does not occur.
func (d *Document) TermFrequency(term string) int {
	return d.Concordance[term]
}
