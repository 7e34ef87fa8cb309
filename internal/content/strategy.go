// Package content extracts UTF-8 text from files, dispatching on extension.
package content

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedExtension is returned by NewStrategy when no strategy handles ext.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// ExtractionError wraps a failure reading or parsing a specific file.
type ExtractionError struct {
	Path  string
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// Strategy extracts text content from a file on disk.
type Strategy interface {
	ReadContent(path string) (string, error)
}

// NewStrategy returns the Strategy for the given lowercase extension (including the
// leading dot). Returns ErrUnsupportedExtension for anything not in the closed set
// {.txt, .xml, .xhtml, .pdf}.
func NewStrategy(ext string) (Strategy, error) {
	switch strings.ToLower(ext) {
	case ".txt":
		return TextStrategy{}, nil
	case ".xml", ".xhtml":
		return XMLStrategy{}, nil
	case ".pdf":
		return PDFStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
}
