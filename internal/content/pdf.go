package content

import (
	"bytes"
	"os"

	"github.com/ledongthuc/pdf"
)

// PDFStrategy extracts visible text from all pages of a PDF document via
// github.com/ledongthuc/pdf. Page boundaries are replaced by whitespace.
type PDFStrategy struct{}

func (PDFStrategy) ReadContent(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Cause: err}
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Path: path, Cause: err}
	}

	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ExtractionError{Path: path, Cause: err}
		}
		buf.WriteString(text)
		if i < numPages {
			buf.WriteByte(' ')
		}
	}
	return buf.String(), nil
}
