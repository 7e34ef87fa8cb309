package content

import (
	"encoding/xml"
	"io"
	"os"
	"strings"
)

// XMLStrategy parses a .xml/.xhtml file and emits the concatenated character
// data of all element nodes, separated by single spaces. Attributes and tag
// names are excluded.
type XMLStrategy struct{}

func (XMLStrategy) ReadContent(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Cause: err}
	}
	defer f.Close()

	var parts []string
	dec := xml.NewDecoder(f)
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &ExtractionError{Path: path, Cause: err}
		}
		if cd, ok := tok.(xml.CharData); ok {
			if text := strings.TrimSpace(string(cd)); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, " "), nil
}
