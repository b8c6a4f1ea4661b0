package knowledge

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadDocxText extracts the plain paragraph text from a .docx file.
// Formatting, images and tables are discarded; each body paragraph becomes
// one line of output, matching what a reader sees as the document flow.
func ReadDocxText(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", eris.Wrap(err, "docx: open archive")
	}
	defer r.Close() //nolint:errcheck

	var doc *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", eris.New("docx: word/document.xml not found in archive")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", eris.Wrap(err, "docx: open document part")
	}
	defer rc.Close() //nolint:errcheck

	return extractParagraphs(rc)
}

// extractParagraphs walks the WordprocessingML token stream collecting the
// text runs of body-level paragraphs. Paragraphs nested inside tables are
// skipped entirely.
func extractParagraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
		tableDepth int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", eris.Wrap(err, "docx: parse document xml")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "p":
				if tableDepth == 0 {
					inPara = true
					current.Reset()
				}
			case "t":
				if inPara {
					inText = true
				}
			case "tab":
				if inPara {
					current.WriteByte('\t')
				}
			case "br":
				if inPara {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth > 0 {
					tableDepth--
				}
			case "p":
				if inPara {
					paragraphs = append(paragraphs, current.String())
					inPara = false
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inPara && inText {
				current.Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}
